package config

import (
	"fmt"
	"strings"
)

// Override is a one-shot `override NAME KEY VALUE` directive.
type Override struct {
	Component string
	Key       string
	Value     string
}

// Configuration is the parsed contents of a configuration file: each
// named component's parameter-file assignment, plus any one-shot
// overrides layered on top of it in file order.
type Configuration struct {
	ParamFiles map[string]string
	Overrides  []Override
}

// ParseConfiguration parses a configuration file's text.
func ParseConfiguration(text string) (*Configuration, error) {
	cfg := &Configuration{ParamFiles: make(map[string]string)}

	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)

		if fields[0] == "override" {
			if len(fields) != 4 {
				return nil, fmt.Errorf("config: configuration line %d: expected 'override NAME KEY VALUE', got %q", lineNo+1, raw)
			}

			cfg.Overrides = append(cfg.Overrides, Override{Component: fields[1], Key: fields[2], Value: fields[3]})

			continue
		}

		if len(fields) != 2 {
			return nil, fmt.Errorf("config: configuration line %d: expected 'NAME FILENAME', got %q", lineNo+1, raw)
		}

		cfg.ParamFiles[fields[0]] = fields[1]
	}

	return cfg, nil
}

// ParamsFor builds the final Params for a named component: its parameter
// file's contents (if any, via readFile) with every matching override
// applied on top, in file order, so an `override` line always wins over
// the parameter file per spec section 6's "one-shot override" framing.
func (c *Configuration) ParamsFor(name string, readFile func(path string) (string, error)) (Params, error) {
	params := make(Params)

	if path, ok := c.ParamFiles[name]; ok {
		text, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading parameter file for %q: %w", name, err)
		}

		parsed, err := ParseParams(text)
		if err != nil {
			return nil, fmt.Errorf("config: parameter file for %q: %w", name, err)
		}

		params = parsed
	}

	for _, ov := range c.Overrides {
		if ov.Component == name {
			params.Set(ov.Key, ov.Value)
		}
	}

	return params, nil
}
