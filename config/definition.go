// Package config parses the two line-oriented configuration files spec
// section 6 defines: the definition file (which components exist, and
// each core's pipeline) and the configuration file (per-component
// parameter file assignments and one-shot overrides). Every parsing
// function here returns a Go error rather than panicking, per this
// module's configuration-boundary error-handling rule (SPEC_FULL.md,
// "Error handling").
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ComponentDecl is one `component TYPE NAME` line.
type ComponentDecl struct {
	Type string
	Name string
}

// Definition is the parsed contents of a definition file: the component
// declarations in file order, plus each core's pipeline as an ordered
// list of component names (core -1 denotes the `all` pipeline, which
// ResolvedPipeline places ahead of every core's own entries).
type Definition struct {
	Components []ComponentDecl
	Pipelines  map[int][]string
}

// AllPipelineKey is the map key Pipelines uses for the `all N1 N2 …`
// line, which applies to every core's pipeline rather than naming one
// core.
const AllPipelineKey = -1

// ParseDefinition parses a definition file's text.
func ParseDefinition(text string) (*Definition, error) {
	def := &Definition{Pipelines: make(map[int][]string)}

	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)

		switch fields[0] {
		case "component":
			if len(fields) != 3 {
				return nil, fmt.Errorf("config: definition line %d: expected 'component TYPE NAME', got %q", lineNo+1, raw)
			}

			def.Components = append(def.Components, ComponentDecl{Type: fields[1], Name: fields[2]})

		case "all":
			if len(fields) < 2 {
				return nil, fmt.Errorf("config: definition line %d: 'all' with no components", lineNo+1)
			}

			def.Pipelines[AllPipelineKey] = append(def.Pipelines[AllPipelineKey], fields[1:]...)

		default:
			cpuID, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, fmt.Errorf("config: definition line %d: unrecognized directive %q", lineNo+1, fields[0])
			}

			if len(fields) < 2 {
				return nil, fmt.Errorf("config: definition line %d: cpu %d with no components", lineNo+1, cpuID)
			}

			def.Pipelines[cpuID] = append(def.Pipelines[cpuID], fields[1:]...)
		}
	}

	return def, nil
}

// ResolvedPipeline returns cpuID's full pipeline: every `all` entry
// followed by every cpu-specific entry. The file order between `all`
// lines and cpu lines is not kept: a cpu line written before an `all`
// line still ends up after that line's entries.
func (d *Definition) ResolvedPipeline(cpuID int) []string {
	var pipeline []string
	pipeline = append(pipeline, d.Pipelines[AllPipelineKey]...)
	pipeline = append(pipeline, d.Pipelines[cpuID]...)

	return pipeline
}
