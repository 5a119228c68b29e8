package config_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/config"
)

func TestParseDefinitionResolvesAllPlusPerCorePipeline(t *testing.T) {
	text := `
component llc CmpLLC
component dram CmpDRAM
all CmpLLC CmpDRAM
0 CmpL1_0
1 CmpL1_1
`
	def, err := config.ParseDefinition(text)
	require.NoError(t, err)
	require.Len(t, def.Components, 2)

	require.Equal(t, []string{"CmpLLC", "CmpDRAM", "CmpL1_0"}, def.ResolvedPipeline(0))
	require.Equal(t, []string{"CmpLLC", "CmpDRAM", "CmpL1_1"}, def.ResolvedPipeline(1))
}

func TestParseDefinitionRejectsUnrecognizedDirective(t *testing.T) {
	_, err := config.ParseDefinition("bogus line here")
	require.Error(t, err)
}

func TestParseConfigurationAppliesOverridesOnTopOfParamFile(t *testing.T) {
	cfgText := `
CmpLLC llc.params
override CmpLLC associativity 16
`
	cfg, err := config.ParseConfiguration(cfgText)
	require.NoError(t, err)

	readFile := func(path string) (string, error) {
		if path == "llc.params" {
			return "associativity=8\nsizeKB=2048\n", nil
		}

		return "", errors.New("not found")
	}

	params, err := cfg.ParamsFor("CmpLLC", readFile)
	require.NoError(t, err)
	require.Equal(t, "16", params["associativity"])
	require.Equal(t, "2048", params["sizeKB"])
}

func TestParamsDecodeCoercesTypes(t *testing.T) {
	p, err := config.ParseParams("size=2048\nrejectWrites=1\nname=llc0\nratio=1.5\n")
	require.NoError(t, err)

	var dst struct {
		Size         int     `param:"size"`
		RejectWrites bool    `param:"rejectWrites"`
		Name         string  `param:"name"`
		Ratio        float64 `param:"ratio"`
	}

	require.NoError(t, p.Decode(&dst))
	require.Equal(t, 2048, dst.Size)
	require.True(t, dst.RejectWrites)
	require.Equal(t, "llc0", dst.Name)
	require.InDelta(t, 1.5, dst.Ratio, 0.0001)
}

func TestParamsDecodeRejectsNonStructPointer(t *testing.T) {
	p, err := config.ParseParams("a=1")
	require.NoError(t, err)

	var notAStruct int
	require.Error(t, p.Decode(&notAStruct))
}
