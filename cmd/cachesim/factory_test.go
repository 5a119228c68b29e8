package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/dram"
	"github.com/sarchlab/cachesim/prefetch"
	"github.com/sarchlab/cachesim/simulator"
)

func paramFiles(files map[string]string) func(string) (string, error) {
	return func(path string) (string, error) {
		text, ok := files[path]
		if !ok {
			return "", fmt.Errorf("no such file %q", path)
		}

		return text, nil
	}
}

func buildDecl(t *testing.T, typ, name, params string) (component.Component, error) {
	t.Helper()

	sim := simulator.New(1)

	cfgFile, err := config.ParseConfiguration(fmt.Sprintf("%s params.txt\n", name))
	require.NoError(t, err)

	c, err := buildComponent(config.ComponentDecl{Type: typ, Name: name}, sim, cfgFile, paramFiles(map[string]string{
		"params.txt": params,
	}))

	return c, err
}

func TestBuildComponentL1UsesFixedLRUPolicy(t *testing.T) {
	c, err := buildDecl(t, "l1", "CmpL1_0", "sizeKB=32\nblockBytes=64\nassociativity=8\ntagStoreLat=1\ndataStoreLat=4\n")
	require.NoError(t, err)
	require.IsType(t, &cache.L1{}, c)
}

func TestBuildComponentLLCResolvesPolicyParameter(t *testing.T) {
	c, err := buildDecl(t, "llc", "CmpLLC", "sizeKB=2048\nblockBytes=64\nassociativity=16\ntagStoreLat=10\ndataStoreLat=20\npolicy=srrip\n")
	require.NoError(t, err)
	require.IsType(t, &cache.LLC{}, c)
}

func TestBuildComponentUnknownPolicyErrors(t *testing.T) {
	_, err := buildDecl(t, "llc", "CmpLLC", "sizeKB=2048\nblockBytes=64\nassociativity=16\npolicy=made-up\n")
	require.Error(t, err)
}

func TestBuildComponentDCPDecodesEmbeddedConfig(t *testing.T) {
	c, err := buildDecl(t, "dcp", "CmpLLC",
		"sizeKB=2048\nblockBytes=64\nassociativity=16\ntagStoreLat=10\ndataStoreLat=20\n"+
			"policy=lru\ndeafCapacity=1024\ndropInaccurate=1\n")
	require.NoError(t, err)
	require.IsType(t, &cache.DCP{}, c)
}

func TestBuildComponentMSHR(t *testing.T) {
	c, err := buildDecl(t, "mshr", "CmpMSHR_0", "capacity=16\nblockBytes=64\n")
	require.NoError(t, err)
	require.IsType(t, &cache.MSHR{}, c)
}

func TestBuildComponentDRAMDecodesGeometryThenTheRest(t *testing.T) {
	c, err := buildDecl(t, "dram", "CmpDRAM",
		"numChannels=1\nnumRanks=2\nnumBanks=8\nblockBytes=64\n")
	require.NoError(t, err)
	require.IsType(t, &dram.Controller{}, c)
}

func TestBuildComponentPrefetchStride(t *testing.T) {
	c, err := buildDecl(t, "prefetch-stride", "CmpStride0", "degree=4\n")
	require.NoError(t, err)
	require.IsType(t, &prefetch.Stride{}, c)
}

func TestBuildComponentUnknownTypeErrors(t *testing.T) {
	_, err := buildDecl(t, "not-a-real-type", "CmpX", "")
	require.Error(t, err)
}
