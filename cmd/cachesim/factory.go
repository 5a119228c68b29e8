package main

import (
	"fmt"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/dram"
	"github.com/sarchlab/cachesim/prefetch"
	"github.com/sarchlab/cachesim/tagstore"
)

// policyFactory resolves the `policy` parameter (spec section 4.2's
// policy table) to a tagstore.Policy constructor, the same string-typed
// selection knob spec section 6's parameter files use for every other
// scalar configuration value.
func policyFactory(name string) (func() tagstore.Policy, error) {
	switch name {
	case "", "lru":
		return func() tagstore.Policy { return tagstore.NewLRU() }, nil
	case "fifo":
		return func() tagstore.Policy { return tagstore.NewFIFO() }, nil
	case "nru":
		return func() tagstore.Policy { return tagstore.NewNRU() }, nil
	case "srrip":
		return func() tagstore.Policy { return tagstore.NewSRRIP(3) }, nil
	case "drrip":
		return func() tagstore.Policy { return tagstore.NewDRRIP(3, tagstore.DefaultDRRIPBIPPeriod) }, nil
	case "drrip-hp":
		return func() tagstore.Policy { return tagstore.NewDRRIPHP(3, tagstore.DefaultDRRIPBIPPeriod) }, nil
	case "dip":
		return func() tagstore.Policy { return tagstore.NewDIP(tagstore.DefaultBIPPeriod) }, nil
	case "reuse":
		return func() tagstore.Policy { return tagstore.NewReuse(3) }, nil
	case "generation":
		return func() tagstore.Policy { return tagstore.NewGeneration(3) }, nil
	default:
		return nil, fmt.Errorf("factory: unknown policy %q", name)
	}
}

// readParams decodes name's parameters (a parameter file plus any
// overrides) and applies them onto dst.
func readParams(cfgFile *config.Configuration, name string, readFile func(string) (string, error), dst interface{}) (config.Params, error) {
	params, err := cfgFile.ParamsFor(name, readFile)
	if err != nil {
		return nil, err
	}

	if err := params.Decode(dst); err != nil {
		return nil, err
	}

	return params, nil
}

// buildComponent constructs the component named by decl, using params
// from cfgFile. Every cache variant of spec section 4.6 is exposed by its
// own TYPE string (l1, llc, arc, mct, dcp, fdp, pacman, rtb, ship-ip,
// ucp, vts-llc, dbi-awb), alongside mshr, dram, and the three trigger
// prefetchers.
func buildComponent(decl config.ComponentDecl, router component.Router, cfgFile *config.Configuration, readFile func(string) (string, error)) (component.Component, error) {
	switch decl.Type {
	case "l1":
		var cfg cache.Config
		if _, err := readParams(cfgFile, decl.Name, readFile, &cfg); err != nil {
			return nil, err
		}

		pf, err := policyFactory("lru")
		if err != nil {
			return nil, err
		}

		cfg.PolicyFactory = pf
		cfg.CoercePartial = true

		return cache.NewL1(decl.Name, router, cfg), nil

	case "llc":
		var params struct {
			cache.Config
			Policy string `param:"policy"`
		}

		p, err := readParams(cfgFile, decl.Name, readFile, &params)
		if err != nil {
			return nil, err
		}

		pf, err := policyFactory(p["policy"])
		if err != nil {
			return nil, err
		}

		params.Config.PolicyFactory = pf

		return cache.NewLLC(decl.Name, router, params.Config), nil

	case "arc":
		var cfg cache.Config
		p, err := readParams(cfgFile, decl.Name, readFile, &cfg)
		if err != nil {
			return nil, err
		}

		pf, err := policyFactory(p["policy"])
		if err != nil {
			return nil, err
		}

		cfg.PolicyFactory = pf

		return cache.NewARC(decl.Name, router, cfg), nil

	case "mct":
		var cfg cache.Config
		p, err := readParams(cfgFile, decl.Name, readFile, &cfg)
		if err != nil {
			return nil, err
		}

		pf, err := policyFactory(p["policy"])
		if err != nil {
			return nil, err
		}

		cfg.PolicyFactory = pf

		return cache.NewMCT(decl.Name, router, cfg), nil

	case "dcp":
		var params struct {
			cache.DCPConfig
			Policy string `param:"policy"`
		}

		p, err := readParams(cfgFile, decl.Name, readFile, &params)
		if err != nil {
			return nil, err
		}

		pf, err := policyFactory(p["policy"])
		if err != nil {
			return nil, err
		}

		params.DCPConfig.Config.PolicyFactory = pf

		return cache.NewDCP(decl.Name, router, params.DCPConfig), nil

	case "fdp":
		var params struct {
			cache.FDPConfig
			Policy string `param:"policy"`
		}

		p, err := readParams(cfgFile, decl.Name, readFile, &params)
		if err != nil {
			return nil, err
		}

		pf, err := policyFactory(p["policy"])
		if err != nil {
			return nil, err
		}

		params.FDPConfig.Config.PolicyFactory = pf

		return cache.NewFDP(decl.Name, router, params.FDPConfig), nil

	case "pacman":
		var params struct {
			cache.PACManConfig
			Policy string `param:"policy"`
		}

		p, err := readParams(cfgFile, decl.Name, readFile, &params)
		if err != nil {
			return nil, err
		}

		pf, err := policyFactory(p["policy"])
		if err != nil {
			return nil, err
		}

		params.PACManConfig.Config.PolicyFactory = pf

		return cache.NewPACMan(decl.Name, router, params.PACManConfig), nil

	case "rtb":
		var params struct {
			cache.RTBConfig
			Policy string `param:"policy"`
		}

		p, err := readParams(cfgFile, decl.Name, readFile, &params)
		if err != nil {
			return nil, err
		}

		pf, err := policyFactory(p["policy"])
		if err != nil {
			return nil, err
		}

		params.RTBConfig.Config.PolicyFactory = pf

		return cache.NewRTBCache(decl.Name, router, params.RTBConfig), nil

	case "ship-ip":
		var params struct {
			cache.SHIPConfig
			Policy string `param:"policy"`
		}

		p, err := readParams(cfgFile, decl.Name, readFile, &params)
		if err != nil {
			return nil, err
		}

		pf, err := policyFactory(p["policy"])
		if err != nil {
			return nil, err
		}

		params.SHIPConfig.Config.PolicyFactory = pf

		return cache.NewSHIPIP(decl.Name, router, params.SHIPConfig), nil

	case "ucp":
		var params struct {
			cache.UCPConfig
			Policy string `param:"policy"`
		}

		p, err := readParams(cfgFile, decl.Name, readFile, &params)
		if err != nil {
			return nil, err
		}

		pf, err := policyFactory(p["policy"])
		if err != nil {
			return nil, err
		}

		params.UCPConfig.Config.PolicyFactory = pf

		return cache.NewUCP(decl.Name, router, params.UCPConfig), nil

	case "vts-llc":
		var params struct {
			cache.VTSConfig
			Policy string `param:"policy"`
		}

		p, err := readParams(cfgFile, decl.Name, readFile, &params)
		if err != nil {
			return nil, err
		}

		pf, err := policyFactory(p["policy"])
		if err != nil {
			return nil, err
		}

		params.VTSConfig.Config.PolicyFactory = pf

		return cache.NewVTSLLC(decl.Name, router, params.VTSConfig), nil

	case "dbi-awb":
		var params struct {
			cache.DBIConfig
			Policy string `param:"policy"`
		}

		p, err := readParams(cfgFile, decl.Name, readFile, &params)
		if err != nil {
			return nil, err
		}

		pf, err := policyFactory(p["policy"])
		if err != nil {
			return nil, err
		}

		params.DBIConfig.Config.PolicyFactory = pf

		return cache.NewLLCwAWB(decl.Name, router, params.DBIConfig), nil

	case "mshr":
		var extra struct {
			Capacity   int `param:"capacity"`
			BlockBytes int `param:"blockBytes"`
		}
		if _, err := readParams(cfgFile, decl.Name, readFile, &extra); err != nil {
			return nil, err
		}

		return cache.NewMSHR(decl.Name, router, extra.Capacity, uint32(extra.BlockBytes)), nil

	case "dram":
		var cfg dram.Config
		if _, err := readParams(cfgFile, decl.Name, readFile, &cfg.Geometry); err != nil {
			return nil, err
		}

		if _, err := readParams(cfgFile, decl.Name, readFile, &cfg); err != nil {
			return nil, err
		}

		cfg.Timing = dram.DefaultTiming()

		return dram.New(decl.Name, router, cfg), nil

	case "prefetch-nextline":
		var cfg prefetch.NextLineConfig
		if _, err := readParams(cfgFile, decl.Name, readFile, &cfg); err != nil {
			return nil, err
		}

		return prefetch.NewNextLine(decl.Name, router, cfg), nil

	case "prefetch-stride":
		var cfg prefetch.StrideConfig
		if _, err := readParams(cfgFile, decl.Name, readFile, &cfg); err != nil {
			return nil, err
		}

		return prefetch.NewStride(decl.Name, router, cfg), nil

	case "prefetch-stream":
		var cfg prefetch.StreamConfig
		if _, err := readParams(cfgFile, decl.Name, readFile, &cfg); err != nil {
			return nil, err
		}

		return prefetch.NewStream(decl.Name, router, cfg), nil

	default:
		return nil, fmt.Errorf("factory: unknown component type %q for %q", decl.Type, decl.Name)
	}
}
