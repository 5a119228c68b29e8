// Command cachesim drives the Memory Simulator (spec section 4.10) over a
// definition file, a configuration file, and either trace files or a
// synthetic address generator, per spec section 6's CLI contract.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/ooo"
	"github.com/sarchlab/cachesim/profiling"
	"github.com/sarchlab/cachesim/simulator"
	"github.com/sarchlab/cachesim/statsdb"
	"github.com/sarchlab/cachesim/trace"
	"github.com/sarchlab/cachesim/webstats"
)

var flags struct {
	definition    string
	configuration string
	folder        string
	numCPUs       int
	traceFiles    string
	warmUp        uint64
	runTime       uint64
	heartBeat     uint64
	oooWindow     int
	synthetic     uint64
	memGap        uint64
	live          bool
	livePort      int
	statsDBPath   string
	profilePath   string
	componentLogs bool
}

func main() {
	// A missing .env is not an error; it only supplies default flag values
	// (CACHESIM_TRACE_DIR and friends) when present.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "cachesim",
		Short: "Cycle-approximate cache/DRAM hierarchy simulator",
		RunE:  run,
	}

	root.Flags().StringVar(&flags.definition, "definition", "", "definition file path")
	root.Flags().StringVar(&flags.configuration, "configuration", "", "configuration file path")
	root.Flags().StringVar(&flags.folder, "folder", ".", "output folder for logs, IPC, and progress")
	root.Flags().IntVar(&flags.numCPUs, "num-cpus", 1, "number of CPUs")
	root.Flags().StringVar(&flags.traceFiles, "trace-files", "", "comma-separated per-CPU trace file paths")
	root.Flags().Uint64Var(&flags.warmUp, "warm-up", 0, "warm-up cycle count before checkpointing IPC")
	root.Flags().Uint64Var(&flags.runTime, "run-time", 0, "cycles to run after warm-up, 0 = until every core is done")
	root.Flags().Uint64Var(&flags.heartBeat, "heart-beat", 100000, "cycles between heartbeat broadcasts")
	root.Flags().IntVar(&flags.oooWindow, "ooo-window", 32, "per-core in-flight window size")
	root.Flags().Uint64Var(&flags.synthetic, "synthetic", 0, "synthetic reference count per CPU, 0 disables the synthetic generator")
	root.Flags().Uint64Var(&flags.memGap, "mem-gap", 0, "synthetic generator stride in bytes")
	root.Flags().BoolVar(&flags.live, "live", false, "serve a live JSON stats endpoint and open it in a browser")
	root.Flags().IntVar(&flags.livePort, "live-port", 0, "port for --live, 0 picks any free port")
	root.Flags().StringVar(&flags.statsDBPath, "stats-db", "", "sqlite path to persist this run's counters and IPC, empty disables it")
	root.Flags().StringVar(&flags.profilePath, "profile", "", "pprof output path for LLC-miss-by-IP sampling, empty disables it")
	root.Flags().BoolVar(&flags.componentLogs, "component-logs", false, "write a per-component event logfile ({folder}/{name}.log)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cachesim:", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func run(_ *cobra.Command, _ []string) error {
	if flags.definition == "" || flags.configuration == "" {
		return fmt.Errorf("--definition and --configuration are required")
	}

	def, cfgFile, err := loadConfig(flags.definition, flags.configuration)
	if err != nil {
		return err
	}

	sim := simulator.New(flags.numCPUs)

	components, err := buildComponents(def, cfgFile, sim)
	if err != nil {
		return err
	}

	if err := wireComponentLogs(components); err != nil {
		return err
	}

	profiler := wireProfiling(components)
	statsDB := wireStatsDB()
	live := wireWebStats(components)

	cores, err := buildCores(sim)
	if err != nil {
		return err
	}

	records := runSimulation(sim, cores)

	if err := writeOutputs(sim, records); err != nil {
		return err
	}

	flushRun(components, statsDB, profiler, records)

	if live != "" {
		fmt.Fprintln(os.Stderr, "cachesim: live stats at", live)
	}

	return nil
}

func loadConfig(defPath, cfgPath string) (*config.Definition, *config.Configuration, error) {
	defText, err := os.ReadFile(defPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading definition file: %w", err)
	}

	cfgText, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading configuration file: %w", err)
	}

	def, err := config.ParseDefinition(string(defText))
	if err != nil {
		return nil, nil, err
	}

	cfgFile, err := config.ParseConfiguration(string(cfgText))
	if err != nil {
		return nil, nil, err
	}

	return def, cfgFile, nil
}

func readParamFile(path string) (string, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(text), nil
}

func buildComponents(def *config.Definition, cfgFile *config.Configuration, sim *simulator.Simulator) (map[string]component.Component, error) {
	components := make(map[string]component.Component, len(def.Components))

	for _, decl := range def.Components {
		c, err := buildComponent(decl, sim, cfgFile, readParamFile)
		if err != nil {
			return nil, fmt.Errorf("building component %q: %w", decl.Name, err)
		}

		sim.Register(c)
		components[decl.Name] = c
	}

	for cpuID := 0; cpuID < flags.numCPUs; cpuID++ {
		for _, name := range def.ResolvedPipeline(cpuID) {
			sim.AppendToPipeline(cpuID, name)
		}
	}

	return components, nil
}

// missSampler is implemented by cache.Base, promoted onto every concrete
// cache variant that embeds it.
type missSampler interface {
	SetMissSampler(func(ip uint64))
}

// logEnabler is implemented by component.Base, promoted onto every
// concrete component type that embeds it.
type logEnabler interface {
	EnableLogging(simFolder, logName string) error
}

// wireComponentLogs opts every component into the per-component logfile
// spec section 6 requires when --component-logs is set.
func wireComponentLogs(components map[string]component.Component) error {
	if !flags.componentLogs {
		return nil
	}

	if err := os.MkdirAll(flags.folder, 0o755); err != nil {
		return fmt.Errorf("creating output folder: %w", err)
	}

	for _, c := range components {
		le, ok := c.(logEnabler)
		if !ok {
			continue
		}

		if err := le.EnableLogging(flags.folder, "log"); err != nil {
			return fmt.Errorf("enabling logging for %q: %w", c.Name(), err)
		}
	}

	return nil
}

func wireProfiling(components map[string]component.Component) *profiling.Collector {
	if flags.profilePath == "" {
		return nil
	}

	collector := profiling.NewCollector()

	for _, c := range components {
		if s, ok := c.(missSampler); ok {
			s.SetMissSampler(collector.Sample)
		}
	}

	return collector
}

func wireStatsDB() *statsdb.DB {
	if flags.statsDBPath == "" {
		return nil
	}

	db, err := statsdb.Open(flags.statsDBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cachesim: opening stats database:", err)
		return nil
	}

	return db
}

func wireWebStats(components map[string]component.Component) string {
	if !flags.live {
		return ""
	}

	s := webstats.NewServer()
	for _, c := range components {
		s.Register(c)
	}

	url, err := s.Start(flags.livePort, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cachesim: starting live stats server:", err)
		return ""
	}

	return url
}

func buildCores(sim *simulator.Simulator) ([]*ooo.Core, error) {
	cores := make([]*ooo.Core, flags.numCPUs)

	tracePaths := strings.Split(flags.traceFiles, ",")

	for cpuID := 0; cpuID < flags.numCPUs; cpuID++ {
		src, err := traceSourceFor(cpuID, tracePaths)
		if err != nil {
			return nil, err
		}

		cores[cpuID] = ooo.NewCore(cpuID, sim, src, flags.oooWindow)
	}

	return cores, nil
}

func traceSourceFor(cpuID int, tracePaths []string) (trace.Source, error) {
	if flags.synthetic > 0 {
		return trace.NewSyntheticGenerator(cpuID, trace.SyntheticConfig{
			Pattern:    trace.PatternStrided,
			Count:      flags.synthetic,
			Gap:        flags.memGap,
			BlockBytes: 64,
		}), nil
	}

	if cpuID >= len(tracePaths) || tracePaths[cpuID] == "" {
		return nil, fmt.Errorf("no trace file given for cpu %d", cpuID)
	}

	r, err := trace.NewReader(tracePaths[cpuID], cpuID)
	if err != nil {
		return nil, fmt.Errorf("opening trace file for cpu %d: %w", cpuID, err)
	}

	return r, nil
}

// runSimulation advances the simulator to completion, broadcasting
// warm-up and heartbeat lifecycle hooks at the configured boundaries, and
// returns each core's checkpoint-to-finish IPC sample.
func runSimulation(sim *simulator.Simulator, cores []*ooo.Core) []simulator.IPCRecord {
	sim.StartSimulation()

	checkpointed := false
	checkpointICount := make([]uint64, len(cores))
	checkpointCycle := simulator.Cycle(0)

	nextHeartbeat := simulator.Cycle(flags.heartBeat)
	runUntil := simulator.Cycle(flags.warmUp + flags.runTime)

	for {
		anyActive := false

		for _, c := range cores {
			if !c.Done() {
				c.Step()
				anyActive = true
			}
		}

		if !checkpointed && sim.Cycle() >= simulator.Cycle(flags.warmUp) {
			sim.EndWarmUp()

			for cpuID, c := range cores {
				sim.EndProcWarmUp(cpuID)
				checkpointICount[cpuID] = c.Retired()
			}

			checkpointCycle = sim.Cycle()
			checkpointed = true
		}

		if flags.heartBeat > 0 && sim.Cycle() >= nextHeartbeat {
			sim.Heartbeat()

			progress := sim.ProgressSnapshot()
			writeProgressFile(progress)

			nextHeartbeat += simulator.Cycle(flags.heartBeat)
		}

		if flags.runTime > 0 && checkpointed && sim.Cycle() >= runUntil {
			break
		}

		if !anyActive && !sim.AutoAdvance() {
			break
		}
	}

	if !checkpointed {
		sim.EndWarmUp()

		for cpuID, c := range cores {
			sim.EndProcWarmUp(cpuID)
			checkpointICount[cpuID] = c.Retired()
		}

		checkpointCycle = sim.Cycle()
	}

	records := make([]simulator.IPCRecord, len(cores))

	for cpuID, c := range cores {
		sim.EndProcSimulation(cpuID)

		records[cpuID] = simulator.IPCRecord{
			CPUID:            cpuID,
			CheckpointICount: checkpointICount[cpuID],
			FinishICount:     c.Retired(),
			CheckpointCycle:  checkpointCycle,
			FinishCycle:      sim.Cycle(),
		}
	}

	sim.EndSimulation()

	return records
}

func writeProgressFile(report simulator.ProgressReport) {
	path := filepath.Join(flags.folder, "progress")

	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()

	_ = simulator.WriteProgress(f, report)
}

func writeOutputs(sim *simulator.Simulator, records []simulator.IPCRecord) error {
	if err := os.MkdirAll(flags.folder, 0o755); err != nil {
		return fmt.Errorf("creating output folder: %w", err)
	}

	ipcFile, err := os.Create(filepath.Join(flags.folder, "sim.ipc"))
	if err != nil {
		return fmt.Errorf("creating sim.ipc: %w", err)
	}
	defer ipcFile.Close()

	if err := sim.DumpIPC(ipcFile, records); err != nil {
		return fmt.Errorf("writing sim.ipc: %w", err)
	}

	logFile, err := os.Create(filepath.Join(flags.folder, "SimulationLog"))
	if err != nil {
		return fmt.Errorf("creating SimulationLog: %w", err)
	}
	defer logFile.Close()

	if _, err := sim.Log().WriteTo(logFile); err != nil {
		return fmt.Errorf("writing SimulationLog: %w", err)
	}

	return writeYAMLSummary(records)
}

// runSummary is the YAML archival form of a run's final IPC records, so
// two runs' sim.ipc output can be diffed structurally instead of by line.
type runSummary struct {
	IPC []simulator.IPCRecord `yaml:"ipc"`
}

func writeYAMLSummary(records []simulator.IPCRecord) error {
	f, err := os.Create(filepath.Join(flags.folder, "summary.yaml"))
	if err != nil {
		return fmt.Errorf("creating summary.yaml: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	return enc.Encode(runSummary{IPC: records})
}

func flushRun(components map[string]component.Component, statsDB *statsdb.DB, profiler *profiling.Collector, records []simulator.IPCRecord) {
	if statsDB != nil {
		atexit.Register(func() {
			if err := statsDB.WriteCounters(components); err != nil {
				fmt.Fprintln(os.Stderr, "cachesim: writing stats database:", err)
			}

			if err := statsDB.WriteIPC(records); err != nil {
				fmt.Fprintln(os.Stderr, "cachesim: writing stats database:", err)
			}

			statsDB.Close()
		})
	}

	if profiler != nil {
		atexit.Register(func() {
			f, err := os.Create(flags.profilePath)
			if err != nil {
				fmt.Fprintln(os.Stderr, "cachesim: creating profile output:", err)
				return
			}
			defer f.Close()

			if err := profiler.Write(f); err != nil {
				fmt.Fprintln(os.Stderr, "cachesim: writing profile:", err)
			}
		})
	}

	atexit.Register(func() {
		statsPath := filepath.Join(flags.folder, "stats.yaml")

		f, err := os.Create(statsPath)
		if err != nil {
			return
		}
		defer f.Close()

		snapshot := make(map[string]map[string]uint64, len(components))
		for name, c := range components {
			snapshot[name] = c.StatsRegistry().Snapshot()
		}

		enc := yaml.NewEncoder(f)
		defer enc.Close()
		_ = enc.Encode(snapshot)
	})
}
