package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/memtracer"
	"github.com/sarchlab/cachesim/monitoring"
)

var (
	icSpec      string
	dcSpec      string
	l2Spec      string
	logMisses   bool
	recordPath  string
	monitorFlag bool
	monitorPort int
	openFlag    bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cachesim [trace file]",
	Short: "Replay a memory-access trace through simulated caches.",
	Long: `cachesim reads a memory-access trace and drives it through a
configurable cache hierarchy. Each trace line is one access:

  <F|L|S> <address> <bytes>

F is an instruction fetch, L a load, and S a store. Addresses and sizes
accept decimal, 0x-prefixed hex, or 0-prefixed octal. Blank lines and lines
starting with # are skipped. With no trace file (or with "-"), the trace is
read from standard input.

Cache geometries use the sets:ways:linesize form, e.g. --dc 64:4:64.`,
	Args: cobra.MaximumNArgs(1),
	Run:  run,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&icSpec, "ic", "",
		"instruction cache geometry (sets:ways:linesize)")
	rootCmd.Flags().StringVar(&dcSpec, "dc", "",
		"data cache geometry (sets:ways:linesize)")
	rootCmd.Flags().StringVar(&l2Spec, "l2", "",
		"unified L2 geometry backing the L1 caches (sets:ways:linesize)")
	rootCmd.Flags().BoolVar(&logMisses, "log-misses", false,
		"log every miss to standard error")
	rootCmd.Flags().StringVar(&recordPath, "record", "",
		"record misses and final statistics into this SQLite database")
	rootCmd.Flags().BoolVar(&monitorFlag, "monitor", false,
		"serve live statistics over HTTP while the trace replays")
	rootCmd.Flags().IntVar(&monitorPort, "monitor-port", 0,
		"port for the monitoring server (0 picks a free port)")
	rootCmd.Flags().BoolVar(&openFlag, "open", false,
		"open the monitoring dashboard in the browser")
}

func run(cmd *cobra.Command, args []string) {
	// A .env file can supply the same settings as the flags.
	_ = godotenv.Load()
	applyEnvDefaults()

	caches, tracers := buildHierarchy()
	if tracers.Empty() {
		fatalf("no caches configured; pass at least one of --ic, --dc, --l2")
	}

	if recordPath != "" {
		setUpRecording(caches)
	}

	if monitorFlag {
		setUpMonitoring(caches)
	}

	replayTrace(args, tracers)

	// Exit through atexit so the stats reports and the recorder flush run.
	atexit.Exit(0)
}

func applyEnvDefaults() {
	envDefault(&icSpec, "CACHESIM_IC")
	envDefault(&dcSpec, "CACHESIM_DC")
	envDefault(&l2Spec, "CACHESIM_L2")
	envDefault(&recordPath, "CACHESIM_DB")
}

func envDefault(flag *string, key string) {
	if *flag == "" {
		*flag = os.Getenv(key)
	}
}

func buildHierarchy() ([]*cachesim.Cache, *memtracer.List) {
	caches := []*cachesim.Cache{}
	tracers := memtracer.NewList()

	var l2 *cachesim.Cache
	if l2Spec != "" {
		l2 = buildCache(l2Spec, "L2$", nil)
		caches = append(caches, l2)
	}

	if icSpec != "" {
		ic := buildCache(icSpec, "I$", l2)
		caches = append(caches, ic)
		tracers.Hook(memtracer.NewICache(ic))
	}

	if dcSpec != "" {
		dc := buildCache(dcSpec, "D$", l2)
		caches = append(caches, dc)
		tracers.Hook(memtracer.NewDCache(dc))
	}

	return caches, tracers
}

func buildCache(spec, name string, mh *cachesim.Cache) *cachesim.Cache {
	cfg, err := cachesim.ParseConfig(spec)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fatalf("%s", cachesim.ConfigUsage)
	}

	builder := cachesim.MakeBuilder().
		WithConfig(cfg).
		WithReportOnExit(true)

	if mh != nil {
		builder = builder.WithMissHandler(mh)
	}

	c := builder.Build(name)
	c.SetLog(logMisses)

	return c
}

func setUpRecording(caches []*cachesim.Cache) {
	recorder := datarecording.New(recordPath)

	missRecorder := datarecording.NewMissRecorder(recorder, "misses")
	for _, c := range caches {
		c.AcceptHook(missRecorder)
	}

	atexit.Register(func() {
		datarecording.RecordStats(recorder, "stats", caches...)
	})
}

func setUpMonitoring(caches []*cachesim.Cache) {
	monitor := monitoring.NewMonitor().WithPortNumber(monitorPort)
	for _, c := range caches {
		monitor.RegisterCache(c)
	}

	monitor.StartServer()

	if openFlag {
		monitor.OpenDashboard()
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	atexit.Exit(1)
}
