// fluxqueue - coverage-guided seed scheduler
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/fluxqueue/fluxqueue/internal/cfg"
	"github.com/fluxqueue/fluxqueue/internal/config"
	"github.com/fluxqueue/fluxqueue/internal/engine"
	"github.com/fluxqueue/fluxqueue/internal/harness"
	"github.com/fluxqueue/fluxqueue/internal/queue"
	"github.com/fluxqueue/fluxqueue/internal/report"
	"github.com/fluxqueue/fluxqueue/internal/ui"
	"github.com/fluxqueue/fluxqueue/internal/web"
)

var (
	version = "0.1.0-dev"

	queueDir    string
	configFile  string
	cfgPath     string
	outputFile  string
	seedCount   int
	iterations  int
	execsPerSec int
	verbose     bool
	webPort     string
	reportFmt   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fluxqueue",
		Short: "fluxqueue - coverage-guided seed scheduler",
		Long: `fluxqueue schedules mutation-fuzzing effort across a corpus of
seeds using favored-set culling, a frontier-aware set-cover pass, and
an alias-method power schedule, the same machinery afl-fuzz's queue
and afl-cmin use.`,
	}

	rootCmd.PersistentFlags().StringVarP(&queueDir, "queue", "q", "queue-out", "queue directory")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fluxqueue version %s\n", version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the demo scheduling loop against a synthetic target",
		Run:   runScheduler,
	}
	runCmd.Flags().StringVar(&cfgPath, "graph", "", "path to CFG successor map JSON (enables frontier scheduling)")
	runCmd.Flags().IntVarP(&seedCount, "seeds", "s", 8, "number of initial seeds to generate")
	runCmd.Flags().IntVarP(&iterations, "iterations", "n", 2000, "number of scheduling iterations to run")
	runCmd.Flags().IntVar(&execsPerSec, "execs-per-sec", 0, "cap target executions per second (0 = unlimited)")
	rootCmd.AddCommand(runCmd)

	webCmd := &cobra.Command{
		Use:   "web",
		Short: "start the web dashboard over a running scheduler",
		Run:   runWebDashboard,
	}
	webCmd.Flags().StringVarP(&webPort, "port", "p", ":9090", "web dashboard port")
	rootCmd.AddCommand(webCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "generate a one-shot scheduler state report",
		Run:   runReport,
	}
	reportCmd.Flags().StringVarP(&outputFile, "output", "o", "report-out", "output directory")
	reportCmd.Flags().StringVarP(&reportFmt, "format", "f", "json", "report format: json, html, or all")
	rootCmd.AddCommand(reportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printBanner() {
	fmt.Println()
	fmt.Println(ui.GetBannerStyled())
	fmt.Println()
}

func loadConfig() *config.Config {
	if configFile == "" {
		return config.DefaultConfig()
	}
	c, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] config load failed: %v\n", err)
		os.Exit(1)
	}
	return c
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newEngine builds an Engine over queueDir, optionally loading a CFG graph.
func newEngine(logger *slog.Logger) (*engine.Engine, *config.Config) {
	c := loadConfig()

	var graph *cfg.Graph
	if cfgPath != "" {
		g, err := cfg.Load(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[!] cfg load failed: %v\n", err)
			os.Exit(1)
		}
		graph = g
		c.UseFrontierScheduler = true
	}

	eng, err := engine.New(c, queueDir, graph, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] engine init failed: %v\n", err)
		os.Exit(1)
	}
	return eng, c
}

// seedCorpus writes seedCount synthetic testcases into the queue
// directory and appends a matching Seed record for each, in the strict
// sequential order Store.Append requires.
func seedCorpus(eng *engine.Engine, n int) error {
	store := eng.Store()
	for i := 0; i < n; i++ {
		content := []byte(fmt.Sprintf("seed-%03d-payload-%d", i, i*7919))
		id := store.Count()
		filename := fmt.Sprintf("id:%06d,orig", id)
		if err := os.WriteFile(filepath.Join(queueDir, filename), content, 0o644); err != nil {
			return fmt.Errorf("write seed file: %w", err)
		}
		sd := queue.NewSeed(id, filename, -1, 0, store.Count(), i)
		sd.Len = len(content)
		if _, err := store.Append(sd); err != nil {
			return err
		}
	}
	return nil
}

func runScheduler(cmd *cobra.Command, args []string) {
	printBanner()

	if err := os.MkdirAll(queueDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "[!] mkdir %s: %v\n", queueDir, err)
		os.Exit(1)
	}

	logger := newLogger()
	eng, c := newEngine(logger)

	if err := seedCorpus(eng, seedCount); err != nil {
		fmt.Fprintf(os.Stderr, "[!] seed corpus: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  [*] seeded %d initial testcases in %s\n", seedCount, queueDir)

	target := harness.NewDemoTarget(c.MapSize)
	mutators := harness.DefaultMutators()
	virgin := make([]byte, c.MapSize)
	for i := range virgin {
		virgin[i] = 0xff
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var limiter *rate.Limiter
	if execsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(execsPerSec), execsPerSec)
	}

	fmt.Printf("  [*] running %d scheduling iterations against the demo target\n", iterations)

	discovered := 0
loop:
	for i := 0; i < iterations; i++ {
		select {
		case <-sigChan:
			fmt.Println("\n  [*] shutting down gracefully...")
			break loop
		default:
		}

		sd, err := eng.NextSeed()
		if err != nil {
			logger.Debug("next seed", "error", err)
			continue
		}
		data, err := eng.ReadSeed(sd)
		if err != nil {
			logger.Warn("read seed", "id", sd.ID, "error", err)
			continue
		}

		mutator := mutators[i%len(mutators)]
		mutated, err := mutator.Mutate(data)
		if err != nil {
			logger.Debug("mutate", "mutator", mutator.Name(), "error", err)
			continue
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break loop
			}
		}

		res, err := target.Execute(ctx, mutated)
		if err != nil {
			logger.Warn("execute", "error", err)
			continue
		}

		store := eng.Store()
		newID := store.Count()
		filename := fmt.Sprintf("id:%06d,src:%06d,op:%s", newID, sd.ID, mutator.Name())
		if err := os.WriteFile(filepath.Join(queueDir, filename), mutated, 0o644); err != nil {
			logger.Warn("write testcase", "error", err)
			continue
		}
		candidate := queue.NewSeed(newID, filename, sd.ID, sd.Depth, store.Count(), discovered)
		candidate.Len = len(mutated)
		candidate.ExecUs = res.ExecTime.Microseconds()
		if _, err := store.Append(candidate); err != nil {
			logger.Warn("append seed", "error", err)
			continue
		}
		eng.RecordDiscovery(candidate, res.TraceBits, virgin)
		discovered++

		if err := eng.MaybeMinimize(ctx, time.Now()); err != nil {
			logger.Warn("minimize", "error", err)
		}
	}

	snap := eng.Snapshot()
	fmt.Printf("  [*] done. queue=%d active=%d favored=%d frontier=%d\n",
		snap.QueueSize, snap.ActiveSeeds, snap.FavoredSeeds, snap.FrontierEdges)
}

func runWebDashboard(cmd *cobra.Command, args []string) {
	printBanner()

	if err := os.MkdirAll(queueDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "[!] mkdir %s: %v\n", queueDir, err)
		os.Exit(1)
	}

	logger := newLogger()
	eng, _ := newEngine(logger)

	fmt.Println("  [*] starting web dashboard...")
	fmt.Printf("  open your browser at: http://localhost%s\n", webPort)
	fmt.Println("  press Ctrl+C to stop")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	server := web.NewServer(eng)

	go func() {
		if err := server.Start(webPort); err != nil {
			fmt.Printf("  [!] server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	fmt.Println("\n  [*] shutting down web server...")
	server.Stop()
}

func runReport(cmd *cobra.Command, args []string) {
	logger := newLogger()
	eng, _ := newEngine(logger)

	snap := eng.Snapshot()
	r := report.NewReport("fluxqueue scheduler state")
	r.QueueSize = snap.QueueSize
	r.ActiveSeeds = snap.ActiveSeeds
	r.FavoredSeeds = snap.FavoredSeeds
	r.PendingFavored = snap.PendingFavored
	r.FrontierEdges = snap.FrontierEdges
	r.CacheEntries = snap.CacheEntries
	r.CacheMaxEntries = snap.CacheMaxEntries
	r.AliasTableSize = snap.AliasTableSize
	if !snap.LastMinimizeAt.IsZero() {
		r.LastMinimizeAt = snap.LastMinimizeAt
	}
	r.AddEvent("snapshot", "report generated from current queue state")

	mgr := report.NewManager(outputFile)
	var paths []string
	var err error
	if reportFmt == "all" {
		paths, err = mgr.GenerateAll(r)
	} else {
		var path string
		path, err = mgr.Generate(r, reportFmt)
		paths = []string{path}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] report generation failed: %v\n", err)
		os.Exit(1)
	}
	for _, p := range paths {
		fmt.Printf("  [+] wrote %s\n", p)
	}
}
