package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/weftui/weft/internal/config"
	"github.com/weftui/weft/pkg/display"
	"github.com/weftui/weft/pkg/engine"
	"github.com/weftui/weft/pkg/inspect"
	"github.com/weftui/weft/pkg/source"
)

func demoCmd() *cobra.Command {
	var (
		configDir string
		ticks     int
		inspector string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the demo host loop",
		Long: `Run a self-contained host loop: an in-memory display store, a few
reactive sources fed by a background ticker, and a dashboard of
presenters reconciled once per tick.

With --inspector, a debug HTTP server exposes pass stats, diagnostics,
display-tree snapshots, and Prometheus metrics while the loop runs.

Examples:
  weft demo
  weft demo --ticks=100
  weft demo --inspector=localhost:7343`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(configDir, ticks, inspector)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing weft.yaml")
	cmd.Flags().IntVarP(&ticks, "ticks", "n", 0, "Stop after this many passes (0 = run until interrupted)")
	cmd.Flags().StringVarP(&inspector, "inspector", "i", "", "Enable the inspector on this address")

	return cmd
}

func runDemo(configDir string, ticks int, inspectorAddr string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	if inspectorAddr != "" {
		cfg.Inspector.Enabled = true
		cfg.Inspector.Addr = inspectorAddr
	}
	log := newLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := display.NewMemoryStore()
	window, err := store.Create("window")
	if err != nil {
		return err
	}

	registry := source.NewRegistry()
	var provider source.Provider = registry
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		rp := source.NewRedisProvider(client,
			source.WithRedisChannel(cfg.Redis.Channel),
			source.WithRedisKeyPrefix(cfg.Redis.KeyPrefix),
			source.WithRedisLogger(log),
		)
		if err := rp.Start(ctx); err != nil {
			return err
		}
		defer rp.Close()
		provider = rp
		log.Info("using redis source provider", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	}

	presenters := engine.NewRegistry()
	registerDemoPresenters(presenters)

	// The inspector needs the engine and the engine's pass observer needs
	// the inspector; the indirection breaks the tie.
	var insp *inspect.Server
	e := engine.New(store, provider, presenters,
		engine.WithLogger(log),
		engine.WithMetrics(engine.NewMetrics(engine.WithNamespace(cfg.Engine.MetricsNamespace))),
		engine.WithMaxRevisits(cfg.Engine.MaxRevisits),
		engine.WithPassObserver(func(stats engine.PassStats) {
			if insp != nil {
				insp.Observe(stats)
			}
		}),
	)

	if cfg.Inspector.Enabled {
		insp = inspect.New(cfg.Inspector.Addr, e, store, inspect.WithLogger(log))
		if err := insp.Start(ctx); err != nil {
			return err
		}
	}

	if _, err := e.Mount("dashboard", nil, window); err != nil {
		return err
	}

	// Local sources are only fed when the in-memory registry is the
	// provider; under Redis the values come from another process.
	if cfg.Redis.Addr == "" {
		go feedSources(ctx, registry)
	}

	log.Info("demo running", "tick", cfg.Demo.TickInterval.Std().String())
	ticker := time.NewTicker(cfg.Demo.TickInterval.Std())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("demo stopped", "passes", e.LastPass().Pass)
			return nil
		case <-ticker.C:
			if err := e.RunPass(ctx); err != nil {
				log.Warn("pass completed with errors", "error", err)
			}
			if ticks > 0 && e.LastPass().Pass >= uint64(ticks) {
				stats := store.Stats()
				fmt.Printf("ran %d passes: %d nodes live, %d spawned, %d despawned\n",
					e.LastPass().Pass, stats.LiveNodes, stats.TotalSpawned, stats.Despawns)
				return nil
			}
		}
	}
}

// feedSources drives the demo's reactive inputs: a clock, a counter, and
// a rotating task list.
func feedSources(ctx context.Context, registry *source.Registry) {
	tasks := []string{"weave", "measure", "cut", "press", "hem"}
	counter := 0

	write := func() {
		registry.Write("clock", time.Now().Format("15:04:05"))
		registry.Write("counter", counter)
		rotated := append(append([]string(nil), tasks[counter%len(tasks):]...), tasks[:counter%len(tasks)]...)
		registry.Write("tasks", rotated)
		counter++
	}
	write()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			write()
		}
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
