package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/navgrid/internal/config"
	"github.com/l1jgo/navgrid/internal/core/event"
	"github.com/l1jgo/navgrid/internal/data"
	"github.com/l1jgo/navgrid/internal/metrics"
	"github.com/l1jgo/navgrid/internal/persist"
	"github.com/l1jgo/navgrid/internal/scripting"
	"github.com/l1jgo/navgrid/internal/system"
	"github.com/l1jgo/navgrid/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(rows, cols int, width float64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              navsim  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      flow-field navigation simulator      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mgrid:\033[0m %dx%d \033[90m(cell width %g)\033[0m\n\n", rows, cols, width)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Simulation ────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	geo := cfg.Geometry()
	printBanner(geo.Rows, geo.Cols, geo.Width)

	// 3. Optional PostgreSQL layout store
	var (
		layouts *persist.LayoutRepo
		journal *geometryJournal
	)
	if cfg.Database.Enabled {
		printSection("database")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		fmt.Println()

		layouts = persist.NewLayoutRepo(db)
		journal = newGeometryJournal(persist.NewGeometryLogRepo(db), log)
		defer journal.Close()
	}

	// 4. Scripts
	printSection("data")

	engine, err := scripting.NewEngine(cfg.Data.ScriptDir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()

	heuristic := cfg.HeuristicParams()
	if curve, ok := engine.HeuristicCurve(heuristic); ok {
		heuristic = curve
		printOK("heuristic curve from script")
	}

	// 5. World state and obstacles
	ws := world.NewState(geo, world.Options{
		Teams:     cfg.Sim.Teams,
		Sight:     cfg.Sim.Sight,
		Heuristic: heuristic,
		Repulsion: cfg.Repulsion(),
	}, log)

	src, err := loadObstacles(context.Background(), cfg, engine, layouts, log)
	if err != nil {
		return fmt.Errorf("obstacles: %w", err)
	}
	ws.SetObstacles(src.stamps)
	printStat("obstacle stamps ("+src.origin+")", len(src.stamps))
	printStat("blocked cells", ws.Obstacles.Count())

	// 6. Spawns
	spawned, err := spawnAgents(ws, cfg.Data.SpawnPath, cfg.Sim.Teams, log)
	if err != nil {
		return fmt.Errorf("spawns: %w", err)
	}
	printStat("agents", spawned)
	fmt.Println()

	// 7. Metrics
	var exporter *metrics.Exporter
	if cfg.Metrics.Enabled {
		exporter = metrics.NewExporter()
		srv := exporter.Serve(cfg.Metrics.BindAddress, log)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	// 8. Systems
	pipeline := system.NewPipeline(ws, system.SteerParams{
		MaxForce: cfg.Sim.MaxForce,
		MaxSpeed: cfg.Sim.MaxSpeed,
		Damping:  cfg.Sim.Damping,
		Workers:  cfg.Sim.Workers,
	}, cfg.Sim.Teams, exporter)
	printOK(fmt.Sprintf("%d systems registered", pipeline.Runner.Len()))

	if journal != nil {
		journal.Record(persist.GeometryEntry{Geometry: geo, Heuristic: heuristic, Layout: src.origin})
		event.Subscribe(ws.Bus, func(e event.GeometryChanged) {
			journal.Record(persist.GeometryEntry{Geometry: e.New, Heuristic: e.Heuristic, Layout: src.origin})
		})
	}

	// 9. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	printReady(fmt.Sprintf("simulation running (tick: %s)", cfg.Sim.TickRate))
	fmt.Println()

	const reportInterval = 200 // ticks
	var tick uint64
	for {
		select {
		case <-ticker.C:
			start := time.Now()
			pipeline.Runner.Tick(cfg.Sim.TickRate)
			if exporter != nil {
				exporter.ObserveTick(time.Since(start))
			}
			tick++
			if tick%reportInterval == 0 {
				st := ws.Flows.Stats()
				log.Info("tick report",
					zap.Uint64("tick", tick),
					zap.Int("agents", len(ws.Agents())),
					zap.Int("flow_entries", st.Entries),
					zap.Int("finalized_cells", st.Finalized),
					zap.Int("unreachable", pipeline.Navigation.Unreachable()),
					zap.Duration("last_tick", time.Since(start)))
			}

		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			return nil
		}
	}
}

// spawnAgents places every spawn group on passable cells and points them at
// their destination. A missing spawn file spawns nothing.
func spawnAgents(ws *world.State, path string, teams int, log *zap.Logger) (int, error) {
	groups, err := data.LoadSpawnGroups(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("no spawn list", zap.String("path", path))
			return 0, nil
		}
		return 0, err
	}
	geo := ws.Geometry()
	total := 0
	for _, g := range groups {
		if g.Team < 0 || g.Team >= teams {
			log.Warn("spawn group team out of range",
				zap.String("group", g.Name), zap.Int("team", g.Team), zap.Int("teams", teams))
			continue
		}
		cells := g.Cells(geo, ws.Obstacles.IsPassable)
		if len(cells) < g.Count {
			log.Warn("spawn group short of open cells",
				zap.String("group", g.Name), zap.Int("want", g.Count), zap.Int("got", len(cells)))
		}
		for _, c := range cells {
			id := ws.SpawnAgent(g.Team, geo.ToWorld(c))
			if g.Dest != nil {
				ws.SetDestination(id, geo.ToWorld(g.Dest.Cell()))
			}
		}
		total += len(cells)
	}
	return total, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
