package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/game"
	"github.com/pthm-cable/ecosim/telemetry"
	"github.com/pthm-cable/ecosim/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	turns := flag.Int("turns", 0, "Turn budget (0 = use config)")
	printGrid := flag.Bool("print", false, "Print the final grid as text (headless only)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q\n", *logLevel)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *turns > 0 {
		cfg.Simulation.Turns = *turns
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := output.Close(); err != nil {
			slog.Error("failed to close output files", "error", err)
		}
	}()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	eco, err := game.New(cfg, game.Options{Output: output, LogStats: *logStats})
	if err != nil {
		slog.Error("failed to create ecosystem", "error", err)
		os.Exit(1)
	}
	schedule, err := game.NewEventSchedule(cfg)
	if err != nil {
		slog.Error("failed to schedule events", "error", err)
		os.Exit(1)
	}

	if *headless {
		runHeadless(eco, schedule)
		if *printGrid {
			fmt.Print(eco.String())
		}
		return
	}

	// Graphical mode
	rl.InitWindow(cfg.Derived.ScreenWidth, cfg.Derived.ScreenHeight, "Ecosim")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(max(cfg.Screen.TargetFPS, 30)))

	viewer.New(eco, schedule, cfg).Run()
}

// runHeadless advances until the budget is spent or every agent is dead.
func runHeadless(eco *game.Ecosystem, schedule *game.EventSchedule) {
	slog.Info("starting headless simulation", "seed", eco.Seed(), "turns", eco.TurnsRemaining())

	for {
		schedule.Fire(eco)
		if _, err := eco.AdvanceOneTurn(); err != nil {
			if !errors.Is(err, game.ErrTurnBudgetExhausted) {
				slog.Error("turn failed", "error", err)
			}
			break
		}
		if eco.Population().Total() == 0 {
			slog.Info("population extinct", "turn", eco.Turn())
			break
		}
	}

	pop := eco.Population()
	slog.Info("simulation finished",
		"turn", eco.Turn(),
		"ants", pop.Ants,
		"cicadas", pop.Cicadas,
		"mogwais", pop.Mogwais,
	)
	eco.PerfCollector().Stats().LogStats()
}
