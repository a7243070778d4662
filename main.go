package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"onitama/engine"
	"onitama/experiments"
	"onitama/experiments/metrics"
	"onitama/game"
	"onitama/inference"
	"onitama/meta"
	"onitama/searcher"
	"onitama/selfplay"
	"onitama/utils"
)

var (
	modes       = []string{"match", "experiment", "selfplay"}
	kinds       = []string{metrics.Random, metrics.AlphaBeta, metrics.MCTS, metrics.AlphaZero}
	experimentN = []string{"search", "exploration", "throughput"}
)

func main() {
	mode := flag.String("mode", "match", "One of "+strings.Join(modes, ", "))
	logLevel := flag.String("log-level", "info", "zerolog level")
	seed := flag.Uint64("seed", 0, "Random seed, 0 for fresh entropy")

	red := flag.String("red", metrics.AlphaBeta, "Red agent kind for -mode match")
	blue := flag.String("blue", metrics.MCTS, "Blue agent kind for -mode match")
	duration := flag.Duration("duration", meta.SEARCH_DURATION, "Search time per move")
	playouts := flag.Int("playouts", 0, "MCTS playouts per move, 0 for time only")
	depth := flag.Int("depth", 0, "Alpha-beta depth cap, 0 for the default")

	experiment := flag.String("experiment", "search", "One of "+strings.Join(experimentN, ", "))
	games := flag.Int("games", experiments.NumGames, "Games per match up, or self-play games (0 runs until interrupted)")
	workers := flag.Int("workers", meta.WORKERS, "Concurrent games")
	out := flag.String("out", "data", "Output directory")

	flush := flag.Int("games-per-flush", 50, "Self-play games per parquet batch")
	temperatureMoves := flag.Int("temperature-moves", 10, "Self-play plies sampled before playing greedily")
	useTUI := flag.Bool("tui", false, "Show a live self-play dashboard")
	noiseEpsilon := flag.Float64("noise-epsilon", searcher.NoiseEpsilon, "Weight of root Dirichlet noise in self-play")
	noiseAlpha := flag.Float64("noise-alpha", searcher.NoiseAlpha, "Dirichlet concentration of root noise")

	model := flag.String("model", "", "ONNX policy/value model; the uniform evaluator is used when empty")
	ortLib := flag.String("ort-lib", "", "ONNX Runtime shared library path")
	logits := flag.Bool("logits", false, "Model policy head emits logits")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if utils.FindIndex(modes, *mode) < 0 {
		log.Fatal().Str("mode", *mode).Msg("unknown mode")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var evaluator inference.Evaluator
	if *model != "" {
		client, err := inference.NewOnnxClient(inference.OnnxConfig{
			ModelPath:         *model,
			SharedLibraryPath: *ortLib,
			Logits:            *logits,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load model")
		}
		defer client.Close()
		evaluator = client
		log.Info().Str("model", *model).Msg("loaded model")
	}

	switch *mode {
	case "match":
		for _, kind := range []string{*red, *blue} {
			if utils.FindIndex(kinds, kind) < 0 {
				log.Fatal().Str("kind", kind).Msg("unknown agent kind")
			}
		}
		config := func(id int, kind string) metrics.AgentConfig {
			return metrics.AgentConfig{ID: id, Kind: kind, Duration: *duration, Playouts: *playouts, Depth: *depth}
		}
		err = runMatch(ctx, config(1, *red), config(2, *blue), evaluator, *seed)
	case "experiment":
		err = runExperiment(ctx, *experiment, experiments.Options{
			Root:      *out,
			Games:     *games,
			Workers:   *workers,
			Seed:      *seed,
			Evaluator: evaluator,
		})
	case "selfplay":
		cfg := selfplay.RunConfig{
			Workers:       *workers,
			Games:         *games,
			GamesPerFlush: *flush,
			OutDir:        *out,
			Seed:          *seed,
			Game: selfplay.Config{
				Playouts:         *playouts,
				Duration:         *duration,
				TemperatureMoves: *temperatureMoves,
				NoiseEpsilon:     *noiseEpsilon,
				NoiseAlpha:       *noiseAlpha,
			},
		}
		err = runSelfPlay(ctx, cfg, evaluator, *useTUI)
	}
	if err != nil {
		log.Fatal().Err(err).Str("mode", *mode).Msg("run failed")
	}
}

func runMatch(ctx context.Context, red, blue metrics.AgentConfig, evaluator inference.Evaluator, seed uint64) error {
	rng := utils.NewRand(seed)
	e := engine.LocalEngine(
		experiments.NewAgent(red, evaluator, utils.NewRand(rng.Uint64())),
		experiments.NewAgent(blue, evaluator, utils.NewRand(rng.Uint64())),
		game.NewRandomState(rng),
	)
	e.Observer = func(step int, color game.Color, move game.DoneMove, state game.State) {
		fmt.Printf("%d. %s %s\n%s\n", step, color, move, state)
	}

	outcome, err := e.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s after %d plies (%s %s vs %s %s)\n", outcome.Result, outcome.Game.TotalMoves,
		game.Red, red.Kind, game.Blue, blue.Kind)
	return nil
}

func runExperiment(ctx context.Context, name string, opts experiments.Options) error {
	var standings map[int]experiments.Standing
	var err error
	switch name {
	case "search":
		standings, err = experiments.RunSearchComparison(ctx, opts)
	case "exploration":
		standings, err = experiments.RunExplorationExperiment(ctx, opts)
	case "throughput":
		standings, err = experiments.RunThroughputExperiment(ctx, opts)
	default:
		return fmt.Errorf("unknown experiment %q", name)
	}
	if err != nil {
		return err
	}
	for id, s := range standings {
		log.Info().Int("agent", id).Int("wins", s.Wins).Int("losses", s.Losses).Int("draws", s.Draws).Msg("standing")
	}
	return nil
}

func runSelfPlay(ctx context.Context, cfg selfplay.RunConfig, evaluator inference.Evaluator, useTUI bool) error {
	if !useTUI {
		written, err := selfplay.Run(ctx, cfg, evaluator, nil)
		log.Info().Int("games", written).Msg("self-play stopped")
		return err
	}

	// Keep log lines from tearing through the dashboard.
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	updates := make(chan selfplay.GameResult, 64)
	p := tea.NewProgram(newDashboard(updates, cfg.Games), tea.WithAltScreen())
	done := make(chan error, 1)
	go func() {
		_, err := selfplay.Run(ctx, cfg, evaluator, updates)
		done <- err
		p.Send(finishedMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("dashboard: %w", err)
	}
	cancel()
	return <-done
}
