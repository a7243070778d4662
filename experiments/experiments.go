package experiments

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"onitama/engine"
	"onitama/experiments/metrics"
	"onitama/game"
	"onitama/inference"
	"onitama/searcher"
	"onitama/searcher/agent"
	"onitama/utils"
)

const (
	NumGames   = 20 // Per match up
	TimeBudget = 20 * time.Millisecond
)

// MatchUp pairs two agents; seats alternate between games.
type MatchUp [2]metrics.AgentConfig

type Options struct {
	Root      string // Directory for CSV records
	Games     int    // Per match up
	Workers   int
	Seed      uint64 // 0 draws fresh entropy
	Evaluator inference.Evaluator
}

// Standing counts the results of one agent config.
type Standing struct {
	Wins, Losses, Draws int
}

var searchConfigs = []metrics.AgentConfig{
	{ID: 0, Kind: metrics.Random},
	{ID: 1, Kind: metrics.AlphaBeta, Duration: TimeBudget},
	{ID: 2, Kind: metrics.MCTS, Duration: TimeBudget},
	{ID: 3, Kind: metrics.AlphaZero, Duration: TimeBudget},
}

// RunSearchComparison plays every search strategy against every other.
func RunSearchComparison(ctx context.Context, opts Options) (map[int]Standing, error) {
	matchUps := []MatchUp{}
	for i := range searchConfigs {
		for j := i + 1; j < len(searchConfigs); j++ {
			matchUps = append(matchUps, MatchUp{searchConfigs[i], searchConfigs[j]})
		}
	}
	return Run(ctx, "search_comparison", searchConfigs, matchUps, opts)
}

// RunExplorationExperiment pairs UCT agents of varying exploration constant
// against the default.
func RunExplorationExperiment(ctx context.Context, opts Options) (map[int]Standing, error) {
	baseline := metrics.AgentConfig{ID: 0, Kind: metrics.MCTS, Duration: TimeBudget}
	configs := []metrics.AgentConfig{
		{ID: 1, Kind: metrics.MCTS, Duration: TimeBudget, Exploration: 0.5},
		{ID: 2, Kind: metrics.MCTS, Duration: TimeBudget, Exploration: 1},
		{ID: 3, Kind: metrics.MCTS, Duration: TimeBudget, Exploration: 2},
		{ID: 4, Kind: metrics.MCTS, Duration: TimeBudget, MinVisits: 10},
	}

	matchUps := []MatchUp{}
	for _, config := range configs {
		matchUps = append(matchUps, MatchUp{baseline, config})
	}
	return Run(ctx, "exploration", append(configs, baseline), matchUps, opts)
}

// Run plays opts.Games games per match up on a pool of opts.Workers and
// writes agent configs, game records and move records under opts.Root.
func Run(ctx context.Context, name string, configs []metrics.AgentConfig, matchUps []MatchUp, opts Options) (map[int]Standing, error) {
	if opts.Games <= 0 {
		opts.Games = NumGames
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Seed == 0 {
		opts.Seed = utils.NewSeed()
	}
	// Games run concurrently and share the evaluator.
	if opts.Evaluator != nil {
		opts.Evaluator = inference.Locked(opts.Evaluator)
	}

	log.Info().Msgf("starting %s experiment with %d match ups of %d games...", name, len(matchUps), opts.Games)

	total := len(matchUps) * opts.Games
	outcomes := make([]engine.Outcome, total)
	seats := make([]MatchUp, total)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for mi, matchUp := range matchUps {
		for i := 0; i < opts.Games; i++ {
			job := mi*opts.Games + i
			seat := matchUp
			if i%2 == 1 {
				seat[0], seat[1] = seat[1], seat[0]
			}
			seats[job] = seat

			g.Go(func() error {
				rng := rand.New(rand.NewSource(opts.Seed + uint64(job)))
				outcome, err := runGame(ctx, seat, opts.Evaluator, rng)
				if err != nil {
					return fmt.Errorf("match up %d game %d: %w", mi+1, i+1, err)
				}
				outcomes[job] = outcome
				log.Info().Msgf("completed match up %d of %d game %d of %d: %s", mi+1, len(matchUps), i+1, opts.Games, outcome.Result)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().Msgf("completed %s experiment", name)

	standings := map[int]Standing{}
	gameRecords := make([]metrics.GameRecord, 0, total)
	moveRecords := []metrics.MoveRecord{}
	for job, outcome := range outcomes {
		red, blue := seats[job][0], seats[job][1]
		gameRecords = append(gameRecords, metrics.GameRecord{
			ID:         job + 1,
			Agent1:     red.ID,
			Agent2:     blue.ID,
			GameMetric: outcome.Game,
		})
		for _, mm := range outcome.Moves {
			moveRecords = append(moveRecords, metrics.MoveRecord{Game: job + 1, MoveMetric: mm})
		}

		winner, ok := outcome.Winner()
		for _, seat := range []struct {
			id    int
			color game.Color
		}{{red.ID, game.Red}, {blue.ID, game.Blue}} {
			s := standings[seat.id]
			switch {
			case !ok:
				s.Draws++
			case winner == seat.color:
				s.Wins++
			default:
				s.Losses++
			}
			standings[seat.id] = s
		}
	}

	if opts.Root == "" {
		return standings, nil
	}
	if err := store(opts.Root, name, configs, gameRecords, moveRecords); err != nil {
		return standings, err
	}
	return standings, nil
}

func store(root, name string, configs []metrics.AgentConfig, games []metrics.GameRecord, moves []metrics.MoveRecord) error {
	writer, err := metrics.NewWriter(root, name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(games); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moves); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored move records")
	return nil
}

// runGame executes a single game between two agents on a random deck
func runGame(ctx context.Context, seat MatchUp, evaluator inference.Evaluator, rng *rand.Rand) (engine.Outcome, error) {
	red := NewAgent(seat[0], evaluator, utils.NewRand(rng.Uint64()))
	blue := NewAgent(seat[1], evaluator, utils.NewRand(rng.Uint64()))
	e := engine.LocalEngine(red, blue, game.NewRandomState(rng))
	return e.Run(ctx)
}

// NewAgent builds the agent described by config. AlphaZero agents without an
// evaluator fall back to the uniform evaluator.
func NewAgent(config metrics.AgentConfig, evaluator inference.Evaluator, rng *rand.Rand) agent.Agent {
	options := []searcher.Option{searcher.WithRand(rng), searcher.WithMetrics()}

	if config.Playouts > 0 {
		options = append(options, searcher.WithPlayouts(config.Playouts))
	}
	if config.Depth > 0 {
		options = append(options, searcher.WithDepth(config.Depth))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.Exploration > 0 {
		options = append(options, searcher.WithExploration(config.Exploration))
	}
	if config.MinVisits > 0 {
		options = append(options, searcher.WithMinVisits(config.MinVisits))
	}

	switch config.Kind {
	case metrics.Random:
		return agent.NewRandomAgent(rng)
	case metrics.AlphaBeta:
		return agent.NewEvaluationAgent(searcher.NewAlphaBeta(options...))
	case metrics.AlphaZero:
		if evaluator == nil {
			evaluator = inference.Uniform()
		}
		options = append(options, searcher.WithEvaluator(evaluator))
		return agent.NewEvaluationAgent(searcher.NewMCTS(options...))
	case metrics.MCTS:
		return agent.NewEvaluationAgent(searcher.NewMCTS(options...))
	}
	panic(fmt.Sprintf("unknown agent kind %q", config.Kind))
}
