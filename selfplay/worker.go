// Package selfplay generates AlphaZero training data: workers play games
// between two copies of a noisy PUCT searcher and a writer flushes the
// resulting samples to parquet batches.
package selfplay

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"onitama/game"
	"onitama/inference"
	"onitama/meta"
	"onitama/searcher"
	"onitama/searcher/agent"
	"onitama/utils"
)

// Config controls a single self-play game.
type Config struct {
	Playouts         int
	Duration         time.Duration
	Temperature      float64
	TemperatureMoves int // Plies sampled at Temperature before playing greedily
	MaxPlies         int
	NoiseEpsilon     float64 // Weight of root Dirichlet noise
	NoiseAlpha       float64
}

func (c Config) withDefaults() Config {
	if c.Playouts <= 0 && c.Duration <= 0 {
		c.Playouts = meta.PLAYOUTS
	}
	if c.Temperature <= 0 {
		c.Temperature = 1
	}
	if c.TemperatureMoves <= 0 {
		c.TemperatureMoves = 10
	}
	if c.MaxPlies <= 0 {
		c.MaxPlies = meta.MAX_TURNS
	}
	if c.NoiseEpsilon <= 0 || c.NoiseEpsilon > 1 {
		c.NoiseEpsilon = searcher.NoiseEpsilon
	}
	if c.NoiseAlpha <= 0 {
		c.NoiseAlpha = searcher.NoiseAlpha
	}
	return c
}

type GameResult struct {
	GameID  string
	Result  game.Result
	Plies   int
	Samples int
}

// PlayGame plays one game from a random deck and returns one sample per
// non-pass move, valued from the mover's side once the game ends. A game
// that reaches MaxPlies is valued 0 for everyone.
func PlayGame(ctx context.Context, id string, cfg Config, evaluator inference.Evaluator, rng *rand.Rand) ([]Sample, GameResult, error) {
	cfg = cfg.withDefaults()
	if evaluator == nil {
		evaluator = inference.Uniform()
	}

	mcts := searcher.NewMCTS(
		searcher.WithPlayouts(cfg.Playouts),
		searcher.WithDuration(cfg.Duration),
		searcher.WithEvaluator(evaluator),
		searcher.WithTraining(),
		searcher.WithNoise(cfg.NoiseEpsilon, cfg.NoiseAlpha),
		searcher.WithRand(utils.NewRand(rng.Uint64())),
	)
	player := agent.NewTrainingAgent(mcts, cfg.Temperature, rng)

	state := game.NewRandomState(rng)
	color := state.StartingColor()
	result := game.InProgress
	samples := []Sample{}

	plies := 0
	for plies < cfg.MaxPlies && !result.IsWin() {
		if err := ctx.Err(); err != nil {
			return nil, GameResult{}, err
		}
		if plies == cfg.TemperatureMoves {
			player.Temperature = 0
		}

		move, _, err := player.ProposeMove(ctx, state, color)
		if err != nil {
			return nil, GameResult{}, fmt.Errorf("ply %d: %w", plies, err)
		}
		// A pass has no entry in the policy head.
		if !move.Pass {
			samples = append(samples, Sample{
				GameID: id,
				Ply:    int32(plies),
				Color:  color.String(),
				Cards:  cardIDs(state.Deck),
				State:  inference.Encode(state, color),
				Policy: inference.EncodePolicy(player.Last().Policy, color),
				Move:   move.String(),
			})
		}

		result = state.Play(move, color)
		color = color.Opponent()
		plies++
	}
	if err := ctx.Err(); err != nil {
		return nil, GameResult{}, err
	}

	if winner, ok := result.Winner(); ok {
		for i := range samples {
			samples[i].Value = -1
			if samples[i].Color == winner.String() {
				samples[i].Value = 1
			}
		}
	}

	return samples, GameResult{GameID: id, Result: result, Plies: plies, Samples: len(samples)}, nil
}

func cardIDs(d game.Deck) []int32 {
	ids := make([]int32, len(d))
	for i, c := range d {
		ids[i] = int32(c.ID)
	}
	return ids
}

// RunConfig controls a pool of self-play workers.
type RunConfig struct {
	Workers       int
	Games         int // 0 plays until ctx is done
	GamesPerFlush int
	OutDir        string
	Seed          uint64 // 0 draws fresh entropy
	Game          Config
}

// Run plays games on cfg.Workers goroutines sharing one evaluator and writes
// their samples to cfg.OutDir. Cancelling ctx stops the workers after their
// current search; finished games are still flushed. Run returns the number of
// games written. Each finished game is offered to updates without blocking.
func Run(ctx context.Context, cfg RunConfig, evaluator inference.Evaluator, updates chan<- GameResult) (int, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = meta.WORKERS
	}
	if cfg.GamesPerFlush <= 0 {
		cfg.GamesPerFlush = 50
	}
	if cfg.Seed == 0 {
		cfg.Seed = utils.NewSeed()
	}
	if evaluator == nil {
		evaluator = inference.Uniform()
	}
	evaluator = inference.Locked(evaluator)

	log.Info().
		Int("workers", cfg.Workers).
		Int("games", cfg.Games).
		Str("out", cfg.OutDir).
		Msg("starting self-play")

	batches := make(chan []Sample, cfg.Workers)
	var written int
	var flushErr error
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		written, flushErr = flushLoop(cfg.OutDir, cfg.GamesPerFlush, batches)
	}()

	var next atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			for {
				job := next.Add(1) - 1
				if cfg.Games > 0 && job >= int64(cfg.Games) {
					return nil
				}
				if gctx.Err() != nil {
					return nil
				}

				id := fmt.Sprintf("%016x-%d", cfg.Seed, job)
				rng := rand.New(rand.NewSource(cfg.Seed + uint64(job)))
				samples, result, err := PlayGame(gctx, id, cfg.Game, evaluator, rng)
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					log.Debug().Int("worker", w).Str("game", id).Msg("game abandoned")
					return nil
				}
				if err != nil {
					return fmt.Errorf("worker %d game %s: %w", w, id, err)
				}

				log.Debug().
					Int("worker", w).
					Str("game", id).
					Str("result", result.Result.String()).
					Int("plies", result.Plies).
					Msg("game complete")
				batches <- samples

				select {
				case updates <- result:
				default:
				}
			}
		})
	}

	err := g.Wait()
	close(batches)
	<-writerDone
	if err != nil {
		return written, err
	}
	log.Info().Int("games", written).Msg("self-play complete")
	return written, flushErr
}

// flushLoop buffers games and writes one parquet batch per gamesPerFlush,
// plus a final partial batch once in is closed. It returns the number of
// games written and the first flush error.
func flushLoop(outDir string, gamesPerFlush int, in <-chan []Sample) (int, error) {
	pending := make([]Sample, 0, 64*gamesPerFlush)
	pendingGames, written, batch := 0, 0, 0
	var firstErr error

	flush := func() {
		if pendingGames == 0 {
			return
		}
		path, err := WriteSamples(outDir, batch, pending)
		batch++
		if err != nil {
			log.Error().Err(err).Int("games", pendingGames).Int("rows", len(pending)).Msg("parquet flush failed")
			if firstErr == nil {
				firstErr = err
			}
		} else {
			log.Info().Str("path", path).Int("games", pendingGames).Int("rows", len(pending)).Msg("parquet flush ok")
			written += pendingGames
		}
		pending = pending[:0]
		pendingGames = 0
	}

	for rows := range in {
		pending = append(pending, rows...)
		pendingGames++
		if pendingGames >= gamesPerFlush {
			flush()
		}
	}
	flush()
	return written, firstErr
}
