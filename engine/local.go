package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"onitama/experiments/metrics"
	"onitama/game"
	"onitama/meta"
	"onitama/searcher/agent"
)

// Observer is called after every ply.
type Observer func(step int, color game.Color, move game.DoneMove, state game.State)

type Local struct {
	State    game.State
	Agents   [game.NumColors]agent.Agent
	MaxTurns int
	Observer Observer
}

// LocalEngine plays red against blue from state. The color of the neutral
// card moves first.
func LocalEngine(red, blue agent.Agent, state game.State) *Local {
	if red == nil || blue == nil {
		panic("need an agent for each color")
	}
	return &Local{
		State:    state,
		Agents:   [game.NumColors]agent.Agent{red, blue},
		MaxTurns: meta.MAX_TURNS,
	}
}

// Run executes the entire game loop until a winner is found. An agent error
// or an illegal move ends the game with an error.
func (e *Local) Run(ctx context.Context) (Outcome, error) {
	color := e.State.StartingColor()
	outcome := Outcome{}
	outcome.Game.StartingPlayer = color
	outcome.Game.StartTime = time.Now()

	log.Info().Msgf("%s is starting with deck %s", color, e.State.Deck)

	result := e.State.CurrentResult()
	step := 1
	for ; !result.IsWin() && step <= e.MaxTurns; step++ {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		a := e.Agents[color]
		move, score, err := a.ProposeMove(ctx, e.State, color)
		if err != nil {
			return outcome, fmt.Errorf("%s agent at ply %d: %w", color, step, err)
		}
		if err := game.IsLegal(&e.State, color, move); err != nil {
			return outcome, fmt.Errorf("%s agent at ply %d proposed %s: %w", color, step, move, err)
		}

		moveMetric := metrics.MoveMetric{Step: step, Player: color, Move: move.String(), Score: score}
		if reporter, ok := a.(agent.Reporter); ok {
			moveMetric.SearchMetric = reporter.LastMetric()
		}
		outcome.Moves = append(outcome.Moves, moveMetric)
		outcome.History = append(outcome.History, move)

		result = e.State.Play(move, color)
		log.Debug().Int("step", step).Str("color", color.String()).Str("move", move.String()).Float64("score", score).Msg("move played")
		if e.Observer != nil {
			e.Observer(step, color, move, e.State)
		}
		color = color.Opponent()
	}

	if !result.IsWin() {
		result = game.InProgress
		log.Info().Msgf("stopped after %d plies without a winner", e.MaxTurns)
	} else {
		log.Info().Msgf("game over after %d plies: %s", len(outcome.History), result)
	}

	outcome.Result = result
	outcome.Final = e.State
	outcome.Game.Result = result
	if winner, ok := result.Winner(); ok {
		outcome.Game.Winner = winner.String()
	}
	outcome.Game.EndTime = time.Now()
	outcome.Game.Duration = outcome.Game.EndTime.Sub(outcome.Game.StartTime)
	outcome.Game.TotalMoves = len(outcome.History)
	return outcome, nil
}
