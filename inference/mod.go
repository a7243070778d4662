// Package inference is the boundary to the position evaluator used by the
// AlphaZero searcher: state encoding, policy decoding and the evaluator
// implementations.
package inference

import (
	"errors"

	"onitama/game"
)

// Policy holds move probabilities by (held-card slot, absolute destination
// square).
type Policy [game.HandSize][game.NumSquares]float32

// Prediction is a single forward pass: Value in [-1, 1] from the mover's
// perspective plus the move policy for the mover.
type Prediction struct {
	Value  float64
	Policy Policy
}

// Evaluator is the neural network seen from the search.
type Evaluator interface {
	Evaluate(state game.State, color game.Color) (Prediction, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(state game.State, color game.Color) (Prediction, error)

func (f EvaluatorFunc) Evaluate(state game.State, color game.Color) (Prediction, error) {
	return f(state, color)
}

var ErrEvaluation = errors.New("evaluation failed")

type uniform struct{}

// Uniform predicts a drawn value and a flat policy. It stands in for a model
// before the first training round.
func Uniform() Evaluator {
	return uniform{}
}

func (uniform) Evaluate(game.State, game.Color) (Prediction, error) {
	var p Prediction
	for c := range p.Policy {
		for sq := range p.Policy[c] {
			p.Policy[c][sq] = 1.0 / PolicySize
		}
	}
	return p, nil
}
