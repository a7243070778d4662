package inference

import (
	"sync"

	"onitama/game"
)

type locked struct {
	mu    sync.Mutex
	inner Evaluator
}

// Locked serializes Evaluate calls so one model can back many concurrent
// searches.
func Locked(e Evaluator) Evaluator {
	return &locked{inner: e}
}

func (l *locked) Evaluate(state game.State, color game.Color) (Prediction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.inner.Evaluate(state, color)
}
