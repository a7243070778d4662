package metrics

import (
	"sync/atomic"
	"time"

	"onitama/game"
)

type SearchMetric struct {
	Algorithm    string
	Duration     time.Duration
	Playouts     int // MCTS playouts or alpha-beta nodes
	Depth        int // Deepest completed alpha-beta iteration
	FullRollouts int
	Evaluations  int
}

type MoveMetric struct {
	Step   int
	Player game.Color
	Move   string
	Score  float64
	SearchMetric
}

type GameMetric struct {
	StartingPlayer game.Color
	Winner         string // Color name, empty on a draw
	Result         game.Result
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(algorithm string)
	SetDepth(depth int)
	AddPlayout()
	AddFullRollout()
	AddEvaluation()
	Complete() SearchMetric
}

type collector struct {
	algorithm    string
	startTime    time.Time
	depth        atomic.Int32
	playouts     atomic.Int64
	fullRollouts atomic.Int64
	evaluations  atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters for a new search.
func (m *collector) Start(algorithm string) {
	m.algorithm = algorithm
	m.startTime = time.Now()
	m.depth.Store(0)
	m.playouts.Store(0)
	m.fullRollouts.Store(0)
	m.evaluations.Store(0)
}

func (m *collector) SetDepth(depth int) {
	m.depth.Store(int32(depth))
}

func (m *collector) AddPlayout() {
	m.playouts.Add(1)
}

func (m *collector) AddFullRollout() {
	m.fullRollouts.Add(1)
}

func (m *collector) AddEvaluation() {
	m.evaluations.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Algorithm:    m.algorithm,
		Duration:     time.Since(m.startTime),
		Playouts:     int(m.playouts.Load()),
		Depth:        int(m.depth.Load()),
		FullRollouts: int(m.fullRollouts.Load()),
		Evaluations:  int(m.evaluations.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(algorithm string) {}
func (m *dummyCollector) SetDepth(depth int)     {}
func (m *dummyCollector) AddPlayout()            {}
func (m *dummyCollector) AddFullRollout()        {}
func (m *dummyCollector) AddEvaluation()         {}
func (m *dummyCollector) Complete() SearchMetric { return SearchMetric{} }
