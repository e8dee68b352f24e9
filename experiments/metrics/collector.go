package metrics

import (
	"sync/atomic"
	"time"
)

// Outcome of one search.
type Outcome string

const (
	Solved    Outcome = "solved"
	Exhausted Outcome = "exhausted"
	OutOfTime Outcome = "budget"
	Cancelled Outcome = "cancelled"
	Failed    Outcome = "error"
)

type SearchMetric struct {
	Budget         int
	StartTime      time.Time
	Duration       time.Duration
	Expanded       int
	Nodes          int
	MaxBucket      int
	SolutionLength int
	Outcome        Outcome
}

type DealMetric struct {
	Variant  string
	Seed     uint64
	Hash     uint64 // Layout hash of the deal
	Attempts int
	SearchMetric
}

type Collector interface {
	Start(budget int)
	AddExpansion(bucket int)
	AddNode()
	Complete(outcome Outcome, solutionLength int) SearchMetric
}

type collector struct {
	budget    int
	startTime time.Time
	expanded  atomic.Int32
	nodes     atomic.Int32
	maxBucket atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(budget int) {
	m.startTime = time.Now()
	m.budget = budget
	m.expanded.Store(0)
	m.nodes.Store(0)
	m.maxBucket.Store(0)
}

func (m *collector) AddExpansion(bucket int) {
	m.expanded.Add(1)
	for {
		current := m.maxBucket.Load()
		if int32(bucket) <= current || m.maxBucket.CompareAndSwap(current, int32(bucket)) {
			return
		}
	}
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) Complete(outcome Outcome, solutionLength int) SearchMetric {
	return SearchMetric{
		Budget:         m.budget,
		StartTime:      m.startTime,
		Duration:       time.Since(m.startTime),
		Expanded:       int(m.expanded.Load()),
		Nodes:          int(m.nodes.Load()),
		MaxBucket:      int(m.maxBucket.Load()),
		SolutionLength: solutionLength,
		Outcome:        outcome,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(budget int)        {}
func (m *dummyCollector) AddExpansion(bucket int) {}
func (m *dummyCollector) AddNode()                {}
func (m *dummyCollector) Complete(outcome Outcome, solutionLength int) SearchMetric {
	return SearchMetric{Outcome: outcome, SolutionLength: solutionLength}
}
