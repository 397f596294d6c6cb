package systems

import (
	"time"
)

// System represents a simulation processor stepped by a Runner.
type System interface {
	Name() string
	// Priority orders systems within a step; higher runs first.
	Priority() Priority
	// Update advances the system by deltaTime seconds.
	Update(deltaTime float64) error
}

// Priority defines execution order priority
type Priority uint16

// System priorities
const (
	PriorityLowest  Priority = 200
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// Func adapts a plain function into a System.
type Func struct {
	name     string
	priority Priority
	fn       func(deltaTime float64) error
}

// NewFunc wraps fn as a named System.
func NewFunc(name string, priority Priority, fn func(deltaTime float64) error) *Func {
	return &Func{name: name, priority: priority, fn: fn}
}

func (f *Func) Name() string                   { return f.name }
func (f *Func) Priority() Priority             { return f.priority }
func (f *Func) Update(deltaTime float64) error { return f.fn(deltaTime) }

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
}

func (m *Metrics) record(started time.Time, err error) {
	elapsed := time.Since(started)
	m.ExecutionCount++
	m.TotalExecutionTime += elapsed
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if elapsed > m.MaxExecutionTime {
		m.MaxExecutionTime = elapsed
	}
	m.LastExecutionTime = started
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}
