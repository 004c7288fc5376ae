package sim

import (
	"time"
)

// System is a piece of per-tick logic run by the Simulation.
type System interface {
	Name() string
	Priority() Priority
	// FixedUpdate advances the system by fixedDeltaTime seconds.
	FixedUpdate(fixedDeltaTime float64) error
}

// Priority defines execution order. Higher runs first.
type Priority uint16

const (
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
}

func (m *Metrics) record(took time.Duration, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += took
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	m.MaxExecutionTime = max(m.MaxExecutionTime, took)
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}

type registeredSystem struct {
	System
	metrics Metrics
}
