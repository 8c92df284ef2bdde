package compiler

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/conneroisu/livesass/internal/watcher"
)

// CompileResult is one finished compile.
type CompileResult struct {
	Path     string
	FullTree bool
	Duration time.Duration
	Error    error
}

// Metrics tracks compile performance
type Metrics struct {
	TotalCompiles      int64
	SuccessfulCompiles int64
	FailedCompiles     int64
	FullTreeCompiles   int64
	AverageDuration    time.Duration
	TotalDuration      time.Duration
	mutex              sync.RWMutex
}

// NewMetrics creates a new metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Record records a compile result in the metrics
func (m *Metrics) Record(result CompileResult) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalCompiles++
	m.TotalDuration += result.Duration

	if result.FullTree {
		m.FullTreeCompiles++
	}

	if result.Error != nil {
		m.FailedCompiles++
	} else {
		m.SuccessfulCompiles++
	}

	if m.TotalCompiles > 0 {
		m.AverageDuration = m.TotalDuration / time.Duration(m.TotalCompiles)
	}
}

// Snapshot returns a copy of the current metrics
func (m *Metrics) Snapshot() Metrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return Metrics{
		TotalCompiles:      m.TotalCompiles,
		SuccessfulCompiles: m.SuccessfulCompiles,
		FailedCompiles:     m.FailedCompiles,
		FullTreeCompiles:   m.FullTreeCompiles,
		AverageDuration:    m.AverageDuration,
		TotalDuration:      m.TotalDuration,
	}
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalCompiles = 0
	m.SuccessfulCompiles = 0
	m.FailedCompiles = 0
	m.FullTreeCompiles = 0
	m.AverageDuration = 0
	m.TotalDuration = 0
}

// SuccessRate returns the success rate as a percentage
func (m *Metrics) SuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.TotalCompiles == 0 {
		return 0.0
	}

	return float64(m.SuccessfulCompiles) / float64(m.TotalCompiles) * 100.0
}

// Instrumented wraps a compiler and records every call into Metrics.
type Instrumented struct {
	watcher.Compiler
	sourceRoot string
	metrics    *Metrics
	now        func() time.Time
}

// NewInstrumented wraps inner. Calls for sourceRoot, or for a partial below
// it, count as full-tree compiles.
func NewInstrumented(inner watcher.Compiler, sourceRoot string, metrics *Metrics) *Instrumented {
	return &Instrumented{
		Compiler:   inner,
		sourceRoot: filepath.Clean(sourceRoot),
		metrics:    metrics,
		now:        time.Now,
	}
}

// Compile implements watcher.Compiler.
func (i *Instrumented) Compile(ctx context.Context, path string) error {
	start := i.now()
	err := i.Compiler.Compile(ctx, path)

	clean := filepath.Clean(path)
	i.metrics.Record(CompileResult{
		Path:     path,
		FullTree: clean == i.sourceRoot || i.Compiler.IsExcluded(filepath.Base(clean)),
		Duration: i.now().Sub(start),
		Error:    err,
	})
	return err
}

// Metrics returns the metrics the wrapper records into.
func (i *Instrumented) Metrics() *Metrics {
	return i.metrics
}
