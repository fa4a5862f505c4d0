// Package monitor measures frame timing and animation load against a
// performance budget.
//
// The monitor keeps a rolling window of recent scheduler tick durations in a
// ring buffer and derives fps and drop rate from it. Memory usage is sampled
// from the process RSS at a frame interval so the per-frame path never makes
// a syscall. The scheduler consumes the budget-violation signal to degrade
// gracefully instead of dropping frames indefinitely.
package monitor

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/go-drift/motion/pkg/config"
)

const (
	// frameWindow is how many recent frames feed the rolling statistics.
	// One second of history at 60fps.
	frameWindow = 60

	// memorySampleFrames is how often (in frames) the process RSS is
	// refreshed.
	memorySampleFrames = 60
)

// PerformanceSnapshot is a point-in-time view of engine performance.
type PerformanceSnapshot struct {
	// FPS derived from the average frame duration over the window.
	FPS float64
	// DropRate is the fraction of windowed frames that exceeded the
	// budget's max frame time.
	DropRate float64
	// ActiveCount is the number of live animations at the last tick.
	ActiveCount int
	// AvgFrameMillis is the mean tick duration over the window.
	AvgFrameMillis float64
	// MemoryBytes is the most recently sampled process RSS.
	MemoryBytes uint64
}

// Monitor tracks rolling frame statistics against a budget. It is not
// safe for concurrent use; like the engine it lives on the frame thread.
type Monitor struct {
	budget config.PerformanceBudget

	samples [frameWindow]float64 // tick durations in ms
	index   int
	count   int

	activeCount int

	violationFrames int
	consecutive     int

	framesSinceMemSample int
	memoryBytes          uint64
	proc                 *process.Process
}

// New creates a monitor for the given budget. violationFrames is how many
// consecutive over-budget frames arm the violation signal.
func New(budget config.PerformanceBudget, violationFrames int) *Monitor {
	if violationFrames < 1 {
		violationFrames = 1
	}
	m := &Monitor{
		budget:               budget,
		violationFrames:      violationFrames,
		framesSinceMemSample: memorySampleFrames, // sample on first frame
	}
	// Failure to resolve the own process leaves memory reporting at zero;
	// the frame-time and concurrency legs of the budget still apply.
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		m.proc = p
	}
	return m
}

// RecordFrame records one scheduler tick: its wall-clock duration and the
// number of animations that were live during it.
func (m *Monitor) RecordFrame(duration time.Duration, activeCount int) {
	ms := float64(duration) / float64(time.Millisecond)
	m.samples[m.index] = ms
	m.index = (m.index + 1) % frameWindow
	if m.count < frameWindow {
		m.count++
	}
	m.activeCount = activeCount

	m.framesSinceMemSample++
	if m.framesSinceMemSample >= memorySampleFrames {
		m.framesSinceMemSample = 0
		m.sampleMemory()
	}

	if m.frameWithinBudget(ms) {
		m.consecutive = 0
	} else {
		m.consecutive++
	}
}

// frameWithinBudget checks a single tick against every budget leg.
func (m *Monitor) frameWithinBudget(frameMs float64) bool {
	if frameMs > m.budget.MaxFrameMillis {
		return false
	}
	if m.activeCount > m.budget.MaxConcurrentAnimations {
		return false
	}
	if m.memoryBytes > m.budget.MaxMemoryBytes {
		return false
	}
	return true
}

// IsWithinBudget reports whether the most recent frame met the budget.
func (m *Monitor) IsWithinBudget() bool {
	if m.count == 0 {
		return true
	}
	last := (m.index - 1 + frameWindow) % frameWindow
	return m.frameWithinBudget(m.samples[last])
}

// BudgetViolated reports whether the budget has been missed for the
// configured number of consecutive frames. The signal stays armed until
// [Monitor.ResetViolation] is called, so the scheduler can act exactly once
// per violation episode.
func (m *Monitor) BudgetViolated() bool {
	return m.consecutive >= m.violationFrames
}

// ResetViolation clears the consecutive-violation counter after the
// scheduler has applied its degradation policy.
func (m *Monitor) ResetViolation() {
	m.consecutive = 0
}

// Snapshot returns the current rolling metrics.
func (m *Monitor) Snapshot() PerformanceSnapshot {
	snap := PerformanceSnapshot{
		ActiveCount: m.activeCount,
		MemoryBytes: m.memoryBytes,
	}
	if m.count == 0 {
		return snap
	}

	var sum float64
	dropped := 0
	for i := 0; i < m.count; i++ {
		ms := m.samples[i]
		sum += ms
		if ms > m.budget.MaxFrameMillis {
			dropped++
		}
	}
	snap.AvgFrameMillis = sum / float64(m.count)
	if snap.AvgFrameMillis > 0 {
		snap.FPS = 1000 / snap.AvgFrameMillis
	}
	snap.DropRate = float64(dropped) / float64(m.count)
	return snap
}

func (m *Monitor) sampleMemory() {
	if m.proc == nil {
		return
	}
	if info, err := m.proc.MemoryInfo(); err == nil && info != nil {
		m.memoryBytes = info.RSS
	}
}
