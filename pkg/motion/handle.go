package motion

import "fmt"

// State is the lifecycle state of an animation.
//
// The state machine:
//
//	Idle → Scheduled → Running → {Completed, Cancelled}
//	                 Running ⇄ Paused
//
// Idle is the construction state before the first scheduler tick claims the
// record. Scheduled means queued for the next frame. Completed and
// Cancelled are terminal; a terminal record returns to the pool and its
// handle eventually goes stale through reuse.
type State int

const (
	// StateIdle is the construction state.
	StateIdle State = iota
	// StateScheduled means queued for the next frame.
	StateScheduled
	// StateRunning means actively advancing.
	StateRunning
	// StatePaused means frozen at the current elapsed time.
	StatePaused
	// StateCompleted means finished at the end values. Terminal.
	StateCompleted
	// StateCancelled means stopped before completion. Terminal.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// terminal reports whether the state is Completed or Cancelled.
func (s State) terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Handle identifies one animation. Handles are opaque: external code never
// holds a reference into the registry, only this index+generation pair.
// After the underlying slot is recycled the old handle goes stale and every
// operation on it reports handle-not-found rather than touching the new
// occupant.
type Handle struct {
	index      uint32
	generation uint32
}

func (h Handle) String() string {
	return fmt.Sprintf("Handle(%d.%d)", h.index, h.generation)
}
