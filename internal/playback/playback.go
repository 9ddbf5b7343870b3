// Package playback owns the current frame of a trajectory and the timers that
// move it.
//
// [Controller] is a plain state machine: it never starts goroutines or reads a
// clock. Periodic work is requested through a [Scheduler], whose fires are
// fed back as [Controller.Tick] and [Controller.SkipStep]. All methods must be
// called from one goroutine.
package playback

import "time"

// State is the run state of a Controller.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Timer names one of the two periodic timers a Controller uses.
type Timer int

const (
	// TickTimer advances playback while Running.
	TickTimer Timer = iota
	// SkipTimer moves the frame while a skip control is held.
	SkipTimer
)

func (t Timer) String() string {
	if t == SkipTimer {
		return "skip"
	}
	return "tick"
}

// Scheduler arms and cancels periodic timers. Start replaces any period
// already set for the timer. After Cancel returns the timer must not be
// delivered again.
type Scheduler interface {
	Start(t Timer, period time.Duration)
	Cancel(t Timer)
}

// Direction of a held skip control.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

const (
	DefaultInterval = 30 * time.Millisecond
	MinIntervalMs   = 1
	MaxIntervalMs   = 500
	SkipPeriod      = 100 * time.Millisecond
	SkipStride      = 5
)
