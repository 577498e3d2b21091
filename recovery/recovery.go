// Package recovery tracks graphics device loss and tells the render loop when
// to release and when to rebuild its device objects.
package recovery

import "sync/atomic"

type State int32

const (
	Healthy State = iota
	LostPendingRelease
	LostReleased
	RestoredPendingRecompile
)

func (s State) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case LostPendingRelease:
		return "lost-pending-release"
	case LostReleased:
		return "lost-released"
	case RestoredPendingRecompile:
		return "restored-pending-recompile"
	}
	return "unknown"
}

// Action is what the render loop must do on this frame.
type Action int

const (
	// Render draws normally.
	Render Action = iota
	// Release frees the program and skips drawing.
	Release
	// Skip draws nothing.
	Skip
	// Recompile rebuilds the program and every uniform location, then draws.
	Recompile
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Release:
		return "release"
	case Skip:
		return "skip"
	case Recompile:
		return "recompile"
	}
	return "unknown"
}

// Machine is the device-loss state machine. DeviceLost and DeviceRestored may be
// called from any goroutine; Tick belongs to the render loop.
type Machine struct {
	state atomic.Int32
}

func New() *Machine {
	return &Machine{}
}

func (m *Machine) State() State {
	return State(m.state.Load())
}

// DeviceLost moves a working device to LostPendingRelease.
// It reports whether the state changed.
func (m *Machine) DeviceLost() bool {
	for {
		cur := m.State()
		switch cur {
		case Healthy, RestoredPendingRecompile:
			if m.state.CompareAndSwap(int32(cur), int32(LostPendingRelease)) {
				return true
			}
		default:
			return false
		}
	}
}

// DeviceRestored moves a lost device to RestoredPendingRecompile.
// A restore that arrives before the release frame still forces the recompile;
// the stale program is then disposed by the swap.
func (m *Machine) DeviceRestored() bool {
	for {
		cur := m.State()
		switch cur {
		case LostPendingRelease, LostReleased:
			if m.state.CompareAndSwap(int32(cur), int32(RestoredPendingRecompile)) {
				return true
			}
		default:
			return false
		}
	}
}

// Tick advances the machine by one frame and returns the action for it.
func (m *Machine) Tick() Action {
	for {
		cur := m.State()
		switch cur {
		case Healthy:
			return Render
		case LostReleased:
			return Skip
		case LostPendingRelease:
			if m.state.CompareAndSwap(int32(cur), int32(LostReleased)) {
				return Release
			}
		case RestoredPendingRecompile:
			if m.state.CompareAndSwap(int32(cur), int32(Healthy)) {
				return Recompile
			}
		default:
			return Skip
		}
	}
}
