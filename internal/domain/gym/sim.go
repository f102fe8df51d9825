package gym

// SimulationState gates which tick-loop systems run each frame.
type SimulationState int

const (
	// Initializing is the state before first-frame setup completes.
	Initializing SimulationState = iota
	// Running advances the simulation and the pause timer.
	Running
	// PausedForControl freezes advancement while a control request is
	// accepted. Only host logic moves the machine back to Running.
	PausedForControl
)

func (s SimulationState) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case PausedForControl:
		return "paused_for_control"
	default:
		return "unknown"
	}
}

// Machine is the simulation state machine. It lives for the process lifetime
// and has no terminal state. It is confined to the tick loop: systems and
// host handlers run on the same goroutine, so no locking is needed.
type Machine struct {
	current SimulationState
}

func NewMachine() *Machine {
	return &Machine{current: Initializing}
}

func (m *Machine) Current() SimulationState {
	return m.current
}

// Set transitions the machine. The core never auto-resumes from
// PausedForControl; that transition is the host's extension point.
func (m *Machine) Set(next SimulationState) {
	m.current = next
}
