package gym

import "testing"

func TestMachine_StartsInitializing(t *testing.T) {
	m := NewMachine()
	if m.Current() != Initializing {
		t.Fatalf("Current()=%s want initializing", m.Current())
	}
}

func TestMachine_TogglesBetweenRunningAndPaused(t *testing.T) {
	m := NewMachine()
	m.Set(Running)
	m.Set(PausedForControl)
	if m.Current() != PausedForControl {
		t.Fatalf("Current()=%s want paused_for_control", m.Current())
	}
	m.Set(Running)
	if m.Current() != Running {
		t.Fatalf("Current()=%s want running", m.Current())
	}
}

func TestSimulationState_Strings(t *testing.T) {
	cases := map[SimulationState]string{
		Initializing:        "initializing",
		Running:             "running",
		PausedForControl:    "paused_for_control",
		SimulationState(99): "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("String()=%q want %q", got, want)
		}
	}
}
