package gym

import "time"

// Settings is the immutable configuration of an environment, supplied once at
// startup.
type Settings struct {
	// NumAgents fixes the length of every per-agent array for the lifetime
	// of the environment.
	NumAgents int
	// ControlCadence is the interval of simulated time between pause
	// opportunities. The RL client gets exactly one decision point per
	// cadence period regardless of frame rate.
	ControlCadence time.Duration
	// RenderToBuffer enables host-published visual observations.
	RenderToBuffer bool
	FrameWidth     int
	FrameHeight    int
}

func DefaultSettings() Settings {
	return Settings{
		NumAgents:      1,
		ControlCadence: 100 * time.Millisecond,
		FrameWidth:     256,
		FrameHeight:    256,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.NumAgents < 1 {
		s.NumAgents = def.NumAgents
	}
	if s.ControlCadence <= 0 {
		s.ControlCadence = def.ControlCadence
	}
	if s.FrameWidth <= 0 {
		s.FrameWidth = def.FrameWidth
	}
	if s.FrameHeight <= 0 {
		s.FrameHeight = def.FrameHeight
	}
	return s
}
