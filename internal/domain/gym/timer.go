package gym

import "time"

// PauseTimer accumulates frame time while the simulation is Running and
// completes once per control cadence period. The remainder past the period
// carries over so cadence does not drift with the frame rate.
type PauseTimer struct {
	period  time.Duration
	elapsed time.Duration
}

func NewPauseTimer(period time.Duration) *PauseTimer {
	if period <= 0 {
		period = DefaultSettings().ControlCadence
	}
	return &PauseTimer{period: period}
}

func (t *PauseTimer) Period() time.Duration {
	return t.period
}

// Tick advances the timer by dt and reports whether a period completed.
// Callers must not tick while paused; the timer resumes accumulating only
// after the state returns to Running.
func (t *PauseTimer) Tick(dt time.Duration) bool {
	t.elapsed += dt
	if t.elapsed < t.period {
		return false
	}
	t.elapsed -= t.period
	return true
}
