// Package gymloop binds the shared environment record to the tick-loop
// engine: the pause scheduler and the control/reset request processors run
// as ordered systems, and host simulation logic consumes the emitted domain
// events from systems registered after Attach.
package gymloop

import (
	"github.com/stillonearth/gymbridge/internal/domain/gym"
	"github.com/stillonearth/gymbridge/internal/engine"
)

// PauseRecorder is notified once per completed pause cycle. Optional.
type PauseRecorder interface {
	RecordPause()
}

// Plugin wires one environment into an engine.App. Construct with New,
// Attach before registering host systems, then drain the event queues from
// those host systems.
type Plugin[A, P any] struct {
	State   *gym.State[A, P]
	Machine *gym.Machine

	// Pauses, Controls and Resets are the domain-event queues host logic
	// subscribes to.
	Pauses   *engine.Events[gym.EventPause]
	Controls *engine.Events[gym.EventControl]
	Resets   *engine.Events[gym.EventReset]

	// Metrics, when set, counts pause cycles.
	Metrics PauseRecorder

	timer *gym.PauseTimer
}

func New[A, P any](state *gym.State[A, P]) *Plugin[A, P] {
	return &Plugin[A, P]{
		State:    state,
		Machine:  gym.NewMachine(),
		Pauses:   engine.NewEvents[gym.EventPause](),
		Controls: engine.NewEvents[gym.EventControl](),
		Resets:   engine.NewEvents[gym.EventReset](),
		timer:    gym.NewPauseTimer(state.Settings().ControlCadence),
	}
}

// Attach registers the core systems in their required order: bootstrap,
// pause scheduler, reset processor, control processor. Host systems added
// afterwards observe the events emitted in the same frame.
func (p *Plugin[A, P]) Attach(app *engine.App) {
	app.AddSystem(p.bootstrap)
	app.AddSystem(p.pauseScheduler)
	app.AddSystem(p.resetProcessor)
	app.AddSystem(p.controlProcessor)
}

// bootstrap completes first-frame setup: Initializing -> Running,
// unconditionally.
func (p *Plugin[A, P]) bootstrap(engine.Tick) {
	if p.Machine.Current() == gym.Initializing {
		p.Machine.Set(gym.Running)
	}
}

// pauseScheduler advances the pause timer while Running and freezes the
// simulation for control when a cadence period completes. The timer is not
// touched while paused.
func (p *Plugin[A, P]) pauseScheduler(t engine.Tick) {
	if p.Machine.Current() != gym.Running {
		return
	}
	if !p.timer.Tick(t.Delta) {
		return
	}
	p.Machine.Set(gym.PausedForControl)
	p.Pauses.Send(gym.EventPause{})
	if p.Metrics != nil {
		p.Metrics.RecordPause()
	}
}

// resetProcessor drains a pending reset request while paused. It never
// blocks: the availability check precedes the receive.
func (p *Plugin[A, P]) resetProcessor(engine.Tick) {
	if p.Machine.Current() != gym.PausedForControl {
		return
	}
	if !p.State.IsResetRequest() {
		return
	}
	p.State.ReceiveResetRequest()
	p.Resets.Send(gym.EventReset{})
}

// controlProcessor drains a pending step request while paused and hands the
// action batch to host logic. Host logic is expected to apply the actions,
// update rewards/terminations, call SendStepResult and set the machine back
// to Running.
func (p *Plugin[A, P]) controlProcessor(engine.Tick) {
	if p.Machine.Current() != gym.PausedForControl {
		return
	}
	if !p.State.IsNextAction() {
		return
	}
	actions := p.State.ReceiveActionStrings()
	p.Controls.Send(gym.EventControl{Actions: actions})
}
