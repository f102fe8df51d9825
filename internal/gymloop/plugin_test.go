package gymloop

import (
	"context"
	"testing"
	"time"

	"github.com/stillonearth/gymbridge/internal/domain/gym"
	"github.com/stillonearth/gymbridge/internal/engine"
)

func newTestPlugin(t *testing.T, numAgents int, cadence time.Duration) (*Plugin[string, int], *engine.App) {
	t.Helper()
	state := gym.NewState[string, int](gym.Settings{
		NumAgents:      numAgents,
		ControlCadence: cadence,
	})
	p := New(state)
	app := engine.NewApp()
	p.Attach(app)
	return p, app
}

func TestPlugin_BootstrapEntersRunning(t *testing.T) {
	p, app := newTestPlugin(t, 1, 100*time.Millisecond)
	if p.Machine.Current() != gym.Initializing {
		t.Fatalf("pre-frame state %s want initializing", p.Machine.Current())
	}
	app.Update(time.Millisecond)
	if p.Machine.Current() != gym.Running {
		t.Fatalf("post-frame state %s want running", p.Machine.Current())
	}
}

func TestPlugin_PausesAfterCeilCadenceOverDeltaFrames(t *testing.T) {
	const cadence = 100 * time.Millisecond
	const delta = 16 * time.Millisecond
	const wantFrames = 7 // ceil(100/16)

	p, app := newTestPlugin(t, 1, cadence)
	app.Update(delta) // bootstrap frame also ticks the timer

	frames := 1
	for p.Machine.Current() == gym.Running {
		app.Update(delta)
		frames++
		if frames > wantFrames {
			break
		}
	}
	if p.Machine.Current() != gym.PausedForControl {
		t.Fatalf("never paused within %d frames", frames)
	}
	if frames != wantFrames {
		t.Fatalf("paused after %d frames want %d", frames, wantFrames)
	}
	if len(p.Pauses.Drain()) != 1 {
		t.Fatal("exactly one pause event expected")
	}
}

func TestPlugin_NoAutoResume(t *testing.T) {
	p, app := newTestPlugin(t, 1, 10*time.Millisecond)
	for i := 0; i < 5; i++ {
		app.Update(10 * time.Millisecond)
	}
	if p.Machine.Current() != gym.PausedForControl {
		t.Fatalf("state %s want paused_for_control", p.Machine.Current())
	}
	// Arbitrarily many further frames must not resume the simulation.
	for i := 0; i < 100; i++ {
		app.Update(10 * time.Millisecond)
	}
	if p.Machine.Current() != gym.PausedForControl {
		t.Fatalf("core must never auto-resume, state %s", p.Machine.Current())
	}

	p.Machine.Set(gym.Running)
	app.Update(time.Millisecond)
	if p.Machine.Current() != gym.Running {
		t.Fatal("external resume should stick")
	}
}

func TestPlugin_StepRequestWaitsForPauseBoundary(t *testing.T) {
	const cadence = 100 * time.Millisecond
	const delta = 20 * time.Millisecond

	p, app := newTestPlugin(t, 2, cadence)
	app.Update(delta)

	up := "UP"
	if err := p.State.SubmitStep(context.Background(), []*string{&up, nil}); err != nil {
		t.Fatalf("SubmitStep: %v", err)
	}

	// Cadence has not elapsed: the request stays queued, un-consumed.
	for i := 0; i < 3; i++ {
		app.Update(delta)
		if !p.Controls.IsEmpty() {
			t.Fatalf("control emitted before the pause boundary (frame %d)", i+2)
		}
		if !p.State.IsNextAction() {
			t.Fatal("request consumed while still running")
		}
	}

	// Fifth tick crosses the boundary; the same frame drains the request.
	app.Update(delta)
	controls := p.Controls.Drain()
	if len(controls) != 1 {
		t.Fatalf("want exactly one control event, got %d", len(controls))
	}
	got := controls[0].Actions
	if len(got) != 2 || *got[0] != "UP" || got[1] != nil {
		t.Fatalf("control batch mismatch: %v", got)
	}
	if p.State.IsNextAction() {
		t.Fatal("request must not be duplicated")
	}

	// Later paused frames must not emit further controls.
	app.Update(delta)
	if !p.Controls.IsEmpty() {
		t.Fatal("control event duplicated on a later frame")
	}
}

func TestPlugin_ResetRequestEmitsResetEvent(t *testing.T) {
	p, app := newTestPlugin(t, 1, 10*time.Millisecond)
	if err := p.State.SubmitReset(context.Background()); err != nil {
		t.Fatalf("SubmitReset: %v", err)
	}

	// First frame bootstraps and pauses; the processors drain while paused.
	app.Update(10 * time.Millisecond)
	if len(p.Resets.Drain()) != 1 {
		t.Fatal("want exactly one reset event")
	}
	if p.State.IsResetRequest() {
		t.Fatal("reset request should be consumed")
	}
}

func TestPlugin_ProcessorsIdleWhileRunning(t *testing.T) {
	p, app := newTestPlugin(t, 1, time.Hour)
	app.Update(time.Millisecond)
	if err := p.State.SubmitReset(context.Background()); err != nil {
		t.Fatalf("SubmitReset: %v", err)
	}
	app.Update(time.Millisecond)
	if !p.Resets.IsEmpty() {
		t.Fatal("reset processor must not run while the simulation is running")
	}
}

type countingPauseRecorder struct {
	pauses int
}

func (r *countingPauseRecorder) RecordPause() { r.pauses++ }

func TestPlugin_ReportsPauseCycles(t *testing.T) {
	p, app := newTestPlugin(t, 1, 10*time.Millisecond)
	recorder := &countingPauseRecorder{}
	p.Metrics = recorder

	app.Update(10 * time.Millisecond)
	if recorder.pauses != 1 {
		t.Fatalf("pauses=%d want 1", recorder.pauses)
	}
	p.Machine.Set(gym.Running)
	app.Update(10 * time.Millisecond)
	if recorder.pauses != 2 {
		t.Fatalf("pauses=%d want 2", recorder.pauses)
	}
}
