// Package gridworld is a reference environment: agents on an unbounded 2D
// grid that move one unit per control cycle. It demonstrates the host side
// of the contract, pausing, applying actions, publishing state and
// signaling results.
package gridworld

import (
	"image"
	"image/color"

	"github.com/stillonearth/gymbridge/internal/domain/gym"
	"github.com/stillonearth/gymbridge/internal/engine"
	"github.com/stillonearth/gymbridge/internal/gymloop"
)

// Action is a decoded movement command.
type Action string

const (
	ActionUp    Action = "UP"
	ActionDown  Action = "DOWN"
	ActionLeft  Action = "LEFT"
	ActionRight Action = "RIGHT"
)

type Agent struct {
	Location [2]float64 `json:"location"`
	Health   float64    `json:"health"`
}

// WorldState is the published observation snapshot.
type WorldState struct {
	Agents []Agent `json:"agents"`
}

// World owns the simulated agents. All mutation happens on the tick loop;
// the shared record is the only cross-thread surface.
type World struct {
	state  *gym.State[Action, WorldState]
	plugin *gymloop.Plugin[Action, WorldState]
	agents []Agent
}

func New(state *gym.State[Action, WorldState], plugin *gymloop.Plugin[Action, WorldState]) *World {
	return &World{
		state:  state,
		plugin: plugin,
		agents: make([]Agent, state.NumAgents()),
	}
}

// Attach registers the plugin systems followed by the world's event
// handlers, so events emitted by the processors are handled within the same
// frame.
func (w *World) Attach(app *engine.App) {
	w.plugin.Attach(app)
	app.AddSystem(w.handlePause)
	app.AddSystem(w.handleReset)
	app.AddSystem(w.handleControl)
}

// handlePause publishes the observation snapshot at every decision point so
// state queries between steps see the frozen world.
func (w *World) handlePause(engine.Tick) {
	for range w.plugin.Pauses.Drain() {
		w.state.SetEnvState(w.snapshot())
		if w.state.Settings().RenderToBuffer {
			w.renderFrames()
		}
	}
}

// handleReset repositions every agent at the origin and clears bookkeeping,
// which also answers the waiting reset call.
func (w *World) handleReset(engine.Tick) {
	for range w.plugin.Resets.Drain() {
		for i := range w.agents {
			w.agents[i] = Agent{}
		}
		w.state.SetEnvState(w.snapshot())
		w.state.Reset()
		w.plugin.Machine.Set(gym.Running)
	}
}

// handleControl applies one batch of per-agent actions, settles rewards and
// terminations, signals the step result and resumes the simulation.
func (w *World) handleControl(engine.Tick) {
	for _, control := range w.plugin.Controls.Drain() {
		terminations := make([]bool, len(w.agents))
		for i := range w.agents {
			if i >= len(control.Actions) {
				break
			}
			action := parse(control.Actions[i])
			w.state.SetAction(i, action)
			if action != nil {
				w.apply(i, *action)
			}
			// Rewards stay at their running values and nobody terminates;
			// the grid is unbounded.
			w.state.SetTerminated(i, false)
		}
		w.state.SetEnvState(w.snapshot())
		w.state.SendStepResult(terminations)
		w.plugin.Machine.Set(gym.Running)
	}
}

func (w *World) apply(i int, action Action) {
	switch action {
	case ActionUp:
		w.agents[i].Location[1]++
	case ActionDown:
		w.agents[i].Location[1]--
	case ActionLeft:
		w.agents[i].Location[0]--
	case ActionRight:
		w.agents[i].Location[0]++
	}
}

func (w *World) snapshot() WorldState {
	agents := make([]Agent, len(w.agents))
	copy(agents, w.agents)
	return WorldState{Agents: agents}
}

// renderFrames draws a minimal per-agent visual observation: the agent as a
// dot at its grid position, origin at the frame center.
func (w *World) renderFrames() {
	settings := w.state.Settings()
	for i, agent := range w.agents {
		frame := image.NewRGBA(image.Rect(0, 0, settings.FrameWidth, settings.FrameHeight))
		cx := settings.FrameWidth/2 + int(agent.Location[0])
		cy := settings.FrameHeight/2 - int(agent.Location[1])
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				frame.Set(cx+dx, cy+dy, color.RGBA{R: 255, A: 255})
			}
		}
		w.state.SetFrame(i, frame)
	}
}

func parse(raw *string) *Action {
	if raw == nil {
		return nil
	}
	switch Action(*raw) {
	case ActionUp, ActionDown, ActionLeft, ActionRight:
		a := Action(*raw)
		return &a
	default:
		return nil
	}
}
