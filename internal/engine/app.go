// Package engine is a minimal single-threaded tick-loop scheduler. Systems
// are invoked once per frame in registration order with the frame's elapsed
// time; there is no parallelism inside a frame, so systems may share state
// without locking.
package engine

import (
	"context"
	"time"
)

// Tick is what a system sees each frame.
type Tick struct {
	// Delta is the elapsed simulated/wall time since the previous frame.
	Delta time.Duration
	// Frame counts updates since the app started, starting at 1.
	Frame uint64
}

// System is one unit of per-frame work.
type System func(t Tick)

// App drives a fixed, ordered list of systems once per frame.
type App struct {
	systems []System
	frame   uint64
}

func NewApp() *App {
	return &App{}
}

// AddSystem appends a system. Order of registration is order of execution
// within a frame.
func (a *App) AddSystem(s System) {
	a.systems = append(a.systems, s)
}

// Update runs one frame with the given delta. Tests and embedders that own
// their own loop call this directly.
func (a *App) Update(dt time.Duration) {
	a.frame++
	t := Tick{Delta: dt, Frame: a.frame}
	for _, s := range a.systems {
		s(t)
	}
}

// Run drives Update with wall-clock deltas at the given frame interval until
// ctx is done. It never returns early on a slow frame; the delta simply
// grows.
func (a *App) Run(ctx context.Context, frameInterval time.Duration) {
	if frameInterval <= 0 {
		frameInterval = time.Second / 60
	}
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.Update(now.Sub(last))
			last = now
		}
	}
}
