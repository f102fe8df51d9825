package reset

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stillonearth/gymbridge/internal/app/ports"
	"github.com/stillonearth/gymbridge/internal/app/session"
	"github.com/stillonearth/gymbridge/internal/domain/gym"
)

type fakeEnv struct {
	numAgents    int
	statuses     []gym.AgentStatus
	resets       int
	blockOnAwait bool
}

func (f *fakeEnv) NumAgents() int { return f.numAgents }

func (f *fakeEnv) SubmitStep(context.Context, []*string) error { return nil }

func (f *fakeEnv) AwaitStepResult(context.Context) ([]bool, error) { return nil, nil }

func (f *fakeEnv) SubmitReset(context.Context) error {
	f.resets++
	return nil
}

func (f *fakeEnv) AwaitResetResult(ctx context.Context) (bool, error) {
	if f.blockOnAwait {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return true, nil
}

func (f *fakeEnv) AgentStatuses() []gym.AgentStatus { return f.statuses }

func (f *fakeEnv) StateJSON() ([]byte, error) { return []byte("null"), nil }

func (f *fakeEnv) Frames() []*image.RGBA { return nil }

var _ ports.Environment = (*fakeEnv)(nil)

type fakeMetrics struct {
	resets int
}

func (m *fakeMetrics) RecordStep(time.Duration) {}
func (m *fakeMetrics) RecordStepTimeout()       {}
func (m *fakeMetrics) RecordReset()             { m.resets++ }

func TestExecute_RotatesEpisodeAndReturnsClearedStatuses(t *testing.T) {
	env := &fakeEnv{
		numAgents: 2,
		statuses:  []gym.AgentStatus{{}, {}},
	}
	sessions := session.NewTracker()
	before := sessions.Current()
	metrics := &fakeMetrics{}
	uc := UseCase{Env: env, Sessions: sessions, Metrics: metrics}

	resp, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if env.resets != 1 {
		t.Fatalf("resets=%d want 1", env.resets)
	}
	if resp.EpisodeID == "" || resp.EpisodeID == before {
		t.Fatalf("episode id should rotate: before=%q after=%q", before, resp.EpisodeID)
	}
	if resp.EpisodeID != sessions.Current() {
		t.Fatal("response should carry the new episode id")
	}
	for i, st := range resp.AgentStates {
		if st.Reward != 0 || st.IsTerminated {
			t.Fatalf("agent %d not cleared: %+v", i, st)
		}
	}
	if metrics.resets != 1 {
		t.Fatalf("metrics.resets=%d want 1", metrics.resets)
	}
}

func TestExecute_TimeoutWhenHostNeverCompletesReset(t *testing.T) {
	env := &fakeEnv{numAgents: 1, blockOnAwait: true}
	uc := UseCase{Env: env, Timeout: 20 * time.Millisecond}

	if _, err := uc.Execute(context.Background()); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}
