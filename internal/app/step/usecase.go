package step

import (
	"context"
	"errors"
	"time"

	"github.com/stillonearth/gymbridge/internal/app/ports"
	"github.com/stillonearth/gymbridge/internal/app/session"
	"github.com/stillonearth/gymbridge/internal/domain/gym"
)

var (
	ErrInvalidRequest = errors.New("invalid step request")
	// ErrTimeout reports that host logic did not signal step completion
	// within the configured bound. The request itself may still be consumed
	// by a later pause period.
	ErrTimeout = errors.New("step result timed out")
)

// UseCase submits one batch of per-agent actions and blocks until host logic
// settles the step. Timeout, when positive, bounds the wait; an unbounded
// wait is the core's documented behavior and the timeout is this layer's
// policy.
type UseCase struct {
	Env      ports.Environment
	Episodes ports.EpisodeRepository
	Sessions *session.Tracker
	Metrics  ports.StepMetrics
	Timeout  time.Duration
	Now      func() time.Time
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if len(req.Actions) == 0 {
		return Response{}, ErrInvalidRequest
	}
	actions := make([]*string, len(req.Actions))
	for i, a := range req.Actions {
		actions[i] = a.Action
	}

	if u.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.Timeout)
		defer cancel()
	}

	started := u.now()
	if err := u.Env.SubmitStep(ctx, actions); err != nil {
		if errors.Is(err, gym.ErrActionCount) {
			return Response{}, err
		}
		return Response{}, u.timeoutOr(err)
	}
	if _, err := u.Env.AwaitStepResult(ctx); err != nil {
		return Response{}, u.timeoutOr(err)
	}
	latency := u.now().Sub(started)

	statuses := u.Env.AgentStatuses()
	u.record(ctx, actions, statuses, latency)
	if u.Metrics != nil {
		u.Metrics.RecordStep(latency)
	}
	return Response{AgentStates: statuses}, nil
}

func (u UseCase) record(ctx context.Context, actions []*string, statuses []gym.AgentStatus, latency time.Duration) {
	if u.Episodes == nil || u.Sessions == nil {
		return
	}
	rewards := make([]float64, len(statuses))
	terminations := make([]bool, len(statuses))
	for i, st := range statuses {
		rewards[i] = st.Reward
		terminations[i] = st.IsTerminated
	}
	// Best effort: a failed append must not fail the step the client
	// already paid a control period for.
	_ = u.Episodes.AppendStep(ctx, ports.StepRecord{
		EpisodeID:    u.Sessions.Current(),
		Seq:          u.Sessions.NextSeq(),
		Actions:      actions,
		Rewards:      rewards,
		Terminations: terminations,
		Latency:      latency,
		AppliedAt:    u.now(),
	})
}

func (u UseCase) timeoutOr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		if u.Metrics != nil {
			u.Metrics.RecordStepTimeout()
		}
		return ErrTimeout
	}
	return err
}

func (u UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}
