package reset

import (
	"context"
	"errors"
	"time"

	"github.com/stillonearth/gymbridge/internal/app/ports"
	"github.com/stillonearth/gymbridge/internal/app/session"
	"github.com/stillonearth/gymbridge/internal/domain/gym"
)

var ErrTimeout = errors.New("reset result timed out")

// UseCase submits a reset request and blocks until host logic repositions
// the world and clears the bookkeeping. Completing a reset rotates the
// episode id, so subsequent steps are recorded under a fresh episode.
type UseCase struct {
	Env      ports.Environment
	Sessions *session.Tracker
	Metrics  ports.StepMetrics
	Timeout  time.Duration
}

type Response struct {
	EpisodeID   string
	AgentStates []gym.AgentStatus
}

func (u UseCase) Execute(ctx context.Context) (Response, error) {
	if u.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.Timeout)
		defer cancel()
	}

	if err := u.Env.SubmitReset(ctx); err != nil {
		return Response{}, u.timeoutOr(err)
	}
	if _, err := u.Env.AwaitResetResult(ctx); err != nil {
		return Response{}, u.timeoutOr(err)
	}

	episodeID := ""
	if u.Sessions != nil {
		episodeID = u.Sessions.Rotate()
	}
	if u.Metrics != nil {
		u.Metrics.RecordReset()
	}
	return Response{
		EpisodeID:   episodeID,
		AgentStates: u.Env.AgentStatuses(),
	}, nil
}

func (u UseCase) timeoutOr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
