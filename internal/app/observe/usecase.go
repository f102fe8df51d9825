package observe

import (
	"context"
	"fmt"

	"github.com/stillonearth/gymbridge/internal/app/ports"
)

// UseCase answers a state query: a pure read of the latest published
// environment snapshot and the per-agent bookkeeping. It does not go through
// the channel protocol and never blocks on the tick loop.
type UseCase struct {
	Env ports.Environment
}

func (u UseCase) Execute(_ context.Context) (Response, error) {
	state, err := u.Env.StateJSON()
	if err != nil {
		return Response{}, fmt.Errorf("serialize environment state: %w", err)
	}
	return Response{
		State:       state,
		AgentStates: u.Env.AgentStatuses(),
	}, nil
}
