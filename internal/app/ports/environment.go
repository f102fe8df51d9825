package ports

import (
	"context"
	"image"

	"github.com/stillonearth/gymbridge/internal/domain/gym"
)

// Environment is the network-facing surface of the shared environment
// record. Submit* pushes a request envelope to the tick loop, Await* parks
// the caller until host logic signals completion, and the read methods
// reflect the outcome of the just-processed request once the signal arrived.
type Environment interface {
	NumAgents() int

	SubmitStep(ctx context.Context, actions []*string) error
	AwaitStepResult(ctx context.Context) ([]bool, error)

	SubmitReset(ctx context.Context) error
	AwaitResetResult(ctx context.Context) (bool, error)

	AgentStatuses() []gym.AgentStatus
	StateJSON() ([]byte, error)
	Frames() []*image.RGBA
}
