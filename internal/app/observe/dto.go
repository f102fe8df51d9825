package observe

import (
	"encoding/json"

	"github.com/stillonearth/gymbridge/internal/domain/gym"
)

type Response struct {
	// State is the raw environment snapshot as last published by host
	// logic; null when nothing was published yet.
	State       json.RawMessage   `json:"state"`
	AgentStates []gym.AgentStatus `json:"agent_states"`
}
