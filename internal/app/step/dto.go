package step

import "github.com/stillonearth/gymbridge/internal/domain/gym"

// AgentAction is one agent's submitted action. A null action is a no-op for
// that agent; the core transports the string without interpreting it.
type AgentAction struct {
	Action *string `json:"action"`
}

type Request struct {
	Actions []AgentAction
}

type Response struct {
	AgentStates []gym.AgentStatus
}
