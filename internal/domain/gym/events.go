package gym

// Domain events emitted by the tick-loop systems and consumed by
// host-supplied logic within the same scheduling pass. They are one-shot
// notifications and are never persisted.

// EventPause fires when the pause timer elapses and the simulation freezes
// for control.
type EventPause struct{}

// EventControl carries one client-submitted action string per agent. A nil
// entry is a no-op for that agent.
type EventControl struct {
	Actions []*string
}

// EventReset fires when a client reset request is consumed. Host logic is
// expected to reposition the world and call State.Reset once done.
type EventReset struct{}
