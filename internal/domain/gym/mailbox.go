package gym

import "context"

// Mailbox is a single-slot rendezvous queue. At most one value is in flight
// at a time; a value sent once is received exactly once. Endpoints are safe
// to share across goroutines.
type Mailbox[T any] struct {
	slot chan T
}

func NewMailbox[T any]() Mailbox[T] {
	return Mailbox[T]{slot: make(chan T, 1)}
}

// Send blocks while the slot is occupied.
func (m Mailbox[T]) Send(v T) {
	m.slot <- v
}

// SendContext blocks like Send but gives up when ctx is done.
func (m Mailbox[T]) SendContext(ctx context.Context, v T) error {
	select {
	case m.slot <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend places v in the slot if it is empty and reports whether it did.
// Callers that must never block (the tick-loop processors) use this instead
// of Send.
func (m Mailbox[T]) TrySend(v T) bool {
	select {
	case m.slot <- v:
		return true
	default:
		return false
	}
}

// Recv blocks until a value is available and consumes it.
func (m Mailbox[T]) Recv() T {
	return <-m.slot
}

// TryRecv consumes a queued value if one is present and reports whether it
// did.
func (m Mailbox[T]) TryRecv() (T, bool) {
	select {
	case v := <-m.slot:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// RecvContext blocks like Recv but gives up when ctx is done. The network
// side uses this so a request timeout can unpark the handler.
func (m Mailbox[T]) RecvContext(ctx context.Context) (T, error) {
	select {
	case v := <-m.slot:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// IsEmpty is a non-blocking peek; it never consumes the slot.
func (m Mailbox[T]) IsEmpty() bool {
	return len(m.slot) == 0
}
