package engine

// Events is a typed event queue for the tick loop: systems emitted into it
// earlier in a pass are drained by systems registered later in the same or a
// subsequent pass. It is deliberately not a pub/sub bus; there is a single
// ordered consumer chain, and the queue is confined to the tick goroutine.
type Events[E any] struct {
	pending []E
}

func NewEvents[E any]() *Events[E] {
	return &Events[E]{}
}

// Send appends an event.
func (q *Events[E]) Send(e E) {
	q.pending = append(q.pending, e)
}

// Drain removes and returns all pending events in emission order.
func (q *Events[E]) Drain() []E {
	out := q.pending
	q.pending = nil
	return out
}

// IsEmpty reports whether any event is pending.
func (q *Events[E]) IsEmpty() bool {
	return len(q.pending) == 0
}
