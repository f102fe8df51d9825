// Package session tracks the current episode: a uuid rotated on every reset
// and a step sequence counter within it. Shared between the step and reset
// use cases, which run on network handler goroutines.
package session

import (
	"sync"

	"github.com/google/uuid"
)

type Tracker struct {
	mu        sync.Mutex
	episodeID string
	nextSeq   int64
}

func NewTracker() *Tracker {
	return &Tracker{episodeID: uuid.NewString()}
}

// Current returns the active episode id.
func (t *Tracker) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.episodeID
}

// NextSeq allocates the next step sequence number within the episode.
func (t *Tracker) NextSeq() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	seq := t.nextSeq
	t.nextSeq++
	return seq
}

// Rotate starts a new episode and returns its id.
func (t *Tracker) Rotate() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.episodeID = uuid.NewString()
	t.nextSeq = 0
	return t.episodeID
}
