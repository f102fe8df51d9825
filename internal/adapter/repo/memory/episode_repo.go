package memory

import (
	"context"
	"sync"

	"github.com/stillonearth/gymbridge/internal/app/ports"
)

// EpisodeRepo is the in-process episode log: the default backend when no
// database is configured, and the fake used by use-case tests.
type EpisodeRepo struct {
	mu    sync.Mutex
	steps map[string][]ports.StepRecord
}

func NewEpisodeRepo() *EpisodeRepo {
	return &EpisodeRepo{steps: make(map[string][]ports.StepRecord)}
}

func (r *EpisodeRepo) AppendStep(_ context.Context, record ports.StepRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[record.EpisodeID] = append(r.steps[record.EpisodeID], record)
	return nil
}

func (r *EpisodeRepo) ListByEpisode(_ context.Context, episodeID string, limit int) ([]ports.StepRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, ok := r.steps[episodeID]
	if !ok || len(records) == 0 {
		return nil, ports.ErrNotFound
	}
	// Newest first, matching the SQL adapters.
	out := make([]ports.StepRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

var _ ports.EpisodeRepository = (*EpisodeRepo)(nil)
