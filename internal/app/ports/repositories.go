package ports

import (
	"context"
	"time"
)

// StepRecord is one recorded environment transition: the action batch a
// client submitted and the per-agent outcome once host logic settled it.
type StepRecord struct {
	EpisodeID    string
	Seq          int64
	Actions      []*string
	Rewards      []float64
	Terminations []bool
	Latency      time.Duration
	AppliedAt    time.Time
}

type EpisodeRepository interface {
	AppendStep(ctx context.Context, record StepRecord) error
	ListByEpisode(ctx context.Context, episodeID string, limit int) ([]StepRecord, error)
}
