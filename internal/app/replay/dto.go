package replay

import (
	"time"

	"github.com/stillonearth/gymbridge/internal/app/ports"
)

type Request struct {
	EpisodeID string
	Limit     int
}

type Step struct {
	Seq          int64     `json:"seq"`
	Actions      []*string `json:"actions"`
	Rewards      []float64 `json:"rewards"`
	Terminations []bool    `json:"terminations"`
	LatencyMS    int64     `json:"latency_ms"`
	AppliedAt    time.Time `json:"applied_at"`
}

type Response struct {
	EpisodeID string `json:"episode_id"`
	Steps     []Step `json:"steps"`
}

func toDTO(in []ports.StepRecord) []Step {
	out := make([]Step, 0, len(in))
	for _, r := range in {
		out = append(out, Step{
			Seq:          r.Seq,
			Actions:      r.Actions,
			Rewards:      r.Rewards,
			Terminations: r.Terminations,
			LatencyMS:    r.Latency.Milliseconds(),
			AppliedAt:    r.AppliedAt,
		})
	}
	return out
}
