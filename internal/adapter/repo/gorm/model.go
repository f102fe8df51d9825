package gormrepo

import "time"

// EpisodeStep is the persisted form of one environment transition. Variable-
// length per-agent data travels as JSON columns so the schema is independent
// of the agent count.
type EpisodeStep struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	EpisodeID    string    `gorm:"index:idx_episode_steps_episode;size:64;not null"`
	Seq          int64     `gorm:"not null"`
	Actions      []byte    `gorm:"type:jsonb"`
	Rewards      []byte    `gorm:"type:jsonb"`
	Terminations []byte    `gorm:"type:jsonb"`
	LatencyMS    int64     `gorm:"not null"`
	AppliedAt    time.Time `gorm:"index;not null"`
}

func (EpisodeStep) TableName() string {
	return "episode_steps"
}
