package gormrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stillonearth/gymbridge/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EpisodeRepo struct {
	db *gorm.DB
}

func NewEpisodeRepo(db *gorm.DB) EpisodeRepo {
	return EpisodeRepo{db: db}
}

// Migrate creates the episode_steps table when missing.
func (r EpisodeRepo) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&EpisodeStep{}); err != nil {
		return fmt.Errorf("migrate episode_steps: %w", err)
	}
	return nil
}

func (r EpisodeRepo) AppendStep(ctx context.Context, record ports.StepRecord) error {
	row, err := toRow(record)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r EpisodeRepo) ListByEpisode(ctx context.Context, episodeID string, limit int) ([]ports.StepRecord, error) {
	rows := []EpisodeStep{}
	query := r.db.WithContext(ctx).
		Where(&EpisodeStep{EpisodeID: episodeID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "seq"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}

	out := make([]ports.StepRecord, 0, len(rows))
	for _, row := range rows {
		record, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func toRow(record ports.StepRecord) (EpisodeStep, error) {
	actions, err := json.Marshal(record.Actions)
	if err != nil {
		return EpisodeStep{}, fmt.Errorf("marshal actions: %w", err)
	}
	rewards, err := json.Marshal(record.Rewards)
	if err != nil {
		return EpisodeStep{}, fmt.Errorf("marshal rewards: %w", err)
	}
	terminations, err := json.Marshal(record.Terminations)
	if err != nil {
		return EpisodeStep{}, fmt.Errorf("marshal terminations: %w", err)
	}
	return EpisodeStep{
		EpisodeID:    record.EpisodeID,
		Seq:          record.Seq,
		Actions:      actions,
		Rewards:      rewards,
		Terminations: terminations,
		LatencyMS:    record.Latency.Milliseconds(),
		AppliedAt:    record.AppliedAt,
	}, nil
}

func fromRow(row EpisodeStep) (ports.StepRecord, error) {
	record := ports.StepRecord{
		EpisodeID: row.EpisodeID,
		Seq:       row.Seq,
		Latency:   time.Duration(row.LatencyMS) * time.Millisecond,
		AppliedAt: row.AppliedAt,
	}
	if len(row.Actions) > 0 {
		if err := json.Unmarshal(row.Actions, &record.Actions); err != nil {
			return ports.StepRecord{}, fmt.Errorf("unmarshal actions: %w", err)
		}
	}
	if len(row.Rewards) > 0 {
		if err := json.Unmarshal(row.Rewards, &record.Rewards); err != nil {
			return ports.StepRecord{}, fmt.Errorf("unmarshal rewards: %w", err)
		}
	}
	if len(row.Terminations) > 0 {
		if err := json.Unmarshal(row.Terminations, &record.Terminations); err != nil {
			return ports.StepRecord{}, fmt.Errorf("unmarshal terminations: %w", err)
		}
	}
	return record, nil
}

var _ ports.EpisodeRepository = EpisodeRepo{}
