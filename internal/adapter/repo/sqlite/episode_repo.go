// Package sqlite is a single-binary episode log on modernc.org/sqlite, for
// runs without a Postgres instance.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stillonearth/gymbridge/internal/app/ports"

	_ "modernc.org/sqlite"
)

type EpisodeRepo struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*EpisodeRepo, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &EpisodeRepo{db: db}, nil
}

func (r *EpisodeRepo) AppendStep(ctx context.Context, record ports.StepRecord) error {
	actions, err := json.Marshal(record.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}
	rewards, err := json.Marshal(record.Rewards)
	if err != nil {
		return fmt.Errorf("marshal rewards: %w", err)
	}
	terminations, err := json.Marshal(record.Terminations)
	if err != nil {
		return fmt.Errorf("marshal terminations: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO episode_steps (episode_id, seq, actions, rewards, terminations, latency_ms, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.EpisodeID, record.Seq, actions, rewards, terminations, record.Latency.Milliseconds(), record.AppliedAt.UnixMilli())
	return err
}

func (r *EpisodeRepo) ListByEpisode(ctx context.Context, episodeID string, limit int) ([]ports.StepRecord, error) {
	query := `
		SELECT episode_id, seq, actions, rewards, terminations, latency_ms, applied_at
		FROM episode_steps WHERE episode_id = ? ORDER BY seq DESC`
	args := []any{episodeID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ports.StepRecord{}
	for rows.Next() {
		var (
			record        ports.StepRecord
			actions       []byte
			rewards       []byte
			terminations  []byte
			latencyMS     int64
			appliedAtUnix int64
		)
		if err := rows.Scan(&record.EpisodeID, &record.Seq, &actions, &rewards, &terminations, &latencyMS, &appliedAtUnix); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(actions, &record.Actions); err != nil {
			return nil, fmt.Errorf("decode actions for seq %d: %w", record.Seq, err)
		}
		if err := json.Unmarshal(rewards, &record.Rewards); err != nil {
			return nil, fmt.Errorf("decode rewards for seq %d: %w", record.Seq, err)
		}
		if err := json.Unmarshal(terminations, &record.Terminations); err != nil {
			return nil, fmt.Errorf("decode terminations for seq %d: %w", record.Seq, err)
		}
		record.Latency = time.Duration(latencyMS) * time.Millisecond
		record.AppliedAt = time.UnixMilli(appliedAtUnix)
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ports.ErrNotFound
	}
	return out, nil
}

func (r *EpisodeRepo) Close() error {
	return r.db.Close()
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS episode_steps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			episode_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			actions BLOB NOT NULL,
			rewards BLOB NOT NULL,
			terminations BLOB NOT NULL,
			latency_ms INTEGER NOT NULL,
			applied_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_episode_steps_episode ON episode_steps (episode_id, seq);
	`)
	return err
}

var _ ports.EpisodeRepository = (*EpisodeRepo)(nil)
