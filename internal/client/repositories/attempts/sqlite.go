package attempts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/common"
	"github.com/dmitrijs2005/poskeeper/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, a models.SyncAttempt) error {
	query := `INSERT INTO sync_attempts (id, state, started_at, finished_at, pushed, error)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET state = excluded.state,
				finished_at = excluded.finished_at,
				pushed = excluded.pushed,
				error = excluded.error
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, string(a.State), toMillis(a.StartedAt), nullMillis(a.FinishedAt), a.Pushed, a.Error)
	if err != nil {
		return fmt.Errorf("failed to upsert sync attempt: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.SyncAttempt, error) {
	query := `SELECT id, state, started_at, finished_at, pushed, error FROM sync_attempts WHERE id = ?`
	a, err := scanAttempt(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync attempt %s: %w", id, err)
	}
	return &a, nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]models.SyncAttempt, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT id, state, started_at, finished_at, pushed, error FROM sync_attempts
			ORDER BY started_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select sync attempts: %w", err)
	}
	defer rows.Close()

	result := []models.SyncAttempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync attempt: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(s scanner) (models.SyncAttempt, error) {
	var (
		a        models.SyncAttempt
		state    string
		started  int64
		finished sql.NullInt64
	)
	if err := s.Scan(&a.ID, &state, &started, &finished, &a.Pushed, &a.Error); err != nil {
		return models.SyncAttempt{}, err
	}
	a.State = models.SyncState(state)
	a.StartedAt = time.UnixMilli(started).UTC()
	if finished.Valid {
		t := time.UnixMilli(finished.Int64).UTC()
		a.FinishedAt = &t
	}
	return a, nil
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
