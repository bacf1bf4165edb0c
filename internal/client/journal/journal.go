// Package journal records the sync attempts the terminal UI reports back to
// the shell. It is bookkeeping only: the cache itself never depends on it.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/client/repositories/attempts"
	"github.com/dmitrijs2005/poskeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/poskeeper/internal/common"
	"github.com/dmitrijs2005/poskeeper/internal/dbx"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"github.com/google/uuid"
)

// Summary is the answer to list-sync-attempts.
type Summary struct {
	Attempts     []models.SyncAttempt `json:"attempts"`
	LastSyncedAt *time.Time           `json:"lastSyncedAt,omitempty"`
	LastError    string               `json:"lastError,omitempty"`
}

type Journal struct {
	db   *sql.DB
	now  func() time.Time
	log  logging.Logger
	read attempts.Repository
	meta metadata.Repository
}

// Open initializes the journal database at path.
func Open(ctx context.Context, path string, log logging.Logger) (*Journal, error) {
	db, err := InitDatabase(ctx, path, log)
	if err != nil {
		return nil, err
	}
	return New(db, log), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, log logging.Logger) *Journal {
	return &Journal{
		db:   db,
		now:  time.Now,
		log:  log.With("module", "journal"),
		read: attempts.NewSQLiteRepository(db),
		meta: metadata.NewSQLiteRepository(db),
	}
}

func (j *Journal) Close() error { return j.db.Close() }

// Record stores a. A missing id gets a fresh one and a missing start time
// becomes now; finished states get a finish time when none is set. The
// stored attempt is returned.
func (j *Journal) Record(ctx context.Context, a models.SyncAttempt) (models.SyncAttempt, error) {
	if !a.State.Valid() {
		return models.SyncAttempt{}, fmt.Errorf("%w: unknown state %q", common.ErrInvalidAttempt, a.State)
	}
	if a.Pushed < 0 {
		return models.SyncAttempt{}, fmt.Errorf("%w: negative pushed count", common.ErrInvalidAttempt)
	}

	now := j.now().UTC()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = now
	}
	if a.State.Finished() && a.FinishedAt == nil {
		a.FinishedAt = &now
	}

	err := dbx.WithTx(ctx, j.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := attempts.NewSQLiteRepository(tx).Upsert(ctx, a); err != nil {
			return err
		}
		meta := metadata.NewSQLiteRepository(tx)
		switch a.State {
		case models.StateSynced:
			if err := meta.Set(ctx, metadata.KeyLastSyncedAt, a.FinishedAt.UTC().Format(time.RFC3339Nano)); err != nil {
				return err
			}
			return meta.Delete(ctx, metadata.KeyLastError)
		case models.StateFailed:
			return meta.Set(ctx, metadata.KeyLastError, a.Error)
		}
		return nil
	})
	if err != nil {
		return models.SyncAttempt{}, fmt.Errorf("record sync attempt: %w", err)
	}

	j.log.Info(ctx, "sync attempt recorded", "id", a.ID, "state", string(a.State), "pushed", a.Pushed)
	return a, nil
}

// List returns up to limit recent attempts plus the last success time and
// the last failure message.
func (j *Journal) List(ctx context.Context, limit int) (Summary, error) {
	list, err := j.read.List(ctx, limit)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Attempts: list}

	if v, ok, err := j.meta.Get(ctx, metadata.KeyLastSyncedAt); err != nil {
		return Summary{}, err
	} else if ok {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			j.log.Warn(ctx, "bad last_synced_at in journal", "value", v)
		} else {
			sum.LastSyncedAt = &t
		}
	}

	v, _, err := j.meta.Get(ctx, metadata.KeyLastError)
	if err != nil {
		return Summary{}, err
	}
	sum.LastError = v
	return sum, nil
}
