package attempts

import (
	"context"

	"github.com/dmitrijs2005/poskeeper/internal/client/models"
)

type Repository interface {
	// Upsert inserts a by id or overwrites the mutable columns of an
	// existing row (state, finish time, pushed count, error).
	Upsert(ctx context.Context, a models.SyncAttempt) error

	// GetByID returns common.ErrNotFound for an unknown id.
	GetByID(ctx context.Context, id string) (*models.SyncAttempt, error)

	// List returns at most limit attempts, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]models.SyncAttempt, error)
}
