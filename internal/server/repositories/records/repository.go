package records

import (
	"context"

	"github.com/dmitrijs2005/poskeeper/internal/server/models"
)

type Repository interface {
	// Insert stores r unless a record with the same (type, id) exists.
	// It reports whether a row was written.
	Insert(ctx context.Context, r *models.Record) (bool, error)
	// AppendCorrection stores r unconditionally.
	AppendCorrection(ctx context.Context, r *models.Record, saleID string) error
	// List returns the records of one type in arrival order.
	List(ctx context.Context, recordType string) ([]models.Record, error)
}
