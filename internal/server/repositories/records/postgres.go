package records

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/poskeeper/internal/common"
	"github.com/dmitrijs2005/poskeeper/internal/dbx"
	"github.com/dmitrijs2005/poskeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *models.Record) (bool, error) {
	query :=
		`INSERT INTO records (type, id, payload, user_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (type, id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, rec.Type, rec.ID, []byte(rec.Payload), rec.UserID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) AppendCorrection(ctx context.Context, rec *models.Record, saleID string) error {
	query :=
		`INSERT INTO corrections (id, sale_id, payload, user_id)
		 VALUES ($1, $2, $3, $4)
		 `

	if _, err := r.db.ExecContext(ctx, query, rec.ID, saleID, []byte(rec.Payload), rec.UserID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, recordType string) ([]models.Record, error) {
	query :=
		`SELECT type, id, payload, user_id, received_at FROM records
		 WHERE type = $1
		 ORDER BY received_at, id
		 `
	if recordType == common.TypeCorrection {
		query =
			`SELECT 'correction', id, payload, user_id, received_at FROM corrections
			 ORDER BY seq
			 `
	}

	var args []any
	if recordType != common.TypeCorrection {
		args = append(args, recordType)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Record, 0)
	for rows.Next() {
		var (
			rec     models.Record
			payload []byte
		)
		if err := rows.Scan(&rec.Type, &rec.ID, &payload, &rec.UserID, &rec.ReceivedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		rec.Payload = payload
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
