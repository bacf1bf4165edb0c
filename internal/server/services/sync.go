package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	clientmodels "github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/common"
	"github.com/dmitrijs2005/poskeeper/internal/dbx"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"github.com/dmitrijs2005/poskeeper/internal/server/models"
	"github.com/dmitrijs2005/poskeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/poskeeper/internal/shared"
)

// Archiver keeps a copy of every accepted batch. Store returns the object
// key it wrote.
type Archiver interface {
	Store(ctx context.Context, body []byte) (string, error)
}

// ArchivedBatch is the document handed to the Archiver.
type ArchivedBatch struct {
	UserID     string             `json:"userId"`
	ReceivedAt time.Time          `json:"receivedAt"`
	Accepted   map[string]int     `json:"accepted"`
	Batch      clientmodels.Batch `json:"batch"`
}

type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	archive     Archiver
	logger      logging.Logger
	now         func() time.Time
}

// NewSyncService builds the service. archive may be nil, which disables
// archiving.
func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, archive Archiver, logger logging.Logger) *SyncService {
	return &SyncService{
		db:          db,
		repomanager: m,
		archive:     archive,
		logger:      logger.With("module", "sync_service"),
		now:         time.Now,
	}
}

type incoming struct {
	rec    models.Record
	saleID string
}

func collect[T interface{ Key() string }](out []incoming, typ string, items []T, userID string) ([]incoming, error) {
	for _, it := range items {
		payload, err := json.Marshal(it)
		if err != nil {
			return nil, fmt.Errorf("error encoding %s: %w", typ, err)
		}
		out = append(out, incoming{rec: models.Record{Type: typ, ID: it.Key(), Payload: payload, UserID: userID}})
	}
	return out, nil
}

func flatten(batch clientmodels.Batch, userID string) ([]incoming, error) {
	var (
		out []incoming
		err error
	)
	if out, err = collect(out, common.TypeSale, batch.Sales, userID); err != nil {
		return nil, err
	}
	if out, err = collect(out, common.TypeCustomer, batch.Customers, userID); err != nil {
		return nil, err
	}
	if out, err = collect(out, common.TypeProduct, batch.Products, userID); err != nil {
		return nil, err
	}
	if out, err = collect(out, common.TypeWorker, batch.Workers, userID); err != nil {
		return nil, err
	}
	n := len(out)
	if out, err = collect(out, common.TypeCorrection, batch.Corrections, userID); err != nil {
		return nil, err
	}
	for i, c := range batch.Corrections {
		out[n+i].saleID = c.SaleID
	}
	return out, nil
}

// Push stores batch in one transaction. Records are keyed by (type, id) and
// a record seen before counts as a duplicate; corrections are always
// appended. Records without an id cannot be keyed and are skipped.
// Refs lists every stored or already present record so the terminal can
// acknowledge it.
func (s *SyncService) Push(ctx context.Context, userID string, batch clientmodels.Batch) (*shared.SyncResponse, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}

	recs, err := flatten(batch, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrorValidation, err)
	}

	resp := &shared.SyncResponse{
		Accepted:   map[string]int{},
		Duplicates: map[string]int{},
		Refs:       make([]clientmodels.PendingRef, 0, len(recs)),
	}
	skipped := 0

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Records(tx)
		for i := range recs {
			r := &recs[i].rec
			if r.ID == "" && r.Type != common.TypeCorrection {
				skipped++
				continue
			}

			if r.Type == common.TypeCorrection {
				if err := repo.AppendCorrection(ctx, r, recs[i].saleID); err != nil {
					return err
				}
				resp.Accepted[r.Type]++
			} else {
				stored, err := repo.Insert(ctx, r)
				if err != nil {
					return err
				}
				if stored {
					resp.Accepted[r.Type]++
				} else {
					resp.Duplicates[r.Type]++
				}
			}

			if r.ID != "" {
				resp.Refs = append(resp.Refs, clientmodels.PendingRef{Type: r.Type, ID: r.ID})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error storing batch: %w", err)
	}

	if skipped > 0 {
		s.logger.Warn(ctx, "records without id skipped", "user", userID, "count", skipped)
	}
	s.logger.Info(ctx, "batch stored", "user", userID, "accepted", resp.Accepted, "duplicates", resp.Duplicates)

	s.archiveBatch(ctx, userID, batch, resp.Accepted)
	return resp, nil
}

// archiveBatch runs after commit. A failed upload is logged, never
// reported to the terminal.
func (s *SyncService) archiveBatch(ctx context.Context, userID string, batch clientmodels.Batch, accepted map[string]int) {
	if s.archive == nil || len(accepted) == 0 {
		return
	}

	body, err := json.Marshal(ArchivedBatch{UserID: userID, ReceivedAt: s.now().UTC(), Accepted: accepted, Batch: batch})
	if err != nil {
		s.logger.Error(ctx, "archive encode failed", "error", err)
		return
	}

	key, err := s.archive.Store(ctx, body)
	if err != nil {
		s.logger.Error(ctx, "archive upload failed", "error", err)
		return
	}
	s.logger.Debug(ctx, "batch archived", "key", key)
}

// Records lists the stored records of one type.
func (s *SyncService) Records(ctx context.Context, recordType string) ([]shared.StoredRecord, error) {
	if !slices.Contains(common.RecordTypes, recordType) {
		return nil, fmt.Errorf("%w: %q", shared.ErrorUnknownRecordType, recordType)
	}

	rows, err := s.repomanager.Records(s.db).List(ctx, recordType)
	if err != nil {
		return nil, fmt.Errorf("error listing records: %w", err)
	}

	out := make([]shared.StoredRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, shared.StoredRecord{Type: r.Type, ID: r.ID, Payload: r.Payload})
	}
	return out, nil
}
