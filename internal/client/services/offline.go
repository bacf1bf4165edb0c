package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/client/merge"
	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/filex"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"github.com/dmitrijs2005/poskeeper/internal/timex"
	"github.com/google/uuid"
)

// ExportFilePrefix names snapshots written by Export without a destination.
const ExportFilePrefix = "offline-data-export-"

// Clock returns the current time. Tests substitute a fixed one.
type Clock func() time.Time

// DocumentStore is the persistence the offline service needs.
// *store.JSONStore[models.CacheDocument] satisfies it.
type DocumentStore interface {
	Load(ctx context.Context) models.CacheDocument
	Update(ctx context.Context, fn func(models.CacheDocument) (models.CacheDocument, error)) (models.CacheDocument, error)
}

// SaveResult reports the outcome of SaveBatch.
type SaveResult struct {
	// Counts are the per-type totals of the document after the save.
	Counts   models.ItemCount
	Accepted models.ItemCount
	Skipped  models.ItemCount
}

type OfflineService interface {
	SaveBatch(ctx context.Context, batch models.Batch) (SaveResult, error)
	GetAll(ctx context.Context) models.CacheDocument
	Stats(ctx context.Context) models.Stats
	Clear(ctx context.Context) bool
	Export(ctx context.Context, destination string) (string, error)
	MarkSynced(ctx context.Context, refs []models.PendingRef) (int, error)
}

type offlineService struct {
	store     DocumentStore
	now       Clock
	exportDir string
	log       logging.Logger
}

// NewOfflineService wires the cache operations over st. Export writes to
// exportDir unless a destination is given.
func NewOfflineService(st DocumentStore, now Clock, exportDir string, log logging.Logger) OfflineService {
	if now == nil {
		now = time.Now
	}
	return &offlineService{store: st, now: now, exportDir: exportDir, log: log.With("module", "offline")}
}

func (s *offlineService) SaveBatch(ctx context.Context, batch models.Batch) (SaveResult, error) {
	batch = withCorrectionIDs(batch)

	var res merge.Result
	doc, err := s.store.Update(ctx, func(existing models.CacheDocument) (models.CacheDocument, error) {
		var merged models.CacheDocument
		merged, res = merge.Batch(existing, batch, s.now())
		return merged, nil
	})
	if err != nil {
		return SaveResult{}, fmt.Errorf("save offline data: %w", err)
	}

	if res.Untracked > 0 {
		s.log.Warn(ctx, "records without id cached but not queued for sync", "count", res.Untracked)
	}
	s.log.Info(ctx, "batch merged",
		"accepted", res.Accepted.Total(),
		"skipped", res.Skipped.Total(),
		"pending", len(doc.PendingSync))

	return SaveResult{Counts: doc.Metadata.ItemCount, Accepted: res.Accepted, Skipped: res.Skipped}, nil
}

// withCorrectionIDs gives id-less corrections a fresh id so they can be
// tracked in pendingSync. The caller's slice is not modified.
func withCorrectionIDs(b models.Batch) models.Batch {
	if len(b.Corrections) == 0 {
		return b
	}
	cs := make([]models.Correction, len(b.Corrections))
	copy(cs, b.Corrections)
	for i := range cs {
		if cs[i].ID == "" {
			cs[i].ID = uuid.NewString()
		}
	}
	b.Corrections = cs
	return b
}

func (s *offlineService) GetAll(ctx context.Context) models.CacheDocument {
	return s.store.Load(ctx)
}

func (s *offlineService) Stats(ctx context.Context) models.Stats {
	return models.StatsOf(s.store.Load(ctx))
}

// Clear replaces the cache with an empty document. Pending references are
// discarded along with the records; the count is logged.
func (s *offlineService) Clear(ctx context.Context) bool {
	var discarded int
	_, err := s.store.Update(ctx, func(existing models.CacheDocument) (models.CacheDocument, error) {
		discarded = len(existing.PendingSync)

		now := s.now()
		if existing.LastSync != nil {
			now = timex.Monotonic(now, *existing.LastSync)
		}

		doc := models.NewCacheDocument()
		doc.LastSync = &now
		doc.Touch(now)
		return doc, nil
	})
	if err != nil {
		s.log.Error(ctx, "clear failed", "error", err)
		return false
	}

	if discarded > 0 {
		s.log.Warn(ctx, "cache cleared with undelivered records", "discarded", discarded)
	} else {
		s.log.Info(ctx, "cache cleared")
	}
	return true
}

// Export writes a pretty-printed snapshot of the cache and returns its path.
func (s *offlineService) Export(ctx context.Context, destination string) (string, error) {
	doc := s.store.Load(ctx)

	if destination == "" {
		name := ExportFilePrefix + s.now().UTC().Format("20060102T150405.000Z") + ".json"
		destination = filepath.Join(s.exportDir, name)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	if err := filex.WriteFileAtomic(destination, append(data, '\n'), 0o660); err != nil {
		s.log.Error(ctx, "export failed", "path", destination, "error", err)
		return "", fmt.Errorf("export: %w", err)
	}

	s.log.Info(ctx, "cache exported", "path", destination, "records", doc.Counts().Total())
	return destination, nil
}

// MarkSynced drops delivered references from pendingSync and returns how
// many were removed.
func (s *offlineService) MarkSynced(ctx context.Context, refs []models.PendingRef) (int, error) {
	if len(refs) == 0 {
		return 0, nil
	}

	var removed int
	_, err := s.store.Update(ctx, func(existing models.CacheDocument) (models.CacheDocument, error) {
		var doc models.CacheDocument
		doc, removed = merge.Acknowledge(existing, refs, s.now())
		return doc, nil
	})
	if err != nil {
		return 0, fmt.Errorf("mark synced: %w", err)
	}

	s.log.Info(ctx, "pending references acknowledged", "removed", removed)
	return removed, nil
}
