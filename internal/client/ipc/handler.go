package ipc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/poskeeper/internal/client/journal"
	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/client/services"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
)

// DefaultJournalLimit caps list-sync-attempts when the UI asks for no limit.
const DefaultJournalLimit = 50

// Journal is the sync journal as seen by the IPC layer.
type Journal interface {
	Record(ctx context.Context, a models.SyncAttempt) (models.SyncAttempt, error)
	List(ctx context.Context, limit int) (journal.Summary, error)
}

// Checker reports whether the network is reachable.
type Checker func(ctx context.Context) bool

// Handler implements every IPC channel.
type Handler struct {
	offline  services.OfflineService
	settings services.SettingsService
	journal  Journal
	check    Checker
	log      logging.Logger
}

// NewHandler wires the channels. j may be nil when the journal could not be
// opened; its channels then answer success:false.
func NewHandler(offline services.OfflineService, settings services.SettingsService, j Journal, check Checker, log logging.Logger) *Handler {
	return &Handler{offline: offline, settings: settings, journal: j, check: check, log: log.With("module", "ipc")}
}

func (h *Handler) SaveOfflineData(ctx context.Context, batch models.Batch) SaveResult {
	res, err := h.offline.SaveBatch(ctx, batch)
	if err != nil {
		h.log.Error(ctx, "save-offline-data failed", "error", err)
		return SaveResult{Success: false, Message: "Failed to save offline data: " + err.Error()}
	}

	counts := res.Counts
	msg := fmt.Sprintf("Saved %d new record(s)", res.Accepted.Total())
	if skipped := res.Skipped.Total(); skipped > 0 {
		msg += fmt.Sprintf(", %d duplicate(s) ignored", skipped)
	}
	return SaveResult{Success: true, Message: msg, Counts: &counts}
}

func (h *Handler) GetOfflineData(ctx context.Context) DataResult {
	doc := h.offline.GetAll(ctx)
	return DataResult{Success: true, Data: &doc}
}

func (h *Handler) ClearOfflineData(ctx context.Context) StatusResult {
	if !h.offline.Clear(ctx) {
		return StatusResult{Success: false, Message: "Failed to clear offline data"}
	}
	return StatusResult{Success: true, Message: "Offline data cleared"}
}

func (h *Handler) GetOfflineStats(ctx context.Context) StatsResult {
	st := h.offline.Stats(ctx)
	return StatsResult{Success: true, Stats: &st}
}

func (h *Handler) GetSettings(ctx context.Context) SettingsResult {
	s := h.settings.Get(ctx)
	return SettingsResult{Success: true, Settings: &s}
}

func (h *Handler) SaveSettings(ctx context.Context, in models.Settings) SettingsResult {
	s, err := h.settings.Save(ctx, in)
	if err != nil {
		h.log.Warn(ctx, "save-settings rejected", "error", err)
		return SettingsResult{Success: false, Message: err.Error()}
	}
	return SettingsResult{Success: true, Settings: &s}
}

func (h *Handler) ExportOfflineData(ctx context.Context, req ExportRequest) ExportResult {
	path, err := h.offline.Export(ctx, req.Destination)
	if err != nil {
		return ExportResult{Success: false, Message: err.Error()}
	}
	return ExportResult{Success: true, Path: path}
}

// CheckConnection always succeeds; reachability is carried in Online.
func (h *Handler) CheckConnection(ctx context.Context) ConnectionResult {
	online := false
	if h.check != nil {
		online = h.check(ctx)
	}
	h.log.Debug(ctx, "connectivity checked", "online", online)
	return ConnectionResult{Success: true, Online: online}
}

func (h *Handler) MarkSynced(ctx context.Context, req MarkSyncedRequest) MarkSyncedResult {
	removed, err := h.offline.MarkSynced(ctx, req.Refs)
	if err != nil {
		h.log.Error(ctx, "mark-synced failed", "error", err)
		return MarkSyncedResult{Success: false, Message: err.Error()}
	}
	remaining := h.offline.Stats(ctx).PendingSync
	return MarkSyncedResult{
		Success: true,
		Message: fmt.Sprintf("%d reference(s) acknowledged", removed),
		Counts:  &MarkSyncedCounts{Removed: removed, Remaining: remaining},
	}
}

func (h *Handler) RecordSyncAttempt(ctx context.Context, a models.SyncAttempt) AttemptResult {
	if h.journal == nil {
		return AttemptResult{Success: false, Message: "sync journal unavailable"}
	}
	stored, err := h.journal.Record(ctx, a)
	if err != nil {
		h.log.Warn(ctx, "record-sync-attempt failed", "error", err)
		return AttemptResult{Success: false, Message: err.Error()}
	}
	return AttemptResult{Success: true, Attempt: &stored}
}

func (h *Handler) ListSyncAttempts(ctx context.Context, req ListAttemptsRequest) JournalResult {
	if h.journal == nil {
		return JournalResult{Success: false, Message: "sync journal unavailable"}
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultJournalLimit
	}
	sum, err := h.journal.List(ctx, limit)
	if err != nil {
		h.log.Error(ctx, "list-sync-attempts failed", "error", err)
		return JournalResult{Success: false, Message: err.Error()}
	}
	return JournalResult{Success: true, Journal: &sum}
}
