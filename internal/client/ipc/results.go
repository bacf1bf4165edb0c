package ipc

import (
	"github.com/dmitrijs2005/poskeeper/internal/client/journal"
	"github.com/dmitrijs2005/poskeeper/internal/client/models"
)

// Channel names as seen by the UI.
const (
	ChannelSaveOfflineData   = "save-offline-data"
	ChannelGetOfflineData    = "get-offline-data"
	ChannelClearOfflineData  = "clear-offline-data"
	ChannelGetOfflineStats   = "get-offline-stats"
	ChannelGetSettings       = "get-settings"
	ChannelSaveSettings      = "save-settings"
	ChannelExportOfflineData = "export-offline-data"
	ChannelCheckConnection   = "check-connection"
	ChannelMarkSynced        = "mark-synced"
	ChannelRecordSyncAttempt = "record-sync-attempt"
	ChannelListSyncAttempts  = "list-sync-attempts"
	ChannelAutoSync          = "auto-sync"
)

// Empty is the request of parameterless channels.
type Empty struct{}

type SaveResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Counts  *models.ItemCount `json:"counts,omitempty"`
}

type DataResult struct {
	Success bool                  `json:"success"`
	Data    *models.CacheDocument `json:"data,omitempty"`
	Message string                `json:"message,omitempty"`
}

type StatusResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type StatsResult struct {
	Success bool          `json:"success"`
	Stats   *models.Stats `json:"stats,omitempty"`
	Message string        `json:"message,omitempty"`
}

type SettingsResult struct {
	Success  bool             `json:"success"`
	Settings *models.Settings `json:"settings,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// ExportRequest optionally names the snapshot file. Empty means the default
// location in the export directory.
type ExportRequest struct {
	Destination string `json:"destination,omitempty"`
}

type ExportResult struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
}

type ConnectionResult struct {
	Success bool `json:"success"`
	Online  bool `json:"online"`
}

type MarkSyncedRequest struct {
	Refs []models.PendingRef `json:"refs"`
}

type MarkSyncedCounts struct {
	Removed   int `json:"removed"`
	Remaining int `json:"remaining"`
}

type MarkSyncedResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Counts  *MarkSyncedCounts `json:"counts,omitempty"`
}

type AttemptResult struct {
	Success bool                `json:"success"`
	Attempt *models.SyncAttempt `json:"attempt,omitempty"`
	Message string              `json:"message,omitempty"`
}

type ListAttemptsRequest struct {
	Limit int `json:"limit,omitempty"`
}

type JournalResult struct {
	Success bool             `json:"success"`
	Journal *journal.Summary `json:"journal,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Notification is pushed on the Events stream. It names the channel and
// carries nothing else.
type Notification struct {
	Channel string `json:"channel"`
}
