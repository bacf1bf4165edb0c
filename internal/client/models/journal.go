package models

import "time"

// SyncState is the UI-driven reconciliation state of the local cache.
type SyncState string

const (
	StateOfflineCaching SyncState = "offline_caching"
	StateSyncAttempting SyncState = "sync_attempting"
	StateSynced         SyncState = "synced"
	StateFailed         SyncState = "failed"
)

// Valid reports whether s is one of the known states.
func (s SyncState) Valid() bool {
	switch s {
	case StateOfflineCaching, StateSyncAttempting, StateSynced, StateFailed:
		return true
	}
	return false
}

// Finished reports whether s ends an attempt.
func (s SyncState) Finished() bool {
	return s == StateSynced || s == StateFailed
}

// SyncAttempt is one row of the local sync journal.
type SyncAttempt struct {
	ID         string     `json:"id"`
	State      SyncState  `json:"state"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Pushed     int        `json:"pushed"`
	Error      string     `json:"error,omitempty"`
}
