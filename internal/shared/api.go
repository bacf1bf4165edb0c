package shared

import (
	"encoding/json"

	"github.com/dmitrijs2005/poskeeper/internal/client/models"
)

// Backend routes.
const (
	PathHealth  = "/api/v1/health"
	PathToken   = "/api/v1/auth/token"
	PathSync    = "/api/v1/sync"
	PathRecords = "/api/v1/records"
)

type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"` // seconds
}

// SyncRequest is the body of POST /api/v1/sync.
type SyncRequest = models.Batch

// SyncResponse reports what the backend stored. Refs lists every record the
// backend now holds from this batch, duplicates included, so the caller can
// acknowledge them locally.
type SyncResponse struct {
	Accepted   map[string]int      `json:"accepted"`
	Duplicates map[string]int      `json:"duplicates"`
	Refs       []models.PendingRef `json:"refs"`
}

// StoredRecord is one row of GET /api/v1/records.
type StoredRecord struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

type RecordsResponse struct {
	Records []StoredRecord `json:"records"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
