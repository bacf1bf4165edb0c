package models

import (
	"encoding/json"
	"time"
)

// Record is one POS record as received from a terminal. Type is one of the
// common.Type* names, Payload the record's JSON as sent.
type Record struct {
	Type       string
	ID         string
	Payload    json.RawMessage
	UserID     string
	ReceivedAt time.Time
}
