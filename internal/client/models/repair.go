package models

import (
	"encoding/json"
	"fmt"
)

// Repair decodes data into d leniently. A record that does not decode is
// dropped, a malformed scalar keeps its current value. It lists every
// dropped element and fails only when data is not a JSON object.
func (d *CacheDocument) Repair(data []byte) ([]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var dropped []string
	repairSeq(raw, "sales", &d.Sales, &dropped)
	repairSeq(raw, "customers", &d.Customers, &dropped)
	repairSeq(raw, "products", &d.Products, &dropped)
	repairSeq(raw, "workers", &d.Workers, &dropped)
	repairSeq(raw, "corrections", &d.Corrections, &dropped)
	repairSeq(raw, "pendingSync", &d.PendingSync, &dropped)
	repairField(raw, "lastSync", &d.LastSync, &dropped)
	repairField(raw, "metadata", &d.Metadata, &dropped)
	return dropped, nil
}

// Repair decodes each known setting separately so one bad value falls back
// to its default without discarding the others.
func (s *Settings) Repair(data []byte) ([]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var dropped []string
	repairField(raw, "theme", &s.Theme, &dropped)
	repairField(raw, "autoSync", &s.AutoSync, &dropped)
	repairField(raw, "syncInterval", &s.SyncInterval, &dropped)
	repairField(raw, "notifications", &s.Notifications, &dropped)
	return dropped, nil
}

func repairSeq[T any](raw map[string]json.RawMessage, key string, dst *[]T, dropped *[]string) {
	msg, ok := raw[key]
	if !ok {
		return
	}

	var items []json.RawMessage
	if err := json.Unmarshal(msg, &items); err != nil {
		*dropped = append(*dropped, key)
		*dst = []T{}
		return
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			*dropped = append(*dropped, fmt.Sprintf("%s[%d]", key, i))
			continue
		}
		out = append(out, v)
	}
	*dst = out
}

func repairField[T any](raw map[string]json.RawMessage, key string, dst *T, dropped *[]string) {
	msg, ok := raw[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		*dropped = append(*dropped, key)
		return
	}
	*dst = v
}
