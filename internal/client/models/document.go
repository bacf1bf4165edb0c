package models

import (
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/common"
)

// SchemaVersion is stamped into Metadata.Version of every saved document.
const SchemaVersion = 1

// ItemCount holds per-type sequence lengths of a CacheDocument.
type ItemCount struct {
	Sales       int `json:"sales"`
	Customers   int `json:"customers"`
	Products    int `json:"products"`
	Workers     int `json:"workers"`
	Corrections int `json:"corrections"`
}

// Total sums every type.
func (c ItemCount) Total() int {
	return c.Sales + c.Customers + c.Products + c.Workers + c.Corrections
}

type Metadata struct {
	Version      int       `json:"version"`
	LastModified time.Time `json:"lastModified,omitzero"`
	ItemCount    ItemCount `json:"itemCount"`
}

// PendingRef points at a cached record the backend has not confirmed yet.
type PendingRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// CacheDocument is the root object persisted in offline-data.json.
type CacheDocument struct {
	Sales       []Sale       `json:"sales"`
	Customers   []Customer   `json:"customers"`
	Products    []Product    `json:"products"`
	Workers     []Worker     `json:"workers"`
	Corrections []Correction `json:"corrections"`

	// LastSync is the time of the most recent successful merge-to-disk (or
	// clear). Nil until the first one.
	LastSync    *time.Time   `json:"lastSync"`
	PendingSync []PendingRef `json:"pendingSync"`
	Metadata    Metadata     `json:"metadata"`
}

// NewCacheDocument returns the empty document: every sequence empty (not
// nil), no lastSync, current schema version.
func NewCacheDocument() CacheDocument {
	return CacheDocument{
		Sales:       []Sale{},
		Customers:   []Customer{},
		Products:    []Product{},
		Workers:     []Worker{},
		Corrections: []Correction{},
		PendingSync: []PendingRef{},
		Metadata:    Metadata{Version: SchemaVersion},
	}
}

// Normalize replaces nil sequences (e.g. "sales": null on disk) with empty
// ones and fills a missing schema version.
func (d *CacheDocument) Normalize() {
	if d.Sales == nil {
		d.Sales = []Sale{}
	}
	if d.Customers == nil {
		d.Customers = []Customer{}
	}
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Workers == nil {
		d.Workers = []Worker{}
	}
	if d.Corrections == nil {
		d.Corrections = []Correction{}
	}
	if d.PendingSync == nil {
		d.PendingSync = []PendingRef{}
	}
	if d.Metadata.Version == 0 {
		d.Metadata.Version = SchemaVersion
	}
}

// Counts returns the actual sequence lengths.
func (d CacheDocument) Counts() ItemCount {
	return ItemCount{
		Sales:       len(d.Sales),
		Customers:   len(d.Customers),
		Products:    len(d.Products),
		Workers:     len(d.Workers),
		Corrections: len(d.Corrections),
	}
}

// Touch recomputes Metadata.ItemCount and stamps LastModified.
func (d *CacheDocument) Touch(now time.Time) {
	d.Metadata.Version = SchemaVersion
	d.Metadata.LastModified = now
	d.Metadata.ItemCount = d.Counts()
}

// Clone returns a copy whose sequences do not share backing arrays with d.
func (d CacheDocument) Clone() CacheDocument {
	c := d
	c.Sales = append([]Sale(nil), d.Sales...)
	c.Customers = append([]Customer(nil), d.Customers...)
	c.Products = append([]Product(nil), d.Products...)
	c.Workers = append([]Worker(nil), d.Workers...)
	c.Corrections = append([]Correction(nil), d.Corrections...)
	c.PendingSync = append([]PendingRef(nil), d.PendingSync...)
	if d.LastSync != nil {
		ls := *d.LastSync
		c.LastSync = &ls
	}
	c.Normalize()
	return c
}

// Batch is a set of records pushed by the UI in one save-offline-data call.
// Any field may be absent.
type Batch struct {
	Sales       []Sale       `json:"sales,omitempty"`
	Customers   []Customer   `json:"customers,omitempty"`
	Products    []Product    `json:"products,omitempty"`
	Workers     []Worker     `json:"workers,omitempty"`
	Corrections []Correction `json:"corrections,omitempty"`
}

func (b Batch) Counts() ItemCount {
	return ItemCount{
		Sales:       len(b.Sales),
		Customers:   len(b.Customers),
		Products:    len(b.Products),
		Workers:     len(b.Workers),
		Corrections: len(b.Corrections),
	}
}

func (b Batch) IsEmpty() bool {
	return b.Counts().Total() == 0
}

// Pending selects the records referenced by d.PendingSync, in document
// order. Records without an id are never referenced.
func (d CacheDocument) Pending() Batch {
	want := make(map[PendingRef]struct{}, len(d.PendingSync))
	for _, r := range d.PendingSync {
		want[r] = struct{}{}
	}
	has := func(typ, id string) bool {
		if id == "" {
			return false
		}
		_, ok := want[PendingRef{Type: typ, ID: id}]
		return ok
	}

	var b Batch
	for _, s := range d.Sales {
		if has(common.TypeSale, s.ID) {
			b.Sales = append(b.Sales, s)
		}
	}
	for _, c := range d.Customers {
		if has(common.TypeCustomer, c.ID) {
			b.Customers = append(b.Customers, c)
		}
	}
	for _, p := range d.Products {
		if has(common.TypeProduct, p.ID) {
			b.Products = append(b.Products, p)
		}
	}
	for _, w := range d.Workers {
		if has(common.TypeWorker, w.ID) {
			b.Workers = append(b.Workers, w)
		}
	}
	for _, c := range d.Corrections {
		if has(common.TypeCorrection, c.ID) {
			b.Corrections = append(b.Corrections, c)
		}
	}
	return b
}

// Stats summarizes a CacheDocument for get-offline-stats.
type Stats struct {
	TotalRecords int        `json:"totalRecords"`
	Sales        int        `json:"sales"`
	Customers    int        `json:"customers"`
	Products     int        `json:"products"`
	Workers      int        `json:"workers"`
	Corrections  int        `json:"corrections"`
	LastSync     *time.Time `json:"lastSync"`

	// HasPendingData is true iff sales+customers+products > 0.
	HasPendingData bool `json:"hasPendingData"`

	// PendingSync counts references not yet confirmed by the backend.
	PendingSync int `json:"pendingSync"`
}

// StatsOf derives Stats from d.
func StatsOf(d CacheDocument) Stats {
	c := d.Counts()
	return Stats{
		TotalRecords:   c.Total(),
		Sales:          c.Sales,
		Customers:      c.Customers,
		Products:       c.Products,
		Workers:        c.Workers,
		Corrections:    c.Corrections,
		LastSync:       d.LastSync,
		HasPendingData: c.Sales+c.Customers+c.Products > 0,
		PendingSync:    len(d.PendingSync),
	}
}
