// Package merge combines batches pushed by the UI with the cached document.
//
// Sales, customers, products and workers are deduplicated by id: a record
// whose id is already cached (or was already accepted earlier in the same
// batch) is dropped silently, so re-submitting a batch is a no-op.
// Corrections are an audit trail and are appended unconditionally.
//
// Everything here is pure: inputs are never mutated and there is no hidden
// state, so callers may retry as often as they like.
package merge

import (
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/common"
)

// ByID returns existing followed by every incoming record whose key is not
// yet present. Records with an empty key are always treated as new. The
// second result holds the accepted records in order.
func ByID[T any](existing, incoming []T, key func(T) string) (merged []T, accepted []T) {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, r := range existing {
		if k := key(r); k != "" {
			seen[k] = struct{}{}
		}
	}

	merged = make([]T, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)

	for _, r := range incoming {
		k := key(r)
		if k != "" {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
		}
		merged = append(merged, r)
		accepted = append(accepted, r)
	}
	return merged, accepted
}

// AppendAll returns existing followed by all of incoming.
func AppendAll[T any](existing, incoming []T) []T {
	merged := make([]T, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	return append(merged, incoming...)
}

// Result describes what a Batch call accepted.
type Result struct {
	// Accepted counts the records that were actually added, per type.
	Accepted models.ItemCount
	// Skipped counts incoming duplicates dropped by id, per type.
	Skipped models.ItemCount
	// Untracked counts accepted records without an id; they are cached but
	// cannot be referenced from pendingSync.
	Untracked int
}

// Batch merges incoming into existing and returns the new document. Every
// accepted record with an id gets a pendingSync reference. lastSync and
// metadata.lastModified are set to now and metadata.itemCount is recomputed.
func Batch(existing models.CacheDocument, incoming models.Batch, now time.Time) (models.CacheDocument, Result) {
	out := existing.Clone()
	var res Result

	var sales []models.Sale
	out.Sales, sales = ByID(out.Sales, incoming.Sales, models.Sale.Key)
	res.Accepted.Sales = len(sales)

	var customers []models.Customer
	out.Customers, customers = ByID(out.Customers, incoming.Customers, models.Customer.Key)
	res.Accepted.Customers = len(customers)

	var products []models.Product
	out.Products, products = ByID(out.Products, incoming.Products, models.Product.Key)
	res.Accepted.Products = len(products)

	var workers []models.Worker
	out.Workers, workers = ByID(out.Workers, incoming.Workers, models.Worker.Key)
	res.Accepted.Workers = len(workers)

	out.Corrections = AppendAll(out.Corrections, incoming.Corrections)
	res.Accepted.Corrections = len(incoming.Corrections)

	in := incoming.Counts()
	res.Skipped = models.ItemCount{
		Sales:     in.Sales - res.Accepted.Sales,
		Customers: in.Customers - res.Accepted.Customers,
		Products:  in.Products - res.Accepted.Products,
		Workers:   in.Workers - res.Accepted.Workers,
	}

	track := func(typ string, id string) {
		if id == "" {
			res.Untracked++
			return
		}
		out.PendingSync = append(out.PendingSync, models.PendingRef{Type: typ, ID: id})
	}
	for _, r := range sales {
		track(common.TypeSale, r.ID)
	}
	for _, r := range customers {
		track(common.TypeCustomer, r.ID)
	}
	for _, r := range products {
		track(common.TypeProduct, r.ID)
	}
	for _, r := range workers {
		track(common.TypeWorker, r.ID)
	}
	for _, r := range incoming.Corrections {
		track(common.TypeCorrection, r.ID)
	}

	ls := now
	out.LastSync = &ls
	out.Touch(now)

	return out, res
}

// Acknowledge removes delivered references from pendingSync and reports how
// many were removed. Cached records themselves stay in place.
func Acknowledge(existing models.CacheDocument, delivered []models.PendingRef, now time.Time) (models.CacheDocument, int) {
	out := existing.Clone()

	done := make(map[models.PendingRef]struct{}, len(delivered))
	for _, r := range delivered {
		done[r] = struct{}{}
	}

	kept := make([]models.PendingRef, 0, len(out.PendingSync))
	for _, r := range out.PendingSync {
		if _, ok := done[r]; ok {
			continue
		}
		kept = append(kept, r)
	}

	removed := len(out.PendingSync) - len(kept)
	out.PendingSync = kept
	out.Touch(now)
	return out, removed
}
