// Package models defines the records cached by the shell and the documents
// persisted on local disk.
package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one position of a Sale.
type LineItem struct {
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Subtotal is Quantity × UnitPrice.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Sale is immutable once created; the cache only ever appends sales.
type Sale struct {
	ID            string          `json:"id"`
	Items         []LineItem      `json:"items,omitempty"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	CustomerID    string          `json:"customerId,omitempty"`
	Timestamp     time.Time       `json:"timestamp,omitzero"`
}

func (s Sale) Key() string { return s.ID }

// ItemsTotal sums the line items. Producers normally set Total to this value.
func (s Sale) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range s.Items {
		total = total.Add(li.Subtotal())
	}
	return total
}

type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c Customer) Key() string { return c.ID }

// ProductStatus values used by the POS screens.
const (
	ProductActive     = "active"
	ProductInactive   = "inactive"
	ProductOutOfStock = "out_of_stock"
)

type Product struct {
	ID     string          `json:"id"`
	Name   string          `json:"name,omitempty"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
	Status string          `json:"status,omitempty"`
}

func (p Product) Key() string { return p.ID }

// Worker roles.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

type Worker struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
	ShopID string `json:"shopId,omitempty"`
}

func (w Worker) Key() string { return w.ID }

// Correction describes a retroactive edit of a Sale. Corrections form an
// audit trail: they are appended as they come and never deduplicated, so ID
// is informational only.
type Correction struct {
	ID          string          `json:"id,omitempty"`
	SaleID      string          `json:"saleId,omitempty"`
	Field       string          `json:"field,omitempty"`
	OldValue    json.RawMessage `json:"oldValue,omitempty"`
	NewValue    json.RawMessage `json:"newValue,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	CorrectedBy string          `json:"correctedBy,omitempty"`
	Timestamp   time.Time       `json:"timestamp,omitzero"`
}

func (c Correction) Key() string { return c.ID }
