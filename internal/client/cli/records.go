package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var paymentMethods = []string{"cash", "card", "transfer"}

var productStatuses = []string{models.ProductActive, models.ProductInactive, models.ProductOutOfStock}

var workerRoles = []string{models.RoleCashier, models.RoleAdmin}

var errRejected = errors.New("shell rejected the records")

// save hands b to the shell and prints the resulting cache counts.
func (a *App) save(ctx context.Context, b models.Batch) error {
	res, err := a.shell.SaveOfflineData(ctx, b)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%w: %s", errRejected, res.Message)
	}

	a.println(res.Message)
	if c := res.Counts; c != nil {
		a.printf("Cached: %d sales, %d customers, %d products, %d workers, %d corrections\n",
			c.Sales, c.Customers, c.Products, c.Workers, c.Corrections)
	}
	return nil
}

// AddSale records a sale. Line items are read until an empty product name.
func (a *App) AddSale(ctx context.Context) error {
	customerID, err := GetOptional(a.reader, "Customer id (optional)", "", a.out)
	if err != nil {
		return err
	}
	payment, err := GetChoice(a.reader, "Payment method", paymentMethods, paymentMethods[0], a.out)
	if err != nil {
		return err
	}

	var items []models.LineItem
	for {
		name, err := GetSimpleText(a.reader, "Product name or id (empty to finish)", a.out)
		if err != nil {
			return err
		}
		if name == "" {
			break
		}
		qty, err := GetInt(a.reader, "Quantity", 1, a.out)
		if err != nil {
			return err
		}
		price, err := GetDecimal(a.reader, "Unit price", decimal.Zero, a.out)
		if err != nil {
			return err
		}
		items = append(items, models.LineItem{Name: name, ProductID: a.productIDFor(ctx, name), Quantity: qty, UnitPrice: price})
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: a sale needs at least one item", ErrInvalidInput)
	}

	s := models.Sale{
		ID:            uuid.NewString(),
		Items:         items,
		PaymentMethod: payment,
		CustomerID:    customerID,
		Timestamp:     a.now().UTC(),
	}
	s.Total = s.ItemsTotal()

	a.printf("Sale %s total %s\n", s.ID, s.Total.StringFixed(2))
	return a.save(ctx, models.Batch{Sales: []models.Sale{s}})
}

// productIDFor resolves a cached product by id or exact name. Unknown
// products are sold by name only.
func (a *App) productIDFor(ctx context.Context, nameOrID string) string {
	res, err := a.shell.GetOfflineData(ctx)
	if err != nil || res.Data == nil {
		return ""
	}
	for _, p := range res.Data.Products {
		if p.ID == nameOrID || p.Name == nameOrID {
			return p.ID
		}
	}
	return ""
}

// AddCustomer caches a customer. Entering an existing id leaves the cached
// record untouched, since the merge keeps the first copy of each id.
func (a *App) AddCustomer(ctx context.Context) error {
	id, err := GetOptional(a.reader, "Customer id", uuid.NewString(), a.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	phone, err := GetSimpleText(a.reader, "Phone", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	address, err := GetSimpleText(a.reader, "Address", a.out)
	if err != nil {
		return err
	}

	c := models.Customer{ID: id, Name: name, Phone: phone, Email: email, Address: address}
	return a.save(ctx, models.Batch{Customers: []models.Customer{c}})
}

func (a *App) AddProduct(ctx context.Context) error {
	id, err := GetOptional(a.reader, "Product id", uuid.NewString(), a.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	price, err := GetDecimal(a.reader, "Price", decimal.Zero, a.out)
	if err != nil {
		return err
	}
	stock, err := GetInt(a.reader, "Stock", 0, a.out)
	if err != nil {
		return err
	}
	status, err := GetChoice(a.reader, "Status", productStatuses, models.ProductActive, a.out)
	if err != nil {
		return err
	}

	p := models.Product{ID: id, Name: name, Price: price, Stock: stock, Status: status}
	return a.save(ctx, models.Batch{Products: []models.Product{p}})
}

func (a *App) AddWorker(ctx context.Context) error {
	id, err := GetOptional(a.reader, "Worker id", uuid.NewString(), a.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	role, err := GetChoice(a.reader, "Role", workerRoles, models.RoleCashier, a.out)
	if err != nil {
		return err
	}
	shopID, err := GetSimpleText(a.reader, "Shop id", a.out)
	if err != nil {
		return err
	}

	w := models.Worker{ID: id, Name: name, Role: role, ShopID: shopID}
	return a.save(ctx, models.Batch{Workers: []models.Worker{w}})
}

// Correct records an edit of a sale field. Values that are valid JSON are
// stored as is, anything else as a JSON string.
func (a *App) Correct(ctx context.Context) error {
	saleID, err := GetSimpleText(a.reader, "Sale id", a.out)
	if err != nil {
		return err
	}
	if saleID == "" {
		return fmt.Errorf("%w: sale id is required", ErrInvalidInput)
	}
	field, err := GetSimpleText(a.reader, "Field", a.out)
	if err != nil {
		return err
	}
	oldValue, err := GetSimpleText(a.reader, "Old value", a.out)
	if err != nil {
		return err
	}
	newValue, err := GetSimpleText(a.reader, "New value", a.out)
	if err != nil {
		return err
	}
	reason, err := GetSimpleText(a.reader, "Reason", a.out)
	if err != nil {
		return err
	}

	by := a.userName
	if by == "" {
		by = "unknown"
	}
	c := models.Correction{
		ID:          uuid.NewString(),
		SaleID:      saleID,
		Field:       field,
		OldValue:    jsonValue(oldValue),
		NewValue:    jsonValue(newValue),
		Reason:      reason,
		CorrectedBy: by,
		Timestamp:   a.now().UTC(),
	}
	return a.save(ctx, models.Batch{Corrections: []models.Correction{c}})
}

func jsonValue(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	b, _ := json.Marshal(s)
	return b
}
