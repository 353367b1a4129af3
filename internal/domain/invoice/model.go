// Package invoice provides the Invoice document: numbered bills issued to
// parties, with line items stored as separate records and optional pricing
// factors applied on top of the item subtotal.
package invoice

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/entity"
	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
	"fakturo/internal/domain/ref"
)

// FactorType defines whether a factor increases or decreases the total.
type FactorType string

const (
	FactorEnhancer FactorType = "enhancer" // surcharge
	FactorReducer  FactorType = "reducer"  // discount
)

// FactorUnit defines how a factor amount is interpreted.
type FactorUnit string

const (
	UnitPercent FactorUnit = "percent" // amount is a percentage of the subtotal
	UnitPrice   FactorUnit = "price"   // amount is a flat sum
)

// Factor is a named pricing adjustment embedded in an invoice.
// Factors are not persisted independently.
type Factor struct {
	Title  string      `json:"title"`
	Type   FactorType  `json:"type"`
	Amount types.Money `json:"amount"`
	Unit   FactorUnit  `json:"unit"`
}

// Validate checks structural validity of a factor.
func (f Factor) Validate() error {
	if f.Type != FactorEnhancer && f.Type != FactorReducer {
		return apperror.NewValidation("invalid factor type").
			WithDetail("field", "type").
			WithDetail("value", string(f.Type))
	}
	if f.Unit != UnitPercent && f.Unit != UnitPrice {
		return apperror.NewValidation("invalid factor unit").
			WithDetail("field", "unit").
			WithDetail("value", string(f.Unit))
	}
	if f.Amount.IsNegative() {
		return apperror.NewValidation("factor amount cannot be negative").
			WithDetail("field", "amount").
			WithDetail("factor", f.Title)
	}
	return nil
}

// Contribution returns the signed amount this factor adds to the total.
// Percent factors are computed against the given subtotal; factors never
// compound against each other.
func (f Factor) Contribution(subtotal types.Money) types.Money {
	var c types.Money
	switch f.Unit {
	case UnitPercent:
		c = subtotal.Mul(f.Amount).Div(decimal.NewFromInt(100))
	default:
		c = f.Amount
	}
	if f.Type == FactorReducer {
		return c.Neg()
	}
	return c
}

// FactorList is an ordered list of factors stored as JSONB.
type FactorList []Factor

// Value implements driver.Valuer for JSONB storage.
func (l FactorList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (l *FactorList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into FactorList", src)
	}
	return json.Unmarshal(data, l)
}

// Invoice represents a numbered bill issued to a party.
// Items are owned by the invoice but stored as separate records.
type Invoice struct {
	entity.BaseDocument

	// Number is the human-visible invoice number, unique per workspace.
	// Assigned once on creation and never recomputed.
	Number int64 `db:"number" json:"number"`

	// Client is a polymorphic reference to a party (person or organization).
	// Resolved once at creation, never reassigned.
	Client ref.Ref `db:"-" json:"client"`

	// Note is optional free text.
	Note *string `db:"note" json:"note,omitempty"`

	// ValidTill marks expiry; nil means the invoice never expires.
	ValidTill *time.Time `db:"valid_till" json:"validTill,omitempty"`

	// ReservedAt is the business date the invoice was drawn up.
	ReservedAt time.Time `db:"reserved_at" json:"reservedAt"`

	// Factors is the ordered list of pricing adjustments (JSONB).
	Factors FactorList `db:"factors" json:"factors"`

	// Items are loaded separately from the invoice row.
	Items []*InvoiceItem `db:"-" json:"items"`
}

// NewInvoice creates an unsaved invoice for the given client.
func NewInvoice(client ref.Ref) *Invoice {
	return &Invoice{
		BaseDocument: entity.NewBaseDocument(),
		Client:       client,
		ReservedAt:   time.Now().UTC(),
		Items:        make([]*InvoiceItem, 0),
	}
}

// IsExpired reports whether the invoice has passed its validity date.
func (inv *Invoice) IsExpired(now time.Time) bool {
	return inv.ValidTill != nil && !now.Before(*inv.ValidTill)
}

// Subtotal returns the sum of line totals, before factors.
func (inv *Invoice) Subtotal() types.Money {
	return Subtotal(inv.Items)
}

// Total returns the subtotal with all factors applied.
func (inv *Invoice) Total() types.Money {
	return Total(inv.Items, inv.Factors)
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if inv.Client.IsZero() {
		return apperror.NewValidation("client is required").
			WithDetail("field", "client")
	}
	if err := inv.Client.Validate(); err != nil {
		return err
	}
	if inv.Number < 0 {
		return apperror.NewValidation("number must be positive").
			WithDetail("field", "number")
	}
	for i, f := range inv.Factors {
		if err := f.Validate(); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr.WithDetail("factorIndex", i)
			}
			return err
		}
	}
	for i, item := range inv.Items {
		if err := item.Validate(); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr.WithDetail("itemIndex", i)
			}
			return err
		}
	}
	return nil
}

// InvoiceItem represents one line of an invoice.
// Items are created, updated and deleted only through the owning
// invoice's reconciliation step.
type InvoiceItem struct {
	ID id.ID `db:"id" json:"id"`

	// InvoiceID is the owning invoice; set once, never reassigned.
	InvoiceID id.ID `db:"invoice_id" json:"invoiceId"`

	// Product is a polymorphic reference to the priced entity;
	// set once at creation, never reassigned.
	Product ref.Ref `db:"-" json:"product"`

	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`

	// Duration multiplies the line for time-based services; 0 means 1.
	Duration int `db:"duration" json:"duration,omitempty"`

	// DiscountPercent reduces the line total, 0-100.
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`

	Note *string `db:"note" json:"note,omitempty"`
}

// LineTotal computes unitPrice * quantity * duration, reduced by the
// discount percentage. The result is not rounded; rounding happens once
// on the invoice total.
func (it *InvoiceItem) LineTotal() types.Money {
	dur := int64(it.Duration)
	if dur <= 0 {
		dur = 1
	}
	gross := it.UnitPrice.Mul(it.Quantity.Decimal()).Mul(decimal.NewFromInt(dur))
	if it.DiscountPercent.IsPositive() {
		discount := gross.Mul(it.DiscountPercent).Div(decimal.NewFromInt(100))
		gross = gross.Sub(discount)
	}
	return gross
}

// Validate checks line-level invariants.
func (it *InvoiceItem) Validate() error {
	if it.Product.IsZero() {
		return apperror.NewValidation("item product is required").
			WithDetail("field", "product")
	}
	if err := it.Product.Validate(); err != nil {
		return err
	}
	if !it.Quantity.IsPositive() {
		return apperror.NewValidation("item quantity must be positive").
			WithDetail("field", "quantity")
	}
	if it.UnitPrice.IsNegative() {
		return apperror.NewValidation("item unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	if it.Duration < 0 {
		return apperror.NewValidation("item duration cannot be negative").
			WithDetail("field", "duration")
	}
	if it.DiscountPercent.IsNegative() || it.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.NewValidation("discount percent must be between 0 and 100").
			WithDetail("field", "discountPercent")
	}
	return nil
}

// Subtotal returns the sum of line totals for the given items.
// An empty list yields zero.
func Subtotal(items []*InvoiceItem) types.Money {
	sum := types.Zero()
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// Total applies each factor independently against the original subtotal
// and rounds the result once to currency precision. Factors do not
// compound: two 10% reducers on 100 give 80, not 81.
func Total(items []*InvoiceItem, factors []Factor) types.Money {
	subtotal := Subtotal(items)
	total := subtotal
	for _, f := range factors {
		total = total.Add(f.Contribution(subtotal))
	}
	return types.RoundTotal(total)
}
