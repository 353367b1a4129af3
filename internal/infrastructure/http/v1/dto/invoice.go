package dto

import (
	"time"

	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
	"fakturo/internal/domain/invoice"
)

// --- Request DTOs ---

// InvoiceItemRequest is one desired invoice line. An item with an ID
// updates the matching persisted line; without an ID it creates one.
type InvoiceItemRequest struct {
	ID              *string        `json:"id"`
	Product         RefDTO         `json:"product"`
	UnitPrice       types.Money    `json:"unitPrice"`
	Quantity        types.Quantity `json:"quantity"`
	Duration        int            `json:"duration"`
	DiscountPercent types.Money    `json:"discountPercent"`
	Note            *string        `json:"note"`
}

// FactorRequest is one pricing adjustment.
type FactorRequest struct {
	Title  string             `json:"title"`
	Type   invoice.FactorType `json:"type"`
	Amount types.Money        `json:"amount"`
	Unit   invoice.FactorUnit `json:"unit"`
}

// SaveInvoiceRequest is the request body for creating or updating an
// invoice. The item list is the full desired state: persisted items
// absent from it are deleted.
type SaveInvoiceRequest struct {
	Number     *int64               `json:"number"`
	Client     RefDTO               `json:"client"`
	Note       *string              `json:"note"`
	ValidTill  *time.Time           `json:"validTill"`
	ReservedAt *time.Time           `json:"reservedAt"`
	Factors    []FactorRequest      `json:"factors"`
	Items      []InvoiceItemRequest `json:"items"`
}

// ToInput converts the request to a domain save input.
func (r *SaveInvoiceRequest) ToInput() (invoice.Input, error) {
	client, err := r.Client.ToRef()
	if err != nil {
		return invoice.Input{}, err
	}

	factors := make([]invoice.Factor, 0, len(r.Factors))
	for _, f := range r.Factors {
		factors = append(factors, invoice.Factor{
			Title:  f.Title,
			Type:   f.Type,
			Amount: f.Amount,
			Unit:   f.Unit,
		})
	}

	items := make([]invoice.ItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		input := invoice.ItemInput{
			UnitPrice:       it.UnitPrice,
			Quantity:        it.Quantity,
			Duration:        it.Duration,
			DiscountPercent: it.DiscountPercent,
			Note:            it.Note,
		}
		if it.ID != nil && *it.ID != "" {
			itemID, err := id.Parse(*it.ID)
			if err != nil {
				return invoice.Input{}, err
			}
			input.ID = &itemID
		}
		product, err := it.Product.ToRef()
		if err != nil {
			return invoice.Input{}, err
		}
		input.Product = product
		items = append(items, input)
	}

	return invoice.Input{
		Number:     r.Number,
		Client:     client,
		Note:       r.Note,
		ValidTill:  r.ValidTill,
		ReservedAt: r.ReservedAt,
		Factors:    factors,
		Items:      items,
	}, nil
}

// --- Response DTOs ---

// InvoiceItemResponse is one invoice line.
type InvoiceItemResponse struct {
	ID              string         `json:"id"`
	Product         RefDTO         `json:"product"`
	UnitPrice       types.Money    `json:"unitPrice"`
	Quantity        types.Quantity `json:"quantity"`
	Duration        int            `json:"duration,omitempty"`
	DiscountPercent types.Money    `json:"discountPercent"`
	Note            *string        `json:"note,omitempty"`
	LineTotal       string         `json:"lineTotal"`
}

// FactorResponse is one pricing adjustment with its contribution to the
// invoice total.
type FactorResponse struct {
	Title        string             `json:"title"`
	Type         invoice.FactorType `json:"type"`
	Amount       types.Money        `json:"amount"`
	Unit         invoice.FactorUnit `json:"unit"`
	Contribution string             `json:"contribution"`
}

// InvoiceResponse is the response body for an invoice.
type InvoiceResponse struct {
	ID         string                `json:"id"`
	Number     int64                 `json:"number"`
	Client     RefDTO                `json:"client"`
	Note       *string               `json:"note,omitempty"`
	ValidTill  *time.Time            `json:"validTill,omitempty"`
	ReservedAt time.Time             `json:"reservedAt"`
	Factors    []FactorResponse      `json:"factors"`
	Items      []InvoiceItemResponse `json:"items,omitempty"`
	Subtotal   string                `json:"subtotal"`
	Total      string                `json:"total"`
	Version    int                   `json:"version"`
	CreatedAt  time.Time             `json:"createdAt"`
	UpdatedAt  time.Time             `json:"updatedAt"`
	CreatedBy  string                `json:"createdBy,omitempty"`
	UpdatedBy  string                `json:"updatedBy,omitempty"`
}

// SaveInvoiceResponse wraps a saved invoice with the create/update outcome.
type SaveInvoiceResponse struct {
	Invoice    *InvoiceResponse `json:"invoice"`
	WasCreated bool             `json:"wasCreated"`
}

// FromInvoice creates response DTO from domain entity. Monetary totals
// are serialized as fixed-point strings.
func FromInvoice(inv *invoice.Invoice) *InvoiceResponse {
	subtotal := inv.Subtotal()

	factors := make([]FactorResponse, 0, len(inv.Factors))
	for _, f := range inv.Factors {
		factors = append(factors, FactorResponse{
			Title:        f.Title,
			Type:         f.Type,
			Amount:       f.Amount,
			Unit:         f.Unit,
			Contribution: f.Contribution(subtotal).StringFixed(types.CurrencyScale),
		})
	}

	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, InvoiceItemResponse{
			ID:              it.ID.String(),
			Product:         FromRef(it.Product),
			UnitPrice:       it.UnitPrice,
			Quantity:        it.Quantity,
			Duration:        it.Duration,
			DiscountPercent: it.DiscountPercent,
			Note:            it.Note,
			LineTotal:       it.LineTotal().StringFixed(types.CurrencyScale),
		})
	}

	return &InvoiceResponse{
		ID:         inv.ID.String(),
		Number:     inv.Number,
		Client:     FromRef(inv.Client),
		Note:       inv.Note,
		ValidTill:  inv.ValidTill,
		ReservedAt: inv.ReservedAt,
		Factors:    factors,
		Items:      items,
		Subtotal:   subtotal.StringFixed(types.CurrencyScale),
		Total:      inv.Total().StringFixed(types.CurrencyScale),
		Version:    inv.Version,
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
		CreatedBy:  inv.CreatedBy,
		UpdatedBy:  inv.UpdatedBy,
	}
}

// --- Number preview ---

// NumberPreviewResponse carries the advisory next invoice number.
type NumberPreviewResponse struct {
	Number int64 `json:"number"`
}
