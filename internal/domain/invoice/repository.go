package invoice

import (
	"context"
	"time"

	"fakturo/internal/core/id"
	"fakturo/internal/domain"
)

// ListFilter contains filtering options for invoice listing.
type ListFilter struct {
	// Number filters by exact invoice number
	Number *int64

	// ClientQuery matches the client's numeric code exactly or the
	// client's name by prefix
	ClientQuery string

	// ClientID filters by exact client
	ClientID *id.ID

	// ReservedFrom / ReservedTo bound the reservation date (inclusive)
	ReservedFrom *time.Time
	ReservedTo   *time.Time

	// OrderBy specifies sorting (e.g., "number", "-reserved_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "-number",
	}
}

// Repository defines persistence for invoices and their items.
// Invoices are hard-deleted; deletion cascades to items.
type Repository interface {
	// Create inserts the invoice row. Fails with a duplicate error when
	// the number is already taken.
	Create(ctx context.Context, inv *Invoice) error

	// Update modifies the invoice row (with optimistic locking).
	Update(ctx context.Context, inv *Invoice) error

	// GetByID retrieves the invoice row without items.
	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// Delete removes the invoice and cascades to its items.
	Delete(ctx context.Context, invoiceID id.ID) error

	// ExistsByNumber reports whether any invoice uses the number.
	ExistsByNumber(ctx context.Context, number int64) (bool, error)

	// Count returns the total number of invoices.
	Count(ctx context.Context) (int64, error)

	// GetItems retrieves all items of an invoice in stable order.
	GetItems(ctx context.Context, invoiceID id.ID) ([]*InvoiceItem, error)

	// ApplyItemChanges executes a reconciliation plan atomically within
	// the ambient transaction.
	ApplyItemChanges(ctx context.Context, cs ChangeSet) error

	// List retrieves invoices (without items) with filtering and pagination.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)
}
