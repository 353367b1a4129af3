package invoice

import (
	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
	"fakturo/internal/domain/ref"
)

// ItemInput is one desired line in a save request. An input with an ID
// updates the matching persisted item; an input without an ID creates a
// new item.
type ItemInput struct {
	ID              *id.ID
	Product         ref.Ref
	UnitPrice       types.Money
	Quantity        types.Quantity
	Duration        int
	DiscountPercent types.Money
	Note            *string
}

// ChangeSet is the minimal create/update/delete plan that makes the
// persisted item set equal to the desired one.
type ChangeSet struct {
	Creates []*InvoiceItem
	Updates []*InvoiceItem
	Deletes []id.ID
}

// IsEmpty reports whether the change set is a no-op.
func (c ChangeSet) IsEmpty() bool {
	return len(c.Creates) == 0 && len(c.Updates) == 0 && len(c.Deletes) == 0
}

// Reconcile diffs the persisted items of an invoice against the desired
// list. Persisted items absent from desired are deleted; desired entries
// with an ID update only the mutable fields of their persisted
// counterpart (invoice and product references are never reassigned);
// entries without an ID become new items owned by invoiceID.
//
// Re-running with the same desired list after the plan is applied yields
// an empty change set: first-run creates then carry IDs that match their
// desired counterparts.
func Reconcile(invoiceID id.ID, existing []*InvoiceItem, desired []ItemInput) (ChangeSet, error) {
	var cs ChangeSet

	existingByID := make(map[id.ID]*InvoiceItem, len(existing))
	for _, item := range existing {
		existingByID[item.ID] = item
	}

	desiredIDs := make(map[id.ID]struct{}, len(desired))

	for i, in := range desired {
		if in.ID == nil {
			// New item: acquires the owning invoice and its product
			// reference exactly once, here.
			if in.Product.IsZero() {
				return ChangeSet{}, apperror.NewValidation("new item requires a product reference").
					WithDetail("itemIndex", i)
			}
			cs.Creates = append(cs.Creates, &InvoiceItem{
				ID:              id.New(),
				InvoiceID:       invoiceID,
				Product:         in.Product,
				UnitPrice:       in.UnitPrice,
				Quantity:        in.Quantity,
				Duration:        in.Duration,
				DiscountPercent: in.DiscountPercent,
				Note:            in.Note,
			})
			continue
		}

		current, ok := existingByID[*in.ID]
		if !ok {
			return ChangeSet{}, apperror.NewValidation("item does not belong to this invoice").
				WithDetail("itemId", in.ID.String()).
				WithDetail("itemIndex", i)
		}
		desiredIDs[*in.ID] = struct{}{}

		updated := *current
		updated.UnitPrice = in.UnitPrice
		updated.Quantity = in.Quantity
		updated.Duration = in.Duration
		updated.DiscountPercent = in.DiscountPercent
		updated.Note = in.Note
		if itemChanged(current, &updated) {
			cs.Updates = append(cs.Updates, &updated)
		}
	}

	for _, item := range existing {
		if _, keep := desiredIDs[item.ID]; !keep {
			cs.Deletes = append(cs.Deletes, item.ID)
		}
	}

	return cs, nil
}

// Apply merges a change set into an in-memory item slice, returning the
// item set as it will exist after the plan is persisted. Order follows
// the surviving existing items, then creates.
func (c ChangeSet) Apply(existing []*InvoiceItem) []*InvoiceItem {
	deleted := make(map[id.ID]struct{}, len(c.Deletes))
	for _, delID := range c.Deletes {
		deleted[delID] = struct{}{}
	}
	updatedByID := make(map[id.ID]*InvoiceItem, len(c.Updates))
	for _, item := range c.Updates {
		updatedByID[item.ID] = item
	}

	result := make([]*InvoiceItem, 0, len(existing)+len(c.Creates))
	for _, item := range existing {
		if _, gone := deleted[item.ID]; gone {
			continue
		}
		if upd, ok := updatedByID[item.ID]; ok {
			result = append(result, upd)
		} else {
			result = append(result, item)
		}
	}
	return append(result, c.Creates...)
}

func itemChanged(a, b *InvoiceItem) bool {
	if !a.UnitPrice.Equal(b.UnitPrice) || a.Quantity != b.Quantity {
		return true
	}
	if a.Duration != b.Duration || !a.DiscountPercent.Equal(b.DiscountPercent) {
		return true
	}
	return !equalNote(a.Note, b.Note)
}

func equalNote(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
