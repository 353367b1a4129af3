package activity

import (
	"context"
	"encoding/json"
	"fmt"

	appctx "fakturo/internal/core/context"
	"fakturo/internal/domain/invoice"
)

// Recorder turns invoice lifecycle events into activity entries.
// It registers as post-save and post-delete hooks, so entries are
// written inside the same transaction as the document itself.
type Recorder struct {
	store Store
}

// NewRecorder creates a recorder on top of an activity store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Bind registers the recorder on an invoice service.
func (r *Recorder) Bind(svc *invoice.Service) {
	svc.Hooks().OnPostSave(r.invoiceSaved)
	svc.Hooks().OnPostDelete(r.invoiceDeleted)
}

// invoiceSummary is the payload stored with each entry.
type invoiceSummary struct {
	Number     int64  `json:"number"`
	ClientKind string `json:"clientKind"`
	ClientID   string `json:"clientId"`
	ItemCount  int    `json:"itemCount"`
	Total      string `json:"total"`
}

func (r *Recorder) invoiceSaved(ctx context.Context, inv *invoice.Invoice) error {
	// A fresh invoice carries version 1; updates have been bumped past it.
	verb := VerbUpdated
	if inv.Version <= 1 {
		verb = VerbCreated
	}
	return r.record(ctx, inv, verb)
}

func (r *Recorder) invoiceDeleted(ctx context.Context, inv *invoice.Invoice) error {
	return r.record(ctx, inv, VerbDeleted)
}

func (r *Recorder) record(ctx context.Context, inv *invoice.Invoice, verb Verb) error {
	payload, err := json.Marshal(invoiceSummary{
		Number:     inv.Number,
		ClientKind: string(inv.Client.Kind),
		ClientID:   inv.Client.ID.String(),
		ItemCount:  len(inv.Items),
		Total:      inv.Total().StringFixed(2),
	})
	if err != nil {
		return fmt.Errorf("marshal activity payload: %w", err)
	}

	entry := New("invoice", inv.ID, verb)
	entry.UserID = appctx.GetUserID(ctx)
	entry.Payload = payload

	return r.store.Record(ctx, entry)
}
