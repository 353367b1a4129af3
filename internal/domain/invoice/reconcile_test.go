package invoice

import (
	"testing"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
	"fakturo/internal/domain/ref"
)

func desiredFrom(item *InvoiceItem) ItemInput {
	itemID := item.ID
	return ItemInput{
		ID:              &itemID,
		Product:         item.Product,
		UnitPrice:       item.UnitPrice,
		Quantity:        item.Quantity,
		Duration:        item.Duration,
		DiscountPercent: item.DiscountPercent,
		Note:            item.Note,
	}
}

func TestReconcile_BrandNewInvoice(t *testing.T) {
	invoiceID := id.New()
	desired := []ItemInput{
		{Product: ref.Ref{Kind: "product", ID: id.New()}, UnitPrice: types.MustMoney("10"), Quantity: types.NewQuantityFromInt(1)},
		{Product: ref.Ref{Kind: "service", ID: id.New()}, UnitPrice: types.MustMoney("20"), Quantity: types.NewQuantityFromInt(2)},
	}

	cs, err := Reconcile(invoiceID, nil, desired)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	if len(cs.Creates) != 2 {
		t.Fatalf("expected 2 creates, got %d", len(cs.Creates))
	}
	if len(cs.Updates) != 0 || len(cs.Deletes) != 0 {
		t.Errorf("expected no updates/deletes, got %d/%d", len(cs.Updates), len(cs.Deletes))
	}
	for i, item := range cs.Creates {
		if item.InvoiceID != invoiceID {
			t.Errorf("create %d not owned by invoice", i)
		}
		if id.IsNil(item.ID) {
			t.Errorf("create %d has no id", i)
		}
	}
}

func TestReconcile_DeletesAbsentItems(t *testing.T) {
	invoiceID := id.New()
	a := testItem("10", 1)
	b := testItem("20", 1)
	c := testItem("30", 1)
	existing := []*InvoiceItem{a, b, c}

	// A and C stay (with changed quantity), B is omitted
	desiredA := desiredFrom(a)
	desiredA.Quantity = types.NewQuantityFromInt(5)
	desiredC := desiredFrom(c)
	desiredC.Quantity = types.NewQuantityFromInt(7)

	cs, err := Reconcile(invoiceID, existing, []ItemInput{desiredA, desiredC})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	if len(cs.Deletes) != 1 || cs.Deletes[0] != b.ID {
		t.Errorf("expected delete of exactly B, got %v", cs.Deletes)
	}
	if len(cs.Updates) != 2 {
		t.Errorf("expected 2 updates, got %d", len(cs.Updates))
	}
	if len(cs.Creates) != 0 {
		t.Errorf("expected no creates, got %d", len(cs.Creates))
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	invoiceID := id.New()
	existing := []*InvoiceItem{testItem("10", 1)}
	desired := []ItemInput{
		desiredFrom(existing[0]),
		{Product: ref.Ref{Kind: "product", ID: id.New()}, UnitPrice: types.MustMoney("5"), Quantity: types.NewQuantityFromInt(3)},
	}
	desired[0].Quantity = types.NewQuantityFromInt(9)

	first, err := Reconcile(invoiceID, existing, desired)
	if err != nil {
		t.Fatalf("first reconcile failed: %v", err)
	}
	if len(first.Creates) != 1 || len(first.Updates) != 1 {
		t.Fatalf("unexpected first plan: %d creates, %d updates", len(first.Creates), len(first.Updates))
	}

	// Persist the first plan, then re-submit the same desired list with
	// the ids the first run produced.
	persisted := first.Apply(existing)
	secondDesired := make([]ItemInput, 0, len(persisted))
	for _, item := range persisted {
		secondDesired = append(secondDesired, desiredFrom(item))
	}

	second, err := Reconcile(invoiceID, persisted, secondDesired)
	if err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}
	if !second.IsEmpty() {
		t.Errorf("second reconcile not a no-op: %d creates, %d updates, %d deletes",
			len(second.Creates), len(second.Updates), len(second.Deletes))
	}
}

func TestReconcile_ImmutableFieldsIgnored(t *testing.T) {
	invoiceID := id.New()
	item := testItem("10", 1)
	originalProduct := item.Product

	desired := desiredFrom(item)
	desired.Product = ref.Ref{Kind: "service", ID: id.New()} // resent with a different product
	desired.UnitPrice = types.MustMoney("99")

	cs, err := Reconcile(invoiceID, []*InvoiceItem{item}, []ItemInput{desired})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if len(cs.Updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(cs.Updates))
	}
	if cs.Updates[0].Product != originalProduct {
		t.Errorf("product reference was reassigned on update")
	}
	if !cs.Updates[0].UnitPrice.Equal(types.MustMoney("99")) {
		t.Errorf("mutable field was not applied")
	}
}

func TestReconcile_UnknownItemID(t *testing.T) {
	invoiceID := id.New()
	stray := id.New()
	desired := []ItemInput{{
		ID:      &stray,
		Product: ref.Ref{Kind: "product", ID: id.New()},
	}}

	_, err := Reconcile(invoiceID, nil, desired)
	if err == nil {
		t.Fatal("expected error for unknown item id")
	}
	if !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestReconcile_NewItemRequiresProduct(t *testing.T) {
	_, err := Reconcile(id.New(), nil, []ItemInput{{UnitPrice: types.MustMoney("10")}})
	if err == nil {
		t.Fatal("expected error for new item without product")
	}
	if !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
