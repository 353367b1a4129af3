package invoice

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
	"fakturo/internal/domain"
	"fakturo/internal/domain/ref"
)

// --- In-memory fakes ---

type memRepo struct {
	invoices map[id.ID]*Invoice
	items    []*InvoiceItem

	// hiddenTaken simulates numbers grabbed by concurrent writers: the
	// allocator's probe does not see them, but the unique constraint does.
	hiddenTaken map[int64]bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		invoices:    make(map[id.ID]*Invoice),
		hiddenTaken: make(map[int64]bool),
	}
}

func (r *memRepo) Create(_ context.Context, inv *Invoice) error {
	if r.hiddenTaken[inv.Number] {
		return apperror.NewDuplicate("invoice", "number", strconv.FormatInt(inv.Number, 10))
	}
	for _, existing := range r.invoices {
		if existing.Number == inv.Number {
			return apperror.NewDuplicate("invoice", "number", strconv.FormatInt(inv.Number, 10))
		}
	}
	stored := *inv
	stored.Items = nil
	r.invoices[inv.ID] = &stored
	return nil
}

func (r *memRepo) Update(_ context.Context, inv *Invoice) error {
	if _, ok := r.invoices[inv.ID]; !ok {
		return apperror.NewNotFound("invoice", inv.ID.String())
	}
	stored := *inv
	stored.Items = nil
	r.invoices[inv.ID] = &stored
	return nil
}

func (r *memRepo) GetByID(_ context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", invoiceID.String())
	}
	copied := *inv
	return &copied, nil
}

func (r *memRepo) Delete(_ context.Context, invoiceID id.ID) error {
	if _, ok := r.invoices[invoiceID]; !ok {
		return apperror.NewNotFound("invoice", invoiceID.String())
	}
	delete(r.invoices, invoiceID)
	kept := r.items[:0]
	for _, item := range r.items {
		if item.InvoiceID != invoiceID {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return nil
}

func (r *memRepo) ExistsByNumber(_ context.Context, number int64) (bool, error) {
	for _, inv := range r.invoices {
		if inv.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.invoices)), nil
}

func (r *memRepo) GetItems(_ context.Context, invoiceID id.ID) ([]*InvoiceItem, error) {
	var result []*InvoiceItem
	for _, item := range r.items {
		if item.InvoiceID == invoiceID {
			copied := *item
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *memRepo) ApplyItemChanges(_ context.Context, cs ChangeSet) error {
	deleted := make(map[id.ID]struct{}, len(cs.Deletes))
	for _, delID := range cs.Deletes {
		deleted[delID] = struct{}{}
	}
	kept := make([]*InvoiceItem, 0, len(r.items))
	for _, item := range r.items {
		if _, gone := deleted[item.ID]; !gone {
			kept = append(kept, item)
		}
	}
	r.items = kept

	for _, upd := range cs.Updates {
		for i, item := range r.items {
			if item.ID == upd.ID {
				copied := *upd
				r.items[i] = &copied
			}
		}
	}
	for _, created := range cs.Creates {
		copied := *created
		r.items = append(r.items, &copied)
	}
	return nil
}

func (r *memRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Invoice], error) {
	result := domain.ListResult[*Invoice]{TotalCount: int64(len(r.invoices))}
	for _, inv := range r.invoices {
		copied := *inv
		result.Items = append(result.Items, &copied)
	}
	return result, nil
}

func (r *memRepo) snapshot() ([]*Invoice, []*InvoiceItem) {
	invoices := make([]*Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		copied := *inv
		invoices = append(invoices, &copied)
	}
	items := make([]*InvoiceItem, 0, len(r.items))
	for _, item := range r.items {
		copied := *item
		items = append(items, &copied)
	}
	return invoices, items
}

func (r *memRepo) restore(invoices []*Invoice, items []*InvoiceItem) {
	r.invoices = make(map[id.ID]*Invoice, len(invoices))
	for _, inv := range invoices {
		r.invoices[inv.ID] = inv
	}
	r.items = items
}

// memTxManager rolls the fake store back when fn fails, mirroring a
// database transaction.
type memTxManager struct {
	repo *memRepo
}

func (m *memTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	invoices, items := m.repo.snapshot()
	if err := fn(ctx); err != nil {
		m.repo.restore(invoices, items)
		return err
	}
	return nil
}

type okResolver struct{}

func (okResolver) Exists(context.Context, id.ID) (bool, error) { return true, nil }

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()

	clients := ref.NewResolverSet()
	clients.Register("person", okResolver{})
	clients.Register("organization", okResolver{})

	products := ref.NewResolverSet()
	products.Register("product", okResolver{})
	products.Register("service", okResolver{})

	svc := NewService(ServiceConfig{
		Repo:             repo,
		ClientResolvers:  clients,
		ProductResolvers: products,
		TxManager:        &memTxManager{repo: repo},
	})
	return svc, repo
}

func personRef() ref.Ref {
	return ref.Ref{Kind: "person", ID: id.New()}
}

func productInput(price string, qty int64) ItemInput {
	return ItemInput{
		Product:   ref.Ref{Kind: "product", ID: id.New()},
		UnitPrice: types.MustMoney(price),
		Quantity:  types.NewQuantityFromInt(qty),
	}
}

// --- Tests ---

func TestCreateOrUpdate_AllocatesSequentialNumbers(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateOrUpdate(ctx, Input{Client: personRef()}, nil)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if !first.WasCreated {
		t.Error("expected WasCreated on first save")
	}
	if first.Invoice.Number != 1 {
		t.Errorf("expected number 1, got %d", first.Invoice.Number)
	}

	second, err := svc.CreateOrUpdate(ctx, Input{Client: personRef()}, nil)
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if second.Invoice.Number != 2 {
		t.Errorf("expected number 2, got %d", second.Invoice.Number)
	}
	if second.Invoice.Number == first.Invoice.Number {
		t.Error("sequential creates produced the same number")
	}
}

func TestCreateOrUpdate_SuppliedNumber(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	number := int64(42)
	res, err := svc.CreateOrUpdate(ctx, Input{Client: personRef(), Number: &number}, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if res.Invoice.Number != 42 {
		t.Errorf("expected supplied number 42, got %d", res.Invoice.Number)
	}

	// The allocator still fills the low gap
	next, err := svc.CreateOrUpdate(ctx, Input{Client: personRef()}, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if next.Invoice.Number != 1 {
		t.Errorf("expected number 1, got %d", next.Invoice.Number)
	}
}

func TestCreateOrUpdate_SuppliedNumberConflict(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	number := int64(7)
	if _, err := svc.CreateOrUpdate(ctx, Input{Client: personRef(), Number: &number}, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Same explicit number again: no silent retry, the conflict surfaces.
	_, err := svc.CreateOrUpdate(ctx, Input{Client: personRef(), Number: &number}, nil)
	if !apperror.IsDuplicate(err) {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

func TestCreateOrUpdate_RetriesPastHiddenCollision(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	// A concurrent writer holds number 1: invisible to the probe,
	// rejected by the unique constraint.
	repo.hiddenTaken[1] = true

	res, err := svc.CreateOrUpdate(ctx, Input{Client: personRef()}, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if res.Invoice.Number != 2 {
		t.Errorf("expected retry to land on 2, got %d", res.Invoice.Number)
	}
}

func TestCreateOrUpdate_AllocationExhaustion(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	for n := int64(1); n <= 10; n++ {
		repo.hiddenTaken[n] = true
	}

	_, err := svc.CreateOrUpdate(ctx, Input{Client: personRef()}, nil)
	if !apperror.IsConflict(err) {
		t.Errorf("expected conflict after exhausted retries, got %v", err)
	}
}

func TestCreateOrUpdate_UpdateKeepsNumberAndClient(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateOrUpdate(ctx, Input{Client: personRef()}, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	originalClient := created.Invoice.Client
	invoiceID := created.Invoice.ID

	note := "updated"
	updated, err := svc.CreateOrUpdate(ctx, Input{
		Client: personRef(), // different client, must be ignored
		Note:   &note,
	}, &invoiceID)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.WasCreated {
		t.Error("update reported WasCreated")
	}
	if updated.Invoice.Number != created.Invoice.Number {
		t.Errorf("number recomputed on update: %d -> %d", created.Invoice.Number, updated.Invoice.Number)
	}
	if updated.Invoice.Client != originalClient {
		t.Error("client was reassigned on update")
	}
	if updated.Invoice.Note == nil || *updated.Invoice.Note != "updated" {
		t.Error("scalar merge did not apply note")
	}
}

func TestCreateOrUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService()
	missing := id.New()

	_, err := svc.CreateOrUpdate(context.Background(), Input{Client: personRef()}, &missing)
	if !apperror.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreateOrUpdate_ClientRequiredOnCreate(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateOrUpdate(context.Background(), Input{}, nil)
	if !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateOrUpdate_ReconcilesItems(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.CreateOrUpdate(ctx, Input{
		Client: personRef(),
		Items:  []ItemInput{productInput("10", 1), productInput("20", 2)},
	}, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(created.Invoice.Items) != 2 {
		t.Fatalf("expected 2 items after create, got %d", len(created.Invoice.Items))
	}

	// Keep only the first item, with a new quantity
	keep := created.Invoice.Items[0]
	keepID := keep.ID
	_, err = svc.CreateOrUpdate(ctx, Input{
		Items: []ItemInput{{
			ID:        &keepID,
			Product:   keep.Product,
			UnitPrice: keep.UnitPrice,
			Quantity:  types.NewQuantityFromInt(9),
		}},
	}, &created.Invoice.ID)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	persisted, err := repo.GetItems(ctx, created.Invoice.ID)
	if err != nil {
		t.Fatalf("get items failed: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("expected 1 persisted item, got %d", len(persisted))
	}
	if persisted[0].ID != keepID {
		t.Error("wrong item survived reconciliation")
	}
	if persisted[0].Quantity != types.NewQuantityFromInt(9) {
		t.Error("item update was not applied")
	}
}

func TestCreateOrUpdate_FailingHookLeavesItemsUnchanged(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.CreateOrUpdate(ctx, Input{
		Client: personRef(),
		Items:  []ItemInput{productInput("10", 1)},
	}, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	before, _ := repo.GetItems(ctx, created.Invoice.ID)
	if len(before) != 1 {
		t.Fatalf("expected 1 item before failing save, got %d", len(before))
	}

	svc.Hooks().OnPostSave(func(context.Context, *Invoice) error {
		return errors.New("webhook unreachable")
	})

	// Attempt to replace the item set; the post-save hook fails.
	_, err = svc.CreateOrUpdate(ctx, Input{
		Items: []ItemInput{productInput("99", 5), productInput("1", 1)},
	}, &created.Invoice.ID)
	if err == nil {
		t.Fatal("expected save to fail")
	}

	after, _ := repo.GetItems(ctx, created.Invoice.ID)
	if len(after) != 1 || after[0].ID != before[0].ID {
		t.Errorf("failed save mutated the persisted item set: before %d items, after %d", len(before), len(after))
	}
}

func TestDelete_CascadesToItems(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.CreateOrUpdate(ctx, Input{
		Client: personRef(),
		Items:  []ItemInput{productInput("10", 1), productInput("20", 1)},
	}, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(ctx, created.Invoice.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := svc.GetByID(ctx, created.Invoice.ID); !apperror.IsNotFound(err) {
		t.Errorf("expected invoice gone, got %v", err)
	}
	items, _ := repo.GetItems(ctx, created.Invoice.ID)
	if len(items) != 0 {
		t.Errorf("expected cascade to remove items, %d left", len(items))
	}
}

func TestDelete_FailingPreDeleteHookAborts(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.CreateOrUpdate(ctx, Input{
		Client: personRef(),
		Items:  []ItemInput{productInput("10", 1)},
	}, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	svc.Hooks().OnPreDelete(func(context.Context, *Invoice) error {
		return apperror.NewBusinessRule("INVOICE_LOCKED", "invoice is locked")
	})

	if err := svc.Delete(ctx, created.Invoice.ID); err == nil {
		t.Fatal("expected delete to fail")
	}
	if _, err := svc.GetByID(ctx, created.Invoice.ID); err != nil {
		t.Errorf("invoice should survive aborted delete: %v", err)
	}
	items, _ := repo.GetItems(ctx, created.Invoice.ID)
	if len(items) != 1 {
		t.Errorf("items should survive aborted delete, got %d", len(items))
	}
}

func TestNewNumber_Preview(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	preview, err := svc.NewNumber(ctx)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if preview != 1 {
		t.Errorf("expected preview 1, got %d", preview)
	}

	if _, err := svc.CreateOrUpdate(ctx, Input{Client: personRef()}, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	preview, err = svc.NewNumber(ctx)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if preview != 2 {
		t.Errorf("expected preview 2 after one create, got %d", preview)
	}
}
