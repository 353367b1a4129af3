package invoice

import (
	"context"
	"time"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/core/tx"
	"fakturo/internal/core/workspace"
	"fakturo/internal/domain"
	"fakturo/internal/domain/ref"
)

// maxNumberAttempts bounds retries when an auto-allocated number
// collides with a concurrent save.
const maxNumberAttempts = 5

// Input carries the caller-supplied invoice state for a save.
type Input struct {
	// Number, when set, overrides allocation (administrative override).
	Number *int64

	// Client is required on creation and ignored on update.
	Client ref.Ref

	Note       *string
	ValidTill  *time.Time
	ReservedAt *time.Time

	// Factors replaces the whole factors list.
	Factors []Factor

	// Items is the full desired item list; persisted items absent from
	// it are deleted.
	Items []ItemInput
}

// SaveResult is the outcome of CreateOrUpdate. WasCreated distinguishes
// a fresh invoice from an update, which audit logging needs.
type SaveResult struct {
	Invoice    *Invoice
	WasCreated bool
}

// Service orchestrates invoice saves: number allocation, scalar merge,
// item reconciliation and lifecycle hooks, all inside one transaction.
type Service struct {
	repo      Repository
	allocator *NumberAllocator
	clients   *ref.ResolverSet
	products  *ref.ResolverSet
	txManager tx.Manager // optional - if nil, obtained from context

	hooks     *domain.HookRegistry[*Invoice]
	itemHooks *domain.HookRegistry[*InvoiceItem]
}

// ServiceConfig configures the invoice service.
type ServiceConfig struct {
	Repo             Repository
	ClientResolvers  *ref.ResolverSet
	ProductResolvers *ref.ResolverSet
	TxManager        tx.Manager // Optional for Database-per-Workspace
}

// NewService creates a new invoice service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:      cfg.Repo,
		allocator: NewNumberAllocator(cfg.Repo),
		clients:   cfg.ClientResolvers,
		products:  cfg.ProductResolvers,
		txManager: cfg.TxManager,
		hooks:     domain.NewHookRegistry[*Invoice](),
		itemHooks: domain.NewHookRegistry[*InvoiceItem](),
	}
}

// Hooks returns the invoice lifecycle hook registry.
func (s *Service) Hooks() *domain.HookRegistry[*Invoice] {
	return s.hooks
}

// ItemHooks returns the item lifecycle hook registry.
func (s *Service) ItemHooks() *domain.HookRegistry[*InvoiceItem] {
	return s.itemHooks
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return workspace.GetTxManager(ctx)
}

// hookErr keeps structured errors and wraps everything else as a
// dependency failure, so hook failures stay distinguishable.
func hookErr(stage string, err error) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}
	return apperror.NewDependency(stage+" hook", err)
}

// CreateOrUpdate saves an invoice. With existingID nil a new invoice is
// created: the client reference is resolved once and a number is
// allocated unless supplied. With existingID set the invoice is loaded
// (NotFound if absent) and its number and client are never recomputed.
//
// Scalar fields, the factors list and the item set are replaced by the
// input. Pre-save hooks, the invoice write, item reconciliation with
// item hooks, and post-save hooks run in a single transaction; any
// failure rolls the whole save back. Auto-allocated numbers retry past
// duplicate-number conflicts up to maxNumberAttempts, then surface a
// conflict error.
func (s *Service) CreateOrUpdate(ctx context.Context, in Input, existingID *id.ID) (SaveResult, error) {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return SaveResult{}, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	isNew := existingID == nil

	var inv *Invoice
	var existingItems []*InvoiceItem

	if isNew {
		if in.Client.IsZero() {
			return SaveResult{}, apperror.NewValidation("client is required").
				WithDetail("field", "client")
		}
		if err := s.clients.Check(ctx, in.Client); err != nil {
			return SaveResult{}, err
		}
		inv = NewInvoice(in.Client)
	} else {
		inv, err = s.repo.GetByID(ctx, *existingID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return SaveResult{}, apperror.NewNotFound("invoice", existingID.String())
			}
			return SaveResult{}, err
		}
		existingItems, err = s.repo.GetItems(ctx, inv.ID)
		if err != nil {
			return SaveResult{}, err
		}
	}

	// Scalar merge: the input replaces note, validity and factors wholesale.
	inv.Note = in.Note
	inv.ValidTill = in.ValidTill
	if in.ReservedAt != nil {
		inv.ReservedAt = *in.ReservedAt
	}
	inv.Factors = FactorList(in.Factors)

	numberSupplied := in.Number != nil
	if numberSupplied {
		inv.Number = *in.Number
	}

	allocateFrom := int64(1)
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		if isNew && !numberSupplied {
			number, err := s.allocator.AllocateFrom(ctx, allocateFrom)
			if err != nil {
				return SaveResult{}, err
			}
			inv.Number = number
		}

		if err := inv.Validate(ctx); err != nil {
			if apperror.IsAppError(err) {
				return SaveResult{}, err
			}
			return SaveResult{}, apperror.NewValidation(err.Error())
		}

		err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.save(ctx, inv, existingItems, in.Items, isNew)
		})
		if err == nil {
			return SaveResult{Invoice: inv, WasCreated: isNew}, nil
		}

		// Only auto-allocated numbers retry past a collision; a supplied
		// number colliding is the caller's conflict to resolve.
		if isNew && !numberSupplied && apperror.IsDuplicate(err) {
			allocateFrom = inv.Number + 1
			continue
		}
		return SaveResult{}, err
	}

	return SaveResult{}, apperror.NewConflict("invoice number allocation failed after repeated collisions").
		WithDetail("attempts", maxNumberAttempts)
}

// save runs the transactional part of a create-or-update.
func (s *Service) save(ctx context.Context, inv *Invoice, existingItems []*InvoiceItem, desired []ItemInput, isNew bool) error {
	if err := hookErr("pre-save", s.hooks.Run(ctx, domain.PreSave, inv)); err != nil {
		return err
	}

	if isNew {
		if err := s.repo.Create(ctx, inv); err != nil {
			return err
		}
	} else {
		if err := s.repo.Update(ctx, inv); err != nil {
			return err
		}
	}

	cs, err := Reconcile(inv.ID, existingItems, desired)
	if err != nil {
		return err
	}

	// New items resolve their product reference exactly once, here.
	for _, item := range cs.Creates {
		if err := s.products.Check(ctx, item.Product); err != nil {
			return err
		}
	}

	existingByID := make(map[id.ID]*InvoiceItem, len(existingItems))
	for _, item := range existingItems {
		existingByID[item.ID] = item
	}

	for _, item := range cs.Deletes {
		if err := hookErr("item pre-delete", s.itemHooks.Run(ctx, domain.PreDelete, existingByID[item])); err != nil {
			return err
		}
	}
	for _, item := range cs.Creates {
		if err := hookErr("item pre-save", s.itemHooks.Run(ctx, domain.PreSave, item)); err != nil {
			return err
		}
	}
	for _, item := range cs.Updates {
		if err := hookErr("item pre-save", s.itemHooks.Run(ctx, domain.PreSave, item)); err != nil {
			return err
		}
	}

	if err := s.repo.ApplyItemChanges(ctx, cs); err != nil {
		return err
	}
	inv.Items = cs.Apply(existingItems)

	for _, item := range cs.Creates {
		if err := hookErr("item post-save", s.itemHooks.Run(ctx, domain.PostSave, item)); err != nil {
			return err
		}
	}
	for _, item := range cs.Updates {
		if err := hookErr("item post-save", s.itemHooks.Run(ctx, domain.PostSave, item)); err != nil {
			return err
		}
	}

	return hookErr("post-save", s.hooks.Run(ctx, domain.PostSave, inv))
}

// GetByID retrieves an invoice with its items. Header and items are
// read in one read-only transaction so the pair is a consistent snapshot.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	var inv *Invoice

	load := func(ctx context.Context) error {
		var err error
		inv, err = s.repo.GetByID(ctx, invoiceID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("invoice", invoiceID.String())
			}
			return err
		}
		inv.Items, err = s.repo.GetItems(ctx, invoiceID)
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	if rom, ok := txm.(tx.ReadOnlyManager); ok {
		err = rom.ReadOnly(ctx, load)
	} else {
		err = load(ctx)
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// NewNumber previews the number the next created invoice would get.
// The preview is advisory: the number is only reserved at save time.
func (s *Service) NewNumber(ctx context.Context) (int64, error) {
	return s.allocator.Allocate(ctx)
}

// List retrieves invoices without items.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	return s.repo.List(ctx, filter)
}

// Delete removes an invoice and its items. Delete hooks for the invoice
// and each item run inside the same transaction as the cascade.
func (s *Service) Delete(ctx context.Context, invoiceID id.ID) error {
	inv, err := s.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := hookErr("pre-delete", s.hooks.Run(ctx, domain.PreDelete, inv)); err != nil {
			return err
		}
		for _, item := range inv.Items {
			if err := hookErr("item pre-delete", s.itemHooks.Run(ctx, domain.PreDelete, item)); err != nil {
				return err
			}
		}
		if err := s.repo.Delete(ctx, invoiceID); err != nil {
			return err
		}
		return hookErr("post-delete", s.hooks.Run(ctx, domain.PostDelete, inv))
	})
}
