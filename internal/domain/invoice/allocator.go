package invoice

import (
	"context"
	"fmt"
)

// NumberProber reports whether an invoice number is already taken.
// Implemented by the invoice repository.
type NumberProber interface {
	ExistsByNumber(ctx context.Context, number int64) (bool, error)
}

// NumberAllocator finds the smallest unused positive invoice number.
//
// The linear probe keeps numbering dense: abandoned drafts and rolled-back
// saves leave no gaps, unlike a sequence-backed counter. The scan is not
// safe against concurrent allocators on its own; the store enforces a
// uniqueness constraint on number and the service retries allocation from
// the colliding candidate on a duplicate error.
type NumberAllocator struct {
	prober NumberProber
}

// NewNumberAllocator creates an allocator backed by the given prober.
func NewNumberAllocator(prober NumberProber) *NumberAllocator {
	return &NumberAllocator{prober: prober}
}

// Allocate returns the smallest positive integer not used as an invoice
// number.
func (a *NumberAllocator) Allocate(ctx context.Context) (int64, error) {
	return a.AllocateFrom(ctx, 1)
}

// AllocateFrom returns the smallest unused number greater than or equal
// to start. Used for retries after a uniqueness violation.
func (a *NumberAllocator) AllocateFrom(ctx context.Context, start int64) (int64, error) {
	if start < 1 {
		start = 1
	}
	for candidate := start; ; candidate++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		taken, err := a.prober.ExistsByNumber(ctx, candidate)
		if err != nil {
			return 0, fmt.Errorf("probe invoice number %d: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
}
