// Package ref models polymorphic references between documents and
// catalog entities. A reference carries the target kind alongside the
// target ID, so a single column pair can point at different catalogs
// (e.g. an invoice client that is either a person or an organization).
package ref

import (
	"context"
	"fmt"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
)

// Kind identifies the catalog a reference points into.
type Kind string

// Ref is a typed reference to a catalog entity.
type Ref struct {
	Kind Kind   `json:"kind" db:"kind"`
	ID   id.ID  `json:"id" db:"id"`
	Code string `json:"code,omitempty" db:"-"` // denormalized, filled by resolvers
}

// IsZero reports whether the reference is unset.
func (r Ref) IsZero() bool {
	return r.Kind == "" && id.IsNil(r.ID)
}

func (r Ref) String() string {
	return string(r.Kind) + ":" + r.ID.String()
}

// Validate checks structural validity: both kind and ID set, or neither.
func (r Ref) Validate() error {
	if r.IsZero() {
		return nil
	}
	if r.Kind == "" {
		return apperror.NewValidation("reference kind is required")
	}
	if id.IsNil(r.ID) {
		return apperror.NewValidation(fmt.Sprintf("reference id is required for kind %q", r.Kind))
	}
	return nil
}

// Resolver checks existence of entities of one kind.
type Resolver interface {
	// Exists reports whether the referenced entity exists and is not
	// marked for deletion.
	Exists(ctx context.Context, entityID id.ID) (bool, error)
}

// ResolverSet dispatches reference checks by kind.
type ResolverSet struct {
	resolvers map[Kind]Resolver
}

// NewResolverSet creates an empty resolver set.
func NewResolverSet() *ResolverSet {
	return &ResolverSet{resolvers: make(map[Kind]Resolver)}
}

// Register binds a resolver to a kind. Last registration wins.
func (s *ResolverSet) Register(kind Kind, r Resolver) {
	s.resolvers[kind] = r
}

// Check verifies that the reference points at an existing entity.
// A zero reference passes; callers decide whether the field is required.
func (s *ResolverSet) Check(ctx context.Context, r Ref) error {
	if r.IsZero() {
		return nil
	}
	if err := r.Validate(); err != nil {
		return err
	}
	resolver, ok := s.resolvers[r.Kind]
	if !ok {
		return apperror.NewValidation(fmt.Sprintf("unknown reference kind %q", r.Kind))
	}
	exists, err := resolver.Exists(ctx, r.ID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewNotFound(string(r.Kind), r.ID.String())
	}
	return nil
}

// Kinds returns the registered kinds.
func (s *ResolverSet) Kinds() []Kind {
	kinds := make([]Kind, 0, len(s.resolvers))
	for k := range s.resolvers {
		kinds = append(kinds, k)
	}
	return kinds
}
