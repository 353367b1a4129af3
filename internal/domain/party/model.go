// Package party provides the Party catalog: the people and organizations
// invoices are issued to.
package party

import (
	"context"
	"regexp"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/entity"
	"fakturo/internal/domain/ref"
)

// Pre-compiled regex patterns for validation
var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRE = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{4,24}$`)
)

// Kind defines the kind of party.
type Kind string

const (
	KindPerson       Kind = "person"
	KindOrganization Kind = "organization"
)

// Reference kinds for polymorphic client links.
const (
	RefPerson       ref.Kind = "person"
	RefOrganization ref.Kind = "organization"
)

// RefKind maps a party kind to its reference kind.
func RefKind(k Kind) ref.Kind {
	if k == KindOrganization {
		return RefOrganization
	}
	return RefPerson
}

// Party represents a billable counterpart: a person or an organization.
type Party struct {
	entity.Catalog

	// Kind defines whether this is a person or an organization
	Kind Kind `db:"kind" json:"kind"`

	// LegalName is the official registered name (organizations)
	LegalName *string `db:"legal_name" json:"legalName,omitempty"`

	// TaxID is the tax identification number
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// Address is the billing address
	Address *string `db:"address" json:"address,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// ContactPerson is the primary contact name (organizations)
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewParty creates a new Party with required fields.
func NewParty(code, name string, kind Kind) *Party {
	return &Party{
		Catalog: entity.NewCatalog(code, name),
		Kind:    kind,
	}
}

// Ref returns a polymorphic reference to this party.
func (p *Party) Ref() ref.Ref {
	return ref.Ref{Kind: RefKind(p.Kind), ID: p.ID, Code: p.Code}
}

// Validate implements entity.Validatable interface.
func (p *Party) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidKind(p.Kind) {
		return apperror.NewValidation("invalid party kind").
			WithDetail("field", "kind").
			WithDetail("value", string(p.Kind))
	}

	if p.Email != nil && *p.Email != "" && !emailRE.MatchString(*p.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if p.Phone != nil && *p.Phone != "" && !phoneRE.MatchString(*p.Phone) {
		return apperror.NewValidation("invalid phone format").
			WithDetail("field", "phone")
	}

	return nil
}

// IsOrganization returns true for organization parties.
func (p *Party) IsOrganization() bool {
	return p.Kind == KindOrganization
}

func isValidKind(k Kind) bool {
	return k == KindPerson || k == KindOrganization
}
