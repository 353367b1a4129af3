package dto

import (
	"fakturo/internal/core/entity"
	"fakturo/internal/domain/party"
)

// --- Request DTOs ---

// CreatePartyRequest is the request body for creating a party.
type CreatePartyRequest struct {
	Code          string            `json:"code"`
	Name          string            `json:"name" binding:"required"`
	Kind          party.Kind        `json:"kind" binding:"required"`
	LegalName     *string           `json:"legalName"`
	TaxID         *string           `json:"taxId"`
	Address       *string           `json:"address"`
	Phone         *string           `json:"phone"`
	Email         *string           `json:"email"`
	ContactPerson *string           `json:"contactPerson"`
	Comment       *string           `json:"comment"`
	Attributes    entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePartyRequest) ToEntity() *party.Party {
	p := party.NewParty(r.Code, r.Name, r.Kind)
	p.LegalName = r.LegalName
	p.TaxID = r.TaxID
	p.Address = r.Address
	p.Phone = r.Phone
	p.Email = r.Email
	p.ContactPerson = r.ContactPerson
	p.Comment = r.Comment
	p.Attributes = r.Attributes
	return p
}

// UpdatePartyRequest is the request body for updating a party.
type UpdatePartyRequest struct {
	Code          string            `json:"code"`
	Name          string            `json:"name" binding:"required"`
	Kind          party.Kind        `json:"kind" binding:"required"`
	LegalName     *string           `json:"legalName"`
	TaxID         *string           `json:"taxId"`
	Address       *string           `json:"address"`
	Phone         *string           `json:"phone"`
	Email         *string           `json:"email"`
	ContactPerson *string           `json:"contactPerson"`
	Comment       *string           `json:"comment"`
	Attributes    entity.Attributes `json:"attributes"`
	Version       int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdatePartyRequest) ApplyTo(p *party.Party) {
	p.Code = r.Code
	p.Name = r.Name
	p.Kind = r.Kind
	p.LegalName = r.LegalName
	p.TaxID = r.TaxID
	p.Address = r.Address
	p.Phone = r.Phone
	p.Email = r.Email
	p.ContactPerson = r.ContactPerson
	p.Comment = r.Comment
	p.Attributes = r.Attributes
	p.Version = r.Version
}

// --- Response DTOs ---

// PartyResponse is the response body for a party.
type PartyResponse struct {
	ID            string            `json:"id"`
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	Kind          party.Kind        `json:"kind"`
	LegalName     *string           `json:"legalName,omitempty"`
	TaxID         *string           `json:"taxId,omitempty"`
	Address       *string           `json:"address,omitempty"`
	Phone         *string           `json:"phone,omitempty"`
	Email         *string           `json:"email,omitempty"`
	ContactPerson *string           `json:"contactPerson,omitempty"`
	Comment       *string           `json:"comment,omitempty"`
	DeletionMark  bool              `json:"deletionMark"`
	Version       int               `json:"version"`
	Attributes    entity.Attributes `json:"attributes,omitempty"`
}

// FromParty creates response DTO from domain entity.
func FromParty(p *party.Party) *PartyResponse {
	return &PartyResponse{
		ID:            p.ID.String(),
		Code:          p.Code,
		Name:          p.Name,
		Kind:          p.Kind,
		LegalName:     p.LegalName,
		TaxID:         p.TaxID,
		Address:       p.Address,
		Phone:         p.Phone,
		Email:         p.Email,
		ContactPerson: p.ContactPerson,
		Comment:       p.Comment,
		DeletionMark:  p.DeletionMark,
		Version:       p.Version,
		Attributes:    p.Attributes,
	}
}
