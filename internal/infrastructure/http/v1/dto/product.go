package dto

import (
	"fakturo/internal/core/entity"
	"fakturo/internal/core/types"
	"fakturo/internal/domain/product"
)

// --- Request DTOs ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code         string            `json:"code"`
	Name         string            `json:"name" binding:"required"`
	Kind         product.Kind      `json:"kind" binding:"required"`
	Unit         string            `json:"unit"`
	DefaultPrice types.Money       `json:"defaultPrice"`
	Description  *string           `json:"description"`
	Attributes   entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name, r.Kind)
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	p.DefaultPrice = r.DefaultPrice
	p.Description = r.Description
	p.Attributes = r.Attributes
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Code         string            `json:"code"`
	Name         string            `json:"name" binding:"required"`
	Kind         product.Kind      `json:"kind" binding:"required"`
	Unit         string            `json:"unit"`
	DefaultPrice types.Money       `json:"defaultPrice"`
	Description  *string           `json:"description"`
	Attributes   entity.Attributes `json:"attributes"`
	Version      int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Code = r.Code
	p.Name = r.Name
	p.Kind = r.Kind
	p.Unit = r.Unit
	p.DefaultPrice = r.DefaultPrice
	p.Description = r.Description
	p.Attributes = r.Attributes
	p.Version = r.Version
}

// --- Response DTOs ---

// ProductResponse is the response body for a product.
type ProductResponse struct {
	ID           string            `json:"id"`
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	Kind         product.Kind      `json:"kind"`
	Unit         string            `json:"unit"`
	DefaultPrice types.Money       `json:"defaultPrice"`
	Description  *string           `json:"description,omitempty"`
	DeletionMark bool              `json:"deletionMark"`
	Version      int               `json:"version"`
	Attributes   entity.Attributes `json:"attributes,omitempty"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:           p.ID.String(),
		Code:         p.Code,
		Name:         p.Name,
		Kind:         p.Kind,
		Unit:         p.Unit,
		DefaultPrice: p.DefaultPrice,
		Description:  p.Description,
		DeletionMark: p.DeletionMark,
		Version:      p.Version,
		Attributes:   p.Attributes,
	}
}
