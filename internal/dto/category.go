package dto

import (
	"time"

	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
)

// CreateCategoryRequest is the payload for creating a category.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=120"`
	Kind string `json:"kind" binding:"required,oneof=INFLOW OUTFLOW"`
}

// CategoryResponse is the wire representation of a category.
type CategoryResponse struct {
	CategoryID string    `json:"categoryID"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ToCategoryResponse converts a domain Category into its wire representation.
func ToCategoryResponse(c domain.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID: c.CategoryID,
		Name:       c.Name,
		Kind:       string(c.Kind),
		CreatedAt:  c.CreatedAt,
	}
}

// ToCategoryResponseSlice converts a slice of domain categories.
func ToCategoryResponseSlice(cs []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(cs))
	for i, c := range cs {
		out[i] = ToCategoryResponse(c)
	}
	return out
}
