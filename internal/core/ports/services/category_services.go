package services

import (
	"context"

	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/dto"
)

// CategorySvcFacade defines operations for category reference data.
type CategorySvcFacade interface {
	// CreateCategory persists a new category.
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, creatorUserID string) (*domain.Category, error)

	// GetCategoryByID retrieves a specific category by its ID.
	GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)

	// ListCategories retrieves all categories.
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// DeleteCategory removes a category that no entry references.
	DeleteCategory(ctx context.Context, categoryID string) error
}
