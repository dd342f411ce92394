package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerkeeper/ledger_keeper_app/internal/apperrors"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
	portsrepo "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/repositories"
	portssvc "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/services"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/dto"
)

// categoryService manages category reference data.
type categoryService struct {
	BaseService
	categoryRepo portsrepo.CategoryRepositoryFacade
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categoryRepo portsrepo.CategoryRepositoryFacade) portssvc.CategorySvcFacade {
	return &categoryService{categoryRepo: categoryRepo}
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

// CreateCategory persists a new category.
func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, creatorUserID string) (*domain.Category, error) {
	now := time.Now().UTC()
	category := domain.Category{
		CategoryID: uuid.NewString(),
		Name:       req.Name,
		Kind:       domain.CategoryKind(req.Kind),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		return nil, err
	}
	return &category, nil
}

// GetCategoryByID retrieves a specific category by its ID.
func (s *categoryService) GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// ListCategories retrieves all categories.
func (s *categoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.ListCategories(ctx)
}

// DeleteCategory removes a category that no entry references.
func (s *categoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	err := s.categoryRepo.DeleteCategory(ctx, categoryID)
	if err != nil && errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.ErrCategoryNotFound
	}
	return err
}
