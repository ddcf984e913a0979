package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/galexy/pennyledger/internal/apperrors"
	"github.com/galexy/pennyledger/internal/core/domain"
	portsrepo "github.com/galexy/pennyledger/internal/core/ports/repositories"
	portssvc "github.com/galexy/pennyledger/internal/core/ports/services"
	"github.com/galexy/pennyledger/internal/dto"
	"github.com/galexy/pennyledger/internal/middleware"
	"github.com/google/uuid"
)

// categoryService provides the flat category store splits reference by ID.
type categoryService struct {
	categoryRepo portsrepo.CategoryRepositoryFacade
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo portsrepo.CategoryRepositoryFacade) portssvc.CategorySvcFacade {
	return &categoryService{categoryRepo: categoryRepo}
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

// CreateCategory creates a new category for the user.
func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, userID string) (*domain.Category, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	category := domain.Category{
		CategoryID: uuid.NewString(),
		UserID:     userID,
		Name:       req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		logger.Error("Failed to save category", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	return &category, nil
}

// GetCategoryByID retrieves a category, obscuring categories of other users.
func (s *categoryService) GetCategoryByID(ctx context.Context, categoryID string, userID string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return category, nil
}

// ListCategories retrieves all categories owned by the user.
func (s *categoryService) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	return s.categoryRepo.ListCategoriesByUser(ctx, userID)
}
