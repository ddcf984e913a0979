package repositories

import (
	"context"

	"github.com/galexy/pennyledger/internal/core/domain"
)

// CategoryRepositoryFacade defines persistence operations for categories.
type CategoryRepositoryFacade interface {
	// SaveCategory persists a new category.
	SaveCategory(ctx context.Context, category domain.Category) error

	// FindCategoryByID retrieves a category by its unique identifier.
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)

	// ListCategoriesByUser retrieves all categories owned by a user.
	ListCategoriesByUser(ctx context.Context, userID string) ([]domain.Category, error)
}
