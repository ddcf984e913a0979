package services

import (
	"context"

	"github.com/galexy/pennyledger/internal/core/domain"
	"github.com/galexy/pennyledger/internal/dto"
)

// CategorySvcFacade defines category operations exposed to handlers.
type CategorySvcFacade interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, userID string) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, categoryID string, userID string) (*domain.Category, error)
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)
}

// PayeeSvcFacade defines payee operations exposed to handlers.
type PayeeSvcFacade interface {
	CreatePayee(ctx context.Context, req dto.CreatePayeeRequest, userID string) (*domain.Payee, error)
	GetPayeeByID(ctx context.Context, payeeID string, userID string) (*domain.Payee, error)
	ListPayees(ctx context.Context, userID string) ([]domain.Payee, error)
}

// AuthSvcFacade defines registration and login.
type AuthSvcFacade interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (string, *domain.User, error)
}

// ServicesContainer bundles every service facade for handler registration.
type ServicesContainer struct {
	Transaction TransactionSvcFacade
	Account     AccountSvcFacade
	Category    CategorySvcFacade
	Payee       PayeeSvcFacade
	Auth        AuthSvcFacade
}
