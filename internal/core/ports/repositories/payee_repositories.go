package repositories

import (
	"context"

	"github.com/galexy/pennyledger/internal/core/domain"
)

// PayeeRepositoryFacade defines persistence operations for payees.
type PayeeRepositoryFacade interface {
	// SavePayee persists a new payee.
	SavePayee(ctx context.Context, payee domain.Payee) error

	// FindPayeeByID retrieves a payee by its unique identifier.
	FindPayeeByID(ctx context.Context, payeeID string) (*domain.Payee, error)

	// ListPayeesByUser retrieves all payees owned by a user.
	ListPayeesByUser(ctx context.Context, userID string) ([]domain.Payee, error)
}
