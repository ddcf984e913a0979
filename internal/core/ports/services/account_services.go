package services

import (
	"context"

	"github.com/galexy/pennyledger/internal/core/domain"
	"github.com/galexy/pennyledger/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountSvcFacade defines account operations exposed to handlers and to the
// ledger core (transfer-target validation).
type AccountSvcFacade interface {
	// CreateAccount creates a new account for the user.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// GetAccountByID retrieves an account owned by the user.
	GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts keyed by identifier,
	// regardless of row order.
	GetAccountsByIDs(ctx context.Context, accountIDs []string, userID string) (map[string]domain.Account, error)

	// ListAccounts retrieves all accounts owned by the user.
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)

	// CloseAccount marks an account closed; closed accounts reject new
	// transfer splits.
	CloseAccount(ctx context.Context, accountID string, userID string) (*domain.Account, error)

	// GetAccountBalance computes the read-side balance over committed
	// transactions.
	GetAccountBalance(ctx context.Context, accountID string, userID string) (decimal.Decimal, error)
}
