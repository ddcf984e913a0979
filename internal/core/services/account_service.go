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
	"github.com/shopspring/decimal"
)

// accountService provides account lifecycle operations and the open-account
// checks consumed by transfer validation.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount creates a new open account for the user.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		UserID:       userID,
		Name:         req.Name,
		AccountType:  req.AccountType,
		CurrencyCode: req.CurrencyCode,
		Description:  req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID))
	return &account, nil
}

// GetAccountByID retrieves an account, obscuring accounts of other users.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts keyed by identifier. Accounts
// belonging to other users are omitted from the result.
func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string, userID string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, err
	}
	for id, account := range accounts {
		if account.UserID != userID {
			delete(accounts, id)
		}
	}
	return accounts, nil
}

// ListAccounts retrieves all accounts owned by the user.
func (s *accountService) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	return s.accountRepo.ListAccountsByUser(ctx, userID)
}

// CloseAccount marks an account closed. Closed accounts reject new transfer
// splits but keep their transaction history.
func (s *accountService) CloseAccount(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.GetAccountByID(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	if !account.IsOpen() {
		return nil, fmt.Errorf("%w: account %s is already closed", apperrors.ErrConflict, accountID)
	}

	now := time.Now().UTC()
	account.ClosedAt = &now
	account.Touch(userID, now)
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to close account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to close account: %w", err)
	}

	logger.Info("Account closed", slog.String("account_id", accountID))
	return account, nil
}

// GetAccountBalance computes the read-side balance of an account as the sum of
// committed transaction amounts. The ledger core never stores balances.
func (s *accountService) GetAccountBalance(ctx context.Context, accountID string, userID string) (decimal.Decimal, error) {
	if _, err := s.GetAccountByID(ctx, accountID, userID); err != nil {
		return decimal.Zero, err
	}
	return s.accountRepo.SumCommittedAmount(ctx, accountID)
}
