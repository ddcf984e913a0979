package services

import (
	"context"

	"github.com/galexy/pennyledger/internal/core/domain"
	"github.com/galexy/pennyledger/internal/dto"
)

// TransactionSvcFacade defines the ledger operations exposed to handlers.
// Mutations that can touch a reconciled transaction also return the advisory
// warnings the domain attached.
type TransactionSvcFacade interface {
	// CreateTransaction records a transaction and, for transfer splits, derives
	// the paired mirror transactions in the target accounts within one unit of
	// work.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error)

	// GetTransactionByID retrieves a transaction owned by the user.
	GetTransactionByID(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error)

	// ListTransactionsByAccount retrieves a paginated per-account listing.
	ListTransactionsByAccount(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// ReplaceSplits atomically swaps the split set and keeps mirrors in sync.
	ReplaceSplits(ctx context.Context, transactionID string, req dto.ReplaceSplitsRequest, userID string) (*domain.Transaction, []domain.Warning, error)

	// UpdateTransaction updates memo and/or dates, propagating effective-date
	// and memo changes to mirrors.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, []domain.Warning, error)

	// MarkCleared advances the transaction lifecycle to CLEARED.
	MarkCleared(ctx context.Context, transactionID string, req dto.MarkClearedRequest, userID string) (*domain.Transaction, error)

	// MarkReconciled advances the transaction lifecycle to RECONCILED.
	MarkReconciled(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error)

	// DeleteTransaction hard-deletes a transaction, cascading to its mirrors.
	DeleteTransaction(ctx context.Context, transactionID string, userID string) error
}

// EventPublisher receives committed domain events for delivery. The ledger
// core only buffers events; everything past this interface is external.
type EventPublisher interface {
	Publish(ctx context.Context, events []domain.Event) error
}
