package repositories

import (
	"context"

	"github.com/galexy/pennyledger/internal/core/domain"
)

// TransactionReader defines read operations for ledger transactions.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction and its splits by identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByAccountID retrieves a paginated list of transactions for
	// an account using token-based pagination. It returns the transactions, a
	// token for the next page, and an error.
	ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// TransactionWriter defines write operations for ledger transactions.
type TransactionWriter interface {
	// SaveTransaction persists a new transaction and its splits.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction persists all mutable fields and the full split set.
	// The write only lands if the stored version equals expectedVersion;
	// otherwise apperrors.ErrConcurrentModification is returned.
	UpdateTransaction(ctx context.Context, txn domain.Transaction, expectedVersion int64) error

	// DeleteTransaction hard-deletes a transaction and its splits.
	DeleteTransaction(ctx context.Context, transactionID string) error

	// OrphanImportedRecords clears the transaction link on any downloaded bank
	// records pointing at the given transaction, without deleting the records.
	OrphanImportedRecords(ctx context.Context, transactionID string) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends the facade with an atomic unit-of-work
// runner. Every repository call made through the facade passed to fn shares
// one database transaction: either all writes land or none do.
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager

	// WithinTx runs fn inside a single database transaction, committing on nil
	// and rolling back on error.
	WithinTx(ctx context.Context, fn func(repo TransactionRepositoryFacade) error) error
}
