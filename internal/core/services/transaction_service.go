package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/galexy/pennyledger/internal/apperrors"
	"github.com/galexy/pennyledger/internal/core/domain"
	portsrepo "github.com/galexy/pennyledger/internal/core/ports/repositories"
	portssvc "github.com/galexy/pennyledger/internal/core/ports/services"
	"github.com/galexy/pennyledger/internal/dto"
	"github.com/galexy/pennyledger/internal/middleware"
)

// transactionService orchestrates ledger operations: it loads aggregates,
// invokes domain mutations, keeps mirrors synchronized through the
// TransferSynchronizer, and hands buffered events to the publisher only after
// the unit of work commits.
type transactionService struct {
	txnRepo    portsrepo.TransactionRepositoryWithTx
	accountSvc portssvc.AccountSvcFacade
	sync       *TransferSynchronizer
	publisher  portssvc.EventPublisher
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(txnRepo portsrepo.TransactionRepositoryWithTx, accountSvc portssvc.AccountSvcFacade, sync *TransferSynchronizer, publisher portssvc.EventPublisher) portssvc.TransactionSvcFacade {
	return &transactionService{
		txnRepo:    txnRepo,
		accountSvc: accountSvc,
		sync:       sync,
		publisher:  publisher,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// CreateTransaction records a transaction and derives mirror transactions for
// its transfer splits, all within one atomic unit of work.
func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	owningAccount, err := s.accountSvc.GetAccountByID(ctx, req.AccountID, userID)
	if err != nil {
		return nil, err
	}
	if !owningAccount.IsOpen() {
		return nil, fmt.Errorf("%w: account %s is closed", apperrors.ErrValidation, req.AccountID)
	}

	splits, err := buildSplits(req.Splits)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	posted := time.Time{}
	if req.PostedDate != nil {
		posted = *req.PostedDate
	}
	txn, err := domain.NewTransaction(domain.NewTransactionParams{
		AccountID:     req.AccountID,
		Amount:        req.Amount,
		Splits:        splits,
		EffectiveDate: req.EffectiveDate,
		PostedDate:    posted,
		Source:        req.Source,
		PayeeID:       req.PayeeID,
		Memo:          req.Memo,
		CheckNumber:   req.CheckNumber,
		ImportID:      req.ImportID,
		CreatedBy:     userID,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	// Transfer targets must exist, belong to the user, and be open before any
	// write is attempted.
	diff := &domain.SplitDiff{Added: txn.TransferSplits()}
	if err := s.validateTransferTargets(ctx, diff.Added, userID); err != nil {
		return nil, err
	}

	mirrors, err := s.sync.PrepareMirrors(txn, diff, userID, now)
	if err != nil {
		return nil, err
	}

	var events []domain.Event
	err = s.txnRepo.WithinTx(ctx, func(repo portsrepo.TransactionRepositoryFacade) error {
		if err := repo.SaveTransaction(ctx, *txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		for _, mirror := range mirrors {
			if err := repo.SaveTransaction(ctx, *mirror); err != nil {
				return fmt.Errorf("failed to save mirror transaction: %w", err)
			}
			events = append(events, mirror.DrainEvents()...)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to create transaction", slog.String("error", err.Error()), slog.String("account_id", req.AccountID))
		return nil, err
	}

	s.publish(ctx, append(txn.DrainEvents(), events...))
	logger.Info("Transaction created", slog.String("transaction_id", txn.TransactionID), slog.Int("mirrors", len(mirrors)))
	return txn, nil
}

// GetTransactionByID retrieves a transaction after verifying the requesting
// user owns its account.
func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	return s.loadOwnedTransaction(ctx, transactionID, userID)
}

// ListTransactionsByAccount retrieves a paginated listing for one account.
func (s *transactionService) ListTransactionsByAccount(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountSvc.GetAccountByID(ctx, accountID, userID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	txns, nextToken, err := s.txnRepo.ListTransactionsByAccountID(ctx, accountID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

// ReplaceSplits swaps the whole split set of a transaction and synchronizes
// mirrors per the resulting transfer-split diff, atomically.
func (s *transactionService) ReplaceSplits(ctx context.Context, transactionID string, req dto.ReplaceSplitsRequest, userID string) (*domain.Transaction, []domain.Warning, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.loadOwnedTransaction(ctx, transactionID, userID)
	if err != nil {
		return nil, nil, err
	}

	newSplits, err := buildSplits(req.Splits)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	expectedVersion := txn.Version
	diff, warnings, err := txn.ReplaceSplits(newSplits, req.Amount, userID, now)
	if err != nil {
		return nil, nil, err
	}

	if err := s.validateTransferTargets(ctx, diff.Added, userID); err != nil {
		return nil, nil, err
	}

	mirrors, err := s.sync.PrepareMirrors(txn, diff, userID, now)
	if err != nil {
		return nil, nil, err
	}

	var events []domain.Event
	err = s.txnRepo.WithinTx(ctx, func(repo portsrepo.TransactionRepositoryFacade) error {
		if err := repo.UpdateTransaction(ctx, *txn, expectedVersion); err != nil {
			return err
		}
		syncEvents, err := s.sync.Apply(ctx, repo, txn, mirrors, diff, userID, now)
		if err != nil {
			return err
		}
		events = syncEvents
		return nil
	})
	if err != nil {
		logger.Error("Failed to replace splits", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, nil, err
	}

	s.publish(ctx, append(txn.DrainEvents(), events...))
	logger.Info("Splits replaced", slog.String("transaction_id", transactionID),
		slog.Int("mirrors_added", len(diff.Added)), slog.Int("mirrors_removed", len(diff.Removed)), slog.Int("mirrors_changed", len(diff.Changed)))
	return txn, warnings, nil
}

// UpdateTransaction updates memo and/or dates. Memo and effective-date changes
// propagate to mirrors; posted-date changes never do.
func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, []domain.Warning, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.loadOwnedTransaction(ctx, transactionID, userID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	expectedVersion := txn.Version

	memoChanged := req.Memo != nil && *req.Memo != txn.Memo
	dateChanged := req.EffectiveDate != nil && !req.EffectiveDate.Equal(txn.EffectiveDate)

	var warnings []domain.Warning
	if req.Memo != nil {
		warnings = append(warnings, txn.UpdateMemo(*req.Memo, userID, now)...)
	}
	if req.EffectiveDate != nil || req.PostedDate != nil {
		warnings = append(warnings, txn.UpdateDates(req.EffectiveDate, req.PostedDate, userID, now)...)
	}
	warnings = dedupeWarnings(warnings)

	if txn.Version == expectedVersion {
		return txn, nil, nil // nothing changed
	}

	propagate := !txn.IsMirror() && txn.HasTransferSplits() && (memoChanged || dateChanged)

	var events []domain.Event
	err = s.txnRepo.WithinTx(ctx, func(repo portsrepo.TransactionRepositoryFacade) error {
		if err := repo.UpdateTransaction(ctx, *txn, expectedVersion); err != nil {
			return err
		}
		if propagate {
			syncEvents, err := s.sync.PropagateDetails(ctx, repo, txn, dateChanged, memoChanged, userID, now)
			if err != nil {
				return err
			}
			events = syncEvents
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to update transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, nil, err
	}

	s.publish(ctx, append(txn.DrainEvents(), events...))
	return txn, warnings, nil
}

// MarkCleared advances a pending transaction to cleared.
func (s *transactionService) MarkCleared(ctx context.Context, transactionID string, req dto.MarkClearedRequest, userID string) (*domain.Transaction, error) {
	txn, err := s.loadOwnedTransaction(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expectedVersion := txn.Version
	if err := txn.MarkCleared(req.PostedDate, userID, now); err != nil {
		return nil, err
	}
	// The repository rewrites the split rows alongside the transaction row, so
	// even a status-only update needs the unit of work.
	err = s.txnRepo.WithinTx(ctx, func(repo portsrepo.TransactionRepositoryFacade) error {
		return repo.UpdateTransaction(ctx, *txn, expectedVersion)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, txn.DrainEvents())
	return txn, nil
}

// MarkReconciled advances a cleared transaction to reconciled.
func (s *transactionService) MarkReconciled(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	txn, err := s.loadOwnedTransaction(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expectedVersion := txn.Version
	if err := txn.MarkReconciled(userID, now); err != nil {
		return nil, err
	}
	err = s.txnRepo.WithinTx(ctx, func(repo portsrepo.TransactionRepositoryFacade) error {
		return repo.UpdateTransaction(ctx, *txn, expectedVersion)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, txn.DrainEvents())
	return txn, nil
}

// DeleteTransaction hard-deletes a transaction. Mirrors derived from its
// transfer splits are deleted in the same unit of work; downloaded-record
// links are orphaned rather than cascaded into.
func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.loadOwnedTransaction(ctx, transactionID, userID)
	if err != nil {
		return err
	}
	if txn.IsMirror() {
		return apperrors.ErrCannotEditMirrorDirectly
	}

	now := time.Now().UTC()
	var events []domain.Event
	err = s.txnRepo.WithinTx(ctx, func(repo portsrepo.TransactionRepositoryFacade) error {
		mirrorEvents, err := s.sync.DeleteMirrors(ctx, repo, txn, now)
		if err != nil {
			return err
		}
		events = mirrorEvents
		if txn.ImportID != nil {
			if err := repo.OrphanImportedRecords(ctx, txn.TransactionID); err != nil {
				return fmt.Errorf("failed to orphan imported records: %w", err)
			}
		}
		return repo.DeleteTransaction(ctx, txn.TransactionID)
	})
	if err != nil {
		logger.Error("Failed to delete transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return err
	}

	txn.RecordDeleted(now)
	s.publish(ctx, append(txn.DrainEvents(), events...))
	logger.Info("Transaction deleted", slog.String("transaction_id", transactionID), slog.Int("mirrors_deleted", len(events)))
	return nil
}

// loadOwnedTransaction loads a transaction and verifies the requesting user
// owns its account, obscuring existence otherwise.
func (s *transactionService) loadOwnedTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.accountSvc.GetAccountByID(ctx, txn.AccountID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrForbidden) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return txn, nil
}

// validateTransferTargets checks that every added transfer split targets an
// existing, open account belonging to the user.
func (s *transactionService) validateTransferTargets(ctx context.Context, added []domain.SplitLine, userID string) error {
	if len(added) == 0 {
		return nil
	}
	targetIDs := make([]string, 0, len(added))
	for _, split := range added {
		targetIDs = append(targetIDs, split.TransferAccountID)
	}

	accounts, err := s.accountSvc.GetAccountsByIDs(ctx, targetIDs, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch transfer target accounts: %w", err)
	}
	for _, id := range targetIDs {
		account, found := accounts[id]
		if !found {
			return fmt.Errorf("%w: account %s", apperrors.ErrInvalidTransferTarget, id)
		}
		if !account.IsOpen() {
			return fmt.Errorf("%w: account %s is closed", apperrors.ErrInvalidTransferTarget, id)
		}
	}
	return nil
}

func (s *transactionService) publish(ctx context.Context, events []domain.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events); err != nil {
		// Delivery failure after commit is the collaborator's problem to
		// retry; the committed mutation stands.
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to publish domain events", slog.String("error", err.Error()), slog.Int("count", len(events)))
	}
}

// buildSplits converts split requests into domain split lines through the
// tagged constructors, surfacing kind and sign violations.
func buildSplits(reqs []dto.SplitRequest) ([]domain.SplitLine, error) {
	splits := make([]domain.SplitLine, 0, len(reqs))
	for _, r := range reqs {
		var (
			split domain.SplitLine
			err   error
		)
		switch {
		case r.TransferAccountID != "" && r.CategoryID != "":
			return nil, fmt.Errorf("%w: split has both a category and a transfer target", apperrors.ErrInvalidSplitKind)
		case r.TransferAccountID != "":
			split, err = domain.NewTransferSplit(r.Amount, r.TransferAccountID, r.Memo)
		default:
			split, err = domain.NewCategorySplit(r.Amount, r.CategoryID, r.Memo)
		}
		if err != nil {
			return nil, err
		}
		splits = append(splits, split)
	}
	return splits, nil
}

func dedupeWarnings(warnings []domain.Warning) []domain.Warning {
	seen := make(map[domain.Warning]struct{}, len(warnings))
	out := warnings[:0]
	for _, w := range warnings {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
