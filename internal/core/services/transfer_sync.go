package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/galexy/pennyledger/internal/apperrors"
	"github.com/galexy/pennyledger/internal/core/domain"
	portsrepo "github.com/galexy/pennyledger/internal/core/ports/repositories"
)

// TransferSynchronizer keeps mirror transactions in lock-step with the
// transfer splits of their source transaction: one mirror per active transfer
// split, with amount, effective date, and memo derived from the source.
//
// The synchronizer never opens a unit of work itself. Callers pass the
// transaction-scoped repository so mirror writes land in the same atomic unit
// as the source mutation. It also never accepts a mirror as the source of
// synchronization; mirrors are derived, not edited.
type TransferSynchronizer struct{}

// NewTransferSynchronizer creates a new TransferSynchronizer.
func NewTransferSynchronizer() *TransferSynchronizer {
	return &TransferSynchronizer{}
}

// PrepareMirrors derives a mirror transaction for every added transfer split
// in the diff and links each source split to its mirror. Nothing is persisted;
// the prepared mirrors are saved by Apply inside the unit of work.
func (s *TransferSynchronizer) PrepareMirrors(source *domain.Transaction, diff *domain.SplitDiff, userID string, now time.Time) ([]*domain.Transaction, error) {
	if source.IsMirror() {
		return nil, apperrors.ErrCannotEditMirrorDirectly
	}

	mirrors := make([]*domain.Transaction, 0, len(diff.Added))
	for _, split := range diff.Added {
		mirror, err := domain.NewMirrorTransaction(source, split, userID, now)
		if err != nil {
			return nil, err
		}
		if err := source.LinkMirror(split.TransferAccountID, mirror.TransactionID); err != nil {
			return nil, err
		}
		mirrors = append(mirrors, mirror)
	}
	return mirrors, nil
}

// Apply persists the mirror-side effects of a transfer-split diff: saves the
// prepared mirrors, brings changed mirror amounts back in lock-step, and
// deletes mirrors of removed splits. A removed mirror that was linked to a
// downloaded bank record orphans the record instead of cascading into it.
//
// Apply fails closed: a mirror that cannot be loaded surfaces
// apperrors.ErrMirrorNotFound and aborts the whole unit of work.
func (s *TransferSynchronizer) Apply(ctx context.Context, repo portsrepo.TransactionRepositoryFacade, source *domain.Transaction, prepared []*domain.Transaction, diff *domain.SplitDiff, userID string, now time.Time) ([]domain.Event, error) {
	if source.IsMirror() {
		return nil, apperrors.ErrCannotEditMirrorDirectly
	}

	var events []domain.Event

	for _, mirror := range prepared {
		if err := repo.SaveTransaction(ctx, *mirror); err != nil {
			return nil, fmt.Errorf("failed to save mirror transaction: %w", err)
		}
		events = append(events, mirror.DrainEvents()...)
	}

	for _, change := range diff.Changed {
		mirror, err := s.loadMirror(ctx, repo, change.New.MirrorTransactionID)
		if err != nil {
			return nil, err
		}
		expected := mirror.Version
		if err := mirror.UpdateAmount(change.New.Amount.Neg(), userID, now); err != nil {
			return nil, err
		}
		if err := repo.UpdateTransaction(ctx, *mirror, expected); err != nil {
			return nil, fmt.Errorf("failed to update mirror amount: %w", err)
		}
		events = append(events, mirror.DrainEvents()...)
	}

	for _, removed := range diff.Removed {
		deleted, err := s.deleteMirror(ctx, repo, removed.MirrorTransactionID, source.TransactionID, now)
		if err != nil {
			return nil, err
		}
		events = append(events, deleted...)
	}

	return events, nil
}

// PropagateDetails pushes effective-date and memo changes from the source to
// every linked mirror. Posted dates are never touched; the mirror's posted
// date stays independently editable.
func (s *TransferSynchronizer) PropagateDetails(ctx context.Context, repo portsrepo.TransactionRepositoryFacade, source *domain.Transaction, propagateDate, propagateMemo bool, userID string, now time.Time) ([]domain.Event, error) {
	if source.IsMirror() {
		return nil, apperrors.ErrCannotEditMirrorDirectly
	}
	if !propagateDate && !propagateMemo {
		return nil, nil
	}

	var events []domain.Event
	for _, split := range source.TransferSplits() {
		if split.MirrorTransactionID == "" {
			continue
		}
		mirror, err := s.loadMirror(ctx, repo, split.MirrorTransactionID)
		if err != nil {
			return nil, err
		}
		expected := mirror.Version
		if propagateDate {
			effective := source.EffectiveDate
			mirror.UpdateDates(&effective, nil, userID, now)
		}
		if propagateMemo {
			mirror.UpdateMemo(source.Memo, userID, now)
		}
		if mirror.Version == expected {
			continue // nothing actually changed
		}
		if err := repo.UpdateTransaction(ctx, *mirror, expected); err != nil {
			return nil, fmt.Errorf("failed to propagate to mirror: %w", err)
		}
		events = append(events, mirror.DrainEvents()...)
	}
	return events, nil
}

// DeleteMirrors removes every mirror derived from the source's transfer
// splits. Used by the delete cascade: the source and its mirrors leave the
// ledger in the same unit of work.
func (s *TransferSynchronizer) DeleteMirrors(ctx context.Context, repo portsrepo.TransactionRepositoryFacade, source *domain.Transaction, now time.Time) ([]domain.Event, error) {
	if source.IsMirror() {
		return nil, apperrors.ErrCannotEditMirrorDirectly
	}

	var events []domain.Event
	for _, split := range source.TransferSplits() {
		if split.MirrorTransactionID == "" {
			continue
		}
		deleted, err := s.deleteMirror(ctx, repo, split.MirrorTransactionID, source.TransactionID, now)
		if err != nil {
			return nil, err
		}
		events = append(events, deleted...)
	}
	return events, nil
}

func (s *TransferSynchronizer) loadMirror(ctx context.Context, repo portsrepo.TransactionRepositoryFacade, mirrorTransactionID string) (*domain.Transaction, error) {
	if mirrorTransactionID == "" {
		return nil, apperrors.ErrMirrorNotFound
	}
	mirror, err := repo.FindTransactionByID(ctx, mirrorTransactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrMirrorNotFound, mirrorTransactionID)
		}
		return nil, err
	}
	if !mirror.IsMirror() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotAMirror, mirrorTransactionID)
	}
	// A stored mirror that lost its shape (e.g. a split row gone missing) must
	// abort the unit of work, not flow into mutations assuming a single split.
	if err := mirror.Validate(); err != nil {
		return nil, fmt.Errorf("%w: mirror %s is inconsistent: %v", apperrors.ErrInternal, mirrorTransactionID, err)
	}
	return mirror, nil
}

func (s *TransferSynchronizer) deleteMirror(ctx context.Context, repo portsrepo.TransactionRepositoryFacade, mirrorTransactionID, sourceTransactionID string, now time.Time) ([]domain.Event, error) {
	mirror, err := s.loadMirror(ctx, repo, mirrorTransactionID)
	if err != nil {
		return nil, err
	}

	// A mirror linked to a downloaded bank record orphans the record; the
	// record itself survives the cascade.
	if mirror.ImportID != nil {
		if err := repo.OrphanImportedRecords(ctx, mirror.TransactionID); err != nil {
			return nil, fmt.Errorf("failed to orphan imported records: %w", err)
		}
	}
	if err := repo.DeleteTransaction(ctx, mirror.TransactionID); err != nil {
		return nil, fmt.Errorf("failed to delete mirror transaction: %w", err)
	}

	event := domain.NewEvent(domain.EventMirrorDeleted, mirror.TransactionID, mirror.AccountID, now, map[string]string{
		"sourceTransactionID": sourceTransactionID,
	})
	return []domain.Event{event}, nil
}
