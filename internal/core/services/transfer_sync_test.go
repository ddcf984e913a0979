package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/galexy/pennyledger/internal/apperrors"
	"github.com/galexy/pennyledger/internal/core/domain"
	"github.com/galexy/pennyledger/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSyncSource(t *testing.T) *domain.Transaction {
	t.Helper()
	transfer, err := domain.NewTransferSplit(decimal.NewFromInt(-40), "acc-savings", "")
	require.NoError(t, err)
	txn, err := domain.NewTransaction(domain.NewTransactionParams{
		AccountID:     "acc-checking",
		Amount:        decimal.NewFromInt(-40),
		Splits:        []domain.SplitLine{transfer},
		EffectiveDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		CreatedBy:     "user-1",
		Now:           time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return txn
}

func TestPrepareMirrors_LinksSourceSplits(t *testing.T) {
	sync := services.NewTransferSynchronizer()
	source := newSyncSource(t)
	diff := &domain.SplitDiff{Added: source.TransferSplits()}

	mirrors, err := sync.PrepareMirrors(source, diff, "user-1", time.Now())
	require.NoError(t, err)
	require.Len(t, mirrors, 1)

	assert.Equal(t, "acc-savings", mirrors[0].AccountID)
	assert.Equal(t, mirrors[0].TransactionID, source.TransferSplits()[0].MirrorTransactionID)
}

func TestPrepareMirrors_RejectsMirrorSource(t *testing.T) {
	sync := services.NewTransferSynchronizer()
	source := newSyncSource(t)
	mirror, err := domain.NewMirrorTransaction(source, source.TransferSplits()[0], "user-1", time.Now())
	require.NoError(t, err)

	_, err = sync.PrepareMirrors(mirror, &domain.SplitDiff{}, "user-1", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrCannotEditMirrorDirectly)
}

func TestApply_MissingMirror_FailsClosed(t *testing.T) {
	ctx := context.Background()
	sync := services.NewTransferSynchronizer()
	source := newSyncSource(t)
	repo := new(MockTransactionRepository)

	repo.On("FindTransactionByID", ctx, "txn-gone").Return(nil, apperrors.ErrNotFound).Once()

	diff := &domain.SplitDiff{
		Changed: []domain.SplitChange{{
			Old: domain.SplitLine{TransferAccountID: "acc-savings", Amount: decimal.NewFromInt(-40), MirrorTransactionID: "txn-gone"},
			New: domain.SplitLine{TransferAccountID: "acc-savings", Amount: decimal.NewFromInt(-70), MirrorTransactionID: "txn-gone"},
		}},
	}
	_, err := sync.Apply(ctx, repo, source, nil, diff, "user-1", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrMirrorNotFound)
	repo.AssertNotCalled(t, "UpdateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func TestApply_InconsistentMirror_FailsClosed(t *testing.T) {
	ctx := context.Background()
	sync := services.NewTransferSynchronizer()
	source := newSyncSource(t)
	repo := new(MockTransactionRepository)

	// A mirror row whose split rows went missing must abort the unit of work
	// instead of being mutated as if it still had its single transfer split.
	sourceID := source.TransactionID
	hollow := &domain.Transaction{
		TransactionID:         "txn-hollow",
		AccountID:             "acc-savings",
		Amount:                decimal.NewFromInt(40),
		MirrorOfTransactionID: &sourceID,
		Version:               1,
	}
	repo.On("FindTransactionByID", ctx, "txn-hollow").Return(hollow, nil).Once()

	diff := &domain.SplitDiff{
		Changed: []domain.SplitChange{{
			Old: domain.SplitLine{TransferAccountID: "acc-savings", Amount: decimal.NewFromInt(-40), MirrorTransactionID: "txn-hollow"},
			New: domain.SplitLine{TransferAccountID: "acc-savings", Amount: decimal.NewFromInt(-70), MirrorTransactionID: "txn-hollow"},
		}},
	}
	_, err := sync.Apply(ctx, repo, source, nil, diff, "user-1", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	repo.AssertNotCalled(t, "UpdateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func TestPropagateDetails_SkipsUnlinkedSplits(t *testing.T) {
	ctx := context.Background()
	sync := services.NewTransferSynchronizer()
	source := newSyncSource(t)
	repo := new(MockTransactionRepository)

	// No split carries a mirror link, so nothing is loaded or written.
	events, err := sync.PropagateDetails(ctx, repo, source, true, true, "user-1", time.Now())
	require.NoError(t, err)
	assert.Empty(t, events)
	repo.AssertNotCalled(t, "FindTransactionByID", mock.Anything, mock.Anything)
}
