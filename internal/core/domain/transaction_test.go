package domain_test

import (
	"testing"
	"time"

	"github.com/galexy/pennyledger/internal/apperrors"
	"github.com/galexy/pennyledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func mustCategorySplit(t *testing.T, amount int64, categoryID string) domain.SplitLine {
	t.Helper()
	s, err := domain.NewCategorySplit(decimal.NewFromInt(amount), categoryID, "")
	require.NoError(t, err)
	return s
}

func mustTransferSplit(t *testing.T, amount int64, transferAccountID string) domain.SplitLine {
	t.Helper()
	s, err := domain.NewTransferSplit(decimal.NewFromInt(amount), transferAccountID, "")
	require.NoError(t, err)
	return s
}

func newTestTransaction(t *testing.T, amount int64, splits ...domain.SplitLine) *domain.Transaction {
	t.Helper()
	txn, err := domain.NewTransaction(domain.NewTransactionParams{
		AccountID:     "acc-checking",
		Amount:        decimal.NewFromInt(amount),
		Splits:        splits,
		EffectiveDate: testNow,
		CreatedBy:     "user-1",
		Now:           testNow,
	})
	require.NoError(t, err)
	return txn
}

func TestNewTransaction(t *testing.T) {
	tests := []struct {
		name    string
		params  func(t *testing.T) domain.NewTransactionParams
		wantErr error
	}{
		{
			name: "single category split",
			params: func(t *testing.T) domain.NewTransactionParams {
				return domain.NewTransactionParams{
					AccountID:     "acc-checking",
					Amount:        decimal.NewFromInt(-120),
					Splits:        []domain.SplitLine{mustCategorySplit(t, -120, "cat-rent")},
					EffectiveDate: testNow,
					CreatedBy:     "user-1",
					Now:           testNow,
				}
			},
		},
		{
			name: "mixed category and transfer splits",
			params: func(t *testing.T) domain.NewTransactionParams {
				return domain.NewTransactionParams{
					AccountID: "acc-checking",
					Amount:    decimal.NewFromInt(-100),
					Splits: []domain.SplitLine{
						mustCategorySplit(t, -60, "cat-groceries"),
						mustTransferSplit(t, -40, "acc-savings"),
					},
					EffectiveDate: testNow,
					CreatedBy:     "user-1",
					Now:           testNow,
				}
			},
		},
		{
			name: "missing account",
			params: func(t *testing.T) domain.NewTransactionParams {
				return domain.NewTransactionParams{
					Amount:        decimal.NewFromInt(-10),
					Splits:        []domain.SplitLine{mustCategorySplit(t, -10, "cat-misc")},
					EffectiveDate: testNow,
					Now:           testNow,
				}
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "no splits",
			params: func(t *testing.T) domain.NewTransactionParams {
				return domain.NewTransactionParams{
					AccountID:     "acc-checking",
					Amount:        decimal.Zero,
					EffectiveDate: testNow,
					Now:           testNow,
				}
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "splits do not sum to amount",
			params: func(t *testing.T) domain.NewTransactionParams {
				return domain.NewTransactionParams{
					AccountID:     "acc-checking",
					Amount:        decimal.NewFromInt(-100),
					Splits:        []domain.SplitLine{mustCategorySplit(t, -90, "cat-rent")},
					EffectiveDate: testNow,
					Now:           testNow,
				}
			},
			wantErr: apperrors.ErrSplitSumMismatch,
		},
		{
			name: "self transfer",
			params: func(t *testing.T) domain.NewTransactionParams {
				return domain.NewTransactionParams{
					AccountID:     "acc-checking",
					Amount:        decimal.NewFromInt(-40),
					Splits:        []domain.SplitLine{mustTransferSplit(t, -40, "acc-checking")},
					EffectiveDate: testNow,
					Now:           testNow,
				}
			},
			wantErr: apperrors.ErrSelfTransfer,
		},
		{
			name: "duplicate transfer target",
			params: func(t *testing.T) domain.NewTransactionParams {
				return domain.NewTransactionParams{
					AccountID: "acc-checking",
					Amount:    decimal.NewFromInt(-80),
					Splits: []domain.SplitLine{
						mustTransferSplit(t, -50, "acc-savings"),
						mustTransferSplit(t, -30, "acc-savings"),
					},
					EffectiveDate: testNow,
					Now:           testNow,
				}
			},
			wantErr: apperrors.ErrCircularTransfer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := domain.NewTransaction(tt.params(t))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.StatusPending, txn.Status)
			assert.Equal(t, domain.SourceManual, txn.Source)
			assert.Equal(t, int64(1), txn.Version)
			assert.True(t, txn.PostedDate.Equal(txn.EffectiveDate))
			assert.False(t, txn.IsMirror())

			events := txn.Events()
			require.Len(t, events, 1)
			assert.Equal(t, domain.EventTransactionCreated, events[0].Kind)
		})
	}
}

func TestNewMirrorTransaction(t *testing.T) {
	source := newTestTransaction(t, -100,
		mustCategorySplit(t, -60, "cat-groceries"),
		mustTransferSplit(t, -40, "acc-savings"),
	)
	transferSplit := source.TransferSplits()[0]

	mirror, err := domain.NewMirrorTransaction(source, transferSplit, "user-1", testNow)
	require.NoError(t, err)

	assert.Equal(t, "acc-savings", mirror.AccountID)
	assert.True(t, mirror.Amount.Equal(decimal.NewFromInt(40)))
	assert.True(t, mirror.IsMirror())
	require.NotNil(t, mirror.MirrorOfTransactionID)
	assert.Equal(t, source.TransactionID, *mirror.MirrorOfTransactionID)

	require.Len(t, mirror.Splits, 1)
	assert.Equal(t, "acc-checking", mirror.Splits[0].TransferAccountID)
	assert.True(t, mirror.Splits[0].Amount.Equal(decimal.NewFromInt(40)))
	assert.NoError(t, mirror.Validate())

	events := mirror.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventMirrorCreated, events[0].Kind)
	assert.Equal(t, source.TransactionID, events[0].Detail["sourceTransactionID"])
}

func TestNewMirrorTransaction_RejectsMirrorSource(t *testing.T) {
	source := newTestTransaction(t, -40, mustTransferSplit(t, -40, "acc-savings"))
	mirror, err := domain.NewMirrorTransaction(source, source.TransferSplits()[0], "user-1", testNow)
	require.NoError(t, err)

	_, err = domain.NewMirrorTransaction(mirror, mirror.Splits[0], "user-1", testNow)
	assert.ErrorIs(t, err, apperrors.ErrCannotEditMirrorDirectly)
}

func TestReplaceSplits(t *testing.T) {
	t.Run("amount change on existing transfer target yields changed diff", func(t *testing.T) {
		txn := newTestTransaction(t, -100,
			mustCategorySplit(t, -60, "cat-groceries"),
			mustTransferSplit(t, -40, "acc-savings"),
		)
		require.NoError(t, txn.LinkMirror("acc-savings", "txn-mirror-1"))

		newAmount := decimal.NewFromInt(-130)
		diff, warnings, err := txn.ReplaceSplits([]domain.SplitLine{
			mustCategorySplit(t, -60, "cat-groceries"),
			mustTransferSplit(t, -70, "acc-savings"),
		}, &newAmount, "user-1", testNow)
		require.NoError(t, err)
		assert.Empty(t, warnings)

		require.Len(t, diff.Changed, 1)
		assert.Empty(t, diff.Added)
		assert.Empty(t, diff.Removed)
		assert.True(t, diff.Changed[0].New.Amount.Equal(decimal.NewFromInt(-70)))
		// Mirror link carried over so the synchronizer updates, not recreates.
		assert.Equal(t, "txn-mirror-1", diff.Changed[0].New.MirrorTransactionID)
		assert.True(t, txn.Amount.Equal(newAmount))
		assert.Equal(t, int64(2), txn.Version)
	})

	t.Run("removing a transfer split yields removed diff", func(t *testing.T) {
		txn := newTestTransaction(t, -100,
			mustCategorySplit(t, -60, "cat-groceries"),
			mustTransferSplit(t, -40, "acc-savings"),
		)
		require.NoError(t, txn.LinkMirror("acc-savings", "txn-mirror-1"))

		newAmount := decimal.NewFromInt(-60)
		diff, _, err := txn.ReplaceSplits([]domain.SplitLine{
			mustCategorySplit(t, -60, "cat-groceries"),
		}, &newAmount, "user-1", testNow)
		require.NoError(t, err)

		require.Len(t, diff.Removed, 1)
		assert.Equal(t, "txn-mirror-1", diff.Removed[0].MirrorTransactionID)
		assert.False(t, txn.HasTransferSplits())
	})

	t.Run("adding a transfer split yields added diff", func(t *testing.T) {
		txn := newTestTransaction(t, -60, mustCategorySplit(t, -60, "cat-groceries"))

		newAmount := decimal.NewFromInt(-100)
		diff, _, err := txn.ReplaceSplits([]domain.SplitLine{
			mustCategorySplit(t, -60, "cat-groceries"),
			mustTransferSplit(t, -40, "acc-savings"),
		}, &newAmount, "user-1", testNow)
		require.NoError(t, err)

		require.Len(t, diff.Added, 1)
		assert.Equal(t, "acc-savings", diff.Added[0].TransferAccountID)
	})

	t.Run("invalid new set leaves transaction untouched", func(t *testing.T) {
		txn := newTestTransaction(t, -60, mustCategorySplit(t, -60, "cat-groceries"))
		before := txn.Version

		_, _, err := txn.ReplaceSplits([]domain.SplitLine{
			mustCategorySplit(t, -10, "cat-misc"),
		}, nil, "user-1", testNow)
		assert.ErrorIs(t, err, apperrors.ErrSplitSumMismatch)
		assert.Equal(t, before, txn.Version)
		assert.True(t, txn.Amount.Equal(decimal.NewFromInt(-60)))
		require.Len(t, txn.Splits, 1)
		assert.Equal(t, "cat-groceries", txn.Splits[0].CategoryID)
	})

	t.Run("reconciled transaction edit succeeds with warning", func(t *testing.T) {
		txn := newTestTransaction(t, -60, mustCategorySplit(t, -60, "cat-groceries"))
		require.NoError(t, txn.MarkCleared(nil, "user-1", testNow))
		require.NoError(t, txn.MarkReconciled("user-1", testNow))

		_, warnings, err := txn.ReplaceSplits([]domain.SplitLine{
			mustCategorySplit(t, -60, "cat-rent"),
		}, nil, "user-1", testNow)
		require.NoError(t, err)
		assert.Contains(t, warnings, domain.WarningReconciledEdit)
		assert.Equal(t, domain.StatusReconciled, txn.Status)
	})

	t.Run("mirror rejects direct split replacement", func(t *testing.T) {
		source := newTestTransaction(t, -40, mustTransferSplit(t, -40, "acc-savings"))
		mirror, err := domain.NewMirrorTransaction(source, source.TransferSplits()[0], "user-1", testNow)
		require.NoError(t, err)

		_, _, err = mirror.ReplaceSplits([]domain.SplitLine{
			mustCategorySplit(t, 40, "cat-misc"),
		}, nil, "user-1", testNow)
		assert.ErrorIs(t, err, apperrors.ErrCannotEditMirrorDirectly)
	})
}

func TestStatusLifecycle(t *testing.T) {
	txn := newTestTransaction(t, -60, mustCategorySplit(t, -60, "cat-groceries"))

	// PENDING cannot be reconciled directly.
	assert.ErrorIs(t, txn.MarkReconciled("user-1", testNow), apperrors.ErrInvalidStatusTransition)

	clearDate := testNow.AddDate(0, 0, 2)
	require.NoError(t, txn.MarkCleared(&clearDate, "user-1", testNow))
	assert.Equal(t, domain.StatusCleared, txn.Status)
	assert.True(t, txn.PostedDate.Equal(clearDate))

	// Clearing twice is rejected; status never moves backward.
	assert.ErrorIs(t, txn.MarkCleared(nil, "user-1", testNow), apperrors.ErrInvalidStatusTransition)

	require.NoError(t, txn.MarkReconciled("user-1", testNow))
	assert.Equal(t, domain.StatusReconciled, txn.Status)
	assert.ErrorIs(t, txn.MarkReconciled("user-1", testNow), apperrors.ErrInvalidStatusTransition)

	kinds := make([]domain.EventKind, 0)
	for _, e := range txn.Events() {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []domain.EventKind{
		domain.EventTransactionCreated,
		domain.EventTransactionCleared,
		domain.EventTransactionReconciled,
	}, kinds)
}

func TestUpdateMemoAndDates(t *testing.T) {
	txn := newTestTransaction(t, -60, mustCategorySplit(t, -60, "cat-groceries"))

	// No-op memo update records nothing.
	assert.Nil(t, txn.UpdateMemo("", "user-1", testNow))
	assert.Equal(t, int64(1), txn.Version)

	warnings := txn.UpdateMemo("rent for june", "user-1", testNow)
	assert.Empty(t, warnings)
	assert.Equal(t, int64(2), txn.Version)

	newEffective := testNow.AddDate(0, 0, -3)
	warnings = txn.UpdateDates(&newEffective, nil, "user-1", testNow)
	assert.Empty(t, warnings)
	assert.True(t, txn.EffectiveDate.Equal(newEffective))
	assert.Equal(t, int64(3), txn.Version)

	// Same values again do not bump the version.
	assert.Nil(t, txn.UpdateDates(&newEffective, nil, "user-1", testNow))
	assert.Equal(t, int64(3), txn.Version)
}

func TestUpdateAmount(t *testing.T) {
	source := newTestTransaction(t, -40, mustTransferSplit(t, -40, "acc-savings"))
	mirror, err := domain.NewMirrorTransaction(source, source.TransferSplits()[0], "user-1", testNow)
	require.NoError(t, err)

	// Only mirrors accept lock-step amount updates.
	assert.ErrorIs(t, source.UpdateAmount(decimal.NewFromInt(70), "user-1", testNow), apperrors.ErrNotAMirror)

	require.NoError(t, mirror.UpdateAmount(decimal.NewFromInt(70), "user-1", testNow))
	assert.True(t, mirror.Amount.Equal(decimal.NewFromInt(70)))
	assert.True(t, mirror.Splits[0].Amount.Equal(decimal.NewFromInt(70)))
	assert.NoError(t, mirror.Validate())

	err = mirror.UpdateAmount(decimal.NewFromInt(-5), "user-1", testNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// A rehydrated mirror that lost its split rows fails instead of panicking.
	mirror.Splits = nil
	err = mirror.UpdateAmount(decimal.NewFromInt(80), "user-1", testNow)
	assert.ErrorIs(t, err, apperrors.ErrInternal)
}

func TestDrainEvents(t *testing.T) {
	txn := newTestTransaction(t, -60, mustCategorySplit(t, -60, "cat-groceries"))

	drained := txn.DrainEvents()
	require.Len(t, drained, 1)
	assert.Empty(t, txn.Events())
	assert.Empty(t, txn.DrainEvents())
}
