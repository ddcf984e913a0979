package domain

import (
	"fmt"

	"github.com/galexy/pennyledger/internal/apperrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SplitLine is one signed monetary entry within a Transaction. It is tagged to
// exactly one of a category or a transfer target account, never both. A split
// with a transfer target is a "transfer split"; all others are category splits.
//
// SplitLine is a value object: it is never mutated in place. Editing a split
// means replacing it in the parent transaction's split collection.
type SplitLine struct {
	SplitID           string          `json:"splitID"`
	Amount            decimal.Decimal `json:"amount"`            // Signed; positive = inflow to the owning account
	CategoryID        string          `json:"categoryID"`        // Set on category splits only
	TransferAccountID string          `json:"transferAccountID"` // Set on transfer splits only
	Memo              string          `json:"memo"`
	// MirrorTransactionID links a source-side transfer split to the mirror
	// transaction derived from it. Maintained by the transfer synchronizer.
	MirrorTransactionID string `json:"mirrorTransactionID"`
}

// NewCategorySplit constructs a split tagged to a spending category.
func NewCategorySplit(amount decimal.Decimal, categoryID string, memo string) (SplitLine, error) {
	if categoryID == "" {
		return SplitLine{}, fmt.Errorf("%w: category reference is required", apperrors.ErrInvalidSplitKind)
	}
	return SplitLine{
		SplitID:    uuid.NewString(),
		Amount:     amount,
		CategoryID: categoryID,
		Memo:       memo,
	}, nil
}

// NewTransferSplit constructs a split that moves money to another account.
// Transfer splits are outgoing only, so the amount must be strictly negative.
func NewTransferSplit(amount decimal.Decimal, transferAccountID string, memo string) (SplitLine, error) {
	if transferAccountID == "" {
		return SplitLine{}, fmt.Errorf("%w: transfer account reference is required", apperrors.ErrInvalidSplitKind)
	}
	if amount.GreaterThanOrEqual(decimal.Zero) {
		return SplitLine{}, fmt.Errorf("%w: got %s", apperrors.ErrNonNegativeTransferSplit, amount.String())
	}
	return SplitLine{
		SplitID:           uuid.NewString(),
		Amount:            amount,
		TransferAccountID: transferAccountID,
		Memo:              memo,
	}, nil
}

// newMirrorSplit constructs the single positive transfer split carried by a
// mirror transaction, pointing back at the source account. Only the mirror
// factory may create positive transfer splits.
func newMirrorSplit(amount decimal.Decimal, sourceAccountID string, memo string) SplitLine {
	return SplitLine{
		SplitID:           uuid.NewString(),
		Amount:            amount,
		TransferAccountID: sourceAccountID,
		Memo:              memo,
	}
}

// IsTransfer reports whether the split targets another account.
func (s SplitLine) IsTransfer() bool {
	return s.TransferAccountID != ""
}

// withMirrorLink returns a copy of the split linked to the given mirror transaction.
func (s SplitLine) withMirrorLink(mirrorTransactionID string) SplitLine {
	s.MirrorTransactionID = mirrorTransactionID
	return s
}

// validateKind re-checks the exactly-one-target rule. Constructors enforce it,
// but splits can also arrive rehydrated from persistence.
func (s SplitLine) validateKind() error {
	hasCategory := s.CategoryID != ""
	hasTransfer := s.TransferAccountID != ""
	if hasCategory == hasTransfer {
		return fmt.Errorf("%w: split %s", apperrors.ErrInvalidSplitKind, s.SplitID)
	}
	return nil
}
