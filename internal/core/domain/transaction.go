package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/galexy/pennyledger/internal/apperrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus indicates where a transaction sits in its lifecycle.
// Status only moves forward: PENDING -> CLEARED -> RECONCILED.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "PENDING"
	StatusCleared    TransactionStatus = "CLEARED"
	StatusReconciled TransactionStatus = "RECONCILED"
)

// TransactionSource indicates how a transaction entered the ledger.
type TransactionSource string

const (
	SourceManual     TransactionSource = "MANUAL"
	SourceDownloaded TransactionSource = "DOWNLOADED"
)

// Warning is a non-blocking advisory returned alongside a successful mutation.
type Warning string

// WarningReconciledEdit flags a structural edit applied to a reconciled
// transaction. The edit is never blocked, only annotated.
const WarningReconciledEdit Warning = "RECONCILED_EDIT"

// Transaction is the aggregate root of the ledger: an ordered collection of
// split lines against one owning account, with a net amount, two dates, a
// lifecycle status, and an optional link to a paired mirror transaction.
//
// A mirror transaction is the derived counterpart created in a transfer's
// destination account. Mirrors are owned by their source transaction: only the
// transfer synchronizer may touch their amount or splits.
type Transaction struct {
	TransactionID string            `json:"transactionID"`
	AccountID     string            `json:"accountID"` // Owning account; immutable after creation
	Amount        decimal.Decimal   `json:"amount"`    // Net flow to the owning account; positive = inflow
	Splits        []SplitLine       `json:"splits"`    // Insertion order is display order only
	EffectiveDate time.Time         `json:"effectiveDate"`
	PostedDate    time.Time         `json:"postedDate"`
	Status        TransactionStatus `json:"status"`
	Source        TransactionSource `json:"source"`
	PayeeID       string            `json:"payeeID"`
	Memo          string            `json:"memo"`
	CheckNumber   string            `json:"checkNumber"`
	// MirrorOfTransactionID is set only on mirror transactions and points back
	// at the source transaction the mirror was derived from.
	MirrorOfTransactionID *string `json:"mirrorOfTransactionID"`
	// ImportID links the transaction to a downloaded bank record, if any.
	ImportID *string `json:"importID"`
	// Version supports optimistic concurrency control at the repository.
	Version int64 `json:"version"`
	AuditFields

	events []Event
}

// NewTransactionParams carries the inputs to the transaction factory.
type NewTransactionParams struct {
	AccountID     string
	Amount        decimal.Decimal
	Splits        []SplitLine
	EffectiveDate time.Time
	PostedDate    time.Time
	Source        TransactionSource
	PayeeID       string
	Memo          string
	CheckNumber   string
	ImportID      *string
	CreatedBy     string
	Now           time.Time
}

// NewTransaction creates a transaction after validating the full invariant set
// against the initial splits. New transactions always start PENDING.
func NewTransaction(p NewTransactionParams) (*Transaction, error) {
	if p.AccountID == "" {
		return nil, fmt.Errorf("%w: owning account is required", apperrors.ErrValidation)
	}
	if err := validateSplits(p.AccountID, p.Amount, p.Splits); err != nil {
		return nil, err
	}

	posted := p.PostedDate
	if posted.IsZero() {
		posted = p.EffectiveDate
	}
	source := p.Source
	if source == "" {
		source = SourceManual
	}

	t := &Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     p.AccountID,
		Amount:        p.Amount,
		Splits:        append([]SplitLine(nil), p.Splits...),
		EffectiveDate: p.EffectiveDate,
		PostedDate:    posted,
		Status:        StatusPending,
		Source:        source,
		PayeeID:       p.PayeeID,
		Memo:          p.Memo,
		CheckNumber:   p.CheckNumber,
		ImportID:      p.ImportID,
		Version:       1,
		AuditFields: AuditFields{
			CreatedAt:     p.Now,
			CreatedBy:     p.CreatedBy,
			LastUpdatedAt: p.Now,
			LastUpdatedBy: p.CreatedBy,
		},
	}
	t.recordEvent(EventTransactionCreated, p.Now, nil)
	return t, nil
}

// NewMirrorTransaction derives the counterpart transaction for one transfer
// split of a source transaction. The mirror lives in the split's target
// account, carries the positive side of the transfer as its single split, and
// copies effective date and memo from the source. Its posted date starts equal
// to the effective date and is independently editable afterwards.
func NewMirrorTransaction(source *Transaction, split SplitLine, userID string, now time.Time) (*Transaction, error) {
	if source.IsMirror() {
		return nil, apperrors.ErrCannotEditMirrorDirectly
	}
	if !split.IsTransfer() || split.Amount.GreaterThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: mirror can only be derived from a negative transfer split", apperrors.ErrValidation)
	}

	amount := split.Amount.Neg()
	m := &Transaction{
		TransactionID:         uuid.NewString(),
		AccountID:             split.TransferAccountID,
		Amount:                amount,
		Splits:                []SplitLine{newMirrorSplit(amount, source.AccountID, split.Memo)},
		EffectiveDate:         source.EffectiveDate,
		PostedDate:            source.EffectiveDate,
		Status:                StatusPending,
		Source:                SourceManual,
		Memo:                  source.Memo,
		MirrorOfTransactionID: &source.TransactionID,
		Version:               1,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	m.recordEvent(EventMirrorCreated, now, map[string]string{
		"sourceTransactionID": source.TransactionID,
		"sourceAccountID":     source.AccountID,
	})
	return m, nil
}

// IsMirror reports whether this transaction was derived as a transfer counterpart.
func (t *Transaction) IsMirror() bool {
	return t.MirrorOfTransactionID != nil
}

// TransferSplits returns the transfer splits of the transaction, in order.
func (t *Transaction) TransferSplits() []SplitLine {
	var out []SplitLine
	for _, s := range t.Splits {
		if s.IsTransfer() {
			out = append(out, s)
		}
	}
	return out
}

// HasTransferSplits reports whether any split targets another account.
func (t *Transaction) HasTransferSplits() bool {
	for _, s := range t.Splits {
		if s.IsTransfer() {
			return true
		}
	}
	return false
}

// ReplaceSplits atomically swaps the whole split set, re-validating every
// invariant against the new set before anything is applied. If the net flow
// changes, newAmount carries the new transaction amount. The returned diff
// describes which transfer splits were added, removed, or changed amount; it
// drives mirror synchronization. Replacing splits on a reconciled transaction
// succeeds but returns WarningReconciledEdit.
func (t *Transaction) ReplaceSplits(newSplits []SplitLine, newAmount *decimal.Decimal, userID string, now time.Time) (*SplitDiff, []Warning, error) {
	if t.IsMirror() {
		return nil, nil, apperrors.ErrCannotEditMirrorDirectly
	}

	amount := t.Amount
	if newAmount != nil {
		amount = *newAmount
	}
	if err := validateSplits(t.AccountID, amount, newSplits); err != nil {
		return nil, nil, err
	}

	// Carry existing mirror links over to matching transfer splits so the
	// synchronizer updates mirrors instead of recreating them.
	linked := make([]SplitLine, len(newSplits))
	copy(linked, newSplits)
	for i, s := range linked {
		if !s.IsTransfer() {
			continue
		}
		if prev, ok := findTransferSplit(t.Splits, s.TransferAccountID); ok {
			linked[i] = s.withMirrorLink(prev.MirrorTransactionID)
		}
	}

	diff := diffSplits(t.Splits, linked)
	warnings := t.reconciledEditWarnings()

	t.Splits = linked
	t.Amount = amount
	t.Version++
	t.Touch(userID, now)
	t.recordEvent(EventSplitsUpdated, now, map[string]string{
		"added":    strconv.Itoa(diff.AddedCount),
		"removed":  strconv.Itoa(diff.RemovedCount),
		"modified": strconv.Itoa(diff.ModifiedCount),
	})
	return diff, warnings, nil
}

// UpdateMemo replaces the transaction memo. The caller is responsible for
// propagating the change to mirrors when the transaction owns transfer splits.
func (t *Transaction) UpdateMemo(memo string, userID string, now time.Time) []Warning {
	if memo == t.Memo {
		return nil
	}
	warnings := t.reconciledEditWarnings()
	t.Memo = memo
	t.Version++
	t.Touch(userID, now)
	t.recordEvent(EventTransactionUpdated, now, map[string]string{"field": "memo"})
	return warnings
}

// UpdateDates updates the effective and/or posted date. Effective-date changes
// on a transaction with transfer splits must be propagated to mirrors by the
// caller; posted-date changes never propagate.
func (t *Transaction) UpdateDates(effectiveDate, postedDate *time.Time, userID string, now time.Time) []Warning {
	changed := false
	if effectiveDate != nil && !effectiveDate.Equal(t.EffectiveDate) {
		t.EffectiveDate = *effectiveDate
		changed = true
	}
	if postedDate != nil && !postedDate.Equal(t.PostedDate) {
		t.PostedDate = *postedDate
		changed = true
	}
	if !changed {
		return nil
	}
	warnings := t.reconciledEditWarnings()
	t.Version++
	t.Touch(userID, now)
	t.recordEvent(EventTransactionUpdated, now, map[string]string{"field": "dates"})
	return warnings
}

// UpdateAmount keeps a mirror's amount and its single split in lock-step with
// the source transfer split. It is restricted to mirror transactions; the
// transfer synchronizer is the only intended caller.
func (t *Transaction) UpdateAmount(newAmount decimal.Decimal, userID string, now time.Time) error {
	if !t.IsMirror() {
		return apperrors.ErrNotAMirror
	}
	if newAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: mirror amount must be positive, got %s", apperrors.ErrValidation, newAmount.String())
	}
	if len(t.Splits) != 1 {
		return fmt.Errorf("%w: mirror %s must have exactly one split, has %d", apperrors.ErrInternal, t.TransactionID, len(t.Splits))
	}
	t.Amount = newAmount
	t.Splits[0].Amount = newAmount
	t.Version++
	t.Touch(userID, now)
	t.recordEvent(EventTransactionUpdated, now, map[string]string{"field": "amount"})
	return nil
}

// LinkMirror records, on the transfer split targeting the given account, the
// identifier of the mirror transaction derived from it.
func (t *Transaction) LinkMirror(transferAccountID, mirrorTransactionID string) error {
	for i, s := range t.Splits {
		if s.IsTransfer() && s.TransferAccountID == transferAccountID {
			t.Splits[i] = s.withMirrorLink(mirrorTransactionID)
			return nil
		}
	}
	return fmt.Errorf("%w: no transfer split targets account %s", apperrors.ErrInternal, transferAccountID)
}

// MarkCleared advances a PENDING transaction to CLEARED, optionally updating
// the posted date to the clearing date.
func (t *Transaction) MarkCleared(postedDate *time.Time, userID string, now time.Time) error {
	if t.Status != StatusPending {
		return fmt.Errorf("%w: cannot clear a %s transaction", apperrors.ErrInvalidStatusTransition, t.Status)
	}
	t.Status = StatusCleared
	if postedDate != nil {
		t.PostedDate = *postedDate
	}
	t.Version++
	t.Touch(userID, now)
	t.recordEvent(EventTransactionCleared, now, nil)
	return nil
}

// MarkReconciled advances a CLEARED transaction to RECONCILED. A pending
// transaction must be cleared first; no transition skips a state.
func (t *Transaction) MarkReconciled(userID string, now time.Time) error {
	if t.Status != StatusCleared {
		return fmt.Errorf("%w: cannot reconcile a %s transaction", apperrors.ErrInvalidStatusTransition, t.Status)
	}
	t.Status = StatusReconciled
	t.Version++
	t.Touch(userID, now)
	t.recordEvent(EventTransactionReconciled, now, nil)
	return nil
}

// Validate re-checks the full invariant set. Used after rehydration and in tests.
func (t *Transaction) Validate() error {
	if t.IsMirror() {
		return t.validateMirrorShape()
	}
	return validateSplits(t.AccountID, t.Amount, t.Splits)
}

// validateMirrorShape enforces the derived shape of a mirror: exactly one
// split, a positive transfer split pointing away from the mirror's account.
func (t *Transaction) validateMirrorShape() error {
	if len(t.Splits) != 1 {
		return fmt.Errorf("%w: mirror must have exactly one split, has %d", apperrors.ErrValidation, len(t.Splits))
	}
	s := t.Splits[0]
	if !s.IsTransfer() {
		return fmt.Errorf("%w: mirror split must be a transfer split", apperrors.ErrValidation)
	}
	if s.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: mirror split amount must be positive", apperrors.ErrValidation)
	}
	if s.TransferAccountID == t.AccountID {
		return fmt.Errorf("%w: account %s", apperrors.ErrSelfTransfer, t.AccountID)
	}
	if !s.Amount.Equal(t.Amount) {
		return fmt.Errorf("%w: mirror split %s, mirror amount %s", apperrors.ErrSplitSumMismatch, s.Amount.String(), t.Amount.String())
	}
	return nil
}

// RecordDeleted appends the deletion event for this transaction. Called by the
// application layer once removal is decided; mirrors get their own event kind.
func (t *Transaction) RecordDeleted(now time.Time) {
	kind := EventTransactionDeleted
	if t.IsMirror() {
		kind = EventMirrorDeleted
	}
	t.recordEvent(kind, now, nil)
}

// Events returns the buffered domain events without clearing them.
func (t *Transaction) Events() []Event {
	return append([]Event(nil), t.events...)
}

// DrainEvents returns the buffered events and clears the buffer. The
// application layer drains after a successful commit to hand events to the
// delivery collaborator exactly once.
func (t *Transaction) DrainEvents() []Event {
	out := t.events
	t.events = nil
	return out
}

func (t *Transaction) recordEvent(kind EventKind, at time.Time, detail map[string]string) {
	t.events = append(t.events, NewEvent(kind, t.TransactionID, t.AccountID, at, detail))
}

func (t *Transaction) reconciledEditWarnings() []Warning {
	if t.Status == StatusReconciled {
		return []Warning{WarningReconciledEdit}
	}
	return nil
}

// validateSplits enforces the structural and transfer-policy invariants of a
// non-mirror transaction against a candidate split set. Validation treats the
// set as unordered.
func validateSplits(accountID string, amount decimal.Decimal, splits []SplitLine) error {
	if len(splits) == 0 {
		return fmt.Errorf("%w: transaction requires at least one split", apperrors.ErrValidation)
	}

	sum := decimal.Zero
	targets := make(map[string]struct{})
	for _, s := range splits {
		if err := s.validateKind(); err != nil {
			return err
		}
		if s.IsTransfer() {
			if s.Amount.GreaterThanOrEqual(decimal.Zero) {
				return fmt.Errorf("%w: split %s has amount %s", apperrors.ErrNonNegativeTransferSplit, s.SplitID, s.Amount.String())
			}
			if s.TransferAccountID == accountID {
				return fmt.Errorf("%w: account %s", apperrors.ErrSelfTransfer, accountID)
			}
			// Two transfer splits aimed at the same account would bounce a
			// pair of mirrors back at each other.
			if _, dup := targets[s.TransferAccountID]; dup {
				return fmt.Errorf("%w: account %s targeted twice", apperrors.ErrCircularTransfer, s.TransferAccountID)
			}
			targets[s.TransferAccountID] = struct{}{}
		}
		sum = sum.Add(s.Amount)
	}

	if !sum.Equal(amount) {
		return fmt.Errorf("%w: splits total %s, transaction amount %s", apperrors.ErrSplitSumMismatch, sum.String(), amount.String())
	}
	return nil
}

func findTransferSplit(splits []SplitLine, transferAccountID string) (SplitLine, bool) {
	for _, s := range splits {
		if s.IsTransfer() && s.TransferAccountID == transferAccountID {
			return s, true
		}
	}
	return SplitLine{}, false
}
