package dto

import (
	"time"

	"github.com/galexy/pennyledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SplitRequest defines one split line in a create or replace request. Exactly
// one of categoryID or transferAccountID must be set; the domain enforces it.
type SplitRequest struct {
	Amount            decimal.Decimal `json:"amount" binding:"required,nonzerodecimal"`
	CategoryID        string          `json:"categoryID"`
	TransferAccountID string          `json:"transferAccountID"`
	Memo              string          `json:"memo"`
}

// CreateTransactionRequest defines the payload for creating a transaction.
type CreateTransactionRequest struct {
	AccountID     string                   `json:"accountID" binding:"required"`
	Amount        decimal.Decimal          `json:"amount" binding:"required"`
	Splits        []SplitRequest           `json:"splits" binding:"required,min=1,dive"`
	EffectiveDate time.Time                `json:"effectiveDate" binding:"required"`
	PostedDate    *time.Time               `json:"postedDate"`
	Source        domain.TransactionSource `json:"source" binding:"omitempty,oneof=MANUAL DOWNLOADED"`
	PayeeID       string                   `json:"payeeID"`
	Memo          string                   `json:"memo"`
	CheckNumber   string                   `json:"checkNumber"`
	ImportID      *string                  `json:"importID"`
}

// ReplaceSplitsRequest swaps the whole split set of a transaction. Amount is
// required only when the net flow changes.
type ReplaceSplitsRequest struct {
	Splits []SplitRequest   `json:"splits" binding:"required,min=1,dive"`
	Amount *decimal.Decimal `json:"amount"`
}

// UpdateTransactionRequest updates independent scalar fields of a transaction.
type UpdateTransactionRequest struct {
	Memo          *string    `json:"memo"`
	EffectiveDate *time.Time `json:"effectiveDate"`
	PostedDate    *time.Time `json:"postedDate"`
}

// MarkClearedRequest optionally sets the posted date while clearing.
type MarkClearedRequest struct {
	PostedDate *time.Time `json:"postedDate"`
}

// ListTransactionsParams holds pagination parameters for transaction listing.
type ListTransactionsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// SplitResponse defines the data returned for one split line.
type SplitResponse struct {
	SplitID             string          `json:"splitID"`
	Amount              decimal.Decimal `json:"amount"`
	CategoryID          string          `json:"categoryID,omitempty"`
	TransferAccountID   string          `json:"transferAccountID,omitempty"`
	Memo                string          `json:"memo,omitempty"`
	MirrorTransactionID string          `json:"mirrorTransactionID,omitempty"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID         string          `json:"transactionID"`
	AccountID             string          `json:"accountID"`
	Amount                decimal.Decimal `json:"amount"`
	Splits                []SplitResponse `json:"splits"`
	EffectiveDate         time.Time       `json:"effectiveDate"`
	PostedDate            time.Time       `json:"postedDate"`
	Status                string          `json:"status"`
	Source                string          `json:"source"`
	PayeeID               string          `json:"payeeID,omitempty"`
	Memo                  string          `json:"memo,omitempty"`
	CheckNumber           string          `json:"checkNumber,omitempty"`
	MirrorOfTransactionID *string         `json:"mirrorOfTransactionID,omitempty"`
	Version               int64           `json:"version"`
	CreatedAt             time.Time       `json:"createdAt"`
	LastUpdatedAt         time.Time       `json:"lastUpdatedAt"`
}

// MutationResponse wraps a transaction result with any advisory warnings the
// domain attached (e.g. edits to a reconciled transaction).
type MutationResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// ListTransactionsResponse is a paginated transaction listing.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToSplitResponse converts a domain.SplitLine to its response DTO.
func ToSplitResponse(s domain.SplitLine) SplitResponse {
	return SplitResponse{
		SplitID:             s.SplitID,
		Amount:              s.Amount,
		CategoryID:          s.CategoryID,
		TransferAccountID:   s.TransferAccountID,
		Memo:                s.Memo,
		MirrorTransactionID: s.MirrorTransactionID,
	}
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	splits := make([]SplitResponse, len(t.Splits))
	for i, s := range t.Splits {
		splits[i] = ToSplitResponse(s)
	}
	return TransactionResponse{
		TransactionID:         t.TransactionID,
		AccountID:             t.AccountID,
		Amount:                t.Amount,
		Splits:                splits,
		EffectiveDate:         t.EffectiveDate,
		PostedDate:            t.PostedDate,
		Status:                string(t.Status),
		Source:                string(t.Source),
		PayeeID:               t.PayeeID,
		Memo:                  t.Memo,
		CheckNumber:           t.CheckNumber,
		MirrorOfTransactionID: t.MirrorOfTransactionID,
		Version:               t.Version,
		CreatedAt:             t.CreatedAt,
		LastUpdatedAt:         t.LastUpdatedAt,
	}
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ToMutationResponse wraps a transaction and its warnings.
func ToMutationResponse(t *domain.Transaction, warnings []domain.Warning) MutationResponse {
	resp := MutationResponse{Transaction: ToTransactionResponse(t)}
	for _, w := range warnings {
		resp.Warnings = append(resp.Warnings, string(w))
	}
	return resp
}
