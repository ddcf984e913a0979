package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the persistence model for the transactions table.
type Transaction struct {
	TransactionID         string          `db:"transaction_id"`
	AccountID             string          `db:"account_id"`
	Amount                decimal.Decimal `db:"amount"`
	EffectiveDate         time.Time       `db:"effective_date"`
	PostedDate            time.Time       `db:"posted_date"`
	Status                string          `db:"status"`
	Source                string          `db:"source"`
	PayeeID               *string         `db:"payee_id"`
	Memo                  *string         `db:"memo"`
	CheckNumber           *string         `db:"check_number"`
	MirrorOfTransactionID *string         `db:"mirror_of_transaction_id"`
	ImportID              *string         `db:"import_id"`
	Version               int64           `db:"version"`
	CreatedAt             time.Time       `db:"created_at"`
	CreatedBy             string          `db:"created_by"`
	LastUpdatedAt         time.Time       `db:"last_updated_at"`
	LastUpdatedBy         string          `db:"last_updated_by"`
}

// Split is the persistence model for the splits table. Position preserves the
// display order of splits within a transaction.
type Split struct {
	SplitID             string          `db:"split_id"`
	TransactionID       string          `db:"transaction_id"`
	Amount              decimal.Decimal `db:"amount"`
	CategoryID          *string         `db:"category_id"`
	TransferAccountID   *string         `db:"transfer_account_id"`
	Memo                *string         `db:"memo"`
	MirrorTransactionID *string         `db:"mirror_transaction_id"`
	Position            int             `db:"position"`
}
