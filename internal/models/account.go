package models

import "time"

// Account is the persistence model for the accounts table.
type Account struct {
	AccountID     string     `db:"account_id"`
	UserID        string     `db:"user_id"`
	Name          string     `db:"name"`
	AccountType   string     `db:"account_type"`
	CurrencyCode  string     `db:"currency_code"`
	Description   *string    `db:"description"`
	ClosedAt      *time.Time `db:"closed_at"`
	CreatedAt     time.Time  `db:"created_at"`
	CreatedBy     string     `db:"created_by"`
	LastUpdatedAt time.Time  `db:"last_updated_at"`
	LastUpdatedBy string     `db:"last_updated_by"`
}
