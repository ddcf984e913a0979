package models

import "time"

// Payee is the persistence model for the payees table.
type Payee struct {
	PayeeID       string    `db:"payee_id"`
	UserID        string    `db:"user_id"`
	Name          string    `db:"name"`
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
}
