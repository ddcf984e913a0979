package models

import "time"

// Category is the persistence model for the categories table.
type Category struct {
	CategoryID    string    `db:"category_id"`
	UserID        string    `db:"user_id"`
	Name          string    `db:"name"`
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
}
