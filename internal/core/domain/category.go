package domain

// Category is an opaque spending-category reference. Splits point at
// categories by ID; hierarchy management lives outside the ledger core.
type Category struct {
	CategoryID string `json:"categoryID"`
	UserID     string `json:"userID"`
	Name       string `json:"name"`
	AuditFields
}
