package domain

// Payee is an opaque counterparty reference attached to transactions.
// Autocomplete and usage tracking are not ledger-core concerns.
type Payee struct {
	PayeeID string `json:"payeeID"`
	UserID  string `json:"userID"`
	Name    string `json:"name"`
	AuditFields
}
