package domain

import "time"

// AccountType classifies a personal-finance account.
type AccountType string

const (
	Checking   AccountType = "CHECKING"
	Savings    AccountType = "SAVINGS"
	CreditCard AccountType = "CREDIT_CARD"
	Cash       AccountType = "CASH"
	Investment AccountType = "INVESTMENT"
)

// Account represents a financial account owned by a user. Balances are not
// stored here; they are a read-side aggregation over committed transactions.
type Account struct {
	AccountID    string      `json:"accountID"`
	UserID       string      `json:"userID"`
	Name         string      `json:"name"`
	AccountType  AccountType `json:"accountType"`
	CurrencyCode string      `json:"currencyCode"`
	Description  string      `json:"description"`
	ClosedAt     *time.Time  `json:"closedAt"` // Nil while the account is open
	AuditFields
}

// IsOpen reports whether the account can still receive transactions.
// Transfer-split validation requires an open target account.
func (a *Account) IsOpen() bool {
	return a.ClosedAt == nil
}
