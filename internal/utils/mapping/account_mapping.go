package mapping

import (
	"github.com/galexy/pennyledger/internal/core/domain"
	"github.com/galexy/pennyledger/internal/models"
)

// ToModelAccount converts a domain account to its persistence model.
func ToModelAccount(a domain.Account) models.Account {
	return models.Account{
		AccountID:     a.AccountID,
		UserID:        a.UserID,
		Name:          a.Name,
		AccountType:   string(a.AccountType),
		CurrencyCode:  a.CurrencyCode,
		Description:   strPtrOrNil(a.Description),
		ClosedAt:      a.ClosedAt,
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}

// ToDomainAccount rehydrates a domain account from its persistence model.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:    m.AccountID,
		UserID:       m.UserID,
		Name:         m.Name,
		AccountType:  domain.AccountType(m.AccountType),
		CurrencyCode: m.CurrencyCode,
		Description:  strOrEmpty(m.Description),
		ClosedAt:     m.ClosedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}
