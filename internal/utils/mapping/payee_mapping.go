package mapping

import (
	"github.com/galexy/pennyledger/internal/core/domain"
	"github.com/galexy/pennyledger/internal/models"
)

// ToModelPayee converts a domain payee to its persistence model.
func ToModelPayee(p domain.Payee) models.Payee {
	return models.Payee{
		PayeeID:       p.PayeeID,
		UserID:        p.UserID,
		Name:          p.Name,
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
		LastUpdatedAt: p.LastUpdatedAt,
		LastUpdatedBy: p.LastUpdatedBy,
	}
}

// ToDomainPayee rehydrates a domain payee from its persistence model.
func ToDomainPayee(m models.Payee) domain.Payee {
	return domain.Payee{
		PayeeID: m.PayeeID,
		UserID:  m.UserID,
		Name:    m.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}
