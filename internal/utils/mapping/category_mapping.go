package mapping

import (
	"github.com/galexy/pennyledger/internal/core/domain"
	"github.com/galexy/pennyledger/internal/models"
)

// ToModelCategory converts a domain category to its persistence model.
func ToModelCategory(c domain.Category) models.Category {
	return models.Category{
		CategoryID:    c.CategoryID,
		UserID:        c.UserID,
		Name:          c.Name,
		CreatedAt:     c.CreatedAt,
		CreatedBy:     c.CreatedBy,
		LastUpdatedAt: c.LastUpdatedAt,
		LastUpdatedBy: c.LastUpdatedBy,
	}
}

// ToDomainCategory rehydrates a domain category from its persistence model.
func ToDomainCategory(m models.Category) domain.Category {
	return domain.Category{
		CategoryID: m.CategoryID,
		UserID:     m.UserID,
		Name:       m.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}
