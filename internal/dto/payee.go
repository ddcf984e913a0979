package dto

import (
	"time"

	"github.com/galexy/pennyledger/internal/core/domain"
)

// CreatePayeeRequest defines the payload for creating a payee.
type CreatePayeeRequest struct {
	Name string `json:"name" binding:"required"`
}

// PayeeResponse defines the data returned for a payee.
type PayeeResponse struct {
	PayeeID   string    `json:"payeeID"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToPayeeResponse converts a domain.Payee to its response DTO.
func ToPayeeResponse(p *domain.Payee) PayeeResponse {
	return PayeeResponse{
		PayeeID:   p.PayeeID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}

// ToPayeeResponses converts a slice of domain payees.
func ToPayeeResponses(payees []domain.Payee) []PayeeResponse {
	responses := make([]PayeeResponse, len(payees))
	for i := range payees {
		responses[i] = ToPayeeResponse(&payees[i])
	}
	return responses
}
