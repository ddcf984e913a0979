package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/galexy/pennyledger/internal/apperrors"
	"github.com/galexy/pennyledger/internal/core/domain"
	portsrepo "github.com/galexy/pennyledger/internal/core/ports/repositories"
	portssvc "github.com/galexy/pennyledger/internal/core/ports/services"
	"github.com/galexy/pennyledger/internal/dto"
	"github.com/galexy/pennyledger/internal/middleware"
	"github.com/google/uuid"
)

// payeeService provides the payee store transactions reference by ID.
type payeeService struct {
	payeeRepo portsrepo.PayeeRepositoryFacade
}

// NewPayeeService creates a new payee service.
func NewPayeeService(payeeRepo portsrepo.PayeeRepositoryFacade) portssvc.PayeeSvcFacade {
	return &payeeService{payeeRepo: payeeRepo}
}

var _ portssvc.PayeeSvcFacade = (*payeeService)(nil)

// CreatePayee creates a new payee for the user.
func (s *payeeService) CreatePayee(ctx context.Context, req dto.CreatePayeeRequest, userID string) (*domain.Payee, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	payee := domain.Payee{
		PayeeID: uuid.NewString(),
		UserID:  userID,
		Name:    req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.payeeRepo.SavePayee(ctx, payee); err != nil {
		logger.Error("Failed to save payee", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save payee: %w", err)
	}
	return &payee, nil
}

// GetPayeeByID retrieves a payee, obscuring payees of other users.
func (s *payeeService) GetPayeeByID(ctx context.Context, payeeID string, userID string) (*domain.Payee, error) {
	payee, err := s.payeeRepo.FindPayeeByID(ctx, payeeID)
	if err != nil {
		return nil, err
	}
	if payee.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return payee, nil
}

// ListPayees retrieves all payees owned by the user.
func (s *payeeService) ListPayees(ctx context.Context, userID string) ([]domain.Payee, error) {
	return s.payeeRepo.ListPayeesByUser(ctx, userID)
}
