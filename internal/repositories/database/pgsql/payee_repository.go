package pgsql

import (
	"context"
	"errors"

	"github.com/galexy/pennyledger/internal/apperrors"
	"github.com/galexy/pennyledger/internal/core/domain"
	portsrepo "github.com/galexy/pennyledger/internal/core/ports/repositories"
	"github.com/galexy/pennyledger/internal/models"
	"github.com/galexy/pennyledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPayeeRepository struct {
	BaseRepository
}

// newPgxPayeeRepository creates a new repository for payee data.
func newPgxPayeeRepository(pool *pgxpool.Pool) portsrepo.PayeeRepositoryFacade {
	return &PgxPayeeRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.PayeeRepositoryFacade = (*PgxPayeeRepository)(nil)

// SavePayee persists a new payee.
func (r *PgxPayeeRepository) SavePayee(ctx context.Context, payee domain.Payee) error {
	m := mapping.ToModelPayee(payee)
	query := `
		INSERT INTO payees (payee_id, user_id, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.PayeeID, m.UserID, m.Name, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert payee "+m.PayeeID, err)
	}
	return nil
}

// FindPayeeByID retrieves a payee by its unique identifier.
func (r *PgxPayeeRepository) FindPayeeByID(ctx context.Context, payeeID string) (*domain.Payee, error) {
	var m models.Payee
	err := r.Pool.QueryRow(ctx,
		`SELECT payee_id, user_id, name, created_at, created_by, last_updated_at, last_updated_by
		 FROM payees WHERE payee_id = $1`,
		payeeID,
	).Scan(&m.PayeeID, &m.UserID, &m.Name, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payee "+payeeID, err)
	}
	payee := mapping.ToDomainPayee(m)
	return &payee, nil
}

// ListPayeesByUser retrieves all payees owned by a user, by name.
func (r *PgxPayeeRepository) ListPayeesByUser(ctx context.Context, userID string) ([]domain.Payee, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT payee_id, user_id, name, created_at, created_by, last_updated_at, last_updated_by
		 FROM payees WHERE user_id = $1 ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list payees for user "+userID, err)
	}
	defer rows.Close()

	var payees []domain.Payee
	for rows.Next() {
		var m models.Payee
		if err := rows.Scan(&m.PayeeID, &m.UserID, &m.Name, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payee row", err)
		}
		payees = append(payees, mapping.ToDomainPayee(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading payee rows", err)
	}
	return payees, nil
}
