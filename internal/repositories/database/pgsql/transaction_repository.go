package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/galexy/pennyledger/internal/apperrors"
	"github.com/galexy/pennyledger/internal/core/domain"
	portsrepo "github.com/galexy/pennyledger/internal/core/ports/repositories"
	"github.com/galexy/pennyledger/internal/models"
	"github.com/galexy/pennyledger/internal/utils/mapping"
	"github.com/galexy/pennyledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxTransactionRepository persists transactions and their splits. All
// statements go through db, which is the pool for standalone calls and the
// open pgx.Tx inside WithinTx.
type PgxTransactionRepository struct {
	BaseRepository
	db queryer
}

// newPgxTransactionRepository creates a new repository for transaction and split data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		db:             pool,
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryWithTx
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

// WithinTx runs fn against a copy of this repository bound to a single
// database transaction, committing on nil and rolling back on error.
func (r *PgxTransactionRepository) WithinTx(ctx context.Context, fn func(repo portsrepo.TransactionRepositoryFacade) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	txRepo := &PgxTransactionRepository{
		BaseRepository: r.BaseRepository,
		db:             tx,
	}
	if err := fn(txRepo); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SaveTransaction persists a new transaction together with its splits.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	modelTxn := mapping.ToModelTransaction(txn)
	txnQuery := `
		INSERT INTO transactions (
			transaction_id, account_id, amount, effective_date, posted_date,
			status, source, payee_id, memo, check_number,
			mirror_of_transaction_id, import_id, version,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.db.Exec(ctx, txnQuery,
		modelTxn.TransactionID,
		modelTxn.AccountID,
		modelTxn.Amount,
		modelTxn.EffectiveDate,
		modelTxn.PostedDate,
		modelTxn.Status,
		modelTxn.Source,
		modelTxn.PayeeID,
		modelTxn.Memo,
		modelTxn.CheckNumber,
		modelTxn.MirrorOfTransactionID,
		modelTxn.ImportID,
		modelTxn.Version,
		modelTxn.CreatedAt,
		modelTxn.CreatedBy,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert transaction "+modelTxn.TransactionID, err)
	}

	return r.insertSplits(ctx, txn)
}

// UpdateTransaction persists all mutable fields and replaces the split set.
// The write only lands when the stored version still equals expectedVersion.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction, expectedVersion int64) error {
	modelTxn := mapping.ToModelTransaction(txn)
	query := `
		UPDATE transactions
		SET amount = $2,
			effective_date = $3,
			posted_date = $4,
			status = $5,
			payee_id = $6,
			memo = $7,
			check_number = $8,
			import_id = $9,
			version = $10,
			last_updated_at = $11,
			last_updated_by = $12
		WHERE transaction_id = $1 AND version = $13;
	`
	tag, err := r.db.Exec(ctx, query,
		modelTxn.TransactionID,
		modelTxn.Amount,
		modelTxn.EffectiveDate,
		modelTxn.PostedDate,
		modelTxn.Status,
		modelTxn.PayeeID,
		modelTxn.Memo,
		modelTxn.CheckNumber,
		modelTxn.ImportID,
		modelTxn.Version,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
		expectedVersion,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update transaction "+modelTxn.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a stale version.
		var exists bool
		checkErr := r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM transactions WHERE transaction_id = $1)`,
			modelTxn.TransactionID,
		).Scan(&exists)
		if checkErr != nil {
			return apperrors.NewAppError(500, "failed to check transaction existence", checkErr)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return apperrors.ErrConcurrentModification
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM splits WHERE transaction_id = $1`, txn.TransactionID); err != nil {
		return apperrors.NewAppError(500, "failed to clear splits for transaction "+txn.TransactionID, err)
	}
	return r.insertSplits(ctx, txn)
}

// DeleteTransaction hard-deletes a transaction; splits go with it via the
// ON DELETE CASCADE foreign key.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete transaction "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// OrphanImportedRecords clears the transaction link on downloaded bank
// records without deleting the records themselves.
func (r *PgxTransactionRepository) OrphanImportedRecords(ctx context.Context, transactionID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE imported_records SET transaction_id = NULL WHERE transaction_id = $1`,
		transactionID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to orphan imported records for transaction "+transactionID, err)
	}
	return nil
}

const transactionColumns = `
	transaction_id, account_id, amount, effective_date, posted_date,
	status, source, payee_id, memo, check_number,
	mirror_of_transaction_id, import_id, version,
	created_at, created_by, last_updated_at, last_updated_by
`

// FindTransactionByID retrieves a transaction and its splits.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	modelTxn, err := r.scanTransaction(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction "+transactionID, err)
	}

	splits, err := r.findSplits(ctx, []string{transactionID})
	if err != nil {
		return nil, err
	}
	txn := mapping.ToDomainTransaction(modelTxn, splits[transactionID])
	return &txn, nil
}

// ListTransactionsByAccountID retrieves a paginated list of transactions for
// an account, newest effective date first, using token-based pagination. The
// cursor orders on (effective_date, transaction_id) descending.
func (r *PgxTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1`
	args := []any{accountID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (effective_date, transaction_id) < ($2, $3)`
		args = append(args, lastDate, lastID)
	}
	// Fetch one extra row to know whether another page exists.
	query += ` ORDER BY effective_date DESC, transaction_id DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list transactions for account "+accountID, err)
	}
	defer rows.Close()

	modelTxns := make([]models.Transaction, 0, limit+1)
	for rows.Next() {
		m, scanErr := r.scanTransaction(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row", scanErr)
		}
		modelTxns = append(modelTxns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed reading transaction rows", err)
	}

	var nextTokenVal *string
	if len(modelTxns) > limit {
		modelTxns = modelTxns[:limit]
		last := modelTxns[len(modelTxns)-1]
		token := pagination.EncodeToken(last.EffectiveDate, last.TransactionID)
		nextTokenVal = &token
	}

	ids := make([]string, len(modelTxns))
	for i, m := range modelTxns {
		ids[i] = m.TransactionID
	}
	splitsByTxn, err := r.findSplits(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	txns := make([]domain.Transaction, len(modelTxns))
	for i, m := range modelTxns {
		txns[i] = mapping.ToDomainTransaction(m, splitsByTxn[m.TransactionID])
	}
	return txns, nextTokenVal, nil
}

// insertSplits batch-inserts the full split set of a transaction.
func (r *PgxTransactionRepository) insertSplits(ctx context.Context, txn domain.Transaction) error {
	splitQuery := `
		INSERT INTO splits (
			split_id, transaction_id, amount, category_id,
			transfer_account_id, memo, mirror_transaction_id, position
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, s := range mapping.ToModelSplits(txn) {
		_, err := r.db.Exec(ctx, splitQuery,
			s.SplitID,
			s.TransactionID,
			s.Amount,
			s.CategoryID,
			s.TransferAccountID,
			s.Memo,
			s.MirrorTransactionID,
			s.Position,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert split "+s.SplitID, err)
		}
	}
	return nil
}

// findSplits loads the splits for a set of transactions, keyed by transaction
// and ordered by position within each.
func (r *PgxTransactionRepository) findSplits(ctx context.Context, transactionIDs []string) (map[string][]models.Split, error) {
	result := make(map[string][]models.Split, len(transactionIDs))
	if len(transactionIDs) == 0 {
		return result, nil
	}
	query := `
		SELECT split_id, transaction_id, amount, category_id,
			transfer_account_id, memo, mirror_transaction_id, position
		FROM splits
		WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, position;
	`
	rows, err := r.db.Query(ctx, query, transactionIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find splits", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Split
		if err := rows.Scan(
			&s.SplitID,
			&s.TransactionID,
			&s.Amount,
			&s.CategoryID,
			&s.TransferAccountID,
			&s.Memo,
			&s.MirrorTransactionID,
			&s.Position,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan split row", err)
		}
		result[s.TransactionID] = append(result[s.TransactionID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading split rows", err)
	}
	return result, nil
}

// scanTransaction reads one transaction row in transactionColumns order.
func (r *PgxTransactionRepository) scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.AccountID,
		&m.Amount,
		&m.EffectiveDate,
		&m.PostedDate,
		&m.Status,
		&m.Source,
		&m.PayeeID,
		&m.Memo,
		&m.CheckNumber,
		&m.MirrorOfTransactionID,
		&m.ImportID,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}
