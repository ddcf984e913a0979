package pgsql

import (
	portsrepo "github.com/galexy/pennyledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryContainer bundles the concrete repositories the service layer
// wires against.
type RepositoryContainer struct {
	Transaction portsrepo.TransactionRepositoryWithTx
	Account     portsrepo.AccountRepositoryFacade
	Category    portsrepo.CategoryRepositoryFacade
	Payee       portsrepo.PayeeRepositoryFacade
	User        portsrepo.UserRepositoryFacade
}

// NewRepositoryContainer builds every repository over the shared pool.
func NewRepositoryContainer(dbPool *pgxpool.Pool) *RepositoryContainer {
	return &RepositoryContainer{
		Transaction: newPgxTransactionRepository(dbPool),
		Account:     newPgxAccountRepository(dbPool),
		Category:    newPgxCategoryRepository(dbPool),
		Payee:       newPgxPayeeRepository(dbPool),
		User:        newPgxUserRepository(dbPool),
	}
}
