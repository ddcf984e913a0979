package services

import (
	portssvc "github.com/galexy/pennyledger/internal/core/ports/services"
	"github.com/galexy/pennyledger/internal/repositories/database/pgsql"
)

// NewServicesContainer wires every service against the repository container.
func NewServicesContainer(repos *pgsql.RepositoryContainer, authCfg AuthConfig, publisher portssvc.EventPublisher) *portssvc.ServicesContainer {
	accountSvc := NewAccountService(repos.Account)
	return &portssvc.ServicesContainer{
		Transaction: NewTransactionService(repos.Transaction, accountSvc, NewTransferSynchronizer(), publisher),
		Account:     accountSvc,
		Category:    NewCategoryService(repos.Category),
		Payee:       NewPayeeService(repos.Payee),
		Auth:        NewAuthService(repos.User, authCfg),
	}
}
