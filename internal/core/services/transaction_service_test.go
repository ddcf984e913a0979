package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/galexy/pennyledger/internal/apperrors"
	"github.com/galexy/pennyledger/internal/core/domain"
	portsrepo "github.com/galexy/pennyledger/internal/core/ports/repositories"
	portssvc "github.com/galexy/pennyledger/internal/core/ports/services"
	"github.com/galexy/pennyledger/internal/core/services"
	"github.com/galexy/pennyledger/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TransactionRepository ---

type MockTransactionRepository struct {
	mock.Mock

	// withinTxCalls counts unit-of-work entries so tests can assert a write
	// ran inside one.
	withinTxCalls int
}

var _ portsrepo.TransactionRepositoryWithTx = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		v := args.Get(1).(string)
		token = &v
	}
	return args.Get(0).([]domain.Transaction), token, args.Error(2)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction, expectedVersion int64) error {
	args := m.Called(ctx, txn, expectedVersion)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func (m *MockTransactionRepository) OrphanImportedRecords(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func (m *MockTransactionRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, nil
}

func (m *MockTransactionRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return nil
}

func (m *MockTransactionRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	return nil
}

// WithinTx runs fn against the mock itself so per-call expectations cover the
// unit of work too.
func (m *MockTransactionRepository) WithinTx(ctx context.Context, fn func(portsrepo.TransactionRepositoryFacade) error) error {
	m.withinTxCalls++
	return fn(m)
}

// --- Mock AccountService ---

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, accountIDs []string, userID string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) CloseAccount(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountBalance(ctx context.Context, accountID string, userID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock EventPublisher ---

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events []domain.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// --- Suite ---

type TransactionServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockTransactionRepository
	mockAccountSvc *MockAccountService
	mockPublisher  *MockEventPublisher
	service        portssvc.TransactionSvcFacade

	userID          string
	checkingAccount domain.Account
	savingsAccount  domain.Account
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockTransactionRepository)
	s.mockAccountSvc = new(MockAccountService)
	s.mockPublisher = new(MockEventPublisher)
	s.service = services.NewTransactionService(s.mockRepo, s.mockAccountSvc, services.NewTransferSynchronizer(), s.mockPublisher)

	s.userID = "user-1"
	s.checkingAccount = domain.Account{
		AccountID:   "acc-checking",
		UserID:      s.userID,
		Name:        "Checking",
		AccountType: domain.Checking,
	}
	s.savingsAccount = domain.Account{
		AccountID:   "acc-savings",
		UserID:      s.userID,
		Name:        "Savings",
		AccountType: domain.Savings,
	}
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_WithTransferSplit_CreatesMirror() {
	ctx := context.Background()

	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-checking", s.userID).Return(&s.checkingAccount, nil).Once()
	s.mockAccountSvc.On("GetAccountsByIDs", ctx, []string{"acc-savings"}, s.userID).
		Return(map[string]domain.Account{"acc-savings": s.savingsAccount}, nil).Once()

	var saved []domain.Transaction
	s.mockRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) {
			saved = append(saved, args.Get(1).(domain.Transaction))
		}).Return(nil).Twice()
	s.mockPublisher.On("Publish", ctx, mock.Anything).Return(nil).Once()

	txn, err := s.service.CreateTransaction(ctx, dto.CreateTransactionRequest{
		AccountID: "acc-checking",
		Amount:    decimal.NewFromInt(-100),
		Splits: []dto.SplitRequest{
			{Amount: decimal.NewFromInt(-60), CategoryID: "cat-groceries"},
			{Amount: decimal.NewFromInt(-40), TransferAccountID: "acc-savings"},
		},
		EffectiveDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}, s.userID)

	s.Require().NoError(err)
	s.Require().Len(saved, 2)

	source, mirror := saved[0], saved[1]
	s.Equal(txn.TransactionID, source.TransactionID)
	s.True(mirror.IsMirror())
	s.Equal("acc-savings", mirror.AccountID)
	s.True(mirror.Amount.Equal(decimal.NewFromInt(40)))
	s.Equal(txn.TransactionID, *mirror.MirrorOfTransactionID)

	// Source transfer split links to the derived mirror.
	transferSplits := txn.TransferSplits()
	s.Require().Len(transferSplits, 1)
	s.Equal(mirror.TransactionID, transferSplits[0].MirrorTransactionID)

	s.mockRepo.AssertExpectations(s.T())
	s.mockAccountSvc.AssertExpectations(s.T())
	s.mockPublisher.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_ClosedTransferTarget_Fails() {
	ctx := context.Background()
	closedAt := time.Now()
	closedSavings := s.savingsAccount
	closedSavings.ClosedAt = &closedAt

	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-checking", s.userID).Return(&s.checkingAccount, nil).Once()
	s.mockAccountSvc.On("GetAccountsByIDs", ctx, []string{"acc-savings"}, s.userID).
		Return(map[string]domain.Account{"acc-savings": closedSavings}, nil).Once()

	_, err := s.service.CreateTransaction(ctx, dto.CreateTransactionRequest{
		AccountID: "acc-checking",
		Amount:    decimal.NewFromInt(-40),
		Splits: []dto.SplitRequest{
			{Amount: decimal.NewFromInt(-40), TransferAccountID: "acc-savings"},
		},
		EffectiveDate: time.Now(),
	}, s.userID)

	s.ErrorIs(err, apperrors.ErrInvalidTransferTarget)
	s.mockRepo.AssertNotCalled(s.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (s *TransactionServiceTestSuite) TestCreateTransaction_SelfTransfer_Fails() {
	ctx := context.Background()
	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-checking", s.userID).Return(&s.checkingAccount, nil).Once()

	_, err := s.service.CreateTransaction(ctx, dto.CreateTransactionRequest{
		AccountID: "acc-checking",
		Amount:    decimal.NewFromInt(-40),
		Splits: []dto.SplitRequest{
			{Amount: decimal.NewFromInt(-40), TransferAccountID: "acc-checking"},
		},
		EffectiveDate: time.Now(),
	}, s.userID)

	s.ErrorIs(err, apperrors.ErrSelfTransfer)
	s.mockRepo.AssertNotCalled(s.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

// sourceWithMirror builds a persisted-looking source transaction holding one
// category split and one transfer split linked to a mirror, plus the mirror.
func (s *TransactionServiceTestSuite) sourceWithMirror() (*domain.Transaction, *domain.Transaction) {
	effective := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	source := &domain.Transaction{
		TransactionID: "txn-source",
		AccountID:     "acc-checking",
		Amount:        decimal.NewFromInt(-100),
		Splits: []domain.SplitLine{
			{SplitID: "spl-1", Amount: decimal.NewFromInt(-60), CategoryID: "cat-groceries"},
			{SplitID: "spl-2", Amount: decimal.NewFromInt(-40), TransferAccountID: "acc-savings", MirrorTransactionID: "txn-mirror"},
		},
		EffectiveDate: effective,
		PostedDate:    effective,
		Status:        domain.StatusPending,
		Source:        domain.SourceManual,
		Version:       2,
	}
	sourceID := source.TransactionID
	mirror := &domain.Transaction{
		TransactionID: "txn-mirror",
		AccountID:     "acc-savings",
		Amount:        decimal.NewFromInt(40),
		Splits: []domain.SplitLine{
			{SplitID: "spl-m", Amount: decimal.NewFromInt(40), TransferAccountID: "acc-checking"},
		},
		EffectiveDate:         effective,
		PostedDate:            effective,
		Status:                domain.StatusPending,
		Source:                domain.SourceManual,
		MirrorOfTransactionID: &sourceID,
		Version:               1,
	}
	return source, mirror
}

func (s *TransactionServiceTestSuite) TestReplaceSplits_TransferAmountChange_UpdatesMirror() {
	ctx := context.Background()
	source, mirror := s.sourceWithMirror()

	s.mockRepo.On("FindTransactionByID", ctx, "txn-source").Return(source, nil).Once()
	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-checking", s.userID).Return(&s.checkingAccount, nil).Once()
	s.mockRepo.On("FindTransactionByID", ctx, "txn-mirror").Return(mirror, nil).Once()

	// Source updated at its pre-mutation version, mirror at its own.
	s.mockRepo.On("UpdateTransaction", ctx, mock.AnythingOfType("domain.Transaction"), int64(2)).Return(nil).Once()
	var updatedMirror domain.Transaction
	s.mockRepo.On("UpdateTransaction", ctx, mock.AnythingOfType("domain.Transaction"), int64(1)).
		Run(func(args mock.Arguments) {
			updatedMirror = args.Get(1).(domain.Transaction)
		}).Return(nil).Once()
	s.mockPublisher.On("Publish", ctx, mock.Anything).Return(nil).Once()

	newAmount := decimal.NewFromInt(-130)
	txn, warnings, err := s.service.ReplaceSplits(ctx, "txn-source", dto.ReplaceSplitsRequest{
		Splits: []dto.SplitRequest{
			{Amount: decimal.NewFromInt(-60), CategoryID: "cat-groceries"},
			{Amount: decimal.NewFromInt(-70), TransferAccountID: "acc-savings"},
		},
		Amount: &newAmount,
	}, s.userID)

	s.Require().NoError(err)
	s.Empty(warnings)
	s.True(txn.Amount.Equal(newAmount))
	s.True(updatedMirror.Amount.Equal(decimal.NewFromInt(70)))
	s.True(updatedMirror.Splits[0].Amount.Equal(decimal.NewFromInt(70)))

	s.mockRepo.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestReplaceSplits_RemovedTransfer_DeletesMirror() {
	ctx := context.Background()
	source, mirror := s.sourceWithMirror()
	importID := "imp-1"
	mirror.ImportID = &importID

	s.mockRepo.On("FindTransactionByID", ctx, "txn-source").Return(source, nil).Once()
	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-checking", s.userID).Return(&s.checkingAccount, nil).Once()
	s.mockRepo.On("UpdateTransaction", ctx, mock.AnythingOfType("domain.Transaction"), int64(2)).Return(nil).Once()
	s.mockRepo.On("FindTransactionByID", ctx, "txn-mirror").Return(mirror, nil).Once()
	s.mockRepo.On("OrphanImportedRecords", ctx, "txn-mirror").Return(nil).Once()
	s.mockRepo.On("DeleteTransaction", ctx, "txn-mirror").Return(nil).Once()
	s.mockPublisher.On("Publish", ctx, mock.Anything).Return(nil).Once()

	newAmount := decimal.NewFromInt(-60)
	txn, _, err := s.service.ReplaceSplits(ctx, "txn-source", dto.ReplaceSplitsRequest{
		Splits: []dto.SplitRequest{
			{Amount: decimal.NewFromInt(-60), CategoryID: "cat-groceries"},
		},
		Amount: &newAmount,
	}, s.userID)

	s.Require().NoError(err)
	s.False(txn.HasTransferSplits())
	s.mockRepo.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_MemoChange_PropagatesToMirror() {
	ctx := context.Background()
	source, mirror := s.sourceWithMirror()

	s.mockRepo.On("FindTransactionByID", ctx, "txn-source").Return(source, nil).Once()
	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-checking", s.userID).Return(&s.checkingAccount, nil).Once()
	s.mockRepo.On("FindTransactionByID", ctx, "txn-mirror").Return(mirror, nil).Once()
	s.mockRepo.On("UpdateTransaction", ctx, mock.AnythingOfType("domain.Transaction"), int64(2)).Return(nil).Once()
	var updatedMirror domain.Transaction
	s.mockRepo.On("UpdateTransaction", ctx, mock.AnythingOfType("domain.Transaction"), int64(1)).
		Run(func(args mock.Arguments) {
			updatedMirror = args.Get(1).(domain.Transaction)
		}).Return(nil).Once()
	s.mockPublisher.On("Publish", ctx, mock.Anything).Return(nil).Once()

	memo := "moving to savings"
	_, warnings, err := s.service.UpdateTransaction(ctx, "txn-source", dto.UpdateTransactionRequest{Memo: &memo}, s.userID)

	s.Require().NoError(err)
	s.Empty(warnings)
	s.Equal(memo, updatedMirror.Memo)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_PostedDateOnly_DoesNotPropagate() {
	ctx := context.Background()
	source, _ := s.sourceWithMirror()

	s.mockRepo.On("FindTransactionByID", ctx, "txn-source").Return(source, nil).Once()
	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-checking", s.userID).Return(&s.checkingAccount, nil).Once()
	s.mockRepo.On("UpdateTransaction", ctx, mock.AnythingOfType("domain.Transaction"), int64(2)).Return(nil).Once()
	s.mockPublisher.On("Publish", ctx, mock.Anything).Return(nil).Once()

	posted := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	_, _, err := s.service.UpdateTransaction(ctx, "txn-source", dto.UpdateTransactionRequest{PostedDate: &posted}, s.userID)

	s.Require().NoError(err)
	// The mirror is never loaded; posted dates stay independent.
	s.mockRepo.AssertNotCalled(s.T(), "FindTransactionByID", ctx, "txn-mirror")
}

func (s *TransactionServiceTestSuite) TestMarkCleared_StaleVersion_SurfacesConflict() {
	ctx := context.Background()
	source, _ := s.sourceWithMirror()

	s.mockRepo.On("FindTransactionByID", ctx, "txn-source").Return(source, nil).Once()
	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-checking", s.userID).Return(&s.checkingAccount, nil).Once()
	s.mockRepo.On("UpdateTransaction", ctx, mock.AnythingOfType("domain.Transaction"), int64(2)).
		Return(apperrors.ErrConcurrentModification).Once()

	_, err := s.service.MarkCleared(ctx, "txn-source", dto.MarkClearedRequest{}, s.userID)
	s.ErrorIs(err, apperrors.ErrConcurrentModification)
}

func (s *TransactionServiceTestSuite) TestMarkCleared_WritesInsideUnitOfWork() {
	ctx := context.Background()
	source, _ := s.sourceWithMirror()

	s.mockRepo.On("FindTransactionByID", ctx, "txn-source").Return(source, nil).Once()
	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-checking", s.userID).Return(&s.checkingAccount, nil).Once()
	s.mockRepo.On("UpdateTransaction", ctx, mock.AnythingOfType("domain.Transaction"), int64(2)).Return(nil).Once()
	s.mockPublisher.On("Publish", ctx, mock.Anything).Return(nil).Once()

	txn, err := s.service.MarkCleared(ctx, "txn-source", dto.MarkClearedRequest{}, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.StatusCleared, txn.Status)
	// The repository rewrites split rows alongside the transaction row, so the
	// status write must share one database transaction with them.
	s.Equal(1, s.mockRepo.withinTxCalls)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestMarkReconciled_WritesInsideUnitOfWork() {
	ctx := context.Background()
	source, _ := s.sourceWithMirror()
	source.Status = domain.StatusCleared

	s.mockRepo.On("FindTransactionByID", ctx, "txn-source").Return(source, nil).Once()
	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-checking", s.userID).Return(&s.checkingAccount, nil).Once()
	s.mockRepo.On("UpdateTransaction", ctx, mock.AnythingOfType("domain.Transaction"), int64(2)).Return(nil).Once()
	s.mockPublisher.On("Publish", ctx, mock.Anything).Return(nil).Once()

	txn, err := s.service.MarkReconciled(ctx, "txn-source", s.userID)

	s.Require().NoError(err)
	s.Equal(domain.StatusReconciled, txn.Status)
	s.Equal(1, s.mockRepo.withinTxCalls)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestDeleteTransaction_CascadesMirrors() {
	ctx := context.Background()
	source, mirror := s.sourceWithMirror()

	s.mockRepo.On("FindTransactionByID", ctx, "txn-source").Return(source, nil).Once()
	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-checking", s.userID).Return(&s.checkingAccount, nil).Once()
	s.mockRepo.On("FindTransactionByID", ctx, "txn-mirror").Return(mirror, nil).Once()
	s.mockRepo.On("DeleteTransaction", ctx, "txn-mirror").Return(nil).Once()
	s.mockRepo.On("DeleteTransaction", ctx, "txn-source").Return(nil).Once()

	var published []domain.Event
	s.mockPublisher.On("Publish", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(1).([]domain.Event)
		}).Return(nil).Once()

	err := s.service.DeleteTransaction(ctx, "txn-source", s.userID)

	s.Require().NoError(err)
	kinds := make([]domain.EventKind, 0, len(published))
	for _, e := range published {
		kinds = append(kinds, e.Kind)
	}
	s.Contains(kinds, domain.EventTransactionDeleted)
	s.Contains(kinds, domain.EventMirrorDeleted)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestDeleteTransaction_MirrorDirectly_Rejected() {
	ctx := context.Background()
	_, mirror := s.sourceWithMirror()

	s.mockRepo.On("FindTransactionByID", ctx, "txn-mirror").Return(mirror, nil).Once()
	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-savings", s.userID).Return(&s.savingsAccount, nil).Once()

	err := s.service.DeleteTransaction(ctx, "txn-mirror", s.userID)
	s.ErrorIs(err, apperrors.ErrCannotEditMirrorDirectly)
	s.mockRepo.AssertNotCalled(s.T(), "DeleteTransaction", mock.Anything, mock.Anything)
}

func (s *TransactionServiceTestSuite) TestGetTransactionByID_OtherUsersAccount_ObscuredAsNotFound() {
	ctx := context.Background()
	source, _ := s.sourceWithMirror()

	s.mockRepo.On("FindTransactionByID", ctx, "txn-source").Return(source, nil).Once()
	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-checking", "user-2").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.GetTransactionByID(ctx, "txn-source", "user-2")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *TransactionServiceTestSuite) TestListTransactionsByAccount_DefaultsLimit() {
	ctx := context.Background()

	s.mockAccountSvc.On("GetAccountByID", ctx, "acc-checking", s.userID).Return(&s.checkingAccount, nil).Once()
	s.mockRepo.On("ListTransactionsByAccountID", ctx, "acc-checking", 20, (*string)(nil)).
		Return([]domain.Transaction{}, nil, nil).Once()

	resp, err := s.service.ListTransactionsByAccount(ctx, "acc-checking", s.userID, dto.ListTransactionsParams{})
	s.Require().NoError(err)
	s.Empty(resp.Transactions)
	s.Nil(resp.NextToken)
}

func TestTransactionService(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
