package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("resource conflict")

// ErrForbidden indicates that the user is not allowed to perform the operation.
var ErrForbidden = errors.New("operation forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// Structural split validation errors.
var (
	// ErrSplitSumMismatch indicates the split amounts do not sum to the transaction amount.
	ErrSplitSumMismatch = errors.New("split amounts do not sum to transaction amount")

	// ErrInvalidSplitKind indicates a split with both or neither of a category and a transfer target.
	ErrInvalidSplitKind = errors.New("split must reference exactly one of a category or a transfer account")

	// ErrNonNegativeTransferSplit indicates a transfer split with a zero or positive amount.
	ErrNonNegativeTransferSplit = errors.New("transfer split amount must be negative")
)

// Transfer policy errors.
var (
	// ErrSelfTransfer indicates a transfer split targeting the transaction's own account.
	ErrSelfTransfer = errors.New("transfer cannot target its own account")

	// ErrCircularTransfer indicates transfer splits in one transaction forming a cycle.
	ErrCircularTransfer = errors.New("transfer splits form a circular transfer")

	// ErrInvalidTransferTarget indicates a transfer split targeting a closed or missing account.
	ErrInvalidTransferTarget = errors.New("transfer target account is closed or does not exist")
)

// Lifecycle errors.
var (
	// ErrInvalidStatusTransition indicates an attempt to move status backward or skip a state.
	ErrInvalidStatusTransition = errors.New("invalid transaction status transition")

	// ErrCannotEditMirrorDirectly indicates a structural edit attempted on a mirror transaction.
	ErrCannotEditMirrorDirectly = errors.New("mirror transactions cannot be edited directly")

	// ErrNotAMirror indicates a mirror-only operation invoked on a regular transaction.
	ErrNotAMirror = errors.New("transaction is not a mirror")
)

// Consistency errors.
var (
	// ErrMirrorNotFound indicates a paired mirror transaction could not be loaded.
	ErrMirrorNotFound = errors.New("paired mirror transaction not found")

	// ErrConcurrentModification indicates an edit proceeding against a stale snapshot.
	ErrConcurrentModification = errors.New("transaction was modified concurrently")
)

// AppError carries a status code alongside a wrapped cause. Repositories use it
// to surface infrastructure failures without losing the underlying error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Err
}
