package domain

import "errors"

// Error kinds. Every specific domain error unwraps to exactly one of these.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// kindError carries a specific message while matching its kind via errors.Is.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func notFound(msg string) error     { return &kindError{msg: msg, kind: ErrNotFound} }
func invalidInput(msg string) error { return &kindError{msg: msg, kind: ErrInvalidInput} }

// Lookup failures
var (
	ErrBranchNotFound        = notFound("branch not found")
	ErrTeacherNotFound       = notFound("teacher not found")
	ErrStudentNotFound       = notFound("student not found")
	ErrGroupNotFound         = notFound("group not found")
	ErrPaymentNotFound       = notFound("payment not found")
	ErrSalaryPaymentNotFound = notFound("salary payment not found")
	ErrProductSaleNotFound   = notFound("product sale not found")
	ErrExpenseNotFound       = notFound("expense not found")
)

// Validation failures
var (
	ErrAmountInvalid         = invalidInput("amount must be greater than zero")
	ErrPeriodInvalid         = invalidInput("period month must be between 1 and 12")
	ErrPayDayInvalid         = invalidInput("payment day must be between 1 and 31")
	ErrNameRequired          = invalidInput("name is required")
	ErrQuantityInvalid       = invalidInput("quantity must be at least 1")
	ErrCategoryInvalid       = invalidInput("category is not recognised")
	ErrDateRangeInvalid      = invalidInput("start date must not be after end date")
	ErrStudentNotInGroup     = invalidInput("student is not a member of the group")
	ErrGroupBranchMismatch   = invalidInput("group does not belong to the student's branch")
	ErrStudentAlreadyInGroup = invalidInput("student is already a member of the group")
	ErrReportArchiveDisabled = invalidInput("report archive is not configured")
)

// ErrBranchAccessDenied is returned when the caller may not touch the branch
var ErrBranchAccessDenied = &kindError{msg: "access to this branch is denied", kind: ErrForbidden}

// IsClientError reports whether err is caused by the caller rather than the system.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrForbidden)
}
