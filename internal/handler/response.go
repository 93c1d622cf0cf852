package handler

import (
	"errors"
	"net/http"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://edudesk.app/errors/validation"
	ErrorTypeNotFound     = "https://edudesk.app/errors/not-found"
	ErrorTypeUnauthorized = "https://edudesk.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://edudesk.app/errors/forbidden"
	ErrorTypeInternal     = "https://edudesk.app/errors/internal"
)

func problem(c echo.Context, status int, errorType, title, detail string, fields []ValidationError) error {
	return c.JSON(status, ProblemDetails{
		Type:     errorType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   fields,
	})
}

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return problem(c, http.StatusBadRequest, ErrorTypeValidation, "Validation Error", detail, errors)
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return problem(c, http.StatusNotFound, ErrorTypeNotFound, "Not Found", detail, nil)
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnauthorized, ErrorTypeUnauthorized, "Unauthorized", detail, nil)
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return problem(c, http.StatusForbidden, ErrorTypeForbidden, "Forbidden", detail, nil)
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return problem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", detail, nil)
}

// fieldOf names the request field a validation failure points at
var fieldOf = []struct {
	err   error
	field string
}{
	{domain.ErrAmountInvalid, "amount"},
	{domain.ErrPeriodInvalid, "month"},
	{domain.ErrPayDayInvalid, "paymentDayOfMonth"},
	{domain.ErrNameRequired, "name"},
	{domain.ErrQuantityInvalid, "quantity"},
	{domain.ErrCategoryInvalid, "category"},
	{domain.ErrDateRangeInvalid, "startDate"},
	{domain.ErrStudentNotInGroup, "groupId"},
	{domain.ErrGroupBranchMismatch, "groupIds"},
	{domain.ErrStudentAlreadyInGroup, "studentId"},
}

func validationFields(err error) []ValidationError {
	for _, f := range fieldOf {
		if errors.Is(err, f.err) {
			return []ValidationError{{Field: f.field, Message: f.err.Error()}}
		}
	}
	return nil
}

// serviceError writes the problem response for an error returned by a service.
// Only errors the caller could not have caused are logged.
func serviceError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return NewForbiddenError(c, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, err.Error(), validationFields(err))
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg(msg)
	return NewInternalError(c, msg)
}
