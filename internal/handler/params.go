package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// BranchGate decides whether the caller may act on a branch
type BranchGate interface {
	Check(c echo.Context, branchID int64) error
}

type paramError struct {
	field   string
	message string
}

func (e *paramError) Error() string { return e.field + ": " + e.message }

func (e *paramError) respond(c echo.Context) error {
	return NewValidationError(c, "Invalid "+e.field, []ValidationError{{Field: e.field, Message: e.message}})
}

func parseID(raw, field string) (int64, *paramError) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &paramError{field: field, message: "Must be a positive integer"}
	}
	return id, nil
}

func pathID(c echo.Context, name string) (int64, *paramError) {
	return parseID(c.Param(name), name)
}

func queryID(c echo.Context, name string) (int64, *paramError) {
	if c.QueryParam(name) == "" {
		return 0, &paramError{field: name, message: "Is required"}
	}
	return parseID(c.QueryParam(name), name)
}

func optionalInt(c echo.Context, name string) (*int, *paramError) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &paramError{field: name, message: "Must be an integer"}
	}
	return &v, nil
}

func requiredInt(c echo.Context, name string) (int, *paramError) {
	v, perr := optionalInt(c, name)
	if perr != nil {
		return 0, perr
	}
	if v == nil {
		return 0, &paramError{field: name, message: "Is required"}
	}
	return *v, nil
}

// queryPeriod reads the required year and month pair
func queryPeriod(c echo.Context) (int, int, *paramError) {
	year, perr := requiredInt(c, "year")
	if perr != nil {
		return 0, 0, perr
	}
	month, perr := requiredInt(c, "month")
	if perr != nil {
		return 0, 0, perr
	}
	return year, month, nil
}

func queryDate(c echo.Context, name string) (time.Time, *paramError) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, &paramError{field: name, message: "Is required"}
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, &paramError{field: name, message: "Must be a date in YYYY-MM-DD format"}
	}
	return d, nil
}

func queryRange(c echo.Context) (time.Time, time.Time, *paramError) {
	start, perr := queryDate(c, "startDate")
	if perr != nil {
		return time.Time{}, time.Time{}, perr
	}
	end, perr := queryDate(c, "endDate")
	if perr != nil {
		return time.Time{}, time.Time{}, perr
	}
	return start, end, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
