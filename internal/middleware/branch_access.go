package middleware

import (
	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// BranchAccess decides branch scope from the principal placed in the request by Authenticate
type BranchAccess struct{}

// NewBranchAccess creates the claims-backed branch gate
func NewBranchAccess() *BranchAccess {
	return &BranchAccess{}
}

// Check returns domain.ErrBranchAccessDenied unless the caller may use branchID
func (b *BranchAccess) Check(c echo.Context, branchID int64) error {
	principal := GetPrincipal(c)
	if principal.CanAccessBranch(branchID) {
		return nil
	}

	log.Warn().
		Str("subject", GetSubject(c)).
		Int64("branch_id", branchID).
		Str("path", c.Request().URL.Path).
		Msg("Branch access denied")
	return domain.ErrBranchAccessDenied
}
