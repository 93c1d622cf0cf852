package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func contextWithPrincipal(p *domain.Principal) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
	if p != nil {
		req = req.WithContext(WithPrincipal(req.Context(), p))
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBranchAccess_Check(t *testing.T) {
	gate := NewBranchAccess()

	tests := []struct {
		name      string
		principal *domain.Principal
		branchID  int64
		allowed   bool
	}{
		{"super admin sees every branch", &domain.Principal{Role: domain.RoleSuperAdmin}, 99, true},
		{"admin in own branch", &domain.Principal{Role: domain.RoleAdmin, BranchIDs: []int64{1, 2}}, 2, true},
		{"admin outside own branch", &domain.Principal{Role: domain.RoleAdmin, BranchIDs: []int64{1, 2}}, 3, false},
		{"receptionist without branches", &domain.Principal{Role: domain.RoleReceptionist}, 1, false},
		{"anonymous", nil, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Check(contextWithPrincipal(tt.principal), tt.branchID)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, domain.ErrForbidden))
			assert.ErrorIs(t, err, domain.ErrBranchAccessDenied)
		})
	}
}
