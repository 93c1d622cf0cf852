package websocket

import (
	"context"
	"errors"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	claims interface{}
	err    error
}

func (s *stubValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	return s.claims, s.err
}

func TestNewAuth0JWTValidator_Success(t *testing.T) {
	v, err := NewAuth0JWTValidator("edudesk.eu.auth0.com", "https://api.edudesk.test")
	require.NoError(t, err)
	assert.NotNil(t, v.validator)
}

func TestAuth0JWTValidator_ValidateToken_InvalidJWT(t *testing.T) {
	v, err := NewAuth0JWTValidator("edudesk.eu.auth0.com", "https://api.edudesk.test")
	require.NoError(t, err)

	principal, err := v.ValidateToken(context.Background(), "invalid-token")
	assert.Nil(t, principal)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestAuth0JWTValidator_ValidateToken_Principal(t *testing.T) {
	v := &Auth0JWTValidator{validator: &stubValidator{claims: &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: "auth0|desk"},
		CustomClaims:     &middleware.CustomClaims{Role: "RECEPTIONIST", BranchIDs: []int64{7}},
	}}}

	principal, err := v.ValidateToken(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "auth0|desk", principal.Subject)
	assert.Equal(t, domain.RoleReceptionist, principal.Role)
	assert.True(t, principal.CanAccessBranch(7))
	assert.False(t, principal.CanAccessBranch(8))
}

func TestAuth0JWTValidator_ValidateToken_RoleMissing(t *testing.T) {
	v := &Auth0JWTValidator{validator: &stubValidator{claims: &validator.ValidatedClaims{
		CustomClaims: &middleware.CustomClaims{},
	}}}

	_, err := v.ValidateToken(context.Background(), "token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
