package websocket

import (
	"context"
	"errors"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/middleware"
)

// ErrInvalidToken is returned when JWT validation fails
var ErrInvalidToken = errors.New("invalid token")

// Auth0JWTValidator validates the token passed on the live feed handshake.
// Browsers cannot set headers on a WebSocket upgrade, so the token travels as a query parameter.
type Auth0JWTValidator struct {
	validator middleware.TokenValidator
}

// NewAuth0JWTValidator creates a validator with the same issuer and audience rules as the API
func NewAuth0JWTValidator(domainName, audience string) (*Auth0JWTValidator, error) {
	v, err := middleware.NewJWTValidator(domainName, audience)
	if err != nil {
		return nil, err
	}
	return &Auth0JWTValidator{validator: v}, nil
}

// ValidateToken validates a JWT and returns the principal it identifies
func (v *Auth0JWTValidator) ValidateToken(ctx context.Context, token string) (*domain.Principal, error) {
	claims, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	principal, err := middleware.PrincipalFromClaims(validatedClaims)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return principal, nil
}
