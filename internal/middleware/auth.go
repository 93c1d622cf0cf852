package middleware

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

var errUnknownRole = errors.New("token carries no recognised role")

// CustomClaims contains the custom claims from Auth0 JWT.
// Role and branch ids are namespaced claims added by the Auth0 login action.
type CustomClaims struct {
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Role      string  `json:"https://edudesk.app/role"`
	BranchIDs []int64 `json:"https://edudesk.app/branch_ids"`
}

// Validate implements validator.CustomClaims
func (c *CustomClaims) Validate(ctx context.Context) error {
	switch domain.Role(c.Role) {
	case domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleReceptionist:
		return nil
	}
	return errUnknownRole
}

type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// PrincipalKey is the context key for the authenticated principal
	PrincipalKey contextKey = "principal"
)

// TokenValidator validates a raw bearer token; *validator.Validator satisfies it
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// NewJWTValidator builds the Auth0 RS256 validator shared by the API and the live feed
func NewJWTValidator(domainName, audience string) (*validator.Validator, error) {
	issuerURL, err := url.Parse("https://" + domainName + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	return validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// PrincipalFromClaims converts validated token claims into a principal
func PrincipalFromClaims(claims *validator.ValidatedClaims) (*domain.Principal, error) {
	custom, ok := claims.CustomClaims.(*CustomClaims)
	if !ok || custom == nil {
		return nil, errUnknownRole
	}
	if err := custom.Validate(context.Background()); err != nil {
		return nil, err
	}
	return &domain.Principal{
		Subject:   claims.RegisteredClaims.Subject,
		Role:      domain.Role(custom.Role),
		BranchIDs: custom.BranchIDs,
	}, nil
}

// AuthMiddleware provides JWT validation middleware
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware with Auth0 configuration
func NewAuthMiddleware(domainName, audience string) (*AuthMiddleware, error) {
	v, err := NewJWTValidator(domainName, audience)
	if err != nil {
		return nil, err
	}
	return NewAuthMiddlewareWithValidator(v), nil
}

// NewAuthMiddlewareWithValidator creates an AuthMiddleware around any token validator
func NewAuthMiddlewareWithValidator(v TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: v}
}

// Authenticate returns an Echo middleware that validates JWT tokens
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return unauthorizedError(c, "missing or malformed authorization header")
			}

			claims, err := m.validator.ValidateToken(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "invalid token")
			}

			validatedClaims, ok := claims.(*validator.ValidatedClaims)
			if !ok {
				return unauthorizedError(c, "invalid claims")
			}

			principal, err := PrincipalFromClaims(validatedClaims)
			if err != nil {
				log.Debug().Err(err).Str("subject", validatedClaims.RegisteredClaims.Subject).Msg("Principal rejected")
				return unauthorizedError(c, "token carries no recognised role")
			}

			ctx := context.WithValue(c.Request().Context(), ClaimsKey, validatedClaims)
			ctx = WithPrincipal(ctx, principal)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// WithPrincipal stores the principal in ctx
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// GetPrincipal extracts the authenticated principal from the context
func GetPrincipal(c echo.Context) *domain.Principal {
	if p, ok := c.Request().Context().Value(PrincipalKey).(*domain.Principal); ok {
		return p
	}
	return nil
}

// GetSubject returns the token subject, or "" when unauthenticated
func GetSubject(c echo.Context) string {
	if p := GetPrincipal(c); p != nil {
		return p.Subject
	}
	return ""
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}
