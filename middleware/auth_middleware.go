// middleware/auth_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shopkhata/shopkhata_backend/models"
	"github.com/shopkhata/shopkhata_backend/repositories"
)

// Context keys set by Authenticate.
const (
	ContextKeyPrincipal = "principal"
	ContextKeyRole      = "role"
	ContextKeyToken     = "token"
	ContextKeyUserID    = "userId"
)

// Every authentication failure surfaces this same message so callers cannot
// probe which step rejected them.
const authFailureMessage = "Invalid or expired token"

// Authenticate is the per-request access-control pipeline: extract the
// bearer token, check revocation, verify signature and expiry, resolve the
// owning principal, and attach it to the request context. The revocation
// check runs before verification because a logged-out token still passes
// the signature and expiry checks.
func Authenticate(revoker repositories.RevocationStore, resolver *repositories.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := extractBearerToken(c)
			if err != nil {
				return authFailure(c)
			}

			revoked, err := revoker.IsRevoked(c.Request().Context(), tokenString)
			if err != nil {
				return serverFailure(c)
			}
			if revoked {
				return authFailure(c)
			}

			claims, err := ParseToken(tokenString)
			if err != nil {
				return authFailure(c)
			}

			id, err := primitive.ObjectIDFromHex(claims.ID)
			if err != nil {
				return authFailure(c)
			}

			principal, err := resolver.Resolve(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, repositories.ErrPrincipalNotFound) {
					return authFailure(c)
				}
				return serverFailure(c)
			}

			c.Set(ContextKeyPrincipal, principal)
			c.Set(ContextKeyRole, claims.Role)
			c.Set(ContextKeyToken, tokenString)
			c.Set(ContextKeyUserID, claims.ID)

			return next(c)
		}
	}
}

// RequireRole gates a route on the role the token declared at issuance. The
// role is deliberately not reloaded from the account, so a role change only
// takes effect once the holder re-authenticates.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextKeyRole).(string)
			if !ok || role == "" {
				return authFailure(c)
			}

			for _, allowed := range allowedRoles {
				if role == allowed {
					return next(c)
				}
			}

			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Insufficient permissions",
			})
		}
	}
}

// GetPrincipal returns the principal attached by Authenticate, or nil when
// the request did not pass through it.
func GetPrincipal(c echo.Context) models.Principal {
	principal, _ := c.Get(ContextKeyPrincipal).(models.Principal)
	return principal
}

// GetToken returns the raw bearer token attached by Authenticate.
func GetToken(c echo.Context) string {
	token, _ := c.Get(ContextKeyToken).(string)
	return token
}

// GetRole returns the token-declared role attached by Authenticate.
func GetRole(c echo.Context) string {
	role, _ := c.Get(ContextKeyRole).(string)
	return role
}

func extractBearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", errors.New("no authorization header")
	}

	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", errors.New("malformed authorization header")
	}

	return header[len(prefix):], nil
}

func authFailure(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.Response{
		Status:  http.StatusUnauthorized,
		Message: authFailureMessage,
	})
}

func serverFailure(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
	})
}
