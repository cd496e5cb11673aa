// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
)

// Token verification failures. Handlers surface all of them with the same
// uniform message; the distinction exists for logs and tests only.
var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")
)

// JwtCustomClaims is the token payload: an opaque principal id, the role
// declared at issuance, and the standard expiry. No account-kind
// discriminator is carried; resolution is the resolver's job.
type JwtCustomClaims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.StandardClaims
}

// Valid implements the jwt.Claims interface.
func (c JwtCustomClaims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return jwt.NewValidationError(ErrTokenExpired.Error(), jwt.ValidationErrorExpired)
	}

	if c.NotBefore > 0 && time.Now().Unix() < c.NotBefore {
		return jwt.NewValidationError(ErrTokenInvalid.Error(), jwt.ValidationErrorNotValidYet)
	}

	return nil
}

// GetJWTSecret returns the JWT secret from environment variables
func GetJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET environment variable is required")
	}
	return secret
}

// AdminTokenTTL is the session lifetime for administrative accounts,
// defaulting to one hour.
func AdminTokenTTL() time.Duration {
	return ttlFromEnv("ADMIN_TOKEN_TTL", time.Hour)
}

// UserTokenTTL is the session lifetime for phone accounts, defaulting to
// thirty days.
func UserTokenTTL() time.Duration {
	return ttlFromEnv("USER_TOKEN_TTL", 30*24*time.Hour)
}

func ttlFromEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// GenerateToken mints a signed HS256 bearer token binding the principal id
// and role for the given lifetime. The caller must append the token to the
// owning account's session list before handing it to the client.
func GenerateToken(principalID, role string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)

	claims := &JwtCustomClaims{
		ID:   principalID,
		Role: role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(GetJWTSecret()))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseToken verifies a bearer token's signature and expiry and returns its
// claims. Expiry is reported as ErrTokenExpired, every other failure as
// ErrTokenInvalid.
func ParseToken(tokenString string) (*JwtCustomClaims, error) {
	claims := &JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(GetJWTSecret()), nil
	})

	if err != nil {
		if vErr, ok := err.(*jwt.ValidationError); ok && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
