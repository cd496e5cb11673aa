package controllers

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shopkhata/shopkhata_backend/middleware"
	"github.com/shopkhata/shopkhata_backend/models"
	"github.com/shopkhata/shopkhata_backend/repositories"
	"github.com/shopkhata/shopkhata_backend/utils"
)

// OTP challenge lifetime.
const otpValidity = 10 * time.Minute

// Challenge verification failures. All three surface the same message to
// the client so phone numbers cannot be enumerated; the distinction is for
// logs and tests.
var (
	ErrChallengeNotFound = errors.New("no pending challenge for this phone")
	ErrCodeMismatch      = errors.New("code does not match")
	ErrChallengeExpired  = errors.New("challenge has expired")
)

const challengeFailureMessage = "Invalid or expired code"

// SMSSender delivers verification codes. Delivery is best-effort: a failed
// send never fails the enclosing operation.
type SMSSender interface {
	SendOTP(phone, otp string) error
}

// AuthController carries the identity and session flows: logins, the phone
// challenge state machine, logout and session revocation.
type AuthController struct {
	Admins   repositories.AdminStore
	Users    repositories.PhoneAccountStore
	Resolver *repositories.Resolver
	Revoker  repositories.RevocationStore
	SMS      SMSSender
	Redis    *redis.Client
	// Entropy feeds OTP generation; crypto/rand in production.
	Entropy io.Reader
	logger  *log.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(admins repositories.AdminStore, users repositories.PhoneAccountStore, revoker repositories.RevocationStore, sms SMSSender, redisClient *redis.Client) *AuthController {
	return &AuthController{
		Admins:   admins,
		Users:    users,
		Resolver: repositories.NewResolver(admins, users),
		Revoker:  revoker,
		SMS:      sms,
		Redis:    redisClient,
		Entropy:  rand.Reader,
		logger:   log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
	}
}

// AdminLogin authenticates an administrative account by email and password.
func (ac *AuthController) AdminLogin(c echo.Context) error {
	var req models.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Email and password are required")
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return badRequest(c, "Invalid email format")
	}

	ctx := c.Request().Context()

	admin, err := ac.Admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return invalidCredentials(c)
		}
		return serverError(c, "Failed to find account")
	}

	if err := utils.CheckPassword(req.Password, admin.Password); err != nil {
		return invalidCredentials(c)
	}

	issued, err := ac.issueToken(c, ac.Admins.AppendToken, admin.ID, admin.Role, middleware.AdminTokenTTL())
	if err != nil {
		return serverError(c, "Failed to generate token")
	}

	admin.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token":     issued.Token,
			"expiresAt": issued.ExpiresAt,
			"admin":     admin,
		},
	})
}

// Login authenticates a phone account by phone number and password. Only
// accounts that completed their profile and set a password can use it.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.PhoneLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Phone and password are required")
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return badRequest(c, "Invalid phone number format")
	}

	ctx := c.Request().Context()

	user, err := ac.Users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return invalidCredentials(c)
		}
		return serverError(c, "Failed to find account")
	}

	if user.Password == "" {
		return invalidCredentials(c)
	}
	if err := utils.CheckPassword(req.Password, user.Password); err != nil {
		return invalidCredentials(c)
	}

	issued, err := ac.issueToken(c, ac.Users.AppendToken, user.ID, user.PrincipalRole(), middleware.UserTokenTTL())
	if err != nil {
		return serverError(c, "Failed to generate token")
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token":     issued.Token,
			"expiresAt": issued.ExpiresAt,
			"user":      user,
		},
	})
}

// RequestOTP starts a phone challenge: it stores a fresh 6-digit code on
// the account owning the phone (creating a placeholder account when none
// exists) and asks the SMS gateway to deliver it. A delivery failure does
// not invalidate the stored challenge; the response carries a hint instead.
func (ac *AuthController) RequestOTP(c echo.Context) error {
	var req models.OTPRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Phone number is required")
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return badRequest(c, "Invalid phone number format")
	}

	return ac.sendChallenge(c, phone)
}

// ResendOTP reissues the code for a phone that already has a pending
// challenge. The new code overwrites the old one.
func (ac *AuthController) ResendOTP(c echo.Context) error {
	var req models.OTPRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Phone number is required")
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return badRequest(c, "Invalid phone number format")
	}

	ctx := c.Request().Context()

	user, err := ac.Users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return badRequest(c, "No pending verification found for this phone number")
		}
		return serverError(c, "Failed to find account")
	}
	if user.OTP == nil {
		return badRequest(c, "No pending verification found for this phone number")
	}

	return ac.sendChallenge(c, phone)
}

func (ac *AuthController) sendChallenge(c echo.Context, phone string) error {
	code, err := utils.GenerateOTP(ac.Entropy)
	if err != nil {
		return serverError(c, "Failed to generate verification code")
	}

	otp := models.OTPInfo{
		Code:      code,
		ExpiresAt: time.Now().Add(otpValidity),
	}

	ctx := c.Request().Context()

	if _, err := ac.Users.UpsertChallenge(ctx, phone, otp); err != nil {
		return serverError(c, "Failed to store verification code")
	}

	smsDelivered := true
	if err := ac.SMS.SendOTP(phone, code); err != nil {
		// Best-effort: the stored code stays verifiable so the caller can
		// relay it out of band.
		ac.logger.Printf("Failed to send OTP to %s: %v", phone, err)
		smsDelivered = false
	}

	message := "Verification code sent"
	if !smsDelivered {
		message = "Verification code issued; delivery may have failed"
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data: map[string]interface{}{
			"phone":        phone,
			"expiresAt":    otp.ExpiresAt,
			"smsDelivered": smsDelivered,
		},
	})
}

// checkChallenge runs the verification state machine against the loaded
// account. Codes are compared as opaque strings; parsing them as integers
// would truncate leading zeros.
func checkChallenge(user *models.User, code string, now time.Time) error {
	if user.OTP == nil || user.OTP.Code == "" {
		return ErrChallengeNotFound
	}
	if user.OTP.Code != code {
		return ErrCodeMismatch
	}
	if now.After(user.OTP.ExpiresAt) {
		return ErrChallengeExpired
	}
	return nil
}

// VerifyOTP completes a phone challenge. On success the challenge is
// cleared (single use), the account is marked verified, and a session token
// is minted and appended to the account's session list.
func (ac *AuthController) VerifyOTP(c echo.Context) error {
	var req models.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Phone and a 6-digit code are required")
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return badRequest(c, "Invalid phone number format")
	}
	code := utils.SanitizeInput(req.OTP)

	ctx := c.Request().Context()

	if err := utils.ValidateOTPAttempts(ctx, phone, ac.Redis); err != nil {
		if errors.Is(err, utils.ErrTooManyAttempts) {
			return c.JSON(http.StatusTooManyRequests, models.Response{
				Status:  http.StatusTooManyRequests,
				Message: "Too many attempts. Please try again later.",
			})
		}
		// Attempt tracking is advisory; verification still proceeds.
		ac.logger.Printf("OTP attempt tracking failed for %s: %v", phone, err)
	}

	user, err := ac.Users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			ac.logger.Printf("OTP verification for unknown phone %s", phone)
			return challengeFailure(c)
		}
		return serverError(c, "Failed to find account")
	}

	if err := checkChallenge(user, code, time.Now()); err != nil {
		ac.logger.Printf("OTP verification failed for %s: %v", phone, err)
		return challengeFailure(c)
	}

	if err := ac.Users.MarkVerified(ctx, phone); err != nil {
		return serverError(c, "Failed to update account")
	}
	user.PhoneVerified = true
	user.IsVerified = true
	user.OTP = nil

	issued, err := ac.issueToken(c, ac.Users.AppendToken, user.ID, user.PrincipalRole(), middleware.UserTokenTTL())
	if err != nil {
		return serverError(c, "Failed to generate token")
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Phone number verified",
		Data: map[string]interface{}{
			"token":     issued.Token,
			"expiresAt": issued.ExpiresAt,
			"user":      user,
		},
	})
}

// CompleteProfile fills in a verified phone account. Setting a password
// enables phone/password login afterwards.
func (ac *AuthController) CompleteProfile(c echo.Context) error {
	principal := middleware.GetPrincipal(c)
	user, ok := principal.(*models.User)
	if !ok {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Only phone accounts can complete a profile",
		})
	}

	var req models.CompleteProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Invalid profile data")
	}

	req.FullName = utils.SanitizeInput(req.FullName)
	req.Pincode = utils.SanitizeInput(req.Pincode)
	if req.Email != "" {
		email, err := utils.SanitizeEmail(req.Email)
		if err != nil {
			return badRequest(c, "Invalid email format")
		}
		req.Email = email
	}

	var passwordHash string
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return serverError(c, "Failed to process password")
		}
		passwordHash = hash
	}

	ctx := c.Request().Context()

	if err := ac.Users.CompleteProfile(ctx, user.ID, req, passwordHash); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Account not found",
			})
		}
		return serverError(c, "Failed to update profile")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile updated",
	})
}

// CreateAdmin creates an administrative account. Duplicate emails are
// surfaced distinctly so the client can prompt a login instead.
func (ac *AuthController) CreateAdmin(c echo.Context) error {
	var req models.CreateAdminRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Name, email, password and role are required")
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return badRequest(c, "Invalid email format")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return serverError(c, "Failed to process password")
	}

	admin := &models.Admin{
		Name:     utils.SanitizeInput(req.Name),
		Email:    email,
		Password: hash,
		Role:     req.Role,
	}

	ctx := c.Request().Context()

	if err := ac.Admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "An account with this email already exists",
			})
		}
		return serverError(c, "Failed to create account")
	}

	admin.Password = ""
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Account created",
		Data:    admin,
	})
}

// Logout revokes the presented token and removes it from the owning
// account's session list. Revocation is idempotent, and the list removal is
// skipped silently when no principal owns the token anymore (for example a
// deleted account), so logout never fails for a stale token.
func (ac *AuthController) Logout(c echo.Context) error {
	tokenString := middleware.GetToken(c)
	if tokenString == "" {
		var err error
		tokenString, err = bearerToken(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid or expired token",
			})
		}
	}

	ctx := c.Request().Context()

	if err := ac.Revoker.Revoke(ctx, tokenString); err != nil {
		return serverError(c, "Failed to revoke token")
	}

	principal := middleware.GetPrincipal(c)
	if principal == nil {
		principal = ac.principalForToken(c, tokenString)
	}
	if principal != nil {
		if err := ac.Resolver.RemoveToken(ctx, principal, tokenString); err != nil {
			ac.logger.Printf("Failed to remove session record: %v", err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}

// ForceLogout revokes every session of the authenticated principal and
// clears its session list.
func (ac *AuthController) ForceLogout(c echo.Context) error {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	ctx := c.Request().Context()

	var tokens []models.IssuedToken
	switch p := principal.(type) {
	case *models.Admin:
		tokens = p.Tokens
	case *models.User:
		tokens = p.Tokens
	}

	revoked := 0
	for _, t := range tokens {
		if err := ac.Revoker.Revoke(ctx, t.Token); err != nil {
			ac.logger.Printf("Failed to revoke session %s: %v", t.SessionID, err)
			continue
		}
		revoked++
	}

	if err := ac.Resolver.ClearTokens(ctx, principal); err != nil {
		return serverError(c, "Failed to clear sessions")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out from all devices",
		Data: map[string]interface{}{
			"sessionsRevoked": revoked,
		},
	})
}

// ValidateToken reports whether the presented token is currently usable and
// for whom. It always answers 200; validity is in the payload.
func (ac *AuthController) ValidateToken(c echo.Context) error {
	tokenString, err := bearerToken(c)
	if err != nil {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "No token provided",
			Data:    map[string]interface{}{"valid": false},
		})
	}

	ctx := c.Request().Context()

	revoked, err := ac.Revoker.IsRevoked(ctx, tokenString)
	if err != nil {
		return serverError(c, "Failed to check token")
	}

	invalid := func(reason string) error {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: reason,
			Data:    map[string]interface{}{"valid": false},
		})
	}

	if revoked {
		return invalid("Token is not valid")
	}

	claims, err := middleware.ParseToken(tokenString)
	if err != nil {
		return invalid("Token is not valid")
	}

	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return invalid("Token is not valid")
	}

	principal, err := ac.Resolver.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPrincipalNotFound) {
			return invalid("Token is not valid")
		}
		return serverError(c, "Failed to resolve account")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token is valid",
		Data: map[string]interface{}{
			"valid":     true,
			"id":        claims.ID,
			"role":      claims.Role,
			"expiresAt": time.Unix(claims.ExpiresAt, 0),
			"kind":      principalKind(principal),
		},
	})
}

// issueToken mints a session token and records it on the owning account
// before it is handed to the client, so the account's session list always
// reflects every live session.
func (ac *AuthController) issueToken(c echo.Context, appendFn func(ctx context.Context, id primitive.ObjectID, token models.IssuedToken) error, id primitive.ObjectID, role string, ttl time.Duration) (*models.IssuedToken, error) {
	tokenString, expiresAt, err := middleware.GenerateToken(id.Hex(), role, ttl)
	if err != nil {
		return nil, err
	}

	record := models.IssuedToken{
		SessionID: uuid.NewString(),
		Token:     tokenString,
		IssuedAt:  time.Now(),
		ExpiresAt: expiresAt,
	}

	if err := appendFn(c.Request().Context(), id, record); err != nil {
		return nil, err
	}

	return &record, nil
}

func (ac *AuthController) principalForToken(c echo.Context, tokenString string) models.Principal {
	claims, err := middleware.ParseToken(tokenString)
	if err != nil {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return nil
	}
	principal, err := ac.Resolver.Resolve(c.Request().Context(), id)
	if err != nil {
		return nil
	}
	return principal
}

func principalKind(p models.Principal) string {
	switch p.(type) {
	case *models.Admin:
		return "admin"
	case *models.User:
		return "user"
	}
	return ""
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) <= len(prefix) {
		return "", errors.New("no bearer token")
	}
	return header[len(prefix):], nil
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.Response{
		Status:  http.StatusBadRequest,
		Message: message,
	})
}

func invalidCredentials(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.Response{
		Status:  http.StatusUnauthorized,
		Message: "Invalid credentials",
	})
}

func challengeFailure(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, models.Response{
		Status:  http.StatusBadRequest,
		Message: challengeFailureMessage,
	})
}

func serverError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: message,
	})
}
