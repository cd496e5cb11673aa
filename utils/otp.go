// utils/otp.go
package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrTooManyAttempts is returned when a phone number has exceeded its OTP
// verification budget for the current window.
var ErrTooManyAttempts = errors.New("too many OTP attempts")

var otpRange = big.NewInt(900000)

// GenerateOTP draws a uniform 6-digit code in [100000, 999999] from the
// given entropy source. Callers pass crypto/rand.Reader in production; tests
// may pass a deterministic reader.
func GenerateOTP(entropy io.Reader) (string, error) {
	n, err := rand.Int(entropy, otpRange)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// ValidateOTPAttempts enforces a per-phone verification budget of 5
// attempts per hour, tracked in Redis. A nil client disables the check.
func ValidateOTPAttempts(ctx context.Context, phone string, rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}

	key := "otp_attempts:" + phone
	attempts, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return err
	}

	// Set expiry if first attempt
	if attempts == 1 {
		rdb.Expire(ctx, key, 1*time.Hour)
	}

	if attempts > 5 {
		return ErrTooManyAttempts
	}

	return nil
}
