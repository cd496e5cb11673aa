// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a phone-registered account. The pending OTP challenge and the
// list of issued session tokens live on the same document, so every
// mutation targets a single record keyed by phone or id.
type User struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Type          string             `json:"type" bson:"type"` // "customer" or "vendor"
	FullName      string             `json:"fullName,omitempty" bson:"fullName,omitempty"`
	Phone         string             `json:"phone" bson:"phone"`
	Email         string             `json:"email,omitempty" bson:"email,omitempty"`
	Pincode       string             `json:"pincode,omitempty" bson:"pincode,omitempty"`
	Password      string             `json:"password,omitempty" bson:"password,omitempty"`
	Role          string             `json:"role" bson:"role"`
	PhoneVerified bool               `json:"phoneVerified" bson:"phoneVerified"`
	IsVerified    bool               `json:"isVerified" bson:"isVerified"`
	OTP           *OTPInfo           `json:"-" bson:"otp,omitempty"`
	Tokens        []IssuedToken      `json:"-" bson:"tokens,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// OTPInfo is the pending challenge for a phone account. At most one exists
// per account; issuing a new code overwrites the previous one.
type OTPInfo struct {
	Code      string    `json:"otp" bson:"otp"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
}

// IssuedToken records one live session of an account. Appended on every
// successful login or verified challenge, removed on logout.
type IssuedToken struct {
	SessionID string    `json:"sessionId" bson:"sessionId"`
	Token     string    `json:"token" bson:"token"`
	IssuedAt  time.Time `json:"issuedAt" bson:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
}

func (u *User) PrincipalID() primitive.ObjectID { return u.ID }

// PrincipalRole falls back to the submission type tag for accounts created
// before a role was set explicitly.
func (u *User) PrincipalRole() string {
	if u.Role != "" {
		return u.Role
	}
	return u.Type
}
