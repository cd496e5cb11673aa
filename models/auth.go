// models/auth.go

package models

// AdminLoginRequest is the email/password login body for administrative
// accounts.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PhoneLoginRequest is the phone/password login body for phone accounts
// that have completed their profile and set a password.
type PhoneLoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// OTPRequest asks for a verification code to be sent to a phone number.
type OTPRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// VerifyOTPRequest submits a code previously sent to a phone number.
type VerifyOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

// CompleteProfileRequest fills in a phone account after its number has been
// verified. Password and email are optional; setting a password enables
// phone/password login.
type CompleteProfileRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=customer vendor"`
	Pincode  string `json:"pincode,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// CreateAdminRequest creates a new administrative account.
type CreateAdminRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin user"`
}
