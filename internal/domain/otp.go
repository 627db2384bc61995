package domain

import "time"

// OtpRecord is the single live password-reset challenge for an email.
// A newer record for the same email replaces the old one.
type OtpRecord struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its expiry at now.
func (o *OtpRecord) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

type NewPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}
