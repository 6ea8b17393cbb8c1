package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User carries the credential record: identity, password material and the
// transient secrets (signup OTP, password-change OTP, reset token) with their
// expiries. Raw secrets are never stored, only salted hashes or digests.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Bio          *string   `db:"bio" json:"bio,omitempty"`
	Role         Role      `db:"role" json:"role"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	PasswordSalt []byte    `db:"password_salt" json:"-"`
	IsVerified   bool      `db:"is_verified" json:"is_verified"`

	SignupOTPHash      []byte     `db:"otp_hash" json:"-"`
	SignupOTPSalt      []byte     `db:"otp_salt" json:"-"`
	SignupOTPExpiresAt *time.Time `db:"otp_expires_at" json:"-"`

	PasswordOTPHash      []byte     `db:"pw_otp_hash" json:"-"`
	PasswordOTPSalt      []byte     `db:"pw_otp_salt" json:"-"`
	PasswordOTPExpiresAt *time.Time `db:"pw_otp_expires_at" json:"-"`

	ResetTokenHash      *string    `db:"reset_token_hash" json:"-"`
	ResetTokenExpiresAt *time.Time `db:"reset_token_expires_at" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
