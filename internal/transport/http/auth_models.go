package http

import (
	"github.com/bhramann/marketplace-api/internal/domain"
)

// SignupRequest carries registration fields.
type SignupRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
	Password string  `json:"password"`
	Role     string  `json:"role,omitempty"`
}

// LoginRequest carries email login fields.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyOTPRequest confirms a signup code.
type VerifyOTPRequest struct {
	UserID string `json:"userId"`
	OTP    string `json:"otp"`
}

// ResendOTPRequest asks for a fresh signup code.
type ResendOTPRequest struct {
	UserID string `json:"userId"`
}

// ForgotPasswordRequest starts the reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes the reset flow; the raw token travels in the
// URL path.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// UpdateProfileRequest patches profile fields; absent fields stay unchanged.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Bio   *string `json:"bio,omitempty"`
}

// RequestPasswordOTPRequest proves knowledge of the current password before a
// change code is issued.
type RequestPasswordOTPRequest struct {
	Current string `json:"current"`
}

// ChangePasswordRequest commits a new password with the emailed code.
type ChangePasswordRequest struct {
	New     string `json:"new"`
	Confirm string `json:"confirm"`
	OTP     string `json:"otp"`
}

// UserResponse is the sanitized user representation returned by auth
// endpoints.
type UserResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	Role       string  `json:"role"`
	IsVerified bool    `json:"isVerified"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID.String(),
		Name:       user.Name,
		Email:      user.Email,
		Phone:      user.Phone,
		Bio:        user.Bio,
		Role:       string(user.Role),
		IsVerified: user.IsVerified,
	}
}
