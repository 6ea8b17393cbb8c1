package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bhramann/marketplace-api/internal/domain"
	"github.com/bhramann/marketplace-api/internal/service"
	"github.com/bhramann/marketplace-api/internal/util"
)

const forgotPasswordMessage = "If the email you entered is registered, you will receive a password reset link shortly. Please check your inbox and spam folder."

type AuthHandler struct {
	auth *service.AuthService
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService) {
	handler := &AuthHandler{auth: auth}

	g := e.Group("/api/auth")
	g.POST("/signup", handler.signup)
	g.POST("/login", handler.login)
	g.POST("/verify-otp", handler.verifyOTP)
	g.POST("/resend-otp", handler.resendOTP)
	g.POST("/forgot-password", handler.forgotPassword)
	g.POST("/reset-password/:token", handler.resetPassword)

	protected := g.Group("", RequireAuth(auth), RequireVerified())
	protected.GET("/profile", handler.getProfile)
	protected.PUT("/profile", handler.updateProfile)
	protected.POST("/request-password-otp", handler.requestPasswordOTP)
	protected.PUT("/password", handler.changePassword)
}

func (h *AuthHandler) signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	user, err := h.auth.Signup(c.Request().Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     roleFromString(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return c.JSON(http.StatusConflict, util.Error("Email already in use"))
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not complete signup"))
		}
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"message": "Signup successful, OTP sent to email",
		"userId":  user.ID,
	})
}

func (h *AuthHandler) verifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("userId must be a valid UUID"))
	}

	user, token, _, err := h.auth.VerifySignupOTP(c.Request().Context(), userID, strings.TrimSpace(req.OTP))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("User not found"))
		case errors.Is(err, service.ErrAlreadyVerified):
			return c.JSON(http.StatusBadRequest, util.Error("User already verified"))
		case errors.Is(err, service.ErrInvalidOrExpiredOTP):
			return c.JSON(http.StatusBadRequest, util.Error("Invalid or expired OTP"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not verify OTP"))
		}
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"token": token,
		"user":  toUserResponse(user),
	})
}

func (h *AuthHandler) resendOTP(c echo.Context) error {
	var req ResendOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("userId must be a valid UUID"))
	}

	if err := h.auth.ResendSignupOTP(c.Request().Context(), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("User not found"))
		case errors.Is(err, service.ErrAlreadyVerified):
			return c.JSON(http.StatusBadRequest, util.Error("User already verified"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not resend OTP"))
		}
	}
	return c.JSON(http.StatusOK, util.Message("OTP resent to email"))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	user, token, _, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, util.Error("Invalid credentials"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not log in"))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"token": token,
		"user":  toUserResponse(user),
	})
}

// forgotPassword must answer identically for registered and unregistered
// emails, so the only divergent outcome is an upstream failure.
func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not process request"))
	}
	return c.JSON(http.StatusOK, util.Message(forgotPasswordMessage))
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	err := h.auth.ResetPassword(c.Request().Context(), c.Param("token"), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken):
			return c.JSON(http.StatusBadRequest, util.Error("Invalid or expired token"))
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not reset password"))
		}
	}
	return c.JSON(http.StatusOK, util.Message("Password has been reset successfully"))
}

func (h *AuthHandler) getProfile(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("not authorized"))
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) updateProfile(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("not authorized"))
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	updated, err := h.auth.UpdateProfile(c.Request().Context(), user.ID, req.Name, req.Email, req.Phone, req.Bio)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("User not found"))
		case errors.Is(err, service.ErrEmailTaken):
			return c.JSON(http.StatusConflict, util.Error("Email already in use"))
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update profile"))
		}
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"message": "Profile updated",
		"user":    toUserResponse(updated),
	})
}

func (h *AuthHandler) requestPasswordOTP(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("not authorized"))
	}

	var req RequestPasswordOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if strings.TrimSpace(req.Current) == "" {
		return c.JSON(http.StatusBadRequest, util.Error("Current password is required"))
	}

	if err := h.auth.RequestPasswordChangeOTP(c.Request().Context(), user.ID, req.Current); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, util.Error("Current password is incorrect"))
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("User not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not send OTP"))
		}
	}
	return c.JSON(http.StatusOK, util.Message("OTP sent to your email"))
}

func (h *AuthHandler) changePassword(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("not authorized"))
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if req.New == "" || req.Confirm == "" || req.OTP == "" {
		return c.JSON(http.StatusBadRequest, util.Error("All fields are required"))
	}
	if req.New != req.Confirm {
		return c.JSON(http.StatusBadRequest, util.Error("New passwords do not match"))
	}

	if err := h.auth.ChangePassword(c.Request().Context(), user.ID, strings.TrimSpace(req.OTP), req.New); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrExpiredOTP):
			return c.JSON(http.StatusBadRequest, util.Error("Invalid or expired OTP"))
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("User not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update password"))
		}
	}
	return c.JSON(http.StatusOK, util.Message("Password updated successfully"))
}

func roleFromString(value string) domain.Role {
	return domain.Role(strings.TrimSpace(strings.ToLower(value)))
}
