package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bhramann/marketplace-api/internal/domain"
	"github.com/bhramann/marketplace-api/internal/repository/ports"
	"github.com/bhramann/marketplace-api/internal/util"
)

// Mailer dispatches transactional mail. Failures are surfaced to the caller:
// a code the user never receives is a failed request, not a silent success.
type Mailer interface {
	SendSignupOTP(ctx context.Context, email, otp string) error
	SendPasswordChangeOTP(ctx context.Context, email, otp string) error
	SendPasswordReset(ctx context.Context, email, resetURL string) error
}

const (
	defaultOTPTTL     = 10 * time.Minute
	defaultResetTTL   = time.Hour
	defaultSessionTTL = 7 * 24 * time.Hour
)

type AuthConfig struct {
	OTPTTL          time.Duration
	ResetTokenTTL   time.Duration
	FrontendBaseURL string
}

type AuthService struct {
	users        ports.UserRepository
	mailer       Mailer
	tokens       *util.JWTManager
	otpTTL       time.Duration
	resetTTL     time.Duration
	frontendBase string
	now          func() time.Time
}

func NewAuthService(users ports.UserRepository, mailer Mailer, tokens *util.JWTManager, cfg AuthConfig) *AuthService {
	otpTTL := cfg.OTPTTL
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	resetTTL := cfg.ResetTokenTTL
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	return &AuthService{
		users:        users,
		mailer:       mailer,
		tokens:       tokens,
		otpTTL:       otpTTL,
		resetTTL:     resetTTL,
		frontendBase: strings.TrimRight(cfg.FrontendBaseURL, "/"),
		now:          time.Now,
	}
}

type SignupInput struct {
	Name     string
	Email    string
	Phone    *string
	Password string
	Role     domain.Role
}

// Signup creates an unverified credential record with a hashed signup OTP
// already in place, then dispatches the raw code. The raw code is never
// persisted or logged.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}

	passwordHash, passwordSalt, err := util.DeriveSecret(input.Password)
	if err != nil {
		return nil, err
	}
	otp, err := util.GenerateOTP()
	if err != nil {
		return nil, err
	}
	otpHash, otpSalt, err := util.DeriveSecret(otp)
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(s.otpTTL)

	user, err := s.users.Create(ctx, &domain.User{
		Name:               name,
		Email:              email,
		Phone:              input.Phone,
		Role:               role,
		PasswordHash:       passwordHash,
		PasswordSalt:       passwordSalt,
		SignupOTPHash:      otpHash,
		SignupOTPSalt:      otpSalt,
		SignupOTPExpiresAt: &expiresAt,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if err := s.mailer.SendSignupOTP(ctx, user.Email, otp); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifySignupOTP flips is_verified exactly once and returns a session token.
func (s *AuthService) VerifySignupOTP(ctx context.Context, userID uuid.UUID, otp string) (*domain.User, string, time.Time, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", time.Time{}, ErrUserNotFound
		}
		return nil, "", time.Time{}, err
	}
	if user.IsVerified {
		return nil, "", time.Time{}, ErrAlreadyVerified
	}
	if !s.verifyOTP(user.SignupOTPHash, user.SignupOTPSalt, user.SignupOTPExpiresAt, otp) {
		return nil, "", time.Time{}, ErrInvalidOrExpiredOTP
	}
	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return nil, "", time.Time{}, err
	}
	user.IsVerified = true
	user.SignupOTPHash = nil
	user.SignupOTPSalt = nil
	user.SignupOTPExpiresAt = nil

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// ResendSignupOTP issues a fresh code, overwriting and thereby invalidating
// the previous one even if it has not yet expired.
func (s *AuthService) ResendSignupOTP(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}
	otp, err := util.GenerateOTP()
	if err != nil {
		return err
	}
	hash, salt, err := util.DeriveSecret(otp)
	if err != nil {
		return err
	}
	if err := s.users.SetSignupOTP(ctx, user.ID, hash, salt, s.now().Add(s.otpTTL)); err != nil {
		return err
	}
	return s.mailer.SendSignupOTP(ctx, user.Email, otp)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}
	if !util.VerifySecret(password, user.PasswordSalt, user.PasswordHash) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// Authenticate resolves a bearer token to its user record.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, name, email, phone, bio *string) (*domain.User, error) {
	if email != nil {
		normalized := normalizeEmail(*email)
		if !strings.Contains(normalized, "@") {
			return nil, fmt.Errorf("%w: invalid email", ErrValidation)
		}
		email = &normalized
	}
	user, err := s.users.UpdateProfile(ctx, userID, name, email, phone, bio)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// RequestPasswordChangeOTP issues a code into the password-change field set.
// The signup field set is untouched: a password-change code requested while a
// signup code is still pending must not invalidate it.
func (s *AuthService) RequestPasswordChangeOTP(ctx context.Context, userID uuid.UUID, currentPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	if !util.VerifySecret(currentPassword, user.PasswordSalt, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	otp, err := util.GenerateOTP()
	if err != nil {
		return err
	}
	hash, salt, err := util.DeriveSecret(otp)
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordChangeOTP(ctx, user.ID, hash, salt, s.now().Add(s.otpTTL)); err != nil {
		return err
	}
	return s.mailer.SendPasswordChangeOTP(ctx, user.Email, otp)
}

// ChangePassword verifies the password-change OTP and commits the new
// password; the repository clears the OTP in the same write as the update.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, otp, newPassword string) error {
	if err := util.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	if !s.verifyOTP(user.PasswordOTPHash, user.PasswordOTPSalt, user.PasswordOTPExpiresAt, otp) {
		return ErrInvalidOrExpiredOTP
	}
	hash, salt, err := util.DeriveSecret(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash, salt)
}

// ForgotPassword issues a reset token for a known email and silently succeeds
// for an unknown one. Callers must return the same response either way.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	token, err := util.GenerateResetToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, user.ID, util.HashResetToken(token), s.now().Add(s.resetTTL)); err != nil {
		return err
	}
	base := s.frontendBase
	if base == "" {
		base = "http://localhost:5173"
	}
	return s.mailer.SendPasswordReset(ctx, user.Email, base+"/reset-password/"+token)
}

// ResetPassword consumes a raw reset token. Wrong, already-consumed and
// timed-out tokens are indistinguishable.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if err := util.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	hash, salt, err := util.DeriveSecret(newPassword)
	if err != nil {
		return err
	}
	ok, err := s.users.ConsumeResetToken(ctx, util.HashResetToken(rawToken), s.now(), hash, salt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetToken
	}
	return nil
}

func (s *AuthService) verifyOTP(hash, salt []byte, expiresAt *time.Time, submitted string) bool {
	if len(hash) == 0 || expiresAt == nil {
		return false
	}
	if s.now().After(*expiresAt) {
		return false
	}
	return util.VerifySecret(submitted, salt, hash)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
