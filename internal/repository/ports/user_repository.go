package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bhramann/marketplace-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email, phone, bio *string) (*domain.User, error)

	// MarkVerified flips is_verified and clears the signup OTP fields in one
	// write.
	MarkVerified(ctx context.Context, id uuid.UUID) error
	SetSignupOTP(ctx context.Context, id uuid.UUID, hash, salt []byte, expiresAt time.Time) error
	SetPasswordChangeOTP(ctx context.Context, id uuid.UUID, hash, salt []byte, expiresAt time.Time) error
	// UpdatePassword replaces the password material and clears the
	// password-change OTP fields in the same write.
	UpdatePassword(ctx context.Context, id uuid.UUID, hash, salt []byte) error

	SetResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error
	// ConsumeResetToken atomically replaces the password material and clears
	// the reset digest for the record whose stored digest matches and whose
	// expiry is still in the future. Returns false when no such record exists.
	ConsumeResetToken(ctx context.Context, digest string, now time.Time, hash, salt []byte) (bool, error)
}
