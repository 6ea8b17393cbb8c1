package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bhramann/marketplace-api/internal/domain"
)

const userColumns = `id, name, email, phone, bio, role, password_hash, password_salt, is_verified,
        otp_hash, otp_salt, otp_expires_at,
        pw_otp_hash, pw_otp_salt, pw_otp_expires_at,
        reset_token_hash, reset_token_expires_at,
        created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
        INSERT INTO user_account (name, email, phone, role, password_hash, password_salt, otp_hash, otp_salt, otp_expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + userColumns
	row := r.db.QueryRowxContext(ctx, query,
		user.Name, user.Email, user.Phone, user.Role,
		user.PasswordHash, user.PasswordSalt,
		user.SignupOTPHash, user.SignupOTPSalt, user.SignupOTPExpiresAt,
	)
	var created domain.User
	if err := row.StructScan(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM user_account WHERE id = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM user_account WHERE email = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, email, phone, bio *string) (*domain.User, error) {
	const query = `
        UPDATE user_account
        SET name = COALESCE($2, name),
            email = COALESCE($3, email),
            phone = COALESCE($4, phone),
            bio = COALESCE($5, bio),
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + userColumns
	row := r.db.QueryRowxContext(ctx, query, id, name, email, phone, bio)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	const query = `
        UPDATE user_account
        SET is_verified = TRUE,
            otp_hash = NULL,
            otp_salt = NULL,
            otp_expires_at = NULL,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *UserRepository) SetSignupOTP(ctx context.Context, id uuid.UUID, hash, salt []byte, expiresAt time.Time) error {
	const query = `
        UPDATE user_account
        SET otp_hash = $2,
            otp_salt = $3,
            otp_expires_at = $4,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, hash, salt, expiresAt)
	return err
}

func (r *UserRepository) SetPasswordChangeOTP(ctx context.Context, id uuid.UUID, hash, salt []byte, expiresAt time.Time) error {
	const query = `
        UPDATE user_account
        SET pw_otp_hash = $2,
            pw_otp_salt = $3,
            pw_otp_expires_at = $4,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, hash, salt, expiresAt)
	return err
}

// UpdatePassword lands the new password material and the password-change OTP
// clear in a single statement.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash, salt []byte) error {
	const query = `
        UPDATE user_account
        SET password_hash = $2,
            password_salt = $3,
            pw_otp_hash = NULL,
            pw_otp_salt = NULL,
            pw_otp_expires_at = NULL,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, hash, salt)
	return err
}

func (r *UserRepository) SetResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error {
	const query = `
        UPDATE user_account
        SET reset_token_hash = $2,
            reset_token_expires_at = $3,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, digest, expiresAt)
	return err
}

// ConsumeResetToken relies on the WHERE clause to make the password update and
// token clear one atomic write: either both land or neither does.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, digest string, now time.Time, hash, salt []byte) (bool, error) {
	const query = `
        UPDATE user_account
        SET password_hash = $3,
            password_salt = $4,
            reset_token_hash = NULL,
            reset_token_expires_at = NULL,
            updated_at = NOW()
        WHERE reset_token_hash = $1 AND reset_token_expires_at > $2
    `
	res, err := r.db.ExecContext(ctx, query, digest, now, hash, salt)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
