package service

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already in use")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountNotVerified  = errors.New("account not verified")
	ErrAlreadyVerified     = errors.New("user already verified")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired OTP")
	ErrInvalidResetToken   = errors.New("invalid or expired token")

	ErrPackageNotFound  = errors.New("package not found")
	ErrPackageForbidden = errors.New("not allowed to manage this package")
	ErrValidation       = errors.New("validation failed")
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
