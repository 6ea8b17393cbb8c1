package http

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bhramann/marketplace-api/internal/domain"
	"github.com/bhramann/marketplace-api/internal/repository/ports"
	"github.com/bhramann/marketplace-api/internal/service"
	"github.com/bhramann/marketplace-api/internal/util"
)

// stubUserRepo implements only the methods each test exercises; anything else
// panics through the embedded nil interface.
type stubUserRepo struct {
	ports.UserRepository
	user *domain.User
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if r.user != nil && r.user.Email == email {
		result := *r.user
		return &result, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if r.user != nil && r.user.ID == id {
		result := *r.user
		return &result, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubUserRepo) SetResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error {
	return nil
}

func (r *stubUserRepo) ConsumeResetToken(ctx context.Context, digest string, now time.Time, hash, salt []byte) (bool, error) {
	return false, nil
}

type noopMailer struct{}

func (noopMailer) SendSignupOTP(ctx context.Context, email, otp string) error         { return nil }
func (noopMailer) SendPasswordChangeOTP(ctx context.Context, email, otp string) error { return nil }
func (noopMailer) SendPasswordReset(ctx context.Context, email, resetURL string) error {
	return nil
}

func newTestServer(repo ports.UserRepository) (*echo.Echo, *service.AuthService) {
	auth := service.NewAuthService(repo, noopMailer{}, util.NewJWTManager("test-secret", time.Hour), service.AuthConfig{
		FrontendBaseURL: "https://app.example.com",
	})
	e := echo.New()
	RegisterAuth(e, auth)
	return e, auth
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// A registered and an unregistered email must be indistinguishable from the
// response alone.
func TestForgotPasswordUniformResponse(t *testing.T) {
	repo := &stubUserRepo{user: &domain.User{
		ID:    uuid.New(),
		Email: "known@example.com",
	}}
	e, _ := newTestServer(repo)

	known := postJSON(e, "/api/auth/forgot-password", `{"email":"known@example.com"}`)
	unknown := postJSON(e, "/api/auth/forgot-password", `{"email":"unknown@example.com"}`)

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("expected 200 for both, got %d and %d", known.Code, unknown.Code)
	}
	if known.Body.String() != unknown.Body.String() {
		t.Fatalf("responses differ:\nknown:   %s\nunknown: %s", known.Body.String(), unknown.Body.String())
	}
}

func TestResetPasswordInvalidToken(t *testing.T) {
	e, _ := newTestServer(&stubUserRepo{})

	rec := postJSON(e, "/api/auth/reset-password/deadbeef", `{"password":"long-enough-pass"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid or expired token") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestVerifyOTPRejectsMalformedUserID(t *testing.T) {
	e, _ := newTestServer(&stubUserRepo{})

	rec := postJSON(e, "/api/auth/verify-otp", `{"userId":"not-a-uuid","otp":"123456"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	e, _ := newTestServer(&stubUserRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without Authorization header, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer bogus-token")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unparsable token, got %d", rec.Code)
	}
}

func TestUnverifiedAccountBlocked(t *testing.T) {
	user := &domain.User{
		ID:         uuid.New(),
		Email:      "pending@example.com",
		IsVerified: false,
	}
	repo := &stubUserRepo{user: user}
	e, _ := newTestServer(repo)

	tokens := util.NewJWTManager("test-secret", time.Hour)
	token, _, err := tokens.Generate(user.ID, user.Email, string(domain.RoleUser))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unverified account, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not verified") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
