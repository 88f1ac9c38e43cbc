package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tutorlink/internal/models"
)

type fakeAuthService struct {
	tokenVersion int
}

func (f *fakeAuthService) Register(string, string, string, string) (*models.User, error) {
	return nil, nil
}
func (f *fakeAuthService) Login(string, string) (*models.User, string, string, error) {
	return nil, "", "", nil
}
func (f *fakeAuthService) RefreshTokens(string) (string, string, error) { return "", "", nil }
func (f *fakeAuthService) Logout(uint) error                            { return nil }
func (f *fakeAuthService) GetUserByID(uint) (*models.User, error)       { return &models.User{}, nil }

func (f *fakeAuthService) GetUserTokenVersion(uint) (int, error) {
	return f.tokenVersion, nil
}

func signToken(t *testing.T, secret string, expiresAt time.Time, version int) string {
	t.Helper()
	claims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID:       7,
		Role:         models.RoleStudent,
		TokenVersion: version,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newTestApp(t *testing.T) (*fiber.App, *int) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	handlerRuns := 0
	app := fiber.New()
	m := NewAuthMiddleware(&fakeAuthService{tokenVersion: 1}, zap.NewNop())
	app.Get("/protected", m.Handler, func(c *fiber.Ctx) error {
		handlerRuns++
		return c.SendStatus(fiber.StatusOK)
	})
	return app, &handlerRuns
}

func TestAuthMiddleware_RejectsBeforeHandler(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong signature", "Bearer " + mustSign(t, "other-secret")},
		{"expired token", "Bearer " + mustSignExpired(t)},
		{"stale token version", "Bearer " + mustSignVersion(t, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, handlerRuns := newTestApp(t)

			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Zero(t, *handlerRuns, "handler must not run on auth failure")
		})
	}
}

func TestAuthMiddleware_ValidTokenReachesHandler(t *testing.T) {
	app, handlerRuns := newTestApp(t)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", time.Now().Add(time.Hour), 1))
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, *handlerRuns)
}

func TestRequireRole(t *testing.T) {
	app := fiber.New()
	app.Get("/tutor-only",
		func(c *fiber.Ctx) error {
			c.Locals("claims", &models.UserClaims{UserID: 1, Role: c.Get("X-Test-Role")})
			return c.Next()
		},
		RequireRole(models.RoleTutor),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)

	tests := []struct {
		role string
		want int
	}{
		{models.RoleTutor, fiber.StatusOK},
		{models.RoleAdmin, fiber.StatusOK},
		{models.RoleStudent, fiber.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/tutor-only", nil)
		req.Header.Set("X-Test-Role", tt.role)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.StatusCode, "role %s", tt.role)
	}
}

func mustSign(t *testing.T, secret string) string {
	return signToken(t, secret, time.Now().Add(time.Hour), 1)
}

func mustSignExpired(t *testing.T) string {
	return signToken(t, "test-secret", time.Now().Add(-time.Hour), 1)
}

func mustSignVersion(t *testing.T, version int) string {
	return signToken(t, "test-secret", time.Now().Add(time.Hour), version)
}
