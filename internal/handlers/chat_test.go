package handlers

import (
	"context"
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

type fakeChatService struct{}

func (f *fakeChatService) Send(context.Context, *models.UserClaims, uint, string) (*models.Message, error) {
	return &models.Message{}, nil
}

func (f *fakeChatService) History(context.Context, *models.UserClaims, uint) ([]models.Message, error) {
	return nil, nil
}

func (f *fakeChatService) Authorize(context.Context, *models.UserClaims, uint) error {
	return nil
}

func signChatToken(t *testing.T, version int) string {
	t.Helper()
	claims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID:       7,
		Role:         models.RoleStudent,
		TokenVersion: version,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newUpgradeApp(t *testing.T, storedVersion int) (*fiber.App, *int) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	upgrades := 0
	h := NewChatHandler(&fakeChatService{}, nil, &fakeAuthService{tokenVersion: storedVersion}, zap.NewNop())
	app := fiber.New()
	app.Get("/ws/booking/:id", h.Upgrade, func(c *fiber.Ctx) error {
		upgrades++
		return c.SendStatus(fiber.StatusOK)
	})
	return app, &upgrades
}

func TestUpgrade_RevokedTokenRejected(t *testing.T) {
	tests := []struct {
		name          string
		tokenVersion  int
		storedVersion int
		want          int
	}{
		{"current version joins", 1, 1, fiber.StatusOK},
		{"stale version rejected after logout", 0, 1, fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, upgrades := newUpgradeApp(t, tt.storedVersion)

			req := httptest.NewRequest("GET", "/ws/booking/1?token="+signChatToken(t, tt.tokenVersion), nil)
			req.Header.Set("Connection", "Upgrade")
			req.Header.Set("Upgrade", "websocket")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want != fiber.StatusOK {
				assert.Zero(t, *upgrades, "socket handler must not run for revoked tokens")
			}
		})
	}
}

func TestUpgrade_PlainRequestRequiresUpgradeHeaders(t *testing.T) {
	app, upgrades := newUpgradeApp(t, 1)

	req := httptest.NewRequest("GET", "/ws/booking/1?token="+signChatToken(t, 1), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
	assert.Zero(t, *upgrades)
}
