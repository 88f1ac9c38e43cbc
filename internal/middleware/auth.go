// Package middleware provides HTTP middleware for the fiber app:
// JWT authentication and role gating.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"tutorlink/internal/config"
	"tutorlink/internal/models"
	"tutorlink/internal/services/auth"
)

// AuthMiddleware validates bearer tokens and attaches the user claims
// to the request context. No protected handler runs without it.
type AuthMiddleware struct {
	authService auth.Service
	logger      *zap.Logger
}

func NewAuthMiddleware(authService auth.Service, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		logger:      logger,
	}
}

// Handler rejects the request with 401 when the Authorization header is
// missing, malformed, carries a bad signature, is expired, or belongs
// to a logged-out session (token version mismatch).
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return unauthorized(c, "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.GetEnv("JWT_SECRET", "")), nil
	})
	if err != nil || !token.Valid {
		m.logger.Debug("token validation failed", zap.Error(err))
		return unauthorized(c, "invalid token")
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok {
		return unauthorized(c, "invalid claims")
	}

	// A logout bumps the stored version; older tokens stop working.
	currentVersion, err := m.authService.GetUserTokenVersion(claims.UserID)
	if err != nil {
		m.logger.Debug("token version lookup failed", zap.Uint("user_id", claims.UserID), zap.Error(err))
		return unauthorized(c, "invalid token")
	}
	if claims.TokenVersion != currentVersion {
		return unauthorized(c, "session expired")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// RequireRole gates a route group to one exact role. Admins pass every
// role gate.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok || claims == nil {
			return unauthorized(c, "unauthorized")
		}
		if claims.Role != role && claims.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient permissions"})
		}
		return c.Next()
	}
}

// RequireAdmin gates a route group to admins.
func RequireAdmin() fiber.Handler {
	return RequireRole(models.RoleAdmin)
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": message})
}
