package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"tutorlink/internal/models"
	"tutorlink/internal/services/auth"
	"tutorlink/internal/utils/response"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a student or tutor account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	user, err := h.authService.Register(input.Email, input.Name, input.Password, input.Role)
	if err != nil {
		return response.HandleError(c, err)
	}

	return response.Created(c, "account created", fiber.Map{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	})
}

// Login authenticates a user and returns a token pair.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if input.Email == "" || input.Password == "" {
		return response.BadRequest(c, "email and password are required")
	}

	user, accessToken, refreshToken, err := h.authService.Login(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return response.Unauthorized(c, "invalid email or password")
		}
		return response.HandleError(c, err)
	}

	return response.Success(c, "logged in", fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Refresh rotates the token pair.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil || input.RefreshToken == "" {
		return response.Unauthorized(c, "refresh token not provided")
	}

	accessToken, refreshToken, err := h.authService.RefreshTokens(input.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, "invalid refresh token")
	}

	return response.Success(c, "tokens refreshed", fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Logout invalidates every outstanding token of the caller.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	if err := h.authService.Logout(claims.UserID); err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "logged out", nil)
}
