package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"tutorlink/internal/models"
	"tutorlink/internal/services/auth"
	"tutorlink/internal/services/chat"
	"tutorlink/internal/utils"
	"tutorlink/internal/utils/response"
)

type ChatHandler struct {
	service     chat.Service
	hub         *chat.Hub
	authService auth.Service
	logger      *zap.Logger
}

func NewChatHandler(service chat.Service, hub *chat.Hub, authService auth.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		service:     service,
		hub:         hub,
		authService: authService,
		logger:      logger,
	}
}

// History returns the persisted messages of a booking.
func (h *ChatHandler) History(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "invalid booking id")
	}

	messages, err := h.service.History(c.UserContext(), claims, id)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "messages", messages)
}

// Send persists a message and mirrors it into the booking's room.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "invalid booking id")
	}

	var input struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	message, err := h.service.Send(c.UserContext(), claims, id, input.Body)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Created(c, "message sent", message)
}

// Upgrade authenticates the socket request before the protocol switch.
// Browsers cannot set headers on websocket requests, so the token comes
// in as a query parameter.
func (h *ChatHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	_, claims, err := utils.ParseToken(c.Query("token"))
	if err != nil {
		return response.Unauthorized(c, "invalid token")
	}

	// Same revocation rule as the HTTP gate: a logout bumps the stored
	// version, and tokens minted before it stop working here too.
	currentVersion, err := h.authService.GetUserTokenVersion(claims.UserID)
	if err != nil || claims.TokenVersion != currentVersion {
		return response.Unauthorized(c, "token has been revoked")
	}

	bookingID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid booking id")
	}

	if err := h.service.Authorize(c.UserContext(), claims, uint(bookingID)); err != nil {
		return response.HandleError(c, err)
	}

	c.Locals("wsClaims", claims)
	c.Locals("wsBookingID", uint(bookingID))
	return c.Next()
}

// Socket runs the room loop: join, relay inbound messages through the
// chat service (which persists and broadcasts), leave on disconnect.
func (h *ChatHandler) Socket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		claims := conn.Locals("wsClaims").(*models.UserClaims)
		bookingID := conn.Locals("wsBookingID").(uint)

		h.hub.Join(bookingID, conn)
		defer func() {
			h.hub.Leave(bookingID, conn)
			_ = conn.Close()
		}()

		for {
			var input struct {
				Body string `json:"body"`
			}
			if err := conn.ReadJSON(&input); err != nil {
				return
			}
			if _, err := h.service.Send(context.Background(), claims, bookingID, input.Body); err != nil {
				h.logger.Debug("socket message rejected",
					zap.Uint("booking_id", bookingID),
					zap.Error(err))
			}
		}
	})
}
