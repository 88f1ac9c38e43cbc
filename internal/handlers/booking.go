package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"tutorlink/internal/models"
	"tutorlink/internal/services/booking"
	"tutorlink/internal/utils/response"
)

type BookingHandler struct {
	service booking.Service
}

func NewBookingHandler(service booking.Service) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create books a session with a tutor. Students book for themselves;
// the student_id field exists so admins can book on someone's behalf.
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var req booking.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.StudentID == 0 {
		req.StudentID = claims.UserID
	}

	created, err := h.service.Create(c.UserContext(), claims, req)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Created(c, "booking created", created)
}

// Get returns one booking the caller participates in.
func (h *BookingHandler) Get(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "invalid booking id")
	}

	found, err := h.service.Get(c.UserContext(), claims, id)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "booking", found)
}

// Transition moves a booking along the status machine.
func (h *BookingHandler) Transition(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "invalid booking id")
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil || input.Status == "" {
		return response.BadRequest(c, "target status is required")
	}

	updated, err := h.service.Transition(c.UserContext(), claims, id, input.Status)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "booking updated", updated)
}

// List returns the caller's bookings; admins see everything.
func (h *BookingHandler) List(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var filter booking.ListFilter
	if err := c.QueryParser(&filter); err != nil {
		return response.BadRequest(c, "invalid query parameters")
	}

	bookings, err := h.service.List(c.UserContext(), claims, filter)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "bookings", bookings)
}

// Upcoming returns the caller's future pending sessions, soonest first.
func (h *BookingHandler) Upcoming(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	bookings, err := h.service.Upcoming(c.UserContext(), claims)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "upcoming sessions", bookings)
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	return uint(id), err
}
