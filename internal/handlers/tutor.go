package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tutorlink/internal/models"
	"tutorlink/internal/services/tutor"
	"tutorlink/internal/utils/response"
)

type TutorHandler struct {
	service tutor.Service
}

func NewTutorHandler(service tutor.Service) *TutorHandler {
	return &TutorHandler{service: service}
}

// ListApproved is the student-facing directory of verified tutors.
func (h *TutorHandler) ListApproved(c *fiber.Ctx) error {
	profiles, err := h.service.ListApproved(c.UserContext(), c.Query("subject"))
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "tutors", profiles)
}

// GetProfile returns one tutor's public profile.
func (h *TutorHandler) GetProfile(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "invalid tutor id")
	}

	profile, err := h.service.GetProfile(c.UserContext(), id)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "tutor profile", profile)
}

// UpsertProfile creates or updates the caller's own profile.
func (h *TutorHandler) UpsertProfile(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input tutor.ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	profile, err := h.service.UpsertProfile(c.UserContext(), claims, input)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "profile saved", profile)
}

// CreateCourse adds a course owned by the caller.
func (h *TutorHandler) CreateCourse(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input tutor.CourseInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	course, err := h.service.CreateCourse(c.UserContext(), claims, input)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Created(c, "course created", course)
}

// UpdateCourse edits one of the caller's courses.
func (h *TutorHandler) UpdateCourse(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "invalid course id")
	}

	var input tutor.CourseInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	course, err := h.service.UpdateCourse(c.UserContext(), claims, id, input)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "course updated", course)
}

// DeleteCourse removes one of the caller's courses.
func (h *TutorHandler) DeleteCourse(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "invalid course id")
	}

	if err := h.service.DeleteCourse(c.UserContext(), claims, id); err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "course deleted", nil)
}

// ListCourses returns the caller's courses.
func (h *TutorHandler) ListCourses(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	courses, err := h.service.ListCourses(c.UserContext(), claims.UserID)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "courses", courses)
}
