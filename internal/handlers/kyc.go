package handlers

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tutorlink/internal/config"
	"tutorlink/internal/models"
	"tutorlink/internal/services/kyc"
	"tutorlink/internal/utils/response"
)

// kycDocumentFields are the multipart field names a submission must carry.
var kycDocumentFields = []string{"id_document", "photo", "certificate", "resume"}

type KYCHandler struct {
	service kyc.Service
}

func NewKYCHandler(service kyc.Service) *KYCHandler {
	return &KYCHandler{service: service}
}

// Upload accepts the four verification documents as one multipart form.
// All four files must be present; nothing is stored otherwise.
func (h *KYCHandler) Upload(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	files := make(map[string]*multipart.FileHeader, len(kycDocumentFields))
	for _, field := range kycDocumentFields {
		file, err := c.FormFile(field)
		if err != nil {
			return response.BadRequest(c, fmt.Sprintf("missing required document: %s", field))
		}
		files[field] = file
	}

	uploadDir := config.GetEnv("UPLOAD_DIR", "./uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return response.HandleError(c, err)
	}
	urls := make(map[string]string, len(files))
	for field, file := range files {
		name := fmt.Sprintf("%d-%s-%s%s", claims.UserID, field, uuid.NewString(), filepath.Ext(file.Filename))
		dest := filepath.Join(uploadDir, name)
		if err := c.SaveFile(file, dest); err != nil {
			return response.HandleError(c, err)
		}
		urls[field] = dest
	}

	record, err := h.service.Submit(c.UserContext(), claims, kyc.Documents{
		IDDocumentURL:  urls["id_document"],
		PhotoURL:       urls["photo"],
		CertificateURL: urls["certificate"],
		ResumeURL:      urls["resume"],
	})
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Created(c, "documents submitted", record)
}

// Status returns the caller's verification state.
func (h *KYCHandler) Status(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	record, err := h.service.Status(c.UserContext(), claims)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "kyc status", record)
}

// ListPending returns submissions awaiting review.
func (h *KYCHandler) ListPending(c *fiber.Ctx) error {
	records, err := h.service.ListPending(c.UserContext())
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "pending submissions", records)
}

// Approve marks a pending submission approved.
func (h *KYCHandler) Approve(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "invalid record id")
	}

	record, err := h.service.Approve(c.UserContext(), claims, id)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "submission approved", record)
}

// Reject marks a pending submission rejected with a reason.
func (h *KYCHandler) Reject(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "invalid record id")
	}

	var input struct {
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	record, err := h.service.Reject(c.UserContext(), claims, id, input.Comment)
	if err != nil {
		return response.HandleError(c, err)
	}
	return response.Success(c, "submission rejected", record)
}
