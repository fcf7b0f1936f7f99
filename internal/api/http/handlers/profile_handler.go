package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/service"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// ProfileHandler manages profile picture upload and retrieval.
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: profileService}
}

// Upload POST /profile-picture. Expects a multipart form with a "file" part.
func (h *ProfileHandler) Upload(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("no file uploaded", nil)
	}

	file, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	picture, err := h.service.Upload(c.Context(), principal.UserID, header.Header.Get("Content-Type"), data)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"message": "profile picture uploaded successfully",
			"picture": dto.ProfilePictureResponse{
				ContentType: picture.ContentType,
				SizeBytes:   len(picture.Data),
				URL:         picture.URL,
			},
		},
	})
}

// Get GET /profile-picture. Serves the raw image bytes.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	picture, err := h.service.Get(c.Context(), principal.UserID)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, picture.ContentType)
	return c.Send(picture.Data)
}
