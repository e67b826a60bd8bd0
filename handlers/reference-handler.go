package handler

import (
	"github.com/davidalvz/pixelmuse/models"
	"github.com/davidalvz/pixelmuse/uploads"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListReferences(c *fiber.Ctx) error {
	references, err := h.store.GetReferenceUploads(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to get references",
		})
	}

	return c.JSON(fiber.Map{"references": references})
}

// CreateReference records an already-hosted reference image.
func (h *Handler) CreateReference(c *fiber.Ctx) error {
	type ReferenceRequest struct {
		UserID   string `json:"userId"`
		Filename string `json:"filename"`
		URL      string `json:"url"`
	}

	var input ReferenceRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid reference data",
		})
	}

	if input.UserID == "" || input.Filename == "" || input.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid reference data",
		})
	}

	reference, err := h.store.CreateReferenceUpload(&models.ReferenceUpload{
		UserID:   input.UserID,
		Filename: input.Filename,
		URL:      input.URL,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create reference",
		})
	}

	return c.JSON(fiber.Map{"reference": reference})
}

// UploadReference accepts a multipart image, normalizes it, stores it in the
// bucket, and records the resulting URL.
func (h *Handler) UploadReference(c *fiber.Ctx) error {
	if h.uploader == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Upload storage not configured",
		})
	}

	userID := c.FormValue("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid reference data",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No file provided",
		})
	}

	blobFile, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error opening the file",
		})
	}
	defer blobFile.Close()

	normalized, err := uploads.Normalize(blobFile)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "File is not a usable image",
		})
	}

	url, err := h.uploader.Upload(c.UserContext(), normalized, file.Filename)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error uploading the file",
		})
	}

	reference, err := h.store.CreateReferenceUpload(&models.ReferenceUpload{
		UserID:   userID,
		Filename: file.Filename,
		URL:      url,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create reference",
		})
	}

	return c.JSON(fiber.Map{"reference": reference})
}

// DeleteReference is idempotent, matching style deletion.
func (h *Handler) DeleteReference(c *fiber.Ctx) error {
	if err := h.store.DeleteReferenceUpload(c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to delete reference",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
