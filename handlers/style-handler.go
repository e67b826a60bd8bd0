package handler

import (
	"errors"

	"github.com/davidalvz/pixelmuse/models"
	"github.com/davidalvz/pixelmuse/storage"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListStyles(c *fiber.Ctx) error {
	styles, err := h.store.GetSavedStyles(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to get styles",
		})
	}

	return c.JSON(fiber.Map{"styles": styles})
}

func (h *Handler) CreateStyle(c *fiber.Ctx) error {
	type StyleRequest struct {
		UserID            string   `json:"userId"`
		Name              string   `json:"name"`
		BaseStyle         string   `json:"baseStyle"`
		Refinement        string   `json:"refinement"`
		ReferenceImageURL string   `json:"referenceImageUrl"`
		Tags              []string `json:"tags"`
	}

	var input StyleRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid style data",
		})
	}

	if input.UserID == "" || input.Name == "" || input.BaseStyle == "" ||
		len(input.Name) > 100 || len(input.BaseStyle) > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid style data",
		})
	}

	style, err := h.store.CreateSavedStyle(&models.SavedStyle{
		UserID:            input.UserID,
		Name:              input.Name,
		BaseStyle:         input.BaseStyle,
		Refinement:        input.Refinement,
		ReferenceImageURL: input.ReferenceImageURL,
		Tags:              input.Tags,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create style",
		})
	}

	return c.JSON(fiber.Map{"style": style})
}

func (h *Handler) UpdateStyle(c *fiber.Ctx) error {
	type StyleUpdateRequest struct {
		Name              *string   `json:"name"`
		BaseStyle         *string   `json:"baseStyle"`
		Refinement        *string   `json:"refinement"`
		ReferenceImageURL *string   `json:"referenceImageUrl"`
		Tags              *[]string `json:"tags"`
	}

	var input StyleUpdateRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid style data",
		})
	}

	style, err := h.store.UpdateSavedStyle(c.Params("id"), storage.SavedStyleUpdate{
		Name:              input.Name,
		BaseStyle:         input.BaseStyle,
		Refinement:        input.Refinement,
		ReferenceImageURL: input.ReferenceImageURL,
		Tags:              input.Tags,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Style not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update style",
		})
	}

	return c.JSON(fiber.Map{"style": style})
}

// DeleteStyle is idempotent: deleting an unknown id succeeds.
func (h *Handler) DeleteStyle(c *fiber.Ctx) error {
	if err := h.store.DeleteSavedStyle(c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to delete style",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
