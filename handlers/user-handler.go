package handler

import (
	"errors"

	"github.com/davidalvz/pixelmuse/models"
	"github.com/davidalvz/pixelmuse/storage"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetUser(c *fiber.Ctx) error {
	user, err := h.store.GetUser(c.Params("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to get user",
		})
	}

	return c.JSON(fiber.Map{"user": userResponse(user)})
}

// UpdateCredits overwrites the user's balance.
func (h *Handler) UpdateCredits(c *fiber.Ctx) error {
	type CreditsRequest struct {
		Credits *int `json:"credits"`
	}

	var input CreditsRequest
	if err := c.BodyParser(&input); err != nil || input.Credits == nil || *input.Credits < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid credits value",
		})
	}

	if err := h.store.UpdateUserCredits(c.Params("id"), *input.Credits); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update credits",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// UpdatePreferences replaces the user's style preference record.
func (h *Handler) UpdatePreferences(c *fiber.Ctx) error {
	var input models.Preferences
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid preferences data",
		})
	}

	if err := h.store.UpdateUserPreferences(c.Params("id"), &input); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update preferences",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
