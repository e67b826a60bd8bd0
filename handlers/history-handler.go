package handler

import (
	"errors"

	"github.com/davidalvz/pixelmuse/storage"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	history, err := h.store.GetImageHistory(c.Params("userId"), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to get history",
		})
	}

	return c.JSON(fiber.Map{"history": history})
}

func (h *Handler) GetHistoryItem(c *fiber.Ctx) error {
	item, err := h.store.GetImageHistoryItem(c.Params("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "History item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to get history item",
		})
	}

	return c.JSON(fiber.Map{"item": item})
}
