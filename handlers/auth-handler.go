package handler

import (
	"errors"
	"net/mail"
	"regexp"

	"github.com/davidalvz/pixelmuse/models"
	"github.com/davidalvz/pixelmuse/storage"
	"github.com/gofiber/fiber/v2"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"credits":  user.Credits,
	}
}

// Register creates a user with the default credit grant. There is no
// password; login is a lookup-only stub.
func (h *Handler) Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	var input RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid user data",
		})
	}

	if input.Username == "" || len(input.Username) > 50 || !usernamePattern.MatchString(input.Username) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid user data",
		})
	}
	if _, err := mail.ParseAddress(input.Email); err != nil || len(input.Email) > 255 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid user data",
		})
	}

	// Existing email means an existing account, same as the uniqueness
	// check the store performs; kept as a friendlier fast path.
	existing, err := h.store.GetUserByEmail(input.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create user",
		})
	}
	if existing != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "User already exists",
		})
	}

	user, err := h.store.CreateUser(&models.User{
		Username: input.Username,
		Email:    input.Email,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "User already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create user",
		})
	}

	return c.JSON(fiber.Map{"user": userResponse(user)})
}

// Login looks the user up by email or username. No password verification
// happens here; this is an explicit placeholder, not a security boundary.
func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email"`
		Username string `json:"username"`
	}

	var input LoginRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Login failed",
		})
	}

	var user *models.User
	var err error
	if input.Email != "" {
		user, err = h.store.GetUserByEmail(input.Email)
	} else if input.Username != "" {
		user, err = h.store.GetUserByUsername(input.Username)
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Login failed",
		})
	}

	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "User not found",
		})
	}

	return c.JSON(fiber.Map{"user": userResponse(user)})
}
