package router

import (
	handler "github.com/davidalvz/pixelmuse/handlers"
	"github.com/davidalvz/pixelmuse/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App, h *handler.Handler) {
	api := app.Group("/api", logger.New())

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)

	// Users
	users := api.Group("/users")
	users.Get("/:id", h.GetUser)
	users.Patch("/:id/credits", h.UpdateCredits)
	users.Patch("/:id/preferences", h.UpdatePreferences)

	// Generation
	api.Post("/generate", middleware.GenerateRateLimiter(), h.Generate)

	// Saved styles
	styles := api.Group("/styles")
	styles.Get("/:userId", h.ListStyles)
	styles.Post("/", h.CreateStyle)
	styles.Patch("/:id", h.UpdateStyle)
	styles.Delete("/:id", h.DeleteStyle)

	// History. The item route must register before the catch-all userId one.
	history := api.Group("/history")
	history.Get("/item/:id", h.GetHistoryItem)
	history.Get("/:userId", h.ListHistory)

	// Reference uploads
	references := api.Group("/references")
	references.Get("/:userId", h.ListReferences)
	references.Post("/", h.CreateReference)
	references.Post("/upload", h.UploadReference)
	references.Delete("/:id", h.DeleteReference)
}
