package main

import (
	"context"
	"fmt"
	"log"

	"github.com/davidalvz/pixelmuse/config"
	"github.com/davidalvz/pixelmuse/database"
	handler "github.com/davidalvz/pixelmuse/handlers"
	"github.com/davidalvz/pixelmuse/middleware"
	"github.com/davidalvz/pixelmuse/models"
	"github.com/davidalvz/pixelmuse/providers"
	"github.com/davidalvz/pixelmuse/router"
	"github.com/davidalvz/pixelmuse/storage"
	"github.com/davidalvz/pixelmuse/uploads"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
)

func buildStore() storage.Store {
	if dsn := config.ConfigOr("DATABASE_URL", ""); dsn != "" {
		db := database.GetDB()
		if err := database.MigrateModels(
			&models.User{},
			&models.SavedStyle{},
			&models.ImageHistory{},
			&models.ReferenceUpload{},
		); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		return storage.NewGormStore(db)
	}

	log.Println("DATABASE_URL not set, using in-memory storage")
	return storage.NewMemStore()
}

func buildProvider() providers.ImageProvider {
	switch config.ConfigOr("IMAGE_PROVIDER", "openai") {
	case "gemini":
		provider, err := providers.NewGeminiProvider(context.Background())
		if err != nil {
			log.Printf("Warning: gemini provider unavailable: %v", err)
			return nil
		}
		return provider
	default:
		apiKey := config.ConfigOr("OPENAI_API_KEY", "")
		if apiKey == "" {
			log.Println("Warning: OPENAI_API_KEY not found. Image generation will not work.")
		}
		return providers.NewOpenAIProvider(apiKey)
	}
}

func buildUploader() *uploads.ClientUploader {
	bucket := config.ConfigOr("GCS_BUCKET_NAME", "")
	if bucket == "" {
		log.Println("Warning: GCS_BUCKET_NAME not set. Reference uploads will not work.")
		return nil
	}

	uploader, err := uploads.NewClientUploader(context.Background(), bucket)
	if err != nil {
		log.Printf("Warning: upload storage unavailable: %v", err)
		return nil
	}
	return uploader
}

func main() {
	store := buildStore()
	defer func() {
		if err := database.CloseDB(); err != nil {
			log.Printf("Error closing the database connection: %v", err)
		}
	}()

	h := handler.New(store, buildProvider(), buildUploader())

	app := fiber.New(fiber.Config{
		BodyLimit: 10 << 20, // reference uploads
	})
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(middleware.GlobalRateLimiter())

	router.SetupRoutes(app, h)

	port := config.ConfigOr("PORT", "5000")
	fmt.Printf("Server is listening at the port %s\n", port)
	log.Fatal(app.Listen(":" + port))
}
