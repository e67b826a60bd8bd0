package handler

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/davidalvz/pixelmuse/models"
	"github.com/davidalvz/pixelmuse/providers"
	"github.com/davidalvz/pixelmuse/storage"
	"github.com/gofiber/fiber/v2"
)

// GenerationCost is the fixed credit price of one generation.
const GenerationCost = 4

const (
	maxPromptLength     = 4000
	maxStyleLength      = 100
	maxRefinementLength = 1000
	maxIDLength         = 100

	generateTimeout = 60 * time.Second
)

// styleDescriptions maps each base style to the phrase appended to the
// prompt. Unknown styles pass through verbatim.
var styleDescriptions = map[string]string{
	"dreamcore": "dreamlike, surreal, ethereal atmosphere",
	"realism":   "photorealistic, highly detailed, professional photography",
	"anime":     "anime style, vibrant colors, detailed illustration",
	"editorial": "editorial photography, high fashion, professional lighting",
}

// sizeMap maps aspect-ratio tags to provider-supported sizes. The mapping is
// lossy: 4:5 and 9:11 collapse to the same tall size because the provider
// does not offer those exact ratios. That collapse is part of the contract,
// not something to correct here.
var sizeMap = map[string]string{
	"1:1":  "1024x1024",
	"4:5":  "1024x1792",
	"9:11": "1024x1792",
	"16:9": "1792x1024",
}

// sanitizeText strips characters that could read as markup downstream.
func sanitizeText(text string) string {
	text = strings.ReplaceAll(text, "<", "")
	text = strings.ReplaceAll(text, ">", "")
	return strings.TrimSpace(text)
}

type GenerateRequest struct {
	Prompt       string `json:"prompt"`
	Style        string `json:"style"`
	Refinement   string `json:"refinement"`
	Dimension    string `json:"dimension"`
	UserID       string `json:"userId"`
	StyleID      string `json:"styleId"`
	ApplyMyStyle bool   `json:"applyMyStyle"`
}

func validateGenerateRequest(req *GenerateRequest) string {
	switch {
	case req.Prompt == "" || len(req.Prompt) > maxPromptLength:
		return "Prompt must be between 1 and 4000 characters"
	case len(req.Style) > maxStyleLength:
		return "Style too long"
	case len(req.Refinement) > maxRefinementLength:
		return "Refinement too long"
	case req.UserID == "" || len(req.UserID) > maxIDLength:
		return "Invalid user id"
	case len(req.StyleID) > maxIDLength:
		return "Invalid style id"
	}
	if _, ok := sizeMap[req.Dimension]; !ok {
		return "Invalid dimension"
	}
	return ""
}

// enrichPrompt composes the prompt sent upstream: base prompt, the user's
// learned style text when requested, the refinement, then the style phrase.
func enrichPrompt(req *GenerateRequest, prefs *models.Preferences) string {
	enhanced := req.Prompt

	if req.ApplyMyStyle && prefs != nil && prefs.StyleDescription != "" {
		enhanced += ", " + prefs.StyleDescription
	}
	if req.Refinement != "" {
		enhanced += ", " + req.Refinement
	}

	styleDesc, ok := styleDescriptions[req.Style]
	if !ok {
		styleDesc = req.Style
	}
	if styleDesc != "" {
		enhanced += ", " + styleDesc
	}
	return enhanced
}

// Generate runs the whole generation flow: validate, check the user and
// balance, call the provider once, then commit history + debit. Credits are
// only deducted after the provider succeeds, and history is only written
// after the deduction succeeds, so a failure anywhere leaves no side effect.
func (h *Handler) Generate(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if msg := validateGenerateRequest(&req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": msg,
		})
	}

	req.Prompt = sanitizeText(req.Prompt)
	req.Refinement = sanitizeText(req.Refinement)
	if req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Prompt must be between 1 and 4000 characters",
		})
	}

	user, err := h.store.GetUser(req.UserID)
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

	if user.Credits < GenerationCost {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Insufficient credits",
		})
	}

	if h.provider == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Image provider not configured",
		})
	}

	enhancedPrompt := enrichPrompt(&req, user.Preferences)

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	imageURLs, err := h.provider.Generate(ctx, providers.Request{
		Prompt:  enhancedPrompt,
		Size:    sizeMap[req.Dimension],
		Quality: "standard",
		N:       1,
	})
	if err != nil {
		log.Printf("image provider error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Image generation failed",
			"error":   err.Error(),
		})
	}
	if len(imageURLs) == 0 {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "No images generated",
		})
	}

	// Conditional deduction: a concurrent generation that raced this one
	// past the pre-check loses here instead of driving the balance negative.
	remaining, err := h.store.DeductCredits(req.UserID, GenerationCost)
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientCredits) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Insufficient credits",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Image generation failed",
		})
	}

	record, err := h.store.CreateImageHistory(&models.ImageHistory{
		UserID:     req.UserID,
		Prompt:     req.Prompt,
		Style:      req.Style,
		Refinement: req.Refinement,
		Dimension:  req.Dimension,
		ImageURLs:  imageURLs,
		StyleID:    req.StyleID,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to save history",
		})
	}

	if req.StyleID != "" {
		if err := h.store.IncrementStyleUsage(req.StyleID); err != nil {
			log.Printf("increment style usage: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"images":           imageURLs,
		"historyId":        record.ID,
		"creditsRemaining": remaining,
	})
}
