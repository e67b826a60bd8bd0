package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash-image-preview"

// GeminiProvider is the alternate backend. Gemini's image model returns
// inline bytes rather than hosted URLs, so results come back as data URIs. It
// also ignores the requested size; the model picks its own output dimensions.
type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) ([]string, error) {
	result, err := p.client.Models.GenerateContent(
		ctx,
		geminiModel,
		genai.Text(req.Prompt),
		&genai.GenerateContentConfig{},
	)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, errors.New("no image content in response")
	}

	var urls []string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		encoded := base64.StdEncoding.EncodeToString(part.InlineData.Data)
		urls = append(urls, "data:"+mimeType+";base64,"+encoded)
	}

	if len(urls) == 0 {
		return nil, errors.New("no image data found in response")
	}
	return urls, nil
}
