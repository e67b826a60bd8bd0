package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"
	openAIModel   = "dall-e-3"

	// The upstream call is the only blocking operation in a generation;
	// expiring it surfaces as a generation failure with no side effects.
	openAITimeout = 60 * time.Second
)

// OpenAIProvider calls the OpenAI images endpoint. DALL-E 3 only supports
// n=1, which is why callers request a single image per generation.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: openAIBaseURL,
		client: &http.Client{
			Timeout: openAITimeout,
		},
	}
}

// WithBaseURL points the provider at a different endpoint, used by tests.
func (p *OpenAIProvider) WithBaseURL(baseURL string) *OpenAIProvider {
	p.baseURL = baseURL
	return p
}

type openAIImageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
}

type openAIImageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) ([]string, error) {
	if p.apiKey == "" {
		return nil, errors.New("OpenAI API key not configured")
	}

	n := req.N
	if n <= 0 {
		n = 1
	}
	quality := req.Quality
	if quality == "" {
		quality = "standard"
	}

	body, err := json.Marshal(openAIImageRequest{
		Model:   openAIModel,
		Prompt:  req.Prompt,
		N:       n,
		Size:    req.Size,
		Quality: quality,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed openAIImageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		// Surface the provider's own message where it sent one.
		if parsed.Error != nil && parsed.Error.Message != "" {
			return nil, errors.New(parsed.Error.Message)
		}
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	urls := make([]string, 0, len(parsed.Data))
	for _, img := range parsed.Data {
		if img.URL != "" {
			urls = append(urls, img.URL)
		}
	}
	if len(urls) == 0 {
		return nil, errors.New("no images generated")
	}
	return urls, nil
}
