// Package providers holds the image-generation clients. The rest of the
// application only sees ImageProvider, so the upstream service can be swapped
// (or faked in tests) without touching the handlers.
package providers

import "context"

// Request is the single round trip the application makes per generation.
type Request struct {
	Prompt  string
	Size    string
	Quality string
	N       int
}

type ImageProvider interface {
	// Generate performs exactly one upstream call and returns the resulting
	// image URLs. It never retries; a failure surfaces to the caller as-is.
	Generate(ctx context.Context, req Request) ([]string, error)
}
