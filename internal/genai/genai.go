package genai

import (
	"context"
	"errors"
)

// Describer produces a textual description of an image using a vision-capable model.
type Describer interface {
	DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Generator produces an image from a text prompt using an image-generation model.
type Generator interface {
	GenerateImage(ctx context.Context, input GenerateInput) (GeneratedImage, error)
}

// Client combines both halves of the generation pipeline.
type Client interface {
	Describer
	Generator
}

// GenerateInput captures the inputs for a single image generation request.
type GenerateInput struct {
	Prompt      string
	AspectRatio string
}

// GeneratedImage holds the bytes returned by the vendor.
type GeneratedImage struct {
	Data     []byte
	MimeType string
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("genai client not configured")

// PlaceholderClient is a stub implementation used when no provider is configured.
type PlaceholderClient struct{}

// DescribeImage returns ErrNotConfigured.
func (PlaceholderClient) DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	_ = ctx
	_ = image
	_ = mimeType
	return "", ErrNotConfigured
}

// GenerateImage returns ErrNotConfigured.
func (PlaceholderClient) GenerateImage(ctx context.Context, input GenerateInput) (GeneratedImage, error) {
	_ = ctx
	_ = input
	return GeneratedImage{}, ErrNotConfigured
}
