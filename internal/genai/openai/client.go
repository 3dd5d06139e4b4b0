package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"stamp-backend/internal/genai"
)

const (
	defaultVisionModel = openai.GPT4o
	defaultImageModel  = openai.CreateImageModelDallE3
)

// Client implements genai.Client using the OpenAI SDK.
type Client struct {
	api         *openai.Client
	visionModel string
	imageModel  string
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, visionModel, imageModel string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(visionModel) == "" {
		visionModel = defaultVisionModel
	}
	if strings.TrimSpace(imageModel) == "" {
		imageModel = defaultImageModel
	}
	return &Client{
		api:         openai.NewClient(apiKey),
		visionModel: visionModel,
		imageModel:  imageModel,
	}, nil
}

// DescribeImage asks the vision model for a drawing-ready description of the image.
func (c *Client) DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image is required")
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.visionModel,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: genai.DescribeInstruction,
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: dataURL(image, mimeType),
					},
				},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("openai describe: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai response empty content")
	}
	return text, nil
}

// GenerateImage generates a single image from the prompt via the Images API.
func (c *Client) GenerateImage(ctx context.Context, input genai.GenerateInput) (genai.GeneratedImage, error) {
	if strings.TrimSpace(input.Prompt) == "" {
		return genai.GeneratedImage{}, fmt.Errorf("prompt is required")
	}

	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Model:          c.imageModel,
		Prompt:         input.Prompt,
		N:              1,
		Size:           sizeForAspectRatio(input.AspectRatio),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return genai.GeneratedImage{}, fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Data) == 0 {
		return genai.GeneratedImage{}, fmt.Errorf("no image returned from API")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return genai.GeneratedImage{}, fmt.Errorf("openai image decode: %w", err)
	}
	if len(data) == 0 {
		return genai.GeneratedImage{}, fmt.Errorf("no image returned from API")
	}
	return genai.GeneratedImage{Data: data, MimeType: "image/png"}, nil
}

func dataURL(image []byte, mimeType string) string {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
}

// sizeForAspectRatio maps the pipeline's aspect ratio onto the sizes the
// Images API accepts. Only square output is used today.
func sizeForAspectRatio(aspectRatio string) string {
	switch aspectRatio {
	case "16:9":
		return openai.CreateImageSize1792x1024
	case "9:16":
		return openai.CreateImageSize1024x1792
	default:
		return openai.CreateImageSize1024x1024
	}
}

var _ genai.Client = (*Client)(nil)
