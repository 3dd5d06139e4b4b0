package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"stamp-backend/internal/genai"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client implements genai.Client against the Generative Language REST API.
type Client struct {
	apiKey      string
	visionModel string
	imageModel  string
	baseURL     string
	httpClient  *http.Client
}

// NewClient constructs a new Gemini client.
func NewClient(apiKey, visionModel, imageModel string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(visionModel) == "" {
		return nil, fmt.Errorf("VISION_MODEL is required for Gemini")
	}
	if strings.TrimSpace(imageModel) == "" {
		return nil, fmt.Errorf("IMAGE_MODEL is required for Gemini")
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("GEMINI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey:      apiKey,
		visionModel: visionModel,
		imageModel:  imageModel,
		baseURL:     defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type contentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// DescribeImage asks the vision model for a drawing-ready description of the image.
func (c *Client) DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image is required")
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/png"
	}

	reqBody := generateContentRequest{
		Contents: []content{{
			Parts: []contentPart{
				{Text: genai.DescribeInstruction},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.visionModel)
	body, status, err := c.post(ctx, url, reqBody)
	if err != nil {
		return "", err
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gemini response parse: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini error: %s (%s)", parsed.Error.Message, parsed.Error.Status)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("gemini describe: unexpected status %d", status)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("gemini response missing candidates")
	}

	var b strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("gemini response empty content")
	}
	return text, nil
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
	Error *apiError `json:"error,omitempty"`
}

// GenerateImage generates a single image from the prompt using the Imagen predict endpoint.
func (c *Client) GenerateImage(ctx context.Context, input genai.GenerateInput) (genai.GeneratedImage, error) {
	if strings.TrimSpace(input.Prompt) == "" {
		return genai.GeneratedImage{}, fmt.Errorf("prompt is required")
	}

	reqBody := predictRequest{
		Instances: []predictInstance{{Prompt: input.Prompt}},
		Parameters: predictParameters{
			SampleCount: 1,
			AspectRatio: input.AspectRatio,
		},
	}

	url := fmt.Sprintf("%s/models/%s:predict", c.baseURL, c.imageModel)
	body, status, err := c.post(ctx, url, reqBody)
	if err != nil {
		return genai.GeneratedImage{}, err
	}

	var parsed predictResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return genai.GeneratedImage{}, fmt.Errorf("gemini response parse: %w", err)
	}
	if parsed.Error != nil || status == http.StatusNotFound {
		return genai.GeneratedImage{}, c.generateError(ctx, status, parsed.Error)
	}
	if status != http.StatusOK {
		return genai.GeneratedImage{}, fmt.Errorf("gemini generate: unexpected status %d", status)
	}
	if len(parsed.Predictions) == 0 {
		return genai.GeneratedImage{}, fmt.Errorf("no image returned from API")
	}

	pred := parsed.Predictions[0]
	data, err := base64.StdEncoding.DecodeString(pred.BytesBase64Encoded)
	if err != nil {
		return genai.GeneratedImage{}, fmt.Errorf("gemini image decode: %w", err)
	}
	if len(data) == 0 {
		return genai.GeneratedImage{}, fmt.Errorf("no image returned from API")
	}
	mimeType := pred.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return genai.GeneratedImage{Data: data, MimeType: mimeType}, nil
}

// generateError enriches model-not-found errors with the models visible to the key.
func (c *Client) generateError(ctx context.Context, status int, apiErr *apiError) error {
	message := fmt.Sprintf("unexpected status %d", status)
	if apiErr != nil {
		message = fmt.Sprintf("%s (%s)", apiErr.Message, apiErr.Status)
	}
	if status != http.StatusNotFound && (apiErr == nil || apiErr.Code != http.StatusNotFound) {
		return fmt.Errorf("gemini error: %s", message)
	}

	names, listErr := c.listModels(ctx)
	if listErr != nil {
		return fmt.Errorf("model %q not found and failed to list models: %v (original error: %s)", c.imageModel, listErr, message)
	}
	return fmt.Errorf("model %q not found; models available to this key: %s (original error: %s)",
		c.imageModel, strings.Join(names, ", "), message)
}

type listModelsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (c *Client) listModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed listModelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("list models parse: %w", err)
	}
	names := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (c *Client) post(ctx context.Context, url string, reqBody any) ([]byte, int, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, 0, fmt.Errorf("gemini request timeout: %w", err)
		}
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

var _ genai.Client = (*Client)(nil)
