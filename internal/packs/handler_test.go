package packs_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"stamp-backend/internal/bootstrap"
	"stamp-backend/internal/genai"
	"stamp-backend/internal/shared/config"
)

type stubGenAI struct {
	describeErr error
	generateErr error
}

func (s stubGenAI) DescribeImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	if s.describeErr != nil {
		return "", s.describeErr
	}
	return "A round blue mascot with big eyes.", nil
}

func (s stubGenAI) GenerateImage(ctx context.Context, input genai.GenerateInput) (genai.GeneratedImage, error) {
	if s.generateErr != nil {
		return genai.GeneratedImage{}, s.generateErr
	}
	return genai.GeneratedImage{Data: encodePNG(512, 512), MimeType: "image/png"}, nil
}

func encodePNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 180, B: 240, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func newTestApp(t *testing.T, client genai.Client) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		GenAIProvider:   "gemini",
		Env:             "dev",
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	if client != nil {
		app.PacksService.Describer = client
		app.PacksService.Generator = client
	}
	return app
}

func uploadCharacter(t *testing.T, router *gin.Engine) string {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", "mascot.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write(encodePNG(64, 64)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/characters", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		CharacterID string `json:"characterId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if created.CharacterID == "" {
		t.Fatalf("expected characterId, got empty")
	}
	return created.CharacterID
}

type packJSON struct {
	PackID string `json:"packId"`
	Status string `json:"status"`
	Error  string `json:"error"`
	Items  []struct {
		Index    int    `json:"index"`
		FileName string `json:"fileName"`
		Status   string `json:"status"`
		Error    string `json:"error"`
	} `json:"items"`
}

func getPack(t *testing.T, router *gin.Engine, packID string) packJSON {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/packs/"+packID, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var pack packJSON
	if err := json.NewDecoder(resp.Body).Decode(&pack); err != nil {
		t.Fatalf("decode pack response: %v", err)
	}
	return pack
}

func waitForFinished(t *testing.T, router *gin.Engine, packID string) packJSON {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for pack %s", packID)
		case <-time.After(10 * time.Millisecond):
		}
		pack := getPack(t, router, packID)
		if pack.Status == "completed" || pack.Status == "failed" {
			return pack
		}
	}
}

func TestPackLifecycle(t *testing.T) {
	app := newTestApp(t, stubGenAI{})
	router := app.Router

	characterID := uploadCharacter(t, router)

	reqBody, _ := json.Marshal(map[string]any{
		"characterId": characterID,
		"captions":    []string{"Hello!", "Good night"},
		"style":       "anime",
		"count":       8,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/packs", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", resp.Code, resp.Body.String())
	}
	var created packJSON
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.PackID == "" {
		t.Fatalf("expected packId, got empty")
	}
	if len(created.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(created.Items))
	}

	pack := waitForFinished(t, router, created.PackID)
	if pack.Status != "completed" {
		t.Fatalf("expected completed, got %s (%s)", pack.Status, pack.Error)
	}
	for _, item := range pack.Items {
		if item.Status != "generated" {
			t.Fatalf("item %d not generated: %s", item.Index, item.Error)
		}
	}

	// Single sticker download.
	reqImg := httptest.NewRequest(http.MethodGet, "/api/v1/packs/"+created.PackID+"/items/1/image", nil)
	respImg := httptest.NewRecorder()
	router.ServeHTTP(respImg, reqImg)
	if respImg.Code != http.StatusOK {
		t.Fatalf("expected status 200 for sticker, got %d", respImg.Code)
	}
	if ct := respImg.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %s", ct)
	}
	if _, err := png.Decode(bytes.NewReader(respImg.Body.Bytes())); err != nil {
		t.Fatalf("sticker is not a valid png: %v", err)
	}

	// Archive download.
	reqZip := httptest.NewRequest(http.MethodGet, "/api/v1/packs/"+created.PackID+"/archive", nil)
	respZip := httptest.NewRecorder()
	router.ServeHTTP(respZip, reqZip)
	if respZip.Code != http.StatusOK {
		t.Fatalf("expected status 200 for archive, got %d: %s", respZip.Code, respZip.Body.String())
	}
	if ct := respZip.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("expected application/zip, got %s", ct)
	}
	if cd := respZip.Header().Get("Content-Disposition"); !strings.Contains(cd, "line_stamps.zip") {
		t.Fatalf("unexpected content disposition: %s", cd)
	}

	zipBytes := respZip.Body.Bytes()
	reader, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(reader.File) != 2 {
		t.Fatalf("expected 2 archive entries, got %d", len(reader.File))
	}
}

func TestCreatePackUnknownCharacter(t *testing.T) {
	app := newTestApp(t, stubGenAI{})

	reqBody, _ := json.Marshal(map[string]any{
		"characterId": "does-not-exist",
		"captions":    []string{"Hello!"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/packs", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestCreatePackRejectsEmptyCaptions(t *testing.T) {
	app := newTestApp(t, stubGenAI{})
	characterID := uploadCharacter(t, app.Router)

	reqBody, _ := json.Marshal(map[string]any{
		"characterId": characterID,
		"captions":    []string{"", "  "},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/packs", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGetPackNotFound(t *testing.T) {
	app := newTestApp(t, stubGenAI{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/packs/missing", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestArchiveWhenNothingGenerated(t *testing.T) {
	// Leave the placeholder client in place so every generation attempt fails.
	app := newTestApp(t, nil)
	router := app.Router

	characterID := uploadCharacter(t, router)

	reqBody, _ := json.Marshal(map[string]any{
		"characterId": characterID,
		"captions":    []string{"Hello!"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/packs", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", resp.Code, resp.Body.String())
	}
	var created packJSON
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	pack := waitForFinished(t, router, created.PackID)
	if pack.Status != "completed" {
		t.Fatalf("expected completed, got %s", pack.Status)
	}
	if pack.Items[0].Status != "failed" {
		t.Fatalf("expected item failure without a provider: %+v", pack.Items)
	}
	if !strings.Contains(pack.Items[0].Error, genai.ErrNotConfigured.Error()) {
		t.Fatalf("unexpected item error: %s", pack.Items[0].Error)
	}

	reqZip := httptest.NewRequest(http.MethodGet, "/api/v1/packs/"+created.PackID+"/archive", nil)
	respZip := httptest.NewRecorder()
	router.ServeHTTP(respZip, reqZip)
	if respZip.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for empty archive, got %d", respZip.Code)
	}
}
