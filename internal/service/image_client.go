package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"bedtime-server/internal/config"
)

// ErrImageGenerationFailed - ошибка при генерации изображения.
var ErrImageGenerationFailed = errors.New("image generation failed")

// --- OpenAI (DALL-E) Implementation ---

// openAIImageClient реализует ImageGenerator через OpenAI Images API.
type openAIImageClient struct {
	client *openaigo.Client
	model  string
	size   string
	logger *zap.Logger
}

// GenerateImage генерирует одну иллюстрацию и возвращает ее байты.
func (c *openAIImageClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	log := c.logger.With(zap.String("model", c.model), zap.Int("prompt_chars", len(prompt)))
	log.Info("Generating illustration...")

	startTime := time.Now()
	resp, err := c.client.CreateImage(ctx, openaigo.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		Size:           c.size,
		ResponseFormat: openaigo.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		log.Error("Image API call failed", zap.Duration("duration", time.Since(startTime)), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrImageGenerationFailed, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		log.Error("Image API returned empty data")
		return nil, fmt.Errorf("%w: API returned empty data", ErrImageGenerationFailed)
	}

	imageData, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		log.Error("Failed to decode image payload", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrImageGenerationFailed, err)
	}

	log.Info("Illustration generated",
		zap.Int("size_bytes", len(imageData)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return imageData, nil
}

// --- Local SANA-style Server Implementation ---

// sanaImageClient реализует ImageGenerator через локальный сервер,
// принимающий JSON {prompt, ratio} и возвращающий сырые байты изображения.
type sanaImageClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// SanaAPIRequest - структура запроса к SANA API.
type SanaAPIRequest struct {
	Prompt string `json:"prompt"`
	Ratio  string `json:"ratio"`
}

// GenerateImage вызывает SANA API.
func (c *sanaImageClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	log := c.logger.With(zap.String("api_url", c.baseURL))

	reqPayload := SanaAPIRequest{
		Prompt: prompt,
		Ratio:  "1:1", // Квадратные иллюстрации для книжных разворотов
	}
	reqBodyBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	endpointURL := c.baseURL + "/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(reqBodyBytes))
	if err != nil {
		log.Error("Failed to create image server request", zap.String("url", endpointURL), zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/*")

	log.Debug("Sending request to image server", zap.String("url", endpointURL))
	resp, err := c.client.Do(req)
	if err != nil {
		log.Error("Failed to execute image server request", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrImageGenerationFailed, err)
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Error("Image server returned non-OK status",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("response_body", bodyBytes),
		)
		return nil, fmt.Errorf("%w: API returned status %d", ErrImageGenerationFailed, resp.StatusCode)
	}

	if readErr != nil {
		log.Error("Failed to read image server response body", zap.Error(readErr))
		return nil, fmt.Errorf("%w: %v", ErrImageGenerationFailed, readErr)
	}
	if len(bodyBytes) == 0 {
		log.Error("Image server returned empty image data")
		return nil, fmt.Errorf("%w: API returned empty data", ErrImageGenerationFailed)
	}

	log.Debug("Image server call successful", zap.Int("size_bytes", len(bodyBytes)))
	return bodyBytes, nil
}

// NewImageGenerator создает клиент генерации изображений в зависимости от конфигурации.
func NewImageGenerator(cfg config.ImageGenConfig, apiKey string, logger *zap.Logger) (ImageGenerator, error) {
	switch strings.ToLower(cfg.ClientType) {
	case "openai":
		return &openAIImageClient{
			client: openaigo.NewClient(apiKey),
			model:  cfg.Model,
			size:   cfg.Size,
			logger: logger.Named("ImageClient"),
		}, nil
	case "sana":
		if cfg.SanaBaseURL == "" {
			return nil, errors.New("image server base URL (SANA_SERVER_BASE_URL) is not configured")
		}
		return &sanaImageClient{
			baseURL: strings.TrimSuffix(cfg.SanaBaseURL, "/"),
			client: &http.Client{
				Timeout: time.Duration(cfg.SanaTimeout) * time.Second,
			},
			logger: logger.Named("ImageClient"),
		}, nil
	default:
		return nil, fmt.Errorf("неизвестный тип image клиента: '%s'", cfg.ClientType)
	}
}
