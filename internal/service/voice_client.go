package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"bedtime-server/internal/config"
)

// ErrVoiceSynthesisFailed - ошибка при озвучке текста.
var ErrVoiceSynthesisFailed = errors.New("voice synthesis failed")

// openAIVoiceClient реализует VoiceGenerator через OpenAI Speech API.
// Голос рассказчика фиксированный и задается конфигурацией.
type openAIVoiceClient struct {
	client *openaigo.Client
	model  openaigo.SpeechModel
	voice  openaigo.SpeechVoice
	logger *zap.Logger
}

// NewVoiceGenerator создает клиент озвучки.
func NewVoiceGenerator(cfg config.VoiceConfig, apiKey string, logger *zap.Logger) VoiceGenerator {
	return &openAIVoiceClient{
		client: openaigo.NewClient(apiKey),
		model:  openaigo.SpeechModel(cfg.Model),
		voice:  openaigo.SpeechVoice(cfg.Voice),
		logger: logger.Named("VoiceClient"),
	}
}

// Synthesize озвучивает текст и возвращает mp3 байты.
func (c *openAIVoiceClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	log := c.logger.With(zap.String("voice", string(c.voice)), zap.Int("text_chars", len(text)))
	log.Info("Synthesizing voiceover...")

	startTime := time.Now()
	resp, err := c.client.CreateSpeech(ctx, openaigo.CreateSpeechRequest{
		Model:          c.model,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: openaigo.SpeechResponseFormatMp3,
	})
	if err != nil {
		log.Error("Speech API call failed", zap.Duration("duration", time.Since(startTime)), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrVoiceSynthesisFailed, err)
	}
	defer resp.Close()

	audioData, err := io.ReadAll(resp)
	if err != nil {
		log.Error("Failed to read speech response", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrVoiceSynthesisFailed, err)
	}
	if len(audioData) == 0 {
		log.Error("Speech API returned empty audio data")
		return nil, fmt.Errorf("%w: API returned empty data", ErrVoiceSynthesisFailed)
	}

	log.Info("Voiceover synthesized",
		zap.Int("size_bytes", len(audioData)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return audioData, nil
}
