package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrTranscriptionFailed - ошибка при распознавании речи.
var ErrTranscriptionFailed = errors.New("transcription failed")

// whisperTranscriber реализует Transcriber через OpenAI Whisper API.
type whisperTranscriber struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

// NewTranscriber создает клиент распознавания речи.
func NewTranscriber(apiKey string, logger *zap.Logger) Transcriber {
	return &whisperTranscriber{
		client: openaigo.NewClient(apiKey),
		model:  openaigo.Whisper1,
		logger: logger.Named("Transcriber"),
	}
}

// Transcribe распознает речь из аудиофайла по его пути.
func (t *whisperTranscriber) Transcribe(ctx context.Context, filePath string) (string, error) {
	log := t.logger.With(zap.String("file", filePath))
	log.Info("Transcribing audio...")

	startTime := time.Now()
	resp, err := t.client.CreateTranscription(ctx, openaigo.AudioRequest{
		Model:    t.model,
		FilePath: filePath,
	})
	if err != nil {
		log.Error("Transcription API call failed", zap.Duration("duration", time.Since(startTime)), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	log.Info("Audio transcribed",
		zap.Int("text_chars", len(resp.Text)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return resp.Text, nil
}
