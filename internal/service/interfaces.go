package service

import (
	"context"
	"errors"
)

// ErrGenerationFailed - общая ошибка генерации сегмента истории.
// Наружу не сообщаем, какой именно коллаборатор упал.
var ErrGenerationFailed = errors.New("story generation failed")

// UsageInfo содержит информацию об использовании токенов и стоимости запроса.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64 // Оценочная стоимость
}

// TextGenerator интерфейс для свободной текстовой генерации.
type TextGenerator interface {
	// GenerateText генерирует текст на основе системного промта, ввода пользователя
	// и бюджета длины ответа. Возвращает сгенерированный текст и информацию об использовании.
	GenerateText(ctx context.Context, systemPrompt string, userPrompt string, maxTokens int) (string, UsageInfo, error)
}

// ImageGenerator интерфейс для генерации одной иллюстрации по текстовому промпту.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// VoiceGenerator интерфейс для озвучки текста фиксированным голосом рассказчика.
type VoiceGenerator interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Transcriber интерфейс для распознавания речи из аудиофайла.
type Transcriber interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
}
