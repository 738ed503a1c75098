package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Ключи промптов. Каждому ключу соответствует файл <key>.md в PromptsDir.
const (
	PromptBedtimeStory  = "bedtime_story"
	PromptContinueStory = "continue_story"
	PromptConcludeStory = "conclude_story"
	PromptStoryChoices  = "story_choices"
)

var promptKeys = []string{
	PromptBedtimeStory,
	PromptContinueStory,
	PromptConcludeStory,
	PromptStoryChoices,
}

// PromptProvider предоставляет доступ к системным промптам, кэшируя их локально.
type PromptProvider struct {
	promptsDir string
	cacheLock  sync.RWMutex
	cacheMap   map[string]string
	logger     *zap.Logger
}

// NewPromptProvider создает новый PromptProvider.
func NewPromptProvider(promptsDir string, logger *zap.Logger) *PromptProvider {
	return &PromptProvider{
		promptsDir: promptsDir,
		cacheMap:   make(map[string]string),
		logger:     logger.Named("PromptProvider"),
	}
}

// LoadPrompts загружает все промпты из PromptsDir в кэш.
// Вызывается один раз при старте; отсутствие любого файла - ошибка.
func (p *PromptProvider) LoadPrompts() error {
	p.logger.Info("Loading prompts into cache...", zap.String("dir", p.promptsDir))

	newCache := make(map[string]string, len(promptKeys))
	for _, key := range promptKeys {
		path := filepath.Join(p.promptsDir, key+".md")
		content, err := os.ReadFile(path)
		if err != nil {
			p.logger.Error("Failed to read prompt file", zap.String("path", path), zap.Error(err))
			return fmt.Errorf("failed to read prompt file %s: %w", path, err)
		}
		newCache[key] = string(content)
	}

	p.cacheLock.Lock()
	p.cacheMap = newCache
	p.cacheLock.Unlock()

	p.logger.Info("Prompts loaded", zap.Int("count", len(newCache)))
	return nil
}

// Get возвращает содержимое промпта по ключу.
func (p *PromptProvider) Get(key string) (string, error) {
	p.cacheLock.RLock()
	content, ok := p.cacheMap[key]
	p.cacheLock.RUnlock()
	if !ok {
		return "", fmt.Errorf("prompt %q not found in cache", key)
	}
	return content, nil
}

// FormatStoryRequest формирует пользовательский промпт для начальной истории.
func FormatStoryRequest(genre, childGender, theme string, age int, artStyle string) string {
	var sb strings.Builder

	sb.WriteString("Story request:\n")
	sb.WriteString(fmt.Sprintf("  Genre: %s\n", genre))
	sb.WriteString(fmt.Sprintf("  Main character: a %s, %d years old\n", childGender, age))
	sb.WriteString(fmt.Sprintf("  Theme: %s\n", theme))
	if artStyle != "" {
		sb.WriteString(fmt.Sprintf("  Illustration style: %s\n", artStyle))
	}

	return sb.String()
}

// FormatContinuationRequest формирует пользовательский промпт для продолжения:
// история целиком плюс последний выбор читателя.
func FormatContinuationRequest(previousStory, userInput string) string {
	var sb strings.Builder

	sb.WriteString("The story so far:\n")
	sb.WriteString(previousStory)
	sb.WriteString("\n\nThe reader chose: ")
	sb.WriteString(userInput)

	return sb.String()
}
