package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bedtime-server/internal/storage"
)

// maxUserDecisions - после скольких решений читателя история завершается.
// Счетчик 0 и 1 дает промежуточный сегмент с вариантами, начиная со 2 - финал.
const maxUserDecisions = 2

// initialSegmentIndex - индекс артефактов начальной истории.
const initialSegmentIndex = 0

// GenerateStoryRequest параметры начальной истории.
type GenerateStoryRequest struct {
	Genre       string
	ChildGender string
	Theme       string
	Age         int
	ArtStyle    string
}

// ContinueStoryRequest параметры продолжения. Сессия хранится у клиента:
// он присылает накопленную историю и число сделанных решений.
type ContinueStoryRequest struct {
	UserInput     string
	PreviousStory string
	InputCount    int
}

// SegmentBundle - сегмент истории вместе с его артефактами.
type SegmentBundle struct {
	Story    string
	Choices  []string
	ImageURL string
	AudioURL string
}

// StoryService оркестрирует генерацию интерактивной истории.
type StoryService interface {
	// GenerateStory генерирует начальную историю с вариантами выбора (индекс артефактов 0).
	GenerateStory(ctx context.Context, req GenerateStoryRequest) (*SegmentBundle, error)
	// ContinueStory генерирует следующий сегмент по выбору читателя
	// (индекс артефактов InputCount+1). Пока решений меньше двух, сегмент
	// заканчивается приглашением к выбору и сопровождается вариантами;
	// дальше генерируется финал без вариантов.
	ContinueStory(ctx context.Context, req ContinueStoryRequest) (*SegmentBundle, error)
}

// TokenBudgets бюджеты длины ответа для разных типов генерации.
type TokenBudgets struct {
	Story   int
	Choices int
}

// storyService - реализация StoryService.
type storyService struct {
	ai             TextGenerator
	images         ImageGenerator
	voice          VoiceGenerator
	store          storage.ArtifactStore
	prompts        *PromptProvider
	styleDirective string
	budgets        TokenBudgets
	logger         *zap.Logger
}

// NewStoryService создает новый StoryService.
func NewStoryService(
	ai TextGenerator,
	images ImageGenerator,
	voice VoiceGenerator,
	store storage.ArtifactStore,
	prompts *PromptProvider,
	styleDirective string,
	budgets TokenBudgets,
	logger *zap.Logger,
) StoryService {
	return &storyService{
		ai:             ai,
		images:         images,
		voice:          voice,
		store:          store,
		prompts:        prompts,
		styleDirective: styleDirective,
		budgets:        budgets,
		logger:         logger.Named("StoryService"),
	}
}

// GenerateStory - см. StoryService.
func (s *storyService) GenerateStory(ctx context.Context, req GenerateStoryRequest) (*SegmentBundle, error) {
	log := s.logger.With(
		zap.String("genre", req.Genre),
		zap.String("theme", req.Theme),
		zap.Int("age", req.Age),
	)
	log.Info("Generating initial story...")

	systemPrompt, err := s.prompts.Get(PromptBedtimeStory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	userPrompt := FormatStoryRequest(req.Genre, req.ChildGender, req.Theme, req.Age, req.ArtStyle)

	segment, err := s.generateSegment(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	return s.assembleBundle(ctx, log, segment, initialSegmentIndex, req.ArtStyle, true)
}

// ContinueStory - см. StoryService.
func (s *storyService) ContinueStory(ctx context.Context, req ContinueStoryRequest) (*SegmentBundle, error) {
	// Ядро политики завершения: два решения читателя - и следующий сегмент финальный.
	concluding := req.InputCount >= maxUserDecisions
	segmentIndex := req.InputCount + 1

	log := s.logger.With(
		zap.Int("input_count", req.InputCount),
		zap.Int("segment_index", segmentIndex),
		zap.Bool("concluding", concluding),
	)
	log.Info("Generating story continuation...")

	promptKey := PromptContinueStory
	if concluding {
		promptKey = PromptConcludeStory
	}
	systemPrompt, err := s.prompts.Get(promptKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	userPrompt := FormatContinuationRequest(req.PreviousStory, req.UserInput)

	segment, err := s.generateSegment(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	// ArtStyle задается только в начальном запросе; консистентность стиля
	// продолжений обеспечивает styleDirective из конфигурации.
	return s.assembleBundle(ctx, log, segment, segmentIndex, "", !concluding)
}

// generateSegment запрашивает текст сегмента и нормализует его:
// обрезанный текст с двумя завершающими переводами строки.
func (s *storyService) generateSegment(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	text, _, err := s.ai.GenerateText(ctx, systemPrompt, userPrompt, s.budgets.Story)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return strings.TrimSpace(text) + "\n\n", nil
}

// assembleBundle собирает ответ сегмента: варианты выбора (если нужны),
// иллюстрация, озвучка. Порядок строго последовательный: текст уже получен,
// дальше варианты -> изображение -> голос. Любая ошибка прерывает запрос,
// частичный результат не возвращается и не подчищается.
func (s *storyService) assembleBundle(ctx context.Context, log *zap.Logger, segment string, segmentIndex int, artStyle string, withChoices bool) (*SegmentBundle, error) {
	choices := []string{}
	if withChoices {
		var err error
		choices, err = s.generateChoices(ctx, segment)
		if err != nil {
			return nil, err
		}
	}

	imageBytes, err := s.images.GenerateImage(ctx, s.imagePrompt(segment, segmentIndex, artStyle))
	if err != nil {
		log.Error("Image generation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	imageURL, err := s.store.Save(storage.KindImage, segmentIndex, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	audioBytes, err := s.voice.Synthesize(ctx, segment)
	if err != nil {
		log.Error("Voice synthesis failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	audioURL, err := s.store.Save(storage.KindAudio, segmentIndex, audioBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	log.Info("Story segment assembled",
		zap.Int("story_chars", len(segment)),
		zap.Int("choices", len(choices)),
	)

	return &SegmentBundle{
		Story:    segment,
		Choices:  choices,
		ImageURL: imageURL,
		AudioURL: audioURL,
	}, nil
}

// generateChoices запрашивает у модели три коротких варианта продолжения
// по тексту сегмента и прогоняет ответ через нормализацию.
func (s *storyService) generateChoices(ctx context.Context, segment string) ([]string, error) {
	systemPrompt, err := s.prompts.Get(PromptStoryChoices)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	raw, _, err := s.ai.GenerateText(ctx, systemPrompt, segment, s.budgets.Choices)
	if err != nil {
		s.logger.Error("Choice generation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return NormalizeChoices(raw), nil
}

// imagePrompt строит промпт иллюстрации: фиксированная директива стиля,
// номер сегмента для консистентности серии, затем текст сегмента.
func (s *storyService) imagePrompt(segment string, segmentIndex int, artStyle string) string {
	var sb strings.Builder

	sb.WriteString(s.styleDirective)
	if artStyle != "" {
		sb.WriteString(", ")
		sb.WriteString(artStyle)
	}
	fmt.Fprintf(&sb, ", consistent style, segment %d of the story. ", segmentIndex)
	sb.WriteString(segment)

	return sb.String()
}
