package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bedtime-server/internal/service"
	"bedtime-server/internal/service/mocks"
	"bedtime-server/internal/storage"
)

// Содержимое тестовых промптов - по нему различаем вызовы текстового генератора.
const (
	testBedtimePrompt  = "BEDTIME SYSTEM PROMPT"
	testContinuePrompt = "CONTINUE SYSTEM PROMPT"
	testConcludePrompt = "CONCLUDE SYSTEM PROMPT"
	testChoicesPrompt  = "CHOICES SYSTEM PROMPT"

	testStyleDirective = "no text, no captions, test style"

	testSegmentText = "Once upon a time, a small fox found a silver lantern.\nWhat should the fox do?"
	testChoicesText = "1. Open the lantern\n2. Carry it home\n3. Call for mother fox"
)

// setupPrompts создает временную директорию промптов и загруженный провайдер.
func setupPrompts(t *testing.T) *service.PromptProvider {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		service.PromptBedtimeStory:  testBedtimePrompt,
		service.PromptContinueStory: testContinuePrompt,
		service.PromptConcludeStory: testConcludePrompt,
		service.PromptStoryChoices:  testChoicesPrompt,
	}
	for key, content := range files {
		err := os.WriteFile(filepath.Join(dir, key+".md"), []byte(content), 0644)
		require.NoError(t, err)
	}

	provider := service.NewPromptProvider(dir, zap.NewNop())
	require.NoError(t, provider.LoadPrompts())
	return provider
}

type storyServiceFixture struct {
	ai     *mocks.MockTextGenerator
	images *mocks.MockImageGenerator
	voice  *mocks.MockVoiceGenerator
	store  *mocks.MockArtifactStore
	svc    service.StoryService
}

func newStoryServiceFixture(t *testing.T) *storyServiceFixture {
	t.Helper()

	f := &storyServiceFixture{
		ai:     mocks.NewMockTextGenerator(t),
		images: mocks.NewMockImageGenerator(t),
		voice:  mocks.NewMockVoiceGenerator(t),
		store:  mocks.NewMockArtifactStore(t),
	}
	f.svc = service.NewStoryService(
		f.ai, f.images, f.voice, f.store,
		setupPrompts(t),
		testStyleDirective,
		service.TokenBudgets{Story: 700, Choices: 120},
		zap.NewNop(),
	)
	return f
}

// expectArtifacts настраивает успешную генерацию изображения и озвучки
// для сегмента с заданным индексом.
func (f *storyServiceFixture) expectArtifacts(segmentIndex int) {
	f.images.On("GenerateImage", mock.Anything, mock.AnythingOfType("string")).
		Return([]byte("png-bytes"), nil).Once()
	f.store.On("Save", storage.KindImage, segmentIndex, []byte("png-bytes")).
		Return("/media/story_image.png", nil).Once()
	f.voice.On("Synthesize", mock.Anything, mock.AnythingOfType("string")).
		Return([]byte("mp3-bytes"), nil).Once()
	f.store.On("Save", storage.KindAudio, segmentIndex, []byte("mp3-bytes")).
		Return("/media/story_audio.mp3", nil).Once()
}

func TestStoryService_GenerateStory(t *testing.T) {
	f := newStoryServiceFixture(t)

	f.ai.On("GenerateText", mock.Anything, testBedtimePrompt, mock.AnythingOfType("string"), 700).
		Return(testSegmentText+"\n\n\n", service.UsageInfo{}, nil).Once()
	f.ai.On("GenerateText", mock.Anything, testChoicesPrompt, mock.AnythingOfType("string"), 120).
		Return(testChoicesText, service.UsageInfo{}, nil).Once()
	// Начальная история всегда использует индекс 0
	f.expectArtifacts(0)

	bundle, err := f.svc.GenerateStory(context.Background(), service.GenerateStoryRequest{
		Genre:       "adventure",
		ChildGender: "girl",
		Theme:       "a fox and a lantern",
		Age:         5,
		ArtStyle:    "watercolor",
	})

	require.NoError(t, err)
	assert.Equal(t, testSegmentText+"\n\n", bundle.Story)
	assert.Equal(t, []string{
		"1. Open the lantern",
		"2. Carry it home",
		"3. Call for mother fox",
	}, bundle.Choices)
	assert.Equal(t, "/media/story_image.png", bundle.ImageURL)
	assert.Equal(t, "/media/story_audio.mp3", bundle.AudioURL)

	// Промпт иллюстрации: директива стиля, стиль из запроса, номер сегмента, текст
	imagePrompt := f.images.Calls[0].Arguments.String(1)
	assert.Contains(t, imagePrompt, testStyleDirective)
	assert.Contains(t, imagePrompt, "watercolor")
	assert.Contains(t, imagePrompt, "segment 0 of the story")
	assert.Contains(t, imagePrompt, "a small fox found a silver lantern")

	f.ai.AssertExpectations(t)
	f.images.AssertExpectations(t)
	f.voice.AssertExpectations(t)
	f.store.AssertExpectations(t)
}

func TestStoryService_ContinueStory_MidStory(t *testing.T) {
	f := newStoryServiceFixture(t)

	f.ai.On("GenerateText", mock.Anything, testContinuePrompt, mock.AnythingOfType("string"), 700).
		Return(testSegmentText, service.UsageInfo{}, nil).Once()
	f.ai.On("GenerateText", mock.Anything, testChoicesPrompt, mock.AnythingOfType("string"), 120).
		Return(testChoicesText, service.UsageInfo{}, nil).Once()
	// inputCount = 0 -> артефакты сегмента 1
	f.expectArtifacts(1)

	bundle, err := f.svc.ContinueStory(context.Background(), service.ContinueStoryRequest{
		UserInput:     "Open the lantern",
		PreviousStory: "Once upon a time...",
		InputCount:    0,
	})

	require.NoError(t, err)
	assert.Len(t, bundle.Choices, 3)
	assert.Equal(t, testSegmentText+"\n\n", bundle.Story)

	// Пользовательский промпт несет историю и выбор читателя
	userPrompt := f.ai.Calls[0].Arguments.String(2)
	assert.Contains(t, userPrompt, "Once upon a time...")
	assert.Contains(t, userPrompt, "Open the lantern")

	f.ai.AssertExpectations(t)
}

func TestStoryService_ContinueStory_SecondDecisionStillContinues(t *testing.T) {
	f := newStoryServiceFixture(t)

	f.ai.On("GenerateText", mock.Anything, testContinuePrompt, mock.AnythingOfType("string"), 700).
		Return(testSegmentText, service.UsageInfo{}, nil).Once()
	f.ai.On("GenerateText", mock.Anything, testChoicesPrompt, mock.AnythingOfType("string"), 120).
		Return(testChoicesText, service.UsageInfo{}, nil).Once()
	// inputCount = 1 -> артефакты сегмента 2
	f.expectArtifacts(2)

	bundle, err := f.svc.ContinueStory(context.Background(), service.ContinueStoryRequest{
		UserInput:     "Carry it home",
		PreviousStory: "story so far",
		InputCount:    1,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, bundle.Choices)
}

func TestStoryService_ContinueStory_Concludes(t *testing.T) {
	f := newStoryServiceFixture(t)

	f.ai.On("GenerateText", mock.Anything, testConcludePrompt, mock.AnythingOfType("string"), 700).
		Return("And they lived happily. The end.", service.UsageInfo{}, nil).Once()
	// inputCount = 2 -> финал, артефакты сегмента 3
	f.expectArtifacts(3)

	bundle, err := f.svc.ContinueStory(context.Background(), service.ContinueStoryRequest{
		UserInput:     "Call for mother fox",
		PreviousStory: "story so far",
		InputCount:    2,
	})

	require.NoError(t, err)
	assert.NotNil(t, bundle.Choices)
	assert.Empty(t, bundle.Choices)
	assert.Equal(t, "And they lived happily. The end.\n\n", bundle.Story)

	// Финал не запрашивает варианты: единственный вызов текстовой генерации
	f.ai.AssertNumberOfCalls(t, "GenerateText", 1)
}

func TestStoryService_ContinueStory_PastConclusionKeepsConcluding(t *testing.T) {
	f := newStoryServiceFixture(t)

	f.ai.On("GenerateText", mock.Anything, testConcludePrompt, mock.AnythingOfType("string"), 700).
		Return("Another ending.", service.UsageInfo{}, nil).Once()
	f.expectArtifacts(6)

	bundle, err := f.svc.ContinueStory(context.Background(), service.ContinueStoryRequest{
		UserInput:     "keep going",
		PreviousStory: "story so far",
		InputCount:    5,
	})

	require.NoError(t, err)
	assert.Empty(t, bundle.Choices)
}

func TestStoryService_TextFailureShortCircuits(t *testing.T) {
	f := newStoryServiceFixture(t)

	f.ai.On("GenerateText", mock.Anything, testContinuePrompt, mock.AnythingOfType("string"), 700).
		Return("", service.UsageInfo{}, errors.New("rate limited")).Once()

	_, err := f.svc.ContinueStory(context.Background(), service.ContinueStoryRequest{
		UserInput:     "Go on",
		PreviousStory: "story",
		InputCount:    0,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrGenerationFailed)
	// Дальше текстовой генерации дело не дошло
	f.images.AssertNotCalled(t, "GenerateImage", mock.Anything, mock.Anything)
	f.voice.AssertNotCalled(t, "Synthesize", mock.Anything, mock.Anything)
	f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestStoryService_ImageFailureShortCircuits(t *testing.T) {
	f := newStoryServiceFixture(t)

	f.ai.On("GenerateText", mock.Anything, testContinuePrompt, mock.AnythingOfType("string"), 700).
		Return(testSegmentText, service.UsageInfo{}, nil).Once()
	f.ai.On("GenerateText", mock.Anything, testChoicesPrompt, mock.AnythingOfType("string"), 120).
		Return(testChoicesText, service.UsageInfo{}, nil).Once()
	f.images.On("GenerateImage", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, errors.New("image server down")).Once()

	_, err := f.svc.ContinueStory(context.Background(), service.ContinueStoryRequest{
		UserInput:     "Go on",
		PreviousStory: "story",
		InputCount:    1,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrGenerationFailed)
	f.voice.AssertNotCalled(t, "Synthesize", mock.Anything, mock.Anything)
}

func TestStoryService_VoiceFailureAfterImageSaved(t *testing.T) {
	f := newStoryServiceFixture(t)

	f.ai.On("GenerateText", mock.Anything, testConcludePrompt, mock.AnythingOfType("string"), 700).
		Return("Ending.", service.UsageInfo{}, nil).Once()
	f.images.On("GenerateImage", mock.Anything, mock.AnythingOfType("string")).
		Return([]byte("png-bytes"), nil).Once()
	f.store.On("Save", storage.KindImage, 3, []byte("png-bytes")).
		Return("/media/story_image_3.png", nil).Once()
	f.voice.On("Synthesize", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, errors.New("tts down")).Once()

	_, err := f.svc.ContinueStory(context.Background(), service.ContinueStoryRequest{
		UserInput:     "Finish",
		PreviousStory: "story",
		InputCount:    2,
	})

	// Ошибка после записи изображения: запрос падает, файл не подчищается
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrGenerationFailed)
	f.store.AssertNumberOfCalls(t, "Save", 1)
}
