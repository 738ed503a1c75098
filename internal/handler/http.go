package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bedtime-server/internal/service"
	"bedtime-server/internal/session"
)

// genericGenerationError - сообщение для любой ошибки генерации.
// Какой именно коллаборатор упал, клиенту не сообщаем.
const genericGenerationError = "story generation failed, please try again"

// StoryHandler обрабатывает HTTP запросы сервера историй.
type StoryHandler struct {
	service     service.StoryService
	transcriber service.Transcriber
	sessions    session.Store // nil, если хранилище сессий отключено
	uploadDir   string
	logger      *zap.Logger
}

// NewStoryHandler создает новый StoryHandler. sessions может быть nil.
func NewStoryHandler(
	svc service.StoryService,
	transcriber service.Transcriber,
	sessions session.Store,
	uploadDir string,
	logger *zap.Logger,
) *StoryHandler {
	return &StoryHandler{
		service:     svc,
		transcriber: transcriber,
		sessions:    sessions,
		uploadDir:   uploadDir,
		logger:      logger.Named("StoryHandler"),
	}
}

// RegisterRoutes регистрирует маршруты сервера историй.
func (h *StoryHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/generate-story", h.generateStory)
	r.POST("/continue-story", h.continueStory)
	r.POST("/transcribe", h.transcribe)
	if h.sessions != nil {
		r.GET("/story-session/:id", h.getStorySession)
	}
}

// generateStory обрабатывает POST /generate-story.
func (h *StoryHandler) generateStory(c *gin.Context) {
	var req GenerateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body: " + err.Error()})
		return
	}

	bundle, err := h.service.GenerateStory(c.Request.Context(), service.GenerateStoryRequest{
		Genre:       req.Genre,
		ChildGender: req.ChildGender,
		Theme:       req.Theme,
		Age:         req.Age,
		ArtStyle:    req.ArtStyle,
	})
	if err != nil {
		h.logger.Error("Initial story generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Message: genericGenerationError})
		return
	}

	resp := segmentResponse(bundle)

	// Хранилище сессий опционально и best-effort: его ошибки не валят запрос
	if h.sessions != nil {
		sessionID := uuid.NewString()
		if err := h.sessions.Save(c.Request.Context(), sessionID, session.Session{
			StoryText:  bundle.Story,
			InputCount: 0,
		}); err != nil {
			h.logger.Warn("Failed to save story session", zap.Error(err))
		} else {
			resp.SessionID = sessionID
		}
	}

	c.JSON(http.StatusOK, resp)
}

// continueStory обрабатывает POST /continue-story.
func (h *StoryHandler) continueStory(c *gin.Context) {
	var req ContinueStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body: " + err.Error()})
		return
	}
	if req.InputCount < 0 {
		c.JSON(http.StatusBadRequest, APIError{Message: "inputCount must be non-negative"})
		return
	}

	bundle, err := h.service.ContinueStory(c.Request.Context(), service.ContinueStoryRequest{
		UserInput:     req.UserInput,
		PreviousStory: req.PreviousStory,
		InputCount:    req.InputCount,
	})
	if err != nil {
		h.logger.Error("Story continuation failed", zap.Error(err), zap.Int("input_count", req.InputCount))
		c.JSON(http.StatusInternalServerError, APIError{Message: genericGenerationError})
		return
	}

	resp := segmentResponse(bundle)

	if h.sessions != nil && req.SessionID != "" {
		if err := h.sessions.Save(c.Request.Context(), req.SessionID, session.Session{
			StoryText:  req.PreviousStory + bundle.Story,
			InputCount: req.InputCount + 1,
		}); err != nil {
			h.logger.Warn("Failed to update story session", zap.String("session_id", req.SessionID), zap.Error(err))
		} else {
			resp.SessionID = req.SessionID
		}
	}

	c.JSON(http.StatusOK, resp)
}

// transcribe обрабатывает POST /transcribe: принимает один аудиофайл
// (multipart поле "audio"), распознает речь и удаляет временный файл при успехе.
func (h *StoryHandler) transcribe(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "audio file is required"})
		return
	}

	tmpPath := filepath.Join(h.uploadDir, uuid.NewString()+filepath.Ext(fileHeader.Filename))
	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		h.logger.Error("Failed to store uploaded audio", zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Message: "failed to store uploaded file"})
		return
	}

	text, err := h.transcriber.Transcribe(c.Request.Context(), tmpPath)
	if err != nil {
		h.logger.Error("Transcription failed", zap.Error(err))
		// Временный файл намеренно не удаляем: он может пригодиться для разбора
		c.JSON(http.StatusInternalServerError, APIError{Message: "transcription failed"})
		return
	}

	if err := os.Remove(tmpPath); err != nil {
		h.logger.Warn("Failed to remove uploaded audio", zap.String("path", tmpPath), zap.Error(err))
	}

	c.JSON(http.StatusOK, TranscriptionResponse{Transcription: text})
}

// getStorySession обрабатывает GET /story-session/:id.
func (h *StoryHandler) getStorySession(c *gin.Context) {
	id := c.Param("id")

	s, err := h.sessions.Get(c.Request.Context(), id)
	if errors.Is(err, session.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, APIError{Message: "story session not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to load story session", zap.String("session_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Message: "failed to load story session"})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		SessionID:  id,
		StoryText:  s.StoryText,
		InputCount: s.InputCount,
	})
}

// segmentResponse конвертирует бандл сервиса в DTO ответа.
func segmentResponse(bundle *service.SegmentBundle) SegmentResponse {
	choices := bundle.Choices
	if choices == nil {
		choices = []string{} // В JSON всегда отдаем [], а не null
	}
	return SegmentResponse{
		Story:    bundle.Story,
		Choices:  choices,
		Image:    bundle.ImageURL,
		AudioURL: bundle.AudioURL,
	}
}
