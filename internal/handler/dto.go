package handler

// GenerateStoryRequest - тело запроса POST /generate-story.
type GenerateStoryRequest struct {
	Genre       string `json:"genre" binding:"required"`
	ChildGender string `json:"childGender" binding:"required"`
	Theme       string `json:"theme" binding:"required"`
	Age         int    `json:"age" binding:"required,min=1"`
	ArtStyle    string `json:"artStyle"`
}

// ContinueStoryRequest - тело запроса POST /continue-story.
// Сессия хранится у клиента: накопленная история и счетчик решений
// присылаются в каждом запросе.
type ContinueStoryRequest struct {
	UserInput     string `json:"userInput"`
	PreviousStory string `json:"previousStory" binding:"required"`
	InputCount    int    `json:"inputCount"`
	SessionID     string `json:"sessionId,omitempty"`
}

// SegmentResponse - бандл сегмента: текст, варианты выбора и ссылки на артефакты.
type SegmentResponse struct {
	Story     string   `json:"story"`
	Choices   []string `json:"choices"`
	Image     string   `json:"image"`
	AudioURL  string   `json:"audioUrl"`
	SessionID string   `json:"sessionId,omitempty"`
}

// TranscriptionResponse - ответ POST /transcribe.
type TranscriptionResponse struct {
	Transcription string `json:"transcription"`
}

// SessionResponse - ответ GET /story-session/:id.
type SessionResponse struct {
	SessionID  string `json:"sessionId"`
	StoryText  string `json:"storyText"`
	InputCount int    `json:"inputCount"`
}

// APIError представляет стандартизированный ответ об ошибке.
type APIError struct {
	Message string `json:"error"`
}
