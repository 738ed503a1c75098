package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config структура для хранения всей конфигурации приложения.
type Config struct {
	AppEnv     string `env:"APP_ENV" env-default:"development"`
	ServerPort string `env:"SERVER_PORT" env-default:"8080"`

	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
	LogEncoding string `env:"LOG_ENCODING" env-default:"json"`

	PromptsDir string `env:"PROMPTS_DIR" env-default:"prompts"`

	AI       AIConfig
	ImageGen ImageGenConfig
	Voice    VoiceConfig
	Storage  StorageConfig
	Uploads  UploadsConfig
	Redis    RedisConfig
}

// AIConfig конфигурация текстовой генерации.
type AIConfig struct {
	// Тип клиента: "openai" (совместимые API, включая OpenRouter) или "ollama"
	ClientType string        `env:"AI_CLIENT_TYPE" env-default:"openai"`
	BaseURL    string        `env:"AI_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model      string        `env:"AI_MODEL" env-default:"gpt-4o-mini"`
	APIKey     string        `env:"AI_API_KEY"`
	Timeout    time.Duration `env:"AI_TIMEOUT" env-default:"120s"`

	// Бюджеты длины ответа (в токенах модели)
	StoryMaxTokens   int `env:"AI_STORY_MAX_TOKENS" env-default:"700"`
	ChoicesMaxTokens int `env:"AI_CHOICES_MAX_TOKENS" env-default:"120"`
}

// ImageGenConfig конфигурация генерации иллюстраций.
type ImageGenConfig struct {
	// Тип клиента: "openai" (DALL-E) или "sana" (локальный сервер, возвращающий байты)
	ClientType string `env:"IMAGE_CLIENT_TYPE" env-default:"openai"`
	Model      string `env:"IMAGE_MODEL" env-default:"dall-e-3"`
	Size       string `env:"IMAGE_SIZE" env-default:"1024x1024"`

	SanaBaseURL string `env:"SANA_SERVER_BASE_URL" env-default:"http://localhost:8002"`
	SanaTimeout int    `env:"SANA_SERVER_TIMEOUT_SEC" env-default:"120"` // Таймаут в секундах

	// Директива стиля, добавляемая в начало каждого промпта иллюстрации
	StyleDirective string `env:"IMAGE_PROMPT_STYLE_DIRECTIVE" env-default:"no text, no captions, no letters, warm children's picture-book illustration, soft lighting, gentle colors"`
}

// VoiceConfig конфигурация озвучки.
type VoiceConfig struct {
	Model string `env:"VOICE_MODEL" env-default:"tts-1"`
	Voice string `env:"VOICE_NAME" env-default:"fable"` // Фиксированный голос рассказчика
}

// StorageConfig конфигурация файлового хранилища артефактов.
type StorageConfig struct {
	MediaSavePath string `env:"MEDIA_SAVE_PATH" env-default:"media"`
	PublicBaseURL string `env:"MEDIA_PUBLIC_BASE_URL" env-default:"/media"`
}

// UploadsConfig конфигурация временных загрузок для транскрипции.
type UploadsConfig struct {
	TmpDir string `env:"UPLOAD_TMP_DIR" env-default:"uploads"`
}

// RedisConfig конфигурация опционального хранилища сессий.
// Если Addr пустой, хранилище сессий отключено.
type RedisConfig struct {
	Addr       string        `env:"REDIS_ADDR" env-default:""`
	Password   string        `env:"REDIS_PASSWORD" env-default:""`
	DB         int           `env:"REDIS_DB" env-default:"0"`
	SessionTTL time.Duration `env:"SESSION_TTL" env-default:"24h"`
}

// Load загружает конфигурацию из переменных окружения и .env файла.
func Load() *Config {
	// Загружаем .env файл (игнорируем ошибку, если файла нет)
	_ = godotenv.Load()

	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Логируем загруженную конфигурацию (кроме ключей)
	log.Printf("Конфигурация загружена:")
	log.Printf("  Server Port: %s", cfg.ServerPort)
	log.Printf("  AI Client: %s (model %s, base %s, timeout %v)", cfg.AI.ClientType, cfg.AI.Model, cfg.AI.BaseURL, cfg.AI.Timeout)
	log.Printf("  Image Client: %s (model %s)", cfg.ImageGen.ClientType, cfg.ImageGen.Model)
	log.Printf("  Voice: %s / %s", cfg.Voice.Model, cfg.Voice.Voice)
	log.Printf("  Media Dir: %s (public %s)", cfg.Storage.MediaSavePath, cfg.Storage.PublicBaseURL)
	log.Printf("  Prompts Dir: %s", cfg.PromptsDir)
	if cfg.Redis.Addr != "" {
		log.Printf("  Session Store: redis %s (ttl %v)", cfg.Redis.Addr, cfg.Redis.SessionTTL)
	} else {
		log.Printf("  Session Store: disabled")
	}
	if cfg.AI.APIKey != "" {
		log.Println("  AI API Key: [ЗАГРУЖЕН]")
	}

	return &cfg
}
