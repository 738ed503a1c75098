package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"bedtime-server/internal/config"
	"bedtime-server/internal/handler"
	"bedtime-server/internal/logger"
	"bedtime-server/internal/middleware"
	"bedtime-server/internal/service"
	"bedtime-server/internal/session"
	"bedtime-server/internal/storage"
)

func main() {
	// zerolog для самых ранних сообщений, до инициализации zap
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		// Предупреждение, т.к. в production .env может не использоваться
		zlog.Warn().Err(err).Msg("could not load .env file")
	}

	// --- Загрузка конфигурации ---
	cfg := config.Load()

	// --- Инициализация логгера ---
	appLogger, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to initialize logger")
	}
	defer appLogger.Sync()
	appLogger.Info("Logger initialized", zap.String("level", cfg.LogLevel))
	appLogger.Info("Starting Bedtime Story Server...", zap.String("env", cfg.AppEnv))

	// --- Директория для временных загрузок ---
	if err := os.MkdirAll(cfg.Uploads.TmpDir, 0755); err != nil {
		appLogger.Fatal("Failed to create upload directory", zap.Error(err))
	}

	// --- Инициализация AI клиентов ---
	textGen, err := service.NewTextGenerator(cfg.AI)
	if err != nil {
		appLogger.Fatal("Failed to initialize text generator", zap.Error(err))
	}
	imageGen, err := service.NewImageGenerator(cfg.ImageGen, cfg.AI.APIKey, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize image generator", zap.Error(err))
	}
	voiceGen := service.NewVoiceGenerator(cfg.Voice, cfg.AI.APIKey, appLogger)
	transcriber := service.NewTranscriber(cfg.AI.APIKey, appLogger)

	// --- Хранилище артефактов ---
	artifactStore, err := storage.NewFileArtifactStore(cfg.Storage.MediaSavePath, cfg.Storage.PublicBaseURL, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize artifact store", zap.Error(err))
	}

	// --- Промпты ---
	prompts := service.NewPromptProvider(cfg.PromptsDir, appLogger)
	if err := prompts.LoadPrompts(); err != nil {
		appLogger.Fatal("Failed to load prompts", zap.Error(err))
	}

	// --- Сервис историй ---
	storyService := service.NewStoryService(
		textGen,
		imageGen,
		voiceGen,
		artifactStore,
		prompts,
		cfg.ImageGen.StyleDirective,
		service.TokenBudgets{
			Story:   cfg.AI.StoryMaxTokens,
			Choices: cfg.AI.ChoicesMaxTokens,
		},
		appLogger,
	)

	// --- Опциональное хранилище сессий ---
	var sessionStore session.Store
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			appLogger.Fatal("Failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
		sessionStore = session.NewRedisStore(redisClient, cfg.Redis.SessionTTL, appLogger)
		appLogger.Info("Session store enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// --- Настройка Gin ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.GinZapLogger(appLogger))

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	// Prometheus метрики на /metrics
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	// Статическая раздача сгенерированных артефактов
	router.Static(cfg.Storage.PublicBaseURL, cfg.Storage.MediaSavePath)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := handler.NewStoryHandler(storyService, transcriber, sessionStore, cfg.Uploads.TmpDir, appLogger)
	h.RegisterRoutes(router)

	// --- Запуск HTTP сервера ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		appLogger.Info("Bedtime story server listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server shutdown failed", zap.Error(err))
	}

	appLogger.Info("Server stopped gracefully")
}
