package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"iris-go/internal/client"
	"iris-go/internal/config"
	"iris-go/internal/database"
	"iris-go/internal/grpcserver"
	"iris-go/internal/handler"
	"iris-go/internal/haptic"
	"iris-go/internal/obstacle"
	"iris-go/internal/repository"
	"iris-go/internal/service"
	"iris-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

func main() {
	// Инициализируем логгер
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.Info("Запуск IRIS API Server")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Ошибка чтения конфигурации: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("Неизвестный уровень логирования %q, используем info", cfg.Logging.Level)
	}

	// Инициализируем базу данных
	logger.Info("Подключение к базе данных...")
	if err := database.Connect(cfg); err != nil {
		logger.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer database.Close()

	logger.Info("Выполнение миграций базы данных...")
	if err := database.Migrate(); err != nil {
		logger.Fatalf("Ошибка выполнения миграций: %v", err)
	}

	if err := database.HealthCheck(); err != nil {
		logger.Fatalf("База данных недоступна: %v", err)
	}
	logger.Info("База данных успешно подключена и готова к работе")

	// Инициализируем репозитории
	alertRepo := repository.NewAlertRepository(database.DB)
	caretakerRepo := repository.NewCaretakerRepository(database.DB)

	// Движок препятствий
	obstacles := obstacle.DefaultObstacleSet()
	if len(cfg.Obstacle.Labels) > 0 {
		obstacles = obstacle.NewObstacleSet(cfg.Obstacle.Labels...)
	}
	engine := obstacle.NewEngine(obstacles, cfg.Cooldown())
	logger.Infof("Словарь препятствий: %d меток, охлаждение %v", obstacles.Len(), engine.Cooldown())

	// Инициализируем сервисы
	pulses := haptic.NewBroadcaster(haptic.NewLogActuator(logger))
	speaker := service.NewLogSpeaker(logger)
	dialer := service.NewLogDialer(logger, true)
	visionClient := client.NewVisionAPIClient(cfg.VisionAPI.BaseURL, cfg.VisionTimeout(), logger)

	analyzer := service.NewFrameAnalyzer(engine, pulses, alertRepo, logger)
	queue := service.NewFrameQueue(analyzer, logger, nil)
	caretakers := service.NewCaretakerService(caretakerRepo, speaker, dialer, logger)
	settings := service.NewSettingsService(caretakers, speaker, logger)
	vision := service.NewVisionService(visionClient, speaker, logger)
	voice := service.NewVoiceService(vision, caretakers, speaker, logger)

	// Инициализируем обработчики
	router := handler.NewRouter(
		handler.NewFrameHandler(analyzer, queue, logger),
		handler.NewCaretakerHandler(caretakers, settings, logger),
		handler.NewAssistantHandler(voice, vision, logger),
		map[string]handler.HealthChecker{
			"database": handler.HealthFunc(databaseHealth),
			"vision":   visionClient,
		},
		logger,
	)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engineHTTP := gin.New()
	engineHTTP.Use(gin.Logger())
	engineHTTP.Use(gin.Recovery())
	engineHTTP.Use(corsMiddleware())
	router.RegisterRoutes(engineHTTP)

	engineHTTP.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "IRIS API Server",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := queue.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("Очередь кадров остановлена с ошибкой: %v", err)
		}
	}()

	// gRPC сервер
	grpcServer := grpc.NewServer()
	grpcserver.NewServer(analyzer, pulses, logger).Register(grpcServer)

	grpcAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort)
	grpcListener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logger.Fatalf("Ошибка запуска gRPC сервера: %v", err)
	}
	go func() {
		logger.Infof("gRPC сервер запущен на %s", grpcAddr)
		if err := grpcServer.Serve(grpcListener); err != nil {
			logger.Errorf("Ошибка gRPC сервера: %v", err)
		}
	}()

	// HTTP сервер
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: engineHTTP,
	}
	go func() {
		logger.Infof("Сервер запущен на %s", serverAddr)
		logger.Infof("API доступно по адресу: http://localhost:%d/api/v1", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Ошибка запуска сервера: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Остановка сервера...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Ошибка остановки HTTP сервера: %v", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Сервер остановлен")
}

// databaseHealth проверяет соединение с базой данных
func databaseHealth(ctx context.Context) (*models.HealthResponse, error) {
	if err := database.HealthCheck(); err != nil {
		return nil, err
	}
	return &models.HealthResponse{Status: "healthy", Version: "1.0.0"}, nil
}

// corsMiddleware добавляет заголовки CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
