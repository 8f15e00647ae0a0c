package handler

import (
	"context"
	"net/http"
	"strconv"

	"iris-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxImageSize максимальный размер загружаемого снимка
const maxImageSize = 16 << 20

// HealthChecker зависимость, состояние которой входит в проверку здоровья
type HealthChecker interface {
	CheckHealth(ctx context.Context) (*models.HealthResponse, error)
}

// HealthFunc адаптер функции к HealthChecker
type HealthFunc func(ctx context.Context) (*models.HealthResponse, error)

// CheckHealth вызывает функцию
func (f HealthFunc) CheckHealth(ctx context.Context) (*models.HealthResponse, error) {
	return f(ctx)
}

// Router собирает обработчики API
type Router struct {
	frames     *FrameHandler
	caretakers *CaretakerHandler
	assistant  *AssistantHandler
	health     map[string]HealthChecker
	logger     *logrus.Logger
}

// NewRouter создает новый экземпляр Router
func NewRouter(frames *FrameHandler, caretakers *CaretakerHandler, assistant *AssistantHandler, health map[string]HealthChecker, logger *logrus.Logger) *Router {
	return &Router{
		frames:     frames,
		caretakers: caretakers,
		assistant:  assistant,
		health:     health,
		logger:     logger,
	}
}

// RegisterRoutes регистрирует маршруты API
func (r *Router) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/frames", r.frames.AnalyzeFrame)
		api.POST("/frames/async", r.frames.EnqueueFrame)
		api.GET("/obstacles", r.frames.GetObstacles)
		api.GET("/alerts", r.frames.ListAlerts)
		api.GET("/alerts/stats", r.frames.GetAlertStats)
		api.GET("/alerts/:id", r.frames.GetAlert)

		api.GET("/caretakers", r.caretakers.GetCaretakers)
		api.POST("/caretakers", r.caretakers.AddCaretaker)
		api.PUT("/caretakers/backup", r.caretakers.UpdateBackup)
		api.POST("/caretakers/call", r.caretakers.CallCaretaker)

		api.POST("/settings/sessions", r.caretakers.OpenSettings)
		api.DELETE("/settings/sessions/:id", r.caretakers.CloseSettings)
		api.POST("/settings/sessions/:id/add", r.caretakers.PressAdd)
		api.POST("/settings/sessions/:id/edit", r.caretakers.PressEdit)

		api.POST("/voice", r.assistant.ProcessVoice)
		api.POST("/describe", r.assistant.DescribeScene)
		api.POST("/read-text", r.assistant.ReadText)

		api.GET("/health", r.CheckHealth)
	}
}

// CheckHealth проверяет состояние сервиса и его зависимостей
func (r *Router) CheckHealth(c *gin.Context) {
	r.logger.Debug("Получен запрос проверки здоровья сервиса")

	dependencies := gin.H{}
	healthy := true
	for name, checker := range r.health {
		resp, err := checker.CheckHealth(c.Request.Context())
		if err != nil {
			r.logger.Errorf("Зависимость %s недоступна: %v", name, err)
			dependencies[name] = "unhealthy"
			healthy = false
			continue
		}
		dependencies[name] = resp.Status
		if resp.Status != "healthy" {
			healthy = false
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":       "unhealthy",
			"dependencies": dependencies,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"dependencies": dependencies,
	})
}

// pagination читает параметры пагинации
func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 || size > 100 {
		size = 10
	}
	return page, size
}
