package handler

import (
	"errors"
	"net/http"
	"time"

	"iris-go/internal/repository"
	"iris-go/internal/service"
	"iris-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FrameHandler обрабатывает кадры и оповещения о препятствиях
type FrameHandler struct {
	analyzer *service.FrameAnalyzer
	queue    *service.FrameQueue
	logger   *logrus.Logger
}

// NewFrameHandler создает новый обработчик кадров. queue может быть nil.
func NewFrameHandler(analyzer *service.FrameAnalyzer, queue *service.FrameQueue, logger *logrus.Logger) *FrameHandler {
	return &FrameHandler{
		analyzer: analyzer,
		queue:    queue,
		logger:   logger,
	}
}

// AnalyzeFrame оценивает кадр синхронно
func (h *FrameHandler) AnalyzeFrame(c *gin.Context) {
	var req models.FrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Ошибка разбора кадра: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат кадра"})
		return
	}

	resp, err := h.analyzer.AnalyzeFrame(c.Request.Context(), req, service.SourceHTTP)
	if errors.Is(err, service.ErrFutureTimestamp) {
		h.logger.Warnf("Кадр отклонен: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Время кадра опережает часы сервера"})
		return
	}
	if err != nil {
		h.logger.Errorf("Ошибка оценки кадра: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка оценки кадра"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// EnqueueFrame кладет кадр в очередь, вытесняя необработанный
func (h *FrameHandler) EnqueueFrame(c *gin.Context) {
	if h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Очередь кадров не запущена"})
		return
	}

	var req models.FrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Ошибка разбора кадра: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат кадра"})
		return
	}

	if err := h.analyzer.ValidateFrame(req); err != nil {
		h.logger.Warnf("Кадр отклонен: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Время кадра опережает часы сервера"})
		return
	}

	replaced := h.queue.Offer(req)
	c.JSON(http.StatusAccepted, gin.H{
		"replaced_pending": replaced,
		"dropped_total":    h.queue.Dropped(),
	})
}

// GetObstacles возвращает словарь препятствий
func (h *FrameHandler) GetObstacles(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyzer.Obstacles())
}

// ListAlerts возвращает список оповещений с пагинацией
func (h *FrameHandler) ListAlerts(c *gin.Context) {
	page, size := pagination(c)

	resp, err := h.analyzer.ListAlerts(page, size)
	if err != nil {
		h.logger.Errorf("Ошибка получения списка оповещений: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения списка оповещений"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAlert возвращает событие оповещения по ID
func (h *FrameHandler) GetAlert(c *gin.Context) {
	alertID := c.Param("id")

	event, err := h.analyzer.GetAlert(alertID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Оповещение не найдено"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения оповещения"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// GetAlertStats возвращает статистику оповещений за окно window (по умолчанию 1h)
func (h *FrameHandler) GetAlertStats(c *gin.Context) {
	window, err := time.ParseDuration(c.DefaultQuery("window", "1h"))
	if err != nil || window <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат window"})
		return
	}

	stats, err := h.analyzer.AlertStats(window)
	if err != nil {
		h.logger.Errorf("Ошибка расчета статистики: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка расчета статистики"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
