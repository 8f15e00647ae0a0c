package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"iris-go/internal/haptic"
	"iris-go/internal/model"
	"iris-go/internal/obstacle"
	"iris-go/internal/repository"
	"iris-go/pkg/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MaxClockSkew допустимое опережение времени кадра клиента относительно часов сервера
const MaxClockSkew = 2 * time.Second

// ErrFutureTimestamp время кадра опережает часы сервера больше чем на MaxClockSkew
var ErrFutureTimestamp = errors.New("frame timestamp is in the future")

// pulsePublisher актуатор, которому можно передать название препятствия
type pulsePublisher interface {
	Publish(p haptic.Pulse)
}

// FrameAnalyzer сервис оценки кадров. Сериализует вызовы движка препятствий.
type FrameAnalyzer struct {
	engine   *obstacle.Engine
	actuator haptic.Actuator
	alerts   repository.AlertRepository
	logger   *logrus.Logger
	now      func() time.Time

	mu       sync.Mutex
	lastSeen time.Time
	seen     bool
}

// NewFrameAnalyzer создает новый сервис анализатора кадров. alerts может быть nil.
func NewFrameAnalyzer(engine *obstacle.Engine, actuator haptic.Actuator, alerts repository.AlertRepository, logger *logrus.Logger) *FrameAnalyzer {
	return &FrameAnalyzer{
		engine:   engine,
		actuator: actuator,
		alerts:   alerts,
		logger:   logger,
		now:      time.Now,
	}
}

// AnalyzeFrame оценивает кадр и при необходимости подает тактильный сигнал
func (a *FrameAnalyzer) AnalyzeFrame(ctx context.Context, req models.FrameRequest, source string) (*models.FrameResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := a.ValidateFrame(req); err != nil {
		return nil, err
	}

	objects := toDetectedObjects(req.Objects)

	a.mu.Lock()
	now := a.frameTime(req.TimestampMs)
	decision := a.engine.Inspect(objects, now)
	state := a.engine.State(now)
	a.mu.Unlock()

	resp := &models.FrameResponse{
		Alert:       decision.Alert,
		Found:       decision.Found,
		Obstacle:    decision.Obstacle,
		Suppressed:  decision.Suppressed,
		State:       state.String(),
		TimestampMs: now.UnixMilli(),
	}

	if !decision.Alert {
		if decision.Suppressed {
			a.logger.Debugf("Препятствие %s, сигнал подавлен охлаждением", decision.Obstacle)
		}
		return resp, nil
	}

	a.pulse(decision.Obstacle, now)
	a.logger.WithFields(logrus.Fields{
		"obstacle": decision.Obstacle,
		"objects":  len(objects),
		"source":   source,
	}).Info("Обнаружено препятствие, подан сигнал")

	if a.alerts != nil {
		event := &model.AlertEvent{
			ID:          uuid.New().String(),
			Obstacle:    decision.Obstacle,
			FiredAt:     now,
			ObjectCount: len(objects),
			DurationMs:  int(haptic.PulseDuration.Milliseconds()),
			Source:      source,
		}
		if err := a.alerts.Create(event); err != nil {
			// Сигнал уже подан, ошибка сохранения только логируется
			a.logger.Errorf("Ошибка сохранения события оповещения: %v", err)
		} else {
			resp.AlertID = event.ID
		}
	}

	return resp, nil
}

// ValidateFrame проверяет, что время кадра не опережает часы сервера больше чем на MaxClockSkew
func (a *FrameAnalyzer) ValidateFrame(req models.FrameRequest) error {
	if req.TimestampMs == nil {
		return nil
	}
	limit := a.now().Add(MaxClockSkew)
	if time.UnixMilli(*req.TimestampMs).After(limit) {
		return fmt.Errorf("%w: %d ms, limit %d ms", ErrFutureTimestamp, *req.TimestampMs, limit.UnixMilli())
	}
	return nil
}

// GetAlert получает событие оповещения по ID
func (a *FrameAnalyzer) GetAlert(id string) (*model.AlertEvent, error) {
	if a.alerts == nil {
		return nil, fmt.Errorf("alert event with id %s: %w", id, repository.ErrNotFound)
	}

	event, err := a.alerts.GetByID(id)
	if err != nil {
		a.logger.Errorf("Ошибка получения оповещения: %v", err)
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return event, nil
}

// Obstacles словарь препятствий и период охлаждения
func (a *FrameAnalyzer) Obstacles() ObstaclesResponse {
	return ObstaclesResponse{
		Labels:     a.engine.Obstacles().Labels(),
		CooldownMs: a.engine.Cooldown().Milliseconds(),
	}
}

// ListAlerts получает список оповещений с пагинацией
func (a *FrameAnalyzer) ListAlerts(page, pageSize int) (*ListAlertsResponse, error) {
	if a.alerts == nil {
		return &ListAlertsResponse{Alerts: []*model.AlertEvent{}, Page: page, Size: pageSize}, nil
	}

	events, total, err := a.alerts.List(page, pageSize)
	if err != nil {
		a.logger.Errorf("Ошибка получения списка оповещений: %v", err)
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	return &ListAlertsResponse{
		Alerts: events,
		Total:  total,
		Page:   page,
		Size:   pageSize,
	}, nil
}

// AlertStats считает статистику оповещений за последнее окно window
func (a *FrameAnalyzer) AlertStats(window time.Duration) (*AlertStats, error) {
	stats := &AlertStats{
		WindowSeconds: window.Seconds(),
		ByObstacle:    map[string]int{},
	}
	if a.alerts == nil {
		return stats, nil
	}

	events, err := a.alerts.ListSince(a.now().Add(-window))
	if err != nil {
		a.logger.Errorf("Ошибка получения оповещений для статистики: %v", err)
		return nil, fmt.Errorf("failed to compute alert stats: %w", err)
	}

	stats.TotalAlerts = len(events)
	for _, event := range events {
		stats.ByObstacle[event.Obstacle]++
	}

	if len(events) < 2 {
		return stats, nil
	}

	intervals := make([]float64, len(events)-1)
	for i := 1; i < len(events); i++ {
		intervals[i-1] = events[i].FiredAt.Sub(events[i-1].FiredAt).Seconds()
	}
	stats.MeanIntervalSeconds, stats.StdIntervalSeconds = stat.MeanStdDev(intervals, nil)
	stats.MinIntervalSeconds = floats.Min(intervals)
	if len(intervals) == 1 {
		stats.StdIntervalSeconds = 0
	}

	return stats, nil
}

// frameTime определяет время кадра. Время не может идти назад, опережение
// ограничено ValidateFrame. Вызывается под a.mu.
func (a *FrameAnalyzer) frameTime(timestampMs *int64) time.Time {
	var now time.Time
	if timestampMs != nil {
		now = time.UnixMilli(*timestampMs)
	} else {
		now = a.now()
	}

	if a.seen && now.Before(a.lastSeen) {
		now = a.lastSeen
	}
	a.lastSeen = now
	a.seen = true
	return now
}

func (a *FrameAnalyzer) pulse(obstacleLabel string, at time.Time) {
	if publisher, ok := a.actuator.(pulsePublisher); ok {
		publisher.Publish(haptic.Pulse{Duration: haptic.PulseDuration, At: at, Obstacle: obstacleLabel})
		return
	}
	a.actuator.Pulse(haptic.PulseDuration)
}

// toDetectedObjects преобразует объекты запроса в объекты движка
func toDetectedObjects(objects []models.DetectedObject) []obstacle.DetectedObject {
	result := make([]obstacle.DetectedObject, len(objects))
	for i, object := range objects {
		labels := make([]obstacle.Label, len(object.Labels))
		for j, label := range object.Labels {
			labels[j] = obstacle.Label{Text: label.Text, Confidence: label.Confidence}
		}
		result[i] = obstacle.DetectedObject{Labels: labels}
	}
	return result
}
