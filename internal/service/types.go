package service

import "iris-go/internal/model"

// Источники кадров
const (
	SourceHTTP  = "http"
	SourceQueue = "queue"
	SourceGRPC  = "grpc"
)

// ListAlertsResponse ответ со списком оповещений
type ListAlertsResponse struct {
	Alerts []*model.AlertEvent `json:"alerts"`
	Total  int64               `json:"total"`
	Page   int                 `json:"page"`
	Size   int                 `json:"size"`
}

// AlertStats статистика оповещений за окно наблюдения
type AlertStats struct {
	WindowSeconds       float64        `json:"window_seconds"`
	TotalAlerts         int            `json:"total_alerts"`
	ByObstacle          map[string]int `json:"by_obstacle"`
	MeanIntervalSeconds float64        `json:"mean_interval_seconds"`
	StdIntervalSeconds  float64        `json:"std_interval_seconds"`
	MinIntervalSeconds  float64        `json:"min_interval_seconds"`
}

// ObstaclesResponse словарь препятствий и период охлаждения
type ObstaclesResponse struct {
	Labels     []string `json:"labels"`
	CooldownMs int64    `json:"cooldown_ms"`
}
