package model

import (
	"time"

	"gorm.io/gorm"
)

// AlertEvent сработавшее оповещение о препятствии
type AlertEvent struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Obstacle    string    `gorm:"type:varchar(100);not null;index" json:"obstacle"`
	FiredAt     time.Time `gorm:"not null;index" json:"fired_at"`
	ObjectCount int       `gorm:"not null;default:0" json:"object_count"`
	DurationMs  int       `gorm:"not null" json:"duration_ms"`
	Source      string    `gorm:"type:varchar(20);not null" json:"source"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName указывает имя таблицы для AlertEvent
func (AlertEvent) TableName() string {
	return "alert_events"
}
