package repository

import (
	"errors"
	"fmt"
	"time"

	"iris-go/internal/model"

	"gorm.io/gorm"
)

// ErrNotFound запись не найдена
var ErrNotFound = errors.New("record not found")

// AlertRepository интерфейс для работы с событиями оповещений
type AlertRepository interface {
	Create(event *model.AlertEvent) error
	GetByID(id string) (*model.AlertEvent, error)
	List(page, pageSize int) ([]*model.AlertEvent, int64, error)
	ListSince(since time.Time) ([]*model.AlertEvent, error)
}

// alertRepository реализация AlertRepository
type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository создает новый instance AlertRepository
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{
		db: db,
	}
}

// Create сохраняет событие оповещения
func (r *alertRepository) Create(event *model.AlertEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create alert event: %w", err)
	}
	return nil
}

// GetByID получает событие по ID
func (r *alertRepository) GetByID(id string) (*model.AlertEvent, error) {
	var event model.AlertEvent
	err := r.db.Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("alert event with id %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get alert event: %w", err)
	}
	return &event, nil
}

// List получает список событий с пагинацией, новые первыми
func (r *alertRepository) List(page, pageSize int) ([]*model.AlertEvent, int64, error) {
	var events []*model.AlertEvent
	var total int64

	// Подсчитываем общее количество
	if err := r.db.Model(&model.AlertEvent{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count alert events: %w", err)
	}

	offset := (page - 1) * pageSize
	err := r.db.
		Offset(offset).
		Limit(pageSize).
		Order("fired_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alert events: %w", err)
	}

	return events, total, nil
}

// ListSince получает события начиная с момента since в хронологическом порядке
func (r *alertRepository) ListSince(since time.Time) ([]*model.AlertEvent, error) {
	var events []*model.AlertEvent
	err := r.db.
		Where("fired_at >= ?", since).
		Order("fired_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alert events since %s: %w", since.Format(time.RFC3339), err)
	}
	return events, nil
}
