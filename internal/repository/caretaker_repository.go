package repository

import (
	"errors"
	"fmt"

	"iris-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CaretakerRepository интерфейс для хранения номеров опекунов
type CaretakerRepository interface {
	Get(slot string) (*model.Caretaker, error)
	Save(slot, number string) error
}

// caretakerRepository реализация CaretakerRepository
type caretakerRepository struct {
	db *gorm.DB
}

// NewCaretakerRepository создает новый instance CaretakerRepository
func NewCaretakerRepository(db *gorm.DB) CaretakerRepository {
	return &caretakerRepository{
		db: db,
	}
}

// Get получает номер из слота. Пустой слот возвращает ErrNotFound.
func (r *caretakerRepository) Get(slot string) (*model.Caretaker, error) {
	var caretaker model.Caretaker
	err := r.db.Where("slot = ?", slot).First(&caretaker).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("caretaker slot %s: %w", slot, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get caretaker: %w", err)
	}
	return &caretaker, nil
}

// Save записывает номер в слот, перезаписывая прежний
func (r *caretakerRepository) Save(slot, number string) error {
	caretaker := &model.Caretaker{Slot: slot, Number: number}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"number", "updated_at"}),
	}).Create(caretaker).Error
	if err != nil {
		return fmt.Errorf("failed to save caretaker %s: %w", slot, err)
	}
	return nil
}
