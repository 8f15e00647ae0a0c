package model

import "time"

// Слоты номеров опекунов
const (
	SlotPrimary = "caretaker_primary"
	SlotBackup  = "caretaker_backup"
)

// Caretaker номер опекуна в одном из слотов
type Caretaker struct {
	Slot   string `gorm:"primaryKey;type:varchar(32)" json:"slot"`
	Number string `gorm:"type:varchar(32);not null" json:"number"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName указывает имя таблицы для Caretaker
func (Caretaker) TableName() string {
	return "caretakers"
}
