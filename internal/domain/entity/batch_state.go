package entity

import "time"

// BatchStateSingletonID - единственная строка таблицы batch_state
const BatchStateSingletonID = 1

// BatchState хранит номер следующей партии вопросов (с 1).
// Единственное общее изменяемое состояние между сессиями.
type BatchState struct {
	ID           uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CurrentBatch int       `gorm:"not null;default:1" json:"current_batch"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (BatchState) TableName() string {
	return "batch_state"
}
