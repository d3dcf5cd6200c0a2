package entity

import (
	"time"
)

// QuizSession - итог одного завершённого прохождения викторины.
// Используется лидербордом "лучший забег".
type QuizSession struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Score         int       `gorm:"not null;default:0;index:idx_sessions_best" json:"score"`
	TotalTimeMs   int64     `gorm:"not null;default:0;index:idx_sessions_best" json:"total_time_ms"`
	QuestionCount int       `gorm:"not null;default:0" json:"question_count"`
	Batch         int       `gorm:"not null;default:0" json:"batch"`
	Tier          string    `gorm:"size:10;not null;default:'easy'" json:"tier"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (QuizSession) TableName() string {
	return "quiz_sessions"
}
