package entity

import (
	"time"
)

// AnswerRecord представляет ответ пользователя на вопрос.
// Уникальный индекс (user_id, question_id, attempt): в режиме одной попытки attempt всегда 1,
// поэтому повторная запись того же вопроса отклоняется на уровне БД.
type AnswerRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index;uniqueIndex:idx_answer_attempt" json:"user_id"`
	QuestionID  uint      `gorm:"not null;uniqueIndex:idx_answer_attempt" json:"question_id"`
	Attempt     int       `gorm:"not null;default:1;uniqueIndex:idx_answer_attempt" json:"attempt"`
	AnswerText  string    `gorm:"size:255;not null" json:"answer_text"`
	IsCorrect   bool      `gorm:"not null" json:"is_correct"`
	TimeTakenMs int64     `gorm:"not null;default:0" json:"time_taken_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (AnswerRecord) TableName() string {
	return "answers"
}
