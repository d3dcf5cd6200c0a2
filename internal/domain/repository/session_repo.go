package repository

import (
	"context"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
)

// BestSession - лучший забег игрока
type BestSession struct {
	UserID      uint
	Name        string
	Score       int
	TotalTimeMs int64
}

// SessionRepository определяет методы для итогов забегов
type SessionRepository interface {
	Save(ctx context.Context, session *entity.QuizSession) error
	// ListBest возвращает по одному лучшему забегу на игрока:
	// score по убыванию, затем total_time по возрастанию
	ListBest(ctx context.Context, limit int) ([]BestSession, error)
	ListByUser(ctx context.Context, userID uint) ([]entity.QuizSession, error)
}
