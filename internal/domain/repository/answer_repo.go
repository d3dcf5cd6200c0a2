package repository

import (
	"context"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
)

// AnswerRepository определяет методы для работы с ответами
type AnswerRepository interface {
	// RecordAnswer в одной транзакции сохраняет ответ и обновляет points/attempts игрока.
	// multiAttempt=false: attempt всегда 1, повтор даёт apperrors.ErrConflict.
	// multiAttempt=true: attempt = предыдущий + 1.
	RecordAnswer(ctx context.Context, record *entity.AnswerRecord, multiAttempt bool) error
	HasAnswered(ctx context.Context, userID, questionID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]entity.AnswerRecord, error)
}
