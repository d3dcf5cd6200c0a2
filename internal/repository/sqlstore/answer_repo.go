package sqlstore

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
)

// AnswerRepo реализует repository.AnswerRepository
type AnswerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo создает новый репозиторий ответов
func NewAnswerRepo(db *gorm.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// RecordAnswer сохраняет ответ и обновляет счёт игрока в одной транзакции:
// либо записано и то и другое, либо ничего.
func (r *AnswerRepo) RecordAnswer(ctx context.Context, record *entity.AnswerRecord, multiAttempt bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record.Attempt = 1
		if multiAttempt {
			var last int
			if err := tx.Model(&entity.AnswerRecord{}).
				Where("user_id = ? AND question_id = ?", record.UserID, record.QuestionID).
				Select("COALESCE(MAX(attempt), 0)").
				Scan(&last).Error; err != nil {
				return err
			}
			record.Attempt = last + 1
		}

		if err := tx.Create(record).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("question %d already answered by user %d: %w",
					record.QuestionID, record.UserID, apperrors.ErrConflict)
			}
			return err
		}

		points := 0
		if record.IsCorrect {
			points = 1
		}
		// Инкремент на стороне БД: параллельные ответы одного игрока не теряют обновлений
		res := tx.Model(&entity.User{}).
			Where("id = ?", record.UserID).
			Updates(map[string]interface{}{
				"points":   gorm.Expr("points + ?", points),
				"attempts": gorm.Expr("attempts + ?", 1),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %d: %w", record.UserID, apperrors.ErrNotFound)
		}

		log.Printf("[AnswerRepo] Ответ сохранён: user=%d question=%d attempt=%d correct=%t",
			record.UserID, record.QuestionID, record.Attempt, record.IsCorrect)
		return nil
	})
}

// HasAnswered проверяет, есть ли у игрока хотя бы один ответ на вопрос
func (r *AnswerRepo) HasAnswered(ctx context.Context, userID, questionID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.AnswerRecord{}).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser возвращает историю ответов игрока
func (r *AnswerRepo) ListByUser(ctx context.Context, userID uint) ([]entity.AnswerRecord, error) {
	var answers []entity.AnswerRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at, id").
		Find(&answers).Error
	return answers, err
}
