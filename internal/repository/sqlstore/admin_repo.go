package sqlstore

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
)

// AdminRepo реализует repository.AdminRepository
type AdminRepo struct {
	db *gorm.DB
}

// NewAdminRepo создает новый административный репозиторий
func NewAdminRepo(db *gorm.DB) *AdminRepo {
	return &AdminRepo{db: db}
}

// ClearAll очищает все данные игры в одной транзакции.
// Порядок удаления учитывает внешние ключи: ответы и забеги раньше игроков.
func (r *AdminRepo) ClearAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		models := []interface{}{
			&entity.AnswerRecord{},
			&entity.QuizSession{},
			&entity.User{},
			&entity.BatchState{},
		}
		for _, model := range models {
			res := tx.Where("1 = 1").Delete(model)
			if res.Error != nil {
				return res.Error
			}
			log.Printf("[AdminRepo] Удалено %d строк из %T", res.RowsAffected, model)
		}
		return nil
	})
}
