package sqlstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	"github.com/yourusername/spectra-quiz/internal/domain/repository"
)

// SessionRepo реализует repository.SessionRepository
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo создает новый репозиторий итогов забегов
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Save сохраняет итог забега
func (r *SessionRepo) Save(ctx context.Context, session *entity.QuizSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// bestSessionsSQL выбирает лучший забег каждого игрока оконной функцией
// (поддерживается и PostgreSQL, и SQLite >= 3.25)
const bestSessionsSQL = `
SELECT user_id, name, score, total_time_ms FROM (
    SELECT
        s.user_id,
        u.name,
        s.score,
        s.total_time_ms,
        ROW_NUMBER() OVER (
            PARTITION BY s.user_id
            ORDER BY s.score DESC, s.total_time_ms ASC, s.id ASC
        ) AS rn
    FROM quiz_sessions s
    JOIN users u ON u.id = s.user_id
) best
WHERE rn = 1
ORDER BY score DESC, total_time_ms ASC, user_id ASC`

// ListBest возвращает лучший забег каждого игрока. limit <= 0 - без ограничения.
func (r *SessionRepo) ListBest(ctx context.Context, limit int) ([]repository.BestSession, error) {
	query := bestSessionsSQL
	var rows []repository.BestSession
	var err error
	if limit > 0 {
		err = r.db.WithContext(ctx).Raw(query+"\nLIMIT ?", limit).Scan(&rows).Error
	} else {
		err = r.db.WithContext(ctx).Raw(query).Scan(&rows).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list best sessions: %w", err)
	}
	return rows, nil
}

// ListByUser возвращает все забеги игрока, новые первыми
func (r *SessionRepo) ListByUser(ctx context.Context, userID uint) ([]entity.QuizSession, error) {
	var sessions []entity.QuizSession
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&sessions).Error
	return sessions, err
}
