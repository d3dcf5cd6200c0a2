package repository

import (
	"context"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
)

// UserRepository определяет методы для работы с игроками
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByName(ctx context.Context, name string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// ListByPoints возвращает игроков с попытками по убыванию очков; при равенстве - в порядке регистрации
	ListByPoints(ctx context.Context, limit int) ([]entity.User, error)
	Count(ctx context.Context) (int64, error)
}
