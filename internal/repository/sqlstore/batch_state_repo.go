package sqlstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
)

// BatchStateRepo реализует repository.BatchStateRepository
type BatchStateRepo struct {
	db *gorm.DB
}

// NewBatchStateRepo создает новый репозиторий курсора партий
func NewBatchStateRepo(db *gorm.DB) *BatchStateRepo {
	return &BatchStateRepo{db: db}
}

// Current возвращает текущий номер партии; если строки нет - 1
func (r *BatchStateRepo) Current(ctx context.Context) (int, error) {
	var state entity.BatchState
	err := r.db.WithContext(ctx).Where("id = ?", entity.BatchStateSingletonID).Take(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1, nil
		}
		return 0, err
	}
	return state.CurrentBatch, nil
}

// Set перезаписывает курсор (upsert единственной строки)
func (r *BatchStateRepo) Set(ctx context.Context, batch int) error {
	state := entity.BatchState{ID: entity.BatchStateSingletonID, CurrentBatch: batch, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_batch", "updated_at"}),
	}).Create(&state).Error
}

// Rotate читает курсор под блокировкой строки (SELECT ... FOR UPDATE в PostgreSQL;
// SQLite сериализует пишущие транзакции сам), вызывает fn и записывает результат
// в той же транзакции.
func (r *BatchStateRepo) Rotate(ctx context.Context, fn func(current int) (int, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := lockBatchState(tx)
		if err != nil {
			return err
		}

		next, err := fn(state.CurrentBatch)
		if err != nil {
			return err
		}

		return tx.Model(&entity.BatchState{}).
			Where("id = ?", entity.BatchStateSingletonID).
			Updates(map[string]interface{}{"current_batch": next, "updated_at": time.Now()}).Error
	})
}

func lockBatchState(tx *gorm.DB) (*entity.BatchState, error) {
	var state entity.BatchState
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", entity.BatchStateSingletonID).
		Take(&state).Error
	if err == nil {
		return &state, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Первая ротация: создаём строку (параллельная вставка другим процессом не ошибка)
	initial := entity.BatchState{ID: entity.BatchStateSingletonID, CurrentBatch: 1, UpdatedAt: time.Now()}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&initial).Error; err != nil {
		return nil, err
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", entity.BatchStateSingletonID).
		Take(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}
