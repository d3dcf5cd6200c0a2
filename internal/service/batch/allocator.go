// Package batch раздаёт забегам партии вопросов по кругу.
package batch

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	"github.com/yourusername/spectra-quiz/internal/domain/repository"
	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
)

// QuestionSource - банк вопросов, из которого нарезаются партии
type QuestionSource interface {
	Len() int
	Slice(from, to int) []entity.Question
}

// Allocator хранит курсор партий в BatchStateRepository.
// Чтение и запись курсора выполняются в одной транзакции и под мьютексом процесса,
// поэтому два одновременных старта получают разные партии.
type Allocator struct {
	repo repository.BatchStateRepository
	mu   sync.Mutex
}

// NewAllocator создает распределитель партий
func NewAllocator(repo repository.BatchStateRepository) *Allocator {
	return &Allocator{repo: repo}
}

// TotalBatches возвращает ceil(bankSize / perBatch)
func TotalBatches(bankSize, perBatch int) int {
	if bankSize <= 0 || perBatch <= 0 {
		return 0
	}
	return (bankSize + perBatch - 1) / perBatch
}

// CurrentBatch возвращает номер партии, которую получит следующий забег
func (a *Allocator) CurrentBatch(ctx context.Context) (int, error) {
	current, err := a.repo.Current(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read batch cursor: %v: %w", err, apperrors.ErrPersistence)
	}
	return current, nil
}

// Advance перезаписывает курсор
func (a *Allocator) Advance(ctx context.Context, next int) error {
	if next < 1 {
		return fmt.Errorf("batch number must be positive, got %d: %w", next, apperrors.ErrValidation)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.repo.Set(ctx, next); err != nil {
		return fmt.Errorf("failed to write batch cursor: %v: %w", err, apperrors.ErrPersistence)
	}
	return nil
}

// SelectBatch выдаёт партию по текущему курсору и сдвигает курсор на следующую
// (после последней - снова первая). Курсор за пределами банка сбрасывается на 1.
// Возвращает вопросы партии и номер выданной партии.
func (a *Allocator) SelectBatch(ctx context.Context, bank QuestionSource, perBatch int) ([]entity.Question, int, error) {
	if perBatch <= 0 {
		return nil, 0, fmt.Errorf("per batch must be positive, got %d: %w", perBatch, apperrors.ErrValidation)
	}
	total := TotalBatches(bank.Len(), perBatch)
	if total == 0 {
		return nil, 0, fmt.Errorf("question bank is empty: %w", apperrors.ErrConfiguration)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var served int
	var questions []entity.Question
	err := a.repo.Rotate(ctx, func(current int) (int, error) {
		if current < 1 {
			current = 1
		}
		questions = bank.Slice((current-1)*perBatch, current*perBatch)
		if len(questions) == 0 {
			log.Printf("[BatchAllocator] Курсор %d за пределами банка (%d партий), сброс на 1", current, total)
			current = 1
			questions = bank.Slice(0, perBatch)
		}
		served = current

		next := current + 1
		if next > total {
			next = 1
		}
		return next, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to rotate batch cursor: %v: %w", err, apperrors.ErrPersistence)
	}

	log.Printf("[BatchAllocator] Выдана партия %d/%d (%d вопросов)", served, total, len(questions))
	return questions, served, nil
}
