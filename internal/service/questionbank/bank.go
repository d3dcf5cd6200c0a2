// Package questionbank собирает неизменяемый банк вопросов при старте процесса.
package questionbank

import (
	"fmt"
	"log"

	"github.com/yourusername/spectra-quiz/internal/config"
	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
)

// Bank - упорядоченный список вопросов с ID 1..n. После создания не изменяется,
// наружу отдаются только копии.
type Bank struct {
	questions []entity.Question
}

// New создает банк и присваивает вопросам ID по порядку, начиная с 1
func New(questions []entity.Question) *Bank {
	copied := make([]entity.Question, len(questions))
	for i := range questions {
		copied[i] = cloneQuestion(questions[i])
		copied[i].ID = uint(i + 1)
	}
	return &Bank{questions: copied}
}

// Load строит банк из источника, выбранного в конфигурации
func Load(cfg config.BankConfig) (*Bank, error) {
	switch cfg.Source {
	case config.BankSourceDirectory:
		return LoadDirectory(cfg)
	case config.BankSourceBuiltin, "":
		bank := BuiltinWith(cfg.EasyPlaceholder, cfg.HardPlaceholder)
		log.Printf("[QuestionBank] Загружен встроенный банк: %d вопросов", bank.Len())
		return bank, nil
	default:
		return nil, fmt.Errorf("unknown bank source %q: %w", cfg.Source, apperrors.ErrConfiguration)
	}
}

// Len возвращает количество вопросов
func (b *Bank) Len() int {
	return len(b.questions)
}

// ByID возвращает копию вопроса по ID
func (b *Bank) ByID(id uint) (*entity.Question, error) {
	if id == 0 || int(id) > len(b.questions) {
		return nil, fmt.Errorf("question %d: %w", id, apperrors.ErrNotFound)
	}
	q := cloneQuestion(b.questions[id-1])
	return &q, nil
}

// Slice возвращает копию вопросов в полуинтервале [from, to), обрезанном по границам банка
func (b *Bank) Slice(from, to int) []entity.Question {
	if from < 0 {
		from = 0
	}
	if to > len(b.questions) {
		to = len(b.questions)
	}
	if from >= to {
		return nil
	}
	out := make([]entity.Question, 0, to-from)
	for _, q := range b.questions[from:to] {
		out = append(out, cloneQuestion(q))
	}
	return out
}

// All возвращает копию всего банка
func (b *Bank) All() []entity.Question {
	return b.Slice(0, len(b.questions))
}

func cloneQuestion(q entity.Question) entity.Question {
	q.Options = append([]string(nil), q.Options...)
	if q.Spectrum != nil {
		sp := *q.Spectrum
		sp.Peaks = append([]entity.Peak(nil), q.Spectrum.Peaks...)
		q.Spectrum = &sp
	}
	return q
}
