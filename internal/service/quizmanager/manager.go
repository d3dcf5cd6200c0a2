package quizmanager

import (
	"context"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
)

// Manager связывает Engine с RunStore: каждая операция выполняется под блокировкой
// сессии, состояние читается до и сохраняется после успешного вызова движка.
type Manager struct {
	engine *Engine
	store  *RunStore
}

// NewManager создает менеджер забегов
func NewManager(engine *Engine, store *RunStore) *Manager {
	return &Manager{engine: engine, store: store}
}

func (m *Manager) mutate(sessionID string, fn func(st *RunState) error) (*RunState, error) {
	unlock, err := m.store.Lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	st, err := m.store.Load(sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	if err := m.store.Save(st); err != nil {
		return nil, err
	}
	return st, nil
}

// Start начинает забег в сессии
func (m *Manager) Start(ctx context.Context, sessionID string, req StartRequest) (*RunView, error) {
	st, err := m.mutate(sessionID, func(st *RunState) error {
		return m.engine.Start(ctx, st, req)
	})
	if err != nil {
		return nil, err
	}
	return m.engine.View(st)
}

// Submit принимает ответ на текущий вопрос
func (m *Manager) Submit(ctx context.Context, sessionID, answer string) (*AnswerResult, error) {
	var result *AnswerResult
	_, err := m.mutate(sessionID, func(st *RunState) error {
		var err error
		result, err = m.engine.Submit(ctx, st, answer)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Advance переходит к следующему вопросу или завершает забег
func (m *Manager) Advance(ctx context.Context, sessionID string) (*RunView, error) {
	st, err := m.mutate(sessionID, func(st *RunState) error {
		return m.engine.Advance(ctx, st)
	})
	if err != nil {
		return nil, err
	}
	return m.engine.View(st)
}

// Restart сбрасывает забег сессии
func (m *Manager) Restart(sessionID string) (*RunView, error) {
	st, err := m.mutate(sessionID, func(st *RunState) error {
		m.engine.Restart(st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.engine.View(st)
}

// Current возвращает снимок забега сессии
func (m *Manager) Current(sessionID string) (*RunView, error) {
	st, err := m.store.Load(sessionID)
	if err != nil {
		return nil, err
	}
	return m.engine.View(st)
}

// Spectrum возвращает синтетический спектр текущего вопроса сессии
func (m *Manager) Spectrum(sessionID string, points int) ([]entity.SpectrumPoint, error) {
	st, err := m.store.Load(sessionID)
	if err != nil {
		return nil, err
	}
	return m.engine.Spectrum(st, points)
}

// History возвращает историю игрока сессии
func (m *Manager) History(ctx context.Context, sessionID string) (*History, error) {
	st, err := m.store.Load(sessionID)
	if err != nil {
		return nil, err
	}
	return m.engine.History(ctx, st)
}
