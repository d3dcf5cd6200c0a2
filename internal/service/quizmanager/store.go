package quizmanager

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/spectra-quiz/internal/domain/repository"
	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
)

const (
	runKeyPrefix = "quiz:run:"

	lockTTL        = 10 * time.Second
	lockRetryDelay = 25 * time.Millisecond
	lockWait       = 2 * time.Second
)

// ErrSessionBusy - по этой сессии уже выполняется другой запрос
var ErrSessionBusy = fmt.Errorf("another request for this session is in progress: %w", apperrors.ErrConflict)

// RunStore хранит RunState в кеше (Redis или память) под ключом quiz:run:<sessionID>
type RunStore struct {
	cache repository.CacheRepository
	ttl   time.Duration
}

// NewRunStore создает хранилище состояний забегов
func NewRunStore(cache repository.CacheRepository, ttl time.Duration) *RunStore {
	return &RunStore{cache: cache, ttl: ttl}
}

func runKey(sessionID string) string {
	return runKeyPrefix + sessionID
}

// Load возвращает состояние сессии; для новой сессии - пустое not_started
func (s *RunStore) Load(sessionID string) (*RunState, error) {
	var st RunState
	if err := s.cache.GetJSON(runKey(sessionID), &st); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return NewRunState(sessionID), nil
		}
		log.Printf("[RunStore] Ошибка чтения состояния сессии %s: %v", sessionID, err)
		return nil, fmt.Errorf("failed to load run state: %v: %w", err, apperrors.ErrPersistence)
	}
	st.SessionID = sessionID
	if st.QuestionIDs == nil {
		st.QuestionIDs = []uint{}
	}
	return &st, nil
}

// Save сохраняет состояние и продлевает его срок жизни
func (s *RunStore) Save(st *RunState) error {
	if err := s.cache.SetJSON(runKey(st.SessionID), st, s.ttl); err != nil {
		log.Printf("[RunStore] Ошибка сохранения состояния сессии %s: %v", st.SessionID, err)
		return fmt.Errorf("failed to save run state: %v: %w", err, apperrors.ErrPersistence)
	}
	return nil
}

// Delete удаляет состояние сессии
func (s *RunStore) Delete(sessionID string) error {
	return s.cache.Delete(runKey(sessionID))
}

// Lock захватывает блокировку сессии через SetNX и возвращает функцию освобождения.
// Значение ключа - токен владельца: функция освобождения снимает только свою блокировку,
// даже если та истекла по lockTTL и была перехвачена другим запросом.
// Если блокировка не освободилась за lockWait, возвращается ErrSessionBusy.
func (s *RunStore) Lock(sessionID string) (func(), error) {
	key := runKey(sessionID) + ":lock"
	token := uuid.New().String()
	deadline := time.Now().Add(lockWait)
	for {
		ok, err := s.cache.SetNX(key, token, lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to lock session: %v: %w", err, apperrors.ErrPersistence)
		}
		if ok {
			return func() {
				released, err := s.cache.DeleteIfEquals(key, token)
				if err != nil {
					log.Printf("[RunStore] Не удалось снять блокировку %s: %v", key, err)
					return
				}
				if !released {
					log.Printf("[RunStore] Блокировка %s истекла до завершения запроса", key)
				}
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrSessionBusy
		}
		time.Sleep(lockRetryDelay)
	}
}
