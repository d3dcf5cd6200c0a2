package quizmanager

import (
	"context"
	"time"

	"github.com/yourusername/spectra-quiz/internal/config"
	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	"github.com/yourusername/spectra-quiz/internal/domain/repository"
	"github.com/yourusername/spectra-quiz/internal/service/batch"
)

// Status - состояние забега
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// Значения по умолчанию
const (
	DefaultMinNameLength  = 3
	DefaultSpectrumPoints = 500
	MaxSpectrumPoints     = 4000
)

// AnswerResult - итог отправки ответа на текущий вопрос
type AnswerResult struct {
	QuestionID    uint   `json:"question_id"`
	Answer        string `json:"answer"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
	TimeTakenMs   int64  `json:"time_taken_ms"`
	Attempt       int    `json:"attempt"`
	// AlreadySubmitted - ответ на этот вопрос уже был принят в текущем забеге
	AlreadySubmitted bool `json:"already_submitted"`
	// AlreadyAnswered - игрок отвечал на этот вопрос раньше, очки не начислены
	AlreadyAnswered bool `json:"already_answered"`
}

// RunState - состояние забега одной браузерной сессии.
// Хранится в RunStore и явно передаётся в каждый вызов Engine.
type RunState struct {
	SessionID string `json:"session_id"`
	Status    Status `json:"status"`

	UserID   uint   `json:"user_id"`
	UserName string `json:"user_name"`
	Tier     string `json:"tier"`

	Batch       int    `json:"batch"`
	QuestionIDs []uint `json:"question_ids"`
	Index       int    `json:"index"`
	Score       int    `json:"score"`

	QuizStartedAt     time.Time `json:"quiz_started_at"`
	QuestionStartedAt time.Time `json:"question_started_at"`

	// Committed - ответ на текущий вопрос уже принят
	Committed  bool          `json:"committed"`
	LastResult *AnswerResult `json:"last_result,omitempty"`

	TotalTimeMs int64     `json:"total_time_ms"`
	FinishedAt  time.Time `json:"finished_at,omitempty"`
}

// NewRunState создает пустое состояние забега для сессии
func NewRunState(sessionID string) *RunState {
	return &RunState{
		SessionID:   sessionID,
		Status:      StatusNotStarted,
		Tier:        entity.TierEasy,
		QuestionIDs: []uint{},
	}
}

// Config - вариант движка
type Config struct {
	Tiers         string
	Attempts      string
	BatchRotation bool
	PerBatch      int
	MinNameLength int
	AllowResume   bool
}

// ConfigFrom переносит настройки викторины из конфигурации приложения
func ConfigFrom(cfg config.QuizConfig) Config {
	c := Config{
		Tiers:         cfg.Tiers,
		Attempts:      cfg.Attempts,
		BatchRotation: cfg.BatchRotation,
		PerBatch:      cfg.PerBatch,
		MinNameLength: cfg.MinNameLength,
		AllowResume:   cfg.AllowResume,
	}
	if c.MinNameLength <= 0 {
		c.MinNameLength = DefaultMinNameLength
	}
	return c
}

// MultiAttempt сообщает, разрешены ли повторные попытки на уровне хранилища
func (c Config) MultiAttempt() bool {
	return c.Attempts == config.AttemptsMulti
}

// Registration - данные регистрации игрока при старте
type Registration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// StartRequest - запрос на старт забега
type StartRequest struct {
	Registration
	Tier string
}

// QuestionSource - неизменяемый банк вопросов
type QuestionSource interface {
	batch.QuestionSource
	ByID(id uint) (*entity.Question, error)
}

// BatchAllocator выдаёт партию вопросов новому забегу
type BatchAllocator interface {
	SelectBatch(ctx context.Context, bank batch.QuestionSource, perBatch int) ([]entity.Question, int, error)
}

// PlayerService регистрирует и находит игроков
type PlayerService interface {
	Register(ctx context.Context, reg Registration) (*entity.User, error)
	GetByName(ctx context.Context, name string) (*entity.User, error)
	Authenticate(ctx context.Context, email, password string) (*entity.User, error)
}

// Notifier получает сигнал, что лидерборд мог измениться
type Notifier interface {
	LeaderboardChanged(ctx context.Context)
}

// Dependencies содержит зависимости Engine
type Dependencies struct {
	Bank      QuestionSource
	Allocator BatchAllocator
	Players   PlayerService
	Answers   repository.AnswerRepository
	Sessions  repository.SessionRepository
	Notifier  Notifier         // может быть nil
	Clock     func() time.Time // nil - time.Now
	Config    Config
}

// QuestionView - текущий вопрос в том виде, в котором его видит игрок
type QuestionView struct {
	QuestionID  uint          `json:"question_id"`
	Number      int           `json:"number"`
	Total       int           `json:"total"`
	Prompt      string        `json:"prompt"`
	Image       string        `json:"image,omitempty"`
	Options     []string      `json:"options"`
	Category    string        `json:"category"`
	HasSpectrum bool          `json:"has_spectrum"`
	Committed   bool          `json:"committed"`
	LastResult  *AnswerResult `json:"last_result,omitempty"`
}

// History - ответы и завершённые забеги игрока
type History struct {
	UserName        string                `json:"user_name"`
	Answers         []entity.AnswerRecord `json:"answers"`
	Sessions        []entity.QuizSession  `json:"sessions"`
	AnsweredCurrent bool                  `json:"answered_current"`
}

// RunView - снимок забега для клиента
type RunView struct {
	Status      Status        `json:"status"`
	UserName    string        `json:"user_name,omitempty"`
	Tier        string        `json:"tier"`
	Batch       int           `json:"batch,omitempty"`
	Score       int           `json:"score"`
	Total       int           `json:"total"`
	TotalTimeMs int64         `json:"total_time_ms,omitempty"`
	Question    *QuestionView `json:"question,omitempty"`
}
