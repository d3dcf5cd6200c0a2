package quizmanager

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yourusername/spectra-quiz/internal/config"
	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
)

var (
	// ErrNotInProgress - операция требует начатого и незавершённого забега
	ErrNotInProgress = fmt.Errorf("quiz is not in progress: %w", apperrors.ErrConflict)
	// ErrAlreadyStarted - забег уже идёт, сначала нужен restart
	ErrAlreadyStarted = fmt.Errorf("quiz already started, restart it first: %w", apperrors.ErrConflict)
	// ErrNotAnswered - переход дальше без ответа на текущий вопрос
	ErrNotAnswered = fmt.Errorf("answer the current question before moving on: %w", apperrors.ErrValidation)
)

// Engine - машина состояний забега. Собственного состояния не хранит:
// RunState передаётся в каждый вызов и меняется только при успехе операции.
type Engine struct {
	deps Dependencies
	cfg  Config
	now  func() time.Time
}

// NewEngine создает движок викторины
func NewEngine(deps Dependencies) (*Engine, error) {
	if deps.Bank == nil || deps.Players == nil || deps.Answers == nil || deps.Sessions == nil {
		return nil, fmt.Errorf("quiz engine: bank, players, answers and sessions are required: %w", apperrors.ErrConfiguration)
	}
	if deps.Config.BatchRotation {
		if deps.Allocator == nil {
			return nil, fmt.Errorf("quiz engine: batch rotation requires an allocator: %w", apperrors.ErrConfiguration)
		}
		if deps.Config.PerBatch <= 0 {
			return nil, fmt.Errorf("quiz engine: per batch must be positive: %w", apperrors.ErrConfiguration)
		}
	}
	if deps.Config.MinNameLength <= 0 {
		deps.Config.MinNameLength = DefaultMinNameLength
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &Engine{deps: deps, cfg: deps.Config, now: now}, nil
}

// Start регистрирует игрока, выдаёт ему партию вопросов и переводит забег в in_progress.
// При любой ошибке состояние не меняется.
func (e *Engine) Start(ctx context.Context, st *RunState, req StartRequest) error {
	if st.Status == StatusInProgress {
		return ErrAlreadyStarted
	}

	name := strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(name) < e.cfg.MinNameLength {
		return fmt.Errorf("name must be at least %d characters: %w", e.cfg.MinNameLength, apperrors.ErrValidation)
	}

	tier, err := e.resolveTier(req.Tier)
	if err != nil {
		return err
	}

	// Вопросы выбираются до регистрации: сбой распределителя не оставляет занятое имя без забега
	questions, served, err := e.assignQuestions(ctx)
	if err != nil {
		return err
	}

	reg := req.Registration
	reg.Name = name
	user, err := e.deps.Players.Register(ctx, reg)
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) || !e.cfg.AllowResume {
			log.Printf("[QuizEngine] Регистрация игрока '%s' отклонена: %v", name, err)
			return err
		}
		user, err = e.resume(ctx, reg)
		if err != nil {
			return err
		}
		log.Printf("[QuizEngine] Игрок '%s' (ID=%d) продолжает игру под существующим именем", user.Name, user.ID)
	}

	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	now := e.now()
	fresh := NewRunState(st.SessionID)
	fresh.Status = StatusInProgress
	fresh.UserID = user.ID
	fresh.UserName = user.Name
	fresh.Tier = tier
	fresh.Batch = served
	fresh.QuestionIDs = ids
	fresh.QuizStartedAt = now
	fresh.QuestionStartedAt = now
	*st = *fresh

	log.Printf("[QuizEngine] Забег начат: session=%s user=%d tier=%s batch=%d questions=%v",
		st.SessionID, st.UserID, st.Tier, st.Batch, ids)
	return nil
}

func (e *Engine) resolveTier(requested string) (string, error) {
	if e.cfg.Tiers != config.TiersEasyHard {
		return entity.TierEasy, nil
	}
	if requested == "" {
		return entity.TierEasy, nil
	}
	if !entity.IsValidTier(requested) {
		return "", fmt.Errorf("unknown tier %q: %w", requested, apperrors.ErrValidation)
	}
	return requested, nil
}

// resume находит существующего игрока: по email и паролю, если они переданы, иначе по имени.
// Игрока с аккаунтом по одному имени не продолжить.
func (e *Engine) resume(ctx context.Context, reg Registration) (*entity.User, error) {
	if reg.Email != "" {
		return e.deps.Players.Authenticate(ctx, reg.Email, reg.Password)
	}
	user, err := e.deps.Players.GetByName(ctx, reg.Name)
	if err != nil {
		return nil, err
	}
	if user.HasAccount() {
		log.Printf("[QuizEngine] Отказ: игрок '%s' (ID=%d) защищён паролем, вход по имени запрещён", user.Name, user.ID)
		return nil, fmt.Errorf("player %q has an account, email and password required: %w", user.Name, apperrors.ErrUnauthorized)
	}
	return user, nil
}

func (e *Engine) assignQuestions(ctx context.Context) ([]entity.Question, int, error) {
	if !e.cfg.BatchRotation {
		questions := e.deps.Bank.Slice(0, e.deps.Bank.Len())
		if len(questions) == 0 {
			return nil, 0, fmt.Errorf("question bank is empty: %w", apperrors.ErrConfiguration)
		}
		return questions, 0, nil
	}
	return e.deps.Allocator.SelectBatch(ctx, e.deps.Bank, e.cfg.PerBatch)
}

// Submit принимает ответ на текущий вопрос. Запись ответа и обновление счёта игрока
// происходят до изменения состояния: при ошибке хранилища забег остаётся как был.
func (e *Engine) Submit(ctx context.Context, st *RunState, answer string) (*AnswerResult, error) {
	if st.Status != StatusInProgress {
		return nil, ErrNotInProgress
	}

	if st.Committed && st.LastResult != nil {
		prev := *st.LastResult
		prev.AlreadySubmitted = true
		return &prev, nil
	}

	question, err := e.currentQuestion(st)
	if err != nil {
		return nil, err
	}
	if !question.HasOption(answer) {
		return nil, fmt.Errorf("answer %q is not one of the options: %w", answer, apperrors.ErrValidation)
	}

	isCorrect := question.IsCorrect(answer)
	elapsed := e.now().Sub(st.QuestionStartedAt).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	record := &entity.AnswerRecord{
		UserID:      st.UserID,
		QuestionID:  question.ID,
		AnswerText:  answer,
		IsCorrect:   isCorrect,
		TimeTakenMs: elapsed,
	}

	result := &AnswerResult{
		QuestionID:    question.ID,
		Answer:        answer,
		IsCorrect:     isCorrect,
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
		TimeTakenMs:   elapsed,
	}

	err = e.deps.Answers.RecordAnswer(ctx, record, e.cfg.MultiAttempt())
	switch {
	case err == nil:
		result.Attempt = record.Attempt
		st.Score += question.CalculatePoints(isCorrect)
	case errors.Is(err, apperrors.ErrConflict) && !e.cfg.MultiAttempt():
		// Вопрос уже был отвечен раньше: показываем результат без начисления очков
		log.Printf("[QuizEngine] Игрок #%d уже отвечал на вопрос #%d, очки не начисляются", st.UserID, question.ID)
		result.AlreadyAnswered = true
	case errors.Is(err, apperrors.ErrNotFound):
		log.Printf("[QuizEngine] Игрок #%d не найден при записи ответа: %v", st.UserID, err)
		return nil, fmt.Errorf("player no longer exists, restart the quiz: %w", apperrors.ErrNotFound)
	default:
		log.Printf("[QuizEngine] Ошибка записи ответа игрока #%d на вопрос #%d: %v", st.UserID, question.ID, err)
		return nil, fmt.Errorf("failed to record answer: %v: %w", err, apperrors.ErrPersistence)
	}

	st.Committed = true
	st.LastResult = result

	log.Printf("[QuizEngine] Ответ принят: user=%d question=%d correct=%t time=%dms score=%d",
		st.UserID, question.ID, isCorrect, elapsed, st.Score)

	if !result.AlreadyAnswered {
		e.notify(ctx)
	}
	return result, nil
}

// Advance переходит к следующему вопросу или завершает забег.
// При завершении сохраняется итог забега; если запись не удалась, забег остаётся
// на последнем вопросе и вызов можно повторить.
func (e *Engine) Advance(ctx context.Context, st *RunState) error {
	if st.Status != StatusInProgress {
		return ErrNotInProgress
	}
	if !st.Committed {
		return ErrNotAnswered
	}

	now := e.now()
	if st.Index+1 < len(st.QuestionIDs) {
		st.Index++
		st.QuestionStartedAt = now
		st.Committed = false
		st.LastResult = nil
		return nil
	}

	total := now.Sub(st.QuizStartedAt).Milliseconds()
	if total < 0 {
		total = 0
	}
	summary := &entity.QuizSession{
		UserID:        st.UserID,
		Score:         st.Score,
		TotalTimeMs:   total,
		QuestionCount: len(st.QuestionIDs),
		Batch:         st.Batch,
		Tier:          st.Tier,
	}
	if err := e.deps.Sessions.Save(ctx, summary); err != nil {
		log.Printf("[QuizEngine] Ошибка сохранения итогов забега игрока #%d: %v", st.UserID, err)
		return fmt.Errorf("failed to save quiz session: %v: %w", err, apperrors.ErrPersistence)
	}

	st.Status = StatusComplete
	st.Index = len(st.QuestionIDs)
	st.Committed = false
	st.LastResult = nil
	st.TotalTimeMs = total
	st.FinishedAt = now

	log.Printf("[QuizEngine] Забег завершён: user=%d score=%d/%d time=%dms",
		st.UserID, st.Score, len(st.QuestionIDs), total)
	e.notify(ctx)
	return nil
}

// Restart сбрасывает забег в not_started
func (e *Engine) Restart(st *RunState) {
	*st = *NewRunState(st.SessionID)
}

// Current возвращает текущий вопрос без правильного ответа
func (e *Engine) Current(st *RunState) (*QuestionView, error) {
	if st.Status != StatusInProgress {
		return nil, ErrNotInProgress
	}
	question, err := e.currentQuestion(st)
	if err != nil {
		return nil, err
	}
	return &QuestionView{
		QuestionID:  question.ID,
		Number:      st.Index + 1,
		Total:       len(st.QuestionIDs),
		Prompt:      question.PromptFor(st.Tier),
		Image:       question.ImageFor(st.Tier),
		Options:     question.Options,
		Category:    question.Category,
		HasSpectrum: question.Spectrum != nil,
		Committed:   st.Committed,
		LastResult:  st.LastResult,
	}, nil
}

// View возвращает снимок забега для клиента
func (e *Engine) View(st *RunState) (*RunView, error) {
	view := &RunView{
		Status:      st.Status,
		UserName:    st.UserName,
		Tier:        st.Tier,
		Batch:       st.Batch,
		Score:       st.Score,
		Total:       len(st.QuestionIDs),
		TotalTimeMs: st.TotalTimeMs,
	}
	if st.Status == StatusInProgress {
		q, err := e.Current(st)
		if err != nil {
			return nil, err
		}
		view.Question = q
	}
	return view, nil
}

// Spectrum возвращает точки синтетического спектра текущего вопроса
func (e *Engine) Spectrum(st *RunState, points int) ([]entity.SpectrumPoint, error) {
	if st.Status != StatusInProgress {
		return nil, ErrNotInProgress
	}
	question, err := e.currentQuestion(st)
	if err != nil {
		return nil, err
	}
	if question.Spectrum == nil {
		return nil, fmt.Errorf("question %d has no synthetic spectrum: %w", question.ID, apperrors.ErrNotFound)
	}
	if points <= 0 {
		points = DefaultSpectrumPoints
	}
	if points < 2 || points > MaxSpectrumPoints {
		return nil, fmt.Errorf("points must be between 2 and %d: %w", MaxSpectrumPoints, apperrors.ErrValidation)
	}
	return question.Spectrum.Series(points), nil
}

// History возвращает ответы и завершённые забеги игрока сессии.
// Во время забега дополнительно сообщает, отвечал ли игрок на текущий вопрос раньше.
func (e *Engine) History(ctx context.Context, st *RunState) (*History, error) {
	if st.Status == StatusNotStarted || st.UserID == 0 {
		return nil, ErrNotInProgress
	}

	answers, err := e.deps.Answers.ListByUser(ctx, st.UserID)
	if err != nil {
		log.Printf("[QuizEngine] Ошибка чтения ответов игрока %d: %v", st.UserID, err)
		return nil, fmt.Errorf("failed to load answers: %v: %w", err, apperrors.ErrPersistence)
	}
	sessions, err := e.deps.Sessions.ListByUser(ctx, st.UserID)
	if err != nil {
		log.Printf("[QuizEngine] Ошибка чтения забегов игрока %d: %v", st.UserID, err)
		return nil, fmt.Errorf("failed to load sessions: %v: %w", err, apperrors.ErrPersistence)
	}

	history := &History{
		UserName: st.UserName,
		Answers:  answers,
		Sessions: sessions,
	}
	if history.Answers == nil {
		history.Answers = []entity.AnswerRecord{}
	}
	if history.Sessions == nil {
		history.Sessions = []entity.QuizSession{}
	}

	if st.Status == StatusInProgress {
		question, err := e.currentQuestion(st)
		if err != nil {
			return nil, err
		}
		answered, err := e.deps.Answers.HasAnswered(ctx, st.UserID, question.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check answer: %v: %w", err, apperrors.ErrPersistence)
		}
		history.AnsweredCurrent = answered
	}
	return history, nil
}

func (e *Engine) currentQuestion(st *RunState) (*entity.Question, error) {
	if st.Index < 0 || st.Index >= len(st.QuestionIDs) {
		return nil, fmt.Errorf("question index %d out of range: %w", st.Index, apperrors.ErrNotFound)
	}
	return e.deps.Bank.ByID(st.QuestionIDs[st.Index])
}

func (e *Engine) notify(ctx context.Context) {
	if e.deps.Notifier != nil {
		e.deps.Notifier.LeaderboardChanged(ctx)
	}
}
