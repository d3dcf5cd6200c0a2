package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	"github.com/yourusername/spectra-quiz/internal/handler/dto"
	"github.com/yourusername/spectra-quiz/internal/middleware"
	"github.com/yourusername/spectra-quiz/internal/service/quizmanager"
)

// PointsKey - ключ контекста для ?points= (см. middleware.ExtractIntQuery)
const PointsKey = "points"

// QuizRunner - операции забега, привязанные к сессии
type QuizRunner interface {
	Start(ctx context.Context, sessionID string, req quizmanager.StartRequest) (*quizmanager.RunView, error)
	Submit(ctx context.Context, sessionID, answer string) (*quizmanager.AnswerResult, error)
	Advance(ctx context.Context, sessionID string) (*quizmanager.RunView, error)
	Restart(sessionID string) (*quizmanager.RunView, error)
	Current(sessionID string) (*quizmanager.RunView, error)
	Spectrum(sessionID string, points int) ([]entity.SpectrumPoint, error)
	History(ctx context.Context, sessionID string) (*quizmanager.History, error)
}

// QuizHandler обрабатывает запросы забега текущей сессии
type QuizHandler struct {
	runner QuizRunner
}

// NewQuizHandler создает новый обработчик викторины
func NewQuizHandler(runner QuizRunner) *QuizHandler {
	return &QuizHandler{runner: runner}
}

// Start обрабатывает запрос на старт забега
// POST /api/quiz/start
func (h *QuizHandler) Start(c *gin.Context) {
	var req dto.StartQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.runner.Start(c.Request.Context(), middleware.SessionID(c), req.ToStartRequest())
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Current возвращает снимок забега
// GET /api/quiz/current
func (h *QuizHandler) Current(c *gin.Context) {
	view, err := h.runner.Current(middleware.SessionID(c))
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Answer принимает ответ на текущий вопрос
// POST /api/quiz/answer
func (h *QuizHandler) Answer(c *gin.Context) {
	var req dto.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.runner.Submit(c.Request.Context(), middleware.SessionID(c), req.Answer)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Next переходит к следующему вопросу
// POST /api/quiz/next
func (h *QuizHandler) Next(c *gin.Context) {
	view, err := h.runner.Advance(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Restart сбрасывает забег (в том числе при выходе)
// POST /api/quiz/restart
func (h *QuizHandler) Restart(c *gin.Context) {
	view, err := h.runner.Restart(middleware.SessionID(c))
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Spectrum возвращает синтетический спектр текущего вопроса
// GET /api/quiz/spectrum?points=N
func (h *QuizHandler) Spectrum(c *gin.Context) {
	points := c.GetInt(PointsKey)
	series, err := h.runner.Spectrum(middleware.SessionID(c), points)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.SpectrumResponse{Points: series})
}

// History возвращает ответы и прошлые забеги игрока
// GET /api/quiz/history
func (h *QuizHandler) History(c *gin.Context) {
	history, err := h.runner.History(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, history)
}
