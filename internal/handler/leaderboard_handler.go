package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/spectra-quiz/internal/service"
)

// LimitKey - ключ контекста для ?limit= (см. middleware.ExtractIntQuery)
const LimitKey = "limit"

// LeaderboardReader строит лидерборд
type LeaderboardReader interface {
	TopN(ctx context.Context, n int) (*service.Leaderboard, error)
	Export(ctx context.Context, format string, w io.Writer) error
}

// LeaderboardHandler обрабатывает запросы лидерборда
type LeaderboardHandler struct {
	leaderboard LeaderboardReader
}

// NewLeaderboardHandler создает новый обработчик лидерборда
func NewLeaderboardHandler(leaderboard LeaderboardReader) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// GetLeaderboard возвращает первые N мест
// GET /api/leaderboard?limit=N
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	board, err := h.leaderboard.TopN(c.Request.Context(), c.GetInt(LimitKey))
	if err != nil {
		handleError(c, "LeaderboardHandler", err)
		return
	}
	c.JSON(http.StatusOK, board)
}
