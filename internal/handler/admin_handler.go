package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/spectra-quiz/internal/domain/entity"
	"github.com/yourusername/spectra-quiz/internal/handler/dto"
	"github.com/yourusername/spectra-quiz/internal/service"
)

// AdminOperations - вход администратора и очистка данных
type AdminOperations interface {
	Login(password string) (string, time.Time, error)
	ClearAll(ctx context.Context) error
}

// BankReader отдаёт все вопросы банка
type BankReader interface {
	All() []entity.Question
}

// AdminHandler обрабатывает административные запросы
type AdminHandler struct {
	admin       AdminOperations
	leaderboard LeaderboardReader
	bank        BankReader
}

// NewAdminHandler создает новый административный обработчик
func NewAdminHandler(admin AdminOperations, leaderboard LeaderboardReader, bank BankReader) *AdminHandler {
	return &AdminHandler{
		admin:       admin,
		leaderboard: leaderboard,
		bank:        bank,
	}
}

// Login выдаёт административный токен
// POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, expiresAt, err := h.admin.Login(req.Password)
	if err != nil {
		handleError(c, "AdminHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.AdminLoginResponse{Token: token, ExpiresAt: expiresAt})
}

// ClearData удаляет всех игроков, ответы и забеги
// DELETE /api/admin/data
func (h *AdminHandler) ClearData(c *gin.Context) {
	if err := h.admin.ClearAll(c.Request.Context()); err != nil {
		handleError(c, "AdminHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All quiz data cleared"})
}

// ExportLeaderboard выгружает полный лидерборд в CSV или Excel формате
// GET /api/admin/leaderboard/export?format=csv|xlsx
func (h *AdminHandler) ExportLeaderboard(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportCSV)

	var contentType string
	switch format {
	case service.ExportCSV:
		contentType = "text/csv; charset=utf-8"
	case service.ExportXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	// Пишем в буфер, чтобы ошибка хранилища не оставила клиенту обрезанный файл
	var buf bytes.Buffer
	if err := h.leaderboard.Export(c.Request.Context(), format, &buf); err != nil {
		handleError(c, "AdminHandler", err)
		return
	}

	filename := fmt.Sprintf("leaderboard_%s.%s", time.Now().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// GetBank возвращает вопросы банка вместе с правильными ответами
// GET /api/admin/bank
func (h *AdminHandler) GetBank(c *gin.Context) {
	questions := h.bank.All()
	resp := make([]dto.BankQuestionResponse, 0, len(questions))
	for i := range questions {
		resp = append(resp, dto.NewBankQuestionResponse(&questions[i]))
	}
	c.JSON(http.StatusOK, gin.H{"questions": resp, "total": len(resp)})
}
