package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/spectra-quiz/internal/websocket"
)

// WSHandler подключает браузеры к живому лидерборду
type WSHandler struct {
	hub         *websocket.Hub
	leaderboard LeaderboardReader
	upgrader    gorillaws.Upgrader
}

// NewWSHandler создает обработчик WebSocket.
// allowedOrigins синхронизирован с CORS в main.go.
func NewWSHandler(hub *websocket.Hub, leaderboard LeaderboardReader, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &WSHandler{
		hub:         hub,
		leaderboard: leaderboard,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Не браузерный клиент (curl и т.д.)
				if origin == "" {
					return true
				}
				if allowed[origin] {
					return true
				}
				log.Printf("[WSHandler] Отклонён origin: %s", origin)
				return false
			},
		},
	}
}

// HandleConnection обрабатывает входящее WebSocket соединение.
// Первым сообщением клиент получает текущий лидерборд.
// GET /ws/leaderboard
func (h *WSHandler) HandleConnection(c *gin.Context) {
	var initial []byte
	board, err := h.leaderboard.TopN(c.Request.Context(), 0)
	if err != nil {
		log.Printf("[WSHandler] Не удалось получить лидерборд для нового клиента: %v", err)
	} else if initial, err = websocket.LeaderboardMessage(board); err != nil {
		log.Printf("[WSHandler] %v", err)
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ с ошибкой
		log.Printf("[WSHandler] Error upgrading connection: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn)
	client.Serve(initial)
}

// Health сообщает состояние хаба и число подключений
// GET /ws/health
func (h *WSHandler) Health(c *gin.Context) {
	status := "healthy"
	statusCode := http.StatusOK
	clientCount := 0

	if h.hub != nil {
		clientCount = h.hub.ClientCount()
	} else {
		status = "unavailable"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":             status,
		"active_connections": clientCount,
		"timestamp":          time.Now().Format(time.RFC3339),
	})
}
