package websocket

// Типы сообщений, рассылаемых клиентам
const (
	// LEADERBOARD_UPDATE содержит свежий топ лидерборда
	LEADERBOARD_UPDATE = "LEADERBOARD_UPDATE"

	// SERVER_BUFFER_WARNING предупреждает медленного клиента о скором отключении
	SERVER_BUFFER_WARNING = "server:buffer_warning"
)

// Event - конверт сообщения, отправляемого клиенту
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}
