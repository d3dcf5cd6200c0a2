package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/yourusername/spectra-quiz/internal/service"
)

// LeaderboardChannel - канал Pub/Sub для рассылки лидерборда между инстансами
const LeaderboardChannel = "quiz:leaderboard"

// Hub держит подключённых клиентов лидерборда и рассылает им сообщения.
// Все изменения набора клиентов выполняются в горутине Run.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once

	active atomic.Int64

	relay       PubSubProvider
	relayCancel context.CancelFunc
}

// NewHub создает хаб; цикл обработки запускается через Run
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run обрабатывает регистрацию, отключение и рассылку до вызова Stop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.active.Store(int64(len(h.clients)))
			log.Printf("[WS] Клиент %s подключён, всего %d", client.ConnectionID, len(h.clients))
		case client := <-h.unregister:
			h.remove(client)
		case message := <-h.broadcast:
			h.handleBroadcast(message)
		case <-h.done:
			for client := range h.clients {
				h.remove(client)
			}
			log.Printf("[WS] Хаб остановлен")
			return
		}
	}
}

// Stop останавливает цикл хаба и ретранслятор
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		if h.relayCancel != nil {
			h.relayCancel()
		}
		if h.relay != nil {
			if err := h.relay.Close(); err != nil {
				log.Printf("[WS] Ошибка закрытия Pub/Sub: %v", err)
			}
		}
		close(h.done)
	})
}

// Register добавляет клиента
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister удаляет клиента и закрывает его канал отправки
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast рассылает сообщение всем локальным клиентам
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// ClientCount возвращает количество подключённых клиентов
func (h *Hub) ClientCount() int {
	return int(h.active.Load())
}

// PublishLeaderboard рассылает свежий лидерборд. При подключённом ретрансляторе
// сообщение уходит через Pub/Sub и возвращается на каждый инстанс, включая этот.
func (h *Hub) PublishLeaderboard(board *service.Leaderboard) {
	message, err := LeaderboardMessage(board)
	if err != nil {
		log.Printf("[WS] %v", err)
		return
	}
	if h.relay != nil {
		if err := h.relay.Publish(LeaderboardChannel, message); err == nil {
			return
		}
		log.Printf("[WS] Pub/Sub недоступен, рассылаю лидерборд только локально")
	}
	h.Broadcast(message)
}

// LeaderboardMessage формирует сообщение LEADERBOARD_UPDATE
func LeaderboardMessage(board *service.Leaderboard) ([]byte, error) {
	message, err := json.Marshal(Event{Type: LEADERBOARD_UPDATE, Data: board})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal leaderboard: %w", err)
	}
	return message, nil
}

// AttachRelay подписывает хаб на канал лидерборда в Pub/Sub
func (h *Hub) AttachRelay(provider PubSubProvider) error {
	ctx, cancel := context.WithCancel(context.Background())
	messages, err := provider.Subscribe(ctx, LeaderboardChannel)
	if err != nil {
		cancel()
		return err
	}
	h.relay = provider
	h.relayCancel = cancel

	go func() {
		for message := range messages {
			h.Broadcast(message)
		}
		log.Printf("[WS] Подписка на %s завершена", LeaderboardChannel)
	}()
	log.Printf("[WS] Хаб подписан на %s", LeaderboardChannel)
	return nil
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	h.active.Store(int64(len(h.clients)))
	if client.conn != nil {
		client.conn.Close()
	}
	client.closeSend()
	log.Printf("[WS] Клиент %s отключён, осталось %d", client.ConnectionID, len(h.clients))
}

// handleBroadcast отправляет сообщение всем клиентам; медленный клиент получает
// предупреждения и отключается после maxBufferWarnings переполнений подряд
func (h *Hub) handleBroadcast(message []byte) {
	for client := range h.clients {
		if client.enqueue(message) {
			continue
		}

		count := client.incrementBufferWarningCount()
		if count >= maxBufferWarnings {
			log.Printf("[WS] Клиент %s превысил лимит предупреждений (%d), отключаю", client.ConnectionID, maxBufferWarnings)
			h.remove(client)
			continue
		}

		warning, _ := json.Marshal(Event{
			Type: SERVER_BUFFER_WARNING,
			Data: map[string]interface{}{
				"warning_count": count,
				"max_warnings":  maxBufferWarnings,
			},
		})
		select {
		case client.send <- warning:
		default:
		}
	}
}
