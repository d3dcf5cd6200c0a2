package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/spectra-quiz/internal/service"
)

func newTestClient(h *Hub, buffer int) *Client {
	c := NewClient(h, nil)
	c.send = make(chan []byte, buffer)
	return c
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case msg := <-c.send:
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("сообщение не получено")
		return Event{}
	}
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	a := newTestClient(h, 4)
	b := newTestClient(h, 4)
	h.Register(a)
	h.Register(b)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	message, err := LeaderboardMessage(&service.Leaderboard{Mode: "points", NoData: true})
	require.NoError(t, err)
	h.Broadcast(message)

	assert.Equal(t, LEADERBOARD_UPDATE, receive(t, a).Type)
	assert.Equal(t, LEADERBOARD_UPDATE, receive(t, b).Type)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	c := newTestClient(h, 1)
	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Unregister(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-c.send
	assert.False(t, ok)
}

func TestHub_SlowClientDisconnected(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	c := newTestClient(h, 1)
	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	// Первое сообщение занимает буфер, следующие переполняют его
	for i := 0; i < maxBufferWarnings+1; i++ {
		h.Broadcast([]byte(`{"type":"x"}`))
	}

	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_PublishLeaderboardLocal(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	c := newTestClient(h, 4)
	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.PublishLeaderboard(&service.Leaderboard{
		Mode:    "points",
		Entries: []service.LeaderboardEntry{{Rank: 1, Player: "Ada", Score: 3}},
	})

	ev := receive(t, c)
	assert.Equal(t, LEADERBOARD_UPDATE, ev.Type)
	data, ok := ev.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "points", data["mode"])
}

// fakePubSub замыкает публикацию на подписку, как это делает Redis
type fakePubSub struct {
	mu        sync.Mutex
	ch        chan []byte
	published int
	failing   bool
}

func (f *fakePubSub) Publish(channel string, message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("redis down")
	}
	f.published++
	f.ch <- message
	return nil
}

func (f *fakePubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return f.ch, nil
}

func (f *fakePubSub) Close() error { return nil }

func TestHub_PublishThroughRelay(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	relay := &fakePubSub{ch: make(chan []byte, 4)}
	require.NoError(t, h.AttachRelay(relay))

	c := newTestClient(h, 4)
	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.PublishLeaderboard(&service.Leaderboard{Mode: "sessions"})
	assert.Equal(t, LEADERBOARD_UPDATE, receive(t, c).Type)
	assert.Equal(t, 1, relay.published)

	// При недоступном Pub/Sub рассылка идёт локально
	relay.mu.Lock()
	relay.failing = true
	relay.mu.Unlock()
	h.PublishLeaderboard(&service.Leaderboard{Mode: "sessions"})
	assert.Equal(t, LEADERBOARD_UPDATE, receive(t, c).Type)
}
