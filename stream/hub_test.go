package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/trading"
)

func TestHubBroadcastsTicksToClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	// Registration goes through the hub's run loop; give it a moment
	// before broadcasting.
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastTick(trading.TickEvent{
		Type:   "tick",
		Symbol: market.FAKE,
		Price:  101.5,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	assert.NoError(t, err)

	var ev trading.TickEvent
	assert.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, market.FAKE, ev.Symbol)
	assert.InDelta(t, 101.5, ev.Price, 1e-9)
}
