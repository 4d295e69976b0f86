package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qt-konan/zeroiq-bot/bot"
	"github.com/qt-konan/zeroiq-bot/config"
	"github.com/qt-konan/zeroiq-bot/db"
	"github.com/qt-konan/zeroiq-bot/memory"
)

// dialTestServer stands up the ws handler on an httptest server and
// connects a client to it.
func dialTestServer(t *testing.T) *websocket.Conn {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "memory.db")
	database, err := db.OpenWithMigrations(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	store := memory.NewStore(database, nil)
	engine := bot.NewEngine(store, 0.6, "", nil)
	srv := New(engine, config.ServerConfig{Port: 0}, nil)

	ts := httptest.NewServer(http.HandlerFunc(srv.handleWS))
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, frame Frame) Response {
	t.Helper()
	require.NoError(t, conn.WriteJSON(frame))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var response Response
	require.NoError(t, conn.ReadJSON(&response))
	return response
}

func TestWebSocketTeachRoundTrip(t *testing.T) {
	conn := dialTestServer(t)

	// Unknown question comes back as a teachable prompt
	prompt := roundTrip(t, conn, Frame{Sender: "alice", Text: "capital of France"})
	require.True(t, bot.IsUnknownPrompt(prompt.Text))

	// Replying with the prompt's text teaches the pair
	learned := roundTrip(t, conn, Frame{
		Sender:  "alice",
		Text:    "Paris",
		ReplyTo: &ReplyRef{Text: prompt.Text},
	})
	assert.Contains(t, learned.Text, "Learned")

	// Now the bot knows
	answered := roundTrip(t, conn, Frame{Sender: "bob", Text: "capital of France"})
	assert.Contains(t, answered.Text, "Paris")
}

func TestWebSocketResponseEchoesFrameID(t *testing.T) {
	conn := dialTestServer(t)

	response := roundTrip(t, conn, Frame{ID: "msg-42", Sender: "alice", Text: "/start"})
	assert.Equal(t, "msg-42", response.ReplyTo)
}

func TestWebSocketMalformedJSONIsSkipped(t *testing.T) {
	conn := dialTestServer(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	// Connection survives; the next valid frame still gets a response
	response := roundTrip(t, conn, Frame{Sender: "alice", Text: "/start"})
	assert.Contains(t, response.Text, "Ready")
}

func TestCheckOrigin(t *testing.T) {
	srv := New(nil, config.ServerConfig{
		AllowedOrigins: []string{"https://chat.example.com"},
	}, nil)

	allowed := httptest.NewRequest(http.MethodGet, "/ws", nil)
	allowed.Header.Set("Origin", "https://chat.example.com")
	assert.True(t, srv.checkOrigin(allowed))

	denied := httptest.NewRequest(http.MethodGet, "/ws", nil)
	denied.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, srv.checkOrigin(denied))

	// Empty allowlist permits everything
	open := New(nil, config.ServerConfig{}, nil)
	assert.True(t, open.checkOrigin(denied))
}
