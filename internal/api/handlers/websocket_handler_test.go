package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/api/middleware/auth"
	"github.com/daisywatson/monopoly-game/internal/game/manager"
)

// MockHub is a mock implementation of the Hub
type MockHub struct {
	mock.Mock
}

// HandleWebSocketConnection is a mock implementation
func (m *MockHub) HandleWebSocketConnection(conn *websocket.Conn, gameID string, userID string, sessionID string) {
	m.Called(conn, gameID, userID, sessionID)
}

// CheckInactiveClients is a mock implementation
func (m *MockHub) CheckInactiveClients(timeout time.Duration) {
	m.Called(timeout)
}

type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) GetGame(ref string) (manager.GameInfo, error) {
	args := m.Called(ref)
	return args.Get(0).(manager.GameInfo), args.Error(1)
}

type connected struct {
	gameID, userID, sessionID string
}

// startWebSocketServer serves the handler and reports each connection the
// hub receives
func startWebSocketServer(t *testing.T) (string, chan connected) {
	t.Helper()
	got := make(chan connected, 1)

	hub := new(MockHub)
	hub.On("HandleWebSocketConnection", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(0).(*websocket.Conn).Close()
			got <- connected{args.String(1), args.String(2), args.String(3)}
		})

	games := new(MockLookup)
	games.On("GetGame", "ABC234").Return(manager.GameInfo{ID: "game-1", Code: "ABC234"}, nil)
	games.On("GetGame", mock.Anything).Return(manager.GameInfo{}, manager.ErrGameNotFound)

	h := NewWebSocketHandler(hub, games, zap.NewNop().Sugar(), testConfig())
	e := echo.New()
	e.GET("/ws/:gameId", h.HandleConnection)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), got
}

func TestWebSocketConnects(t *testing.T) {
	base, got := startWebSocketServer(t)
	token, err := auth.GenerateJWT("u1", "Ann", "test-secret", 1)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/ws/ABC234?token="+token+"&sessionId=tab-1", nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case c := <-got:
		assert.Equal(t, connected{"game-1", "u1", "tab-1"}, c)
	case <-time.After(2 * time.Second):
		t.Fatal("hub never received the connection")
	}
}

func TestWebSocketGeneratesSessionID(t *testing.T) {
	base, got := startWebSocketServer(t)
	token, err := auth.GenerateJWT("u1", "Ann", "test-secret", 1)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/ws/ABC234?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case c := <-got:
		assert.NotEmpty(t, c.sessionID)
	case <-time.After(2 * time.Second):
		t.Fatal("hub never received the connection")
	}
}

func TestWebSocketRejections(t *testing.T) {
	base, _ := startWebSocketServer(t)
	token, err := auth.GenerateJWT("u1", "Ann", "test-secret", 1)
	require.NoError(t, err)
	foreign, err := auth.GenerateJWT("u1", "Ann", "another-secret", 1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"no token", "/ws/ABC234", http.StatusUnauthorized},
		{"foreign token", "/ws/ABC234?token=" + foreign, http.StatusUnauthorized},
		{"unknown game", "/ws/QQQQQQ?token=" + token, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(base+tt.path, nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
