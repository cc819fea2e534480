package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/api/middleware/auth"
	"github.com/daisywatson/monopoly-game/internal/config"
	"github.com/daisywatson/monopoly-game/internal/game/manager"
)

const (
	inactiveCheckInterval = time.Minute
	inactiveTimeout       = 90 * time.Second
)

// ConnectionHub takes over upgraded websocket connections
type ConnectionHub interface {
	HandleWebSocketConnection(conn *websocket.Conn, gameID, userID, sessionID string)
	CheckInactiveClients(timeout time.Duration)
}

// GameLookup resolves a game id or room code
type GameLookup interface {
	GetGame(ref string) (manager.GameInfo, error)
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub    ConnectionHub
	games  GameLookup
	logger *zap.SugaredLogger
	cfg    *config.Config
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub ConnectionHub, games GameLookup, logger *zap.SugaredLogger, cfg *config.Config) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		games:  games,
		logger: logger,
		cfg:    cfg,
	}
}

// Upgrader is used to upgrade HTTP connections to WebSocket connections
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow connections from any origin
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StartPingPongMonitor periodically drops clients that stopped answering pings
func (h *WebSocketHandler) StartPingPongMonitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(inactiveCheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.hub.CheckInactiveClients(inactiveTimeout)
			}
		}
	}()

	h.logger.Info("Started ping/pong monitor for inactive client detection")
}

// HandleConnection upgrades a player's connection to a game. Browsers
// cannot set headers on websocket requests, so the token may also arrive
// as a query parameter.
func (h *WebSocketHandler) HandleConnection(c echo.Context) error {
	userID, ok := c.Get(auth.ContextUserID).(string)
	if !ok || userID == "" {
		claims, err := auth.ParseToken(c.QueryParam("token"), h.cfg.JWT.Secret)
		if err != nil {
			h.logger.Warnf("WebSocket connection rejected: %v", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: invalid token")
		}
		userID = claims.UserID
	}

	info, err := h.games.GetGame(c.Param("gameId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Game not found")
	}

	sessionID := c.QueryParam("sessionId")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Errorf("Failed to upgrade connection: %v", err)
		// the upgrader has already written an error response
		return nil
	}

	h.logger.Infow("WebSocket connected", "gameId", info.ID, "userId", userID, "sessionId", sessionID)
	h.hub.HandleWebSocketConnection(conn, info.ID, userID, sessionID)
	return nil
}
