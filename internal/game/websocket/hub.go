package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/daisywatson/monopoly-game/internal/game/engine"
	"github.com/daisywatson/monopoly-game/internal/game/manager"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

// GameService is what the hub needs from the game manager
type GameService interface {
	Execute(ref, userID string, cmd engine.Command) (engine.Snapshot, error)
	Snapshot(ref string) (engine.Snapshot, error)
	GetGame(ref string) (manager.GameInfo, error)
}

// Hub maintains the set of active WebSocket connections and broadcasts messages
type Hub struct {
	games    GameService
	validate *validator.Validate

	// Registered clients by gameID
	clients      map[string]map[*Client]bool
	clientsMutex sync.RWMutex

	unregister chan *Client
	broadcast  chan *BroadcastMessage

	ctx    context.Context
	logger *zap.SugaredLogger

	commandRate  rate.Limit
	commandBurst int
}

// BroadcastMessage is a message for every client of one game
type BroadcastMessage struct {
	gameID string
	data   []byte
}

// Client represents a WebSocket client connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	userID    string
	gameID    string
	sessionID string

	// limiter throttles inbound commands
	limiter *rate.Limiter

	lastPongTime time.Time
	pongMutex    sync.RWMutex
	connectedAt  time.Time
}

// InboundMessage is what clients send
type InboundMessage struct {
	Type      string             `json:"type"`
	RequestID string             `json:"requestId,omitempty"`
	Action    *models.GameAction `json:"action,omitempty"`
}

// Reply answers one inbound message
type Reply struct {
	Type      string           `json:"type"`
	RequestID string           `json:"requestId,omitempty"`
	Code      string           `json:"code,omitempty"`
	Message   string           `json:"message,omitempty"`
	Snapshot  *engine.Snapshot `json:"snapshot,omitempty"`
}

// NewHub creates a new WebSocket hub. Each client may send commandRate
// commands per second with bursts of commandBurst.
func NewHub(ctx context.Context, games GameService, logger *zap.SugaredLogger, commandRate, commandBurst int) *Hub {
	return &Hub{
		games:        games,
		validate:     validator.New(),
		clients:      make(map[string]map[*Client]bool),
		unregister:   make(chan *Client, 128),
		broadcast:    make(chan *BroadcastMessage, 1024),
		ctx:          ctx,
		logger:       logger,
		commandRate:  rate.Limit(commandRate),
		commandBurst: commandBurst,
	}
}

// Run dispatches unregistrations and broadcasts until the hub's context ends
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.broadcast:
			h.clientsMutex.RLock()
			var slow []*Client
			for client := range h.clients[msg.gameID] {
				select {
				case client.send <- msg.data:
				default:
					slow = append(slow, client)
				}
			}
			h.clientsMutex.RUnlock()
			for _, client := range slow {
				h.logger.Warnf("Dropping slow client %s in game %s (buffer full)", client.userID, client.gameID)
				h.removeClient(client)
			}
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.clientsMutex.Lock()
	defer h.clientsMutex.Unlock()
	if h.clients[client.gameID] == nil {
		h.clients[client.gameID] = make(map[*Client]bool)
	}
	h.clients[client.gameID][client] = true
	h.logger.Infof("Client registered for game %s, user %s, session %s", client.gameID, client.userID, client.sessionID)
}

func (h *Hub) removeClient(client *Client) {
	h.clientsMutex.Lock()
	defer h.clientsMutex.Unlock()

	game, ok := h.clients[client.gameID]
	if !ok || !game[client] {
		return
	}
	delete(game, client)
	close(client.send)
	if len(game) == 0 {
		delete(h.clients, client.gameID)
	}
	h.logger.Infof("Client unregistered for game %s, user %s, session %s", client.gameID, client.userID, client.sessionID)
}

func (h *Hub) closeAll() {
	h.clientsMutex.Lock()
	defer h.clientsMutex.Unlock()
	for gameID, game := range h.clients {
		for client := range game {
			close(client.send)
		}
		delete(h.clients, gameID)
	}
}

// BroadcastToGame sends a message to all clients in a game
func (h *Hub) BroadcastToGame(gameID string, data []byte) {
	select {
	case h.broadcast <- &BroadcastMessage{gameID: gameID, data: data}:
	case <-h.ctx.Done():
	}
}

// ClientCount returns how many connections a game has
func (h *Hub) ClientCount(gameID string) int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	return len(h.clients[gameID])
}

// CheckInactiveClients drops clients that have not answered a ping within timeout
func (h *Hub) CheckInactiveClients(timeout time.Duration) {
	h.clientsMutex.RLock()
	var stale []*Client
	for _, game := range h.clients {
		for client := range game {
			if !client.isActive(timeout) {
				stale = append(stale, client)
			}
		}
	}
	h.clientsMutex.RUnlock()

	for _, client := range stale {
		h.logger.Infof("Closing inactive client %s in game %s", client.userID, client.gameID)
		client.conn.Close()
	}
}

// HandleWebSocketConnection registers an upgraded connection and starts its pumps
func (h *Hub) HandleWebSocketConnection(conn *websocket.Conn, gameID, userID, sessionID string) {
	client := &Client{
		hub:          h,
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		userID:       userID,
		gameID:       gameID,
		sessionID:    sessionID,
		limiter:      rate.NewLimiter(h.commandRate, h.commandBurst),
		lastPongTime: time.Now(),
		connectedAt:  time.Now(),
	}

	// the client hears the current state before any broadcast
	if state := h.currentState(gameID); state != nil {
		client.send <- state
	}
	h.addClient(client)

	go client.readPump()
	go client.writePump()
}

func (h *Hub) currentState(gameID string) []byte {
	info, err := h.games.GetGame(gameID)
	if err != nil {
		return nil
	}

	var msg interface{} = manager.LobbyUpdate{Type: "lobby_update", Game: info}
	if info.Status != models.GameStatusLobby && info.Status != models.GameStatusAbandoned {
		snap, err := h.games.Snapshot(gameID)
		if err != nil {
			return nil
		}
		msg = manager.GameUpdate{Type: "game_update", GameID: gameID, Events: []models.Event{}, Snapshot: &snap}
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Errorf("Failed to marshal state for game %s: %v", gameID, err)
		return nil
	}
	return data
}

func (c *Client) isActive(timeout time.Duration) bool {
	c.pongMutex.RLock()
	defer c.pongMutex.RUnlock()
	return time.Since(c.lastPongTime) < timeout
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.pongMutex.Lock()
		c.lastPongTime = time.Now()
		c.pongMutex.Unlock()
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warnf("WebSocket read error for game %s, user %s: %v", c.gameID, c.userID, err)
			}
			return
		}
		c.reply(c.handleMessage(message))
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Errorf("Error writing to WebSocket for game %s, user %s: %v", c.gameID, c.userID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes one inbound message and returns the reply
func (c *Client) handleMessage(message []byte) Reply {
	var msg InboundMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return Reply{Type: "error", Code: "bad_message", Message: "message is not valid JSON"}
	}

	switch msg.Type {
	case "ping":
		return Reply{Type: "pong", RequestID: msg.RequestID}

	case "get_state":
		snap, err := c.hub.games.Snapshot(c.gameID)
		if err != nil {
			return errorReply(msg.RequestID, err)
		}
		return Reply{Type: "state", RequestID: msg.RequestID, Snapshot: &snap}

	case "command":
		if !c.limiter.Allow() {
			return Reply{Type: "error", RequestID: msg.RequestID, Code: "rate_limited", Message: "too many commands"}
		}
		if msg.Action == nil {
			return Reply{Type: "error", RequestID: msg.RequestID, Code: "bad_message", Message: "command without action"}
		}
		if err := c.hub.validate.Struct(msg.Action); err != nil {
			return Reply{Type: "error", RequestID: msg.RequestID, Code: "bad_message", Message: err.Error()}
		}
		if _, err := c.hub.games.Execute(c.gameID, c.userID, engine.CommandFromAction(*msg.Action)); err != nil {
			c.hub.logger.Debugw("Command rejected", "gameId", c.gameID, "userId", c.userID, "action", msg.Action.Type, "error", err)
			return errorReply(msg.RequestID, err)
		}
		// the state itself arrives with the game broadcast
		return Reply{Type: "command_accepted", RequestID: msg.RequestID}
	}

	return Reply{Type: "error", RequestID: msg.RequestID, Code: "unknown_type", Message: "unknown message type " + msg.Type}
}

func errorReply(requestID string, err error) Reply {
	code := manager.ErrorCode(err)
	message := err.Error()
	if code == "internal_error" {
		message = "internal error"
	}
	return Reply{Type: "error", RequestID: requestID, Code: code, Message: message}
}

// reply queues r for this client only
func (c *Client) reply(r Reply) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	c.hub.clientsMutex.RLock()
	defer c.hub.clientsMutex.RUnlock()
	if !c.hub.clients[c.gameID][c] {
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warnf("Reply to %s in game %s dropped (buffer full)", c.userID, c.gameID)
	}
}
