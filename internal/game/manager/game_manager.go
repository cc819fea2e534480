package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/config"
	"github.com/daisywatson/monopoly-game/internal/game/engine"
	"github.com/daisywatson/monopoly-game/internal/game/models"
	"github.com/daisywatson/monopoly-game/internal/game/policy"
	"github.com/daisywatson/monopoly-game/internal/game/utils"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameNotInLobby = errors.New("game is not in lobby")
	ErrGameNotActive  = errors.New("game is not active")
	ErrGameFull       = errors.New("game is full")
	ErrColorTaken     = errors.New("color is not available")
	ErrNotInGame      = errors.New("user is not seated in this game")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrNotHost        = errors.New("only the host can do that")
	ErrInvalidOptions = errors.New("invalid game options")
)

// publishTimeout bounds each side effect of a command
const publishTimeout = 3 * time.Second

// WebSocketHub defines the interface for broadcasting messages to clients
type WebSocketHub interface {
	BroadcastToGame(gameID string, message []byte)
}

// EventQueue hands game history to the background worker
type EventQueue interface {
	EnqueueEvents(ctx context.Context, gameID string, events []models.Event) error
	EnqueueRecord(ctx context.Context, record *models.GameRecord) error
}

// SnapshotCache keeps the latest snapshot of each game outside the process
// and announces event batches to other subscribers
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, gameID string, snapshot interface{}) error
	DeleteSnapshot(ctx context.Context, gameID string) error
	Publish(ctx context.Context, message interface{}) error
}

// CreateOptions describes a new game
type CreateOptions struct {
	Humans           int               `json:"humans"`
	Computers        int               `json:"computers"`
	Difficulty       policy.Difficulty `json:"difficulty"`
	TimeLimitMinutes int               `json:"timeLimitMinutes"`
	HostName         string            `json:"hostName"`
	HostColor        string            `json:"hostColor"`
}

// GameSession is one hosted game: its lobby seats and, once every human
// seat is filled, the running engine session
type GameSession struct {
	ID           string
	Code         string
	HostID       string
	Status       models.GameStatus
	Options      CreateOptions
	CreatedAt    time.Time
	LastActivity time.Time

	seats   []engine.SeatConfig
	session *engine.Session
	seq     int64
	timer   *time.Timer
	mutex   sync.Mutex

	autoplaying    bool
	autoplayRounds int
	humanlessFrom  int // turn at which the last human seat went bankrupt
}

// GameManager is responsible for managing game sessions
type GameManager struct {
	ctx              context.Context
	cfg              config.GameConfig
	logger           *zap.SugaredLogger
	activeGames      map[string]*GameSession
	codes            map[string]string
	activeGamesMutex sync.RWMutex
	wsHub            WebSocketHub
	queue            EventQueue
	cache            SnapshotCache
	sessionOptions   []engine.Option
	autoplayTurns    int
	now              func() time.Time
}

// Option customizes a GameManager
type Option func(*GameManager)

// WithSessionOptions passes options to every engine session the manager starts
func WithSessionOptions(opts ...engine.Option) Option {
	return func(gm *GameManager) {
		gm.sessionOptions = append(gm.sessionOptions, opts...)
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(gm *GameManager) {
		gm.now = now
	}
}

// WithAutoplayTurns sets how many turns computers play on alone before the
// game is ended in favor of the richest seats
func WithAutoplayTurns(turns int) Option {
	return func(gm *GameManager) {
		gm.autoplayTurns = turns
	}
}

// NewGameManager creates a new game manager instance. Any of hub, queue and
// cache may be nil.
func NewGameManager(ctx context.Context, cfg config.GameConfig, logger *zap.SugaredLogger, wsHub WebSocketHub, queue EventQueue, cache SnapshotCache, opts ...Option) *GameManager {
	gm := &GameManager{
		ctx:           ctx,
		cfg:           cfg,
		logger:        logger,
		activeGames:   make(map[string]*GameSession),
		codes:         make(map[string]string),
		wsHub:         wsHub,
		queue:         queue,
		cache:         cache,
		autoplayTurns: defaultAutoplayTurns,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(gm)
	}
	return gm
}

// SetWebSocketHub sets the WebSocket hub for the game manager
func (gm *GameManager) SetWebSocketHub(hub WebSocketHub) {
	gm.wsHub = hub
	gm.logger.Info("WebSocket hub set for game manager")
}

func (gm *GameManager) validateOptions(opts *CreateOptions) error {
	total := opts.Humans + opts.Computers
	if opts.Humans < 1 || opts.Computers < 0 || total < gm.cfg.MinPlayers || total > gm.cfg.MaxPlayers {
		return fmt.Errorf("%d humans and %d computers, want %d-%d players with a human host: %w",
			opts.Humans, opts.Computers, gm.cfg.MinPlayers, gm.cfg.MaxPlayers, ErrInvalidOptions)
	}
	if opts.Difficulty == "" {
		opts.Difficulty = policy.Difficulty(gm.cfg.DefaultDifficulty)
	}
	if _, err := policy.ParseDifficulty(string(opts.Difficulty)); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidOptions)
	}
	if opts.TimeLimitMinutes < 0 {
		return fmt.Errorf("negative time limit: %w", ErrInvalidOptions)
	}
	if opts.HostColor != "" && !inPalette(opts.HostColor) {
		return fmt.Errorf("color %q: %w", opts.HostColor, ErrColorTaken)
	}
	return nil
}

// CreateGame opens a lobby with the host in the first seat. A game with a
// single human starts right away.
func (gm *GameManager) CreateGame(hostUserID string, opts CreateOptions) (GameInfo, error) {
	if err := gm.validateOptions(&opts); err != nil {
		return GameInfo{}, err
	}

	now := gm.now()
	game := &GameSession{
		ID:           uuid.New().String(),
		HostID:       hostUserID,
		Status:       models.GameStatusLobby,
		Options:      opts,
		CreatedAt:    now,
		LastActivity: now,
	}

	hostName := strings.TrimSpace(opts.HostName)
	if hostName == "" {
		hostName = "Player 1"
	}
	game.seats = append(game.seats, engine.SeatConfig{Name: hostName, Human: true, Color: opts.HostColor, Key: hostUserID})
	for i := 1; i < opts.Humans; i++ {
		game.seats = append(game.seats, engine.SeatConfig{Name: fmt.Sprintf("Player %d", i+1), Human: true})
	}
	for i := 0; i < opts.Computers; i++ {
		game.seats = append(game.seats, engine.SeatConfig{Name: fmt.Sprintf("Computer %d", i+1)})
	}

	gm.activeGamesMutex.Lock()
	code, err := utils.GenerateUniqueRoomCode(func(c string) bool {
		_, taken := gm.codes[c]
		return taken
	})
	if err != nil {
		gm.activeGamesMutex.Unlock()
		return GameInfo{}, fmt.Errorf("failed to generate room code: %w", err)
	}
	game.Code = code
	gm.activeGames[game.ID] = game
	gm.codes[code] = game.ID
	gm.activeGamesMutex.Unlock()

	gm.logger.Infof("Created new game %s with code %s and host %s", game.ID, code, hostUserID)

	game.mutex.Lock()
	defer game.mutex.Unlock()
	if game.openSeats() == 0 {
		if err := gm.startLocked(game); err != nil {
			return GameInfo{}, err
		}
	}
	return game.info(), nil
}

// lookup finds a game by id or room code
func (gm *GameManager) lookup(ref string) (*GameSession, error) {
	gm.activeGamesMutex.RLock()
	defer gm.activeGamesMutex.RUnlock()

	if game, ok := gm.activeGames[strings.ToLower(ref)]; ok {
		return game, nil
	}
	if id, ok := gm.codes[utils.NormalizeRoomCode(ref)]; ok {
		return gm.activeGames[id], nil
	}
	return nil, fmt.Errorf("%s: %w", ref, ErrGameNotFound)
}

// GetGame returns the public description of a game by id or room code
func (gm *GameManager) GetGame(ref string) (GameInfo, error) {
	game, err := gm.lookup(ref)
	if err != nil {
		return GameInfo{}, err
	}
	game.mutex.Lock()
	defer game.mutex.Unlock()
	return game.info(), nil
}

// JoinGame seats userID in the next open human seat. Joining again returns
// the game unchanged. The game starts once the last human seat is filled.
func (gm *GameManager) JoinGame(ref, userID, name, color string) (GameInfo, error) {
	game, err := gm.lookup(ref)
	if err != nil {
		return GameInfo{}, err
	}

	game.mutex.Lock()
	defer game.mutex.Unlock()

	if game.seatOf(userID) >= 0 {
		return game.info(), nil
	}
	if game.Status != models.GameStatusLobby {
		return GameInfo{}, ErrGameNotInLobby
	}
	if color != "" && (!inPalette(color) || game.colorTaken(color)) {
		return GameInfo{}, fmt.Errorf("color %q: %w", color, ErrColorTaken)
	}

	idx := game.nextOpenSeat()
	if idx < 0 {
		return GameInfo{}, ErrGameFull
	}
	seat := &game.seats[idx]
	seat.Key = userID
	seat.Color = color
	if name = strings.TrimSpace(name); name != "" {
		seat.Name = name
	}
	game.LastActivity = gm.now()
	gm.logger.Infof("Player %s joined game %s", userID, game.ID)

	if game.openSeats() == 0 {
		if err := gm.startLocked(game); err != nil {
			return GameInfo{}, err
		}
	} else {
		gm.broadcastLobbyUpdate(game)
	}
	return game.info(), nil
}

// LeaveGame frees a lobby seat. When the host leaves the lobby the game is
// abandoned.
func (gm *GameManager) LeaveGame(ref, userID string) error {
	game, err := gm.lookup(ref)
	if err != nil {
		return err
	}

	game.mutex.Lock()
	defer game.mutex.Unlock()

	idx := game.seatOf(userID)
	if idx < 0 {
		return ErrNotInGame
	}
	if game.Status != models.GameStatusLobby {
		return ErrGameNotInLobby
	}
	if userID == game.HostID {
		game.Status = models.GameStatusAbandoned
		gm.logger.Infof("Host %s left game %s, game abandoned", userID, game.ID)
	} else {
		game.seats[idx].Key = ""
		game.seats[idx].Color = ""
		game.seats[idx].Name = fmt.Sprintf("Player %d", idx+1)
		gm.logger.Infof("Player %s left game %s", userID, game.ID)
	}
	game.LastActivity = gm.now()
	gm.broadcastLobbyUpdate(game)
	return nil
}

// startLocked creates the engine session. The caller holds game.mutex.
func (gm *GameManager) startLocked(game *GameSession) error {
	cfg := engine.Config{
		Seats:      append([]engine.SeatConfig(nil), game.seats...),
		Difficulty: game.Options.Difficulty,
		TimeLimit:  time.Duration(game.Options.TimeLimitMinutes) * time.Minute,
	}
	opts := append([]engine.Option{engine.WithLogger(gm.logger.With("gameId", game.ID))}, gm.sessionOptions...)
	session, err := engine.NewSession(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to start game %s: %w", game.ID, err)
	}

	game.session = session
	game.Status = models.GameStatusActive
	game.autoplayRounds, game.humanlessFrom = 0, 0
	game.LastActivity = gm.now()
	gm.logger.Infow("Game started", "gameId", game.ID, "players", len(cfg.Seats), "mode", cfg.Mode(), "difficulty", cfg.Difficulty)

	if deadline := session.Deadline(); !deadline.IsZero() {
		game.timer = time.AfterFunc(deadline.Sub(gm.now()), func() {
			gm.expire(game.ID)
		})
	}
	gm.settleLocked(game)
	return nil
}

// settleLocked publishes what happened and closes out a finished game. When
// computers still hold the turn, play continues in the background. The
// caller holds game.mutex.
func (gm *GameManager) settleLocked(game *GameSession) {
	s := game.session
	gm.publishLocked(game)
	switch {
	case s.Over():
		if game.Status == models.GameStatusActive {
			gm.finishLocked(game)
		}
	case computerToAct(s) && !game.autoplaying:
		game.autoplaying = true
		go gm.autoplay(game)
	}
}

const (
	// maxEventsPerUpdate bounds the events carried by one published update
	maxEventsPerUpdate = 500
	// defaultAutoplayTurns is how many turns computers may play on after the
	// last human seat has gone bankrupt
	defaultAutoplayTurns = 300
	// maxAutoplayRounds bounds background resumes of any one game
	maxAutoplayRounds = 1000
)

func computerToAct(s *engine.Session) bool {
	p, ok := s.Player(s.Actor())
	return ok && !p.Human
}

// autoplay resumes computer players one bounded round at a time, releasing
// the game between rounds, until a human is due or the game is over
func (gm *GameManager) autoplay(game *GameSession) {
	for gm.autoplayRound(game) {
		select {
		case <-gm.ctx.Done():
			return
		default:
		}
	}
}

func (gm *GameManager) autoplayRound(game *GameSession) bool {
	game.mutex.Lock()
	defer game.mutex.Unlock()

	s := game.session
	if game.Status != models.GameStatusActive || s.Over() || !computerToAct(s) {
		game.autoplaying = false
		game.autoplayRounds = 0
		return false
	}

	// nobody can take the turn back once every human is bankrupt
	if !s.HumansRemaining() && game.humanlessFrom == 0 {
		game.humanlessFrom = s.Turn()
	}
	game.autoplayRounds++
	humanlessTurns := 0
	if game.humanlessFrom > 0 {
		humanlessTurns = s.Turn() - game.humanlessFrom
	}

	if humanlessTurns >= gm.autoplayTurns || game.autoplayRounds > maxAutoplayRounds {
		gm.logger.Infow("Ending game left to computer players", "gameId", game.ID, "turn", s.Turn(), "rounds", game.autoplayRounds)
		s.Conclude()
	} else {
		s.Run()
	}
	game.LastActivity = gm.now()
	gm.publishLocked(game)

	if s.Over() {
		gm.finishLocked(game)
		game.autoplaying = false
		return false
	}
	return true
}

// Execute applies a command from userID. The user must hold the seat the
// game is waiting on.
func (gm *GameManager) Execute(ref, userID string, cmd engine.Command) (engine.Snapshot, error) {
	game, err := gm.lookup(ref)
	if err != nil {
		return engine.Snapshot{}, err
	}

	game.mutex.Lock()
	defer game.mutex.Unlock()

	if game.Status != models.GameStatusActive {
		return engine.Snapshot{}, ErrGameNotActive
	}
	s := game.session
	seat, ok := s.SeatByKey(userID)
	if !ok {
		return engine.Snapshot{}, ErrNotInGame
	}
	if s.Actor() != seat {
		return engine.Snapshot{}, fmt.Errorf("%s is waiting on seat %d: %w", s.PendingDecisionKind(), s.Actor(), ErrNotYourTurn)
	}

	if err := s.Apply(cmd); err != nil {
		return engine.Snapshot{}, err
	}
	game.LastActivity = gm.now()
	gm.settleLocked(game)
	return s.Snapshot(), nil
}

// Snapshot returns the running state of a game
func (gm *GameManager) Snapshot(ref string) (engine.Snapshot, error) {
	game, err := gm.lookup(ref)
	if err != nil {
		return engine.Snapshot{}, err
	}
	game.mutex.Lock()
	defer game.mutex.Unlock()
	if game.session == nil {
		return engine.Snapshot{}, ErrGameNotActive
	}
	return game.session.Snapshot(), nil
}

// Options lists what userID may do now; empty when the game waits on someone else
func (gm *GameManager) Options(ref, userID string) ([]engine.Action, error) {
	game, err := gm.lookup(ref)
	if err != nil {
		return nil, err
	}
	game.mutex.Lock()
	defer game.mutex.Unlock()

	if game.Status != models.GameStatusActive {
		return nil, ErrGameNotActive
	}
	seat, ok := game.session.SeatByKey(userID)
	if !ok {
		return nil, ErrNotInGame
	}
	if game.session.Actor() != seat {
		return []engine.Action{}, nil
	}
	return game.session.AvailableOptions(), nil
}

// expire runs when the clock of a timed game runs out
func (gm *GameManager) expire(gameID string) {
	game, err := gm.lookup(gameID)
	if err != nil {
		return
	}
	game.mutex.Lock()
	defer game.mutex.Unlock()

	if game.Status != models.GameStatusActive {
		return
	}
	gm.logger.Infow("Game clock expired", "gameId", gameID)
	game.session.TimeExpired()
	gm.settleLocked(game)
}

// GameUpdate is pushed to every client of a game after each command. Long
// runs of events are split over several updates; only the last one carries
// the snapshot.
type GameUpdate struct {
	Type     string           `json:"type"`
	GameID   string           `json:"gameId"`
	Events   []models.Event   `json:"events"`
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
}

// LobbyUpdate is pushed to clients while a game waits for players
type LobbyUpdate struct {
	Type string   `json:"type"`
	Game GameInfo `json:"game"`
}

// chunkEvents splits events into batches of at most size, keeping order.
// No events still make one empty batch so a snapshot goes out.
func chunkEvents(events []models.Event, size int) [][]models.Event {
	if len(events) == 0 {
		return [][]models.Event{events}
	}
	var out [][]models.Event
	for len(events) > size {
		out = append(out, events[:size:size])
		events = events[size:]
	}
	return append(out, events)
}

func (gm *GameManager) publishLocked(game *GameSession) {
	events := game.session.Events()
	now := gm.now()
	for i := range events {
		game.seq++
		events[i].ID = uuid.New().String()
		events[i].GameID = game.ID
		events[i].Seq = game.seq
		events[i].Timestamp = now
	}
	snap := game.session.Snapshot()

	ctx, cancel := context.WithTimeout(gm.ctx, publishTimeout)
	defer cancel()

	batches := chunkEvents(events, maxEventsPerUpdate)
	for i, batch := range batches {
		if gm.wsHub != nil {
			update := GameUpdate{Type: "game_update", GameID: game.ID, Events: batch}
			if i == len(batches)-1 {
				update.Snapshot = &snap
			}
			msg, err := json.Marshal(update)
			if err != nil {
				gm.logger.Errorf("Failed to marshal game update: %v", err)
			} else {
				gm.wsHub.BroadcastToGame(game.ID, msg)
			}
		}
		if len(batch) == 0 {
			continue
		}
		if gm.queue != nil {
			if err := gm.queue.EnqueueEvents(ctx, game.ID, batch); err != nil {
				gm.logger.Errorw("Failed to enqueue game events", "gameId", game.ID, "count", len(batch), "error", err)
			}
		}
		if gm.cache != nil {
			if err := gm.cache.Publish(ctx, GameUpdate{Type: "game_events", GameID: game.ID, Events: batch}); err != nil {
				gm.logger.Warnw("Failed to publish game events", "gameId", game.ID, "error", err)
			}
		}
	}

	if gm.cache != nil {
		if err := gm.cache.SaveSnapshot(ctx, game.ID, snap); err != nil {
			gm.logger.Warnw("Failed to cache snapshot", "gameId", game.ID, "error", err)
		}
	}
}

func (gm *GameManager) broadcastLobbyUpdate(game *GameSession) {
	if gm.wsHub == nil {
		return
	}
	msg, err := json.Marshal(LobbyUpdate{Type: "lobby_update", Game: game.info()})
	if err != nil {
		gm.logger.Errorf("Failed to marshal lobby update: %v", err)
		return
	}
	gm.wsHub.BroadcastToGame(game.ID, msg)
}

// finishLocked records a finished game. The caller holds game.mutex.
func (gm *GameManager) finishLocked(game *GameSession) {
	game.Status = models.GameStatusCompleted
	if game.timer != nil {
		game.timer.Stop()
		game.timer = nil
	}

	record := game.record(gm.now())
	gm.logger.Infow("Game completed", "gameId", game.ID, "winners", record.Winners, "turns", record.Turns)
	if gm.queue == nil {
		return
	}
	ctx, cancel := context.WithTimeout(gm.ctx, publishTimeout)
	defer cancel()
	if err := gm.queue.EnqueueRecord(ctx, record); err != nil {
		gm.logger.Errorw("Failed to enqueue game record", "gameId", game.ID, "error", err)
	}
}

func inPalette(color string) bool {
	for _, c := range engine.Palette {
		if c == color {
			return true
		}
	}
	return false
}
