package engine

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/game/auction"
	"github.com/daisywatson/monopoly-game/internal/game/board"
	"github.com/daisywatson/monopoly-game/internal/game/ledger"
	"github.com/daisywatson/monopoly-game/internal/game/models"
	"github.com/daisywatson/monopoly-game/internal/game/policy"
)

// maxDriveSteps bounds how many computer decisions one command or one Run
// may trigger. Callers resume a computer-only game with Run.
const maxDriveSteps = 2000

// Session is one game of up to four players. It is not safe for concurrent
// use; callers serialize commands.
type Session struct {
	cfg      Config
	strategy policy.Strategy
	players  []*ledger.Player
	keys     []string
	owners   map[int]int
	bank     *board.Bank
	decks    board.Decks
	dice     board.Dice
	logger   *zap.SugaredLogger
	now      func() time.Time
	seed     int64

	current  int
	turn     int
	lastRoll [2]int
	dec      decision

	auc        *auctionRun
	debt       *Debt
	offer      *Offer
	liq        *liquidation
	eot        *endOfTurn
	bankruptcy *bankruptcySale

	deadline time.Time
	expired  bool
	winners  []int
	events   []models.Event
}

// NewSession seats the players, runs the dice-off for turn order and opens
// the first turn. Computer players act immediately until a human decision
// is needed.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		cfg:      cfg,
		strategy: policy.Strategy{Difficulty: cfg.Difficulty, Mode: cfg.Mode()},
		owners:   make(map[int]int),
		bank:     board.NewBank(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.applyDefaults()

	order := diceOff(s.dice, len(cfg.Seats))
	names := make([]string, 0, len(order))
	for turn, idx := range order {
		seat := cfg.Seats[idx]
		s.players = append(s.players, ledger.NewPlayer(turn, seat.Name, seat.Human, seat.Color))
		s.keys = append(s.keys, seat.Key)
		names = append(names, seat.Name)
	}
	s.emit(models.EventTurnOrder, models.NoSeat, data{"order": names})

	if cfg.TimeLimit > 0 {
		s.deadline = s.now().Add(cfg.TimeLimit)
	}
	s.logger.Debugw("Session created", "players", names, "mode", cfg.Mode(), "difficulty", cfg.Difficulty)

	s.startTurn(0)
	s.drive()
	return s, nil
}

// diceOff rolls for every seat and orders them by descending total; tied
// seats roll again among themselves.
func diceOff(dice board.Dice, n int) []int {
	seats := make([]int, n)
	for i := range seats {
		seats[i] = i
	}
	return rollOff(dice, seats)
}

func rollOff(dice board.Dice, seats []int) []int {
	if len(seats) < 2 {
		return seats
	}
	totals := make(map[int][]int)
	for _, seat := range seats {
		a, b := dice.Roll()
		totals[a+b] = append(totals[a+b], seat)
	}
	sums := make([]int, 0, len(totals))
	for sum := range totals {
		sums = append(sums, sum)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sums)))

	out := make([]int, 0, len(seats))
	for _, sum := range sums {
		out = append(out, rollOff(dice, totals[sum])...)
	}
	return out
}

type data = map[string]interface{}

func (s *Session) emit(t models.EventType, seat int, d data) {
	s.events = append(s.events, models.Event{Type: t, Seat: seat, Data: d})
}

// Events returns the events emitted since the last call and clears them
func (s *Session) Events() []models.Event {
	out := s.events
	s.events = nil
	return out
}

// Config returns the setup the session was created with
func (s *Session) Config() Config {
	return s.cfg
}

// Strategy is the policy computer players follow in this session
func (s *Session) Strategy() policy.Strategy {
	return s.strategy
}

// CurrentPlayer is the seat whose turn it is
func (s *Session) CurrentPlayer() *ledger.Player {
	return s.players[s.current]
}

// CurrentSquare is the current player's square
func (s *Session) CurrentSquare() board.Square {
	return board.MustLookup(s.players[s.current].Position())
}

// PendingDecisionKind names the open decision
func (s *Session) PendingDecisionKind() PendingKind {
	return s.dec.kind
}

// Pending returns the open decision with its detail
func (s *Session) Pending() Pending {
	p := Pending{Kind: s.dec.kind, Player: s.dec.player, Square: s.dec.square}
	switch s.dec.kind {
	case PendingAuction:
		st := s.auc.a.State()
		p.Auction = &st
		p.Player = st.Bidder
	case PendingPayment:
		d := *s.debt
		p.Debt = &d
	case PendingOffer:
		o := *s.offer
		p.Offer = &o
		p.Player = o.Target
	}
	return p
}

// Actor is the seat expected to act next, or models.NoSeat once the game is over
func (s *Session) Actor() int {
	switch s.dec.kind {
	case PendingGameOver:
		return models.NoSeat
	case PendingAuction:
		return s.auc.a.Bidder()
	case PendingOffer:
		return s.offer.Target
	}
	return s.dec.player
}

// Players returns the seats in turn order
func (s *Session) Players() []*ledger.Player {
	return append([]*ledger.Player(nil), s.players...)
}

// Player returns the seat at turn position id
func (s *Session) Player(id int) (*ledger.Player, bool) {
	if id < 0 || id >= len(s.players) {
		return nil, false
	}
	return s.players[id], true
}

// SeatByKey finds the seat configured with key
func (s *Session) SeatByKey(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	for i, k := range s.keys {
		if k == key {
			return i, true
		}
	}
	return 0, false
}

// Key returns the host key of a seat
func (s *Session) Key(seat int) string {
	if seat < 0 || seat >= len(s.keys) {
		return ""
	}
	return s.keys[seat]
}

func (s *Session) Bank() *board.Bank {
	return s.bank
}

// Owner returns the seat holding square
func (s *Session) Owner(square int) (int, bool) {
	seat, ok := s.owners[square]
	return seat, ok
}

// Over reports whether the game has finished
func (s *Session) Over() bool {
	return s.dec.kind == PendingGameOver
}

// Winners lists the winning seats once the game is over
func (s *Session) Winners() []int {
	return append([]int(nil), s.winners...)
}

// Turn counts turns started so far
func (s *Session) Turn() int {
	return s.turn
}

// Deadline is the end of a timed game, zero for classic games
func (s *Session) Deadline() time.Time {
	return s.deadline
}

// LastRoll is the most recent dice roll
func (s *Session) LastRoll() (int, int) {
	return s.lastRoll[0], s.lastRoll[1]
}

func (s *Session) timed() bool {
	return s.cfg.TimeLimit > 0
}

// active returns non-bankrupt seats in turn order
func (s *Session) active() []int {
	var out []int
	for _, p := range s.players {
		if !p.Bankrupt() {
			out = append(out, p.ID)
		}
	}
	return out
}

func (s *Session) others(seat int) []int {
	var out []int
	for _, id := range s.active() {
		if id != seat {
			out = append(out, id)
		}
	}
	return out
}

func (s *Session) occupied() int {
	return len(s.owners)
}

// run executes a human command and lets computer players respond
func (s *Session) run(name string, fn func() error) error {
	if s.dec.kind == PendingGameOver {
		return invalidCommand("%s: game is over", name)
	}
	if actor := s.Actor(); actor >= 0 && !s.players[actor].Human {
		return invalidCommand("%s: waiting on %s", name, s.players[actor])
	}
	if err := fn(); err != nil {
		s.logger.Debugw("Command rejected", "command", name, "error", err)
		return err
	}
	s.logger.Debugw("Command applied", "command", name, "pending", s.dec.kind)
	s.drive()
	return nil
}

// drive plays computer seats until a human must act or the game ends
func (s *Session) drive() {
	for step := 0; step < maxDriveSteps; step++ {
		actor := s.Actor()
		if actor < 0 || s.players[actor].Human {
			return
		}
		if err := s.computerAct(actor); err != nil {
			s.logger.Errorw("Computer player failed", "seat", actor, "pending", s.dec.kind, "error", err)
			return
		}
	}
	s.logger.Warnw("Computer players still acting after step limit", "turn", s.turn)
}

// Run lets computer players keep acting while they hold the turn, up to
// the same decision bound as a command. It returns whether the game is over.
func (s *Session) Run() bool {
	s.drive()
	return s.Over()
}

// TimeExpired records that the clock of a timed game ran out. The game ends
// when the in-progress turn ends.
func (s *Session) TimeExpired() {
	if !s.timed() || s.Over() {
		return
	}
	s.expired = true
	s.logger.Infow("Time limit reached", "turn", s.turn)
}

// Conclude ends the game at once in favor of the richest seats, the same
// outcome as a timed game running out of time.
func (s *Session) Conclude() {
	if s.Over() {
		return
	}
	s.logger.Infow("Game concluded", "turn", s.turn)
	s.finish(s.richest())
}

// HumansRemaining reports whether any human seat is still playing
func (s *Session) HumansRemaining() bool {
	for _, p := range s.players {
		if p.Human && !p.Bankrupt() {
			return true
		}
	}
	return false
}

func (s *Session) deadlinePassed() bool {
	if !s.timed() {
		return false
	}
	return s.expired || !s.now().Before(s.deadline)
}

func (s *Session) seatName(seat int) string {
	if seat == auction.NoPlayer {
		return "bank"
	}
	return s.players[seat].Name
}

func (s *Session) finish(winners []int) {
	s.winners = winners
	s.dec = decision{kind: PendingGameOver, player: models.NoSeat}
	s.auc, s.debt, s.offer, s.liq, s.eot = nil, nil, nil, nil, nil
	s.bankruptcy = nil
	names := make([]string, 0, len(winners))
	for _, w := range winners {
		names = append(names, s.players[w].Name)
	}
	s.emit(models.EventGameOver, models.NoSeat, data{"winners": names})
	s.logger.Infow("Game over", "winners", names, "turns", s.turn)
}

// richest returns every non-bankrupt seat sharing the highest cash plus assets
func (s *Session) richest() []int {
	best := -1
	var out []int
	for _, id := range s.active() {
		total := s.players[id].TotalAssets()
		switch {
		case total > best:
			best = total
			out = []int{id}
		case total == best:
			out = append(out, id)
		}
	}
	return out
}

func (s *Session) String() string {
	if s.Over() {
		return fmt.Sprintf("session over after %d turns", s.turn)
	}
	return fmt.Sprintf("session turn %d, %s to act on %s", s.turn, s.seatName(s.Actor()), s.dec.kind)
}
