package engine

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/game/board"
	"github.com/daisywatson/monopoly-game/internal/game/policy"
)

const (
	MinPlayers = 2
	MaxPlayers = 4
)

// Palette lists the piece colors in assignment order
var Palette = []string{"red", "blue", "green", "yellow"}

// SeatConfig describes one seat before the dice-off decides turn order
type SeatConfig struct {
	Name  string `json:"name"`
	Human bool   `json:"human"`
	Color string `json:"color,omitempty"`
	// Key lets the host map its own users to seats after the dice-off
	Key string `json:"key,omitempty"`
}

// Config is a validated session setup
type Config struct {
	Seats      []SeatConfig      `json:"seats"`
	Difficulty policy.Difficulty `json:"difficulty"`
	TimeLimit  time.Duration     `json:"timeLimit"`
}

// Mode is timed when a time limit is set
func (c Config) Mode() policy.Mode {
	if c.TimeLimit > 0 {
		return policy.Timed
	}
	return policy.Classic
}

// ConfigureSession builds the default seating for a game: humans first, then
// computers, with palette colors in order.
func ConfigureSession(total, humans, computers int, difficulty policy.Difficulty, timeLimitMinutes int) (Config, error) {
	if humans < 0 || computers < 0 || humans+computers != total {
		return Config{}, fmt.Errorf("%d humans and %d computers do not make %d players: %w", humans, computers, total, ErrInvalidConfig)
	}
	if timeLimitMinutes < 0 {
		return Config{}, fmt.Errorf("negative time limit %d: %w", timeLimitMinutes, ErrInvalidConfig)
	}
	cfg := Config{
		Difficulty: difficulty,
		TimeLimit:  time.Duration(timeLimitMinutes) * time.Minute,
	}
	for i := 0; i < humans; i++ {
		cfg.Seats = append(cfg.Seats, SeatConfig{Name: fmt.Sprintf("Player %d", i+1), Human: true})
	}
	for i := 0; i < computers; i++ {
		cfg.Seats = append(cfg.Seats, SeatConfig{Name: fmt.Sprintf("Computer %d", i+1)})
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks seat count, difficulty and colors, filling in missing colors
func (c *Config) Validate() error {
	if len(c.Seats) < MinPlayers || len(c.Seats) > MaxPlayers {
		return fmt.Errorf("%d seats, want %d-%d: %w", len(c.Seats), MinPlayers, MaxPlayers, ErrInvalidConfig)
	}
	if _, err := policy.ParseDifficulty(string(c.Difficulty)); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidConfig)
	}
	if c.TimeLimit < 0 {
		return fmt.Errorf("negative time limit: %w", ErrInvalidConfig)
	}

	taken := make(map[string]bool)
	for i, seat := range c.Seats {
		if seat.Name == "" {
			return fmt.Errorf("seat %d has no name: %w", i, ErrInvalidConfig)
		}
		if seat.Color == "" {
			continue
		}
		if !inPalette(seat.Color) {
			return fmt.Errorf("seat %d color %q is not available: %w", i, seat.Color, ErrInvalidConfig)
		}
		if taken[seat.Color] {
			return fmt.Errorf("color %q chosen twice: %w", seat.Color, ErrInvalidConfig)
		}
		taken[seat.Color] = true
	}
	for i := range c.Seats {
		if c.Seats[i].Color != "" {
			continue
		}
		for _, color := range Palette {
			if !taken[color] {
				c.Seats[i].Color = color
				taken[color] = true
				break
			}
		}
	}
	return nil
}

func inPalette(color string) bool {
	for _, c := range Palette {
		if c == color {
			return true
		}
	}
	return false
}

// Option customizes a session
type Option func(*Session)

// WithDice replaces the random dice
func WithDice(d board.Dice) Option {
	return func(s *Session) {
		s.dice = d
	}
}

// WithDecks replaces the shuffled decks
func WithDecks(d board.Decks) Option {
	return func(s *Session) {
		s.decks = d
	}
}

// WithSeed makes dice and deck shuffles reproducible
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.seed = seed
	}
}

// WithLogger sets the session logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock overrides time.Now for the timed-mode deadline
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

func (s *Session) applyDefaults() {
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	if s.now == nil {
		s.now = time.Now
	}
	seed := s.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if s.dice == nil {
		s.dice = board.NewRandomDice(seed)
	}
	if s.decks.Chest == nil || s.decks.Chance == nil {
		s.decks = board.NewDecks(rand.New(rand.NewSource(seed + 1)))
	}
}
