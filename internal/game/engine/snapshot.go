package engine

import (
	"time"

	"github.com/daisywatson/monopoly-game/internal/game/ledger"
	"github.com/daisywatson/monopoly-game/internal/game/policy"
)

// Snapshot is a read-only copy of the whole session, shaped for clients
type Snapshot struct {
	Turn       int               `json:"turn"`
	Current    int               `json:"current"`
	Actor      int               `json:"actor"`
	Pending    Pending           `json:"pending"`
	Options    []Action          `json:"options,omitempty"`
	Players    []ledger.State    `json:"players"`
	Owners     map[int]int       `json:"owners"`
	Bank       BankState         `json:"bank"`
	Decks      DeckState         `json:"decks"`
	LastRoll   [2]int            `json:"lastRoll"`
	Mode       policy.Mode       `json:"mode"`
	Difficulty policy.Difficulty `json:"difficulty"`
	Deadline   *time.Time        `json:"deadline,omitempty"`
	Winners    []int             `json:"winners,omitempty"`
}

type BankState struct {
	Houses int `json:"houses"`
	Hotels int `json:"hotels"`
}

// DeckState holds the draw pointer of each deck
type DeckState struct {
	Chest  int `json:"chest"`
	Chance int `json:"chance"`
}

// Snapshot copies the session state
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Turn:       s.turn,
		Current:    s.current,
		Actor:      s.Actor(),
		Pending:    s.Pending(),
		Options:    s.AvailableOptions(),
		Owners:     make(map[int]int, len(s.owners)),
		Bank:       BankState{Houses: s.bank.Houses(), Hotels: s.bank.Hotels()},
		Decks:      DeckState{Chest: s.decks.Chest.Position(), Chance: s.decks.Chance.Position()},
		LastRoll:   s.lastRoll,
		Mode:       s.cfg.Mode(),
		Difficulty: s.cfg.Difficulty,
		Winners:    s.Winners(),
	}
	for _, p := range s.players {
		snap.Players = append(snap.Players, p.State())
	}
	for sq, seat := range s.owners {
		snap.Owners[sq] = seat
	}
	if !s.deadline.IsZero() {
		d := s.deadline
		snap.Deadline = &d
	}
	return snap
}
