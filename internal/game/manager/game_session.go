package manager

import (
	"time"

	"github.com/daisywatson/monopoly-game/internal/game/engine"
	"github.com/daisywatson/monopoly-game/internal/game/ledger"
	"github.com/daisywatson/monopoly-game/internal/game/models"
	"github.com/daisywatson/monopoly-game/internal/game/policy"
)

// SeatInfo describes one seat. Before the game starts Seat is the lobby
// position; afterwards it is the turn order position.
type SeatInfo struct {
	Seat     int    `json:"seat"`
	Name     string `json:"name"`
	UserID   string `json:"userId,omitempty"`
	Human    bool   `json:"human"`
	Color    string `json:"color,omitempty"`
	Filled   bool   `json:"filled"`
	Bankrupt bool   `json:"bankrupt,omitempty"`
}

// GameInfo is the public description of a hosted game
type GameInfo struct {
	ID               string            `json:"gameId"`
	Code             string            `json:"code"`
	HostID           string            `json:"hostId"`
	Status           models.GameStatus `json:"status"`
	Difficulty       policy.Difficulty `json:"difficulty"`
	TimeLimitMinutes int               `json:"timeLimitMinutes"`
	Seats            []SeatInfo        `json:"seats"`
	Winners          []string          `json:"winners,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

func (g *GameSession) info() GameInfo {
	info := GameInfo{
		ID:               g.ID,
		Code:             g.Code,
		HostID:           g.HostID,
		Status:           g.Status,
		Difficulty:       g.Options.Difficulty,
		TimeLimitMinutes: g.Options.TimeLimitMinutes,
		CreatedAt:        g.CreatedAt,
	}

	if g.session == nil {
		for i, seat := range g.seats {
			info.Seats = append(info.Seats, SeatInfo{
				Seat:   i,
				Name:   seat.Name,
				UserID: seat.Key,
				Human:  seat.Human,
				Color:  seat.Color,
				Filled: !seat.Human || seat.Key != "",
			})
		}
		return info
	}

	for _, p := range g.session.Players() {
		info.Seats = append(info.Seats, SeatInfo{
			Seat:     p.ID,
			Name:     p.Name,
			UserID:   g.session.Key(p.ID),
			Human:    p.Human,
			Color:    p.Color,
			Filled:   true,
			Bankrupt: p.Bankrupt(),
		})
	}
	for _, w := range g.session.Winners() {
		p, _ := g.session.Player(w)
		info.Winners = append(info.Winners, p.Name)
	}
	return info
}

// seatOf returns the lobby index held by userID, or -1
func (g *GameSession) seatOf(userID string) int {
	if userID == "" {
		return -1
	}
	for i, seat := range g.seats {
		if seat.Key == userID {
			return i
		}
	}
	return -1
}

func (g *GameSession) nextOpenSeat() int {
	for i, seat := range g.seats {
		if seat.Human && seat.Key == "" {
			return i
		}
	}
	return -1
}

func (g *GameSession) openSeats() int {
	n := 0
	for _, seat := range g.seats {
		if seat.Human && seat.Key == "" {
			n++
		}
	}
	return n
}

func (g *GameSession) colorTaken(color string) bool {
	for _, seat := range g.seats {
		if seat.Color == color {
			return true
		}
	}
	return false
}

// playerByKeyOrName finds the running player for a lobby seat
func (g *GameSession) playerByKeyOrName(seat engine.SeatConfig) *ledger.Player {
	if g.session == nil {
		return nil
	}
	for _, p := range g.session.Players() {
		if seat.Key != "" && g.session.Key(p.ID) == seat.Key {
			return p
		}
		if seat.Key == "" && !p.Human && p.Name == seat.Name {
			return p
		}
	}
	return nil
}

// record summarizes a finished game for storage
func (g *GameSession) record(endedAt time.Time) *models.GameRecord {
	s := g.session
	cfg := s.Config()
	rec := &models.GameRecord{
		ID:         g.ID,
		Code:       g.Code,
		Status:     models.GameStatusCompleted,
		Mode:       string(cfg.Mode()),
		Difficulty: string(cfg.Difficulty),
		Turns:      s.Turn(),
		CreatedAt:  g.CreatedAt,
		EndedAt:    endedAt,
	}
	for _, p := range s.Players() {
		rec.Seats = append(rec.Seats, models.SeatRecord{
			Seat:     p.ID,
			Name:     p.Name,
			UserID:   s.Key(p.ID),
			Human:    p.Human,
			Color:    p.Color,
			Cash:     p.Cash(),
			Assets:   p.Assets(),
			Bankrupt: p.Bankrupt(),
		})
	}
	for _, w := range s.Winners() {
		p, _ := s.Player(w)
		rec.Winners = append(rec.Winners, p.Name)
	}
	return rec
}
