package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/daisywatson/monopoly-game/internal/game/board"
)

// ErrInvalidState marks a mutation the caller should have ruled out first
var ErrInvalidState = errors.New("invalid ledger state")

// Player is the mutable per-seat record of one game
type Player struct {
	ID    int
	Name  string
	Human bool
	Color string

	cash     int
	assets   int
	position int

	inJail    bool
	jailTurns int
	jailCards int

	owned     map[int]bool
	mortgaged map[int]bool
	levels    map[int]int

	bankrupt bool
}

// NewPlayer seats a player on Go with the starting cash
func NewPlayer(id int, name string, human bool, color string) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Human:     human,
		Color:     color,
		cash:      board.StartingCash,
		owned:     make(map[int]bool),
		mortgaged: make(map[int]bool),
		levels:    make(map[int]int),
	}
}

func (p *Player) String() string {
	return fmt.Sprintf("%s (#%d)", p.Name, p.ID)
}

// Cash returns the player's cash on hand
func (p *Player) Cash() int {
	return p.cash
}

// AddCash credits the player
func (p *Player) AddCash(amount int) {
	p.cash += amount
}

// PayCash debits the player. Callers check affordability first, so the
// balance only goes negative on a caller defect.
func (p *Player) PayCash(amount int) error {
	if amount > p.cash {
		return fmt.Errorf("%s cannot pay %d with %d: %w", p, amount, p.cash, ErrInvalidState)
	}
	p.cash -= amount
	return nil
}

// CanAfford reports whether the player holds at least amount in cash
func (p *Player) CanAfford(amount int) bool {
	return p.cash >= amount
}

// Assets is the tracked value of owned properties and improvements
func (p *Player) Assets() int {
	return p.assets
}

func (p *Player) AddAssets(amount int) {
	p.assets += amount
}

func (p *Player) SubtractAssets(amount int) {
	p.assets -= amount
}

// TotalAssets is cash plus asset value
func (p *Player) TotalAssets() int {
	return p.cash + p.assets
}

// Position is the player's square, 40 while in jail
func (p *Player) Position() int {
	return p.position
}

func (p *Player) MoveTo(square int) {
	p.position = square
}

// Owns reports whether the player holds the title to square
func (p *Player) Owns(square int) bool {
	return p.owned[square]
}

func (p *Player) AddProperty(square int) error {
	if p.owned[square] {
		return fmt.Errorf("%s already owns square %d: %w", p, square, ErrInvalidState)
	}
	p.owned[square] = true
	return nil
}

// RemoveProperty drops the title along with any mortgage flag and improvements
func (p *Player) RemoveProperty(square int) error {
	if !p.owned[square] {
		return fmt.Errorf("%s does not own square %d: %w", p, square, ErrInvalidState)
	}
	delete(p.owned, square)
	delete(p.mortgaged, square)
	delete(p.levels, square)
	return nil
}

// Properties returns owned squares in ascending order
func (p *Player) Properties() []int {
	out := make([]int, 0, len(p.owned))
	for sq := range p.owned {
		out = append(out, sq)
	}
	sort.Ints(out)
	return out
}

// OwnedInGroup counts the squares of g the player holds
func (p *Player) OwnedInGroup(g board.ColorGroup) int {
	n := 0
	for _, sq := range board.GroupMembers(g) {
		if p.owned[sq] {
			n++
		}
	}
	return n
}

// OwnsGroup reports whether the player holds every square of g
func (p *Player) OwnsGroup(g board.ColorGroup) bool {
	members := board.GroupMembers(g)
	return len(members) > 0 && p.OwnedInGroup(g) == len(members)
}

func (p *Player) IsMortgaged(square int) bool {
	return p.mortgaged[square]
}

func (p *Player) Mortgage(square int) error {
	if !p.owned[square] || p.mortgaged[square] {
		return fmt.Errorf("%s cannot mortgage square %d: %w", p, square, ErrInvalidState)
	}
	p.mortgaged[square] = true
	return nil
}

func (p *Player) Unmortgage(square int) error {
	if !p.mortgaged[square] {
		return fmt.Errorf("%s has no mortgage on square %d: %w", p, square, ErrInvalidState)
	}
	delete(p.mortgaged, square)
	return nil
}

// Level is the improvement level on square: 0 none, 1-4 houses, 5 hotel
func (p *Player) Level(square int) int {
	return p.levels[square]
}

func (p *Player) SetLevel(square, level int) error {
	if !p.owned[square] || level < 0 || level > board.HotelLevel {
		return fmt.Errorf("%s cannot set level %d on square %d: %w", p, level, square, ErrInvalidState)
	}
	if level == 0 {
		delete(p.levels, square)
		return nil
	}
	p.levels[square] = level
	return nil
}

// GroupImproved reports whether any of the player's squares in g carry a building
func (p *Player) GroupImproved(g board.ColorGroup) bool {
	for _, sq := range board.GroupMembers(g) {
		if p.levels[sq] > 0 {
			return true
		}
	}
	return false
}

// TotalHouses counts houses on squares below hotel level
func (p *Player) TotalHouses() int {
	n := 0
	for _, l := range p.levels {
		if l < board.HotelLevel {
			n += l
		}
	}
	return n
}

func (p *Player) TotalHotels() int {
	n := 0
	for _, l := range p.levels {
		if l == board.HotelLevel {
			n++
		}
	}
	return n
}

func (p *Player) InJail() bool {
	return p.inJail
}

func (p *Player) JailTurns() int {
	return p.jailTurns
}

// EnterJail moves the piece to the synthetic jail square
func (p *Player) EnterJail() {
	p.inJail = true
	p.jailTurns = 0
	p.position = board.InJailSquare
}

// LeaveJail releases the piece onto the just visiting square
func (p *Player) LeaveJail() {
	p.inJail = false
	p.jailTurns = 0
	p.position = board.JailVisitSquare
}

func (p *Player) AddJailTurn() {
	p.jailTurns++
}

func (p *Player) JailCards() int {
	return p.jailCards
}

func (p *Player) AddJailCard() {
	p.jailCards++
}

func (p *Player) UseJailCard() error {
	if p.jailCards == 0 {
		return fmt.Errorf("%s holds no jail card: %w", p, ErrInvalidState)
	}
	p.jailCards--
	return nil
}

// ForfeitJailCards drops every held card and returns how many there were
func (p *Player) ForfeitJailCards() int {
	n := p.jailCards
	p.jailCards = 0
	return n
}

func (p *Player) Bankrupt() bool {
	return p.bankrupt
}

// DeclareBankrupt is terminal: cash and asset value are zeroed
func (p *Player) DeclareBankrupt() {
	p.bankrupt = true
	p.cash = 0
	p.assets = 0
	p.inJail = false
	p.jailTurns = 0
}

// State is a read-only copy of a player for snapshots
type State struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	Human      bool        `json:"human"`
	Color      string      `json:"color"`
	Cash       int         `json:"cash"`
	Assets     int         `json:"assets"`
	Position   int         `json:"position"`
	InJail     bool        `json:"inJail"`
	JailTurns  int         `json:"jailTurns"`
	JailCards  int         `json:"jailCards"`
	Properties []int       `json:"properties"`
	Mortgaged  []int       `json:"mortgaged"`
	Levels     map[int]int `json:"levels"`
	Bankrupt   bool        `json:"bankrupt"`
}

// State copies the player's current record
func (p *Player) State() State {
	s := State{
		ID:         p.ID,
		Name:       p.Name,
		Human:      p.Human,
		Color:      p.Color,
		Cash:       p.cash,
		Assets:     p.assets,
		Position:   p.position,
		InJail:     p.inJail,
		JailTurns:  p.jailTurns,
		JailCards:  p.jailCards,
		Properties: p.Properties(),
		Mortgaged:  []int{},
		Levels:     make(map[int]int, len(p.levels)),
		Bankrupt:   p.bankrupt,
	}
	for _, sq := range s.Properties {
		if p.mortgaged[sq] {
			s.Mortgaged = append(s.Mortgaged, sq)
		}
	}
	for sq, l := range p.levels {
		s.Levels[sq] = l
	}
	return s
}
