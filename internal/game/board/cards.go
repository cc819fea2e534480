package board

import (
	"math/rand"
)

// DeckID names one of the two event decks
type DeckID string

const (
	DeckChest  DeckID = "chest"
	DeckChance DeckID = "chance"
)

// DeckSize is the number of cards in each deck
const DeckSize = 16

// EffectKind tags what a card does
type EffectKind string

const (
	EffectCollect           EffectKind = "collect"
	EffectCollectPerPlayer  EffectKind = "collect_per_player"
	EffectPay               EffectKind = "pay"
	EffectPayPerImprovement EffectKind = "pay_per_improvement"
	EffectPayPerPlayer      EffectKind = "pay_per_player"
	EffectMoveTo            EffectKind = "move_to"
	EffectMoveToNearest     EffectKind = "move_to_nearest"
	EffectMoveRelative      EffectKind = "move_relative"
	EffectGoToJail          EffectKind = "go_to_jail"
	EffectJailFree          EffectKind = "jail_free"
)

// Card is one community chest or chance card
type Card struct {
	Deck   DeckID     `json:"deck"`
	Number int        `json:"number"`
	Title  string     `json:"title"`
	Kind   EffectKind `json:"kind"`
	Amount int        `json:"amount,omitempty"`

	PerHouse int `json:"perHouse,omitempty"`
	PerHotel int `json:"perHotel,omitempty"`

	// Target is the destination of a move_to card
	Target int `json:"target,omitempty"`
	// Nearest is the square type a move_to_nearest card heads for
	Nearest SquareType `json:"nearest,omitempty"`
	Delta   int        `json:"delta,omitempty"`

	// PassGo marks move_to cards that pay the bonus when the player's former
	// square is past the target
	PassGo bool `json:"passGo,omitempty"`

	Special SpecialRent `json:"special,omitempty"`
}

// Moves reports whether resolving the card changes the player's square
func (c Card) Moves() bool {
	switch c.Kind {
	case EffectMoveTo, EffectMoveToNearest, EffectMoveRelative, EffectGoToJail:
		return true
	}
	return false
}

// Destination computes where a moving card sends a player standing on from
func (c Card) Destination(from int) int {
	switch c.Kind {
	case EffectMoveTo:
		return c.Target
	case EffectMoveToNearest:
		if c.Nearest == SquareUtility {
			return NearestUtility(from)
		}
		return NearestRailroad(from)
	case EffectMoveRelative:
		return ((from+c.Delta)%NumSquares + NumSquares) % NumSquares
	case EffectGoToJail:
		return InJailSquare
	}
	return from
}

// EarnsPassGo reports whether moving from former by this card pays the Go bonus
func (c Card) EarnsPassGo(former int) bool {
	return c.Kind == EffectMoveTo && c.PassGo && former > c.Target
}

var chestCards = [DeckSize]Card{
	{Number: 0, Title: "Holiday fund matures", Kind: EffectCollect, Amount: 100},
	{Number: 1, Title: "Life insurance matures", Kind: EffectCollect, Amount: 100},
	{Number: 2, Title: "Hospital fees", Kind: EffectPay, Amount: 50},
	{Number: 3, Title: "Income tax refund", Kind: EffectCollect, Amount: 20},
	{Number: 4, Title: "Doctor's fee", Kind: EffectPay, Amount: 100},
	{Number: 5, Title: "Go to jail", Kind: EffectGoToJail},
	{Number: 6, Title: "Consultancy fee", Kind: EffectCollect, Amount: 25},
	{Number: 7, Title: "Birthday", Kind: EffectCollectPerPlayer, Amount: 10},
	{Number: 8, Title: "You inherit", Kind: EffectCollect, Amount: 100},
	{Number: 9, Title: "Sale of stock", Kind: EffectCollect, Amount: 50},
	{Number: 10, Title: "Get out of jail free", Kind: EffectJailFree},
	{Number: 11, Title: "School fees", Kind: EffectPay, Amount: 50},
	{Number: 12, Title: "Beauty contest", Kind: EffectCollect, Amount: 10},
	{Number: 13, Title: "Street repairs", Kind: EffectPayPerImprovement, PerHouse: 40, PerHotel: 115},
	{Number: 14, Title: "Advance to Go", Kind: EffectMoveTo, Target: GoSquare},
	{Number: 15, Title: "Bank error in your favor", Kind: EffectCollect, Amount: 200},
}

var chanceCards = [DeckSize]Card{
	{Number: 0, Title: "Advance to Go", Kind: EffectMoveTo, Target: GoSquare},
	{Number: 1, Title: "General repairs", Kind: EffectPayPerImprovement, PerHouse: 25, PerHotel: 100},
	{Number: 2, Title: "Get out of jail free", Kind: EffectJailFree},
	{Number: 3, Title: "Advance to St. Charles Place", Kind: EffectMoveTo, Target: 11, PassGo: true},
	{Number: 4, Title: "Chairman of the board", Kind: EffectPayPerPlayer, Amount: 50},
	{Number: 5, Title: "Go back three spaces", Kind: EffectMoveRelative, Delta: -3},
	{Number: 6, Title: "Speeding fine", Kind: EffectPay, Amount: 15},
	{Number: 7, Title: "Advance to the next railroad", Kind: EffectMoveToNearest, Nearest: SquareRailroad, Special: SpecialRentDouble},
	{Number: 8, Title: "Advance to the nearest railroad", Kind: EffectMoveToNearest, Nearest: SquareRailroad, Special: SpecialRentDouble},
	{Number: 9, Title: "Bank pays dividend", Kind: EffectCollect, Amount: 50},
	{Number: 10, Title: "Advance to Boardwalk", Kind: EffectMoveTo, Target: 39},
	{Number: 11, Title: "Trip to Reading Railroad", Kind: EffectMoveTo, Target: 5, PassGo: true},
	{Number: 12, Title: "Building loan matures", Kind: EffectCollect, Amount: 150},
	{Number: 13, Title: "Advance to Illinois Avenue", Kind: EffectMoveTo, Target: 24, PassGo: true},
	{Number: 14, Title: "Advance to the nearest utility", Kind: EffectMoveToNearest, Nearest: SquareUtility, Special: SpecialRentTenTimesDice},
	{Number: 15, Title: "Go to jail", Kind: EffectGoToJail},
}

// CardByNumber returns the definition of card n of a deck
func CardByNumber(deck DeckID, n int) (Card, bool) {
	if n < 0 || n >= DeckSize {
		return Card{}, false
	}
	var c Card
	switch deck {
	case DeckChest:
		c = chestCards[n]
	case DeckChance:
		c = chanceCards[n]
	default:
		return Card{}, false
	}
	c.Deck = deck
	return c, true
}

// Deck is a fixed permutation of the 16 cards with a cyclic draw pointer.
// Drawn cards return to the bottom, so the permutation never changes.
type Deck struct {
	id    DeckID
	order [DeckSize]int
	next  int
}

// NewDeck builds a deck in the given card order, which must be a permutation of 0..15
func NewDeck(id DeckID, order [DeckSize]int) *Deck {
	return &Deck{id: id, order: order}
}

// ShuffledDeck builds a deck in a random order
func ShuffledDeck(id DeckID, rng *rand.Rand) *Deck {
	var order [DeckSize]int
	for i, v := range rng.Perm(DeckSize) {
		order[i] = v
	}
	return NewDeck(id, order)
}

// ID returns which deck this is
func (d *Deck) ID() DeckID {
	return d.id
}

// Draw returns the card under the pointer without advancing it
func (d *Deck) Draw() Card {
	c, _ := CardByNumber(d.id, d.order[d.next])
	return c
}

// Advance puts the drawn card at the bottom of the deck
func (d *Deck) Advance() {
	d.next = (d.next + 1) % DeckSize
}

// Position returns the draw pointer
func (d *Deck) Position() int {
	return d.next
}

// Decks holds both event decks
type Decks struct {
	Chest  *Deck
	Chance *Deck
}

// NewDecks shuffles both decks independently
func NewDecks(rng *rand.Rand) Decks {
	return Decks{
		Chest:  ShuffledDeck(DeckChest, rng),
		Chance: ShuffledDeck(DeckChance, rng),
	}
}

// For returns the deck matching a chance or chest square type
func (d Decks) For(t SquareType) *Deck {
	if t == SquareChance {
		return d.Chance
	}
	return d.Chest
}
