package auction

import (
	"errors"
	"fmt"
	"sort"
)

// Floor is the opening amount on every lot. It is not a bid.
const Floor = 10

// NoPlayer marks the bank as seller or an absent leader
const NoPlayer = -1

var (
	ErrClosed          = errors.New("auction is closed")
	ErrBidTooLow       = errors.New("bid must exceed the current bid")
	ErrBidExceedsFunds = errors.New("bid exceeds available cash")
	ErrNoParticipants  = errors.New("auction needs at least one participant")
)

// LotKind tells whether a property title or a jail-free card is on offer
type LotKind string

const (
	LotProperty LotKind = "property"
	LotJailCard LotKind = "jail_card"
)

// Lot is what is being sold and by whom
type Lot struct {
	Kind   LotKind `json:"kind"`
	Square int     `json:"square,omitempty"`
	Seller int     `json:"seller"`
}

func (l Lot) String() string {
	if l.Kind == LotJailCard {
		return fmt.Sprintf("jail card from seat %d", l.Seller)
	}
	return fmt.Sprintf("square %d from seat %d", l.Square, l.Seller)
}

// Result is the outcome of a closed auction
type Result struct {
	Sold   bool `json:"sold"`
	Winner int  `json:"winner"`
	Price  int  `json:"price"`
}

// Auction runs round-robin bidding among a fixed rotation of seats.
// A seat that passes stays out until the auction closes.
type Auction struct {
	lot    Lot
	order  []int
	passed map[int]bool
	bid    int
	leader int
	cursor int
	closed bool
}

// New opens an auction. order is the bidding rotation, beginning with the
// first seat to act; seats listed in out are treated as already passed.
func New(lot Lot, order []int, out ...int) (*Auction, error) {
	if len(order) == 0 {
		return nil, ErrNoParticipants
	}
	a := &Auction{
		lot:    lot,
		order:  append([]int(nil), order...),
		passed: make(map[int]bool, len(order)),
		bid:    Floor,
		leader: NoPlayer,
	}
	for _, seat := range out {
		if a.index(seat) >= 0 {
			a.passed[seat] = true
		}
	}
	a.cursor = -1
	a.settle()
	return a, nil
}

func (a *Auction) Lot() Lot {
	return a.lot
}

// Bid is the highest amount offered so far, Floor when nobody has bid
func (a *Auction) Bid() int {
	return a.bid
}

// Leader is the seat holding the high bid or NoPlayer
func (a *Auction) Leader() int {
	return a.leader
}

// Bidder is the seat expected to act next
func (a *Auction) Bidder() int {
	if a.closed {
		return NoPlayer
	}
	return a.order[a.cursor]
}

func (a *Auction) Closed() bool {
	return a.closed
}

// Passed returns the seats that have dropped out, in rotation order
func (a *Auction) Passed() []int {
	out := make([]int, 0, len(a.passed))
	for _, seat := range a.order {
		if a.passed[seat] {
			out = append(out, seat)
		}
	}
	return out
}

// Participants returns the bidding rotation
func (a *Auction) Participants() []int {
	return append([]int(nil), a.order...)
}

// Result reports the sale once closed
func (a *Auction) Result() Result {
	if !a.closed || a.leader == NoPlayer {
		return Result{Winner: NoPlayer}
	}
	return Result{Sold: true, Winner: a.leader, Price: a.bid}
}

// PlaceBid records a bid from the current bidder, who holds funds in cash
func (a *Auction) PlaceBid(amount, funds int) error {
	if a.closed {
		return ErrClosed
	}
	if amount <= a.bid {
		return fmt.Errorf("%d against %d: %w", amount, a.bid, ErrBidTooLow)
	}
	if amount > funds {
		return fmt.Errorf("%d against cash %d: %w", amount, funds, ErrBidExceedsFunds)
	}
	a.bid = amount
	a.leader = a.order[a.cursor]
	a.settle()
	return nil
}

// Pass drops the current bidder out of the auction
func (a *Auction) Pass() error {
	if a.closed {
		return ErrClosed
	}
	a.passed[a.order[a.cursor]] = true
	a.settle()
	return nil
}

// settle closes the auction when the rules say so, otherwise moves the cursor
// to the next seat that is still in and is not the leader.
func (a *Auction) settle() {
	n := len(a.order)
	out := len(a.passed)
	if out >= n || (out == n-1 && a.leader != NoPlayer && !a.passed[a.leader]) {
		a.closed = true
		return
	}
	for step := 1; step <= n; step++ {
		i := (a.cursor + step + n) % n
		seat := a.order[i]
		if a.passed[seat] || seat == a.leader {
			continue
		}
		a.cursor = i
		return
	}
	a.closed = true
}

func (a *Auction) index(seat int) int {
	for i, s := range a.order {
		if s == seat {
			return i
		}
	}
	return -1
}

// State is a read-only copy for snapshots and events
type State struct {
	Lot          Lot   `json:"lot"`
	Bid          int   `json:"bid"`
	Leader       int   `json:"leader"`
	Bidder       int   `json:"bidder"`
	Participants []int `json:"participants"`
	Passed       []int `json:"passed"`
	Closed       bool  `json:"closed"`
}

func (a *Auction) State() State {
	passed := a.Passed()
	sort.Ints(passed)
	return State{
		Lot:          a.lot,
		Bid:          a.bid,
		Leader:       a.leader,
		Bidder:       a.Bidder(),
		Participants: a.Participants(),
		Passed:       passed,
		Closed:       a.closed,
	}
}

// Rotation orders seats for bidding starting with the seat after start in
// seating order. start itself comes last when it is in seats.
func Rotation(seats []int, start int) []int {
	sorted := append([]int(nil), seats...)
	sort.Ints(sorted)
	out := make([]int, 0, len(sorted))
	for _, s := range sorted {
		if s > start {
			out = append(out, s)
		}
	}
	for _, s := range sorted {
		if s <= start {
			out = append(out, s)
		}
	}
	return out
}
