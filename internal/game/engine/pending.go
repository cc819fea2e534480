package engine

import (
	"github.com/daisywatson/monopoly-game/internal/game/auction"
)

// PendingKind names the decision the session is waiting on. Exactly one is
// open at a time.
type PendingKind string

const (
	PendingRoll        PendingKind = "roll"
	PendingPurchase    PendingKind = "purchase"
	PendingTax         PendingKind = "tax"
	PendingJail        PendingKind = "jail"
	PendingAuction     PendingKind = "auction"
	PendingPayment     PendingKind = "payment"
	PendingOffer       PendingKind = "offer"
	PendingTurnActions PendingKind = "turn_actions"
	PendingGameOver    PendingKind = "game_over"
)

// decision is the open decision point. Kind-specific detail lives in the
// session's auction, debt and offer fields.
type decision struct {
	kind   PendingKind
	player int
	square int
}

// Pending is the read-only view of the open decision
type Pending struct {
	Kind    PendingKind    `json:"kind"`
	Player  int            `json:"player"`
	Square  int            `json:"square,omitempty"`
	Auction *auction.State `json:"auction,omitempty"`
	Debt    *Debt          `json:"debt,omitempty"`
	Offer   *Offer         `json:"offer,omitempty"`
}

// DebtLine is an amount owed to one payee; auction.NoPlayer is the bank
type DebtLine struct {
	To     int `json:"to"`
	Amount int `json:"amount"`
}

// Debt is an obligation the debtor could not cover from cash
type Debt struct {
	Debtor int        `json:"debtor"`
	Reason string     `json:"reason"`
	Lines  []DebtLine `json:"lines"`
}

// Total is the sum owed across all payees
func (d Debt) Total() int {
	total := 0
	for _, l := range d.Lines {
		total += l.Amount
	}
	return total
}

// OfferKind is what a direct offer sells
type OfferKind string

const (
	OfferProperty OfferKind = "property"
	OfferJailCard OfferKind = "jail_card"
)

// Offer is a direct sale waiting for the target's answer
type Offer struct {
	Kind   OfferKind `json:"kind"`
	Seller int       `json:"seller"`
	Target int       `json:"target"`
	Square int       `json:"square,omitempty"`
	Price  int       `json:"price"`

	resume decision
}

// auctionPurpose tells the session what to do once an auction closes
type auctionPurpose int

const (
	// purposeLanded follows a declined purchase and finishes the landing
	purposeLanded auctionPurpose = iota
	// purposeSale is a player's own sale; the interrupted decision resumes
	purposeSale
	// purposeBankruptcy sells a bankrupt player's title for the bank
	purposeBankruptcy
)

type auctionRun struct {
	a       *auction.Auction
	purpose auctionPurpose
	resume  decision
}
