package engine

import (
	"sort"

	"github.com/daisywatson/monopoly-game/internal/game/auction"
	"github.com/daisywatson/monopoly-game/internal/game/board"
	"github.com/daisywatson/monopoly-game/internal/game/ledger"
)

// liquidation tracks a computer raising cash for an open payment. Titles
// already offered at auction are not offered again, and each jail card held
// when the payment opened is offered once.
type liquidation struct {
	cards     int
	cardTries int
	tried     map[int]bool
}

// endOfTurn tracks the computer's property pass after landing
type endOfTurn struct {
	stage     int
	cards     int
	cardTries int
	tried     map[int]bool
}

const (
	stageJailCards = iota
	stageImprove
	stageSellProperty
	stageDone
)

// computerAct takes one decision for the computer seat actor
func (s *Session) computerAct(actor int) error {
	p := s.players[actor]
	switch s.dec.kind {
	case PendingRoll:
		return s.rollAndMove()

	case PendingPurchase:
		sq := board.MustLookup(s.dec.square)
		if s.strategy.BuyProperty(sq.Price, p.Cash()) && p.CanAfford(sq.Price) {
			return s.buyProperty()
		}
		return s.declineAndAuction()

	case PendingTax:
		if s.strategy.PayFlatIncomeTax(p.TotalAssets()) {
			return s.payTax(TaxFlat)
		}
		return s.payTax(TaxPercent)

	case PendingJail:
		switch {
		case p.JailCards() > 0:
			return s.useJailCard()
		case !p.CanAfford(board.JailFee) || s.strategy.RollOutOfJail(p.Cash(), s.bank.Houses(), s.occupied()):
			return s.rollInJail()
		}
		return s.payJailFee()

	case PendingAuction:
		if s.computerBids(p) {
			return s.submitBid(s.auc.a.Bid() + 1)
		}
		return s.pass()

	case PendingOffer:
		o := *s.offer
		s.offer = nil
		return s.answerOffer(o, s.computerAccepts(o) && p.CanAfford(o.Price))

	case PendingPayment:
		return s.liquidate()

	case PendingTurnActions:
		return s.endOfTurnStep()
	}
	return invalidCommand("computer cannot act on %s", s.dec.kind)
}

func (s *Session) computerBids(p *ledger.Player) bool {
	a := s.auc.a
	lot := a.Lot()
	if lot.Kind == auction.LotJailCard {
		return s.strategy.BidJailCard(a.Bid(), p.Cash())
	}
	sq := board.MustLookup(lot.Square)
	return s.strategy.BidProperty(a.Bid(), sq.Price, p.Cash(), sq.Group)
}

// liquidate takes one step toward covering the open debt: hotels, then
// houses, then mortgages, then jail cards and titles at auction. With nothing
// left to sell the computer goes bankrupt.
func (s *Session) liquidate() error {
	seat := s.debt.Debtor
	p := s.players[seat]
	// an earlier step may already have raised enough
	if p.CanAfford(s.debt.Total()) {
		return s.payDebt()
	}
	if s.liq == nil {
		s.liq = &liquidation{cards: p.JailCards(), tried: make(map[int]bool)}
	}

	for _, sq := range p.Properties() {
		if s.canSellHotel(seat, sq) {
			return s.sellHotel(seat, sq)
		}
	}
	if sq, ok := s.highestHouse(seat); ok {
		return s.sellHouse(seat, sq)
	}
	for _, sq := range p.Properties() {
		if s.canMortgage(seat, sq) {
			return s.mortgage(seat, sq)
		}
	}
	// an unsold card stays in hand, so offers are counted against the cards
	// held at the start rather than the cards left
	if p.JailCards() > 0 && s.liq.cardTries < s.liq.cards {
		s.liq.cardTries++
		return s.auctionJailCard(seat)
	}
	// each title goes to auction once; an unsold one keeps its place
	for _, sq := range s.saleOrder(seat) {
		if !s.liq.tried[sq] && s.canSellProperty(seat, sq) {
			s.liq.tried[sq] = true
			return s.startAuction(auction.Lot{Kind: auction.LotProperty, Square: sq, Seller: seat}, seat, purposeSale, s.dec)
		}
	}
	return s.goBankrupt(seat)
}

// highestHouse picks a square the seat may sell a house from, preferring the
// most built up
func (s *Session) highestHouse(seat int) (int, bool) {
	best, level := 0, 0
	for _, sq := range s.players[seat].Properties() {
		if l := s.players[seat].Level(sq); l > level && s.canSellHouse(seat, sq) {
			best, level = sq, l
		}
	}
	return best, level > 0
}

// saleOrder lists the seat's titles for auction: those outside a complete
// group first, then the most valuable first.
func (s *Session) saleOrder(seat int) []int {
	p := s.players[seat]
	squares := p.Properties()
	sort.SliceStable(squares, func(i, j int) bool {
		a, b := board.MustLookup(squares[i]), board.MustLookup(squares[j])
		ca, cb := p.OwnsGroup(a.Group), p.OwnsGroup(b.Group)
		if ca != cb {
			return !ca
		}
		return a.Price > b.Price
	})
	return squares
}

func (s *Session) auctionJailCard(seat int) error {
	lot := auction.Lot{Kind: auction.LotJailCard, Seller: seat}
	return s.startAuction(lot, seat, purposeSale, s.dec)
}

// endOfTurnStep runs the computer's property pass one action at a time and
// ends the turn when nothing is left to do.
func (s *Session) endOfTurnStep() error {
	seat := s.current
	p := s.players[seat]
	if s.eot == nil {
		s.eot = &endOfTurn{cards: p.JailCards(), tried: make(map[int]bool)}
	}
	e := s.eot

	switch e.stage {
	case stageJailCards:
		if p.JailCards() > 0 && e.cardTries < e.cards && s.strategy.SellJailCard(p.JailCards(), p.Cash()) {
			e.cardTries++
			return s.auctionJailCard(seat)
		}
		e.stage = stageImprove
		return nil

	// building and mortgaging never open a decision, so one step covers them all
	case stageImprove:
		for _, sq := range p.Properties() {
			if err := s.improveSquare(seat, sq); err != nil {
				return err
			}
		}
		e.stage = stageSellProperty
		return nil

	case stageSellProperty:
		if s.strategy.SellPlayerProperty(p.Cash()) {
			squares := p.Properties()
			sort.Sort(sort.Reverse(sort.IntSlice(squares)))
			for _, sq := range squares {
				if !e.tried[sq] && s.canSellProperty(seat, sq) {
					e.tried[sq] = true
					return s.startAuction(auction.Lot{Kind: auction.LotProperty, Square: sq, Seller: seat}, seat, purposeSale, s.dec)
				}
			}
		}
		e.stage = stageDone
		return nil
	}

	s.eot = nil
	s.endTurn()
	return nil
}

// improveSquare applies the computer's build, mortgage and sell choices to
// one title. A square built on in this pass is not sold back.
func (s *Session) improveSquare(seat, sq int) error {
	p := s.players[seat]
	built := false
	if s.strategy.BuyHouse() && s.canBuildHouse(seat, sq) {
		if err := s.buildHouse(seat, sq); err != nil {
			return err
		}
		built = true
	}
	if s.strategy.BuyHotel() && s.canBuildHotel(seat, sq) {
		if err := s.buildHotel(seat, sq); err != nil {
			return err
		}
		built = true
	}

	switch {
	case p.IsMortgaged(sq):
		if s.strategy.UnmortgageProperty() && s.canUnmortgage(seat, sq) {
			if err := s.unmortgage(seat, sq); err != nil {
				return err
			}
		}
	case s.strategy.MortgageProperty(p.Cash()) && s.canMortgage(seat, sq):
		if err := s.mortgage(seat, sq); err != nil {
			return err
		}
	}

	if built || !s.strategy.SellHouseHotel(p.Cash()) {
		return nil
	}
	if s.canSellHotel(seat, sq) {
		return s.sellHotel(seat, sq)
	}
	if s.canSellHouse(seat, sq) {
		return s.sellHouse(seat, sq)
	}
	return nil
}
