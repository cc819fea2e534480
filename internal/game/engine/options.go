package engine

import (
	"github.com/daisywatson/monopoly-game/internal/game/board"
)

// Action is one command the actor may issue now. Amount is the cost, the
// minimum bid or the tax due, depending on the command.
type Action struct {
	Command CommandType `json:"command"`
	Square  int         `json:"square,omitempty"`
	Amount  int         `json:"amount,omitempty"`
	Choice  TaxChoice   `json:"choice,omitempty"`
}

// AvailableOptions lists the commands the actor can legally issue in the
// current state. It is empty once the game is over.
func (s *Session) AvailableOptions() []Action {
	var out []Action
	p := s.players[s.current]
	switch s.dec.kind {
	case PendingGameOver:
		return nil

	case PendingRoll:
		out = append(out, Action{Command: CmdRollAndMove})

	case PendingPurchase:
		sq := board.MustLookup(s.dec.square)
		if p.CanAfford(sq.Price) {
			out = append(out, Action{Command: CmdBuyProperty, Square: sq.Index, Amount: sq.Price})
		}
		out = append(out, Action{Command: CmdDeclineAndAuction, Square: sq.Index})

	case PendingTax:
		out = append(out,
			Action{Command: CmdPayTax, Choice: TaxFlat, Amount: s.IncomeTax(TaxFlat)},
			Action{Command: CmdPayTax, Choice: TaxPercent, Amount: s.IncomeTax(TaxPercent)},
		)
		return out

	case PendingJail:
		if p.CanAfford(board.JailFee) {
			out = append(out, Action{Command: CmdPayJailFee, Amount: board.JailFee})
		}
		out = append(out, Action{Command: CmdRollInJail})
		if p.JailCards() > 0 {
			out = append(out, Action{Command: CmdUseJailCard})
		}
		return out

	case PendingAuction:
		a := s.auc.a
		if s.players[a.Bidder()].CanAfford(a.Bid() + 1) {
			out = append(out, Action{Command: CmdSubmitBid, Square: a.Lot().Square, Amount: a.Bid() + 1})
		}
		return append(out, Action{Command: CmdPass})

	case PendingOffer:
		return []Action{{Command: CmdRespondToOffer, Square: s.offer.Square, Amount: s.offer.Price}}

	case PendingPayment:
		if p.CanAfford(s.debt.Total()) {
			out = append(out, Action{Command: CmdPayDebt, Amount: s.debt.Total()})
		}
		out = append(out, Action{Command: CmdDeclareBankruptcy})

	case PendingTurnActions:
		out = append(out, Action{Command: CmdEndTurn})
	}
	return append(out, s.propertyOptions(s.current)...)
}

func (s *Session) propertyOptions(seat int) []Action {
	var out []Action
	p := s.players[seat]
	for _, idx := range p.Properties() {
		sq := board.MustLookup(idx)
		if s.canBuildHouse(seat, idx) {
			out = append(out, Action{Command: CmdBuildHouse, Square: idx, Amount: sq.HouseCost})
		}
		if s.canBuildHotel(seat, idx) {
			out = append(out, Action{Command: CmdBuildHotel, Square: idx, Amount: sq.HouseCost})
		}
		if s.canSellHouse(seat, idx) {
			out = append(out, Action{Command: CmdSellHouse, Square: idx, Amount: sq.HouseSaleValue()})
		}
		if s.canSellHotel(seat, idx) {
			out = append(out, Action{Command: CmdSellHotel, Square: idx, Amount: sq.HouseSaleValue()})
		}
		if s.canMortgage(seat, idx) {
			out = append(out, Action{Command: CmdMortgage, Square: idx, Amount: sq.MortgageValue()})
		}
		if s.canUnmortgage(seat, idx) {
			out = append(out, Action{Command: CmdUnmortgage, Square: idx, Amount: sq.UnmortgageCost()})
		}
		if s.canSellProperty(seat, idx) {
			out = append(out,
				Action{Command: CmdAuctionProperty, Square: idx},
				Action{Command: CmdSellProperty, Square: idx},
			)
		}
	}
	if p.JailCards() > 0 {
		out = append(out, Action{Command: CmdSellJailCard, Amount: s.strategy.JailCardSellPrice(p.JailCards(), p.Cash())})
	}
	return out
}
