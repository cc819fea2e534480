package engine

import (
	"github.com/daisywatson/monopoly-game/internal/game/auction"
	"github.com/daisywatson/monopoly-game/internal/game/board"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

// landing carries card context into the resolution of the square moved to
type landing struct {
	special board.SpecialRent
}

func (s *Session) startTurn(seat int) {
	s.current = seat
	s.turn++
	s.liq, s.eot = nil, nil
	p := s.players[seat]
	s.emit(models.EventTurnStarted, seat, data{"turn": s.turn})

	if !p.InJail() {
		s.dec = decision{kind: PendingRoll, player: seat}
		return
	}
	// out of jail turns: the fee is charged before anything else happens
	if p.JailTurns() >= board.MaxJailTurns {
		if err := s.forcedRelease(); err != nil {
			s.logger.Errorw("Forced jail release failed", "seat", seat, "error", err)
		}
		return
	}
	s.dec = decision{kind: PendingJail, player: seat}
}

// nextSeat finds the next non-bankrupt seat after from
func (s *Session) nextSeat(from int) int {
	n := len(s.players)
	for step := 1; step <= n; step++ {
		seat := (from + step) % n
		if !s.players[seat].Bankrupt() {
			return seat
		}
	}
	return from
}

func (s *Session) roll() (int, int) {
	a, b := s.dice.Roll()
	s.lastRoll = [2]int{a, b}
	s.emit(models.EventDiceRolled, s.current, data{"dice": []int{a, b}})
	return a, b
}

// RollAndMove rolls two dice and moves the current player
func (s *Session) RollAndMove() error {
	return s.run("roll_and_move", s.rollAndMove)
}

func (s *Session) rollAndMove() error {
	if s.dec.kind != PendingRoll {
		return invalidCommand("cannot roll while %s is pending", s.dec.kind)
	}
	a, b := s.roll()
	return s.move(a + b)
}

func (s *Session) move(steps int) error {
	p := s.players[s.current]
	to, wrapped := board.Advance(p.Position(), steps)
	p.MoveTo(to)
	if wrapped && to != board.GoSquare {
		s.collectGo(false)
	}
	return s.resolveSquare(landing{})
}

func (s *Session) collectGo(landed bool) {
	p := s.players[s.current]
	p.AddCash(board.PassGoBonus)
	s.emit(models.EventPassedGo, p.ID, data{"amount": board.PassGoBonus, "landed": landed})
}

// resolveSquare applies the effect of the square the current player stands on
func (s *Session) resolveSquare(ctx landing) error {
	p := s.players[s.current]
	sq := board.MustLookup(p.Position())
	s.emit(models.EventSquareLanded, p.ID, data{"square": sq.Index, "name": sq.Name})

	switch sq.Type {
	case board.SquareGo:
		s.collectGo(true)
		return s.afterLanding()
	case board.SquareTax:
		if sq.Index == board.IncomeTaxSquare {
			s.dec = decision{kind: PendingTax, player: p.ID, square: sq.Index}
			return nil
		}
		return s.charge(p.ID, "tax", DebtLine{To: auction.NoPlayer, Amount: board.LuxuryTax})
	case board.SquareChance, board.SquareChest:
		return s.drawCard(sq.Type)
	case board.SquareGoToJail:
		return s.sendToJail()
	case board.SquareProperty, board.SquareRailroad, board.SquareUtility:
		return s.landOnOwnable(sq, ctx)
	}
	return s.afterLanding()
}

// afterLanding opens the rest of the turn for property actions
func (s *Session) afterLanding() error {
	s.dec = decision{kind: PendingTurnActions, player: s.current}
	s.eot = nil
	return nil
}

// PayTax settles the income tax square with the flat amount or 10% of total assets
func (s *Session) PayTax(choice TaxChoice) error {
	return s.run("pay_tax", func() error { return s.payTax(choice) })
}

// TaxChoice picks how income tax is computed
type TaxChoice string

const (
	TaxFlat    TaxChoice = "flat"
	TaxPercent TaxChoice = "percent"
)

// IncomeTax is what the current player owes under choice
func (s *Session) IncomeTax(choice TaxChoice) int {
	if choice == TaxPercent {
		return s.players[s.current].TotalAssets() / 10
	}
	return board.IncomeTaxFlat
}

func (s *Session) payTax(choice TaxChoice) error {
	if s.dec.kind != PendingTax {
		return invalidCommand("no tax is due")
	}
	if choice != TaxFlat && choice != TaxPercent {
		return invalidInput("unknown tax choice %q", choice)
	}
	return s.charge(s.current, "tax", DebtLine{To: auction.NoPlayer, Amount: s.IncomeTax(choice)})
}

func (s *Session) landOnOwnable(sq board.Square, ctx landing) error {
	p := s.players[s.current]
	ownerID, owned := s.owners[sq.Index]
	if !owned {
		s.dec = decision{kind: PendingPurchase, player: p.ID, square: sq.Index}
		return nil
	}
	owner := s.players[ownerID]
	if ownerID == p.ID || owner.IsMortgaged(sq.Index) {
		return s.afterLanding()
	}

	diceSum := 0
	if sq.Type == board.SquareUtility {
		a, b := s.roll()
		diceSum = a + b
	}
	rent := board.Rent(sq.Index, owner.Level(sq.Index), owner.OwnedInGroup(sq.Group), diceSum)
	rent = board.ApplySpecialRent(ctx.special, rent, diceSum)
	s.logger.Debugw("Rent due", "square", sq.Index, "owner", owner.Name, "payer", p.Name, "rent", rent, "special", ctx.special)
	return s.charge(p.ID, "rent", DebtLine{To: ownerID, Amount: rent})
}

// BuyProperty buys the square the current player landed on at list price
func (s *Session) BuyProperty() error {
	return s.run("buy_property", s.buyProperty)
}

func (s *Session) buyProperty() error {
	if s.dec.kind != PendingPurchase {
		return invalidCommand("nothing to buy")
	}
	p := s.players[s.current]
	sq := board.MustLookup(s.dec.square)
	if !p.CanAfford(sq.Price) {
		return invalidCommand("%s cannot afford %s", p, sq)
	}
	if err := p.PayCash(sq.Price); err != nil {
		return err
	}
	if err := p.AddProperty(sq.Index); err != nil {
		return err
	}
	p.AddAssets(sq.Price)
	s.owners[sq.Index] = p.ID
	s.emit(models.EventPropertyBought, p.ID, data{"square": sq.Index, "price": sq.Price})
	return s.afterLanding()
}

// DeclineAndAuction refuses the purchase and auctions the square to everyone
func (s *Session) DeclineAndAuction() error {
	return s.run("decline_and_auction", s.declineAndAuction)
}

func (s *Session) declineAndAuction() error {
	if s.dec.kind != PendingPurchase {
		return invalidCommand("nothing to decline")
	}
	lot := auction.Lot{Kind: auction.LotProperty, Square: s.dec.square, Seller: auction.NoPlayer}
	return s.startAuction(lot, s.current, purposeLanded, s.dec)
}

// EndTurn hands play to the next non-bankrupt player
func (s *Session) EndTurn() error {
	return s.run("end_turn", s.endTurnCommand)
}

func (s *Session) endTurnCommand() error {
	if s.dec.kind != PendingTurnActions {
		return invalidCommand("cannot end turn while %s is pending", s.dec.kind)
	}
	s.endTurn()
	return nil
}

func (s *Session) endTurn() {
	// a timed game only ends between turns
	if s.deadlinePassed() {
		s.finish(s.richest())
		return
	}
	s.startTurn(s.nextSeat(s.current))
}
