package engine

import (
	"github.com/daisywatson/monopoly-game/internal/game/auction"
	"github.com/daisywatson/monopoly-game/internal/game/board"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

// charge makes payer settle lines now, or opens a payment decision when cash
// falls short. Either way the turn continues with property actions once paid.
func (s *Session) charge(payer int, reason string, lines ...DebtLine) error {
	d := Debt{Debtor: payer, Reason: reason, Lines: lines}
	total := d.Total()
	if total == 0 {
		return s.afterLanding()
	}
	if s.players[payer].CanAfford(total) {
		if err := s.settle(d); err != nil {
			return err
		}
		return s.afterLanding()
	}

	// the debt stays open across property actions until paid or abandoned
	s.debt = &d
	s.liq = nil
	s.dec = decision{kind: PendingPayment, player: payer}
	s.emit(models.EventPaymentDue, payer, data{"reason": reason, "amount": total, "cash": s.players[payer].Cash()})
	s.logger.Debugw("Insufficient funds", "player", s.players[payer].Name, "owed", total, "cash", s.players[payer].Cash())
	return nil
}

func (s *Session) settle(d Debt) error {
	payer := s.players[d.Debtor]
	if err := payer.PayCash(d.Total()); err != nil {
		return err
	}
	event := models.EventPaymentMade
	switch d.Reason {
	case "rent":
		event = models.EventRentPaid
	case "tax":
		event = models.EventTaxPaid
	}
	for _, l := range d.Lines {
		if l.To != auction.NoPlayer {
			s.players[l.To].AddCash(l.Amount)
		}
		s.emit(event, payer.ID, data{"to": l.To, "amount": l.Amount, "reason": d.Reason})
	}
	return nil
}

// PayDebt settles the outstanding obligation once cash covers it
func (s *Session) PayDebt() error {
	return s.run("pay_debt", s.payDebt)
}

func (s *Session) payDebt() error {
	if s.dec.kind != PendingPayment || s.debt == nil {
		return invalidCommand("no payment is due")
	}
	if !s.players[s.debt.Debtor].CanAfford(s.debt.Total()) {
		return invalidCommand("%s still needs %d", s.players[s.debt.Debtor], s.debt.Total())
	}
	d := *s.debt
	s.debt, s.liq = nil, nil
	if err := s.settle(d); err != nil {
		return err
	}
	// paid debts always come from landing, so the turn picks up there
	return s.afterLanding()
}

// DeclareBankruptcy gives up when a payment cannot be raised
func (s *Session) DeclareBankruptcy() error {
	return s.run("declare_bankruptcy", s.declareBankruptcy)
}

func (s *Session) declareBankruptcy() error {
	if s.dec.kind != PendingPayment || s.debt == nil {
		return invalidCommand("bankruptcy is only possible with a payment due")
	}
	return s.goBankrupt(s.debt.Debtor)
}

type bankruptcySale struct {
	seller  int
	squares []int
}

// goBankrupt returns buildings to the bank, zeroes the player and auctions
// the remaining titles one at a time.
func (s *Session) goBankrupt(seat int) error {
	p := s.players[seat]
	for _, sq := range p.Properties() {
		switch level := p.Level(sq); {
		case level == board.HotelLevel:
			s.bank.ReturnHotel()
		case level > 0:
			s.bank.ReturnHouses(level)
		}
		if err := p.SetLevel(sq, 0); err != nil {
			return err
		}
	}
	cards := p.ForfeitJailCards()
	p.DeclareBankrupt()
	s.debt, s.liq = nil, nil
	s.emit(models.EventPlayerBankrupt, seat, data{"jailCards": cards})
	s.logger.Infow("Player bankrupt", "player", p.Name, "turn", s.turn)

	// the last player standing wins; unsold titles just go back to the bank
	if remaining := s.active(); len(remaining) <= 1 {
		for _, sq := range p.Properties() {
			if err := p.RemoveProperty(sq); err != nil {
				return err
			}
			delete(s.owners, sq)
		}
		s.finish(remaining)
		return nil
	}

	s.bankruptcy = &bankruptcySale{seller: seat, squares: p.Properties()}
	return s.continueBankruptcy()
}

func (s *Session) continueBankruptcy() error {
	sale := s.bankruptcy
	if sale == nil || len(sale.squares) == 0 {
		// every title has been offered; the bankrupt player's turn is over
		s.bankruptcy = nil
		s.endTurn()
		return nil
	}
	sq := sale.squares[0]
	sale.squares = sale.squares[1:]
	lot := auction.Lot{Kind: auction.LotProperty, Square: sq, Seller: sale.seller}
	// closeAuction calls back here for the next title
	return s.startAuction(lot, sale.seller, purposeBankruptcy, s.dec)
}
