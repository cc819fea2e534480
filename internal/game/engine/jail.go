package engine

import (
	"github.com/daisywatson/monopoly-game/internal/game/auction"
	"github.com/daisywatson/monopoly-game/internal/game/board"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

// sendToJail locks the current player up and opens the jail decision at once
func (s *Session) sendToJail() error {
	p := s.players[s.current]
	p.EnterJail()
	s.emit(models.EventJailEntered, p.ID, nil)
	s.dec = decision{kind: PendingJail, player: p.ID}
	return nil
}

func (s *Session) release(reason string) {
	p := s.players[s.current]
	p.LeaveJail()
	s.emit(models.EventJailReleased, p.ID, data{"reason": reason})
}

// forcedRelease ends a fourth jail turn: the fee is due whether or not it
// can be paid from cash.
func (s *Session) forcedRelease() error {
	s.release("forced")
	return s.charge(s.current, "jail_fee", DebtLine{To: auction.NoPlayer, Amount: board.JailFee})
}

// PayJailFee pays $50 to leave jail
func (s *Session) PayJailFee() error {
	return s.run("pay_jail_fee", s.payJailFee)
}

func (s *Session) payJailFee() error {
	if s.dec.kind != PendingJail {
		return invalidCommand("not in a jail decision")
	}
	p := s.players[s.current]
	if !p.CanAfford(board.JailFee) {
		return invalidCommand("%s cannot afford the jail fee", p)
	}
	if err := p.PayCash(board.JailFee); err != nil {
		return err
	}
	s.emit(models.EventPaymentMade, p.ID, data{"to": auction.NoPlayer, "amount": board.JailFee, "reason": "jail_fee"})
	s.release("paid")
	return s.afterLanding()
}

// RollInJail tries for doubles. Each attempt counts toward the three allowed;
// doubles release the player without moving.
func (s *Session) RollInJail() error {
	return s.run("roll_in_jail", s.rollInJail)
}

func (s *Session) rollInJail() error {
	if s.dec.kind != PendingJail {
		return invalidCommand("not in a jail decision")
	}
	p := s.players[s.current]
	p.AddJailTurn()
	a, b := s.roll()
	if a == b {
		s.release("doubles")
	}
	return s.afterLanding()
}

// UseJailCard spends a get out of jail free card
func (s *Session) UseJailCard() error {
	return s.run("use_jail_card", s.useJailCard)
}

func (s *Session) useJailCard() error {
	if s.dec.kind != PendingJail {
		return invalidCommand("not in a jail decision")
	}
	p := s.players[s.current]
	if p.JailCards() == 0 {
		return invalidCommand("%s holds no jail card", p)
	}
	if err := p.UseJailCard(); err != nil {
		return err
	}
	s.release("card")
	return s.afterLanding()
}
