package engine

import (
	"github.com/daisywatson/monopoly-game/internal/game/auction"
	"github.com/daisywatson/monopoly-game/internal/game/board"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

// drawCard resolves the top card of the deck for the square type. The deck
// pointer advances once the card's effect, including any move, is applied
// and before the destination square is resolved.
func (s *Session) drawCard(t board.SquareType) error {
	p := s.players[s.current]
	deck := s.decks.For(t)
	c := deck.Draw()
	s.emit(models.EventCardDrawn, p.ID, data{"deck": c.Deck, "number": c.Number, "title": c.Title})

	switch c.Kind {
	case board.EffectCollect:
		deck.Advance()
		return s.collect(c.Amount, c.Title)
	case board.EffectCollectPerPlayer:
		deck.Advance()
		return s.collect(c.Amount*len(s.others(p.ID)), c.Title)
	case board.EffectPay:
		deck.Advance()
		return s.charge(p.ID, "card", DebtLine{To: auction.NoPlayer, Amount: c.Amount})
	case board.EffectPayPerImprovement:
		deck.Advance()
		amount := p.TotalHouses()*c.PerHouse + p.TotalHotels()*c.PerHotel
		return s.charge(p.ID, "card", DebtLine{To: auction.NoPlayer, Amount: amount})
	case board.EffectPayPerPlayer:
		deck.Advance()
		var lines []DebtLine
		for _, other := range s.others(p.ID) {
			lines = append(lines, DebtLine{To: other, Amount: c.Amount})
		}
		return s.charge(p.ID, "card", lines...)
	case board.EffectJailFree:
		deck.Advance()
		p.AddJailCard()
		s.emit(models.EventJailCardGained, p.ID, data{"deck": c.Deck})
		return s.afterLanding()
	case board.EffectGoToJail:
		deck.Advance()
		return s.sendToJail()
	}

	from := p.Position()
	p.MoveTo(c.Destination(from))
	if c.EarnsPassGo(from) {
		s.collectGo(false)
	}
	deck.Advance()
	return s.resolveSquare(landing{special: c.Special})
}

func (s *Session) collect(amount int, reason string) error {
	p := s.players[s.current]
	p.AddCash(amount)
	s.emit(models.EventCashCollected, p.ID, data{"amount": amount, "reason": reason})
	return s.afterLanding()
}
