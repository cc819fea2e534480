package engine

import (
	"github.com/daisywatson/monopoly-game/internal/game/board"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

// SellPropertyToPlayer offers one of the current player's titles to target
// at price. A computer target answers at once; a human target is asked.
func (s *Session) SellPropertyToPlayer(square, target, price int) error {
	return s.run("sell_property_to_player", func() error {
		return s.makeOffer(Offer{Kind: OfferProperty, Target: target, Square: square, Price: price})
	})
}

// SellJailCard offers one of the current player's jail-free cards to target at price
func (s *Session) SellJailCard(target, price int) error {
	return s.run("sell_jail_card", func() error {
		return s.makeOffer(Offer{Kind: OfferJailCard, Target: target, Price: price})
	})
}

func (s *Session) makeOffer(o Offer) error {
	seat, err := s.optionsSeat()
	if err != nil {
		return err
	}
	if o.Price < 0 || o.Price > board.MaxSalePrice {
		return invalidInput("price %d outside 0-%d", o.Price, board.MaxSalePrice)
	}
	target, ok := s.Player(o.Target)
	if !ok || o.Target == seat || target.Bankrupt() {
		return invalidInput("seat %d cannot receive an offer", o.Target)
	}
	switch o.Kind {
	case OfferProperty:
		if !s.canSellProperty(seat, o.Square) {
			return invalidCommand("square %d cannot be sold by %s", o.Square, s.players[seat])
		}
	case OfferJailCard:
		if s.players[seat].JailCards() == 0 {
			return invalidCommand("%s holds no jail card", s.players[seat])
		}
	}

	o.Seller = seat
	o.resume = s.dec
	s.emit(models.EventOfferMade, seat, data{"kind": o.Kind, "target": o.Target, "square": o.Square, "price": o.Price})

	// computers answer on the spot without opening a decision
	if !target.Human {
		return s.answerOffer(o, s.computerAccepts(o))
	}
	s.offer = &o
	s.dec = decision{kind: PendingOffer, player: o.Target, square: o.Square}
	return nil
}

func (s *Session) computerAccepts(o Offer) bool {
	buyer := s.players[o.Target]
	if o.Kind == OfferJailCard {
		return s.strategy.BuyJailCard(o.Price, buyer.Cash())
	}
	sq := board.MustLookup(o.Square)
	return s.strategy.BuyPlayerProperty(o.Price, sq.Price, buyer.Cash(), sq.Group)
}

// RespondToOffer answers the open direct offer
func (s *Session) RespondToOffer(accept bool) error {
	return s.run("respond_to_offer", func() error {
		if s.dec.kind != PendingOffer || s.offer == nil {
			return invalidCommand("no offer is open")
		}
		if accept && !s.players[s.offer.Target].CanAfford(s.offer.Price) {
			return invalidCommand("%s cannot afford %d", s.players[s.offer.Target], s.offer.Price)
		}
		o := *s.offer
		s.offer = nil
		return s.answerOffer(o, accept)
	})
}

func (s *Session) answerOffer(o Offer, accept bool) error {
	s.emit(models.EventOfferAnswered, o.Target, data{"kind": o.Kind, "seller": o.Seller, "accepted": accept})
	// either way the seller carries on where the offer was made
	s.dec = o.resume
	if !accept {
		return nil
	}
	if o.Kind == OfferJailCard {
		return s.transferJailCard(o.Seller, o.Target, o.Price)
	}
	buyer := s.players[o.Target]
	if err := buyer.PayCash(o.Price); err != nil {
		return err
	}
	s.players[o.Seller].AddCash(o.Price)
	return s.transfer(o.Seller, o.Target, board.MustLookup(o.Square), true)
}
