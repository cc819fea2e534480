package engine

import (
	"errors"
	"fmt"

	"github.com/daisywatson/monopoly-game/internal/game/auction"
	"github.com/daisywatson/monopoly-game/internal/game/board"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

// startAuction opens bidding among all non-bankrupt players, beginning with
// the seat after start. A selling player is out from the first round.
func (s *Session) startAuction(lot auction.Lot, start int, purpose auctionPurpose, resume decision) error {
	order := auction.Rotation(s.active(), start)
	var out []int
	if lot.Seller != auction.NoPlayer {
		out = append(out, lot.Seller)
	}
	a, err := auction.New(lot, order, out...)
	if err != nil {
		return fmt.Errorf("open auction for %s: %w", lot, err)
	}
	s.auc = &auctionRun{a: a, purpose: purpose, resume: resume}
	s.dec = decision{kind: PendingAuction, player: a.Bidder(), square: lot.Square}
	s.emit(models.EventAuctionStarted, lot.Seller, data{"lot": lot, "participants": order})
	// the seller may be the only participant
	if a.Closed() {
		return s.closeAuction()
	}
	return nil
}

// SubmitBid raises the current bid for the seat whose turn it is to bid
func (s *Session) SubmitBid(amount int) error {
	return s.run("submit_bid", func() error { return s.submitBid(amount) })
}

func (s *Session) submitBid(amount int) error {
	if s.dec.kind != PendingAuction {
		return invalidCommand("no auction is open")
	}
	bidder := s.players[s.auc.a.Bidder()]
	if err := s.auc.a.PlaceBid(amount, bidder.Cash()); err != nil {
		if errors.Is(err, auction.ErrClosed) {
			return invalidCommand("%v", err)
		}
		return invalidInput("%s bid: %v", bidder, err)
	}
	return s.auctionMoved()
}

// Pass drops the current bidder out of the auction
func (s *Session) Pass() error {
	return s.run("pass", s.pass)
}

func (s *Session) pass() error {
	if s.dec.kind != PendingAuction {
		return invalidCommand("no auction is open")
	}
	if err := s.auc.a.Pass(); err != nil {
		return invalidCommand("%v", err)
	}
	return s.auctionMoved()
}

func (s *Session) auctionMoved() error {
	st := s.auc.a.State()
	s.emit(models.EventAuctionStateChanged, st.Leader, data{"auction": st})
	if s.auc.a.Closed() {
		return s.closeAuction()
	}
	s.dec.player = st.Bidder
	return nil
}

func (s *Session) closeAuction() error {
	run := s.auc
	s.auc = nil
	lot := run.a.Lot()
	res := run.a.Result()
	s.emit(models.EventAuctionClosed, res.Winner, data{"lot": lot, "sold": res.Sold, "price": res.Price})

	var err error
	switch lot.Kind {
	case auction.LotJailCard:
		if res.Sold {
			err = s.transferJailCard(lot.Seller, res.Winner, res.Price)
		}
	default:
		err = s.settleProperty(run.purpose, lot, res)
	}
	if err != nil {
		return err
	}

	switch run.purpose {
	case purposeLanded:
		return s.afterLanding()
	case purposeBankruptcy:
		return s.continueBankruptcy()
	default:
		// a sale during liquidation or the property pass returns to the
		// decision it interrupted, open debt included
		s.dec = run.resume
		return nil
	}
}

func (s *Session) settleProperty(purpose auctionPurpose, lot auction.Lot, res auction.Result) error {
	sq := board.MustLookup(lot.Square)
	if !res.Sold {
		if purpose == purposeBankruptcy {
			delete(s.owners, sq.Index)
			return s.players[lot.Seller].RemoveProperty(sq.Index)
		}
		return nil
	}

	winner := s.players[res.Winner]
	if err := winner.PayCash(res.Price); err != nil {
		return err
	}
	switch purpose {
	case purposeLanded:
		if err := winner.AddProperty(sq.Index); err != nil {
			return err
		}
		winner.AddAssets(sq.Price)
		s.owners[sq.Index] = winner.ID
		s.emit(models.EventPropertyBought, winner.ID, data{"square": sq.Index, "price": res.Price, "auction": true})
		return nil
	case purposeBankruptcy:
		return s.transfer(lot.Seller, res.Winner, sq, false)
	default:
		s.players[lot.Seller].AddCash(res.Price)
		return s.transfer(lot.Seller, res.Winner, sq, true)
	}
}

// transfer moves a title between players. A mortgage travels with it. The
// seller's asset value is only adjusted when the seller is still playing.
func (s *Session) transfer(from, to int, sq board.Square, adjustSeller bool) error {
	seller, buyer := s.players[from], s.players[to]
	mortgaged := seller.IsMortgaged(sq.Index)
	if err := seller.RemoveProperty(sq.Index); err != nil {
		return err
	}
	if err := buyer.AddProperty(sq.Index); err != nil {
		return err
	}
	value := sq.Price
	if mortgaged {
		value = sq.MortgageValue()
		if err := buyer.Mortgage(sq.Index); err != nil {
			return err
		}
	}
	if adjustSeller {
		seller.SubtractAssets(value)
	}
	buyer.AddAssets(value)
	s.owners[sq.Index] = to
	s.emit(models.EventPropertyTransferred, to, data{"square": sq.Index, "from": from, "mortgaged": mortgaged})
	return nil
}

func (s *Session) transferJailCard(from, to, price int) error {
	seller, buyer := s.players[from], s.players[to]
	if err := seller.UseJailCard(); err != nil {
		return err
	}
	if err := buyer.PayCash(price); err != nil {
		return err
	}
	seller.AddCash(price)
	buyer.AddJailCard()
	s.emit(models.EventJailCardTransferred, to, data{"from": from, "price": price})
	return nil
}

// AuctionProperty puts one of the current player's unimproved titles up for
// auction to all other players
func (s *Session) AuctionProperty(square int) error {
	return s.run("auction_property", func() error { return s.auctionProperty(square) })
}

func (s *Session) auctionProperty(square int) error {
	seat, err := s.optionsSeat()
	if err != nil {
		return err
	}
	if !s.canSellProperty(seat, square) {
		return invalidCommand("square %d cannot be sold by %s", square, s.players[seat])
	}
	lot := auction.Lot{Kind: auction.LotProperty, Square: square, Seller: seat}
	return s.startAuction(lot, seat, purposeSale, s.dec)
}
