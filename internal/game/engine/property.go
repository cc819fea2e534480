package engine

import (
	"github.com/daisywatson/monopoly-game/internal/game/board"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

// optionsSeat is the seat allowed to manage its properties right now.
// Property actions are open before rolling, while deciding on a purchase,
// after landing and while raising a payment.
func (s *Session) optionsSeat() (int, error) {
	switch s.dec.kind {
	case PendingRoll, PendingPurchase, PendingTurnActions, PendingPayment:
		return s.current, nil
	}
	return 0, invalidCommand("property actions are closed while %s is pending", s.dec.kind)
}

// groupLevels returns the other squares' levels in the group of sq
func (s *Session) groupLevels(seat int, sq board.Square) (lowest, highest int) {
	p := s.players[seat]
	lowest, highest = board.HotelLevel, 0
	for _, idx := range board.GroupMembers(sq.Group) {
		if idx == sq.Index {
			continue
		}
		l := p.Level(idx)
		if l < lowest {
			lowest = l
		}
		if l > highest {
			highest = l
		}
	}
	return lowest, highest
}

func (s *Session) groupMortgaged(seat int, g board.ColorGroup) bool {
	for _, idx := range board.GroupMembers(g) {
		if s.players[seat].IsMortgaged(idx) {
			return true
		}
	}
	return false
}

func (s *Session) buildable(seat, square int) (board.Square, bool) {
	sq, ok := board.Lookup(square)
	if !ok || !sq.Group.Buildable() {
		return sq, false
	}
	p := s.players[seat]
	return sq, p.Owns(square) && p.OwnsGroup(sq.Group) && !s.groupMortgaged(seat, sq.Group)
}

func (s *Session) canBuildHouse(seat, square int) bool {
	sq, ok := s.buildable(seat, square)
	if !ok {
		return false
	}
	p := s.players[seat]
	level := p.Level(square)
	lowest, _ := s.groupLevels(seat, sq)
	return level < board.HotelLevel-1 &&
		s.bank.Houses() > 0 &&
		level+1 <= lowest+1 &&
		p.CanAfford(sq.HouseCost)
}

func (s *Session) canBuildHotel(seat, square int) bool {
	sq, ok := s.buildable(seat, square)
	if !ok {
		return false
	}
	p := s.players[seat]
	lowest, _ := s.groupLevels(seat, sq)
	return p.Level(square) == board.HotelLevel-1 &&
		lowest >= board.HotelLevel-1 &&
		s.bank.Hotels() > 0 &&
		p.CanAfford(sq.HouseCost)
}

func (s *Session) canSellHouse(seat, square int) bool {
	p := s.players[seat]
	sq, ok := board.Lookup(square)
	if !ok || !p.Owns(square) {
		return false
	}
	level := p.Level(square)
	_, highest := s.groupLevels(seat, sq)
	return level >= 1 && level < board.HotelLevel && level-1 >= highest-1
}

func (s *Session) canSellHotel(seat, square int) bool {
	p := s.players[seat]
	return p.Owns(square) && p.Level(square) == board.HotelLevel && s.bank.Houses() >= board.HotelLevel-1
}

func (s *Session) canMortgage(seat, square int) bool {
	p := s.players[seat]
	sq, ok := board.Lookup(square)
	return ok && p.Owns(square) && !p.IsMortgaged(square) && !p.GroupImproved(sq.Group)
}

func (s *Session) canUnmortgage(seat, square int) bool {
	p := s.players[seat]
	sq, ok := board.Lookup(square)
	return ok && p.IsMortgaged(square) && p.CanAfford(sq.UnmortgageCost())
}

// canSellProperty requires the whole group to be free of buildings
func (s *Session) canSellProperty(seat, square int) bool {
	p := s.players[seat]
	sq, ok := board.Lookup(square)
	return ok && p.Owns(square) && !p.GroupImproved(sq.Group)
}

// Mortgage borrows half the list price against an unimproved title
func (s *Session) Mortgage(square int) error {
	return s.run("mortgage", func() error { return s.optionAction(square, s.canMortgage, s.mortgage) })
}

// Unmortgage repays a mortgage with 10% interest
func (s *Session) Unmortgage(square int) error {
	return s.run("unmortgage", func() error { return s.optionAction(square, s.canUnmortgage, s.unmortgage) })
}

// BuildHouse adds one house, keeping the group evenly built
func (s *Session) BuildHouse(square int) error {
	return s.run("build_house", func() error { return s.optionAction(square, s.canBuildHouse, s.buildHouse) })
}

// BuildHotel replaces four houses with a hotel
func (s *Session) BuildHotel(square int) error {
	return s.run("build_hotel", func() error { return s.optionAction(square, s.canBuildHotel, s.buildHotel) })
}

// SellHouse returns one house to the bank for half its cost
func (s *Session) SellHouse(square int) error {
	return s.run("sell_house", func() error { return s.optionAction(square, s.canSellHouse, s.sellHouse) })
}

// SellHotel swaps a hotel back for four houses and half the hotel's cost
func (s *Session) SellHotel(square int) error {
	return s.run("sell_hotel", func() error { return s.optionAction(square, s.canSellHotel, s.sellHotel) })
}

func (s *Session) optionAction(square int, allowed func(seat, square int) bool, apply func(seat, square int) error) error {
	seat, err := s.optionsSeat()
	if err != nil {
		return err
	}
	if !allowed(seat, square) {
		return invalidCommand("action not available on square %d for %s", square, s.players[seat])
	}
	return apply(seat, square)
}

func (s *Session) mortgage(seat, square int) error {
	p := s.players[seat]
	sq := board.MustLookup(square)
	if err := p.Mortgage(square); err != nil {
		return err
	}
	p.AddCash(sq.MortgageValue())
	p.SubtractAssets(sq.Price)
	p.AddAssets(sq.MortgageValue())
	s.emit(models.EventMortgageChanged, seat, data{"square": square, "mortgaged": true, "amount": sq.MortgageValue()})
	return nil
}

func (s *Session) unmortgage(seat, square int) error {
	p := s.players[seat]
	sq := board.MustLookup(square)
	if err := p.PayCash(sq.UnmortgageCost()); err != nil {
		return err
	}
	if err := p.Unmortgage(square); err != nil {
		return err
	}
	p.SubtractAssets(sq.MortgageValue())
	p.AddAssets(sq.Price)
	s.emit(models.EventMortgageChanged, seat, data{"square": square, "mortgaged": false, "amount": sq.UnmortgageCost()})
	return nil
}

func (s *Session) buildHouse(seat, square int) error {
	p := s.players[seat]
	sq := board.MustLookup(square)
	if err := s.bank.TakeHouses(1); err != nil {
		return err
	}
	if err := p.PayCash(sq.HouseCost); err != nil {
		return err
	}
	p.AddAssets(sq.HouseCost)
	return s.setLevel(seat, square, p.Level(square)+1)
}

func (s *Session) buildHotel(seat, square int) error {
	p := s.players[seat]
	sq := board.MustLookup(square)
	if err := s.bank.TakeHotel(); err != nil {
		return err
	}
	if err := p.PayCash(sq.HouseCost); err != nil {
		return err
	}
	s.bank.ReturnHouses(board.HotelLevel - 1)
	p.AddAssets(sq.HouseCost)
	return s.setLevel(seat, square, board.HotelLevel)
}

func (s *Session) sellHouse(seat, square int) error {
	p := s.players[seat]
	sq := board.MustLookup(square)
	s.bank.ReturnHouses(1)
	p.AddCash(sq.HouseSaleValue())
	p.SubtractAssets(sq.HouseCost)
	return s.setLevel(seat, square, p.Level(square)-1)
}

func (s *Session) sellHotel(seat, square int) error {
	p := s.players[seat]
	sq := board.MustLookup(square)
	if err := s.bank.TakeHouses(board.HotelLevel - 1); err != nil {
		return err
	}
	s.bank.ReturnHotel()
	p.AddCash(sq.HouseSaleValue())
	p.SubtractAssets(sq.HouseCost)
	return s.setLevel(seat, square, board.HotelLevel-1)
}

func (s *Session) setLevel(seat, square, level int) error {
	if err := s.players[seat].SetLevel(square, level); err != nil {
		return err
	}
	s.emit(models.EventImprovementChanged, seat, data{
		"square":     square,
		"level":      level,
		"bankHouses": s.bank.Houses(),
		"bankHotels": s.bank.Hotels(),
	})
	return nil
}
