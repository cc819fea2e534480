package board

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquareTable(t *testing.T) {
	all := Squares()
	require.Len(t, all, NumSquares)

	for i, sq := range all {
		assert.Equal(t, i, sq.Index, "square %d has wrong index", i)
	}

	jail, ok := Lookup(InJailSquare)
	require.True(t, ok)
	assert.Equal(t, SquareInJail, jail.Type)

	visit := MustLookup(JailVisitSquare)
	assert.Equal(t, SquareJailVisit, visit.Type)

	_, ok = Lookup(41)
	assert.False(t, ok)
	_, ok = Lookup(-1)
	assert.False(t, ok)

	assert.Len(t, OwnableSquares(), 28)
}

func TestGroupMembersMatchTable(t *testing.T) {
	for g, members := range groupMembers {
		for _, idx := range members {
			assert.Equal(t, g, MustLookup(idx).Group, "square %d", idx)
		}
	}
	for _, sq := range Squares() {
		if sq.Ownable() {
			assert.Contains(t, GroupMembers(sq.Group), sq.Index)
		}
	}
}

func TestHouseCostTiers(t *testing.T) {
	tests := []struct {
		group ColorGroup
		cost  int
	}{
		{GroupBrown, 50},
		{GroupSky, 50},
		{GroupPink, 100},
		{GroupOrange, 100},
		{GroupRed, 150},
		{GroupYellow, 150},
		{GroupGreen, 200},
		{GroupBlue, 200},
		{GroupRailroad, 0},
		{GroupUtility, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.group), func(t *testing.T) {
			assert.Equal(t, tt.cost, HouseCost(tt.group))
		})
	}
}

func TestMortgageMath(t *testing.T) {
	baltic := MustLookup(3)
	assert.Equal(t, 30, baltic.MortgageValue())
	assert.Equal(t, 33, baltic.UnmortgageCost())

	reading := MustLookup(5)
	assert.Equal(t, 100, reading.MortgageValue())
	assert.Equal(t, 110, reading.UnmortgageCost())

	// interest on 75 rounds up to 8
	stCharles := MustLookup(11)
	assert.Equal(t, 70, stCharles.MortgageValue())
	assert.Equal(t, 77, stCharles.UnmortgageCost())

	electric := MustLookup(12)
	assert.Equal(t, 75, electric.MortgageValue())
	assert.Equal(t, 83, electric.UnmortgageCost())

	boardwalk := MustLookup(39)
	assert.Equal(t, 100, boardwalk.HouseSaleValue())
}

func TestRent(t *testing.T) {
	tests := []struct {
		name         string
		square       int
		level        int
		ownedInGroup int
		dice         int
		want         int
	}{
		{"single brown", 1, 0, 1, 0, 2},
		{"full brown doubles base", 1, 0, 2, 0, 4},
		{"full brown with house does not double", 1, 1, 2, 0, 10},
		{"baltic hotel", 3, 5, 2, 0, 450},
		{"boardwalk hotel", 39, 5, 2, 0, 2000},
		{"one railroad", 5, 0, 1, 0, 25},
		{"two railroads", 15, 0, 2, 0, 50},
		{"three railroads", 25, 0, 3, 0, 100},
		{"four railroads", 35, 0, 4, 0, 200},
		{"one utility", 12, 0, 1, 7, 28},
		{"both utilities", 28, 0, 2, 7, 70},
		{"unowned", 39, 0, 0, 0, 0},
		{"not ownable", 4, 0, 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rent(tt.square, tt.level, tt.ownedInGroup, tt.dice))
		})
	}
}

func TestApplySpecialRent(t *testing.T) {
	assert.Equal(t, 100, ApplySpecialRent(SpecialRentDouble, 50, 9))
	assert.Equal(t, 90, ApplySpecialRent(SpecialRentTenTimesDice, 36, 9))
	assert.Equal(t, 50, ApplySpecialRent(SpecialRentNone, 50, 9))
}

func TestAdvance(t *testing.T) {
	sq, wrapped := Advance(35, 5)
	assert.Equal(t, 0, sq)
	assert.True(t, wrapped)

	sq, wrapped = Advance(30, 9)
	assert.Equal(t, 39, sq)
	assert.False(t, wrapped)

	sq, wrapped = Advance(38, 6)
	assert.Equal(t, 4, sq)
	assert.True(t, wrapped)
}

func TestNearestLookups(t *testing.T) {
	assert.Equal(t, 15, NearestRailroad(7))
	assert.Equal(t, 25, NearestRailroad(22))
	assert.Equal(t, 35, NearestRailroad(36))
	assert.Equal(t, 12, NearestUtility(7))
	assert.Equal(t, 28, NearestUtility(22))
	assert.Equal(t, 12, NearestUtility(36))
}

func TestCardDestinations(t *testing.T) {
	back3, _ := CardByNumber(DeckChance, 5)
	assert.Equal(t, 4, back3.Destination(7))
	assert.Equal(t, 19, back3.Destination(22))
	assert.Equal(t, 33, back3.Destination(36))

	jail, _ := CardByNumber(DeckChest, 5)
	assert.True(t, jail.Moves())
	assert.Equal(t, InJailSquare, jail.Destination(2))

	stCharles, _ := CardByNumber(DeckChance, 3)
	assert.True(t, stCharles.EarnsPassGo(22))
	assert.False(t, stCharles.EarnsPassGo(7))

	railroad, _ := CardByNumber(DeckChance, 7)
	assert.False(t, railroad.EarnsPassGo(36))
	assert.Equal(t, SpecialRentDouble, railroad.Special)

	fee, _ := CardByNumber(DeckChest, 2)
	assert.False(t, fee.Moves())
}

func TestDeckCyclesThroughPermutation(t *testing.T) {
	deck := ShuffledDeck(DeckChest, rand.New(rand.NewSource(7)))

	seen := make(map[int]bool)
	for i := 0; i < DeckSize; i++ {
		assert.Equal(t, i, deck.Position())
		c := deck.Draw()
		assert.Equal(t, c, deck.Draw(), "draw must not advance")
		seen[c.Number] = true
		deck.Advance()
	}
	assert.Len(t, seen, DeckSize)
	assert.Equal(t, 0, deck.Position())
}

func TestBankPool(t *testing.T) {
	bank := NewBank()
	assert.Equal(t, TotalHouses, bank.Houses())
	assert.Equal(t, TotalHotels, bank.Hotels())

	require.NoError(t, bank.TakeHouses(30))
	assert.ErrorIs(t, bank.TakeHouses(3), ErrPoolExhausted)
	bank.ReturnHouses(4)
	assert.Equal(t, 6, bank.Houses())

	for i := 0; i < TotalHotels; i++ {
		require.NoError(t, bank.TakeHotel())
	}
	assert.ErrorIs(t, bank.TakeHotel(), ErrPoolExhausted)
	bank.ReturnHotel()
	assert.Equal(t, 1, bank.Hotels())
}

func TestRandomDiceRange(t *testing.T) {
	dice := NewRandomDice(42)
	for i := 0; i < 200; i++ {
		a, b := dice.Roll()
		assert.True(t, a >= 1 && a <= 6)
		assert.True(t, b >= 1 && b <= 6)
	}
}
