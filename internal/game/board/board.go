package board

import "fmt"

// SquareType identifies what happens when a piece lands on a square
type SquareType string

const (
	SquareGo        SquareType = "go"
	SquareProperty  SquareType = "property"
	SquareRailroad  SquareType = "railroad"
	SquareUtility   SquareType = "utility"
	SquareTax       SquareType = "tax"
	SquareChance    SquareType = "chance"
	SquareChest     SquareType = "chest"
	SquareJailVisit SquareType = "jail_visit"
	SquareGoToJail  SquareType = "go_to_jail"
	SquareParking   SquareType = "parking"
	SquareInJail    SquareType = "in_jail"
)

// ColorGroup identifies a set of squares that share rent tier and build rules
type ColorGroup string

const (
	GroupNone     ColorGroup = ""
	GroupBrown    ColorGroup = "brown"
	GroupRailroad ColorGroup = "railroad"
	GroupSky      ColorGroup = "sky"
	GroupPink     ColorGroup = "pink"
	GroupUtility  ColorGroup = "utility"
	GroupOrange   ColorGroup = "orange"
	GroupRed      ColorGroup = "red"
	GroupYellow   ColorGroup = "yellow"
	GroupGreen    ColorGroup = "green"
	GroupBlue     ColorGroup = "blue"
)

// Premium reports whether the group is one of the high-traffic groups
// computer players are willing to overpay for.
func (g ColorGroup) Premium() bool {
	return g == GroupRed || g == GroupOrange || g == GroupYellow
}

// Buildable reports whether houses and hotels can be built on the group
func (g ColorGroup) Buildable() bool {
	return g != GroupNone && g != GroupRailroad && g != GroupUtility
}

// Board positions and rule constants
const (
	NumSquares = 40

	GoSquare        = 0
	IncomeTaxSquare = 4
	JailVisitSquare = 10
	ParkingSquare   = 20
	GoToJailSquare  = 30
	LuxuryTaxSquare = 38
	InJailSquare    = 40

	PassGoBonus   = 200
	StartingCash  = 1500
	JailFee       = 50
	MaxJailTurns  = 3
	IncomeTaxFlat = 200
	LuxuryTax     = 100

	TotalHouses = 32
	TotalHotels = 12

	// HotelLevel is the improvement level of a hotel; levels 1-4 are houses
	HotelLevel = 5

	// MaxSalePrice bounds any price typed in for a player-to-player sale
	MaxSalePrice = 15140
)

// Square is the static definition of one board position
type Square struct {
	Index     int        `json:"index"`
	Name      string     `json:"name"`
	Type      SquareType `json:"type"`
	Group     ColorGroup `json:"group,omitempty"`
	Price     int        `json:"price,omitempty"`
	Rent      [6]int     `json:"rent,omitempty"`
	HouseCost int        `json:"houseCost,omitempty"`
}

// Ownable reports whether the square can be bought
func (s Square) Ownable() bool {
	return s.Type == SquareProperty || s.Type == SquareRailroad || s.Type == SquareUtility
}

// MortgageValue is the cash the bank lends against the square
func (s Square) MortgageValue() int {
	return s.Price / 2
}

// UnmortgageCost is the mortgage value plus 10% interest rounded up
func (s Square) UnmortgageCost() int {
	m := s.MortgageValue()
	return m + (m+9)/10
}

// HouseSaleValue is what the bank pays back for one house or hotel
func (s Square) HouseSaleValue() int {
	return s.HouseCost / 2
}

func (s Square) String() string {
	return fmt.Sprintf("%s (%d)", s.Name, s.Index)
}

var squares = [NumSquares + 1]Square{
	{Index: 0, Name: "Go", Type: SquareGo},
	prop(1, "Mediterranean Avenue", GroupBrown, 60, 2, 10, 30, 90, 160, 250),
	{Index: 2, Name: "Community Chest", Type: SquareChest},
	prop(3, "Baltic Avenue", GroupBrown, 60, 4, 20, 60, 180, 320, 450),
	{Index: 4, Name: "Income Tax", Type: SquareTax},
	railroad(5, "Reading Railroad"),
	prop(6, "Oriental Avenue", GroupSky, 100, 4, 30, 90, 270, 400, 550),
	{Index: 7, Name: "Chance", Type: SquareChance},
	prop(8, "Vermont Avenue", GroupSky, 100, 4, 30, 90, 270, 400, 550),
	prop(9, "Connecticut Avenue", GroupSky, 120, 8, 40, 100, 300, 450, 600),
	{Index: 10, Name: "Jail", Type: SquareJailVisit},
	prop(11, "St. Charles Place", GroupPink, 140, 10, 50, 150, 450, 625, 750),
	utility(12, "Electric Company"),
	prop(13, "States Avenue", GroupPink, 140, 10, 50, 150, 450, 625, 750),
	prop(14, "Virginia Avenue", GroupPink, 160, 12, 60, 180, 500, 700, 900),
	railroad(15, "Pennsylvania Railroad"),
	prop(16, "St. James Place", GroupOrange, 180, 14, 70, 200, 550, 750, 950),
	{Index: 17, Name: "Community Chest", Type: SquareChest},
	prop(18, "Tennessee Avenue", GroupOrange, 180, 14, 70, 200, 550, 750, 950),
	prop(19, "New York Avenue", GroupOrange, 200, 16, 80, 220, 600, 800, 1000),
	{Index: 20, Name: "Free Parking", Type: SquareParking},
	prop(21, "Kentucky Avenue", GroupRed, 220, 18, 90, 250, 700, 875, 1050),
	{Index: 22, Name: "Chance", Type: SquareChance},
	prop(23, "Indiana Avenue", GroupRed, 220, 18, 90, 250, 700, 875, 1050),
	prop(24, "Illinois Avenue", GroupRed, 240, 20, 100, 300, 750, 925, 1100),
	railroad(25, "B. & O. Railroad"),
	prop(26, "Atlantic Avenue", GroupYellow, 260, 22, 110, 330, 800, 975, 1150),
	prop(27, "Ventnor Avenue", GroupYellow, 260, 22, 110, 330, 800, 975, 1150),
	utility(28, "Water Works"),
	prop(29, "Marvin Gardens", GroupYellow, 280, 24, 120, 360, 850, 1025, 1200),
	{Index: 30, Name: "Go to Jail", Type: SquareGoToJail},
	prop(31, "Pacific Avenue", GroupGreen, 300, 26, 130, 390, 900, 1100, 1275),
	prop(32, "North Carolina Avenue", GroupGreen, 300, 26, 130, 390, 900, 1100, 1275),
	{Index: 33, Name: "Community Chest", Type: SquareChest},
	prop(34, "Pennsylvania Avenue", GroupGreen, 320, 28, 150, 450, 1000, 1200, 1400),
	railroad(35, "Short Line"),
	{Index: 36, Name: "Chance", Type: SquareChance},
	prop(37, "Park Place", GroupBlue, 350, 35, 175, 500, 1100, 1300, 1500),
	{Index: 38, Name: "Luxury Tax", Type: SquareTax},
	prop(39, "Boardwalk", GroupBlue, 400, 50, 200, 600, 1400, 1700, 2000),
	{Index: 40, Name: "In Jail", Type: SquareInJail},
}

var groupMembers = map[ColorGroup][]int{
	GroupBrown:    {1, 3},
	GroupRailroad: {5, 15, 25, 35},
	GroupSky:      {6, 8, 9},
	GroupPink:     {11, 13, 14},
	GroupUtility:  {12, 28},
	GroupOrange:   {16, 18, 19},
	GroupRed:      {21, 23, 24},
	GroupYellow:   {26, 27, 29},
	GroupGreen:    {31, 32, 34},
	GroupBlue:     {37, 39},
}

func prop(index int, name string, group ColorGroup, price int, rent ...int) Square {
	s := Square{Index: index, Name: name, Type: SquareProperty, Group: group, Price: price, HouseCost: HouseCost(group)}
	copy(s.Rent[:], rent)
	return s
}

func railroad(index int, name string) Square {
	return Square{Index: index, Name: name, Type: SquareRailroad, Group: GroupRailroad, Price: 200}
}

func utility(index int, name string) Square {
	return Square{Index: index, Name: name, Type: SquareUtility, Group: GroupUtility, Price: 150}
}

// Lookup returns the square at index, including the synthetic in-jail square 40
func Lookup(index int) (Square, bool) {
	if index < 0 || index > InJailSquare {
		return Square{}, false
	}
	return squares[index], true
}

// MustLookup is Lookup for indices the caller has already validated
func MustLookup(index int) Square {
	s, ok := Lookup(index)
	if !ok {
		panic(fmt.Sprintf("board: square %d out of range", index))
	}
	return s
}

// Squares returns the 40 playable squares in board order
func Squares() []Square {
	out := make([]Square, NumSquares)
	copy(out, squares[:NumSquares])
	return out
}

// GroupMembers returns the square indices of a color group in ascending order
func GroupMembers(g ColorGroup) []int {
	members := groupMembers[g]
	out := make([]int, len(members))
	copy(out, members)
	return out
}

// HouseCost is the price of one house (or hotel) in the group
func HouseCost(g ColorGroup) int {
	switch g {
	case GroupBrown, GroupSky:
		return 50
	case GroupPink, GroupOrange:
		return 100
	case GroupRed, GroupYellow:
		return 150
	case GroupGreen, GroupBlue:
		return 200
	default:
		return 0
	}
}

// OwnableSquares returns the indices of every square that can be bought
func OwnableSquares() []int {
	var out []int
	for _, s := range squares[:NumSquares] {
		if s.Ownable() {
			out = append(out, s.Index)
		}
	}
	return out
}

// Advance moves a piece forward from position by steps and reports whether
// the move wrapped past the last square.
func Advance(position, steps int) (int, bool) {
	if position == InJailSquare {
		position = JailVisitSquare
	}
	next := position + steps
	return next % NumSquares, next >= NumSquares
}

// NearestRailroad maps a chance square to the next railroad
func NearestRailroad(chanceSquare int) int {
	switch chanceSquare {
	case 7:
		return 15
	case 22:
		return 25
	case 36:
		return 35
	}
	return nearestForward(chanceSquare, GroupRailroad)
}

// NearestUtility maps a chance square to the next utility
func NearestUtility(chanceSquare int) int {
	switch chanceSquare {
	case 7, 36:
		return 12
	case 22:
		return 28
	}
	return nearestForward(chanceSquare, GroupUtility)
}

func nearestForward(from int, g ColorGroup) int {
	for step := 1; step <= NumSquares; step++ {
		sq := (from + step) % NumSquares
		if squares[sq].Group == g {
			return sq
		}
	}
	return from
}
