package board

// SpecialRent is a rent override carried from a chance card to the square it moved the player to
type SpecialRent string

const (
	SpecialRentNone SpecialRent = ""
	// SpecialRentDouble charges twice the owner's normal railroad rent
	SpecialRentDouble SpecialRent = "double"
	// SpecialRentTenTimesDice charges ten times a fresh dice roll regardless of utilities owned
	SpecialRentTenTimesDice SpecialRent = "ten_times_dice"
)

// Rent computes the rent owed on square index.
//
// level is the owner's improvement level on the square (0-5), ownedInGroup is
// how many squares of the same group the owner holds and diceSum is the roll
// used for utilities. Non-ownable squares have no rent.
func Rent(index, level, ownedInGroup, diceSum int) int {
	sq, ok := Lookup(index)
	if !ok || !sq.Ownable() || ownedInGroup < 1 {
		return 0
	}

	switch sq.Type {
	case SquareRailroad:
		return RailroadRent(ownedInGroup)
	case SquareUtility:
		if ownedInGroup >= len(groupMembers[GroupUtility]) {
			return 10 * diceSum
		}
		return 4 * diceSum
	}

	if level < 0 {
		level = 0
	}
	if level > HotelLevel {
		level = HotelLevel
	}
	rent := sq.Rent[level]
	if level == 0 && ownedInGroup == len(groupMembers[sq.Group]) {
		rent *= 2
	}
	return rent
}

// RailroadRent is 25, 50, 100 or 200 for one to four railroads owned
func RailroadRent(owned int) int {
	if owned < 1 {
		return 0
	}
	if owned > 4 {
		owned = 4
	}
	return 25 << (owned - 1)
}

// ApplySpecialRent replaces base rent according to the card override
func ApplySpecialRent(special SpecialRent, base, diceSum int) int {
	switch special {
	case SpecialRentDouble:
		return 2 * base
	case SpecialRentTenTimesDice:
		return 10 * diceSum
	default:
		return base
	}
}
