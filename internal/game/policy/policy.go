// Package policy holds the decision rules scripted players follow. Every
// function is pure: it looks only at the numbers it is given.
package policy

import (
	"fmt"

	"github.com/daisywatson/monopoly-game/internal/game/board"
)

// Difficulty of a scripted player
type Difficulty string

const (
	Easy Difficulty = "easy"
	Hard Difficulty = "hard"
)

// Mode is classic (last player standing) or timed (richest at the deadline)
type Mode string

const (
	Classic Mode = "classic"
	Timed   Mode = "timed"
)

// ParseDifficulty accepts "easy" or "hard"
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case Easy, Hard:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

const (
	cheapProperty  = 300
	cashReserve    = 400
	flatTaxCeiling = 200
	// occupiedSquares is how many owned squares make staying in jail attractive
	occupiedSquares = 14
)

// Strategy combines the two axes that shift every threshold
type Strategy struct {
	Difficulty Difficulty
	Mode       Mode
}

func (s Strategy) easy() bool {
	return s.Difficulty == Easy
}

func (s Strategy) timed() bool {
	return s.Mode == Timed
}

// PayFlatIncomeTax picks the flat amount when 10% of total assets would cost more
func (s Strategy) PayFlatIncomeTax(totalAssets int) bool {
	return totalAssets/10 > flatTaxCeiling
}

// RollOutOfJail decides between rolling for doubles and paying the fee.
// occupied is the number of owned squares on the board.
func (s Strategy) RollOutOfJail(funds, housesAvailable, occupied int) bool {
	if s.timed() {
		return !(s.easy() || funds < board.JailFee)
	}
	return s.easy() || funds < board.JailFee ||
		(occupied > occupiedSquares && housesAvailable < board.TotalHouses)
}

// BuyProperty decides whether to buy an unowned square at list price
func (s Strategy) BuyProperty(cost, funds int) bool {
	frugal := s.easy()
	if s.timed() {
		frugal = !s.easy()
	}
	if frugal {
		return cost < cheapProperty && cost < funds
	}
	return funds >= cost
}

// BidProperty decides whether to raise currentBid by one on a square worth cost
func (s Strategy) BidProperty(currentBid, cost, funds int, group board.ColorGroup) bool {
	bid := currentBid + 1
	if bid > funds {
		return false
	}
	if s.timed() {
		if !s.easy() {
			return bid <= cost
		}
		return true
	}
	if s.easy() {
		return bid <= cost
	}
	if !group.Premium() {
		return bid <= 2*cost
	}
	return true
}

// BidJailCard decides whether to raise the bid on a jail-free card
func (s Strategy) BidJailCard(currentBid, funds int) bool {
	return s.BuyJailCard(currentBid+1, funds)
}

// BuyJailCard decides whether to accept a jail-free card offered at price
func (s Strategy) BuyJailCard(price, funds int) bool {
	if price > funds {
		return false
	}
	if s.easy() {
		return true
	}
	return price < board.JailFee
}

// BuyPlayerProperty decides whether to accept another player's offer of a
// square worth value at price
func (s Strategy) BuyPlayerProperty(price, value, funds int, group board.ColorGroup) bool {
	if price > funds {
		return false
	}
	if s.timed() {
		if s.easy() {
			return price <= value
		}
		return true
	}
	if s.easy() {
		return price <= value
	}
	if !group.Premium() {
		return price <= 2*value
	}
	return true
}

// SellJailCard decides whether to put one of num held cards up for auction
func (s Strategy) SellJailCard(num, funds int) bool {
	if funds < board.JailFee {
		return true
	}
	if s.easy() {
		return false
	}
	return num > 1 || funds < cashReserve
}

// JailCardSellPrice is the asking price for a jail-free card
func (s Strategy) JailCardSellPrice(num, funds int) int {
	if funds < board.JailFee {
		return board.JailFee
	}
	if s.easy() {
		return board.JailFee - 1
	}
	return board.JailFee
}

func (s Strategy) BuyHouse() bool {
	return true
}

func (s Strategy) BuyHotel() bool {
	return s.easy()
}

func (s Strategy) UnmortgageProperty() bool {
	return true
}

func (s Strategy) MortgageProperty(funds int) bool {
	return funds < cashReserve
}

func (s Strategy) SellHouseHotel(funds int) bool {
	return funds < cashReserve
}

func (s Strategy) SellPlayerProperty(funds int) bool {
	return funds < cashReserve
}
