package board

import (
	"errors"
	"math/rand"
	"time"
)

// ErrPoolExhausted is returned when the bank has no pieces left to hand out
var ErrPoolExhausted = errors.New("bank pool exhausted")

// Bank holds the shared pool of houses and hotels
type Bank struct {
	houses int
	hotels int
}

// NewBank returns a full pool of 32 houses and 12 hotels
func NewBank() *Bank {
	return &Bank{houses: TotalHouses, hotels: TotalHotels}
}

// Houses returns the houses the bank still holds
func (b *Bank) Houses() int {
	return b.houses
}

// Hotels returns the hotels the bank still holds
func (b *Bank) Hotels() int {
	return b.hotels
}

// TakeHouses removes n houses from the pool
func (b *Bank) TakeHouses(n int) error {
	if n > b.houses {
		return ErrPoolExhausted
	}
	b.houses -= n
	return nil
}

// ReturnHouses puts n houses back in the pool
func (b *Bank) ReturnHouses(n int) {
	b.houses += n
}

// TakeHotel removes one hotel from the pool
func (b *Bank) TakeHotel() error {
	if b.hotels == 0 {
		return ErrPoolExhausted
	}
	b.hotels--
	return nil
}

// ReturnHotel puts one hotel back in the pool
func (b *Bank) ReturnHotel() {
	b.hotels++
}

// Dice rolls two six-sided dice
type Dice interface {
	Roll() (int, int)
}

// RandomDice rolls with a seeded math/rand source
type RandomDice struct {
	rng *rand.Rand
}

// NewRandomDice seeds from the clock when seed is zero
func NewRandomDice(seed int64) *RandomDice {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomDice{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns two independent values in 1..6
func (d *RandomDice) Roll() (int, int) {
	return d.rng.Intn(6) + 1, d.rng.Intn(6) + 1
}
