package models

import (
	"time"
)

// GameStatus represents the status of a game
type GameStatus string

const (
	GameStatusLobby     GameStatus = "LOBBY"
	GameStatusActive    GameStatus = "ACTIVE"
	GameStatusCompleted GameStatus = "COMPLETED"
	GameStatusAbandoned GameStatus = "ABANDONED"
)

// EventType names something that happened in a game
type EventType string

const (
	EventTurnOrder           EventType = "turn_order"
	EventTurnStarted         EventType = "turn_started"
	EventDiceRolled          EventType = "dice_rolled"
	EventSquareLanded        EventType = "square_landed"
	EventPassedGo            EventType = "passed_go"
	EventCardDrawn           EventType = "card_drawn"
	EventRentPaid            EventType = "rent_paid"
	EventTaxPaid             EventType = "tax_paid"
	EventPaymentMade         EventType = "payment_made"
	EventPaymentDue          EventType = "payment_due"
	EventCashCollected       EventType = "cash_collected"
	EventPropertyBought      EventType = "property_bought"
	EventAuctionStarted      EventType = "auction_started"
	EventAuctionStateChanged EventType = "auction_state_changed"
	EventAuctionClosed       EventType = "auction_closed"
	EventJailEntered         EventType = "jail_entered"
	EventJailReleased        EventType = "jail_released"
	EventJailCardGained      EventType = "jail_card_gained"
	EventJailCardTransferred EventType = "jail_card_transferred"
	EventImprovementChanged  EventType = "improvement_changed"
	EventMortgageChanged     EventType = "mortgage_changed"
	EventPropertyTransferred EventType = "property_transferred"
	EventOfferMade           EventType = "offer_made"
	EventOfferAnswered       EventType = "offer_answered"
	EventPlayerBankrupt      EventType = "player_bankrupt"
	EventGameOver            EventType = "game_over"
)

// NoSeat marks an event with no acting player
const NoSeat = -1

// Event is one entry of a game's history. The rules engine fills Type,
// Seat and Data; the manager stamps the rest before publishing.
type Event struct {
	ID        string                 `bson:"_id" json:"id"`
	GameID    string                 `bson:"gameId" json:"gameId"`
	Seq       int64                  `bson:"seq" json:"seq"`
	Type      EventType              `bson:"type" json:"type"`
	Seat      int                    `bson:"seat" json:"seat"`
	Data      map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
}

// GameRecord is the stored summary of a finished game
type GameRecord struct {
	ID         string       `bson:"_id" json:"gameId"`
	Code       string       `bson:"code" json:"code"`
	Status     GameStatus   `bson:"status" json:"status"`
	Mode       string       `bson:"mode" json:"mode"`
	Difficulty string       `bson:"difficulty" json:"difficulty"`
	Seats      []SeatRecord `bson:"seats" json:"seats"`
	Winners    []string     `bson:"winners" json:"winners"`
	Turns      int          `bson:"turns" json:"turns"`
	CreatedAt  time.Time    `bson:"createdAt" json:"createdAt"`
	EndedAt    time.Time    `bson:"endedAt" json:"endedAt"`
}

// SeatRecord is one player's final standing
type SeatRecord struct {
	Seat     int    `bson:"seat" json:"seat"`
	Name     string `bson:"name" json:"name"`
	UserID   string `bson:"userId,omitempty" json:"userId,omitempty"`
	Human    bool   `bson:"human" json:"human"`
	Color    string `bson:"color" json:"color"`
	Cash     int    `bson:"cash" json:"cash"`
	Assets   int    `bson:"assets" json:"assets"`
	Bankrupt bool   `bson:"bankrupt" json:"bankrupt"`
}

// GameAction is a command sent by a client over HTTP or websocket
type GameAction struct {
	Type   string `json:"type" validate:"required"`
	Square int    `json:"square,omitempty" validate:"min=0,max=39"`
	Target int    `json:"target,omitempty" validate:"min=0,max=3"`
	Amount int    `json:"amount,omitempty" validate:"min=0"`
	Choice string `json:"choice,omitempty" validate:"omitempty,oneof=flat percent"`
	Accept bool   `json:"accept,omitempty"`
}
