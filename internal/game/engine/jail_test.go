package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daisywatson/monopoly-game/internal/game/board"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

func TestGoToJailOpensDecision(t *testing.T) {
	s, dice := newTestSession(t, Config{Seats: humans(2)})
	s.players[0].MoveTo(25)
	dice.push([2]int{2, 3})

	require.NoError(t, s.RollAndMove())

	p := s.CurrentPlayer()
	assert.True(t, p.InJail())
	assert.Equal(t, board.InJailSquare, p.Position())
	assert.Equal(t, PendingJail, s.PendingDecisionKind())
	assert.Equal(t, []Action{
		{Command: CmdPayJailFee, Amount: board.JailFee},
		{Command: CmdRollInJail},
	}, s.AvailableOptions())
	assert.Equal(t, board.StartingCash, p.Cash(), "no Go bonus on the way to jail")
}

func TestPayJailFee(t *testing.T) {
	s, dice := newTestSession(t, Config{Seats: humans(2)})
	s.players[0].MoveTo(25)
	dice.push([2]int{2, 3})
	require.NoError(t, s.RollAndMove())

	require.NoError(t, s.PayJailFee())

	p := s.CurrentPlayer()
	assert.False(t, p.InJail())
	assert.Equal(t, board.JailVisitSquare, p.Position())
	assert.Equal(t, board.StartingCash-board.JailFee, p.Cash())
	assert.Equal(t, PendingTurnActions, s.PendingDecisionKind())
}

func TestJailFeeNeedsCash(t *testing.T) {
	s, dice := newTestSession(t, Config{Seats: humans(2)})
	setCash(t, s, 0, 20)
	s.players[0].MoveTo(25)
	dice.push([2]int{2, 3})
	require.NoError(t, s.RollAndMove())

	assert.ErrorIs(t, s.PayJailFee(), ErrInvalidCommand)
	assert.ErrorIs(t, s.UseJailCard(), ErrInvalidCommand)
	assert.Equal(t, []Action{{Command: CmdRollInJail}}, s.AvailableOptions())
}

func TestUseJailCard(t *testing.T) {
	s, dice := newTestSession(t, Config{Seats: humans(2)})
	s.players[0].AddJailCard()
	s.players[0].MoveTo(25)
	dice.push([2]int{2, 3})
	require.NoError(t, s.RollAndMove())

	require.NoError(t, s.UseJailCard())
	p := s.CurrentPlayer()
	assert.False(t, p.InJail())
	assert.Equal(t, 0, p.JailCards())
	assert.Equal(t, board.StartingCash, p.Cash())
}

func TestDoublesReleaseWithoutMoving(t *testing.T) {
	s, dice := newTestSession(t, Config{Seats: humans(2)})
	s.players[0].MoveTo(25)
	dice.push([2]int{2, 3}, [2]int{4, 4})
	require.NoError(t, s.RollAndMove())

	require.NoError(t, s.RollInJail())
	p := s.CurrentPlayer()
	assert.False(t, p.InJail())
	assert.Equal(t, board.JailVisitSquare, p.Position())
	assert.Equal(t, board.StartingCash, p.Cash())
	assert.Equal(t, PendingTurnActions, s.PendingDecisionKind())
}

func TestFourthJailTurnForcesRelease(t *testing.T) {
	s, dice := newTestSession(t, Config{Seats: humans(2)})
	s.players[0].MoveTo(25)
	dice.push(
		[2]int{2, 3}, // to Go to Jail
		[2]int{1, 2}, // first attempt, same turn
		[2]int{4, 6}, // other player to 10
		[2]int{1, 2}, // second attempt
		[2]int{4, 6}, // other player to 20
		[2]int{1, 2}, // third attempt
		[2]int{1, 3}, // other player to 24
	)
	require.NoError(t, s.RollAndMove())
	require.NoError(t, s.RollInJail())
	require.NoError(t, s.EndTurn())

	for attempt := 2; attempt <= 3; attempt++ {
		require.NoError(t, s.RollAndMove())
		require.NoError(t, s.EndTurn())
		require.Equal(t, PendingJail, s.PendingDecisionKind(), "attempt %d", attempt)
		require.NoError(t, s.RollInJail())
		assert.Equal(t, attempt, s.CurrentPlayer().JailTurns())
		require.NoError(t, s.EndTurn())
	}
	assert.True(t, s.players[0].InJail())

	require.NoError(t, s.RollAndMove())
	require.NoError(t, s.BuyProperty())
	s.Events()
	require.NoError(t, s.EndTurn())

	p := s.CurrentPlayer()
	assert.Equal(t, 0, p.ID)
	assert.False(t, p.InJail())
	assert.Equal(t, board.JailVisitSquare, p.Position())
	assert.Equal(t, board.StartingCash-board.JailFee, p.Cash())
	assert.Equal(t, PendingTurnActions, s.PendingDecisionKind())

	events := s.Events()
	assert.Equal(t, 1, countEvents(events, models.EventJailReleased))
	assert.Equal(t, 1, countEvents(events, models.EventPaymentMade))
}

func TestForcedReleaseWithoutCash(t *testing.T) {
	s, dice := newTestSession(t, Config{Seats: humans(2)})
	p := s.players[1]
	p.EnterJail()
	for i := 0; i < board.MaxJailTurns; i++ {
		p.AddJailTurn()
	}
	setCash(t, s, 1, 10)
	dice.push([2]int{4, 6})

	require.NoError(t, s.RollAndMove())
	require.NoError(t, s.EndTurn())

	assert.Equal(t, 1, s.CurrentPlayer().ID)
	assert.False(t, p.InJail())
	require.Equal(t, PendingPayment, s.PendingDecisionKind())
	assert.Equal(t, "jail_fee", s.Pending().Debt.Reason)
}
