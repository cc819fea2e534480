package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/game/models"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Dequeue(ctx context.Context) (*QueueMessage, error) {
	args := m.Called(ctx)
	msg, _ := args.Get(0).(*QueueMessage)
	return msg, args.Error(1)
}

func (m *MockSource) Retry(ctx context.Context, msg *QueueMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockSource) MoveToDeadLetter(ctx context.Context, msg *QueueMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) AppendEvents(ctx context.Context, events []models.Event) error {
	return m.Called(ctx, events).Error(0)
}

func (m *MockHistory) SaveRecord(ctx context.Context, record *models.GameRecord) error {
	return m.Called(ctx, record).Error(0)
}

func newTestWorker(source *MockSource, history *MockHistory) *Worker {
	w := NewWorker(source, history, zap.NewNop())
	w.retryDelay = func(int) time.Duration { return 0 }
	return w
}

func TestProcessNextEmptyQueue(t *testing.T) {
	source, history := new(MockSource), new(MockHistory)
	source.On("Dequeue", mock.Anything).Return(nil, ErrQueueEmpty)

	processed, err := newTestWorker(source, history).ProcessNext(context.Background())

	require.NoError(t, err)
	assert.False(t, processed)
	history.AssertNotCalled(t, "AppendEvents", mock.Anything, mock.Anything)
}

func TestProcessNextStoresEvents(t *testing.T) {
	source, history := new(MockSource), new(MockHistory)
	events := []models.Event{{ID: "e1", GameID: "g1", Seq: 1, Type: models.EventDiceRolled}}
	source.On("Dequeue", mock.Anything).Return(&QueueMessage{Type: GameEvents, GameID: "g1", Events: events}, nil)
	history.On("AppendEvents", mock.Anything, events).Return(nil)

	processed, err := newTestWorker(source, history).ProcessNext(context.Background())

	require.NoError(t, err)
	assert.True(t, processed)
	history.AssertExpectations(t)
	source.AssertNotCalled(t, "Retry", mock.Anything, mock.Anything)
}

func TestProcessNextStoresRecord(t *testing.T) {
	source, history := new(MockSource), new(MockHistory)
	record := &models.GameRecord{ID: "g1", Winners: []string{"Ann"}, Turns: 40}
	source.On("Dequeue", mock.Anything).Return(&QueueMessage{Type: GameFinished, GameID: "g1", Record: record}, nil)
	history.On("SaveRecord", mock.Anything, record).Return(nil)

	_, err := newTestWorker(source, history).ProcessNext(context.Background())

	require.NoError(t, err)
	history.AssertExpectations(t)
}

func TestProcessNextRetriesTransientFailure(t *testing.T) {
	source, history := new(MockSource), new(MockHistory)
	msg := &QueueMessage{Type: GameEvents, GameID: "g1", Events: []models.Event{{ID: "e1"}}}
	source.On("Dequeue", mock.Anything).Return(msg, nil)
	source.On("Retry", mock.Anything, msg).Return(nil)
	history.On("AppendEvents", mock.Anything, msg.Events).Return(errors.New("connection reset"))

	processed, err := newTestWorker(source, history).ProcessNext(context.Background())

	require.NoError(t, err)
	assert.True(t, processed)
	source.AssertCalled(t, "Retry", mock.Anything, msg)
	source.AssertNotCalled(t, "MoveToDeadLetter", mock.Anything, mock.Anything)
}

func TestProcessNextParksAfterMaxAttempts(t *testing.T) {
	source, history := new(MockSource), new(MockHistory)
	msg := &QueueMessage{Type: GameEvents, GameID: "g1", Attempts: 2, Events: []models.Event{{ID: "e1"}}}
	source.On("Dequeue", mock.Anything).Return(msg, nil)
	source.On("MoveToDeadLetter", mock.Anything, msg).Return(nil)
	history.On("AppendEvents", mock.Anything, msg.Events).Return(errors.New("connection reset"))

	_, err := newTestWorker(source, history).ProcessNext(context.Background())

	require.NoError(t, err)
	source.AssertCalled(t, "MoveToDeadLetter", mock.Anything, msg)
	source.AssertNotCalled(t, "Retry", mock.Anything, mock.Anything)
}

func TestProcessNextParksPermanentFailures(t *testing.T) {
	tests := []struct {
		name string
		msg  *QueueMessage
	}{
		{"unknown type", &QueueMessage{Type: "player_token_update", GameID: "g1"}},
		{"record missing", &QueueMessage{Type: GameFinished, GameID: "g1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, history := new(MockSource), new(MockHistory)
			source.On("Dequeue", mock.Anything).Return(tt.msg, nil)
			source.On("MoveToDeadLetter", mock.Anything, tt.msg).Return(nil)

			_, err := newTestWorker(source, history).ProcessNext(context.Background())

			require.NoError(t, err)
			source.AssertCalled(t, "MoveToDeadLetter", mock.Anything, tt.msg)
		})
	}
}

func TestWorkerStartStop(t *testing.T) {
	source, history := new(MockSource), new(MockHistory)
	polled := make(chan struct{}, 1)
	source.On("Dequeue", mock.Anything).Return(nil, ErrQueueEmpty).Run(func(mock.Arguments) {
		select {
		case polled <- struct{}{}:
		default:
		}
	})
	w := newTestWorker(source, history)
	w.pollInterval = time.Millisecond

	w.Start()
	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("worker never polled the queue")
	}
	w.Stop()
}
