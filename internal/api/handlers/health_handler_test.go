package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	redisdb "github.com/daisywatson/monopoly-game/internal/db/redis"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

type MockMongo struct {
	mock.Mock
}

func (m *MockMongo) Ping(ctx context.Context, rp *readpref.ReadPref) error {
	return m.Called(ctx, rp).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCache) BreakerState() redisdb.CircuitState {
	return m.Called().Get(0).(redisdb.CircuitState)
}

type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) Length(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueue) DeadLetterLength(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type fixedCounter map[models.GameStatus]int

func (f fixedCounter) CountByStatus() map[models.GameStatus]int {
	return f
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		mongoErr error
		redisErr error
		breaker  redisdb.CircuitState
		status   int
		overall  string
	}{
		{"all healthy", nil, nil, redisdb.CircuitClosed, http.StatusOK, "healthy"},
		{"mongo down", errors.New("no reachable servers"), nil, redisdb.CircuitClosed, http.StatusServiceUnavailable, "degraded"},
		{"redis breaker open", nil, redisdb.ErrCircuitOpen, redisdb.CircuitOpen, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mongo := new(MockMongo)
			mongo.On("Ping", mock.Anything, mock.Anything).Return(tt.mongoErr)
			cache := new(MockCache)
			cache.On("Ping", mock.Anything).Return(tt.redisErr)
			cache.On("BreakerState").Return(tt.breaker)
			queue := new(MockQueue)
			queue.On("Length", mock.Anything).Return(int64(4), nil)
			queue.On("DeadLetterLength", mock.Anything).Return(int64(1), nil)
			games := fixedCounter{models.GameStatusActive: 2, models.GameStatusLobby: 1}

			h := NewHealthHandler(mongo, cache, queue, games, zap.NewNop().Sugar())
			rec, err := call(newTestEcho(), h.Check, http.MethodGet, "", "", "")
			require.NoError(t, err)
			assert.Equal(t, tt.status, rec.Code)

			var health SystemHealth
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
			assert.Equal(t, tt.overall, health.Status)
			assert.Equal(t, 2, health.Games[models.GameStatusActive])
			assert.Equal(t, tt.breaker.String(), health.Components["redis"].Breaker)
			assert.Equal(t, int64(4), health.Components["queue"].Pending)
			assert.Equal(t, int64(1), health.Components["queue"].DeadLetters)
			if tt.mongoErr != nil {
				assert.Equal(t, "unhealthy", health.Components["mongodb"].Status)
				assert.Equal(t, tt.mongoErr.Error(), health.Components["mongodb"].Error)
			}
		})
	}
}
