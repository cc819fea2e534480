package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	redisdb "github.com/daisywatson/monopoly-game/internal/db/redis"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

// Version is reported by the health check and may be set at link time
var Version = "dev"

const healthCheckTimeout = 3 * time.Second

// MongoPinger is satisfied by *mongo.Client
type MongoPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// CachePinger is satisfied by the redis snapshot cache
type CachePinger interface {
	Ping(ctx context.Context) error
	BreakerState() redisdb.CircuitState
}

// QueueStats reports the depth of the history queue
type QueueStats interface {
	Length(ctx context.Context) (int64, error)
	DeadLetterLength(ctx context.Context) (int64, error)
}

// GameCounter reports how many hosted games are in each state
type GameCounter interface {
	CountByStatus() map[models.GameStatus]int
}

// HealthHandler handles health check requests
type HealthHandler struct {
	mongo  MongoPinger
	cache  CachePinger
	queue  QueueStats
	games  GameCounter
	logger *zap.SugaredLogger
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"responseTimeMs"`
	Breaker      string `json:"breaker,omitempty"`
	Pending      int64  `json:"pending,omitempty"`
	DeadLetters  int64  `json:"deadLetters,omitempty"`
	Error        string `json:"error,omitempty"`
}

// SystemHealth represents the health of the entire system
type SystemHealth struct {
	Status     string                    `json:"status"`
	Timestamp  string                    `json:"timestamp"`
	Version    string                    `json:"version"`
	Components map[string]HealthStatus   `json:"components"`
	Games      map[models.GameStatus]int `json:"games"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(mongo MongoPinger, cache CachePinger, queue QueueStats, games GameCounter, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{
		mongo:  mongo,
		cache:  cache,
		queue:  queue,
		games:  games,
		logger: logger,
	}
}

// Check performs a health check of all system components. A failing store
// reports the service as degraded.
func (h *HealthHandler) Check(c echo.Context) error {
	systemHealth := SystemHealth{
		Status:     "healthy",
		Timestamp:  time.Now().Format(time.RFC3339),
		Version:    Version,
		Components: make(map[string]HealthStatus),
		Games:      h.games.CountByStatus(),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	record := func(name string, status HealthStatus) {
		mu.Lock()
		defer mu.Unlock()
		systemHealth.Components[name] = status
		if status.Status != "healthy" {
			systemHealth.Status = "degraded"
		}
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		record("mongodb", h.checkMongoDB(c.Request().Context()))
	}()
	go func() {
		defer wg.Done()
		record("redis", h.checkRedis(c.Request().Context()))
	}()
	go func() {
		defer wg.Done()
		record("queue", h.checkQueue(c.Request().Context()))
	}()
	wg.Wait()

	statusCode := http.StatusOK
	if systemHealth.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, systemHealth)
}

// checkMongoDB checks the health of the MongoDB connection
func (h *HealthHandler) checkMongoDB(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := h.mongo.Ping(ctx, readpref.Primary())
	status := HealthStatus{Status: "healthy", ResponseTime: time.Since(start).Milliseconds()}
	if err != nil {
		h.logger.Errorw("MongoDB health check failed", "error", err)
		status.Status = "unhealthy"
		status.Error = err.Error()
	}
	return status
}

// checkRedis checks the health of the Redis connection
func (h *HealthHandler) checkRedis(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := h.cache.Ping(ctx)
	status := HealthStatus{
		Status:       "healthy",
		ResponseTime: time.Since(start).Milliseconds(),
		Breaker:      h.cache.BreakerState().String(),
	}
	if err != nil {
		h.logger.Errorw("Redis health check failed", "error", err)
		status.Status = "unhealthy"
		status.Error = err.Error()
	}
	return status
}

// checkQueue reports how much history is waiting to be stored. Parked
// messages do not make the queue unhealthy.
func (h *HealthHandler) checkQueue(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	pending, err := h.queue.Length(ctx)
	var dead int64
	if err == nil {
		dead, err = h.queue.DeadLetterLength(ctx)
	}
	status := HealthStatus{
		Status:       "healthy",
		ResponseTime: time.Since(start).Milliseconds(),
		Pending:      pending,
		DeadLetters:  dead,
	}
	if err != nil {
		h.logger.Errorw("Queue health check failed", "error", err)
		status.Status = "unhealthy"
		status.Error = err.Error()
	}
	return status
}
