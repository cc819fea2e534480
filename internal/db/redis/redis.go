package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned without contacting Redis while the breaker is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ErrSnapshotNotFound means no cached snapshot exists for the game
var ErrSnapshotNotFound = errors.New("snapshot not found")

// CircuitBreaker implements the circuit breaker pattern for Redis
type CircuitBreaker struct {
	mu               sync.Mutex
	failureThreshold uint
	failureCount     uint
	resetTimeout     time.Duration
	lastFailureTime  time.Time
	state            CircuitState
	now              func() time.Time
}

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	// CircuitClosed means operations are allowed to proceed
	CircuitClosed CircuitState = iota
	// CircuitOpen means operations fail fast
	CircuitOpen
	// CircuitHalfOpen lets a trial operation through
	CircuitHalfOpen
)

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(failureThreshold uint, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		state:            CircuitClosed,
		now:              time.Now,
	}
}

// State reports the current breaker state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// AllowRequest checks if a request should be allowed based on the circuit state
func (cb *CircuitBreaker) AllowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed, CircuitHalfOpen:
		return true
	}
	if cb.now().Sub(cb.lastFailureTime) > cb.resetTimeout {
		cb.state = CircuitHalfOpen
		return true
	}
	return false
}

// RecordSuccess records a successful operation
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0
	cb.state = CircuitClosed
}

// RecordFailure records a failed operation
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = cb.now()
	if cb.state == CircuitHalfOpen {
		cb.state = CircuitOpen
		return
	}

	cb.failureCount++
	if cb.failureCount >= cb.failureThreshold {
		cb.state = CircuitOpen
	}
}

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect establishes a connection to Redis with retry capabilities
func Connect(ctx context.Context, opts Options, logger *zap.SugaredLogger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	maxRetries := 5
	initialBackoff := 500 * time.Millisecond
	maxBackoff := 10 * time.Second

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()

		if err == nil {
			logger.Infow("Successfully connected to Redis", "addr", opts.Addr, "attempt", attempt+1)
			return client, nil
		}

		backoff := float64(initialBackoff) * math.Pow(2, float64(attempt))
		if backoff > float64(maxBackoff) {
			backoff = float64(maxBackoff)
		}
		// ±20% jitter
		jitter := 0.8 + 0.4*float64(time.Now().UnixNano()%1000)/1000.0
		backoffWithJitter := time.Duration(backoff * jitter)

		logger.Warnw("Failed to connect to Redis, retrying",
			"attempt", attempt+1,
			"maxRetries", maxRetries,
			"backoff", backoffWithJitter,
			"error", err)

		select {
		case <-time.After(backoffWithJitter):
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("context cancelled while connecting to Redis: %w", ctx.Err())
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", maxRetries, err)
}

// SnapshotCache stores the latest public snapshot of each game and fans
// events out on a pub/sub channel for other service instances
type SnapshotCache struct {
	client  redis.UniversalClient
	breaker *CircuitBreaker
	ttl     time.Duration
	channel string
	logger  *zap.SugaredLogger
}

// NewSnapshotCache wraps client with a circuit breaker of 5 failures and a
// 10 second reset timeout
func NewSnapshotCache(client redis.UniversalClient, ttl time.Duration, channel string, logger *zap.SugaredLogger) *SnapshotCache {
	return &SnapshotCache{
		client:  client,
		breaker: NewCircuitBreaker(5, 10*time.Second),
		ttl:     ttl,
		channel: channel,
		logger:  logger,
	}
}

func snapshotKey(gameID string) string {
	return fmt.Sprintf("game:%s:snapshot", gameID)
}

func (c *SnapshotCache) execute(operation func() error) error {
	if !c.breaker.AllowRequest() {
		c.logger.Warn("Circuit breaker is open, fast-failing Redis request")
		return ErrCircuitOpen
	}

	err := operation()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.breaker.RecordFailure()
		return err
	}
	c.breaker.RecordSuccess()
	return err
}

// SaveSnapshot stores snapshot as JSON under the game's key
func (c *SnapshotCache) SaveSnapshot(ctx context.Context, gameID string, snapshot interface{}) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return c.execute(func() error {
		return c.client.Set(ctx, snapshotKey(gameID), payload, c.ttl).Err()
	})
}

// LoadSnapshot decodes the cached snapshot of a game into out
func (c *SnapshotCache) LoadSnapshot(ctx context.Context, gameID string, out interface{}) error {
	var raw []byte
	err := c.execute(func() error {
		var err error
		raw, err = c.client.Get(ctx, snapshotKey(gameID)).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return ErrSnapshotNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// DeleteSnapshot drops a game's cached snapshot
func (c *SnapshotCache) DeleteSnapshot(ctx context.Context, gameID string) error {
	return c.execute(func() error {
		return c.client.Del(ctx, snapshotKey(gameID)).Err()
	})
}

// Publish sends message as JSON on the event channel
func (c *SnapshotCache) Publish(ctx context.Context, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return c.execute(func() error {
		return c.client.Publish(ctx, c.channel, payload).Err()
	})
}

// Ping checks Redis through the breaker
func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.execute(func() error {
		return c.client.Ping(ctx).Err()
	})
}

// BreakerState reports the breaker state for health checks
func (c *SnapshotCache) BreakerState() CircuitState {
	return c.breaker.State()
}

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	}
	return "unknown"
}
