package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/game/models"
)

// ErrQueueEmpty is returned by Dequeue when nothing is waiting
var ErrQueueEmpty = errors.New("queue is empty")

// MessageType defines the type of message in the queue
type MessageType string

const (
	// GameEvents carries a batch of events to append to a game's history
	GameEvents MessageType = "game_events"
	// GameFinished carries the final record of a game
	GameFinished MessageType = "game_finished"
)

// QueueMessage represents a message in the queue
type QueueMessage struct {
	Type      MessageType        `json:"type"`
	GameID    string             `json:"gameId"`
	Events    []models.Event     `json:"events,omitempty"`
	Record    *models.GameRecord `json:"record,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Attempts  int                `json:"attempts"`
}

// RedisQueue implements a Redis list based message queue with a dead
// letter list beside it
type RedisQueue struct {
	client redis.UniversalClient
	name   string
	logger *zap.Logger
}

// NewRedisQueue creates a queue stored under the list key name
func NewRedisQueue(client redis.UniversalClient, name string, logger *zap.Logger) *RedisQueue {
	return &RedisQueue{
		client: client,
		name:   name,
		logger: logger,
	}
}

// Name is the list key of the queue
func (q *RedisQueue) Name() string {
	return q.name
}

// DeadLetterName is the list key failed messages end up in
func (q *RedisQueue) DeadLetterName() string {
	return q.name + ":dead"
}

// EnqueueEvents adds a batch of game events to the queue
func (q *RedisQueue) EnqueueEvents(ctx context.Context, gameID string, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	return q.push(ctx, q.name, &QueueMessage{
		Type:      GameEvents,
		GameID:    gameID,
		Events:    events,
		Timestamp: time.Now(),
	})
}

// EnqueueRecord adds the final record of a game to the queue
func (q *RedisQueue) EnqueueRecord(ctx context.Context, record *models.GameRecord) error {
	return q.push(ctx, q.name, &QueueMessage{
		Type:      GameFinished,
		GameID:    record.ID,
		Record:    record,
		Timestamp: time.Now(),
	})
}

func (q *RedisQueue) push(ctx context.Context, list string, msg *QueueMessage) error {
	msgJSON, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := q.client.RPush(ctx, list, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to push message to %s: %w", list, err)
	}

	q.logger.Debug("Message enqueued",
		zap.String("queue", list),
		zap.String("type", string(msg.Type)),
		zap.String("gameId", msg.GameID),
		zap.Int("events", len(msg.Events)))
	return nil
}

// Dequeue retrieves and removes the oldest message
func (q *RedisQueue) Dequeue(ctx context.Context) (*QueueMessage, error) {
	// LPOP rather than BLPOP so shutdown is never stuck behind a blocking call
	result, err := q.client.LPop(ctx, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("failed to pop message from queue: %w", err)
	}

	var msg QueueMessage
	if err := json.Unmarshal([]byte(result), &msg); err != nil {
		// an undecodable message can never succeed; park it as is
		_ = q.client.RPush(ctx, q.DeadLetterName(), result).Err()
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return &msg, nil
}

// MoveToDeadLetter parks a message that will not be retried
func (q *RedisQueue) MoveToDeadLetter(ctx context.Context, msg *QueueMessage) error {
	msg.Attempts++
	if err := q.push(ctx, q.DeadLetterName(), msg); err != nil {
		return err
	}

	q.logger.Warn("Message moved to dead letter queue",
		zap.String("queue", q.name),
		zap.String("type", string(msg.Type)),
		zap.String("gameId", msg.GameID),
		zap.Int("attempts", msg.Attempts))
	return nil
}

// Retry puts a message back at the end of the queue
func (q *RedisQueue) Retry(ctx context.Context, msg *QueueMessage) error {
	msg.Attempts++
	if err := q.push(ctx, q.name, msg); err != nil {
		return fmt.Errorf("failed to requeue message: %w", err)
	}

	q.logger.Info("Message requeued for retry",
		zap.String("queue", q.name),
		zap.String("type", string(msg.Type)),
		zap.String("gameId", msg.GameID),
		zap.Int("attempts", msg.Attempts))
	return nil
}

// Length returns the number of waiting messages
func (q *RedisQueue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.name).Result()
}

// DeadLetterLength returns the number of parked messages
func (q *RedisQueue) DeadLetterLength(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.DeadLetterName()).Result()
}
