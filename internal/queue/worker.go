package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/game/models"
)

// ErrPermanent marks a handler failure that retrying cannot fix
var ErrPermanent = errors.New("permanent failure")

// MessageHandler is a function that processes a queue message
type MessageHandler func(ctx context.Context, msg *QueueMessage) error

// MessageSource is the queue a worker drains
type MessageSource interface {
	Dequeue(ctx context.Context) (*QueueMessage, error)
	Retry(ctx context.Context, msg *QueueMessage) error
	MoveToDeadLetter(ctx context.Context, msg *QueueMessage) error
}

// HistoryWriter persists what the worker drains
type HistoryWriter interface {
	AppendEvents(ctx context.Context, events []models.Event) error
	SaveRecord(ctx context.Context, record *models.GameRecord) error
}

// Worker moves queued game history into long-term storage
type Worker struct {
	queue        MessageSource
	history      HistoryWriter
	logger       *zap.Logger
	handlers     map[MessageType]MessageHandler
	maxAttempts  int
	pollInterval time.Duration
	retryDelay   func(attempts int) time.Duration
	shutdownChan chan struct{}
	wg           sync.WaitGroup
}

// NewWorker creates a new queue worker
func NewWorker(queue MessageSource, history HistoryWriter, logger *zap.Logger) *Worker {
	worker := &Worker{
		queue:        queue,
		history:      history,
		logger:       logger,
		handlers:     make(map[MessageType]MessageHandler),
		maxAttempts:  3,
		pollInterval: 200 * time.Millisecond,
		retryDelay: func(attempts int) time.Duration {
			return time.Duration(attempts+1) * time.Second
		},
		shutdownChan: make(chan struct{}),
	}

	worker.registerDefaultHandlers()
	return worker
}

func (w *Worker) registerDefaultHandlers() {
	w.RegisterHandler(GameEvents, func(ctx context.Context, msg *QueueMessage) error {
		if err := w.history.AppendEvents(ctx, msg.Events); err != nil {
			return fmt.Errorf("failed to append events: %w", err)
		}
		w.logger.Debug("Game events stored",
			zap.String("gameId", msg.GameID),
			zap.Int("count", len(msg.Events)))
		return nil
	})

	w.RegisterHandler(GameFinished, func(ctx context.Context, msg *QueueMessage) error {
		if msg.Record == nil {
			return fmt.Errorf("game %s finished without a record: %w", msg.GameID, ErrPermanent)
		}
		if err := w.history.SaveRecord(ctx, msg.Record); err != nil {
			return fmt.Errorf("failed to save game record: %w", err)
		}
		w.logger.Info("Game record stored",
			zap.String("gameId", msg.GameID),
			zap.Strings("winners", msg.Record.Winners),
			zap.Int("turns", msg.Record.Turns))
		return nil
	})
}

// RegisterHandler sets the handler for a message type
func (w *Worker) RegisterHandler(msgType MessageType, handler MessageHandler) {
	w.handlers[msgType] = handler
}

// SetMaxAttempts sets how often a message is tried before it is parked
func (w *Worker) SetMaxAttempts(maxAttempts int) {
	w.maxAttempts = maxAttempts
}

// Start begins draining the queue in the background
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.processMessages()
}

// Stop signals the worker to finish and waits for it
func (w *Worker) Stop() {
	close(w.shutdownChan)
	w.wg.Wait()
}

func (w *Worker) processMessages() {
	defer w.wg.Done()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		select {
		case <-w.shutdownChan:
			w.logger.Info("Worker shutting down")
			return
		default:
		}

		processed, err := w.ProcessNext(ctx)
		if err != nil {
			w.logger.Error("Failed to dequeue message", zap.Error(err))
		}
		if processed {
			continue
		}

		select {
		case <-w.shutdownChan:
			w.logger.Info("Worker shutting down")
			return
		case <-time.After(w.pollInterval):
		}
	}
}

// ProcessNext handles one message. It reports false when the queue was
// empty or could not be read.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	msg, err := w.queue.Dequeue(ctx)
	if errors.Is(err, ErrQueueEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	err = w.processMessage(ctx, msg)
	if err == nil {
		return true, nil
	}

	w.logger.Error("Failed to process message",
		zap.String("type", string(msg.Type)),
		zap.String("gameId", msg.GameID),
		zap.Int("attempts", msg.Attempts),
		zap.Error(err))

	if errors.Is(err, ErrPermanent) || msg.Attempts+1 >= w.maxAttempts {
		if dlErr := w.queue.MoveToDeadLetter(ctx, msg); dlErr != nil {
			w.logger.Error("Failed to move message to dead letter queue", zap.Error(dlErr))
		}
		return true, nil
	}

	if delay := w.retryDelay(msg.Attempts); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}
	if rqErr := w.queue.Retry(ctx, msg); rqErr != nil {
		w.logger.Error("Failed to requeue message", zap.Error(rqErr))
	}
	return true, nil
}

func (w *Worker) processMessage(ctx context.Context, msg *QueueMessage) error {
	handler, ok := w.handlers[msg.Type]
	if !ok {
		return fmt.Errorf("no handler registered for message type %q: %w", msg.Type, ErrPermanent)
	}
	return handler(ctx, msg)
}
