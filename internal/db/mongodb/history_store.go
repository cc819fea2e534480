package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/daisywatson/monopoly-game/internal/game/models"
)

const duplicateKeyCode = 11000

// ErrRecordNotFound is returned when no finished game matches
var ErrRecordNotFound = errors.New("game record not found")

// HistoryStore keeps the event log of every game and the summary of finished
// games. It is an audit trail, not a save format.
type HistoryStore struct {
	games  *mongo.Collection
	events *mongo.Collection
}

// NewHistoryStore creates a HistoryStore over the named collections
func NewHistoryStore(db *mongo.Database, gamesColl, eventsColl string) *HistoryStore {
	return &HistoryStore{
		games:  db.Collection(gamesColl),
		events: db.Collection(eventsColl),
	}
}

// AppendEvents inserts events in order. Events already stored are skipped so
// a retried batch is harmless.
func (s *HistoryStore) AppendEvents(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]interface{}, len(events))
	for i := range events {
		docs[i] = events[i]
	}
	_, err := s.events.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !onlyDuplicates(err) {
		return fmt.Errorf("failed to insert %d events: %w", len(events), err)
	}
	return nil
}

func onlyDuplicates(err error) bool {
	var bulk mongo.BulkWriteException
	if !errors.As(err, &bulk) || bulk.WriteConcernError != nil {
		return false
	}
	for _, we := range bulk.WriteErrors {
		if we.Code != duplicateKeyCode {
			return false
		}
	}
	return len(bulk.WriteErrors) > 0
}

// EventsForGame returns a game's events in sequence order
func (s *HistoryStore) EventsForGame(ctx context.Context, gameID string) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := s.events.Find(ctx, bson.M{"gameId": gameID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// SaveRecord upserts the summary of a finished game
func (s *HistoryStore) SaveRecord(ctx context.Context, record *models.GameRecord) error {
	_, err := s.games.ReplaceOne(ctx, bson.M{"_id": record.ID}, record, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save game record %s: %w", record.ID, err)
	}
	return nil
}

// Record finds the summary of a finished game
func (s *HistoryStore) Record(ctx context.Context, gameID string) (*models.GameRecord, error) {
	var record models.GameRecord
	err := s.games.FindOne(ctx, bson.M{"_id": gameID}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// RecentRecords lists up to limit finished games, newest first
func (s *HistoryStore) RecentRecords(ctx context.Context, limit int64) ([]models.GameRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "endedAt", Value: -1}}).SetLimit(limit)
	cursor, err := s.games.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []models.GameRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
