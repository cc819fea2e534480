package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/db/mongodb"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) Record(ctx context.Context, gameID string) (*models.GameRecord, error) {
	args := m.Called(ctx, gameID)
	record, _ := args.Get(0).(*models.GameRecord)
	return record, args.Error(1)
}

func (m *MockHistory) EventsForGame(ctx context.Context, gameID string) ([]models.Event, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockHistory) RecentRecords(ctx context.Context, limit int64) ([]models.GameRecord, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.GameRecord), args.Error(1)
}

func callWithQuery(h echo.HandlerFunc, query string) (*httptest.ResponseRecorder, error) {
	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/"+query, nil)
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func TestListRecordsClampsLimit(t *testing.T) {
	history := new(MockHistory)
	history.On("RecentRecords", mock.Anything, int64(defaultHistoryLimit)).Return([]models.GameRecord{{ID: "g1"}}, nil)
	history.On("RecentRecords", mock.Anything, int64(maxHistoryLimit)).Return([]models.GameRecord{}, nil)
	h := NewHistoryHandler(history, zap.NewNop().Sugar())

	rec, err := callWithQuery(h.ListRecords, "")
	require.NoError(t, err)
	var list struct {
		Games []models.GameRecord `json:"games"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Games, 1)
	assert.Equal(t, "g1", list.Games[0].ID)

	_, err = callWithQuery(h.ListRecords, "?limit=5000")
	require.NoError(t, err)

	_, err = callWithQuery(h.ListRecords, "?limit=-2")
	assertHTTPError(t, err, http.StatusBadRequest, "")

	history.AssertExpectations(t)
}

func TestGetRecord(t *testing.T) {
	history := new(MockHistory)
	history.On("Record", mock.Anything, "g1").Return(&models.GameRecord{ID: "g1", Turns: 40}, nil)
	history.On("Record", mock.Anything, "missing").Return(nil, mongodb.ErrRecordNotFound)
	history.On("Record", mock.Anything, "broken").Return(nil, errors.New("connection reset"))
	h := NewHistoryHandler(history, zap.NewNop().Sugar())
	e := newTestEcho()

	rec, err := call(e, h.GetRecord, http.MethodGet, "g1", "", "")
	require.NoError(t, err)
	var record models.GameRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, 40, record.Turns)

	_, err = call(e, h.GetRecord, http.MethodGet, "missing", "", "")
	assertHTTPError(t, err, http.StatusNotFound, "")

	_, err = call(e, h.GetRecord, http.MethodGet, "broken", "", "")
	assertHTTPError(t, err, http.StatusInternalServerError, "")
}

func TestGetEvents(t *testing.T) {
	history := new(MockHistory)
	events := []models.Event{
		{GameID: "g1", Seq: 1, Type: models.EventTurnOrder, Seat: models.NoSeat},
		{GameID: "g1", Seq: 2, Type: models.EventDiceRolled, Seat: 0},
	}
	history.On("EventsForGame", mock.Anything, "g1").Return(events, nil)
	h := NewHistoryHandler(history, zap.NewNop().Sugar())

	rec, err := call(newTestEcho(), h.GetEvents, http.MethodGet, "g1", "", "")
	require.NoError(t, err)

	var got struct {
		Events []models.Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Events, 2)
	assert.Equal(t, int64(2), got.Events[1].Seq)
	assert.Equal(t, models.EventDiceRolled, got.Events[1].Type)
}
