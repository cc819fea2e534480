package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/db/mongodb"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryReader reads finished games and their event logs
type HistoryReader interface {
	Record(ctx context.Context, gameID string) (*models.GameRecord, error)
	EventsForGame(ctx context.Context, gameID string) ([]models.Event, error)
	RecentRecords(ctx context.Context, limit int64) ([]models.GameRecord, error)
}

// HistoryHandler serves stored game history
type HistoryHandler struct {
	history HistoryReader
	logger  *zap.SugaredLogger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(history HistoryReader, logger *zap.SugaredLogger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

// ListRecords returns the most recently finished games
func (h *HistoryHandler) ListRecords(c echo.Context) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive number")
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := h.history.RecentRecords(c.Request().Context(), int64(limit))
	if err != nil {
		h.logger.Errorf("Failed to list game records: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list games")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"games": records,
	})
}

// GetRecord returns the final standings of one game
func (h *HistoryHandler) GetRecord(c echo.Context) error {
	record, err := h.history.Record(c.Request().Context(), c.Param("gameId"))
	if errors.Is(err, mongodb.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Game record not found")
	}
	if err != nil {
		h.logger.Errorf("Failed to load game record: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load game")
	}
	return c.JSON(http.StatusOK, record)
}

// GetEvents returns the stored event log of a game in order
func (h *HistoryHandler) GetEvents(c echo.Context) error {
	events, err := h.history.EventsForGame(c.Request().Context(), c.Param("gameId"))
	if err != nil {
		h.logger.Errorf("Failed to load game events: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load events")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
	})
}
