package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/api/middleware/auth"
	"github.com/daisywatson/monopoly-game/internal/game/engine"
	"github.com/daisywatson/monopoly-game/internal/game/manager"
	"github.com/daisywatson/monopoly-game/internal/game/models"
	"github.com/daisywatson/monopoly-game/internal/game/policy"
)

// SnapshotLoader reads the last cached snapshot of a game
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, gameID string, out interface{}) error
}

// GameHandler handles game-related requests
type GameHandler struct {
	gameManager *manager.GameManager
	snapshots   SnapshotLoader
	logger      *zap.SugaredLogger
}

// NewGameHandler creates a new GameHandler. snapshots may be nil.
func NewGameHandler(gameManager *manager.GameManager, snapshots SnapshotLoader, logger *zap.SugaredLogger) *GameHandler {
	return &GameHandler{
		gameManager: gameManager,
		snapshots:   snapshots,
		logger:      logger,
	}
}

// CreateGameRequest represents a create game request
type CreateGameRequest struct {
	Humans           int    `json:"humans" validate:"min=1,max=4"`
	Computers        int    `json:"computers" validate:"min=0,max=3"`
	Difficulty       string `json:"difficulty,omitempty" validate:"omitempty,oneof=easy hard"`
	TimeLimitMinutes int    `json:"timeLimitMinutes,omitempty" validate:"min=0"`
	HostName         string `json:"hostName,omitempty" validate:"max=24"`
	HostColor        string `json:"hostColor,omitempty" validate:"omitempty,oneof=red blue green yellow"`
}

// JoinGameRequest represents a join game request
type JoinGameRequest struct {
	Name  string `json:"name,omitempty" validate:"max=24"`
	Color string `json:"color,omitempty" validate:"omitempty,oneof=red blue green yellow"`
}

// ErrorResponse is the body of every failed game request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// gameError maps a manager or engine error onto an HTTP error
func (h *GameHandler) gameError(err error) error {
	code := manager.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case "game_not_found":
		status = http.StatusNotFound
	case "not_your_turn", "not_in_game", "not_host":
		status = http.StatusForbidden
	case "wrong_game_state", "game_full", "color_taken", "invalid_command":
		status = http.StatusConflict
	case "invalid_options", "invalid_input":
		status = http.StatusBadRequest
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Errorf("Game request failed: %v", err)
		message = "internal error"
	}
	return echo.NewHTTPError(status, ErrorResponse{Code: code, Message: message})
}

func userFrom(c echo.Context) (id, name string) {
	id, _ = c.Get(auth.ContextUserID).(string)
	name, _ = c.Get(auth.ContextUserName).(string)
	return id, name
}

// CreateGame creates a new game with the caller as host
func (h *GameHandler) CreateGame(c echo.Context) error {
	var req CreateGameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID, name := userFrom(c)
	if strings.TrimSpace(req.HostName) == "" {
		req.HostName = name
	}

	info, err := h.gameManager.CreateGame(userID, manager.CreateOptions{
		Humans:           req.Humans,
		Computers:        req.Computers,
		Difficulty:       policy.Difficulty(req.Difficulty),
		TimeLimitMinutes: req.TimeLimitMinutes,
		HostName:         req.HostName,
		HostColor:        req.HostColor,
	})
	if err != nil {
		return h.gameError(err)
	}
	return c.JSON(http.StatusCreated, info)
}

// ListGames lists lobbies that still have open seats
func (h *GameHandler) ListGames(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"games": h.gameManager.ListLobbyGames(),
	})
}

// GetGameDetails gets details for a game by id or room code
func (h *GameHandler) GetGameDetails(c echo.Context) error {
	info, err := h.gameManager.GetGame(c.Param("gameId"))
	if err != nil {
		return h.gameError(err)
	}
	return c.JSON(http.StatusOK, info)
}

// JoinGame seats the caller in the game
func (h *GameHandler) JoinGame(c echo.Context) error {
	var req JoinGameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID, name := userFrom(c)
	if strings.TrimSpace(req.Name) == "" {
		req.Name = name
	}
	info, err := h.gameManager.JoinGame(c.Param("gameId"), userID, req.Name, req.Color)
	if err != nil {
		return h.gameError(err)
	}
	return c.JSON(http.StatusOK, info)
}

// LeaveGame frees the caller's lobby seat
func (h *GameHandler) LeaveGame(c echo.Context) error {
	userID, _ := userFrom(c)
	if err := h.gameManager.LeaveGame(c.Param("gameId"), userID); err != nil {
		return h.gameError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RestartGame starts a finished game over with the same seats
func (h *GameHandler) RestartGame(c echo.Context) error {
	userID, _ := userFrom(c)
	info, err := h.gameManager.RestartGame(c.Param("gameId"), userID)
	if err != nil {
		return h.gameError(err)
	}
	return c.JSON(http.StatusOK, info)
}

// GetGameState returns the current snapshot of a running game. A game this
// process no longer hosts is served from the snapshot cache, read only.
func (h *GameHandler) GetGameState(c echo.Context) error {
	snap, err := h.gameManager.Snapshot(c.Param("gameId"))
	if errors.Is(err, manager.ErrGameNotFound) && h.snapshots != nil {
		var cached engine.Snapshot
		if cacheErr := h.snapshots.LoadSnapshot(c.Request().Context(), c.Param("gameId"), &cached); cacheErr == nil {
			c.Response().Header().Set("X-Snapshot-Source", "cache")
			return c.JSON(http.StatusOK, cached)
		}
	}
	if err != nil {
		return h.gameError(err)
	}
	return c.JSON(http.StatusOK, snap)
}

// GetOptions lists the commands the caller may issue now
func (h *GameHandler) GetOptions(c echo.Context) error {
	userID, _ := userFrom(c)
	opts, err := h.gameManager.Options(c.Param("gameId"), userID)
	if err != nil {
		return h.gameError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"options": opts,
	})
}

// PerformAction applies one command for the caller
func (h *GameHandler) PerformAction(c echo.Context) error {
	var action models.GameAction
	if err := c.Bind(&action); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&action); err != nil {
		return err
	}

	userID, _ := userFrom(c)
	snap, err := h.gameManager.Execute(c.Param("gameId"), userID, engine.CommandFromAction(action))
	if err != nil {
		h.logger.Debugw("Command rejected", "gameId", c.Param("gameId"), "userId", userID, "type", action.Type, "error", err)
		return h.gameError(err)
	}
	return c.JSON(http.StatusOK, snap)
}
