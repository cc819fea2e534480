package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/api/middleware/auth"
	"github.com/daisywatson/monopoly-game/internal/config"
	"github.com/daisywatson/monopoly-game/internal/game/engine"
	"github.com/daisywatson/monopoly-game/internal/game/manager"
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	if err := tv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

// call runs handler as user with the gameId path parameter and a JSON body
func call(e *echo.Echo, handler echo.HandlerFunc, method, gameID, userID, body string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if gameID != "" {
		c.SetParamNames("gameId")
		c.SetParamValues(gameID)
	}
	if userID != "" {
		c.Set(auth.ContextUserID, userID)
		c.Set(auth.ContextUserName, "Name of "+userID)
	}
	return rec, handler(c)
}

func assertHTTPError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, status, he.Code)
	if code != "" {
		resp, ok := he.Message.(ErrorResponse)
		require.True(t, ok, "message %v", he.Message)
		assert.Equal(t, code, resp.Code)
	}
}

func newGameHandler(t *testing.T) (*GameHandler, *manager.GameManager) {
	t.Helper()
	cfg := config.GameConfig{MaxPlayers: 4, MinPlayers: 2, DefaultDifficulty: "easy", CommandRate: 5, CommandBurst: 10}
	gm := manager.NewGameManager(context.Background(), cfg, zap.NewNop().Sugar(), nil, nil, nil,
		manager.WithSessionOptions(engine.WithSeed(3)))
	return NewGameHandler(gm, nil, zap.NewNop().Sugar()), gm
}

func TestCreateGame(t *testing.T) {
	h, _ := newGameHandler(t)
	e := newTestEcho()

	rec, err := call(e, h.CreateGame, http.MethodPost, "", "u1", `{"humans":2,"computers":1,"hostColor":"green"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var info manager.GameInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, models.GameStatusLobby, info.Status)
	assert.Len(t, info.Code, 6)
	require.Len(t, info.Seats, 3)
	assert.Equal(t, "Name of u1", info.Seats[0].Name)
	assert.Equal(t, "green", info.Seats[0].Color)
	assert.Equal(t, "u1", info.HostID)
}

func TestCreateGameRejectsBadRequests(t *testing.T) {
	h, _ := newGameHandler(t)
	e := newTestEcho()

	_, err := call(e, h.CreateGame, http.MethodPost, "", "u1", `{"humans":0,"computers":2}`)
	assertHTTPError(t, err, http.StatusBadRequest, "")

	_, err = call(e, h.CreateGame, http.MethodPost, "", "u1", `{"humans":1,"computers":1,"hostColor":"purple"}`)
	assertHTTPError(t, err, http.StatusBadRequest, "")

	_, err = call(e, h.CreateGame, http.MethodPost, "", "u1", `{"humans":3,"computers":2}`)
	assertHTTPError(t, err, http.StatusBadRequest, "invalid_options")

	_, err = call(e, h.CreateGame, http.MethodPost, "", "u1", `{"humans":`)
	assertHTTPError(t, err, http.StatusBadRequest, "")
}

func TestJoinAndLeave(t *testing.T) {
	h, gm := newGameHandler(t)
	e := newTestEcho()
	info, err := gm.CreateGame("u1", manager.CreateOptions{Humans: 3})
	require.NoError(t, err)

	rec, err := call(e, h.JoinGame, http.MethodPost, strings.ToLower(info.Code), "u2", `{"color":"blue"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, err = call(e, h.ListGames, http.MethodGet, "", "u9", "")
	require.NoError(t, err)
	var list struct {
		Games []manager.GameInfo `json:"games"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Games, 1)
	assert.Equal(t, info.ID, list.Games[0].ID)

	_, err = call(e, h.JoinGame, http.MethodPost, info.ID, "u3", `{"color":"blue"}`)
	assertHTTPError(t, err, http.StatusConflict, "color_taken")

	rec, err = call(e, h.LeaveGame, http.MethodPost, info.ID, "u2", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err = call(e, h.LeaveGame, http.MethodPost, info.ID, "u2", "")
	assertHTTPError(t, err, http.StatusForbidden, "not_in_game")
}

func TestJoinFullGame(t *testing.T) {
	h, gm := newGameHandler(t)
	e := newTestEcho()
	info, err := gm.CreateGame("u1", manager.CreateOptions{Humans: 2})
	require.NoError(t, err)

	rec, err := call(e, h.JoinGame, http.MethodPost, info.ID, "u2", `{}`)
	require.NoError(t, err)
	var joined manager.GameInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &joined))
	assert.Equal(t, models.GameStatusActive, joined.Status)
	names := map[string]string{}
	for _, seat := range joined.Seats {
		names[seat.UserID] = seat.Name
	}
	assert.Equal(t, "Name of u2", names["u2"], "name falls back to the token")

	_, err = call(e, h.JoinGame, http.MethodPost, info.ID, "u3", `{}`)
	assertHTTPError(t, err, http.StatusConflict, "wrong_game_state")
}

func TestUnknownGame(t *testing.T) {
	h, _ := newGameHandler(t)
	e := newTestEcho()

	_, err := call(e, h.GetGameDetails, http.MethodGet, "ZZZZZZ", "u1", "")
	assertHTTPError(t, err, http.StatusNotFound, "game_not_found")

	_, err = call(e, h.GetGameState, http.MethodGet, "nope", "u1", "")
	assertHTTPError(t, err, http.StatusNotFound, "game_not_found")
}

type MockSnapshots struct {
	mock.Mock
}

func (m *MockSnapshots) LoadSnapshot(ctx context.Context, gameID string, out interface{}) error {
	return m.Called(ctx, gameID, out).Error(0)
}

func TestStateFallsBackToCache(t *testing.T) {
	_, gm := newGameHandler(t)
	snapshots := new(MockSnapshots)
	snapshots.On("LoadSnapshot", mock.Anything, "old-game", mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(2).(*engine.Snapshot).Turn = 17
		}).
		Return(nil)
	snapshots.On("LoadSnapshot", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("snapshot not found"))
	h := NewGameHandler(gm, snapshots, zap.NewNop().Sugar())
	e := newTestEcho()

	rec, err := call(e, h.GetGameState, http.MethodGet, "old-game", "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "cache", rec.Header().Get("X-Snapshot-Source"))
	var snap engine.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 17, snap.Turn)

	_, err = call(e, h.GetGameState, http.MethodGet, "never-existed", "u1", "")
	assertHTTPError(t, err, http.StatusNotFound, "game_not_found")
}

func TestStateOfLobbyGame(t *testing.T) {
	h, gm := newGameHandler(t)
	e := newTestEcho()
	info, err := gm.CreateGame("u1", manager.CreateOptions{Humans: 2})
	require.NoError(t, err)

	_, err = call(e, h.GetGameState, http.MethodGet, info.ID, "u1", "")
	assertHTTPError(t, err, http.StatusConflict, "wrong_game_state")

	_, err = call(e, h.PerformAction, http.MethodPost, info.ID, "u1", `{"type":"roll_and_move"}`)
	assertHTTPError(t, err, http.StatusConflict, "wrong_game_state")
}

func TestPerformAction(t *testing.T) {
	h, gm := newGameHandler(t)
	e := newTestEcho()
	info, err := gm.CreateGame("u1", manager.CreateOptions{Humans: 1, Computers: 1, HostName: "Ann"})
	require.NoError(t, err)
	require.Equal(t, models.GameStatusActive, info.Status)

	rec, err := call(e, h.GetOptions, http.MethodGet, info.ID, "u1", "")
	require.NoError(t, err)
	var listed struct {
		Options []engine.Action `json:"options"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.NotEmpty(t, listed.Options)

	pick := listed.Options[0]
	body := fmt.Sprintf(`{"type":%q,"square":%d,"amount":%d,"choice":%q}`, pick.Command, pick.Square, pick.Amount, pick.Choice)
	rec, err = call(e, h.PerformAction, http.MethodPost, info.ID, "u1", body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var snap engine.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.NotEmpty(t, snap.Players)

	_, err = call(e, h.PerformAction, http.MethodPost, info.ID, "u2", `{"type":"end_turn"}`)
	assertHTTPError(t, err, http.StatusForbidden, "not_in_game")

	_, err = call(e, h.PerformAction, http.MethodPost, info.ID, "u1", `{"type":"mortgage","square":44}`)
	assertHTTPError(t, err, http.StatusBadRequest, "")

	_, err = call(e, h.GetOptions, http.MethodGet, info.ID, "u2", "")
	assertHTTPError(t, err, http.StatusForbidden, "not_in_game")
}

func TestRestartRequiresHost(t *testing.T) {
	h, gm := newGameHandler(t)
	e := newTestEcho()
	info, err := gm.CreateGame("u1", manager.CreateOptions{Humans: 1, Computers: 1})
	require.NoError(t, err)

	_, err = call(e, h.RestartGame, http.MethodPost, info.ID, "u2", "")
	assertHTTPError(t, err, http.StatusForbidden, "not_host")

	_, err = call(e, h.RestartGame, http.MethodPost, info.ID, "u1", "")
	assertHTTPError(t, err, http.StatusConflict, "wrong_game_state")
}

func TestGameErrorStatus(t *testing.T) {
	h, _ := newGameHandler(t)
	tests := []struct {
		err    error
		status int
	}{
		{manager.ErrNotYourTurn, http.StatusForbidden},
		{fmt.Errorf("wrapped: %w", manager.ErrGameFull), http.StatusConflict},
		{engine.ErrInvalidCommand, http.StatusConflict},
		{engine.ErrInvalidInput, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			var he *echo.HTTPError
			require.ErrorAs(t, h.gameError(tt.err), &he)
			assert.Equal(t, tt.status, he.Code)
		})
	}

	var he *echo.HTTPError
	require.ErrorAs(t, h.gameError(errors.New("disk on fire")), &he)
	assert.Equal(t, "internal error", he.Message.(ErrorResponse).Message)
}
