package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/api/middleware/auth"
	"github.com/daisywatson/monopoly-game/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: "test-secret", Expiration: 1}}
}

func TestGuestIssuesToken(t *testing.T) {
	h := NewAuthHandler(testConfig(), zap.NewNop().Sugar())
	e := newTestEcho()

	rec, err := call(e, h.Guest, http.MethodPost, "", "", `{"name":"  Ann  "}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Ann", resp.Name)
	assert.NotEmpty(t, resp.UserID)

	claims, err := auth.ParseToken(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
	assert.Equal(t, "Ann", claims.Name)
}

func TestGuestNeedsName(t *testing.T) {
	h := NewAuthHandler(testConfig(), zap.NewNop().Sugar())
	e := newTestEcho()

	_, err := call(e, h.Guest, http.MethodPost, "", "", `{"name":"   "}`)
	assertHTTPError(t, err, http.StatusBadRequest, "")
}

func TestRefreshToken(t *testing.T) {
	h := NewAuthHandler(testConfig(), zap.NewNop().Sugar())
	e := newTestEcho()

	rec, err := call(e, h.RefreshToken, http.MethodGet, "", "u1", "")
	require.NoError(t, err)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, "Name of u1", resp.Name)

	_, err = call(e, h.RefreshToken, http.MethodGet, "", "", "")
	assertHTTPError(t, err, http.StatusUnauthorized, "")
}
