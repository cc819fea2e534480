package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/daisywatson/monopoly-game/internal/api/middleware/auth"
	"github.com/daisywatson/monopoly-game/internal/config"
)

// AuthHandler issues player tokens
type AuthHandler struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(cfg *config.Config, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		cfg:    cfg,
		logger: logger,
	}
}

// GuestRequest asks for a token under a display name
type GuestRequest struct {
	Name string `json:"name" validate:"required,max=24"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

// Guest creates a new player identity and returns its token
func (h *AuthHandler) Guest(c echo.Context) error {
	var req GuestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID := uuid.New().String()
	return h.issue(c, http.StatusCreated, userID, req.Name)
}

// RefreshToken reissues the caller's token with a fresh expiry
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	userID, name := userFrom(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
	}
	return h.issue(c, http.StatusOK, userID, name)
}

func (h *AuthHandler) issue(c echo.Context, status int, userID, name string) error {
	token, err := auth.GenerateJWT(userID, name, h.cfg.JWT.Secret, h.cfg.JWT.Expiration)
	if err != nil {
		h.logger.Errorf("Failed to generate JWT: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(status, AuthResponse{
		UserID: userID,
		Name:   name,
		Token:  token,
	})
}
