package manager

import (
	"errors"

	"github.com/daisywatson/monopoly-game/internal/game/engine"
)

// ErrorCode names an error for clients
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrGameNotFound):
		return "game_not_found"
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrNotInGame):
		return "not_in_game"
	case errors.Is(err, ErrGameNotActive), errors.Is(err, ErrGameNotInLobby):
		return "wrong_game_state"
	case errors.Is(err, ErrGameFull):
		return "game_full"
	case errors.Is(err, ErrColorTaken):
		return "color_taken"
	case errors.Is(err, ErrNotHost):
		return "not_host"
	case errors.Is(err, ErrInvalidOptions):
		return "invalid_options"
	case errors.Is(err, engine.ErrInvalidCommand):
		return "invalid_command"
	case errors.Is(err, engine.ErrInvalidInput):
		return "invalid_input"
	}
	return "internal_error"
}
