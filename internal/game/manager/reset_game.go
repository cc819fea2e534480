package manager

import (
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

// RestartGame starts a new session for a finished game with the same
// players and settings. Only the host may restart.
func (gm *GameManager) RestartGame(ref, requestingUserID string) (GameInfo, error) {
	game, err := gm.lookup(ref)
	if err != nil {
		return GameInfo{}, err
	}

	game.mutex.Lock()
	defer game.mutex.Unlock()

	if requestingUserID != game.HostID {
		return GameInfo{}, ErrNotHost
	}
	if game.Status != models.GameStatusCompleted {
		return GameInfo{}, ErrGameNotActive
	}

	// colors chosen by the engine are kept so pieces look the same
	for i := range game.seats {
		if game.seats[i].Color == "" {
			if p := game.playerByKeyOrName(game.seats[i]); p != nil {
				game.seats[i].Color = p.Color
			}
		}
	}
	if err := gm.startLocked(game); err != nil {
		return GameInfo{}, err
	}

	gm.logger.Infof("Game %s restarted by host %s", game.ID, requestingUserID)
	return game.info(), nil
}
