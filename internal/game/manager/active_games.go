package manager

import (
	"context"
	"sort"
	"time"

	"github.com/daisywatson/monopoly-game/internal/game/models"
)

// ListLobbyGames returns the games still waiting for players, oldest first
func (gm *GameManager) ListLobbyGames() []GameInfo {
	gm.activeGamesMutex.RLock()
	games := make([]*GameSession, 0, len(gm.activeGames))
	for _, game := range gm.activeGames {
		games = append(games, game)
	}
	gm.activeGamesMutex.RUnlock()

	lobby := []GameInfo{}
	for _, game := range games {
		game.mutex.Lock()
		if game.Status == models.GameStatusLobby {
			lobby = append(lobby, game.info())
		}
		game.mutex.Unlock()
	}
	sort.Slice(lobby, func(i, j int) bool {
		return lobby[i].CreatedAt.Before(lobby[j].CreatedAt)
	})
	return lobby
}

// CountByStatus tallies hosted games per status
func (gm *GameManager) CountByStatus() map[models.GameStatus]int {
	gm.activeGamesMutex.RLock()
	defer gm.activeGamesMutex.RUnlock()

	counts := make(map[models.GameStatus]int)
	for _, game := range gm.activeGames {
		game.mutex.Lock()
		counts[game.Status]++
		game.mutex.Unlock()
	}
	return counts
}

// Run removes idle games until ctx is done
func (gm *GameManager) Run(ctx context.Context) {
	ticker := time.NewTicker(3 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := gm.CleanupIdleGames(); len(removed) > 0 {
				gm.logger.Infof("Removed %d idle games", len(removed))
			}
		}
	}
}

// CleanupIdleGames drops every game without activity for the configured
// expiry. Running games are abandoned first.
func (gm *GameManager) CleanupIdleGames() []string {
	threshold := gm.now().Add(-time.Duration(gm.cfg.IdleGameExpiry) * time.Hour)

	gm.activeGamesMutex.Lock()
	var idle []*GameSession
	for id, game := range gm.activeGames {
		game.mutex.Lock()
		if game.LastActivity.Before(threshold) {
			idle = append(idle, game)
			delete(gm.activeGames, id)
			delete(gm.codes, game.Code)
		}
		game.mutex.Unlock()
	}
	gm.activeGamesMutex.Unlock()

	removed := make([]string, 0, len(idle))
	for _, game := range idle {
		game.mutex.Lock()
		if game.timer != nil {
			game.timer.Stop()
			game.timer = nil
		}
		if game.Status == models.GameStatusActive {
			game.Status = models.GameStatusAbandoned
		}
		game.mutex.Unlock()

		if gm.cache != nil {
			ctx, cancel := context.WithTimeout(gm.ctx, publishTimeout)
			if err := gm.cache.DeleteSnapshot(ctx, game.ID); err != nil {
				gm.logger.Warnw("Failed to drop cached snapshot", "gameId", game.ID, "error", err)
			}
			cancel()
		}
		gm.logger.Infof("Removing idle game %s with status %s", game.ID, game.Status)
		removed = append(removed, game.ID)
	}
	return removed
}
