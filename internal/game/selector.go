package game

import (
	"sort"
	"time"
)

// NextGameMaster picks the next game master from the connected players.
// Candidates are ordered by LastGameMasterAt ascending with nil sorting
// before any timestamp, ties broken by join order. A still-connected current
// game master is excluded from candidacy unless nobody else is available.
// Returns nil when no players are connected.
func NextGameMaster(players []Player, currentID string) *Player {
	type candidate struct {
		index  int
		player *Player
	}
	connected := make([]candidate, 0, len(players))
	for i := range players {
		if players[i].Connected {
			connected = append(connected, candidate{index: i, player: &players[i]})
		}
	}
	if len(connected) == 0 {
		return nil
	}
	sort.SliceStable(connected, func(a, b int) bool {
		return gameMasterBefore(connected[a].player.LastGameMasterAt, connected[b].player.LastGameMasterAt)
	})
	for _, c := range connected {
		if c.player.ConnectionID != currentID {
			return c.player
		}
	}
	return connected[0].player
}

func gameMasterBefore(a, b *time.Time) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.Before(*b)
}

// rotateGameMaster applies the selector to the session and stamps the chosen
// player. With no connected players the session is flagged as needing a game
// master and the role is left unset.
func rotateGameMaster(s *Session, now time.Time) *Player {
	chosen := NextGameMaster(s.Players, s.GameMasterID)
	if chosen == nil {
		s.GameMasterID = ""
		s.RequiresGameMaster = true
		return nil
	}
	s.GameMasterID = chosen.ConnectionID
	s.RequiresGameMaster = false
	at := now
	chosen.LastGameMasterAt = &at
	return chosen
}
