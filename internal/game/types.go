package game

import (
	"strings"
	"time"
)

const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusEnded      = "ended"
)

const (
	EndReasonWinner      = "winner"
	EndReasonTimeout     = "timeout"
	EndReasonAllAttempts = "all_attempts_used"
)

const (
	MaxAttempts = 3
	WinnerScore = 10
)

// Player is owned by exactly one session. Username is the identity key;
// ConnectionID changes across reconnects.
type Player struct {
	ConnectionID     string
	Username         string
	Score            int
	AttemptsUsed     int
	Connected        bool
	LastGameMasterAt *time.Time
	LastActivityAt   time.Time
}

// Session is the per-room aggregate. Players keep insertion order.
type Session struct {
	ID                 string
	Status             string
	Players            []Player
	GameMasterID       string
	RequiresGameMaster bool
	CurrentQuestion    string
	CurrentAnswer      string
	Winner             string
	RoundStartedAt     *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewSession creates a session in the waiting state with its creator as the
// single connected player and game master.
func NewSession(id, username, connectionID string, now time.Time) *Session {
	sess := &Session{
		ID:        id,
		Status:    StatusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
		Players: []Player{{
			ConnectionID:   connectionID,
			Username:       username,
			Connected:      true,
			LastActivityAt: now,
		}},
	}
	sess.GameMasterID = connectionID
	gm := &sess.Players[0]
	at := now
	gm.LastGameMasterAt = &at
	return sess
}

func (s *Session) PlayerByConnection(connectionID string) *Player {
	for i := range s.Players {
		if s.Players[i].ConnectionID == connectionID {
			return &s.Players[i]
		}
	}
	return nil
}

func (s *Session) PlayerByUsername(username string) *Player {
	for i := range s.Players {
		if strings.EqualFold(s.Players[i].Username, username) {
			return &s.Players[i]
		}
	}
	return nil
}

func (s *Session) GameMaster() *Player {
	if s.GameMasterID == "" {
		return nil
	}
	return s.PlayerByConnection(s.GameMasterID)
}

func (s *Session) ConnectedCount() int {
	count := 0
	for i := range s.Players {
		if s.Players[i].Connected {
			count++
		}
	}
	return count
}

// Clone deep-copies the aggregate so a failed command never leaks partial
// mutations back into the store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Players = make([]Player, len(s.Players))
	copy(clone.Players, s.Players)
	for i := range clone.Players {
		clone.Players[i].LastGameMasterAt = copyTime(s.Players[i].LastGameMasterAt)
	}
	clone.RoundStartedAt = copyTime(s.RoundStartedAt)
	return &clone
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	value := *t
	return &value
}
