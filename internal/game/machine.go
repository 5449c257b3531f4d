package game

import "time"

// JoinOutcome reports what a join command did to the aggregate.
type JoinOutcome struct {
	Player      *Player
	Reconnected bool
	// GameMaster is set when the join caused a (re)assignment, e.g. the
	// first player returning to a fully disconnected session.
	GameMaster *Player
}

// RoundEnd captures a round-ending transition. GameMaster is the player the
// role rotated to, nil when nobody is connected.
type RoundEnd struct {
	Reason     string
	Winner     string
	Answer     string
	GameMaster *Player
}

// GuessOutcome reports the result of a single guess submission. End is
// non-nil when the guess terminated the round (correct answer or last
// outstanding attempt spent).
type GuessOutcome struct {
	Correct      bool
	AttemptsLeft int
	End          *RoundEnd
}

// DisconnectOutcome reports the effects of a connection going away.
type DisconnectOutcome struct {
	Player        *Player
	WasGameMaster bool
	// GameMaster is set when the role was reassigned outside a round end.
	GameMaster *Player
	// End is set when the disconnect force-ended an in-progress round.
	End *RoundEnd
}

// Join adds a new player or reconnects an existing one, keyed by username.
// Reconnection preserves score and attempts and only swaps the connection
// identity. New players are rejected while a round is in progress.
func Join(s *Session, username, connectionID string, now time.Time) (JoinOutcome, error) {
	out := JoinOutcome{}
	if existing := s.PlayerByUsername(username); existing != nil {
		previous := existing.ConnectionID
		existing.ConnectionID = connectionID
		existing.Connected = true
		existing.LastActivityAt = now
		if s.GameMasterID == previous {
			s.GameMasterID = connectionID
		}
		out.Player = existing
		out.Reconnected = true
	} else {
		if s.Status == StatusInProgress {
			return out, conflict("cannot join while a round is in progress")
		}
		s.Players = append(s.Players, Player{
			ConnectionID:   connectionID,
			Username:       username,
			Connected:      true,
			LastActivityAt: now,
		})
		out.Player = &s.Players[len(s.Players)-1]
	}
	if gm := s.GameMaster(); gm == nil || !gm.Connected {
		out.GameMaster = rotateGameMaster(s, now)
	}
	s.UpdatedAt = now
	return out, nil
}

// SetQuestion stores the next round's question and normalized answer.
// Only the game master may configure the round, and only while waiting.
func SetQuestion(s *Session, callerID, question, answer string, now time.Time) error {
	if s.Status != StatusWaiting {
		return conflict("question can only be set between rounds")
	}
	if callerID != s.GameMasterID {
		return authorization("only the game master can set the question")
	}
	s.CurrentQuestion = question
	s.CurrentAnswer = NormalizeAnswer(answer)
	if caller := s.PlayerByConnection(callerID); caller != nil {
		caller.LastActivityAt = now
	}
	s.UpdatedAt = now
	return nil
}

// StartRound moves the session from waiting to in progress. The caller
// arms the round timer after a nil return.
func StartRound(s *Session, callerID string, now time.Time) error {
	switch s.Status {
	case StatusInProgress:
		return conflict("round already in progress")
	case StatusEnded:
		return conflict("round has ended, start the next round instead")
	}
	if s.RequiresGameMaster || s.GameMasterID == "" {
		return conflict("session has no game master")
	}
	if callerID != s.GameMasterID {
		return authorization("only the game master can start the round")
	}
	if s.ConnectedCount() < 2 {
		return conflict("need at least 2 connected players")
	}
	if s.CurrentQuestion == "" || s.CurrentAnswer == "" {
		return conflict("question and answer must be set first")
	}
	for i := range s.Players {
		s.Players[i].AttemptsUsed = 0
	}
	s.Winner = ""
	s.Status = StatusInProgress
	at := now
	s.RoundStartedAt = &at
	if caller := s.PlayerByConnection(callerID); caller != nil {
		caller.LastActivityAt = now
	}
	s.UpdatedAt = now
	return nil
}

// SubmitGuess spends one attempt and compares the normalized guess against
// the stored answer.
func SubmitGuess(s *Session, callerID, guess string, now time.Time) (GuessOutcome, error) {
	out := GuessOutcome{}
	if s.Status != StatusInProgress {
		return out, conflict("no round in progress")
	}
	player := s.PlayerByConnection(callerID)
	if player == nil {
		return out, NewNotFound("player", callerID)
	}
	if callerID == s.GameMasterID {
		return out, authorization("the game master cannot guess")
	}
	if !player.Connected {
		return out, conflict("player is not connected")
	}
	if player.AttemptsUsed >= MaxAttempts {
		return out, conflict("no attempts left")
	}
	player.AttemptsUsed++
	player.LastActivityAt = now
	s.UpdatedAt = now

	if NormalizeAnswer(guess) == s.CurrentAnswer {
		player.Score += WinnerScore
		s.Winner = player.Username
		out.Correct = true
		out.End = endRound(s, EndReasonWinner, now)
		return out, nil
	}
	out.AttemptsLeft = MaxAttempts - player.AttemptsUsed
	if allAttemptsExhausted(s) {
		out.End = endRound(s, EndReasonAllAttempts, now)
	}
	return out, nil
}

// StartNextRound resets an ended session back to waiting. Only the current
// (post-rotation) game master may advance.
func StartNextRound(s *Session, callerID string, now time.Time) error {
	if s.Status != StatusEnded {
		return conflict("no ended round to advance from")
	}
	if s.RequiresGameMaster || s.GameMasterID == "" {
		return conflict("session has no game master")
	}
	if callerID != s.GameMasterID {
		return authorization("only the game master can start the next round")
	}
	s.Status = StatusWaiting
	s.CurrentQuestion = ""
	s.CurrentAnswer = ""
	s.Winner = ""
	s.RoundStartedAt = nil
	for i := range s.Players {
		s.Players[i].AttemptsUsed = 0
	}
	if caller := s.PlayerByConnection(callerID); caller != nil {
		caller.LastActivityAt = now
	}
	s.UpdatedAt = now
	return nil
}

// Disconnect marks the player behind the connection as gone. A departing
// game master is replaced immediately; if a round was running it is
// force-ended with reason "timeout".
func Disconnect(s *Session, connectionID string, now time.Time) DisconnectOutcome {
	out := DisconnectOutcome{}
	player := s.PlayerByConnection(connectionID)
	if player == nil {
		return out
	}
	player.Connected = false
	player.LastActivityAt = now
	s.UpdatedAt = now
	out.Player = player
	out.WasGameMaster = s.GameMasterID == connectionID

	switch {
	case out.WasGameMaster && s.Status == StatusInProgress:
		out.End = endRound(s, EndReasonTimeout, now)
	case out.WasGameMaster:
		out.GameMaster = rotateGameMaster(s, now)
	case s.Status == StatusInProgress && allAttemptsExhausted(s):
		// The departing player may have held the only outstanding attempts.
		out.End = endRound(s, EndReasonAllAttempts, now)
	}
	return out
}

// ExpireRound is the timer-fire transition. It re-checks the status so a
// round resolved in the same instant wins over the timer.
func ExpireRound(s *Session, now time.Time) (*RoundEnd, bool) {
	if s.Status != StatusInProgress {
		return nil, false
	}
	return endRound(s, EndReasonTimeout, now), true
}

// endRound couples round termination with game master rotation: every
// trigger lands here, and the status is (re)set to ended unconditionally.
func endRound(s *Session, reason string, now time.Time) *RoundEnd {
	end := &RoundEnd{
		Reason: reason,
		Winner: s.Winner,
		Answer: s.CurrentAnswer,
	}
	end.GameMaster = rotateGameMaster(s, now)
	s.Status = StatusEnded
	s.UpdatedAt = now
	return end
}

// allAttemptsExhausted reports whether every connected non-game-master
// player has spent all attempts. At least one such player must exist, so a
// session reduced to only its game master keeps running until the timer.
func allAttemptsExhausted(s *Session) bool {
	guessers := 0
	for i := range s.Players {
		p := &s.Players[i]
		if !p.Connected || p.ConnectionID == s.GameMasterID {
			continue
		}
		guessers++
		if p.AttemptsUsed < MaxAttempts {
			return false
		}
	}
	return guessers > 0
}
