package game

import (
	"errors"
	"testing"
	"time"
)

func testSession(t *testing.T) (*Session, time.Time) {
	t.Helper()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := NewSession("abc12", "Ada", "c1", now)
	if _, err := Join(sess, "Ben", "c2", now); err != nil {
		t.Fatalf("join: %v", err)
	}
	return sess, now
}

func startTestRound(t *testing.T, sess *Session, now time.Time) {
	t.Helper()
	if err := SetQuestion(sess, sess.GameMasterID, "capital of france", "Paris", now); err != nil {
		t.Fatalf("set question: %v", err)
	}
	if err := StartRound(sess, sess.GameMasterID, now); err != nil {
		t.Fatalf("start round: %v", err)
	}
}

func TestNewSessionCreatorIsGameMaster(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := NewSession("abc12", "Ada", "c1", now)
	if sess.Status != StatusWaiting {
		t.Fatalf("expected waiting status, got %s", sess.Status)
	}
	if sess.GameMasterID != "c1" {
		t.Fatalf("expected creator as game master, got %q", sess.GameMasterID)
	}
	if sess.Players[0].LastGameMasterAt == nil {
		t.Fatalf("expected creator stamped as game master")
	}
}

func TestSetQuestionRequiresGameMaster(t *testing.T) {
	sess, now := testSession(t)
	err := SetQuestion(sess, "c2", "q", "a", now)
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestSetQuestionNormalizesAnswer(t *testing.T) {
	sess, now := testSession(t)
	if err := SetQuestion(sess, "c1", "capital of france", "  Paris ", now); err != nil {
		t.Fatalf("set question: %v", err)
	}
	if sess.CurrentAnswer != "paris" {
		t.Fatalf("expected normalized answer, got %q", sess.CurrentAnswer)
	}
}

func TestStartRoundNeedsTwoConnectedPlayers(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := NewSession("abc12", "Ada", "c1", now)
	if err := SetQuestion(sess, "c1", "q", "a", now); err != nil {
		t.Fatalf("set question: %v", err)
	}
	err := StartRound(sess, "c1", now)
	var conflictErr *StateConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestStartRoundNeedsQuestion(t *testing.T) {
	sess, now := testSession(t)
	err := StartRound(sess, sess.GameMasterID, now)
	var conflictErr *StateConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestStartRoundResetsAttempts(t *testing.T) {
	sess, now := testSession(t)
	sess.Players[1].AttemptsUsed = 2
	startTestRound(t, sess, now)
	if sess.Status != StatusInProgress {
		t.Fatalf("expected in progress, got %s", sess.Status)
	}
	if sess.RoundStartedAt == nil {
		t.Fatalf("expected round start timestamp")
	}
	for _, p := range sess.Players {
		if p.AttemptsUsed != 0 {
			t.Fatalf("expected attempts reset for %s, got %d", p.Username, p.AttemptsUsed)
		}
	}
}

func TestWinnerScenario(t *testing.T) {
	sess, now := testSession(t)
	if err := SetQuestion(sess, "c1", "capital of france", "paris", now); err != nil {
		t.Fatalf("set question: %v", err)
	}
	if err := StartRound(sess, "c1", now); err != nil {
		t.Fatalf("start round: %v", err)
	}
	out, err := SubmitGuess(sess, "c2", "Paris ", now.Add(time.Second))
	if err != nil {
		t.Fatalf("submit guess: %v", err)
	}
	if !out.Correct {
		t.Fatalf("expected correct guess")
	}
	if out.End == nil || out.End.Reason != EndReasonWinner {
		t.Fatalf("expected winner round end, got %+v", out.End)
	}
	if out.End.Winner != "Ben" {
		t.Fatalf("expected winner Ben, got %q", out.End.Winner)
	}
	if sess.Players[1].Score != WinnerScore {
		t.Fatalf("expected score %d, got %d", WinnerScore, sess.Players[1].Score)
	}
	if sess.Status != StatusEnded {
		t.Fatalf("expected ended, got %s", sess.Status)
	}
	if out.End.GameMaster == nil || out.End.GameMaster.ConnectionID != "c2" {
		t.Fatalf("expected rotation to c2, got %+v", out.End.GameMaster)
	}
}

func TestGameMasterCannotGuess(t *testing.T) {
	sess, now := testSession(t)
	startTestRound(t, sess, now)
	_, err := SubmitGuess(sess, sess.GameMasterID, "paris", now)
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestGuessAttemptsCapAtThree(t *testing.T) {
	sess, now := testSession(t)
	startTestRound(t, sess, now)
	if _, err := Join(sess, "Cam", "c3", now); err == nil {
		t.Fatalf("expected mid-round join rejection")
	}
	for i := 0; i < MaxAttempts-1; i++ {
		out, err := SubmitGuess(sess, "c2", "wrong", now)
		if err != nil {
			t.Fatalf("guess %d: %v", i, err)
		}
		if out.Correct {
			t.Fatalf("guess %d unexpectedly correct", i)
		}
		if out.AttemptsLeft != MaxAttempts-i-1 {
			t.Fatalf("guess %d: expected %d attempts left, got %d", i, MaxAttempts-i-1, out.AttemptsLeft)
		}
	}
	out, err := SubmitGuess(sess, "c2", "wrong", now)
	if err != nil {
		t.Fatalf("final guess: %v", err)
	}
	if out.End == nil || out.End.Reason != EndReasonAllAttempts {
		t.Fatalf("expected all_attempts_used round end, got %+v", out.End)
	}
	if _, err := SubmitGuess(sess, "c2", "wrong", now); err == nil {
		t.Fatalf("expected rejection after round end")
	}
}

func TestTimerExpiryEndsRoundOnce(t *testing.T) {
	sess, now := testSession(t)
	startTestRound(t, sess, now)
	end, ok := ExpireRound(sess, now.Add(time.Minute))
	if !ok || end == nil {
		t.Fatalf("expected round expiry")
	}
	if end.Reason != EndReasonTimeout {
		t.Fatalf("expected timeout reason, got %s", end.Reason)
	}
	if sess.Status != StatusEnded {
		t.Fatalf("expected ended, got %s", sess.Status)
	}
	if _, ok := ExpireRound(sess, now.Add(2*time.Minute)); ok {
		t.Fatalf("expected second expiry to be a no-op")
	}
}

func TestGameMasterDisconnectMidRound(t *testing.T) {
	sess, now := testSession(t)
	startTestRound(t, sess, now)
	out := Disconnect(sess, "c1", now.Add(time.Second))
	if !out.WasGameMaster {
		t.Fatalf("expected game master disconnect")
	}
	if out.End == nil || out.End.Reason != EndReasonTimeout {
		t.Fatalf("expected forced timeout end, got %+v", out.End)
	}
	if out.End.GameMaster == nil || out.End.GameMaster.ConnectionID != "c2" {
		t.Fatalf("expected rotation to remaining player, got %+v", out.End.GameMaster)
	}
	if sess.Status != StatusEnded {
		t.Fatalf("expected ended, got %s", sess.Status)
	}
}

func TestDisconnectOfAllPlayersRequiresGameMaster(t *testing.T) {
	sess, now := testSession(t)
	Disconnect(sess, "c2", now)
	out := Disconnect(sess, "c1", now)
	if out.End != nil {
		t.Fatalf("expected no round end in waiting state")
	}
	if !sess.RequiresGameMaster || sess.GameMasterID != "" {
		t.Fatalf("expected session flagged as needing a game master")
	}
	if err := StartRound(sess, "c1", now); err == nil {
		t.Fatalf("expected start rejection without a game master")
	}
}

func TestReconnectionPreservesScoreAndAttempts(t *testing.T) {
	sess, now := testSession(t)
	sess.Players[1].Score = 20
	sess.Players[1].AttemptsUsed = 2
	out, err := Join(sess, "ben", "c9", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if !out.Reconnected {
		t.Fatalf("expected reconnection")
	}
	if out.Player.ConnectionID != "c9" {
		t.Fatalf("expected connection id swap, got %s", out.Player.ConnectionID)
	}
	if out.Player.Score != 20 || out.Player.AttemptsUsed != 2 {
		t.Fatalf("expected preserved progress, got score=%d attempts=%d", out.Player.Score, out.Player.AttemptsUsed)
	}
	if len(sess.Players) != 2 {
		t.Fatalf("expected no duplicate player entry, got %d players", len(sess.Players))
	}
}

func TestReconnectingGameMasterKeepsRole(t *testing.T) {
	sess, now := testSession(t)
	out, err := Join(sess, "Ada", "c7", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if !out.Reconnected {
		t.Fatalf("expected reconnection")
	}
	if sess.GameMasterID != "c7" {
		t.Fatalf("expected game master id to follow reconnect, got %s", sess.GameMasterID)
	}
}

func TestJoinAssignsGameMasterToRevivedSession(t *testing.T) {
	sess, now := testSession(t)
	Disconnect(sess, "c1", now)
	Disconnect(sess, "c2", now)
	out, err := Join(sess, "Ben", "c5", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if out.GameMaster == nil || out.GameMaster.ConnectionID != "c5" {
		t.Fatalf("expected returning player to become game master, got %+v", out.GameMaster)
	}
	if sess.RequiresGameMaster {
		t.Fatalf("expected requiresGameMaster cleared")
	}
}

func TestStartNextRoundClearsRoundState(t *testing.T) {
	sess, now := testSession(t)
	startTestRound(t, sess, now)
	out, err := SubmitGuess(sess, "c2", "paris", now)
	if err != nil || out.End == nil {
		t.Fatalf("expected winning guess, err=%v", err)
	}
	gm := sess.GameMasterID
	if err := StartNextRound(sess, "c1", now.Add(time.Second)); err == nil {
		t.Fatalf("expected rejection for previous game master")
	}
	if err := StartNextRound(sess, gm, now.Add(time.Second)); err != nil {
		t.Fatalf("start next round: %v", err)
	}
	if sess.Status != StatusWaiting {
		t.Fatalf("expected waiting, got %s", sess.Status)
	}
	if sess.CurrentQuestion != "" || sess.CurrentAnswer != "" || sess.Winner != "" || sess.RoundStartedAt != nil {
		t.Fatalf("expected round state cleared")
	}
}

func TestNonGameMasterDisconnectExhaustsAttempts(t *testing.T) {
	sess, now := testSession(t)
	if _, err := Join(sess, "Cam", "c3", now); err != nil {
		t.Fatalf("join: %v", err)
	}
	startTestRound(t, sess, now)
	for i := 0; i < MaxAttempts; i++ {
		if _, err := SubmitGuess(sess, "c2", "wrong", now); err != nil {
			t.Fatalf("guess %d: %v", i, err)
		}
	}
	if sess.Status != StatusInProgress {
		t.Fatalf("expected round still running while Cam has attempts")
	}
	out := Disconnect(sess, "c3", now)
	if out.End == nil || out.End.Reason != EndReasonAllAttempts {
		t.Fatalf("expected all_attempts_used end after disconnect, got %+v", out.End)
	}
}

func TestSingleGameMasterInvariant(t *testing.T) {
	sess, now := testSession(t)
	if _, err := Join(sess, "Cam", "c3", now); err != nil {
		t.Fatalf("join: %v", err)
	}
	startTestRound(t, sess, now)
	if _, err := SubmitGuess(sess, "c2", "paris", now); err != nil {
		t.Fatalf("guess: %v", err)
	}
	holders := 0
	for _, p := range sess.Players {
		if p.Connected && p.ConnectionID == sess.GameMasterID {
			holders++
		}
	}
	if holders != 1 {
		t.Fatalf("expected exactly one connected game master, got %d", holders)
	}
}
