package server

import (
	"errors"
	"log"
	"time"

	"hotseat/internal/config"
	"hotseat/internal/game"
)

// Notifier delivers outbound messages. Subscribe adds a connection to a
// session's broadcast group; broadcasts reach every subscribed
// connection that is still open.
type Notifier interface {
	Subscribe(sessionID, connectionID string)
	ToConnection(connectionID string, msg wsMessage)
	ToSession(sessionID string, msg wsMessage)
}

// Coordinator runs every session command under a per-session-id lock:
// load, apply the transition, persist, then notify. The store never sees
// a half-applied command, and the round timer fires through the same
// lock so a timeout and a winning guess can never both end one round.
type Coordinator struct {
	cfg    config.Config
	store  SessionStore
	timers *roundTimers
	locks  *keyLocks
	notify Notifier
	events EventSink
}

func NewCoordinator(cfg config.Config, store SessionStore, notify Notifier, events EventSink) *Coordinator {
	return &Coordinator{
		cfg:    cfg,
		store:  store,
		timers: newRoundTimers(),
		locks:  newKeyLocks(),
		notify: notify,
		events: events,
	}
}

func (c *Coordinator) load(id string) (*game.Session, error) {
	sess, err := c.store.Load(id)
	if err != nil {
		if errors.Is(err, errSessionNotFound) {
			return nil, game.NewNotFound("session", id)
		}
		return nil, game.NewInternal("load session", err)
	}
	return sess, nil
}

func (c *Coordinator) save(sess *game.Session, now time.Time) error {
	sess.UpdatedAt = now
	if err := c.store.Save(sess); err != nil {
		return game.NewInternal("save session", err)
	}
	return nil
}

func (c *Coordinator) CreateSession(username, sessionID, connectionID string) error {
	name, err := game.ValidateUsername(username)
	if err != nil {
		return err
	}
	id, err := game.ValidateSessionID(sessionID)
	if err != nil {
		return err
	}

	c.locks.lock(id)
	defer c.locks.unlock(id)

	if _, err := c.store.Load(id); err == nil {
		return game.Conflict("session id already in use")
	} else if !errors.Is(err, errSessionNotFound) {
		return game.NewInternal("load session", err)
	}

	now := time.Now().UTC()
	sess := game.NewSession(id, name, connectionID, now)
	if err := c.save(sess, now); err != nil {
		return err
	}
	log.Printf("session created id=%s creator=%s", id, name)
	c.events.Append(id, "session_created", EventPayload{Username: name, GameMasterID: connectionID})

	c.notify.Subscribe(id, connectionID)
	c.notify.ToConnection(connectionID, wsMessage{Type: "session_created", Data: sessionAckPayload{
		SessionID:    id,
		Username:     name,
		IsGameMaster: true,
		Players:      playersPayload(sess),
		GameStatus:   sess.Status,
	}})
	c.notify.ToConnection(connectionID, wsMessage{Type: "game_master_notification", Data: noticePayload{
		Type:    "role",
		Message: "you are the game master, set a question to begin",
	}})
	return nil
}

func (c *Coordinator) JoinSession(username, sessionID, connectionID string) error {
	name, err := game.ValidateUsername(username)
	if err != nil {
		return err
	}
	id, err := game.ValidateSessionID(sessionID)
	if err != nil {
		return err
	}

	c.locks.lock(id)
	defer c.locks.unlock(id)

	sess, err := c.load(id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	out, err := game.Join(sess, name, connectionID, now)
	if err != nil {
		return err
	}
	if err := c.save(sess, now); err != nil {
		return err
	}

	event := "player_joined"
	ack := "session_joined"
	if out.Reconnected {
		event = "player_reconnected"
		ack = "session_reconnected"
	}
	log.Printf("%s session=%s username=%s", event, id, name)
	c.events.Append(id, event, EventPayload{Username: name, Reconnected: out.Reconnected})

	isGM := sess.GameMasterID == connectionID
	payload := sessionAckPayload{
		SessionID:    id,
		Username:     out.Player.Username,
		IsGameMaster: isGM,
		Players:      playersPayload(sess),
		GameStatus:   sess.Status,
	}
	if sess.Status == game.StatusInProgress || isGM {
		payload.CurrentQuestion = sess.CurrentQuestion
	}
	c.notify.Subscribe(id, connectionID)
	c.notify.ToConnection(connectionID, wsMessage{Type: ack, Data: payload})
	c.broadcastPlayers(sess)
	if out.Reconnected {
		c.systemChat(id, out.Player.Username+" reconnected")
	} else {
		c.systemChat(id, out.Player.Username+" joined the session")
	}
	if out.GameMaster != nil {
		c.announceGameMaster(sess, out.GameMaster)
	}
	return nil
}

func (c *Coordinator) SetQuestion(sessionID, connectionID, question, answer string) error {
	q, err := game.ValidateQuestion(question)
	if err != nil {
		return err
	}
	a, err := game.ValidateAnswer(answer)
	if err != nil {
		return err
	}
	id, err := game.ValidateSessionID(sessionID)
	if err != nil {
		return err
	}

	c.locks.lock(id)
	defer c.locks.unlock(id)

	sess, err := c.load(id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := game.SetQuestion(sess, connectionID, q, a, now); err != nil {
		return err
	}
	if err := c.save(sess, now); err != nil {
		return err
	}
	log.Printf("question set session=%s", id)
	c.events.Append(id, "question_set", EventPayload{GameMasterID: connectionID})

	c.notify.ToConnection(connectionID, wsMessage{Type: "game_master_notification", Data: noticePayload{
		Type:    "question_set",
		Message: "question saved, start the game when everyone is ready",
	}})
	c.notify.ToSession(id, wsMessage{Type: "player_notification", Data: noticePayload{
		Type:    "question_set",
		Message: "the game master has set a question",
	}})
	return nil
}

func (c *Coordinator) StartRound(sessionID, connectionID string) error {
	id, err := game.ValidateSessionID(sessionID)
	if err != nil {
		return err
	}

	c.locks.lock(id)
	defer c.locks.unlock(id)

	sess, err := c.load(id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := game.StartRound(sess, connectionID, now); err != nil {
		return err
	}
	if err := c.timers.arm(id, c.cfg.RoundDuration(), func(gen uint64) {
		c.handleRoundTimeout(id, gen)
	}); err != nil {
		return game.NewInternal("arm round timer", err)
	}
	if err := c.save(sess, now); err != nil {
		c.timers.cancel(id)
		return err
	}
	log.Printf("round started session=%s question=%q", id, sess.CurrentQuestion)
	c.events.Append(id, "round_started", EventPayload{Question: sess.CurrentQuestion})

	c.notify.ToSession(id, wsMessage{Type: "game_started", Data: gameStartedPayload{
		Question:  sess.CurrentQuestion,
		TimeLimit: c.cfg.RoundSeconds,
	}})
	return nil
}

func (c *Coordinator) SubmitGuess(sessionID, connectionID, guess string) error {
	g, err := game.ValidateGuess(guess)
	if err != nil {
		return err
	}
	id, err := game.ValidateSessionID(sessionID)
	if err != nil {
		return err
	}

	c.locks.lock(id)
	defer c.locks.unlock(id)

	sess, err := c.load(id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	out, err := game.SubmitGuess(sess, connectionID, g, now)
	if err != nil {
		return err
	}
	if err := c.save(sess, now); err != nil {
		return err
	}
	// Cancel only after the persisted end: a failed save leaves the
	// round in progress with its timer still armed.
	if out.End != nil {
		c.timers.cancel(id)
	}
	guesser := ""
	if p := sess.PlayerByConnection(connectionID); p != nil {
		guesser = p.Username
	}
	c.events.Append(id, "guess_submitted", EventPayload{
		Username:     guesser,
		Correct:      out.Correct,
		AttemptsLeft: out.AttemptsLeft,
	})

	if !out.Correct {
		c.notify.ToConnection(connectionID, wsMessage{Type: "guess_result", Data: guessResultPayload{
			Correct:      false,
			AttemptsLeft: out.AttemptsLeft,
		}})
	}
	c.broadcastPlayers(sess)
	if out.End != nil {
		c.finishRound(sess, out.End)
	}
	return nil
}

func (c *Coordinator) StartNextRound(sessionID, connectionID string) error {
	id, err := game.ValidateSessionID(sessionID)
	if err != nil {
		return err
	}

	c.locks.lock(id)
	defer c.locks.unlock(id)

	sess, err := c.load(id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := game.StartNextRound(sess, connectionID, now); err != nil {
		return err
	}
	if err := c.save(sess, now); err != nil {
		return err
	}
	log.Printf("next round opened session=%s", id)
	c.events.Append(id, "next_round", EventPayload{GameMasterID: connectionID})

	c.broadcastPlayers(sess)
	c.notify.ToSession(id, wsMessage{Type: "player_notification", Data: noticePayload{
		Type:    "next_round",
		Message: "waiting for the game master to set a question",
	}})
	return nil
}

// Disconnect handles a dropped connection. The connection id is not
// bound to a session on the wire, so every stored session is checked.
func (c *Coordinator) Disconnect(connectionID string) {
	ids, err := c.store.IDs()
	if err != nil {
		log.Printf("disconnect scan failed conn=%s err=%v", connectionID, err)
		return
	}
	now := time.Now().UTC()
	for _, id := range ids {
		c.disconnectFrom(id, connectionID, now)
	}
}

func (c *Coordinator) disconnectFrom(id, connectionID string, now time.Time) {
	c.locks.lock(id)
	defer c.locks.unlock(id)

	sess, err := c.load(id)
	if err != nil {
		return
	}
	out := game.Disconnect(sess, connectionID, now)
	if out.Player == nil {
		return
	}
	if err := c.save(sess, now); err != nil {
		log.Printf("disconnect save failed session=%s err=%v", id, err)
		return
	}
	if out.End != nil {
		c.timers.cancel(id)
	}
	log.Printf("player disconnected session=%s username=%s gameMaster=%t", id, out.Player.Username, out.WasGameMaster)
	c.events.Append(id, "player_disconnected", EventPayload{Username: out.Player.Username})

	c.broadcastPlayers(sess)
	c.systemChat(id, out.Player.Username+" disconnected")
	if out.End != nil {
		c.finishRound(sess, out.End)
		return
	}
	if out.GameMaster != nil {
		c.announceGameMaster(sess, out.GameMaster)
	}
}

// timeoutRetryDelay spaces out re-fires when persisting a timed-out
// round fails.
const timeoutRetryDelay = 5 * time.Second

// handleRoundTimeout runs when an armed round timer fires. The
// generation check discards callbacks that lost a race against a
// cancel, and the status re-check under the lock makes ending the
// round idempotent. The registry entry is only consumed once the end
// has been persisted; a failed store round-trip re-arms the same
// generation so the round still times out.
func (c *Coordinator) handleRoundTimeout(id string, gen uint64) {
	c.locks.lock(id)
	defer c.locks.unlock(id)

	if !c.timers.matches(id, gen) {
		return
	}
	sess, err := c.load(id)
	if err != nil {
		var notFound *game.NotFoundError
		if errors.As(err, &notFound) {
			c.timers.fired(id, gen)
			return
		}
		log.Printf("timeout load failed session=%s err=%v", id, err)
		c.timers.retry(id, gen, timeoutRetryDelay, func(gen uint64) {
			c.handleRoundTimeout(id, gen)
		})
		return
	}
	now := time.Now().UTC()
	end, ok := game.ExpireRound(sess, now)
	if !ok {
		c.timers.fired(id, gen)
		return
	}
	if err := c.save(sess, now); err != nil {
		log.Printf("timeout save failed session=%s err=%v", id, err)
		c.timers.retry(id, gen, timeoutRetryDelay, func(gen uint64) {
			c.handleRoundTimeout(id, gen)
		})
		return
	}
	c.timers.fired(id, gen)
	c.finishRound(sess, end)
}

// Chat relays a message to the whole session without touching state.
func (c *Coordinator) Chat(sessionID, connectionID, message string) error {
	msg, err := game.ValidateChatMessage(message)
	if err != nil {
		return err
	}
	id, err := game.ValidateSessionID(sessionID)
	if err != nil {
		return err
	}

	c.locks.lock(id)
	sess, err := c.load(id)
	c.locks.unlock(id)
	if err != nil {
		return err
	}
	player := sess.PlayerByConnection(connectionID)
	if player == nil {
		return game.Authorization("only session players can chat")
	}
	c.notify.ToSession(id, wsMessage{Type: "chat_message", Data: chatPayload{
		Type:     "user",
		Username: player.Username,
		Message:  msg,
	}})
	return nil
}

// Snapshot returns a read-only copy for the HTTP surface.
func (c *Coordinator) Snapshot(sessionID string) (*game.Session, error) {
	id, err := game.ValidateSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	c.locks.lock(id)
	defer c.locks.unlock(id)
	return c.load(id)
}

// Sweep deletes sessions past the retention window and sessions whose
// players have all been gone longer than the stale cutoff.
func (c *Coordinator) Sweep(now time.Time) {
	ids, err := c.store.IDs()
	if err != nil {
		log.Printf("sweep scan failed err=%v", err)
		return
	}
	for _, id := range ids {
		c.sweepOne(id, now)
	}
}

func (c *Coordinator) sweepOne(id string, now time.Time) {
	c.locks.lock(id)
	defer c.locks.unlock(id)

	sess, err := c.load(id)
	if err != nil {
		return
	}
	expired := now.Sub(sess.CreatedAt) > c.cfg.SessionRetention()
	stale := sess.ConnectedCount() == 0 && now.Sub(sess.UpdatedAt) > c.cfg.StaleDisconnected()
	if !expired && !stale {
		return
	}
	c.timers.cancel(id)
	if err := c.store.Delete(id); err != nil {
		log.Printf("sweep delete failed session=%s err=%v", id, err)
		return
	}
	log.Printf("session swept id=%s expired=%t stale=%t", id, expired, stale)
}

func (c *Coordinator) systemChat(sessionID, message string) {
	c.notify.ToSession(sessionID, wsMessage{Type: "chat_message", Data: chatPayload{
		Type:    "system",
		Message: message,
	}})
}

func (c *Coordinator) broadcastPlayers(sess *game.Session) {
	c.notify.ToSession(sess.ID, wsMessage{Type: "players_update", Data: playersUpdatePayload{
		Players:      playersPayload(sess),
		GameMasterID: sess.GameMasterID,
	}})
}

func (c *Coordinator) announceGameMaster(sess *game.Session, gm *game.Player) {
	c.notify.ToSession(sess.ID, wsMessage{Type: "new_game_master", Data: newGameMasterPayload{
		GameMasterID:   gm.ConnectionID,
		GameMasterName: gm.Username,
		Players:        playersPayload(sess),
	}})
	c.notify.ToConnection(gm.ConnectionID, wsMessage{Type: "game_master_notification", Data: noticePayload{
		Type:    "role",
		Message: "you are the game master, set a question to begin",
	}})
}

func (c *Coordinator) finishRound(sess *game.Session, end *game.RoundEnd) {
	log.Printf("round ended session=%s reason=%s winner=%q", sess.ID, end.Reason, end.Winner)
	c.events.Append(sess.ID, "round_ended", EventPayload{
		Reason: end.Reason,
		Winner: end.Winner,
	})
	c.notify.ToSession(sess.ID, wsMessage{Type: "game_ended", Data: gameEndedPayload{
		Reason:  end.Reason,
		Winner:  end.Winner,
		Answer:  end.Answer,
		Players: playersPayload(sess),
	}})
	if end.GameMaster != nil {
		c.announceGameMaster(sess, end.GameMaster)
	} else if sess.RequiresGameMaster {
		c.notify.ToSession(sess.ID, wsMessage{Type: "player_notification", Data: noticePayload{
			Type:    "no_game_master",
			Message: "no connected players left to take the game master role",
		}})
	}
}
