package server

import (
	"errors"
	"sync"
	"time"
)

var errTimerArmed = errors.New("round timer already armed")

// roundTimers tracks the single pending timeout per session. Every arm
// hands the callback a generation number; a fire is only honored when the
// generation still matches the registered entry, so a callback that lost
// the race against a cancel (round already ended, next round armed) is
// discarded instead of ending the wrong round.
type roundTimers struct {
	mu      sync.Mutex
	nextGen uint64
	entries map[string]*timerEntry
}

type timerEntry struct {
	timer *time.Timer
	gen   uint64
}

func newRoundTimers() *roundTimers {
	return &roundTimers{entries: make(map[string]*timerEntry)}
}

func (t *roundTimers) arm(sessionID string, d time.Duration, fire func(gen uint64)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[sessionID]; ok {
		return errTimerArmed
	}
	t.nextGen++
	gen := t.nextGen
	t.entries[sessionID] = &timerEntry{
		gen:   gen,
		timer: time.AfterFunc(d, func() { fire(gen) }),
	}
	return nil
}

// matches reports whether gen is still the registered callback for the
// session without consuming the entry. The entry is only cleared via
// fired once the round end has been persisted.
func (t *roundTimers) matches(sessionID string, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[sessionID]
	return ok && entry.gen == gen
}

// fired reports whether the callback for gen is still the registered one
// and, when it is, clears the entry so the next round can arm again.
func (t *roundTimers) fired(sessionID string, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[sessionID]
	if !ok || entry.gen != gen {
		return false
	}
	delete(t.entries, sessionID)
	return true
}

// retry re-schedules a fire whose persist failed, keeping the same
// generation so a later cancel still wins.
func (t *roundTimers) retry(sessionID string, gen uint64, d time.Duration, fire func(gen uint64)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[sessionID]
	if !ok || entry.gen != gen {
		return
	}
	entry.timer = time.AfterFunc(d, func() { fire(gen) })
}

// cancel is a no-op when no timer is armed.
func (t *roundTimers) cancel(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[sessionID]
	if !ok {
		return
	}
	entry.timer.Stop()
	delete(t.entries, sessionID)
}

func (t *roundTimers) active(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[sessionID]
	return ok
}
