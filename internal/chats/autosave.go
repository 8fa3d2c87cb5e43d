package chats

import (
	"sync"
	"time"
)

// Autosaver coalesces session saves: at most one pending save per session
// key, rescheduled on every change so only the latest state is persisted.
// Saves for the same key are serialized, so a slow write can never land
// after a newer snapshot of the same session.
type Autosaver struct {
	mu      sync.Mutex
	entries map[string]*autosaveEntry
	delay   time.Duration
	save    func(userID string, session ChatSession)
}

type autosaveEntry struct {
	timer   *time.Timer
	userID  string
	session ChatSession
	running bool
	dirty   bool
}

// NewAutosaver builds an Autosaver invoking save after delay of quiet time.
func NewAutosaver(delay time.Duration, save func(userID string, session ChatSession)) *Autosaver {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Autosaver{
		entries: make(map[string]*autosaveEntry),
		delay:   delay,
		save:    save,
	}
}

// Schedule queues a save of the session. A pending save for the same session
// is cancelled and replaced, so intermediate states are never written.
func (a *Autosaver) Schedule(userID string, session ChatSession) {
	key := userID + "|" + session.ID

	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.entries[key]
	if !ok {
		e = &autosaveEntry{}
		a.entries[key] = e
	}
	e.userID, e.session = userID, session
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(a.delay, func() { a.flush(key) })
}

// flush writes the latest snapshot for key. If a save for the same key is
// already in flight, the snapshot is marked dirty and the running flush
// writes it before returning.
func (a *Autosaver) flush(key string) {
	a.mu.Lock()
	e, ok := a.entries[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	e.timer = nil
	if e.running {
		e.dirty = true
		a.mu.Unlock()
		return
	}
	e.running = true
	for {
		e.dirty = false
		userID, session := e.userID, e.session
		a.mu.Unlock()
		a.save(userID, session)
		a.mu.Lock()
		if !e.dirty {
			break
		}
	}
	e.running = false
	if e.timer == nil {
		delete(a.entries, key)
	}
	a.mu.Unlock()
}

// Stop cancels every pending save without running it.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for key, e := range a.entries {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		e.dirty = false
		if !e.running {
			delete(a.entries, key)
		}
	}
}
