package chats

import (
	"sync"
	"testing"
	"time"
)

type saveRecorder struct {
	mu    sync.Mutex
	saved []ChatSession
}

func (r *saveRecorder) save(userID string, session ChatSession) {
	r.mu.Lock()
	r.saved = append(r.saved, session)
	r.mu.Unlock()
}

func (r *saveRecorder) snapshot() []ChatSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChatSession, len(r.saved))
	copy(out, r.saved)
	return out
}

func TestAutosaverCoalescesRapidSchedules(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutosaver(30*time.Millisecond, rec.save)
	defer a.Stop()

	for i := 0; i < 5; i++ {
		a.Schedule("user-1", ChatSession{ID: "s-1", Title: "draft"})
		time.Sleep(5 * time.Millisecond)
	}
	a.Schedule("user-1", ChatSession{ID: "s-1", Title: "final"})

	time.Sleep(100 * time.Millisecond)

	saved := rec.snapshot()
	if len(saved) != 1 {
		t.Fatalf("saves = %d, want 1", len(saved))
	}
	if saved[0].Title != "final" {
		t.Fatalf("saved title = %q, want the latest snapshot", saved[0].Title)
	}
}

func TestAutosaverSeparateSessionsFireIndependently(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutosaver(10*time.Millisecond, rec.save)
	defer a.Stop()

	a.Schedule("user-1", ChatSession{ID: "s-1"})
	a.Schedule("user-1", ChatSession{ID: "s-2"})
	a.Schedule("user-2", ChatSession{ID: "s-1"})

	time.Sleep(80 * time.Millisecond)

	if got := len(rec.snapshot()); got != 3 {
		t.Fatalf("saves = %d, want 3", got)
	}
}

func TestAutosaverSlowSaveIsNeverOvertakenByNewerSnapshot(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	save := func(userID string, session ChatSession) {
		mu.Lock()
		first := len(order) == 0
		order = append(order, session.Title)
		mu.Unlock()
		if first {
			started <- struct{}{}
			<-release
		}
	}
	a := NewAutosaver(10*time.Millisecond, save)
	defer a.Stop()

	a.Schedule("user-1", ChatSession{ID: "s-1", Title: "v1"})
	<-started

	// A newer snapshot arrives while the first save is still in flight.
	a.Schedule("user-1", ChatSession{ID: "s-1", Title: "v2"})
	time.Sleep(40 * time.Millisecond)

	mu.Lock()
	inFlight := len(order)
	mu.Unlock()
	if inFlight != 1 {
		t.Fatalf("saves while the first is in flight = %d, want 1", inFlight)
	}

	close(release)
	time.Sleep(40 * time.Millisecond)

	mu.Lock()
	got := append([]string(nil), order...)
	mu.Unlock()
	if len(got) != 2 || got[0] != "v1" || got[1] != "v2" {
		t.Fatalf("save order = %v, want [v1 v2]", got)
	}
}

func TestAutosaverStopCancelsPending(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutosaver(50*time.Millisecond, rec.save)

	a.Schedule("user-1", ChatSession{ID: "s-1"})
	a.Stop()

	time.Sleep(100 * time.Millisecond)

	if got := len(rec.snapshot()); got != 0 {
		t.Fatalf("saves = %d, want 0 after Stop", got)
	}
}
