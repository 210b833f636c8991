package weather

import (
	"context"
	"crypto/rand"
	"log/slog"
	"sync"
	"time"
)

type sessionEntry struct {
	session  *Session
	lastSeen time.Time
}

// Sessions is an in-memory registry of sessions that expire after ttl
// without use. Nothing is persisted.
type Sessions struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]*sessionEntry
	now func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl: ttl,
		m:   make(map[string]*sessionEntry),
		now: time.Now,
	}
}

// Get returns a live session and marks it as used.
func (r *Sessions) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.m[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if now.Sub(entry.lastSeen) > r.ttl {
		delete(r.m, id)
		return nil, false
	}
	entry.lastSeen = now
	return entry.session, true
}

// Create starts a new empty session under a random id.
func (r *Sessions) Create() (string, *Session) {
	id := rand.Text()
	s := NewSession()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[id] = &sessionEntry{session: s, lastSeen: r.now()}
	return id, s
}

func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}

// Sweep drops expired sessions and returns how many were dropped.
func (r *Sessions) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	var n int
	for id, entry := range r.m {
		if now.Sub(entry.lastSeen) > r.ttl {
			delete(r.m, id)
			n++
		}
	}
	return n
}

// RunSweepLoop sweeps every interval until ctx is done.
func (r *Sessions) RunSweepLoop(ctx context.Context, interval time.Duration) {
	slog.Info("session sweeper starting", "interval", interval, "ttl", r.ttl)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Info("sessions expired", "expired", n, "active", r.Len())
			}
		}
	}
}
