package websocket

import (
	"sort"
	"sync"
)

// PresenceTracker derives the online-user set from live connections by
// reference counting. A user is online while at least one of their
// connections is live; only the last connection going away flips them
// offline. Nothing here is persisted - the set starts empty on every boot.
type PresenceTracker struct {
	mu     sync.Mutex
	online map[string]int
}

// NewPresenceTracker creates an empty presence tracker.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{online: make(map[string]int)}
}

// Add counts one more connection for the user and reports whether this was
// the offline-to-online transition.
func (p *PresenceTracker) Add(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID]++
	return p.online[userID] == 1
}

// Remove counts one connection down for the user and reports whether this
// was the online-to-offline transition. Removing an unknown user is a no-op.
func (p *PresenceTracker) Remove(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	count, ok := p.online[userID]
	if !ok {
		return false
	}
	if count <= 1 {
		delete(p.online, userID)
		return true
	}
	p.online[userID] = count - 1
	return false
}

// IsOnline reports whether the user has at least one live connection.
func (p *PresenceTracker) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[userID] > 0
}

// Snapshot returns the current online user IDs, sorted for stable output.
func (p *PresenceTracker) Snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	users := make([]string, 0, len(p.online))
	for userID := range p.online {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// Count returns the number of distinct online users.
func (p *PresenceTracker) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.online)
}
