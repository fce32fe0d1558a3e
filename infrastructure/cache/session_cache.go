package cache

import (
	"sync"
	"time"

	"almoxarifado/models"
)

// UserSessionCache stores live sessions by token.
type UserSessionCache struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewUserSessionCache() *UserSessionCache {
	return &UserSessionCache{sessions: make(map[string]models.Session)}
}

func (c *UserSessionCache) AddSession(s models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.ID] = s
}

// FindSessionBySessionToken returns the session unless it is missing or expired.
// Expired entries are evicted on lookup.
func (c *UserSessionCache) FindSessionBySessionToken(token string) (models.Session, bool) {
	c.mu.RLock()
	s, ok := c.sessions[token]
	c.mu.RUnlock()
	if !ok {
		return models.Session{}, false
	}
	if s.Expired() {
		c.DeleteSessionBySessionToken(token)
		return models.Session{}, false
	}
	return s, true
}

func (c *UserSessionCache) DeleteSessionBySessionToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, token)
}

// DeleteSessionsForUser drops every cached session of a user.
func (c *UserSessionCache) DeleteSessionsForUser(userID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for token, s := range c.sessions {
		if s.UserID == userID {
			delete(c.sessions, token)
			n++
		}
	}
	return n
}

// Sweep removes sessions that expired before now.
func (c *UserSessionCache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for token, s := range c.sessions {
		if now.After(s.ExpiresAt) {
			delete(c.sessions, token)
			n++
		}
	}
	return n
}
