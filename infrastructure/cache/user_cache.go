package cache

import (
	"sync"

	"almoxarifado/models"
)

// UserCache caches users by id so requests do not reload them on every hit.
// Any write to a user must call Delete.
type UserCache struct {
	mu    sync.RWMutex
	users map[int64]models.User
}

func NewUserCache() *UserCache {
	return &UserCache{users: make(map[int64]models.User)}
}

func (c *UserCache) Add(user models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[user.ID] = user
}

func (c *UserCache) Get(id int64) (models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[id]
	return u, ok
}

func (c *UserCache) Delete(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, id)
}
