package cache

import (
	"sort"
	"sync"
)

// Resource ties a route pattern and method to the capability it requires.
type Resource struct {
	Code       string
	Path       string
	Method     string
	Capability string
}

// RouteCapabilityCache stores the registered route resources.
type RouteCapabilityCache struct {
	mu        sync.RWMutex
	resources []Resource
	codes     map[string]struct{}
}

func NewRouteCapabilityCache() *RouteCapabilityCache {
	return &RouteCapabilityCache{codes: make(map[string]struct{})}
}

func (c *RouteCapabilityCache) Add(r Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append(c.resources, r)
	c.codes[r.Code] = struct{}{}
}

// Resources returns a copy of every registered resource.
func (c *RouteCapabilityCache) Resources() []Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Resource, len(c.resources))
	copy(out, c.resources)
	return out
}

func (c *RouteCapabilityCache) RouteNamesSorted() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.codes))
	for name := range c.codes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
