// Package rbac maps routes to the capability a caller needs to reach them.
// Routes that were never registered are denied.
package rbac

import (
	"strings"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/cache"
)

// Rbac stores route resources in cache.
type Rbac struct {
	cache *cache.RouteCapabilityCache
}

func New(c *cache.RouteCapabilityCache) *Rbac {
	return &Rbac{cache: c}
}

func (r *Rbac) Add(capability access.Capability, code, method, path string) {
	if r == nil || r.cache == nil {
		return
	}
	r.cache.Add(cache.Resource{
		Capability: string(capability),
		Code:       code,
		Method:     strings.ToUpper(method),
		Path:       path,
	})
}

// Required returns the capability registered for method and path.
// The most specific pattern wins: exact, then per-segment stars, then a
// trailing star covering deeper paths.
func (r *Rbac) Required(method, urlPath string) (access.Capability, bool) {
	if r == nil || r.cache == nil {
		return "", false
	}
	return requiredCapability(r.cache.Resources(), method, urlPath)
}

// Allowed reports whether caps reach method and path.
func (r *Rbac) Allowed(caps access.Capabilities, method, urlPath string) bool {
	capability, ok := r.Required(method, urlPath)
	if !ok {
		return false
	}
	return caps.Has(capability)
}

// Match quality, best last.
const (
	noMatch = iota
	prefixMatch
	segmentMatch
	exactMatch
)

func requiredCapability(resources []cache.Resource, method, urlPath string) (access.Capability, bool) {
	method = strings.ToUpper(method)
	best, bestKind := -1, noMatch
	for i, res := range resources {
		if res.Method != method {
			continue
		}
		if kind := matchKind(res.Path, urlPath); kind > bestKind {
			best, bestKind = i, kind
		}
	}
	if best < 0 {
		return "", false
	}
	return access.Capability(resources[best].Capability), true
}

func matchPath(pattern, path string) bool {
	return matchKind(pattern, path) != noMatch
}

func matchKind(pattern, path string) int {
	if pattern == path {
		return exactMatch
	}

	pattern = strings.Trim(pattern, "/")
	path = strings.Trim(path, "/")

	patternSeg := strings.Split(pattern, "/")
	pathSeg := strings.Split(path, "/")

	// /a/*/c matches one segment per star.
	if len(patternSeg) == len(pathSeg) {
		for i := range patternSeg {
			if patternSeg[i] == "*" {
				continue
			}
			if patternSeg[i] != pathSeg[i] {
				return noMatch
			}
		}
		return segmentMatch
	}

	// A trailing star matches any deeper suffix.
	if len(patternSeg) > 0 && patternSeg[len(patternSeg)-1] == "*" {
		prefix := "/" + strings.Join(patternSeg[:len(patternSeg)-1], "/")
		if strings.HasPrefix("/"+path, prefix+"/") || "/"+path == prefix {
			return prefixMatch
		}
	}

	return noMatch
}
