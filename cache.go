package main

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// ReadCache holds public list results until the next mutation of their
// collection or until they expire.
type ReadCache struct {
	c       *cache.Cache
	metrics *Metrics

	mu   sync.Mutex
	gens map[string]uint64
}

func NewReadCache(ttl time.Duration, metrics *Metrics) *ReadCache {
	return &ReadCache{c: cache.New(ttl, 2*ttl), metrics: metrics, gens: make(map[string]uint64)}
}

func (rc *ReadCache) generation(key string) uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.gens[key]
}

func (rc *ReadCache) getCachedData(key string, fetchFunc func() (interface{}, error)) (interface{}, error) {
	if data, found := rc.c.Get(key); found {
		rc.metrics.cacheHits.WithLabelValues("hit").Inc()
		return data, nil
	}
	rc.metrics.cacheHits.WithLabelValues("miss").Inc()

	gen := rc.generation(key)
	data, err := fetchFunc()
	if err != nil {
		return nil, err
	}

	rc.mu.Lock()
	if rc.gens[key] == gen {
		rc.c.Set(key, data, cache.DefaultExpiration)
	}
	rc.mu.Unlock()
	return data, nil
}

// Invalidate drops the cached lists of c. A fetch that started before the
// call still returns its result but does not store it.
func (rc *ReadCache) Invalidate(c Collection) {
	keys := []string{string(c)}
	if c == Skills {
		keys = append(keys, groupedSkillsKey)
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for _, key := range keys {
		rc.gens[key]++
		rc.c.Delete(key)
	}
}
