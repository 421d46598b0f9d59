// internal/models/cache.go
package models

import "time"

// CachedCostData wraps a cached payload with its validity window.
type CachedCostData[T any] struct {
	Data      T             `json:"data"`
	Timestamp time.Time     `json:"timestamp"`
	TTL       time.Duration `json:"ttl"`
	Key       string        `json:"key"`
}

// Valid reports whether the entry is still inside its TTL at now.
func (c CachedCostData[T]) Valid(now time.Time) bool {
	return now.Sub(c.Timestamp) < c.TTL
}

type CacheStats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hitRate"`
}
