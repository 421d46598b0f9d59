// Package cachemanager is a generic two-tier cache: a bounded in-memory map
// in front of a namespaced blob in a persistent key-value store.
package cachemanager

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"cost-analysis-engine/internal/common/errors"
	"cost-analysis-engine/internal/common/logger"
	"cost-analysis-engine/internal/common/metrics"
	"cost-analysis-engine/internal/models"

	"github.com/cespare/xxhash/v2"
)

const (
	DefaultNamespace     = "cost_analysis_cache"
	DefaultMemoryMaxSize = 100
	DefaultStoreMaxSize  = 500
	DefaultTTL           = 24 * time.Hour
)

// Store persists one payload per namespace. Load returns nil, nil when the
// namespace has never been written.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Remove(ctx context.Context, key string) error
}

type Options struct {
	Namespace     string
	MemoryMaxSize int
	StoreMaxSize  int
	DefaultTTL    time.Duration
	// Clock is used for timestamps and validity checks; defaults to time.Now.
	Clock func() time.Time
}

func (o *Options) applyDefaults() {
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	if o.MemoryMaxSize <= 0 {
		o.MemoryMaxSize = DefaultMemoryMaxSize
	}
	if o.StoreMaxSize <= 0 {
		o.StoreMaxSize = DefaultStoreMaxSize
	}
	if o.DefaultTTL <= 0 {
		o.DefaultTTL = DefaultTTL
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}

type entries[T any] map[string]models.CachedCostData[T]

type Manager[T any] struct {
	mu         sync.Mutex
	saveMu     sync.Mutex
	memory     entries[T]
	persistent entries[T]
	hits       int64
	misses     int64

	store         Store
	storeDisabled bool
	degradeOnce   sync.Once

	opts   Options
	logger logger.Logger
}

// New builds a manager and loads the persistent tier once. A nil store gives
// a memory-only cache.
func New[T any](ctx context.Context, store Store, opts Options, log logger.Logger) *Manager[T] {
	opts.applyDefaults()
	m := &Manager[T]{
		memory:     make(entries[T]),
		persistent: make(entries[T]),
		store:      store,
		opts:       opts,
		logger: logger.ForComponent(log, "cache-manager").WithFields(map[string]interface{}{
			"namespace": opts.Namespace,
		}),
	}
	m.loadFromStore(ctx)
	return m
}

// GenerateKey returns prefix followed by the hex xxhash64 of params' JSON
// encoding. Callers normalize params first so equal queries share a key.
func GenerateKey(prefix string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", params))
	}
	return prefix + strconv.FormatUint(xxhash.Sum64(data), 16)
}

// Get looks in memory, then in the persistent tier, promoting hits found there.
func (m *Manager[T]) Get(key string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.Clock()
	if e, ok := m.memory[key]; ok {
		if e.Valid(now) {
			m.hits++
			metrics.CacheRequests.WithLabelValues("memory", "hit").Inc()
			return e.Data, true
		}
		delete(m.memory, key)
	}

	if m.persistenceEnabled() {
		if e, ok := m.persistent[key]; ok {
			if e.Valid(now) {
				m.memory[key] = e
				evictOldest(m.memory, m.opts.MemoryMaxSize)
				m.hits++
				metrics.CacheRequests.WithLabelValues("store", "hit").Inc()
				return e.Data, true
			}
			delete(m.persistent, key)
		}
	}

	m.misses++
	metrics.CacheRequests.WithLabelValues("all", "miss").Inc()
	var zero T
	return zero, false
}

// Set writes both tiers; ttl <= 0 uses the default TTL.
func (m *Manager[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.opts.DefaultTTL
	}

	m.mu.Lock()
	entry := models.CachedCostData[T]{
		Data:      value,
		Timestamp: m.opts.Clock(),
		TTL:       ttl,
		Key:       key,
	}
	m.memory[key] = entry
	evictOldest(m.memory, m.opts.MemoryMaxSize)
	persist := m.persistenceEnabled()
	if persist {
		m.persistent[key] = entry
		evictOldest(m.persistent, m.opts.StoreMaxSize)
	}
	m.mu.Unlock()

	if persist {
		m.saveToStore(ctx)
	}
}

// Invalidate drops key from both tiers.
func (m *Manager[T]) Invalidate(ctx context.Context, key string) {
	m.mu.Lock()
	delete(m.memory, key)
	_, inStore := m.persistent[key]
	delete(m.persistent, key)
	persist := inStore && m.persistenceEnabled()
	m.mu.Unlock()

	if persist {
		m.saveToStore(ctx)
	}
}

// Clear empties both tiers and resets the statistics.
func (m *Manager[T]) Clear(ctx context.Context) {
	m.mu.Lock()
	m.memory = make(entries[T])
	m.persistent = make(entries[T])
	m.hits, m.misses = 0, 0
	persist := m.persistenceEnabled()
	m.mu.Unlock()

	if persist {
		m.saveMu.Lock()
		defer m.saveMu.Unlock()
		if err := m.store.Remove(ctx, m.opts.Namespace); err != nil {
			m.degrade("clear", err)
		}
	}
}

func (m *Manager[T]) Stats() models.CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := len(m.memory)
	for k := range m.persistent {
		if _, ok := m.memory[k]; !ok {
			size++
		}
	}
	stats := models.CacheStats{Hits: m.hits, Misses: m.misses, Size: size}
	if total := m.hits + m.misses; total > 0 {
		stats.HitRate = float64(m.hits) / float64(total)
	}
	return stats
}

// Persistent reports whether the store tier is active.
func (m *Manager[T]) Persistent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistenceEnabled()
}

// persistenceEnabled requires m.mu.
func (m *Manager[T]) persistenceEnabled() bool {
	return m.store != nil && !m.storeDisabled
}

func (m *Manager[T]) loadFromStore(ctx context.Context) {
	if m.store == nil {
		return
	}
	payload, err := m.store.Load(ctx, m.opts.Namespace)
	if err != nil {
		m.degrade("load", err)
		return
	}
	if len(payload) == 0 {
		return
	}

	var loaded entries[T]
	if err := json.Unmarshal(payload, &loaded); err != nil {
		m.degrade("decode", err)
		return
	}

	now := m.opts.Clock()
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range loaded {
		if e.Valid(now) {
			m.persistent[k] = e
		}
	}
	evictOldest(m.persistent, m.opts.StoreMaxSize)
	m.logger.Info("Loaded persistent cache", map[string]interface{}{
		"entries": len(m.persistent),
	})
}

// saveToStore writes a snapshot of the persistent tier. Saves are serialized
// so the last snapshot taken is the last one written.
func (m *Manager[T]) saveToStore(ctx context.Context) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.mu.Lock()
	if !m.persistenceEnabled() {
		m.mu.Unlock()
		return
	}
	payload, err := json.Marshal(m.persistent)
	m.mu.Unlock()
	if err != nil {
		m.degrade("encode", err)
		return
	}

	if err := m.store.Save(ctx, m.opts.Namespace, payload); err != nil {
		m.degrade("save", err)
	}
}

// degrade switches the manager to memory-only and logs the cause once.
func (m *Manager[T]) degrade(operation string, err error) {
	m.mu.Lock()
	m.storeDisabled = true
	m.persistent = make(entries[T])
	m.mu.Unlock()

	m.degradeOnce.Do(func() {
		stdErr := errors.NewCacheStoreFailedError(operation, err)
		m.logger.Warn("Persistent cache unavailable, continuing memory-only", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
	})
}

// evictOldest removes the oldest-timestamp entries until len(e) <= max.
func evictOldest[T any](e entries[T], max int) {
	for len(e) > max {
		var oldestKey string
		var oldest time.Time
		first := true
		for k, v := range e {
			if first || v.Timestamp.Before(oldest) {
				oldestKey, oldest, first = k, v.Timestamp, false
			}
		}
		delete(e, oldestKey)
	}
}
