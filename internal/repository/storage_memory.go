package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// memoryBucket is a group of fields sharing one expiry.
type memoryBucket struct {
	fields    map[string][]byte
	expiresAt time.Time
}

// MemoryStorage is the single-process storage driver used by the CLI, tests
// and deployments without Redis.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	buckets map[string]*memoryBucket
	now     func() time.Time
}

// MemoryOption customises a MemoryStorage.
type MemoryOption func(*MemoryStorage)

// WithClock replaces the clock used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStorage) { m.now = now }
}

// NewMemoryStorage constructs an empty in-memory storage.
func NewMemoryStorage(opts ...MemoryOption) *MemoryStorage {
	m := &MemoryStorage{
		entries: make(map[string]memoryEntry),
		buckets: make(map[string]*memoryBucket),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get retrieves and unmarshals the stored value into dest.
func (m *MemoryStorage) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || m.expired(entry.expiresAt) {
		return appErrors.ErrStorageMiss
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return fmt.Errorf("unmarshal stored value for %s: %w", key, err)
	}
	return nil
}

// Set marshals value and stores it. A zero ttl keeps the key forever.
func (m *MemoryStorage) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal stored value for %s: %w", key, err)
	}
	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete removes the given keys.
func (m *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.entries, key)
		delete(m.buckets, key)
	}
	m.mu.Unlock()
	return nil
}

// DeleteByPrefix removes every key starting with prefix.
func (m *MemoryStorage) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	for key := range m.buckets {
		if strings.HasPrefix(key, prefix) {
			delete(m.buckets, key)
		}
	}
	m.mu.Unlock()
	return nil
}

// GetField reads one field of bucket into dest. A hit slides the bucket's
// expiry to ttl from now.
func (m *MemoryStorage) GetField(_ context.Context, bucket, field string, dest interface{}, ttl time.Duration) error {
	m.mu.Lock()
	b := m.liveBucket(bucket)
	var payload []byte
	ok := false
	if b != nil {
		payload, ok = b.fields[field]
		m.slide(b, ttl)
	}
	m.mu.Unlock()
	if !ok {
		return appErrors.ErrStorageMiss
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("unmarshal stored value for %s/%s: %w", bucket, field, err)
	}
	return nil
}

// SetField stores one field of bucket and slides the bucket's expiry.
func (m *MemoryStorage) SetField(_ context.Context, bucket, field string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal stored value for %s/%s: %w", bucket, field, err)
	}
	m.mu.Lock()
	b := m.liveBucket(bucket)
	if b == nil {
		b = &memoryBucket{fields: map[string][]byte{}}
		m.buckets[bucket] = b
	}
	b.fields[field] = payload
	m.slide(b, ttl)
	m.mu.Unlock()
	return nil
}

// DeleteFields removes fields of bucket.
func (m *MemoryStorage) DeleteFields(_ context.Context, bucket string, fields ...string) error {
	m.mu.Lock()
	if b := m.liveBucket(bucket); b != nil {
		for _, field := range fields {
			delete(b.fields, field)
		}
	}
	m.mu.Unlock()
	return nil
}

// Touch slides the expiry of bucket without reading it.
func (m *MemoryStorage) Touch(_ context.Context, bucket string, ttl time.Duration) error {
	m.mu.Lock()
	if b := m.liveBucket(bucket); b != nil {
		m.slide(b, ttl)
	}
	m.mu.Unlock()
	return nil
}

// Len returns the number of live entries, counting each bucket field.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, entry := range m.entries {
		if !m.expired(entry.expiresAt) {
			count++
		}
	}
	for _, b := range m.buckets {
		if !m.expired(b.expiresAt) {
			count += len(b.fields)
		}
	}
	return count
}

// liveBucket returns bucket unless it is missing or expired. Callers hold mu.
func (m *MemoryStorage) liveBucket(bucket string) *memoryBucket {
	b, ok := m.buckets[bucket]
	if !ok {
		return nil
	}
	if m.expired(b.expiresAt) {
		delete(m.buckets, bucket)
		return nil
	}
	return b
}

func (m *MemoryStorage) slide(b *memoryBucket, ttl time.Duration) {
	if ttl > 0 {
		b.expiresAt = m.now().Add(ttl)
	}
}

func (m *MemoryStorage) expired(expiresAt time.Time) bool {
	return !expiresAt.IsZero() && !m.now().Before(expiresAt)
}
