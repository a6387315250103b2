// Package store provides an in-memory store implementation.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"versioning-backend/src/contracts"
)

// MemoryStore is an in-memory implementation of Store.
// Useful for testing and local mode. Every write is serialized under one
// lock, which gives the per-document atomicity the Postgres backend gets
// from single statements.
type MemoryStore struct {
	mu     sync.RWMutex
	builds map[string]*contracts.CiBuild
	order  []string // insertion order, used as the storage-native order
	now    func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the clock used to stamp records.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		builds: make(map[string]*contracts.CiBuild),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all records in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]contracts.CiBuild, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]contracts.CiBuild, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.builds[id].Clone())
	}
	return result, nil
}

// Get returns a copy of a single record.
func (s *MemoryStore) Get(ctx context.Context, buildID string) (*contracts.CiBuild, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	build, exists := s.builds[buildID]
	if !exists {
		return nil, wrap("get", buildID, ErrNotFound)
	}

	buildCopy := build.Clone()
	return &buildCopy, nil
}

// Set writes a fresh record, replacing any previous one with the same ID.
func (s *MemoryStore) Set(ctx context.Context, build *contracts.CiBuild) error {
	if build.BuildID == "" {
		return wrap("set", "", errors.New("build ID is required"))
	}
	if !build.Status.Valid() {
		return wrap("set", build.BuildID, fmt.Errorf("invalid build status %q", string(build.Status)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	record := build.Clone()
	record.Meta.LastBuildStart = now
	record.AddedDate = now
	record.ModifiedDate = now

	if _, exists := s.builds[record.BuildID]; !exists {
		s.order = append(s.order, record.BuildID)
	}
	s.builds[record.BuildID] = &record
	return nil
}

// Apply updates an existing record under the write lock.
func (s *MemoryStore) Apply(ctx context.Context, buildID string, mutation Mutation) (*contracts.CiBuild, error) {
	if err := mutation.validate(); err != nil {
		return nil, wrap("update", buildID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	build, exists := s.builds[buildID]
	if !exists {
		return nil, wrap("update", buildID, ErrNotFound)
	}
	if mutation.RejectTerminal && build.Status.Terminal() {
		return nil, wrap("update", buildID, ErrTerminalState)
	}

	now := s.now()
	if now.Before(build.ModifiedDate) {
		// Keep addedDate <= modifiedDate even if the clock steps back.
		now = build.ModifiedDate
	}
	mutation.apply(build, now)

	buildCopy := build.Clone()
	return &buildCopy, nil
}

// Close closes the store (no-op for memory store).
func (s *MemoryStore) Close() error {
	return nil
}
