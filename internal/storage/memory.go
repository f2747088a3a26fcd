// Package storage remembers the coach's form values between runs.
package storage

import (
	"context"
	"sync"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Compile-time interface check.
var _ domain.SettingsStore = (*MemoryStore)(nil)

// MemoryStore keeps settings in memory only. Safe for concurrent access.
// Used by tests and when the config directory is unavailable.
type MemoryStore struct {
	mu       sync.RWMutex
	settings domain.Settings
	saves    int
	log      *logger.Logger
}

// NewMemoryStore creates a store holding the first-launch defaults.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		settings: domain.DefaultSettings(),
		log:      log,
	}
}

// Load returns the current settings.
func (s *MemoryStore) Load(ctx context.Context) (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

// Save replaces the settings.
func (s *MemoryStore) Save(ctx context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("saving settings (%s, voice=%q, preset=%q)", settings.Params, settings.Voice, settings.Preset)
	s.settings = settings
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
