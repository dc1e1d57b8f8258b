// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Storage is a keyed double-value store for user settings. Implementations
// report success with a bool rather than an error; a failed write leaves
// the previous value standing.
type Storage interface {
	SetDouble(key string, value float64) bool
	GetDouble(key string) (float64, bool)
	Remove(key string) bool
	Clear()
}

// MemoryStorage is a map-backed Storage for tests and platforms without
// persistence.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]float64
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage returns an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]float64)}
}

func (s *MemoryStorage) SetDouble(key string, value float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return true
}

func (s *MemoryStorage) GetDouble(key string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *MemoryStorage) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return false
	}
	delete(s.values, key)
	return true
}

func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]float64)
}

// FileStorage persists settings to a YAML file on every write. Cold path
// only; the engine never touches Storage from the audio thread.
type FileStorage struct {
	mu     sync.Mutex
	path   string
	values map[string]float64
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage opens (or creates on first write) the YAML settings file
// at path. An unreadable or malformed file starts empty rather than
// failing; settings are recoverable defaults, not critical data.
func NewFileStorage(path string) *FileStorage {
	s := &FileStorage{path: path, values: make(map[string]float64)}

	if data, err := os.ReadFile(path); err == nil {
		// Ignore parse errors: a corrupt settings file resets.
		_ = yaml.Unmarshal(data, &s.values)
		if s.values == nil {
			s.values = make(map[string]float64)
		}
	}

	return s
}

func (s *FileStorage) SetDouble(key string, value float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, had := s.values[key]
	s.values[key] = value
	if !s.flush() {
		if had {
			s.values[key] = previous
		} else {
			delete(s.values, key)
		}
		return false
	}
	return true
}

func (s *FileStorage) GetDouble(key string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *FileStorage) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return false
	}
	delete(s.values, key)
	return s.flush()
}

func (s *FileStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]float64)
	s.flush()
}

// flush writes the current values to disk. Caller holds the lock.
func (s *FileStorage) flush() bool {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return false
	}
	return os.WriteFile(s.path, data, 0o644) == nil
}
