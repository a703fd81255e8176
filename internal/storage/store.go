// Package storage persists the set of subscribed report messages as a
// flat JSON array, rewritten in full on every mutation.
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Store owns the subscription set. It is a single-writer component: all
// mutations are expected to be serialized by the owning event loop.
type Store struct {
	path    string
	entries []Entry
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Load reads the backing file into memory. A missing or unparsable file
// is not an error: the store resets to empty and rewrites the file as the
// new baseline.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read subscription store, starting empty", "path", s.path, "error", err)
		}
		s.entries = nil
		return s.save()
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("Subscription store is corrupt, starting empty", "path", s.path, "error", err)
		s.entries = nil
		return s.save()
	}

	s.entries = entries
	return nil
}

// Add inserts an entry, replacing any existing entry with the same
// (channel, message) identity, and rewrites the backing file. A write
// failure is returned but the in-memory state is kept.
func (s *Store) Add(e Entry) error {
	for i, existing := range s.entries {
		if existing.ChannelID == e.ChannelID && existing.MessageID == e.MessageID {
			s.entries[i] = e
			return s.save()
		}
	}
	s.entries = append(s.entries, e)
	return s.save()
}

// Remove deletes the entry with the given identity and rewrites the
// backing file. Removing an unknown identity is a no-op.
func (s *Store) Remove(channelID, messageID int64) error {
	for i, e := range s.entries {
		if e.ChannelID == channelID && e.MessageID == messageID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return s.save()
		}
	}
	return nil
}

// Entries returns a copy of the current subscription set.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// save rewrites the whole backing file from the in-memory set.
func (s *Store) save() error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("failed to encode subscriptions: %w", err)
	}
	if s.entries == nil {
		data = []byte("[]")
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write subscription store: %w", err)
	}
	return nil
}
