// File: internal/dedup/store.go

// Package dedup persists which posts have already been commented on so
// repeated runs do not engage the same post twice. Entries carry the
// timestamp of the comment and expire after a TTL; unknown keys in the
// state file are preserved verbatim so other tools can share it.
package dedup

import (
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

const (
	stateFileName = "engage_state.json"
	timestampsKey = "commented_urns_ts"

	// DefaultTTL is how long a commented URN stays deduplicated.
	DefaultTTL = 7 * 24 * time.Hour
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store tracks commented post identifiers with per-entry timestamps,
// backed by a JSON state file. Persistence failures degrade to in-memory
// operation; the run continues with a warning rather than aborting.
type Store struct {
	path   string
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	// timestamps maps identifier to epoch seconds of the comment. Float
	// seconds keep the file interchangeable with earlier tooling.
	timestamps map[string]float64
	// siblings carries every top-level key of the state file other than
	// ours, written back untouched on save.
	siblings map[string]jsoniter.RawMessage
}

// NewStore creates a store over <stateDir>/engage_state.json with the
// default TTL. Call Load before use.
func NewStore(stateDir string, logger *zap.Logger) *Store {
	return &Store{
		path:       filepath.Join(stateDir, stateFileName),
		ttl:        DefaultTTL,
		logger:     logger,
		now:        time.Now,
		timestamps: map[string]float64{},
		siblings:   map[string]jsoniter.RawMessage{},
	}
}

// WithTTL overrides the expiry window. Zero or negative restores the default.
func (s *Store) WithTTL(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.ttl = ttl
	return s
}

// Load reads the state file and prunes expired entries. A missing or
// unreadable file yields an empty store, not an error.
func (s *Store) Load() {
	s.timestamps = map[string]float64{}
	s.siblings = map[string]jsoniter.RawMessage{}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read engage state; starting empty.",
				zap.String("path", s.path), zap.Error(err))
		}
		return
	}

	var top map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		s.logger.Warn("Malformed engage state; starting empty.",
			zap.String("path", s.path), zap.Error(err))
		return
	}

	for key, value := range top {
		if key != timestampsKey {
			s.siblings[key] = value
		}
	}

	var stamps map[string]float64
	if rawStamps, ok := top[timestampsKey]; ok {
		if err := json.Unmarshal(rawStamps, &stamps); err != nil {
			s.logger.Warn("Malformed comment timestamps; discarding.", zap.Error(err))
			stamps = nil
		}
	}

	cutoff := float64(s.now().Unix()) - s.ttl.Seconds()
	for id, ts := range stamps {
		if ts >= cutoff {
			s.timestamps[id] = ts
		}
	}
	pruned := len(stamps) - len(s.timestamps)
	s.logger.Debug("Loaded engage state.",
		zap.Int("entries", len(s.timestamps)), zap.Int("pruned", pruned))
}

// Seen reports whether the identifier has an unexpired comment entry.
func (s *Store) Seen(id string) bool {
	if id == "" {
		return false
	}
	_, ok := s.timestamps[id]
	return ok
}

// MarkCommented records the identifier at the current time and persists.
func (s *Store) MarkCommented(id string) {
	if id == "" {
		return
	}
	s.timestamps[id] = float64(s.now().Unix())
	s.Save()
}

// Len returns the number of unexpired entries.
func (s *Store) Len() int { return len(s.timestamps) }

// Save writes the full state file, preserving sibling keys.
func (s *Store) Save() {
	top := make(map[string]any, len(s.siblings)+1)
	for key, value := range s.siblings {
		top[key] = value
	}
	top[timestampsKey] = s.timestamps

	data, err := json.MarshalIndent(top, "", "  ")
	if err != nil {
		s.logger.Warn("Failed to encode engage state.", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Warn("Failed to create state directory.",
			zap.String("dir", filepath.Dir(s.path)), zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Warn("Failed to write engage state; continuing in memory.",
			zap.String("path", s.path), zap.Error(err))
	}
}
