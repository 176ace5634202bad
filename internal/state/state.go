// Package state persists the daemon's small cross-restart record: the last
// brightness value it set, stamped with a write time and a schema version.
//
// The record is only trusted when it is recent (StalenessWindow) and carries
// the current schema version; anything else, including an unreadable or
// corrupt file, degrades to the empty sentinel. Readers therefore never fail,
// and the write path does not need atomic-rename protection.
package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/bctl/internal/errors"
	"git.home.luguber.info/inful/bctl/internal/logfields"
	"git.home.luguber.info/inful/bctl/internal/metrics"
)

// SchemaVersion tags the persisted record layout. Bump it whenever the field
// set changes; the version check below then invalidates all prior files.
const SchemaVersion = 1

// StalenessWindow is the maximum age a persisted record may have before it is
// discarded as untrustworthy.
const StalenessWindow = 60 * time.Second

// Record is the persisted state. Fields are declared in sorted key order so
// the marshalled file has a stable, diffable layout.
type Record struct {
	LastSetBrightness int   `json:"last_set_brightness"` // percentage, -1 = unknown
	Timestamp         int64 `json:"timestamp"`           // seconds since epoch
	Ver               int   `json:"ver"`                 // schema version
}

// Empty returns the sentinel record used when no trustworthy state exists.
func Empty() Record {
	return Record{LastSetBrightness: -1, Timestamp: 0, Ver: -1}
}

// Valid reports whether the record is recent enough and version-compatible.
func (r Record) Valid(now time.Time) bool {
	age := now.Unix() - r.Timestamp
	return age <= int64(StalenessWindow.Seconds()) && r.Ver == SchemaVersion
}

// Store reads and writes the state record at a fixed path.
type Store struct {
	path     string
	recorder metrics.Recorder
}

// NewStore creates a store for the given path. A nil recorder disables metrics.
func NewStore(path string, recorder metrics.Recorder) *Store {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Store{path: path, recorder: recorder}
}

// Load reads the record from disk. Any read or parse failure, a stale
// timestamp, or a schema version mismatch yields the empty sentinel; Load
// never fails.
func (s *Store) Load() Record {
	return load(s.path)
}

// Write persists a fresh record carrying lastSetBrightness, stamped with the
// current time and schema version. The file is fully replaced. I/O failures
// are returned to the caller, which decides whether they are fatal.
func (s *Store) Write(lastSetBrightness int) error {
	rec := Record{
		LastSetBrightness: lastSetBrightness,
		Timestamp:         time.Now().Unix(),
		Ver:               SchemaVersion,
	}

	slog.Debug("Storing state", logfields.Path(s.path))

	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		s.recorder.IncStateWrite(metrics.ResultFailed)
		return errors.Wrap(err, errors.CategoryState, errors.SeverityError, "failed to marshal state")
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		s.recorder.IncStateWrite(metrics.ResultFailed)
		return errors.Wrap(err, errors.CategoryState, errors.SeverityError, "failed to write state file").
			WithContext("path", s.path)
	}

	s.recorder.IncStateWrite(metrics.ResultSuccess)
	return nil
}

// Path returns the file path the store persists to.
func (s *Store) Path() string {
	return s.path
}

// Load reads and validates the record at path without constructing a Store.
func Load(path string) Record {
	return load(path)
}

func load(path string) Record {
	// Absent fields keep the sentinel defaults, matching the validity rule
	// for files written before a field was added.
	rec := Empty()

	data, err := os.ReadFile(path)
	if err != nil {
		return Empty()
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.Error("Failed to parse state file", logfields.Path(path), logfields.Error(err))
		return Empty()
	}

	if !rec.Valid(time.Now()) {
		slog.Debug("Discarding stale or incompatible state",
			logfields.Path(path),
			slog.Int64("timestamp", rec.Timestamp),
			slog.Int("ver", rec.Ver))
		return Empty()
	}
	return rec
}
