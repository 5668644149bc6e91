// Package config is the JSON-backed store shared by every front-end: an
// enable flag plus the list of dates on which nothing gets reported.
//
// The file is loaded once and rewritten whole after each mutation. Nothing
// coordinates separate processes writing the same file; the last write wins.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"
)

const (
	// DateLayout is how skip dates are stored (day/month/year).
	DateLayout = "02/01/2006"

	enabledKey   = "ENABLED"
	skipDatesKey = "SKIP_DATES"
)

var (
	ErrNoEnabledKey = errors.New("config has no " + enabledKey + " key")
	ErrExists       = errors.New("config file already exists")
)

type Store struct {
	mu        sync.Mutex
	path      string
	enabled   bool
	skipDates []time.Time

	// Keys this package doesn't know about, written back untouched.
	extra map[string]json.RawMessage
}

// Load reads the store at path. A missing or malformed file is an error;
// no default record is made up.
func Load(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Init writes a fresh store at path and returns it. It refuses to replace an
// existing file.
func Init(path string, enabled bool) (*Store, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error checking %s: %w", path, err)
	}

	s := &Store{path: path, enabled: enabled}
	if err := s.commit(enabled, nil); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the backing file, replacing the in-memory view.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("error parsing config %s: %w", s.path, err)
	}

	enabledRaw, ok := raw[enabledKey]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoEnabledKey, s.path)
	}
	var enabled bool
	if err := json.Unmarshal(enabledRaw, &enabled); err != nil {
		return fmt.Errorf("error parsing %s in %s: %w", enabledKey, s.path, err)
	}

	var stored []string
	if datesRaw, ok := raw[skipDatesKey]; ok {
		if err := json.Unmarshal(datesRaw, &stored); err != nil {
			return fmt.Errorf("error parsing %s in %s: %w", skipDatesKey, s.path, err)
		}
	}
	days := make([]time.Time, 0, len(stored))
	for _, d := range stored {
		day, err := time.Parse(DateLayout, d)
		if err != nil {
			return fmt.Errorf("bad skip date %q in %s: %w", d, s.path, err)
		}
		days = append(days, day)
	}

	delete(raw, enabledKey)
	delete(raw, skipDatesKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
	s.skipDates = normalize(days)
	s.extra = raw
	return nil
}

func (s *Store) IsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *Store) SetEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commit(enabled, s.skipDates); err != nil {
		return err
	}
	s.enabled = enabled
	return nil
}

// SkipDates returns the skip dates as stored, oldest first.
func (s *Store) SkipDates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.skipDates))
	for i, d := range s.skipDates {
		out[i] = d.Format(DateLayout)
	}
	return out
}

// SkipDays returns the skip dates as midnight UTC times, oldest first.
func (s *Store) SkipDays() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.skipDates)
}

// AddSkipDate records the calendar date of day. Adding a date twice is a
// no-op apart from rewriting the file.
func (s *Store) AddSkipDate(day time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	days := normalize(append(slices.Clone(s.skipDates), Day(day)))
	if err := s.commit(s.enabled, days); err != nil {
		return err
	}
	s.skipDates = days
	return nil
}

// IsSkipped reports whether the calendar date of t, in t's location, is a
// skip date.
func (s *Store) IsSkipped(t time.Time) bool {
	d := Day(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, found := slices.BinarySearchFunc(s.skipDates, d, func(a, b time.Time) int {
		return a.Compare(b)
	})
	return found
}

// commit writes enabled and days, with the extra keys, to the file. The
// in-memory record is left alone; callers update it once commit succeeds.
// It must be called with s.mu held.
func (s *Store) commit(enabled bool, days []time.Time) error {
	out := make(map[string]any, len(s.extra)+2)
	for k, v := range s.extra {
		out[k] = v
	}
	dates := make([]string, len(days))
	for i, d := range days {
		dates[i] = d.Format(DateLayout)
	}
	out[enabledKey] = enabled
	out[skipDatesKey] = dates

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return nil
}

func normalize(days []time.Time) []time.Time {
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(days, func(a, b time.Time) bool { return a.Equal(b) })
}
