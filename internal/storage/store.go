// Package storage persists presets to a JSON document keyed by preset name.
//
// Every mutation reads the whole document, changes it in memory and writes it
// back by renaming a temporary file over the original. Two processes writing
// the same file concurrently can lose each other's updates; the last writer
// wins.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/san-kum/pam/internal/preset"
)

// DefaultFileName is joined to a store location that names a directory.
const DefaultFileName = "presets.json"

var ErrMalformedEntry = errors.New("storage: malformed preset entry")

// ReadError reports a document that could not be read or decoded.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("storage: read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a document that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("storage: write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// EntryError describes one stored preset that failed to decode.
type EntryError struct {
	Name string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("preset %q: %v", e.Name, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Report is the outcome of a load: the decoded presets and the entries that
// were skipped.
type Report struct {
	Presets map[string]preset.Preset
	Skipped []*EntryError
}

type Store struct {
	location string
	path     string
	isNew    bool
	log      *slog.Logger
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New returns a store for location, which may be a file path or a directory.
// Nothing touches the disk until Init.
func New(location string, opts ...Option) *Store {
	s := &Store{location: location}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Init resolves the document path and creates an empty document there when
// none exists, marking the store as new.
func (s *Store) Init() error {
	path, err := resolvePath(s.location)
	if err != nil {
		return &ReadError{Path: s.location, Err: err}
	}
	s.path = path

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return &ReadError{Path: path, Err: err}
	}

	if err := s.writeAtomic([]byte("{}\n")); err != nil {
		return err
	}
	s.isNew = true
	s.log.Info("created preset store", "path", path)
	return nil
}

func resolvePath(location string) (string, error) {
	if location == "" {
		return "", errors.New("empty store location")
	}
	if strings.HasSuffix(location, string(os.PathSeparator)) || strings.HasSuffix(location, "/") {
		return filepath.Join(location, DefaultFileName), nil
	}
	info, err := os.Stat(location)
	if err == nil && info.IsDir() {
		return filepath.Join(location, DefaultFileName), nil
	}
	return location, nil
}

// Path is the resolved document path, empty before Init.
func (s *Store) Path() string { return s.path }

// IsNew reports whether Init created the document.
func (s *Store) IsNew() bool { return s.isNew }

// MarkSeeded clears the new flag once the caller has populated the document.
func (s *Store) MarkSeeded() { s.isNew = false }

// Load returns the presets that decode cleanly. Skipped entries are logged.
func (s *Store) Load() (map[string]preset.Preset, error) {
	r, err := s.LoadReport()
	if err != nil {
		return nil, err
	}
	return r.Presets, nil
}

// LoadReport decodes every entry of the document. A malformed entry is
// recorded in Skipped and does not stop the others from loading.
func (s *Store) LoadReport() (Report, error) {
	raw, err := s.readRaw()
	if err != nil {
		return Report{}, err
	}

	r := Report{Presets: make(map[string]preset.Preset, len(raw))}
	for _, name := range sortedKeys(raw) {
		p, err := decodeEntry(raw[name])
		if err != nil {
			entryErr := &EntryError{Name: name, Err: err}
			r.Skipped = append(r.Skipped, entryErr)
			s.log.Warn("skipping stored preset", "preset", name, "err", err)
			continue
		}
		r.Presets[name] = p
	}
	return r, nil
}

// SaveAll replaces the document with presets.
func (s *Store) SaveAll(presets map[string]preset.Preset) error {
	raw := make(map[string]json.RawMessage, len(presets))
	for name, p := range presets {
		data, err := json.Marshal(p)
		if err != nil {
			return &WriteError{Path: s.path, Err: fmt.Errorf("encode %q: %w", name, err)}
		}
		raw[name] = data
	}
	return s.writeRaw(raw)
}

// Upsert inserts or replaces a single entry, keeping every other entry of the
// document as stored, including ones that fail to decode.
func (s *Store) Upsert(name string, p preset.Preset) error {
	raw, err := s.readRaw()
	if err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return &WriteError{Path: s.path, Err: fmt.Errorf("encode %q: %w", name, err)}
	}
	raw[name] = data
	if err := s.writeRaw(raw); err != nil {
		return err
	}
	s.log.Debug("stored preset", "preset", name)
	return nil
}

// Remove deletes a single entry and reports whether it was present. The
// document is left untouched when it was not.
func (s *Store) Remove(name string) (bool, error) {
	raw, err := s.readRaw()
	if err != nil {
		return false, err
	}
	if _, ok := raw[name]; !ok {
		return false, nil
	}
	delete(raw, name)
	if err := s.writeRaw(raw); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) readRaw() (map[string]json.RawMessage, error) {
	if s.path == "" {
		return nil, &ReadError{Path: s.location, Err: errors.New("store not initialized")}
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, &ReadError{Path: s.path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ReadError{Path: s.path, Err: err}
	}
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	return raw, nil
}

func (s *Store) writeRaw(raw map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	return s.writeAtomic(append(data, '\n'))
}

// writeAtomic writes to a temp file in the same directory then renames it
// over the document.
func (s *Store) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".presets-*.tmp")
	if err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &WriteError{Path: s.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &WriteError{Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	return nil
}

// decodeEntry requires the exact attribute set: no missing and no extra keys.
func decodeEntry(data json.RawMessage) (preset.Preset, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return preset.Preset{}, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}
	if fields == nil {
		return preset.Preset{}, fmt.Errorf("%w: not an object", ErrMalformedEntry)
	}
	if err := checkKeys(sortedKeys(fields)); err != nil {
		return preset.Preset{}, err
	}

	var p preset.Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return preset.Preset{}, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}
	return p, nil
}

func checkKeys(keys []string) error {
	want := preset.AttributeKeys()
	have := make(map[string]bool, len(keys))
	for _, k := range keys {
		have[k] = true
	}
	var missing []string
	for _, k := range want {
		if !have[k] {
			missing = append(missing, k)
		}
		delete(have, k)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedEntry, strings.Join(missing, ", "))
	}
	if len(have) > 0 {
		extra := make([]string, 0, len(have))
		for k := range have {
			extra = append(extra, k)
		}
		sort.Strings(extra)
		return fmt.Errorf("%w: unexpected %s", ErrMalformedEntry, strings.Join(extra, ", "))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
