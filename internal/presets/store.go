// Package presets edits the color presets stored in iTerm2's preferences
// file. iTerm2 reads the file at launch and keeps its own copy in memory,
// so a deletion shows up after iTerm2 restarts.
package presets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"itermlink/internal/logging"

	"howett.net/plist"
)

// CustomPresetsKey is the top-level preferences key holding user presets.
const CustomPresetsKey = "Custom Color Presets"

// ErrPresetNotFound is returned when deleting a preset that is not
// installed.
var ErrPresetNotFound = errors.New("presets: preset not found")

// DefaultPath returns iTerm2's preferences file.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Preferences", "com.googlecode.iterm2.plist")
}

// Store reads and rewrites a preferences file.
type Store struct {
	Path string
}

// NewStore returns a store for path, or for DefaultPath when path is
// empty.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{Path: path}
}

// Names lists the custom presets, sorted.
func (s *Store) Names() ([]string, error) {
	prefs, _, err := s.load()
	if err != nil {
		return nil, err
	}
	custom, _ := prefs[CustomPresetsKey].(map[string]any)
	names := make([]string, 0, len(custom))
	for name := range custom {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the custom preset called name and writes the file back
// in the format it was read in.
func (s *Store) Delete(name string) error {
	prefs, format, err := s.load()
	if err != nil {
		return err
	}
	custom, _ := prefs[CustomPresetsKey].(map[string]any)
	if _, ok := custom[name]; !ok {
		return fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	delete(custom, name)

	data, err := plist.Marshal(prefs, format)
	if err != nil {
		return fmt.Errorf("presets: encode %s: %w", logging.MaskPath(s.Path), err)
	}
	if err := writeFileAtomic(s.Path, data); err != nil {
		return err
	}
	logging.Info("Deleted color preset", "name", name, "path", logging.MaskPath(s.Path))
	return nil
}

func (s *Store) load() (map[string]any, int, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("presets: read preferences: %w", err)
	}
	var prefs map[string]any
	format, err := plist.Unmarshal(data, &prefs)
	if err != nil {
		return nil, 0, fmt.Errorf("presets: decode %s: %w", logging.MaskPath(s.Path), err)
	}
	if prefs == nil {
		prefs = map[string]any{}
	}
	return prefs, format, nil
}

// writeFileAtomic replaces path through a temp file in the same
// directory, keeping the original permissions.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o600)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("presets: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("presets: write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("presets: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("presets: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("presets: replace preferences: %w", err)
	}
	return nil
}
