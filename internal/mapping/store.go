package mapping

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// unsafeNameChars mirrors the facade's safe-name rule: no path separators,
// parent-dir traversal, NUL, or any of <>:"|?*.
const unsafeNameChars = `<>:"|?*`

// IsSafeName reports whether name is safe to use as a mapping file name: no
// "..", "/", "\", NUL, or any of <>:"|?*.
func IsSafeName(name string) bool {
	if name == "" || strings.Contains(name, "..") ||
		strings.ContainsRune(name, '/') || strings.ContainsRune(name, '\\') ||
		strings.ContainsRune(name, 0) {
		return false
	}
	return !strings.ContainsAny(name, unsafeNameChars)
}

// Store reads and writes mapping/*.json files under a base directory
// (typically the platform data dir for com.akichase.scrcpy-mask).
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, creating it if necessary.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mapping: create store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) (string, error) {
	if !IsSafeName(name) {
		return "", fmt.Errorf("mapping: unsafe file name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// List returns the base names of every mapping file in the store.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("mapping: list store: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Read loads and parses a mapping file. It does not validate the config;
// callers that need validated configs should call Validate separately.
func (s *Store) Read(name string) (Config, error) {
	p, err := s.path(name)
	if err != nil {
		return Config{}, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return Config{}, fmt.Errorf("mapping: read %q: %w", name, err)
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("mapping: parse %q: %w", name, err)
	}
	return cfg, nil
}

// Write validates and persists cfg under name, pretty-printed.
func (s *Store) Write(name string, cfg Config, checkScript ScriptChecker) error {
	if err := Validate(cfg, checkScript); err != nil {
		return err
	}
	p, err := s.path(name)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("mapping: encode %q: %w", name, err)
	}
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return fmt.Errorf("mapping: write %q: %w", name, err)
	}
	return nil
}

// Create writes a brand-new mapping file, failing if name already exists.
func (s *Store) Create(name string, cfg Config, checkScript ScriptChecker) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err == nil {
		return fmt.Errorf("mapping: %q already exists", name)
	}
	return s.Write(name, cfg, checkScript)
}

// Rename moves a mapping file to a new name, failing if the destination
// already exists.
func (s *Store) Rename(oldName, newName string) error {
	oldPath, err := s.path(oldName)
	if err != nil {
		return err
	}
	newPath, err := s.path(newName)
	if err != nil {
		return err
	}
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("mapping: %q already exists", newName)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("mapping: rename %q to %q: %w", oldName, newName, err)
	}
	return nil
}

// Duplicate copies an existing mapping file under a new name.
func (s *Store) Duplicate(name, newName string) error {
	cfg, err := s.Read(name)
	if err != nil {
		return err
	}
	return s.Create(newName, cfg, nil)
}

// Delete removes a mapping file.
func (s *Store) Delete(name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("mapping: delete %q: %w", name, err)
	}
	return nil
}

// Migrate loads a mapping file and, only when it carries no version, stamps
// the current schema version and re-saves it; a file that already has a
// version is returned unchanged and not rewritten. It is the seam a version
// bump would extend.
func (s *Store) Migrate(name string) (Config, error) {
	cfg, err := s.Read(name)
	if err != nil {
		return Config{}, err
	}
	if cfg.Version == "" {
		cfg.Version = Default().Version
		if err := s.Write(name, cfg, nil); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
