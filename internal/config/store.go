package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"tracker/internal/logging"
)

// Store owns config.json and the resolved directory table derived from it.
// Reads take the read lock; Replace swaps both under the write lock so no
// reader observes a half-applied update.
type Store struct {
	path string
	log  *slog.Logger

	mu   sync.RWMutex
	doc  Document
	dirs []Directory
}

// Open loads the config file at path. A missing file yields the defaults;
// a malformed one is logged and also yields the defaults.
func Open(path string) *Store {
	s := &Store{path: path, log: logging.New("config")}
	doc, err := readDocument(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		doc = Defaults()
	case err != nil:
		s.log.Warn("failed to load config, using defaults", "path", path, "error", err)
		doc = Defaults()
	}
	s.doc = doc
	s.dirs = resolveDirectories(doc.Directories)
	return s
}

// NewStatic builds a store that is never read from disk, for callers that
// construct a document in code. Replace still persists to path.
func NewStatic(path string, doc Document) *Store {
	doc.Backfill()
	return &Store{
		path: path,
		log:  logging.New("config"),
		doc:  doc,
		dirs: resolveDirectories(doc.Directories),
	}
}

func (s *Store) Path() string {
	return s.path
}

// Current returns the in-memory document.
func (s *Store) Current() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Persisted re-reads config.json, returning the defaults when it does not exist.
func (s *Store) Persisted() (Document, error) {
	doc, err := readDocument(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Replace validates doc, forces a single default directory, writes it to disk
// and swaps the in-memory directory table.
func (s *Store) Replace(doc Document) (Document, error) {
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	doc = doc.Clone()
	doc.NormalizeDefault()
	if doc.InitiativeTypes == nil {
		doc.InitiativeTypes = append([]string(nil), DefaultInitiativeTypes...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeDocument(s.path, doc); err != nil {
		return Document{}, err
	}
	s.doc = doc
	s.dirs = resolveDirectories(doc.Directories)

	names := make([]string, 0, len(doc.Directories))
	for _, dir := range doc.Directories {
		names = append(names, dir.Name)
	}
	s.log.Info("config updated, directories reloaded", "directories", names)
	return doc.Clone(), nil
}

// Directories returns the directory table with absolute paths.
func (s *Store) Directories() []Directory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.dirs)
}

// Resolve maps an optional directory name to a configured directory. Unknown
// or empty names resolve to the default; with no directories configured the
// fallback ./initiatives root is returned.
func (s *Store) Resolve(name string) Directory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name != "" {
		for _, dir := range s.dirs {
			if dir.Name == name {
				return dir
			}
		}
	}
	for _, dir := range s.dirs {
		if dir.Default {
			return dir
		}
	}
	if len(s.dirs) > 0 {
		return s.dirs[0]
	}
	return Directory{Name: FallbackDirectoryName, Path: absPath(FallbackDirectoryPath), Default: true}
}

func (s *Store) InitiativeTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.doc.InitiativeTypes)
}

func (s *Store) Server() Server {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc.Server == nil {
		return Server{Host: DefaultHost, Port: DefaultPort}
	}
	return *s.doc.Server
}

func readDocument(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	doc.Backfill()
	return doc, nil
}

func writeDocument(path string, doc Document) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp config: %w", err)
	}
	if _, err := tmp.Write(append(payload, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

func resolveDirectories(dirs []Directory) []Directory {
	resolved := make([]Directory, 0, len(dirs))
	for _, dir := range dirs {
		resolved = append(resolved, Directory{
			Name:    dir.Name,
			Path:    absPath(dir.Path),
			Default: dir.Default,
		})
	}
	return resolved
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
