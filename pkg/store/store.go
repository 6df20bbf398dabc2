// Package store persists the dashboard document: selected tabs, focus and
// prompt history, as a single JSON file.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/b/tabdeck/pkg/logging"
)

var ErrCorrupt = errors.New("state document is corrupt")

// CurrentVersion is written into every saved document.
const CurrentVersion = 1

// Document is the persisted part of application state.
type Document struct {
	Version int `json:"version"`
	// Selections maps a tab container id to the id of its selected tab.
	Selections map[string]string `json:"selections,omitempty"`
	Focus      string            `json:"focus,omitempty"`
	History    []string          `json:"history,omitempty"`
}

// Store reads and writes one document file. Saves replace the whole file.
type Store struct {
	path string
	log  *zap.Logger

	mu   sync.Mutex
	last []byte // bytes of the most recent save, used to ignore our own writes
}

func New(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, log: log}
}

func (s *Store) Path() string { return s.path }

// Load reads the document. A missing file is an empty document; unparsable
// content is an error wrapping ErrCorrupt.
func (s *Store) Load() (Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Document{}, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return decode(s.path, data)
}

func decode(path string, data []byte) (Document, error) {
	var doc Document
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}
	if doc.Version > CurrentVersion {
		return Document{}, fmt.Errorf("%w: %s: unsupported version %d", ErrCorrupt, path, doc.Version)
	}
	return doc, nil
}

// Save writes doc to a temporary file in the same directory and renames it
// over the target.
func (s *Store) Save(doc Document) error {
	if doc.Version == 0 {
		doc.Version = CurrentVersion
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	s.last = data
	s.log.Debug("document saved", zap.String("path", s.path), zap.Int("bytes", len(data)))
	return nil
}

// Watch calls onChange whenever the file is replaced or written by another
// process. It returns once the watcher is running; watching stops when ctx
// is done.
func (s *Store) Watch(ctx context.Context, onChange func(Document)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	// Watch the directory: rename-based saves replace the inode.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer logging.RecoverAndLog(s.log, "state watcher")
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				s.reload(onChange)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("watch error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (s *Store) reload(onChange func(Document)) {
	defer logging.RecoverAndLog(s.log, "state reload")
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	s.mu.Lock()
	own := bytes.Equal(data, s.last)
	s.mu.Unlock()
	if own {
		return
	}
	doc, err := decode(s.path, data)
	if err != nil {
		s.log.Warn("ignoring external change", zap.Error(err))
		return
	}
	onChange(doc)
}
