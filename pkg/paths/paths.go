// Package paths provides centralized path resolution for tabdeck's config,
// state and runtime files, plus project root discovery.
//
// Layout (XDG-style):
//
//	Config:  ~/.config/tabdeck/config.yaml   (override: TABDECK_CONFIG_DIR)
//	State:   ~/.local/state/tabdeck/         (override: TABDECK_STATE_DIR)
//	Runtime: $XDG_RUNTIME_DIR or os.TempDir() (override: TABDECK_RUNTIME_DIR)
package paths

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrProjectRootNotFound is returned when no marker file exists between the
// start directory and the filesystem root.
var ErrProjectRootNotFound = errors.New("project root not found")

var (
	configDirOnce   sync.Once
	configDirCached string

	stateDirOnce   sync.Once
	stateDirCached string

	runtimeDirOnce   sync.Once
	runtimeDirCached string
)

// ConfigDir resolves the config directory.
// Priority: TABDECK_CONFIG_DIR env > ~/.config/tabdeck/
func ConfigDir() string {
	configDirOnce.Do(func() {
		configDirCached = resolveDir("TABDECK_CONFIG_DIR", ".config", "tabdeck")
	})
	return configDirCached
}

// StateDir resolves the state directory.
// Priority: TABDECK_STATE_DIR env > ~/.local/state/tabdeck/
func StateDir() string {
	stateDirOnce.Do(func() {
		stateDirCached = resolveDir("TABDECK_STATE_DIR", ".local", "state", "tabdeck")
	})
	return stateDirCached
}

// RuntimeDir resolves the directory for sockets.
// Priority: TABDECK_RUNTIME_DIR env > XDG_RUNTIME_DIR > os.TempDir()
func RuntimeDir() string {
	runtimeDirOnce.Do(func() {
		switch {
		case os.Getenv("TABDECK_RUNTIME_DIR") != "":
			runtimeDirCached = os.Getenv("TABDECK_RUNTIME_DIR")
		case os.Getenv("XDG_RUNTIME_DIR") != "":
			runtimeDirCached = os.Getenv("XDG_RUNTIME_DIR")
		default:
			runtimeDirCached = os.TempDir()
		}
	})
	return runtimeDirCached
}

func resolveDir(env string, homeRel ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(append([]string{home}, homeRel...)...)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StatePath returns the full path to a state file (e.g. "state.json").
func StatePath(filename string) string {
	return filepath.Join(StateDir(), filename)
}

// SocketPath returns the control socket path for a project root. Each
// project gets its own socket so two dashboards never share one.
func SocketPath(projectRoot string) string {
	return filepath.Join(RuntimeDir(), fmt.Sprintf("tabdeck-%s.sock", projectKey(projectRoot)))
}

// ProjectStatePath returns the state document path for a project root.
func ProjectStatePath(projectRoot string) string {
	return StatePath(fmt.Sprintf("state-%s.json", projectKey(projectRoot)))
}

func projectKey(projectRoot string) string {
	sum := sha1.Sum([]byte(projectRoot))
	return hex.EncodeToString(sum[:])[:12]
}

// EnsureConfigDir creates the config directory if it doesn't exist and returns its path.
func EnsureConfigDir() (string, error) {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir %s: %w", dir, err)
	}
	return dir, nil
}

// EnsureStateDir creates the state directory if it doesn't exist and returns its path.
func EnsureStateDir() (string, error) {
	dir := StateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return dir, nil
}

// FindProjectRoot walks from start towards the filesystem root and returns
// the first directory containing any of the marker names.
func FindProjectRoot(start string, markers ...string) (string, error) {
	if len(markers) == 0 {
		return "", fmt.Errorf("find project root: no markers given")
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("find project root: %w", err)
	}
	for {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %v above %s", ErrProjectRootNotFound, markers, start)
		}
		dir = parent
	}
}

// ResetForTest clears cached values so tests can re-run resolution logic.
// Only use in tests.
func ResetForTest() {
	configDirOnce = sync.Once{}
	configDirCached = ""
	stateDirOnce = sync.Once{}
	stateDirCached = ""
	runtimeDirOnce = sync.Once{}
	runtimeDirCached = ""
}
