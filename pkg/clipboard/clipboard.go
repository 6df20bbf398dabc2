// Package clipboard wraps the system clipboard behind an interface so tests
// and headless sessions can substitute an in-memory one.
package clipboard

import (
	"errors"
	"sync"

	"github.com/atotto/clipboard"
)

var ErrUnavailable = errors.New("clipboard unavailable")

type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// System uses the platform clipboard tools.
type System struct{}

func (System) Read() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnavailable
	}
	return clipboard.ReadAll()
}

func (System) Write(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(text)
}

// Memory is a process-local clipboard.
type Memory struct {
	mu   sync.Mutex
	text string
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}

// Default returns the system clipboard when the platform supports one and a
// Memory clipboard otherwise.
func Default() Clipboard {
	if clipboard.Unsupported {
		return &Memory{}
	}
	return System{}
}
