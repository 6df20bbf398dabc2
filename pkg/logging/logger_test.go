package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tabdeck.log")
	logger, err := New(Config{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Info("hello", zap.String("k", "v"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	assert.Error(t, err)
}

func TestRecoverAndLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crash.log")
	logger, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	func() {
		defer RecoverAndLog(logger, "test")
		panic("boom")
	}()
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "panic recovered")
	assert.Contains(t, string(data), "boom")
}

func TestRecoverIntoSetsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crash.log")
	logger, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	run := func() (err error) {
		defer RecoverInto(logger, "run", &err)
		panic("boom")
	}
	assert.EqualError(t, run(), "panic in run: boom")

	ok := func() (err error) {
		defer RecoverInto(logger, "run", &err)
		return nil
	}
	assert.NoError(t, ok())

	_ = logger.Sync()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"context":"run"`)
}
