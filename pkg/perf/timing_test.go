package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTimerLogsElapsed(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tm := Start(zap.New(core), "render")
	base := tm.start
	tm.now = func() time.Time { return base.Add(15 * time.Millisecond) }

	assert.Equal(t, 15*time.Millisecond, tm.Stop(zap.Int("frame", 3)))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "render", entry.ContextMap()["op"])
	assert.EqualValues(t, 3, entry.ContextMap()["frame"])
}

func TestStats(t *testing.T) {
	var s Stats
	_, ok := s.Get("run")
	assert.False(t, ok)

	s.Record("run", 10*time.Millisecond)
	s.Record("run", 30*time.Millisecond)
	v, ok := s.Get("run")
	require.True(t, ok)
	assert.Equal(t, 2, v.Count)
	assert.Equal(t, 30*time.Millisecond, v.Max)
	assert.Equal(t, 20*time.Millisecond, v.Mean())
	assert.Zero(t, Sample{}.Mean())

	s.Record("copy", time.Millisecond)
	assert.Equal(t, []string{"copy", "run"}, s.Names())
}
