package perf

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Timer tracks elapsed time for a named operation
type Timer struct {
	log   *zap.Logger
	name  string
	start time.Time
	now   func() time.Time
}

// Start begins timing an operation. A nil logger times without logging.
func Start(log *zap.Logger, name string) *Timer {
	return &Timer{log: log, name: name, start: time.Now(), now: time.Now}
}

// Stop ends timing and logs the result at debug level
func (t *Timer) Stop(fields ...zap.Field) time.Duration {
	elapsed := t.now().Sub(t.start)
	if t.log != nil {
		t.log.Debug("timing",
			append([]zap.Field{zap.String("op", t.name), zap.Duration("elapsed", elapsed)}, fields...)...)
	}
	return elapsed
}

// Stats keeps a running count and worst case per operation name.
type Stats struct {
	mu  sync.Mutex
	ops map[string]Sample
}

type Sample struct {
	Count int
	Total time.Duration
	Max   time.Duration
}

func (s *Stats) Record(name string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ops == nil {
		s.ops = make(map[string]Sample)
	}
	cur := s.ops[name]
	cur.Count++
	cur.Total += d
	cur.Max = max(cur.Max, d)
	s.ops[name] = cur
}

// Get returns the sample for name and whether any was recorded.
func (s *Stats) Get(name string) (Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.ops[name]
	return v, ok
}

// Names returns the recorded operation names in order.
func (s *Stats) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.ops))
	for name := range s.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mean is the average duration, zero when nothing was recorded.
func (v Sample) Mean() time.Duration {
	if v.Count == 0 {
		return 0
	}
	return v.Total / time.Duration(v.Count)
}
