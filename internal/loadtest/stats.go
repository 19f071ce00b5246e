package loadtest

import (
	"sort"
	"sync"
	"time"
)

// TaskStats counts the outcomes of one task.
type TaskStats struct {
	Name     string
	Requests int
	Failures int
	Total    time.Duration
}

// Average returns the mean task duration.
func (s TaskStats) Average() time.Duration {
	if s.Requests == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Requests)
}

// Stats is safe for concurrent use by every simulated user.
type Stats struct {
	mu    sync.Mutex
	tasks map[string]*TaskStats
}

func newStats() *Stats {
	return &Stats{tasks: make(map[string]*TaskStats)}
}

func (s *Stats) record(name string, took time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts, ok := s.tasks[name]
	if !ok {
		ts = &TaskStats{Name: name}
		s.tasks[name] = ts
	}
	ts.Requests++
	ts.Total += took
	if err != nil {
		ts.Failures++
	}
}

// Snapshot returns per-task totals sorted by name.
func (s *Stats) Snapshot() []TaskStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TaskStats, 0, len(s.tasks))
	for _, ts := range s.tasks {
		out = append(out, *ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
