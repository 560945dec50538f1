package logging

import (
	"context"
	"log/slog"
	"sync"
)

// ErrorSampler throttles logs for errors that repeat under the same key.
// The first occurrence and every Nth one after that are let through.
type ErrorSampler struct {
	mu       sync.Mutex
	counts   map[string]int
	interval int
}

// NewErrorSampler returns a sampler logging every interval-th occurrence.
// Intervals below 1 fall back to 10.
func NewErrorSampler(interval int) *ErrorSampler {
	if interval < 1 {
		interval = 10
	}
	return &ErrorSampler{
		counts:   make(map[string]int),
		interval: interval,
	}
}

// ShouldLog counts one occurrence of key and reports whether to log it.
func (s *ErrorSampler) ShouldLog(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[key]++
	count := s.counts[key]
	return count == 1 || count%s.interval == 0
}

// Warn logs msg at warn level when the occurrence of key is sampled in.
// The running count is attached as "occurrences".
func (s *ErrorSampler) Warn(ctx context.Context, key, msg string, args ...any) {
	if !s.ShouldLog(key) {
		return
	}
	args = append(args, "occurrences", s.GetCount(key))
	slog.Default().WarnContext(ctx, msg, args...)
}

func (s *ErrorSampler) GetCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[key]
}

// Reset forgets key, typically after the failing operation recovers.
func (s *ErrorSampler) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, key)
}

func (s *ErrorSampler) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = make(map[string]int)
}
