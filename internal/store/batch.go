package store

import (
	"context"
	"log/slog"
	"time"
)

type pendingUpdate struct {
	id    string
	patch Patch
}

// Update enqueues patch for id. It is applied by the next flush: either the
// debounce timer firing DebounceDelay after the latest enqueue, or the Start
// ticker. Updates to one id apply in enqueue order. Unknown ids are ignored
// when the batch is applied.
func (s *Store) Update(id string, patch Patch) {
	s.queueMu.Lock()
	if s.closed {
		s.queueMu.Unlock()
		s.flushMu.Lock()
		defer s.flushMu.Unlock()
		s.applyBatch([]pendingUpdate{{id: id, patch: patch}})
		return
	}
	s.pending = append(s.pending, pendingUpdate{id: id, patch: patch})
	if s.debounce == nil {
		s.debounce = time.AfterFunc(s.cfg.DebounceDelay, s.Flush)
	} else {
		s.debounce.Reset(s.cfg.DebounceDelay)
	}
	s.queueMu.Unlock()
}

// Flush applies every pending update in one locked batch.
func (s *Store) Flush() {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.queueMu.Lock()
	batch := s.pending
	s.pending = nil
	s.queueMu.Unlock()

	if len(batch) > 0 {
		s.applyBatch(batch)
	}
}

// Pending returns the number of updates waiting for a flush.
func (s *Store) Pending() int {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	return len(s.pending)
}

// Start runs the batch ticker until ctx is done, then flushes what is left.
func (s *Store) Start(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("starting identity store batch processor",
			slog.Duration("interval", s.cfg.BatchInterval),
			slog.Duration("debounce", s.cfg.DebounceDelay),
		)
	}

	ticker := time.NewTicker(s.cfg.BatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Flush()
			if s.logger != nil {
				s.logger.Info("stopping identity store batch processor")
			}
			return ctx.Err()
		case <-ticker.C:
			s.Flush()
		}
	}
}

// Close stops the debounce timer and applies pending updates. Updates made
// after Close are applied synchronously.
func (s *Store) Close() {
	s.queueMu.Lock()
	s.closed = true
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.queueMu.Unlock()

	s.Flush()
}

// applyBatch moves every touched record between index buckets under a single
// lock, so readers never see a record in two status buckets or in none.
func (s *Store) applyBatch(batch []pendingUpdate) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range batch {
		old, ok := s.byID[u.id]
		if !ok {
			continue
		}
		updated := old
		u.patch.apply(&updated)
		if updated.Status == "" {
			updated.Status = StatusActive
		}
		updated.UpdatedAt = now

		s.unindex(old)
		s.index(updated)
	}
}
