package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bymjmazzei/par-noir/internal/errors"
	"github.com/bymjmazzei/par-noir/internal/metrics"
)

// Config holds the store's cache and batching parameters.
type Config struct {
	CacheTTL      time.Duration
	CacheCapacity int
	BatchInterval time.Duration
	DebounceDelay time.Duration
}

// DefaultConfig returns a 5 minute TTL, 1000 cache entries, a 100ms batch
// tick and a 50ms debounce.
func DefaultConfig() Config {
	return Config{
		CacheTTL:      5 * time.Minute,
		CacheCapacity: 1000,
		BatchInterval: 100 * time.Millisecond,
		DebounceDelay: 50 * time.Millisecond,
	}
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for cache expiry and record timestamps.
func WithClock(clock Clock) Option {
	return func(s *Store) { s.clock = clock }
}

// WithReporter sets where consistency violations are reported.
func WithReporter(reporter errors.Reporter) Option {
	return func(s *Store) { s.reporter = reporter }
}

// WithMetrics records cache hits and misses.
func WithMetrics(m metrics.BusinessMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithLogger sets the logger used by the batch processor.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Store is the indexed identity store. All methods are safe for concurrent
// use.
type Store struct {
	cfg      Config
	clock    Clock
	reporter errors.Reporter
	metrics  metrics.BusinessMetrics
	logger   *slog.Logger

	mu        sync.Mutex
	byID      map[string]Identity
	byAlias   map[string]string
	byContact map[string]map[string]struct{}
	byStatus  map[Status]map[string]struct{}
	cache     *ttlCache

	queueMu  sync.Mutex
	pending  []pendingUpdate
	debounce *time.Timer
	closed   bool

	flushMu sync.Mutex
}

// New creates an empty Store.
func New(cfg Config, opts ...Option) *Store {
	s := &Store{
		cfg:       cfg,
		clock:     SystemClock{},
		reporter:  errors.NewSlogReporter(nil),
		metrics:   metrics.NewNoOpBusinessMetrics(),
		byID:      make(map[string]Identity),
		byAlias:   make(map[string]string),
		byContact: make(map[string]map[string]struct{}),
		byStatus:  make(map[Status]map[string]struct{}),
		cache:     newTTLCache(cfg.CacheTTL, cfg.CacheCapacity),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add inserts or replaces identity. An existing alias mapping is overwritten
// by the newest record. Records without an ID are ignored.
func (s *Store) Add(identity Identity) {
	if identity.ID == "" {
		return
	}
	now := s.clock.Now()
	if identity.Status == "" {
		identity.Status = StatusActive
	}
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = now
	}
	identity.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byID[identity.ID]; ok {
		s.unindex(old)
	}
	s.index(identity)
}

// GetByID returns the identity with id.
func (s *Store) GetByID(id string) (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cached("id", idKey(id)); ok {
		return v.(Identity), true
	}
	identity, ok := s.byID[id]
	if ok {
		s.cache.set(idKey(id), identity, s.clock.Now())
	}
	return identity, ok
}

// GetByAlias returns the identity currently holding alias.
func (s *Store) GetByAlias(alias string) (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cached("alias", aliasKey(alias)); ok {
		return v.(Identity), true
	}
	id, ok := s.byAlias[alias]
	if !ok {
		return Identity{}, false
	}
	identity := s.byID[id]
	s.cache.set(aliasKey(alias), identity, s.clock.Now())
	return identity, true
}

// GetByContact returns every identity sharing contact, ordered by ID.
func (s *Store) GetByContact(contact string) []Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cached("contact", contactKey(contact)); ok {
		return slices.Clone(v.([]Identity))
	}
	result := s.collect(s.byContact[contact])
	s.cache.set(contactKey(contact), result, s.clock.Now())
	return slices.Clone(result)
}

// GetByStatus returns every identity with status, ordered by ID.
func (s *Store) GetByStatus(status Status) []Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cached("status", statusKey(status)); ok {
		return slices.Clone(v.([]Identity))
	}
	result := s.collect(s.byStatus[status])
	s.cache.set(statusKey(status), result, s.clock.Now())
	return slices.Clone(result)
}

// Delete removes id from the primary map and every index immediately.
// Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[id]
	if !ok {
		return
	}
	s.unindex(old)
	delete(s.byID, id)
}

// Len returns the number of stored identities.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// CheckConsistency verifies that every index agrees with the primary map.
// A violation is reported and returned as ErrStoreConsistency.
func (s *Store) CheckConsistency(ctx context.Context) error {
	s.mu.Lock()
	err := s.checkLocked()
	s.mu.Unlock()

	if err != nil {
		s.reporter.Report(ctx, "store.check_consistency", err)
	}
	return err
}

func (s *Store) checkLocked() error {
	for id, rec := range s.byID {
		if rec.ID != id {
			return errors.Wrapf(ErrStoreConsistency, "record %q stored under %q", rec.ID, id)
		}
		buckets := 0
		for _, bucket := range s.byStatus {
			if _, ok := bucket[id]; ok {
				buckets++
			}
		}
		if buckets != 1 {
			return errors.Wrapf(ErrStoreConsistency, "record %q in %d status buckets", id, buckets)
		}
		if _, ok := s.byStatus[rec.Status][id]; !ok {
			return errors.Wrapf(ErrStoreConsistency, "record %q missing from status %q", id, rec.Status)
		}
		if rec.Contact != "" {
			if _, ok := s.byContact[rec.Contact][id]; !ok {
				return errors.Wrapf(ErrStoreConsistency, "record %q missing from contact index", id)
			}
		}
		if rec.Alias != "" {
			holder, ok := s.byAlias[rec.Alias]
			if !ok || s.byID[holder].Alias != rec.Alias {
				return errors.Wrapf(ErrStoreConsistency, "alias of record %q is not indexed", id)
			}
		}
	}
	for alias, id := range s.byAlias {
		if rec, ok := s.byID[id]; !ok || rec.Alias != alias {
			return errors.Wrapf(ErrStoreConsistency, "alias %q points to %q", alias, id)
		}
	}
	for contact, bucket := range s.byContact {
		if len(bucket) == 0 {
			return errors.Wrapf(ErrStoreConsistency, "empty contact bucket %q", contact)
		}
		for id := range bucket {
			if rec, ok := s.byID[id]; !ok || rec.Contact != contact {
				return errors.Wrapf(ErrStoreConsistency, "contact %q lists %q", contact, id)
			}
		}
	}
	for status, bucket := range s.byStatus {
		if len(bucket) == 0 {
			return errors.Wrapf(ErrStoreConsistency, "empty status bucket %q", status)
		}
		for id := range bucket {
			if rec, ok := s.byID[id]; !ok || rec.Status != status {
				return errors.Wrapf(ErrStoreConsistency, "status %q lists %q", status, id)
			}
		}
	}
	return nil
}

// cached looks key up and records the outcome. Callers hold mu.
func (s *Store) cached(index, key string) (any, bool) {
	v, ok := s.cache.get(key, s.clock.Now())
	s.metrics.RecordCacheLookup(context.Background(), index, ok)
	return v, ok
}

// index adds rec to the primary map and every index. Callers hold mu.
func (s *Store) index(rec Identity) {
	s.byID[rec.ID] = rec
	if rec.Alias != "" {
		s.byAlias[rec.Alias] = rec.ID
	}
	if rec.Contact != "" {
		addToSet(s.byContact, rec.Contact, rec.ID)
	}
	addToSet(s.byStatus, rec.Status, rec.ID)
	s.invalidateFor(rec)
}

// unindex removes rec from every index, pruning empty buckets. An alias
// released by rec passes to another record carrying the same alias, if any.
// The primary map entry is left to the caller. Callers hold mu.
func (s *Store) unindex(rec Identity) {
	if rec.Alias != "" && s.byAlias[rec.Alias] == rec.ID {
		delete(s.byAlias, rec.Alias)
		for id, other := range s.byID {
			if id != rec.ID && other.Alias == rec.Alias {
				s.byAlias[rec.Alias] = id
				break
			}
		}
	}
	if rec.Contact != "" {
		removeFromSet(s.byContact, rec.Contact, rec.ID)
	}
	removeFromSet(s.byStatus, rec.Status, rec.ID)
	s.invalidateFor(rec)
}

func (s *Store) invalidateFor(rec Identity) {
	s.cache.invalidate(
		idKey(rec.ID),
		aliasKey(rec.Alias),
		contactKey(rec.Contact),
		statusKey(rec.Status),
	)
}

// collect returns the records whose ids are in set, ordered by ID.
func (s *Store) collect(set map[string]struct{}) []Identity {
	result := make([]Identity, 0, len(set))
	for id := range set {
		result = append(result, s.byID[id])
	}
	slices.SortFunc(result, func(a, b Identity) int {
		return compareStrings(a.ID, b.ID)
	})
	return result
}

func addToSet[K comparable](index map[K]map[string]struct{}, key K, id string) {
	bucket, ok := index[key]
	if !ok {
		bucket = make(map[string]struct{})
		index[key] = bucket
	}
	bucket[id] = struct{}{}
}

func removeFromSet[K comparable](index map[K]map[string]struct{}, key K, id string) {
	bucket, ok := index[key]
	if !ok {
		return
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(index, key)
	}
}
