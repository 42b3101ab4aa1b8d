// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pixelarc/rankboard/internal/adapters/directory"
	eventqueue "github.com/pixelarc/rankboard/internal/adapters/mq/queue"
	workerpool "github.com/pixelarc/rankboard/internal/adapters/mq/worker"
	"github.com/pixelarc/rankboard/internal/adapters/scoreboard"
	"github.com/pixelarc/rankboard/internal/domain/dedupe"
	"github.com/pixelarc/rankboard/internal/domain/model"
	"github.com/pixelarc/rankboard/internal/domain/period"
	"github.com/pixelarc/rankboard/internal/domain/ranking"
	"github.com/pixelarc/rankboard/internal/domain/score"
	"github.com/pixelarc/rankboard/pkg/logger"
	"github.com/pixelarc/rankboard/pkg/metrics"
)

// boardAdapter adapts scoreboard.Board to ranking.Board, translating the
// store's not-found sentinel into the ranking package's.
type boardAdapter struct {
	board scoreboard.Board
}

func (a *boardAdapter) TopRange(ctx context.Context, key string, start, stop int) ([]ranking.Member, error) {
	members, err := a.board.TopRange(ctx, key, start, stop)
	if err != nil {
		return nil, err
	}
	out := make([]ranking.Member, len(members))
	for i, m := range members {
		out[i] = ranking.Member{ID: m.ID, Combined: m.Combined}
	}
	return out, nil
}

func (a *boardAdapter) Score(ctx context.Context, key, member string) (int64, error) {
	combined, err := a.board.Score(ctx, key, member)
	if errors.Is(err, scoreboard.ErrNotFound) {
		return 0, ranking.ErrNotFound
	}
	return combined, err
}

func (a *boardAdapter) RevRank(ctx context.Context, key, member string) (int, error) {
	rank, err := a.board.RevRank(ctx, key, member)
	if errors.Is(err, scoreboard.ErrNotFound) {
		return 0, ranking.ErrNotFound
	}
	return rank, err
}

// Service implements the API dependencies for the ranking system.
type Service struct {
	mu sync.RWMutex

	// Core components
	board       scoreboard.Board
	directory   *directory.InMemoryDirectory
	deduper     dedupe.Deduper
	eventQueue  eventqueue.Queue
	workerPool  *workerpool.Pool
	assembler   *ranking.Assembler
	calendar    *period.Calendar
	redisClient *redis.Client

	// Configuration
	zone        string
	workerCount int
	queueSize   int
	dedupeSize  int
	redisAddr   string
	topListSize int
	fetchWindow int

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithZone sets the IANA time zone for period boundaries.
func WithZone(zone string) Option {
	return func(s *Service) {
		if zone != "" {
			s.zone = zone
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRedisAddr switches the leaderboard store to a Redis sorted-set board.
func WithRedisAddr(addr string) Option {
	return func(s *Service) {
		s.redisAddr = addr
	}
}

// WithTopListSize caps how many entries a rankings response lists.
func WithTopListSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topListSize = n
		}
	}
}

// WithFetchWindow sets how many raw entries are read before filtering.
func WithFetchWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fetchWindow = n
		}
	}
}

// WithDirectory injects a pre-seeded user directory.
func WithDirectory(d *directory.InMemoryDirectory) Option {
	return func(s *Service) {
		if d != nil {
			s.directory = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		zone:        period.DefaultZone,
		workerCount: runtime.NumCPU() * 4,
		queueSize:   100_000,
		dedupeSize:  500_000,
		topListSize: 99,
		fetchWindow: 121,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting ranking service...")

	calendar, err := period.New(s.zone)
	if err != nil {
		return fmt.Errorf("period calendar: %w", err)
	}
	s.calendar = calendar

	if s.redisAddr != "" {
		s.redisClient = redis.NewClient(&redis.Options{Addr: s.redisAddr})
		s.board = scoreboard.NewRedisBoard(s.redisClient)
		s.logger.Info(ctx, "using redis board", logger.String("addr", s.redisAddr))
	} else {
		s.board = scoreboard.NewMemoryBoard()
		s.logger.Info(ctx, "using in-memory board")
	}

	if s.directory == nil {
		s.directory = directory.NewInMemoryDirectory()
	}
	s.deduper = dedupe.NewRingDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)
	s.assembler = ranking.New(
		&boardAdapter{board: s.board},
		s.directory,
		ranking.WithTopListSize(s.topListSize),
		ranking.WithFetchWindow(s.fetchWindow),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.calendar, s.board)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("zone", s.zone),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping ranking service...")

	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	if q, ok := s.eventQueue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}

	s.started = false
	s.logger.Info(ctx, "ranking service stopped")
}

// SeenAndRecord atomically checks if an event id was seen and records it if
// not. Returns true if the event was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord removes an event id from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue pushes a score event for asynchronous processing without any
// dedupe check. Returns false on backpressure.
func (s *Service) Enqueue(ctx context.Context, e model.ScoreEvent) bool {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().In(s.calendar.Location())
	}

	accepted := s.eventQueue.Enqueue(ctx, e)
	if !accepted {
		s.logger.Warn(ctx, "event queue full, rejecting event",
			logger.String("eventID", e.EventID),
		)
		return false
	}

	metrics.UpdateQueueSize(s.eventQueue.Len(ctx))
	return true
}

// Submit deduplicates and enqueues a score event for asynchronous
// processing. It returns true if the event was accepted or was a duplicate,
// false if the queue rejected it.
func (s *Service) Submit(ctx context.Context, e model.ScoreEvent) bool {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}

	if s.SeenAndRecord(ctx, e.EventID) {
		s.logger.Debug(ctx, "duplicate event detected, skipping",
			logger.String("eventID", e.EventID),
			logger.String("userID", e.UserID),
		)
		return true
	}

	if !s.Enqueue(ctx, e) {
		// Allow the producer to retry the same event id later.
		s.Unrecord(ctx, e.EventID)
		return false
	}
	return true
}

// Rankings assembles the current or previous half-month leaderboard view
// for the given kind, as seen by viewerID.
func (s *Service) Rankings(ctx context.Context, kind period.Kind, family score.Family, current bool, viewerID string) (ranking.Rankings, error) {
	key, _ := s.calendar.RegularKey(kind, current, time.Now())
	return s.assembler.Assemble(ctx, key, family, viewerID)
}

// EventRankings assembles a special-event leaderboard view.
func (s *Service) EventRankings(ctx context.Context, eventID, action string, family score.Family, viewerID string) (ranking.Rankings, error) {
	key := s.calendar.EventKey(eventID, action)
	return s.assembler.Assemble(ctx, key, family, viewerID)
}

// Directory exposes the user directory for profile and freeze management.
func (s *Service) Directory() *directory.InMemoryDirectory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.directory
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"zone":        s.zone,
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()
		metrics.UpdateQueueSize(queueLen)

		now := time.Now()
		counts := make(map[string]int, 4)
		for _, kind := range []period.Kind{period.KindSpark, period.KindCraft, period.KindExtract, period.KindWinRate} {
			key, _ := s.calendar.RegularKey(kind, true, now)
			n, err := s.board.Count(ctx, key)
			if err != nil {
				continue
			}
			counts[string(kind)] = n
			metrics.UpdateBoardMembers(key, n)
		}
		stats["boardMembers"] = counts
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
