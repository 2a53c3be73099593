package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/inkwell/engage/internal/bus"
	"github.com/inkwell/engage/internal/cache"
	"github.com/inkwell/engage/internal/model"
)

// Fetcher retrieves the full authoritative notification list.
type Fetcher interface {
	ListNotifications(ctx context.Context) ([]model.Notification, error)
}

// Archiver records observed notifications for offline history. Archive
// failures never affect the live cache.
type Archiver interface {
	Record(ctx context.Context, notifications []model.Notification) error
}

// fetchTimeout is the maximum time allowed for a single poll fetch.
const fetchTimeout = 30 * time.Second

// Config tunes a Synchronizer. Zero values select the defaults.
type Config struct {
	// Interval between regular poll cycles. Default 30s.
	Interval time.Duration

	// RetryDelay before retrying a failed fetch. Default 5s.
	RetryDelay time.Duration

	// MaxFailures is the number of consecutive fetch failures after which
	// polling stops until explicitly restarted. Default 3.
	MaxFailures int

	// Archive, when set, records every fetched notification.
	Archive Archiver
}

// Synchronizer keeps the notification slice of the cache fresh by
// periodically pulling the authoritative list, replacing the cached
// collection wholesale, and publishing the resulting views on the bus.
// Instances are independent; none of the polling state is process-wide.
type Synchronizer struct {
	fetcher     Fetcher
	cache       *cache.Cache
	bus         *bus.Bus
	archive     Archiver
	interval    time.Duration
	retryDelay  time.Duration
	maxFailures int

	mu       gosync.Mutex
	running  bool
	stopCh   chan struct{}
	failures int
	prevIDs  map[string]struct{}
}

// New creates a Synchronizer publishing into the given cache and bus.
func New(fetcher Fetcher, c *cache.Cache, b *bus.Bus, cfg Config) *Synchronizer {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	return &Synchronizer{
		fetcher:     fetcher,
		cache:       c,
		bus:         b,
		archive:     cfg.Archive,
		interval:    cfg.Interval,
		retryDelay:  cfg.RetryDelay,
		maxFailures: cfg.MaxFailures,
		prevIDs:     make(map[string]struct{}),
	}
}

// Start begins an immediate fetch and schedules recurring ones. Starting
// while already started is a no-op. Starting after the synchronizer gave
// up on consecutive failures resets the failure counter.
func (s *Synchronizer) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.failures = 0
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mu.Unlock()

	s.bus.Publish(bus.TopicPollingStarted, nil)
	go s.run(stop)
}

// Stop cancels the recurring schedule and any pending retry. Idempotent;
// publishes "polling-stopped" only if polling was running.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.bus.Publish(bus.TopicPollingStopped, nil)
}

// IsPolling reports whether the recurring schedule is active.
func (s *Synchronizer) IsPolling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// run drives the poll loop until stopped or retries are exhausted.
// One timer serves both the regular interval and the shorter retry delay.
func (s *Synchronizer) run(stop chan struct{}) {
	retry := backoff.NewConstantBackOff(s.retryDelay)

	timer := time.NewTimer(0) // initial fetch fires immediately
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			if err := s.cycle(stop); err != nil {
				failures := s.recordFailure()
				if failures >= s.maxFailures {
					s.giveUp(stop, err, failures)
					return
				}
				timer.Reset(retry.NextBackOff())
				continue
			}
			s.resetFailures()
			retry.Reset()
			timer.Reset(s.interval)
		}
	}
}

// cycle performs one fetch-and-diff. A cycle resolving after Stop
// discards its result rather than touching shared state.
func (s *Synchronizer) cycle(stop chan struct{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	list, err := s.fetcher.ListNotifications(ctx)
	if err != nil {
		return err
	}

	select {
	case <-stop:
		return nil
	default:
	}

	if s.archive != nil {
		_ = s.archive.Record(ctx, list)
	}

	ids := make([]string, len(list))
	entities := make(map[string]any, len(list))
	for i, n := range list {
		ids[i] = n.ID
		entities[n.ID] = n
	}
	s.cache.Replace(cache.KindNotification, ids, entities)

	// Diff by identity against the previous poll's snapshot: a
	// notification is "new" only if its id was absent last cycle and it
	// is unread now. Read-state churn on old items never misattributes
	// newness this way.
	unread := 0
	var newItems []model.Notification
	s.mu.Lock()
	for _, n := range list {
		if n.Read {
			continue
		}
		unread++
		if _, seen := s.prevIDs[n.ID]; !seen {
			newItems = append(newItems, n)
		}
	}
	s.prevIDs = make(map[string]struct{}, len(list))
	for _, n := range list {
		s.prevIDs[n.ID] = struct{}{}
	}
	s.mu.Unlock()

	if len(newItems) > 0 {
		s.bus.Publish(bus.TopicNewItems, bus.NewItemsPayload{Notifications: newItems})
	}
	// The unread-count-changed event is derived from this publish by the
	// single owner of that topic (the service), so poll cycles and local
	// mutations cannot diverge on what was last announced.
	s.bus.Publish(bus.TopicUpdated, bus.UpdatedPayload{
		Notifications: list,
		UnreadCount:   unread,
	})

	return nil
}

func (s *Synchronizer) recordFailure() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	return s.failures
}

func (s *Synchronizer) resetFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = 0
}

// giveUp stops the schedule after exhausting retries. The synchronizer
// does not resume on its own; a caller must Start it again.
func (s *Synchronizer) giveUp(stop chan struct{}, err error, failures int) {
	s.mu.Lock()
	if !s.running || s.stopCh != stop {
		// An explicit Stop (or a restart) won the race.
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.bus.Publish(bus.TopicPollingError, bus.PollingErrorPayload{
		Err:      err,
		Failures: failures,
	})
}
