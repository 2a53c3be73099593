package engage

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"github.com/inkwell/engage/internal/api"
	"github.com/inkwell/engage/internal/bus"
	"github.com/inkwell/engage/internal/cache"
	"github.com/inkwell/engage/internal/loader"
	"github.com/inkwell/engage/internal/model"
	appsync "github.com/inkwell/engage/internal/sync"
)

// API is the remote surface the service consumes. *api.Client satisfies
// it; tests substitute a fake.
type API interface {
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) (int, error)
	DeleteNotification(ctx context.Context, id string) error

	ToggleLike(ctx context.Context, contentID string) (api.LikeResult, error)
	GetLikeStatus(ctx context.Context, contentID string) (api.LikeResult, error)

	ListRatings(ctx context.Context, contentID string, page int) (api.Page[model.Rating], error)
	SubmitRating(ctx context.Context, contentID string, stars int, reviewText string) (model.Rating, error)
	GetMyRating(ctx context.Context, contentID string) (*model.Rating, error)

	ListComments(ctx context.Context, contentID string, page int) (api.Page[model.Comment], error)
	PostComment(ctx context.Context, contentID, text, parentID, sectionID string) (model.Comment, error)
	UpdateComment(ctx context.Context, id, text string) (model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	GetReplies(ctx context.Context, id string) ([]model.Comment, error)

	GetFollowStatus(ctx context.Context, username string) (api.FollowResult, error)
	Follow(ctx context.Context, username string) (api.FollowResult, error)
	Unfollow(ctx context.Context, username string) (api.FollowResult, error)
}

// Config tunes a Service. Zero values select the defaults.
type Config struct {
	// Debounce is the minimum interval between accepted retriggerable
	// mutations (like/follow toggles) per target. Default 500ms.
	Debounce time.Duration

	// Polling configures the notification synchronizer.
	Polling appsync.Config
}

// Service is the single surface UI consumers talk to: read accessors per
// entity kind, optimistic mutations, polling control, and bus
// subscription. It owns the per-identity guards, so no mutation path
// bypasses the single-flight and debounce rules.
type Service struct {
	api   API
	cache *cache.Cache
	bus   *bus.Bus
	sync  *appsync.Synchronizer
	guard *guard

	mu             gosync.Mutex
	commentLoaders map[string]*loader.Loader[model.Comment]
	ratingLoaders  map[string]*loader.Loader[model.Rating]
	seeded         map[string]bool
	seedInFlight   map[string]bool
	lastUnread     int
}

// New creates a Service over the given remote API.
func New(remote API, cfg Config) *Service {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}

	c := cache.New()
	b := bus.New()
	s := &Service{
		api:            remote,
		cache:          c,
		bus:            b,
		guard:          newGuard(cfg.Debounce),
		commentLoaders: make(map[string]*loader.Loader[model.Comment]),
		ratingLoaders:  make(map[string]*loader.Loader[model.Rating]),
		seeded:         make(map[string]bool),
		seedInFlight:   make(map[string]bool),
	}
	// Registered before any consumer so the derived count event always
	// precedes later handlers' view of the same update.
	b.Subscribe(bus.TopicUpdated, s.onUpdated)
	s.sync = appsync.New(remote, c, b, cfg.Polling)
	return s
}

// onUpdated owns the unread-count-changed publish path. Every "updated"
// publish flows through here, whether it came from a poll cycle or a
// local mutation, so the last announced count can never go stale on one
// side.
func (s *Service) onUpdated(payload any) {
	p, ok := payload.(bus.UpdatedPayload)
	if !ok {
		return
	}

	s.mu.Lock()
	changed := p.UnreadCount != s.lastUnread
	s.lastUnread = p.UnreadCount
	s.mu.Unlock()

	if changed {
		s.bus.Publish(bus.TopicUnreadCountChanged, bus.UnreadCountPayload{Count: p.UnreadCount})
	}
}

// Subscribe registers a handler on the service's event bus and returns
// an unsubscribe function.
func (s *Service) Subscribe(topic bus.Topic, h bus.Handler) func() {
	return s.bus.Subscribe(topic, h)
}

// StartPolling begins notification polling. No-op if already polling.
func (s *Service) StartPolling() { s.sync.Start() }

// StopPolling cancels notification polling. Idempotent.
func (s *Service) StopPolling() { s.sync.Stop() }

// IsPolling reports whether notification polling is active.
func (s *Service) IsPolling() bool { return s.sync.IsPolling() }

// Notifications returns the cached notification list in server order.
func (s *Service) Notifications() []model.Notification {
	raw := s.cache.List(cache.KindNotification)
	out := make([]model.Notification, 0, len(raw))
	for _, e := range raw {
		if n, ok := e.(model.Notification); ok {
			out = append(out, n)
		}
	}
	return out
}

// UnreadCount derives the unread count from the cached list. It is never
// stored independently, so it cannot diverge from the list itself.
func (s *Service) UnreadCount() int {
	count := 0
	for _, n := range s.Notifications() {
		if !n.Read {
			count++
		}
	}
	return count
}

// Engagement returns the engagement state for the content, seeding it
// from the server on first access. Callers without a session silently get
// the zero state.
func (s *Service) Engagement(ctx context.Context, contentID string) (model.EngagementState, error) {
	if err := s.seedEngagement(ctx, contentID); err != nil {
		return model.EngagementState{}, err
	}
	return s.engagementState(contentID), nil
}

// FollowStateFor returns the follow state for the creator, seeding it
// from the server on first access.
func (s *Service) FollowStateFor(ctx context.Context, username string) (model.FollowState, error) {
	if err := s.seedFollow(ctx, username); err != nil {
		return model.FollowState{}, err
	}
	return s.followState(username), nil
}

// Comments returns the loaded comment collection for the content,
// triggering the initial page fetch on first access.
func (s *Service) Comments(ctx context.Context, contentID string) ([]model.Comment, error) {
	l := s.commentLoader(contentID)
	if err := l.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return l.Items(), nil
}

// CommentThreads returns the comment collection organized into rooted
// forests grouped by section.
func (s *Service) CommentThreads(ctx context.Context, contentID string) (map[string][]loader.Thread, error) {
	comments, err := s.Comments(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return loader.BuildThreads(comments), nil
}

// LoadMoreComments appends the next comment page. No-op when a load is in
// flight or all pages are loaded.
func (s *Service) LoadMoreComments(ctx context.Context, contentID string) error {
	return s.commentLoader(contentID).LoadMore(ctx)
}

// RefreshComments refetches the comment collection from page 1.
func (s *Service) RefreshComments(ctx context.Context, contentID string) error {
	return s.commentLoader(contentID).Refresh(ctx)
}

// LoadReplies merges a comment's replies into the collection.
func (s *Service) LoadReplies(ctx context.Context, contentID, commentID string) error {
	replies, err := s.api.GetReplies(ctx, commentID)
	if err != nil {
		return err
	}
	for _, r := range replies {
		s.cache.Upsert(cache.KindComment, r.ID, r)
	}
	s.commentLoader(contentID).Merge(replies)
	return nil
}

// Ratings returns the loaded rating collection for the content,
// triggering the initial page fetch on first access.
func (s *Service) Ratings(ctx context.Context, contentID string) ([]model.Rating, error) {
	l := s.ratingLoader(contentID)
	if err := l.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return l.Items(), nil
}

// LoadMoreRatings appends the next rating page.
func (s *Service) LoadMoreRatings(ctx context.Context, contentID string) error {
	return s.ratingLoader(contentID).LoadMore(ctx)
}

// HasMoreComments reports whether further comment pages exist.
func (s *Service) HasMoreComments(contentID string) bool {
	return s.commentLoader(contentID).HasMore()
}

// CommentTotal returns the server-reported comment count.
func (s *Service) CommentTotal(contentID string) int {
	return s.commentLoader(contentID).Total()
}

// commentLoader lazily creates the per-content comment loader. The fetch
// wrapper mirrors every fetched comment into the entity cache.
func (s *Service) commentLoader(contentID string) *loader.Loader[model.Comment] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.commentLoaders[contentID]; ok {
		return l
	}
	fetch := func(ctx context.Context, page int) ([]model.Comment, int, bool, error) {
		p, err := s.api.ListComments(ctx, contentID, page)
		if err != nil {
			return nil, 0, false, err
		}
		for _, c := range p.Results {
			s.cache.Upsert(cache.KindComment, c.ID, c)
		}
		return p.Results, p.Total, p.HasMore, nil
	}
	l := loader.New(fetch, func(c model.Comment) string { return c.ID })
	s.commentLoaders[contentID] = l
	return l
}

// ratingLoader lazily creates the per-content rating loader.
func (s *Service) ratingLoader(contentID string) *loader.Loader[model.Rating] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.ratingLoaders[contentID]; ok {
		return l
	}
	fetch := func(ctx context.Context, page int) ([]model.Rating, int, bool, error) {
		p, err := s.api.ListRatings(ctx, contentID, page)
		if err != nil {
			return nil, 0, false, err
		}
		for _, r := range p.Results {
			s.cache.Upsert(cache.KindRating, r.ID, r)
		}
		return p.Results, p.Total, p.HasMore, nil
	}
	l := loader.New(fetch, func(r model.Rating) string { return r.ID })
	s.ratingLoaders[contentID] = l
	return l
}

// seedEngagement loads like status and my-rating once per content.
// Unauthorized reads degrade to the zero state.
func (s *Service) seedEngagement(ctx context.Context, contentID string) error {
	s.mu.Lock()
	if s.seeded["engagement:"+contentID] || s.seedInFlight["engagement:"+contentID] {
		s.mu.Unlock()
		return nil
	}
	s.seedInFlight["engagement:"+contentID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.seedInFlight, "engagement:"+contentID)
		s.mu.Unlock()
	}()

	state := s.engagementState(contentID)

	like, err := s.api.GetLikeStatus(ctx, contentID)
	switch {
	case err == nil:
		state.Liked = like.Liked
		state.LikeCount = like.LikeCount
	case errors.Is(err, api.ErrUnauthorized):
		// No session: cache miss is fine.
	default:
		return err
	}

	mine, err := s.api.GetMyRating(ctx, contentID)
	switch {
	case err == nil:
		if mine != nil {
			state.MyRating = mine.Stars
		}
	case errors.Is(err, api.ErrUnauthorized):
	default:
		return err
	}

	s.putEngagement(state)
	s.mu.Lock()
	s.seeded["engagement:"+contentID] = true
	s.mu.Unlock()
	return nil
}

// seedFollow loads the follow status once per creator.
func (s *Service) seedFollow(ctx context.Context, username string) error {
	s.mu.Lock()
	if s.seeded["follow:"+username] || s.seedInFlight["follow:"+username] {
		s.mu.Unlock()
		return nil
	}
	s.seedInFlight["follow:"+username] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.seedInFlight, "follow:"+username)
		s.mu.Unlock()
	}()

	res, err := s.api.GetFollowStatus(ctx, username)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return nil
		}
		return err
	}

	s.putFollow(model.FollowState{
		Username:      username,
		Following:     res.Following,
		FollowerCount: res.FollowerCount,
	})
	s.mu.Lock()
	s.seeded["follow:"+username] = true
	s.mu.Unlock()
	return nil
}

// engagementState reads the cached state for the content, zero if absent.
func (s *Service) engagementState(contentID string) model.EngagementState {
	if e, ok := s.cache.Get(cache.KindEngagement, contentID); ok {
		if state, ok := e.(model.EngagementState); ok {
			return state
		}
	}
	return model.EngagementState{ContentID: contentID}
}

// putEngagement writes the state and publishes the derived view.
func (s *Service) putEngagement(state model.EngagementState) {
	s.cache.Upsert(cache.KindEngagement, state.ContentID, state)
	s.bus.Publish(bus.TopicEngagementUpdated, bus.EngagementPayload{State: state})
}

// followState reads the cached state for the creator, zero if absent.
func (s *Service) followState(username string) model.FollowState {
	if e, ok := s.cache.Get(cache.KindFollow, username); ok {
		if state, ok := e.(model.FollowState); ok {
			return state
		}
	}
	return model.FollowState{Username: username}
}

// putFollow writes the state and publishes the derived view.
func (s *Service) putFollow(state model.FollowState) {
	s.cache.Upsert(cache.KindFollow, state.Username, state)
	s.bus.Publish(bus.TopicFollowUpdated, bus.FollowPayload{State: state})
}

// replaceNotifications swaps the cached notification collection.
func (s *Service) replaceNotifications(list []model.Notification) {
	ids := make([]string, len(list))
	entities := make(map[string]any, len(list))
	for i, n := range list {
		ids[i] = n.ID
		entities[n.ID] = n
	}
	s.cache.Replace(cache.KindNotification, ids, entities)
}

// publishNotifications emits the updated list; the unread-count-changed
// event is derived from it by onUpdated.
func (s *Service) publishNotifications() {
	list := s.Notifications()
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}

	s.bus.Publish(bus.TopicUpdated, bus.UpdatedPayload{
		Notifications: list,
		UnreadCount:   unread,
	})
}
