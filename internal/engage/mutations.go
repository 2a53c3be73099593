package engage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/inkwell/engage/internal/api"
	"github.com/inkwell/engage/internal/cache"
	"github.com/inkwell/engage/internal/model"
)

// mutation is one optimistic state transition. apply takes the snapshot
// and makes the local change visible immediately; call issues the remote
// request and returns a confirm step that overwrites local state with
// server truth; rollback restores the snapshot exactly.
type mutation struct {
	kind      string
	id        string
	debounced bool
	apply     func()
	call      func(ctx context.Context) (confirm func(), err error)
	rollback  func()
}

// run executes a mutation under the per-identity guard. The guard is
// released on every exit path. Rate-limited failures still roll back but
// are suppressed from the caller's error surface.
func (s *Service) run(ctx context.Context, m mutation) error {
	if err := s.guard.acquire(m.kind, m.id, m.debounced); err != nil {
		return err
	}
	defer s.guard.release(m.kind, m.id)

	m.apply()

	confirm, err := m.call(ctx)
	if err != nil {
		m.rollback()
		if errors.Is(err, api.ErrRateLimited) {
			return nil
		}
		return err
	}

	confirm()
	return nil
}

// ToggleLike flips the like state for the content, counting optimistically
// and reconciling with the server's count (which may reflect concurrent
// likes from elsewhere).
func (s *Service) ToggleLike(ctx context.Context, contentID string) error {
	var snap model.EngagementState
	return s.run(ctx, mutation{
		kind:      "like",
		id:        contentID,
		debounced: true,
		apply: func() {
			snap = s.engagementState(contentID)
			next := snap
			next.Liked = !snap.Liked
			if next.Liked {
				next.LikeCount++
			} else {
				next.LikeCount--
			}
			s.putEngagement(next)
		},
		call: func(ctx context.Context) (func(), error) {
			res, err := s.api.ToggleLike(ctx, contentID)
			if err != nil {
				return nil, err
			}
			return func() {
				state := s.engagementState(contentID)
				state.Liked = res.Liked
				state.LikeCount = res.LikeCount
				s.putEngagement(state)
			}, nil
		},
		rollback: func() { s.putEngagement(snap) },
	})
}

// SubmitRating submits or updates the user's star rating. Aggregates are
// recomputed optimistically and the user's own rating is confirmed from
// the server response.
func (s *Service) SubmitRating(ctx context.Context, contentID string, stars int, reviewText string) error {
	if stars < 1 || stars > 5 {
		return &ValidationError{Field: "rating", Message: "must be between 1 and 5 stars"}
	}

	var snap model.EngagementState
	return s.run(ctx, mutation{
		kind: "rating",
		id:   contentID,
		apply: func() {
			snap = s.engagementState(contentID)
			next := snap
			sum := snap.AverageRating * float64(snap.RatingCount)
			if snap.MyRating > 0 {
				sum -= float64(snap.MyRating)
			} else {
				next.RatingCount++
			}
			sum += float64(stars)
			next.MyRating = stars
			if next.RatingCount > 0 {
				next.AverageRating = sum / float64(next.RatingCount)
			}
			s.putEngagement(next)
		},
		call: func(ctx context.Context) (func(), error) {
			r, err := s.api.SubmitRating(ctx, contentID, stars, reviewText)
			if err != nil {
				return nil, err
			}
			return func() {
				state := s.engagementState(contentID)
				state.MyRating = r.Stars
				s.putEngagement(state)
			}, nil
		},
		rollback: func() { s.putEngagement(snap) },
	})
}

// PostComment creates a comment optimistically under a placeholder id,
// swapping in the server-assigned comment on confirmation.
func (s *Service) PostComment(ctx context.Context, contentID, text, parentID, sectionID string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: "comment", Message: "text must not be empty"}
	}

	tempID := "pending-" + uuid.New().String()
	l := s.commentLoader(contentID)
	var snap model.EngagementState
	return s.run(ctx, mutation{
		kind: "comment",
		id:   contentID,
		apply: func() {
			snap = s.engagementState(contentID)
			pending := model.Comment{
				ID:        tempID,
				ContentID: contentID,
				Text:      text,
				ParentID:  parentID,
				SectionID: sectionID,
			}
			l.InsertFront(pending)
			s.cache.Upsert(cache.KindComment, tempID, pending)

			next := snap
			next.CommentCount++
			s.putEngagement(next)
		},
		call: func(ctx context.Context) (func(), error) {
			created, err := s.api.PostComment(ctx, contentID, text, parentID, sectionID)
			if err != nil {
				return nil, err
			}
			return func() {
				l.Swap(tempID, created)
				s.cache.Remove(cache.KindComment, tempID)
				s.cache.Upsert(cache.KindComment, created.ID, created)
			}, nil
		},
		rollback: func() {
			l.Remove(tempID)
			s.cache.Remove(cache.KindComment, tempID)
			s.putEngagement(snap)
		},
	})
}

// EditComment swaps in the new text immediately and reconciles with the
// server's view of the comment.
func (s *Service) EditComment(ctx context.Context, contentID, commentID, text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: "comment", Message: "text must not be empty"}
	}

	l := s.commentLoader(contentID)
	var snap model.Comment
	var present bool
	return s.run(ctx, mutation{
		kind: "comment",
		id:   commentID,
		apply: func() {
			snap, present = l.Get(commentID)
			if !present {
				return
			}
			edited := snap
			edited.Text = text
			edited.Edited = true
			l.Swap(commentID, edited)
			s.cache.Upsert(cache.KindComment, commentID, edited)
		},
		call: func(ctx context.Context) (func(), error) {
			updated, err := s.api.UpdateComment(ctx, commentID, text)
			if err != nil {
				return nil, err
			}
			return func() {
				l.Swap(commentID, updated)
				s.cache.Upsert(cache.KindComment, commentID, updated)
			}, nil
		},
		rollback: func() {
			if !present {
				return
			}
			l.Swap(commentID, snap)
			s.cache.Upsert(cache.KindComment, commentID, snap)
		},
	})
}

// DeleteComment removes the comment immediately and restores the full
// collection snapshot on failure.
func (s *Service) DeleteComment(ctx context.Context, contentID, commentID string) error {
	l := s.commentLoader(contentID)
	var itemsSnap []model.Comment
	var totalSnap int
	var snap model.EngagementState
	return s.run(ctx, mutation{
		kind: "comment",
		id:   commentID,
		apply: func() {
			itemsSnap, totalSnap = l.Snapshot()
			snap = s.engagementState(contentID)

			l.Remove(commentID)
			s.cache.Remove(cache.KindComment, commentID)

			next := snap
			if next.CommentCount > 0 {
				next.CommentCount--
			}
			s.putEngagement(next)
		},
		call: func(ctx context.Context) (func(), error) {
			if err := s.api.DeleteComment(ctx, commentID); err != nil {
				return nil, err
			}
			return func() {}, nil
		},
		rollback: func() {
			l.Restore(itemsSnap, totalSnap)
			if c, ok := l.Get(commentID); ok {
				s.cache.Upsert(cache.KindComment, commentID, c)
			}
			s.putEngagement(snap)
		},
	})
}

// MarkRead flags one notification as read immediately, reconciling with
// the server's copy on confirmation.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	var snap []model.Notification
	return s.run(ctx, mutation{
		kind: "notification",
		id:   id,
		apply: func() {
			snap = s.Notifications()
			next := make([]model.Notification, len(snap))
			copy(next, snap)
			for i := range next {
				if next[i].ID == id {
					next[i].Read = true
				}
			}
			s.replaceNotifications(next)
			s.publishNotifications()
		},
		call: func(ctx context.Context) (func(), error) {
			confirmed, err := s.api.MarkNotificationRead(ctx, id)
			if err != nil {
				return nil, err
			}
			return func() {
				s.cache.Upsert(cache.KindNotification, id, confirmed)
				s.publishNotifications()
			}, nil
		},
		rollback: func() {
			s.replaceNotifications(snap)
			s.publishNotifications()
		},
	})
}

// MarkAllRead flags every cached notification as read immediately.
func (s *Service) MarkAllRead(ctx context.Context) error {
	var snap []model.Notification
	return s.run(ctx, mutation{
		kind: "notification",
		id:   "all",
		apply: func() {
			snap = s.Notifications()
			next := make([]model.Notification, len(snap))
			copy(next, snap)
			for i := range next {
				next[i].Read = true
			}
			s.replaceNotifications(next)
			s.publishNotifications()
		},
		call: func(ctx context.Context) (func(), error) {
			if _, err := s.api.MarkAllNotificationsRead(ctx); err != nil {
				return nil, err
			}
			return func() { s.publishNotifications() }, nil
		},
		rollback: func() {
			s.replaceNotifications(snap)
			s.publishNotifications()
		},
	})
}

// DeleteNotification removes a notification immediately, restoring the
// exact prior collection on failure.
func (s *Service) DeleteNotification(ctx context.Context, id string) error {
	var snap []model.Notification
	return s.run(ctx, mutation{
		kind: "notification",
		id:   id,
		apply: func() {
			snap = s.Notifications()
			s.cache.Remove(cache.KindNotification, id)
			s.publishNotifications()
		},
		call: func(ctx context.Context) (func(), error) {
			if err := s.api.DeleteNotification(ctx, id); err != nil {
				return nil, err
			}
			return func() {}, nil
		},
		rollback: func() {
			s.replaceNotifications(snap)
			s.publishNotifications()
		},
	})
}

// Follow starts following the creator with an optimistic follower-count
// bump.
func (s *Service) Follow(ctx context.Context, username string) error {
	return s.setFollowing(ctx, username, true)
}

// Unfollow stops following the creator.
func (s *Service) Unfollow(ctx context.Context, username string) error {
	return s.setFollowing(ctx, username, false)
}

func (s *Service) setFollowing(ctx context.Context, username string, following bool) error {
	var snap model.FollowState
	return s.run(ctx, mutation{
		kind:      "follow",
		id:        username,
		debounced: true,
		apply: func() {
			snap = s.followState(username)
			next := snap
			if following && !snap.Following {
				next.FollowerCount++
			} else if !following && snap.Following {
				next.FollowerCount--
			}
			next.Following = following
			s.putFollow(next)
		},
		call: func(ctx context.Context) (func(), error) {
			var res api.FollowResult
			var err error
			if following {
				res, err = s.api.Follow(ctx, username)
			} else {
				res, err = s.api.Unfollow(ctx, username)
			}
			if err != nil {
				return nil, err
			}
			return func() {
				s.putFollow(model.FollowState{
					Username:      username,
					Following:     res.Following,
					FollowerCount: res.FollowerCount,
				})
			}, nil
		},
		rollback: func() { s.putFollow(snap) },
	})
}
