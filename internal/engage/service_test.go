package engage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inkwell/engage/internal/api"
	"github.com/inkwell/engage/internal/bus"
	"github.com/inkwell/engage/internal/model"
	appsync "github.com/inkwell/engage/internal/sync"
)

func seedNotifications(s *Service, list []model.Notification) {
	s.replaceNotifications(list)
	s.publishNotifications()
}

func notif(id string, read bool) model.Notification {
	return model.Notification{
		ID:        id,
		Type:      model.NotificationComment,
		Title:     "title " + id,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Read:      read,
	}
}

func TestUnreadCountDerivedFromList(t *testing.T) {
	s := newTestService(&fakeAPI{})
	seedNotifications(s, []model.Notification{
		notif("n1", false),
		notif("n2", true),
		notif("n3", false),
	})

	if got := s.UnreadCount(); got != 2 {
		t.Fatalf("expected unread count 2, got %d", got)
	}
}

func TestMarkReadUpdatesListAndUnreadCount(t *testing.T) {
	f := &fakeAPI{
		markRead: func(ctx context.Context, id string) (model.Notification, error) {
			n := notif(id, true)
			return n, nil
		},
	}
	s := newTestService(f)
	seedNotifications(s, []model.Notification{notif("n1", false), notif("n2", false)})

	var counts []int
	s.Subscribe(bus.TopicUnreadCountChanged, func(p any) {
		counts = append(counts, p.(bus.UnreadCountPayload).Count)
	})

	if err := s.MarkRead(context.Background(), "n1"); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}

	if got := s.UnreadCount(); got != 1 {
		t.Fatalf("expected unread count 1, got %d", got)
	}
	if len(counts) == 0 || counts[len(counts)-1] != 1 {
		t.Fatalf("expected unread-count event with 1, got %v", counts)
	}
	for _, n := range s.Notifications() {
		if n.ID == "n1" && !n.Read {
			t.Fatal("expected n1 marked read in list")
		}
	}
}

func TestMarkReadRollsBackOnFailure(t *testing.T) {
	f := &fakeAPI{
		markRead: func(ctx context.Context, id string) (model.Notification, error) {
			return model.Notification{}, errors.New("boom")
		},
	}
	s := newTestService(f)
	seedNotifications(s, []model.Notification{notif("n1", false)})

	if err := s.MarkRead(context.Background(), "n1"); err == nil {
		t.Fatal("expected error to surface")
	}
	if got := s.UnreadCount(); got != 1 {
		t.Fatalf("expected unread count restored to 1, got %d", got)
	}
}

func waitForCount(t *testing.T, ch <-chan int, want int) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("expected unread-count event with %d, got %d", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for unread-count event with %d", want)
	}
}

func TestUnreadEventFiresAfterPollThenMarkAllRead(t *testing.T) {
	f := &fakeAPI{
		listNotifications: func(ctx context.Context) ([]model.Notification, error) {
			return []model.Notification{notif("n1", false), notif("n2", false)}, nil
		},
	}
	s := New(f, Config{
		Debounce: time.Nanosecond,
		Polling:  appsync.Config{Interval: time.Hour},
	})

	counts := make(chan int, 8)
	s.Subscribe(bus.TopicUnreadCountChanged, func(p any) {
		counts <- p.(bus.UnreadCountPayload).Count
	})

	// The poll cycle raises the count to 2.
	s.StartPolling()
	defer s.StopPolling()
	waitForCount(t, counts, 2)

	// A local mutation right after the poll must still announce the drop.
	if err := s.MarkAllRead(context.Background()); err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	waitForCount(t, counts, 0)
}

func TestMarkAllReadZeroesUnreadCount(t *testing.T) {
	s := newTestService(&fakeAPI{})
	seedNotifications(s, []model.Notification{
		notif("n1", false),
		notif("n2", false),
		notif("n3", true),
	})

	if err := s.MarkAllRead(context.Background()); err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	if got := s.UnreadCount(); got != 0 {
		t.Fatalf("expected unread count 0, got %d", got)
	}
	if got := len(s.Notifications()); got != 3 {
		t.Fatalf("expected list length unchanged at 3, got %d", got)
	}
}

func TestDeleteNotificationRemovesAndRestoresOnFailure(t *testing.T) {
	s := newTestService(&fakeAPI{})
	seedNotifications(s, []model.Notification{notif("n1", false), notif("n2", true)})

	if err := s.DeleteNotification(context.Background(), "n1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got := len(s.Notifications()); got != 1 {
		t.Fatalf("expected 1 notification left, got %d", got)
	}
	if got := s.UnreadCount(); got != 0 {
		t.Fatalf("expected unread count 0 after deleting the unread item, got %d", got)
	}

	f := &fakeAPI{
		deleteNotif: func(ctx context.Context, id string) error { return errors.New("boom") },
	}
	s2 := newTestService(f)
	seedNotifications(s2, []model.Notification{notif("n1", false), notif("n2", true)})

	if err := s2.DeleteNotification(context.Background(), "n1"); err == nil {
		t.Fatal("expected delete error to surface")
	}
	if got := len(s2.Notifications()); got != 2 {
		t.Fatalf("expected list restored to 2 items, got %d", got)
	}
	if got := s2.Notifications()[0].ID; got != "n1" {
		t.Fatalf("expected original order restored, first id %q", got)
	}
}

func TestEngagementSeedsOnceFromServer(t *testing.T) {
	var likeCalls, ratingCalls int
	f := &fakeAPI{
		likeStatus: func(ctx context.Context, contentID string) (api.LikeResult, error) {
			likeCalls++
			return api.LikeResult{Liked: true, LikeCount: 5}, nil
		},
		myRating: func(ctx context.Context, contentID string) (*model.Rating, error) {
			ratingCalls++
			return &model.Rating{ContentID: contentID, Stars: 4}, nil
		},
	}
	s := newTestService(f)

	state, err := s.Engagement(context.Background(), "c1")
	if err != nil {
		t.Fatalf("engagement failed: %v", err)
	}
	if !state.Liked || state.LikeCount != 5 || state.MyRating != 4 {
		t.Fatalf("unexpected seeded state: %+v", state)
	}

	if _, err := s.Engagement(context.Background(), "c1"); err != nil {
		t.Fatalf("second access failed: %v", err)
	}
	if likeCalls != 1 || ratingCalls != 1 {
		t.Fatalf("expected one seed fetch each, got like=%d rating=%d", likeCalls, ratingCalls)
	}
}

func TestEngagementUnauthorizedDegradesToZeroState(t *testing.T) {
	f := &fakeAPI{
		likeStatus: func(ctx context.Context, contentID string) (api.LikeResult, error) {
			return api.LikeResult{}, &api.HTTPError{StatusCode: 401, Method: "GET", Path: "/content/c1/like"}
		},
		myRating: func(ctx context.Context, contentID string) (*model.Rating, error) {
			return nil, &api.HTTPError{StatusCode: 401, Method: "GET", Path: "/content/c1/ratings/my-rating"}
		},
	}
	s := newTestService(f)

	state, err := s.Engagement(context.Background(), "c1")
	if err != nil {
		t.Fatalf("expected 401 on seeding to be silent, got %v", err)
	}
	if state.Liked || state.LikeCount != 0 || state.MyRating != 0 {
		t.Fatalf("expected zero state, got %+v", state)
	}
}

func TestFollowStateSeedsFromServer(t *testing.T) {
	f := &fakeAPI{
		followStatus: func(ctx context.Context, username string) (api.FollowResult, error) {
			return api.FollowResult{Following: true, FollowerCount: 12}, nil
		},
	}
	s := newTestService(f)

	state, err := s.FollowStateFor(context.Background(), "ada")
	if err != nil {
		t.Fatalf("follow state failed: %v", err)
	}
	if !state.Following || state.FollowerCount != 12 {
		t.Fatalf("unexpected follow state: %+v", state)
	}
}

func TestCommentsLoadOnFirstAccess(t *testing.T) {
	var calls int
	f := &fakeAPI{
		listComments: func(ctx context.Context, contentID string, page int) (api.Page[model.Comment], error) {
			calls++
			return api.Page[model.Comment]{
				Results: []model.Comment{{ID: "cm1", ContentID: contentID, Text: "hi"}},
				Total:   1,
			}, nil
		},
	}
	s := newTestService(f)

	comments, err := s.Comments(context.Background(), "c1")
	if err != nil {
		t.Fatalf("comments failed: %v", err)
	}
	if len(comments) != 1 || comments[0].ID != "cm1" {
		t.Fatalf("unexpected comments: %v", comments)
	}

	if _, err := s.Comments(context.Background(), "c1"); err != nil {
		t.Fatalf("second access failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one fetch, got %d", calls)
	}
}

func TestLoadRepliesMergesIntoCollection(t *testing.T) {
	f := &fakeAPI{
		listComments: func(ctx context.Context, contentID string, page int) (api.Page[model.Comment], error) {
			return api.Page[model.Comment]{
				Results: []model.Comment{{ID: "cm1", ContentID: contentID, Text: "root"}},
				Total:   1,
			}, nil
		},
		getReplies: func(ctx context.Context, id string) ([]model.Comment, error) {
			return []model.Comment{{ID: "cm2", ContentID: "c1", Text: "reply", ParentID: id}}, nil
		},
	}
	s := newTestService(f)

	if _, err := s.Comments(context.Background(), "c1"); err != nil {
		t.Fatalf("comments failed: %v", err)
	}
	if err := s.LoadReplies(context.Background(), "c1", "cm1"); err != nil {
		t.Fatalf("load replies failed: %v", err)
	}

	threads, err := s.CommentThreads(context.Background(), "c1")
	if err != nil {
		t.Fatalf("threads failed: %v", err)
	}
	roots := threads[""]
	if len(roots) != 1 {
		t.Fatalf("expected one root, got %d", len(roots))
	}
	if len(roots[0].Replies) != 1 || roots[0].Replies[0].Comment.ID != "cm2" {
		t.Fatalf("expected cm2 nested under cm1, got %+v", roots[0].Replies)
	}
}
