package engage

import (
	"context"
	"sync/atomic"

	"github.com/inkwell/engage/internal/api"
	"github.com/inkwell/engage/internal/model"
)

// fakeAPI implements API with overridable behaviors and call counters.
// Unset behaviors return zero values.
type fakeAPI struct {
	listNotifications func(ctx context.Context) ([]model.Notification, error)
	markRead          func(ctx context.Context, id string) (model.Notification, error)
	markAllRead       func(ctx context.Context) (int, error)
	deleteNotif       func(ctx context.Context, id string) error
	toggleLike        func(ctx context.Context, contentID string) (api.LikeResult, error)
	likeStatus        func(ctx context.Context, contentID string) (api.LikeResult, error)
	listRatings       func(ctx context.Context, contentID string, page int) (api.Page[model.Rating], error)
	submitRating      func(ctx context.Context, contentID string, stars int, review string) (model.Rating, error)
	myRating          func(ctx context.Context, contentID string) (*model.Rating, error)
	listComments      func(ctx context.Context, contentID string, page int) (api.Page[model.Comment], error)
	postComment       func(ctx context.Context, contentID, text, parentID, sectionID string) (model.Comment, error)
	updateComment     func(ctx context.Context, id, text string) (model.Comment, error)
	deleteComment     func(ctx context.Context, id string) error
	getReplies        func(ctx context.Context, id string) ([]model.Comment, error)
	followStatus      func(ctx context.Context, username string) (api.FollowResult, error)
	follow            func(ctx context.Context, username string) (api.FollowResult, error)
	unfollow          func(ctx context.Context, username string) (api.FollowResult, error)

	toggleLikeCalls   atomic.Int32
	submitRatingCalls atomic.Int32
	postCommentCalls  atomic.Int32
}

func (f *fakeAPI) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	if f.listNotifications != nil {
		return f.listNotifications(ctx)
	}
	return nil, nil
}

func (f *fakeAPI) MarkNotificationRead(ctx context.Context, id string) (model.Notification, error) {
	if f.markRead != nil {
		return f.markRead(ctx, id)
	}
	return model.Notification{ID: id, Read: true}, nil
}

func (f *fakeAPI) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	if f.markAllRead != nil {
		return f.markAllRead(ctx)
	}
	return 0, nil
}

func (f *fakeAPI) DeleteNotification(ctx context.Context, id string) error {
	if f.deleteNotif != nil {
		return f.deleteNotif(ctx, id)
	}
	return nil
}

func (f *fakeAPI) ToggleLike(ctx context.Context, contentID string) (api.LikeResult, error) {
	f.toggleLikeCalls.Add(1)
	if f.toggleLike != nil {
		return f.toggleLike(ctx, contentID)
	}
	return api.LikeResult{}, nil
}

func (f *fakeAPI) GetLikeStatus(ctx context.Context, contentID string) (api.LikeResult, error) {
	if f.likeStatus != nil {
		return f.likeStatus(ctx, contentID)
	}
	return api.LikeResult{}, nil
}

func (f *fakeAPI) ListRatings(ctx context.Context, contentID string, page int) (api.Page[model.Rating], error) {
	if f.listRatings != nil {
		return f.listRatings(ctx, contentID, page)
	}
	return api.Page[model.Rating]{}, nil
}

func (f *fakeAPI) SubmitRating(ctx context.Context, contentID string, stars int, review string) (model.Rating, error) {
	f.submitRatingCalls.Add(1)
	if f.submitRating != nil {
		return f.submitRating(ctx, contentID, stars, review)
	}
	return model.Rating{ContentID: contentID, Stars: stars}, nil
}

func (f *fakeAPI) GetMyRating(ctx context.Context, contentID string) (*model.Rating, error) {
	if f.myRating != nil {
		return f.myRating(ctx, contentID)
	}
	return nil, nil
}

func (f *fakeAPI) ListComments(ctx context.Context, contentID string, page int) (api.Page[model.Comment], error) {
	if f.listComments != nil {
		return f.listComments(ctx, contentID, page)
	}
	return api.Page[model.Comment]{}, nil
}

func (f *fakeAPI) PostComment(ctx context.Context, contentID, text, parentID, sectionID string) (model.Comment, error) {
	f.postCommentCalls.Add(1)
	if f.postComment != nil {
		return f.postComment(ctx, contentID, text, parentID, sectionID)
	}
	return model.Comment{ID: "server-id", ContentID: contentID, Text: text}, nil
}

func (f *fakeAPI) UpdateComment(ctx context.Context, id, text string) (model.Comment, error) {
	if f.updateComment != nil {
		return f.updateComment(ctx, id, text)
	}
	return model.Comment{ID: id, Text: text, Edited: true}, nil
}

func (f *fakeAPI) DeleteComment(ctx context.Context, id string) error {
	if f.deleteComment != nil {
		return f.deleteComment(ctx, id)
	}
	return nil
}

func (f *fakeAPI) GetReplies(ctx context.Context, id string) ([]model.Comment, error) {
	if f.getReplies != nil {
		return f.getReplies(ctx, id)
	}
	return nil, nil
}

func (f *fakeAPI) GetFollowStatus(ctx context.Context, username string) (api.FollowResult, error) {
	if f.followStatus != nil {
		return f.followStatus(ctx, username)
	}
	return api.FollowResult{}, nil
}

func (f *fakeAPI) Follow(ctx context.Context, username string) (api.FollowResult, error) {
	if f.follow != nil {
		return f.follow(ctx, username)
	}
	return api.FollowResult{Following: true}, nil
}

func (f *fakeAPI) Unfollow(ctx context.Context, username string) (api.FollowResult, error) {
	if f.unfollow != nil {
		return f.unfollow(ctx, username)
	}
	return api.FollowResult{}, nil
}
