package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/inkwell/engage/internal/model"
)

// pageEnvelope mirrors the server's page-number pagination shape.
type pageEnvelope[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Page is one fetched page of an ordered collection.
type Page[T any] struct {
	Results []T
	Total   int
	HasMore bool
}

func getPage[T any](ctx context.Context, c *Client, path string) (Page[T], error) {
	var env pageEnvelope[T]
	if err := c.get(ctx, path, &env); err != nil {
		return Page[T]{}, err
	}
	return Page[T]{
		Results: env.Results,
		Total:   env.Count,
		HasMore: env.Next != nil,
	}, nil
}

// LikeResult is the server's response to a like toggle or status check.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// ToggleLike flips the current user's like on the content and returns the
// new state and aggregate count.
func (c *Client) ToggleLike(ctx context.Context, contentID string) (LikeResult, error) {
	var res LikeResult
	path := fmt.Sprintf("/content/%s/like", contentID)
	if err := c.do(ctx, http.MethodPost, path, nil, &res); err != nil {
		return LikeResult{}, err
	}
	return res, nil
}

// GetLikeStatus reports whether the current user has liked the content.
func (c *Client) GetLikeStatus(ctx context.Context, contentID string) (LikeResult, error) {
	var res LikeResult
	path := fmt.Sprintf("/content/%s/like", contentID)
	if err := c.get(ctx, path, &res); err != nil {
		return LikeResult{}, err
	}
	return res, nil
}

// ListRatings fetches one page of ratings for the content, newest first.
func (c *Client) ListRatings(ctx context.Context, contentID string, page int) (Page[model.Rating], error) {
	path := fmt.Sprintf("/content-ratings?content=%s&page=%d", url.QueryEscape(contentID), page)
	return getPage[model.Rating](ctx, c, path)
}

// SubmitRating creates the current user's rating on the content, or
// updates it if one already exists.
func (c *Client) SubmitRating(ctx context.Context, contentID string, stars int, reviewText string) (model.Rating, error) {
	body := map[string]any{
		"content": contentID,
		"rating":  stars,
	}
	if reviewText != "" {
		body["review_text"] = reviewText
	}
	var r model.Rating
	if err := c.do(ctx, http.MethodPost, "/content-ratings", body, &r); err != nil {
		return model.Rating{}, err
	}
	return r, nil
}

// GetMyRating returns the current user's rating for the content, or nil
// if they have not rated it.
func (c *Client) GetMyRating(ctx context.Context, contentID string) (*model.Rating, error) {
	var r *model.Rating
	path := "/content-ratings/mine?content=" + url.QueryEscape(contentID)
	if err := c.get(ctx, path, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListComments fetches one page of top-level comments for the content,
// newest first. Replies are loaded separately per comment.
func (c *Client) ListComments(ctx context.Context, contentID string, page int) (Page[model.Comment], error) {
	path := fmt.Sprintf("/content-comments?content=%s&page=%d", url.QueryEscape(contentID), page)
	return getPage[model.Comment](ctx, c, path)
}

// PostComment creates a comment. parentID and sectionID are optional.
func (c *Client) PostComment(ctx context.Context, contentID, text, parentID, sectionID string) (model.Comment, error) {
	body := map[string]any{
		"content": contentID,
		"text":    text,
	}
	if parentID != "" {
		body["parent_comment"] = parentID
	}
	if sectionID != "" {
		body["section_id"] = sectionID
	}
	var cm model.Comment
	if err := c.do(ctx, http.MethodPost, "/content-comments", body, &cm); err != nil {
		return model.Comment{}, err
	}
	return cm, nil
}

// UpdateComment edits the text of the current user's comment.
func (c *Client) UpdateComment(ctx context.Context, id, text string) (model.Comment, error) {
	body := map[string]any{"text": text}
	var cm model.Comment
	if err := c.do(ctx, http.MethodPatch, "/content-comments/"+id, body, &cm); err != nil {
		return model.Comment{}, err
	}
	return cm, nil
}

// DeleteComment removes a comment (soft delete server-side).
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/content-comments/"+id, nil, nil)
}

// GetReplies fetches all replies to a comment, oldest first.
func (c *Client) GetReplies(ctx context.Context, id string) ([]model.Comment, error) {
	var replies []model.Comment
	if err := c.get(ctx, "/content-comments/"+id+"/replies", &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

// FollowResult is the server's response to follow state changes.
type FollowResult struct {
	Following     bool `json:"following"`
	FollowerCount int  `json:"follower_count"`
}

// GetFollowStatus reports whether the current user follows the creator.
func (c *Client) GetFollowStatus(ctx context.Context, username string) (FollowResult, error) {
	var res FollowResult
	if err := c.get(ctx, "/users/"+url.PathEscape(username)+"/follow", &res); err != nil {
		return FollowResult{}, err
	}
	return res, nil
}

// Follow starts following the creator.
func (c *Client) Follow(ctx context.Context, username string) (FollowResult, error) {
	var res FollowResult
	path := "/users/" + url.PathEscape(username) + "/follow"
	if err := c.do(ctx, http.MethodPost, path, nil, &res); err != nil {
		return FollowResult{}, err
	}
	return res, nil
}

// Unfollow stops following the creator.
func (c *Client) Unfollow(ctx context.Context, username string) (FollowResult, error) {
	var res FollowResult
	path := "/users/" + url.PathEscape(username) + "/follow"
	if err := c.do(ctx, http.MethodDelete, path, nil, &res); err != nil {
		return FollowResult{}, err
	}
	return res, nil
}
