package model

// EngagementState holds the last reconciled engagement values for a single
// piece of content: the viewer's own like/rating state plus the aggregate
// counters the server reported. Optimistic guesses live here only between
// a local apply and its confirmation or rollback.
type EngagementState struct {
	// ContentID is the content this state belongs to.
	ContentID string `json:"content_id"`

	// Liked reports whether the current user has liked the content.
	Liked bool `json:"liked"`

	// LikeCount is the total number of likes across all users.
	LikeCount int `json:"like_count"`

	// MyRating is the current user's star rating, 1-5. Zero means unrated.
	MyRating int `json:"my_rating"`

	// AverageRating is the mean of all ratings on the content.
	AverageRating float64 `json:"average_rating"`

	// RatingCount is the number of ratings on the content.
	RatingCount int `json:"rating_count"`

	// CommentCount is the number of comments on the content.
	CommentCount int `json:"comment_count"`
}

// FollowState holds the viewer's follow relationship with a creator.
type FollowState struct {
	// Username identifies the creator.
	Username string `json:"username"`

	// Following reports whether the current user follows the creator.
	Following bool `json:"following"`

	// FollowerCount is the creator's total follower count.
	FollowerCount int `json:"follower_count"`
}
