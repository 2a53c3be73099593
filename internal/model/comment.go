package model

import "time"

// Comment is a single comment on a piece of content. Comments form a
// shallow tree: a comment with a ParentID is a reply, and comments may be
// anchored to a specific section of the content.
type Comment struct {
	// ID is the server-assigned identifier. Comments created optimistically
	// carry a client-generated placeholder until the server confirms.
	ID string `json:"id"`

	// ContentID is the content the comment belongs to.
	ContentID string `json:"content"`

	// Author is the user who wrote the comment.
	Author *NotificationUser `json:"author,omitempty"`

	// Text is the comment body.
	Text string `json:"text"`

	// ParentID references the comment this one replies to.
	// Empty for top-level comments.
	ParentID string `json:"parent_comment,omitempty"`

	// SectionID anchors the comment to a section of the content.
	// Empty for content-level comments.
	SectionID string `json:"section_id,omitempty"`

	// Edited reports whether the text has been changed since posting.
	Edited bool `json:"edited"`

	// CreatedAt is when the comment was posted.
	CreatedAt time.Time `json:"created_at"`
}

// Rating is a single star rating (optionally with review text) left by a
// user on a piece of content. One rating per user per content; submitting
// again updates the existing rating.
type Rating struct {
	// ID is the server-assigned identifier.
	ID string `json:"id"`

	// ContentID is the content the rating belongs to.
	ContentID string `json:"content"`

	// User is the rater.
	User *NotificationUser `json:"user,omitempty"`

	// Stars is the rating value, 1-5.
	Stars int `json:"rating"`

	// ReviewText is the optional written review.
	ReviewText string `json:"review_text,omitempty"`

	// CreatedAt is when the rating was first submitted.
	CreatedAt time.Time `json:"created_at"`
}
