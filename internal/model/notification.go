package model

import "time"

// NotificationType identifies the kind of activity a notification reports.
type NotificationType string

const (
	NotificationInvitation         NotificationType = "invitation"
	NotificationInvitationResponse NotificationType = "invitation_response"
	NotificationComment            NotificationType = "comment"
	NotificationApproval           NotificationType = "approval"
	NotificationSectionUpdate      NotificationType = "section_update"
	NotificationRevenueProposal    NotificationType = "revenue_proposal"
	NotificationMintReady          NotificationType = "mint_ready"
	NotificationContentLike        NotificationType = "content_like"
	NotificationContentComment     NotificationType = "content_comment"
	NotificationContentRating      NotificationType = "content_rating"
	NotificationCreatorReview      NotificationType = "creator_review"
	NotificationContentPurchase    NotificationType = "content_purchase"
	NotificationNewFollower        NotificationType = "new_follower"
	NotificationCounterProposal    NotificationType = "counter_proposal"
)

// NotificationUser is the originating user embedded in a notification.
type NotificationUser struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Notification represents an alert surfaced to the user about activity
// on their content or collaborations.
type Notification struct {
	// ID is the server-assigned identifier for this notification.
	ID string `json:"id"`

	// Type identifies which kind of activity generated this notification.
	Type NotificationType `json:"type"`

	// Title is the short heading shown in the notification list.
	Title string `json:"title"`

	// Message is the human-readable notification body.
	Message string `json:"message"`

	// FromUser is the user whose action triggered the notification.
	FromUser *NotificationUser `json:"from_user,omitempty"`

	// ProjectID links the notification to a project when the activity
	// concerns one. Zero means no project target.
	ProjectID int `json:"project_id,omitempty"`

	// ActionURL is an optional deep link opened when the notification
	// is selected.
	ActionURL string `json:"action_url,omitempty"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when this notification was generated server-side.
	CreatedAt time.Time `json:"created_at"`
}
