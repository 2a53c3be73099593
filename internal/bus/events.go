package bus

import "github.com/inkwell/engage/internal/model"

// UpdatedPayload is published on TopicUpdated.
type UpdatedPayload struct {
	Notifications []model.Notification
	UnreadCount   int
}

// UnreadCountPayload is published on TopicUnreadCountChanged.
type UnreadCountPayload struct {
	Count int
}

// NewItemsPayload is published on TopicNewItems with the notifications
// that were not present in the previous poll's snapshot.
type NewItemsPayload struct {
	Notifications []model.Notification
}

// PollingErrorPayload is published on TopicPollingError after the
// synchronizer exhausts its retries.
type PollingErrorPayload struct {
	Err      error
	Failures int
}

// EngagementPayload is published on TopicEngagementUpdated.
type EngagementPayload struct {
	State model.EngagementState
}

// FollowPayload is published on TopicFollowUpdated.
type FollowPayload struct {
	State model.FollowState
}
