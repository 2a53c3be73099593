package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/inkwell/engage/internal/model"
)

// ListNotifications fetches the full authoritative notification list,
// newest first.
func (c *Client) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	var list []model.Notification
	if err := c.get(ctx, "/notifications", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkNotificationRead marks one notification as read and returns the
// server's view of it.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) (model.Notification, error) {
	var n model.Notification
	path := fmt.Sprintf("/notifications/%s/mark-read", id)
	if err := c.do(ctx, http.MethodPost, path, nil, &n); err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

// MarkAllNotificationsRead marks every unread notification as read and
// returns how many the server updated.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	var resp struct {
		UpdatedCount int `json:"updated_count"`
	}
	if err := c.do(ctx, http.MethodPost, "/notifications/mark-all-read", nil, &resp); err != nil {
		return 0, err
	}
	return resp.UpdatedCount, nil
}

// DeleteNotification removes a notification permanently.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifications/"+id, nil, nil)
}
