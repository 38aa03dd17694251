package domain

import "time"

// Participation and friend request statuses share one vocabulary.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// NotificationWindow bounds visibility of new_message and
// friend_request_accepted notifications, anchored at the caller's "now".
const NotificationWindow = 24 * time.Hour

// WindowStart returns the inclusive lower bound of the window ending at now.
func WindowStart(now time.Time) time.Time {
	return now.Add(-NotificationWindow)
}
