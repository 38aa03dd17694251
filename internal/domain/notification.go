package domain

import (
	"fmt"
	"slices"
)

// NotificationKind identifies one of the four notification sources. The
// string values are persisted in read_marks.notification_kind and appear in
// the HTTP API.
type NotificationKind string

const (
	KindFriendRequestReceived NotificationKind = "friend_request_received"
	KindFriendRequestAccepted NotificationKind = "friend_request_accepted"
	KindParticipationRequest  NotificationKind = "participation_request"
	KindNewMessage            NotificationKind = "new_message"
)

// NotificationKinds lists every kind in feed-collection order.
var NotificationKinds = []NotificationKind{
	KindFriendRequestReceived,
	KindFriendRequestAccepted,
	KindParticipationRequest,
	KindNewMessage,
}

func (k NotificationKind) Valid() bool {
	return slices.Contains(NotificationKinds, k)
}

// IsFriendship reports whether the kind refers to a friend request row.
func (k NotificationKind) IsFriendship() bool {
	return k == KindFriendRequestReceived || k == KindFriendRequestAccepted
}

func (k NotificationKind) String() string { return string(k) }

// ParseNotificationKind returns ErrInvalidArgument for unknown values.
func ParseNotificationKind(s string) (NotificationKind, error) {
	k := NotificationKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("notification kind %q: %w", s, ErrInvalidArgument)
	}
	return k, nil
}
