package service

import (
	"context"
	"fmt"
	"time"

	"socialexplore/internal/domain"
	"socialexplore/internal/models"
)

// notificationContext is the denormalized context stored with a read mark.
type notificationContext struct {
	activityID      *uint
	senderID        uint
	friendRequestID *uint
}

// lookupContext resolves the row behind (kind, id). It fails with
// domain.ErrNotFound when the row is gone.
func (s *NotificationService) lookupContext(ctx context.Context, kind domain.NotificationKind, id uint) (notificationContext, error) {
	if kind.IsFriendship() {
		fr, err := s.src.FriendRequests.GetByID(ctx, id)
		if err != nil {
			return notificationContext{}, err
		}
		return notificationContext{friendRequestID: &fr.ID}, nil
	}
	switch kind {
	case domain.KindParticipationRequest:
		p, err := s.src.Participations.GetByID(ctx, id)
		if err != nil {
			return notificationContext{}, err
		}
		return notificationContext{activityID: &p.ActivityID}, nil
	case domain.KindNewMessage:
		m, err := s.src.Messages.GetByID(ctx, id)
		if err != nil {
			return notificationContext{}, err
		}
		return notificationContext{activityID: &m.ActivityID, senderID: m.SenderID}, nil
	}
	return notificationContext{}, fmt.Errorf("notification kind %q: %w", kind, domain.ErrInvalidArgument)
}

// MarkRead acknowledges the (kind, notificationID) notification for userID.
// Acknowledging a new_message marks every message from the same sender in
// the same activity inside the window ending at now, so older messages of
// the group do not surface once the newest one ages out. Repeated calls are
// no-ops and a retry after a partial failure fills in the missing rows.
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, kind domain.NotificationKind, notificationID uint, now time.Time) error {
	if !kind.Valid() {
		return fmt.Errorf("notification kind %q: %w", kind, domain.ErrInvalidArgument)
	}
	now = now.UTC()

	nc, err := s.lookupContext(ctx, kind, notificationID)
	if err != nil {
		return fmt.Errorf("mark %s %d read: %w", kind, notificationID, err)
	}

	ids := []uint{notificationID}
	if kind == domain.KindNewMessage {
		ids, err = s.src.Messages.IDsBySenderSince(ctx, *nc.activityID, nc.senderID, domain.WindowStart(now))
		if err != nil {
			return fmt.Errorf("mark %s %d read: %w", kind, notificationID, err)
		}
	}

	written := 0
	for _, id := range ids {
		inserted, err := s.ledger.InsertIfAbsent(ctx, &models.ReadMark{
			UserID:           userID,
			NotificationKind: kind,
			NotificationID:   id,
			ActivityID:       nc.activityID,
			FriendRequestID:  nc.friendRequestID,
			ReadAt:           now,
		})
		if err != nil {
			return fmt.Errorf("mark %s %d read: %w", kind, id, err)
		}
		if inserted {
			written++
		}
	}

	s.log.Debug().
		Uint("user_id", userID).
		Str("kind", kind.String()).
		Uint("notification_id", notificationID).
		Int("marks_written", written).
		Int("marks_covered", len(ids)).
		Msg("notification marked read")
	return nil
}
