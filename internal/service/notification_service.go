package service

import (
	"context"
	"fmt"
	"time"

	"socialexplore/internal/domain"
	"socialexplore/internal/models"
	"socialexplore/internal/repository"

	"github.com/rs/zerolog"
)

// ActivitySource lists activities a user owns.
type ActivitySource interface {
	OwnedIDs(ctx context.Context, userID uint) ([]uint, error)
}

// ParticipationSource serves join requests and memberships.
type ParticipationSource interface {
	AcceptedActivityIDs(ctx context.Context, userID uint) ([]uint, error)
	ListPendingForActivities(ctx context.Context, activityIDs []uint) ([]repository.ParticipationRow, error)
	GetByID(ctx context.Context, id uint) (*models.Participation, error)
}

// FriendRequestSource serves incoming and recently accepted friend requests.
type FriendRequestSource interface {
	ListPendingIncoming(ctx context.Context, userID uint) ([]repository.FriendRequestRow, error)
	ListAcceptedOutgoingSince(ctx context.Context, userID uint, since time.Time) ([]repository.FriendRequestRow, error)
	GetByID(ctx context.Context, id uint) (*models.FriendRequest, error)
}

// MessageSource serves activity chat messages.
type MessageSource interface {
	ListRecentInActivities(ctx context.Context, activityIDs []uint, excludeUserID uint, since time.Time) ([]repository.MessageRow, error)
	IDsBySenderSince(ctx context.Context, activityID, senderID uint, since time.Time) ([]uint, error)
	GetByID(ctx context.Context, id uint) (*models.Message, error)
}

// ReadLedger persists acknowledgements. InsertIfAbsent must be atomic with
// respect to the (user, kind, notification) key.
type ReadLedger interface {
	ListAmong(ctx context.Context, userID uint, notificationIDs []uint) ([]models.ReadMark, error)
	Exists(ctx context.Context, userID uint, kind domain.NotificationKind, notificationID uint) (bool, error)
	InsertIfAbsent(ctx context.Context, m *models.ReadMark) (bool, error)
}

var (
	_ ActivitySource      = (*repository.ActivityRepository)(nil)
	_ ParticipationSource = (*repository.ParticipationRepository)(nil)
	_ FriendRequestSource = (*repository.FriendRequestRepository)(nil)
	_ MessageSource       = (*repository.MessageRepository)(nil)
	_ ReadLedger          = (*repository.ReadMarkRepository)(nil)
)

// NotificationSources groups the read-only collaborators of the engine.
type NotificationSources struct {
	Activities     ActivitySource
	Participations ParticipationSource
	FriendRequests FriendRequestSource
	Messages       MessageSource
}

// NotificationService computes a user's notification feed from the domain
// stores and tracks which entries were read. Nothing but read marks is
// persisted; the feed is recomputed on every call.
type NotificationService struct {
	src    NotificationSources
	ledger ReadLedger
	log    zerolog.Logger
}

func NewNotificationService(src NotificationSources, ledger ReadLedger, log zerolog.Logger) *NotificationService {
	return &NotificationService{src: src, ledger: ledger, log: log}
}

// Count returns the number of unread notifications for userID at now. It is
// always len(Feed(ctx, userID, now)).
func (s *NotificationService) Count(ctx context.Context, userID uint, now time.Time) (int, error) {
	feed, err := s.evaluate(ctx, userID, now)
	if err != nil {
		return 0, err
	}
	return len(feed), nil
}

// Feed returns unread notifications for userID at now, newest first.
func (s *NotificationService) Feed(ctx context.Context, userID uint, now time.Time) ([]Candidate, error) {
	return s.evaluate(ctx, userID, now)
}

// IsRead reports whether userID acknowledged the (kind, id) notification.
func (s *NotificationService) IsRead(ctx context.Context, userID uint, kind domain.NotificationKind, notificationID uint) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("notification kind %q: %w", kind, domain.ErrInvalidArgument)
	}
	return s.ledger.Exists(ctx, userID, kind, notificationID)
}

// evaluate is the only path from storage to a feed; Count and Feed must not
// filter on their own.
func (s *NotificationService) evaluate(ctx context.Context, userID uint, now time.Time) ([]Candidate, error) {
	now = now.UTC()

	candidates, err := s.collect(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	read, err := s.readSet(ctx, userID, candidates)
	if err != nil {
		return nil, err
	}

	feed := Reduce(candidates, read)
	s.log.Debug().
		Uint("user_id", userID).
		Int("candidates", len(candidates)).
		Int("read_marks", len(read)).
		Int("unread", len(feed)).
		Msg("notifications evaluated")
	return feed, nil
}

// readSet loads only the marks that can match a candidate, so its cost
// follows the feed size rather than the user's read history.
func (s *NotificationService) readSet(ctx context.Context, userID uint, candidates []Candidate) (ReadSet, error) {
	ids := make([]uint, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.SourceID)
	}
	marks, err := s.ledger.ListAmong(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("load read marks: %w", err)
	}
	set := make(ReadSet, len(marks))
	for _, m := range marks {
		set.Add(m.NotificationKind, m.NotificationID)
	}
	return set, nil
}
