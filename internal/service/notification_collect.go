package service

import (
	"context"
	"fmt"
	"time"

	"socialexplore/internal/domain"
	"socialexplore/internal/repository"

	"golang.org/x/sync/errgroup"
)

// ActivityRef is the activity context carried by participation and message
// notifications.
type ActivityRef struct {
	ID    uint
	Title string
}

// Candidate is one pending notification before read filtering. Activity is
// set for participation_request and new_message and nil for friendship kinds.
type Candidate struct {
	Kind       domain.NotificationKind
	SourceID   uint
	Activity   *ActivityRef
	ActorID    uint
	ActorName  string
	OccurredAt time.Time
	Message    string
}

func newCandidate(kind domain.NotificationKind, sourceID uint, activity *ActivityRef, actorID uint, actorName string, at time.Time) Candidate {
	c := Candidate{
		Kind:       kind,
		SourceID:   sourceID,
		Activity:   activity,
		ActorID:    actorID,
		ActorName:  actorName,
		OccurredAt: at,
	}
	c.Message = render(c)
	return c
}

func render(c Candidate) string {
	switch c.Kind {
	case domain.KindFriendRequestReceived:
		return fmt.Sprintf("%s sent you a friend request", c.ActorName)
	case domain.KindFriendRequestAccepted:
		return fmt.Sprintf("%s accepted your friend request", c.ActorName)
	case domain.KindParticipationRequest:
		return fmt.Sprintf("%s asked to join %q", c.ActorName, c.Activity.Title)
	case domain.KindNewMessage:
		return fmt.Sprintf("%s sent a message in %q", c.ActorName, c.Activity.Title)
	}
	return ""
}

// collect gathers candidates for userID from all sources. Sources are
// queried concurrently; any failure discards everything collected so far.
func (s *NotificationService) collect(ctx context.Context, userID uint, now time.Time) ([]Candidate, error) {
	since := domain.WindowStart(now)

	var (
		owned, participated []uint
		incoming, accepted  []repository.FriendRequestRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		owned, err = s.src.Activities.OwnedIDs(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		participated, err = s.src.Participations.AcceptedActivityIDs(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		incoming, err = s.src.FriendRequests.ListPendingIncoming(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		accepted, err = s.src.FriendRequests.ListAcceptedOutgoingSince(gctx, userID, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collect notifications: %w", err)
	}

	var (
		pending  []repository.ParticipationRow
		messages []repository.MessageRow
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		pending, err = s.src.Participations.ListPendingForActivities(gctx, owned)
		return err
	})
	g.Go(func() (err error) {
		messages, err = s.src.Messages.ListRecentInActivities(gctx, union(owned, participated), userID, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collect notifications: %w", err)
	}

	out := make([]Candidate, 0, len(incoming)+len(accepted)+len(pending)+len(messages))
	for _, fr := range incoming {
		out = append(out, newCandidate(domain.KindFriendRequestReceived, fr.ID, nil, fr.UserID, fr.UserName, fr.OccurredAt))
	}
	for _, fr := range accepted {
		// Window is enforced here as well as in the query.
		if fr.OccurredAt.Before(since) {
			continue
		}
		out = append(out, newCandidate(domain.KindFriendRequestAccepted, fr.ID, nil, fr.UserID, fr.UserName, fr.OccurredAt))
	}
	for _, p := range pending {
		ref := &ActivityRef{ID: p.ActivityID, Title: p.ActivityTitle}
		out = append(out, newCandidate(domain.KindParticipationRequest, p.ID, ref, p.UserID, p.UserName, p.OccurredAt))
	}
	for _, m := range latestPerSender(messages, userID, since) {
		ref := &ActivityRef{ID: m.ActivityID, Title: m.ActivityTitle}
		out = append(out, newCandidate(domain.KindNewMessage, m.ID, ref, m.SenderID, m.SenderName, m.OccurredAt))
	}
	return out, nil
}

type senderKey struct {
	activityID uint
	senderID   uint
}

// latestPerSender keeps one message per (activity, sender): the newest,
// ties broken by the highest id. Messages by self or before since are
// skipped. Output keeps the order in which each group was first seen.
func latestPerSender(rows []repository.MessageRow, self uint, since time.Time) []repository.MessageRow {
	idx := make(map[senderKey]int)
	var out []repository.MessageRow
	for _, m := range rows {
		if m.SenderID == self || m.OccurredAt.Before(since) {
			continue
		}
		k := senderKey{activityID: m.ActivityID, senderID: m.SenderID}
		i, ok := idx[k]
		if !ok {
			idx[k] = len(out)
			out = append(out, m)
			continue
		}
		cur := out[i]
		if m.OccurredAt.After(cur.OccurredAt) || (m.OccurredAt.Equal(cur.OccurredAt) && m.ID > cur.ID) {
			out[i] = m
		}
	}
	return out
}

// union returns the distinct ids of a and b in first-seen order.
func union(a, b []uint) []uint {
	seen := make(map[uint]struct{}, len(a)+len(b))
	out := make([]uint, 0, len(a)+len(b))
	for _, list := range [][]uint{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
