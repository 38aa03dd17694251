package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"socialexplore/internal/domain"
	"socialexplore/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice uint = 1
	bob   uint = 2
	carol uint = 3
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) time.Time { return now.Add(-d) }

func newFixture(t *testing.T) (*world, *NotificationService) {
	t.Helper()
	w := newWorld()
	w.addUser(alice, "Alice")
	w.addUser(bob, "Bob")
	w.addUser(carol, "Carol")
	return w, NewNotificationService(w.sources(), fakeLedger{w}, zerolog.Nop())
}

func kinds(feed []Candidate) []domain.NotificationKind {
	out := make([]domain.NotificationKind, 0, len(feed))
	for _, c := range feed {
		out = append(out, c.Kind)
	}
	return out
}

func assertParity(t *testing.T, svc *NotificationService, userID uint, at time.Time) []Candidate {
	t.Helper()
	ctx := context.Background()
	feed, err := svc.Feed(ctx, userID, at)
	require.NoError(t, err)
	n, err := svc.Count(ctx, userID, at)
	require.NoError(t, err)
	assert.Equal(t, len(feed), n, "count and feed disagree")
	return feed
}

func TestFeed_CollectsEveryKindNewestFirst(t *testing.T) {
	w, svc := newFixture(t)
	football := w.addActivity(alice, "Football")
	w.addParticipation(football, bob, domain.StatusPending, ago(2*time.Hour))
	w.addParticipation(football, carol, domain.StatusAccepted, ago(5*time.Hour))
	msg := w.addMessage(football, carol, ago(30*time.Minute))
	received := w.addFriendRequest(bob, alice, domain.StatusPending, ago(3*time.Hour), nil)
	acceptedAt := ago(time.Hour)
	accepted := w.addFriendRequest(alice, carol, domain.StatusAccepted, ago(48*time.Hour), &acceptedAt)

	feed := assertParity(t, svc, alice, now)
	require.Len(t, feed, 4)
	assert.Equal(t, []domain.NotificationKind{
		domain.KindNewMessage,
		domain.KindFriendRequestAccepted,
		domain.KindParticipationRequest,
		domain.KindFriendRequestReceived,
	}, kinds(feed))

	assert.Equal(t, msg, feed[0].SourceID)
	assert.Equal(t, carol, feed[0].ActorID)
	require.NotNil(t, feed[0].Activity)
	assert.Equal(t, "Football", feed[0].Activity.Title)
	assert.Equal(t, `Carol sent a message in "Football"`, feed[0].Message)

	assert.Equal(t, accepted, feed[1].SourceID)
	assert.Nil(t, feed[1].Activity)
	assert.Equal(t, "Carol accepted your friend request", feed[1].Message)
	assert.True(t, feed[1].OccurredAt.Equal(acceptedAt))

	assert.Equal(t, `Bob asked to join "Football"`, feed[2].Message)
	assert.Equal(t, football, feed[2].Activity.ID)

	assert.Equal(t, received, feed[3].SourceID)
	assert.Equal(t, "Bob sent you a friend request", feed[3].Message)
}

func TestFeed_EmptyForUserWithNothing(t *testing.T) {
	_, svc := newFixture(t)
	feed := assertParity(t, svc, bob, now)
	assert.Empty(t, feed)
}

func TestFeed_ParticipantSeesMessagesOnlyOnceAccepted(t *testing.T) {
	w, svc := newFixture(t)
	hike := w.addActivity(alice, "Hike")
	w.addParticipation(hike, bob, domain.StatusAccepted, ago(10*time.Hour))
	w.addParticipation(hike, carol, domain.StatusPending, ago(10*time.Hour))
	w.addMessage(hike, alice, ago(time.Hour))

	assert.Len(t, assertParity(t, svc, bob, now), 1)
	assert.Empty(t, assertParity(t, svc, carol, now))
	// Pending requests on someone else's activity never notify the participant.
	assert.NotContains(t, kinds(assertParity(t, svc, bob, now)), domain.KindParticipationRequest)
}

func TestFeed_NoSelfNotification(t *testing.T) {
	w, svc := newFixture(t)
	chess := w.addActivity(alice, "Chess")
	w.addMessage(chess, alice, ago(time.Minute))
	w.addMessage(chess, alice, ago(2*time.Minute))

	assert.Empty(t, assertParity(t, svc, alice, now))
}

func TestFeed_MessageGroupingAndMarkRead(t *testing.T) {
	w, svc := newFixture(t)
	ctx := context.Background()
	board := w.addActivity(alice, "Board games")
	w.addParticipation(board, bob, domain.StatusAccepted, ago(48*time.Hour))
	m1 := w.addMessage(board, bob, ago(3*time.Hour))
	m2 := w.addMessage(board, bob, ago(time.Hour))

	feed := assertParity(t, svc, alice, now)
	require.Len(t, feed, 1)
	assert.Equal(t, m2, feed[0].SourceID)

	require.NoError(t, svc.MarkRead(ctx, alice, domain.KindNewMessage, m2, now))
	assert.Empty(t, assertParity(t, svc, alice, now))

	for _, id := range []uint{m1, m2} {
		read, err := svc.IsRead(ctx, alice, domain.KindNewMessage, id)
		require.NoError(t, err)
		assert.True(t, read, "message %d should be covered by the group mark", id)
	}

	m3 := w.addMessage(board, bob, ago(10*time.Minute))
	feed = assertParity(t, svc, alice, now)
	require.Len(t, feed, 1)
	assert.Equal(t, m3, feed[0].SourceID)
}

func TestFeed_GroupsPerActivityAndSender(t *testing.T) {
	w, svc := newFixture(t)
	a := w.addActivity(alice, "A")
	b := w.addActivity(alice, "B")
	w.addMessage(a, bob, ago(3*time.Hour))
	w.addMessage(a, bob, ago(2*time.Hour))
	w.addMessage(a, carol, ago(time.Hour))
	w.addMessage(b, bob, ago(4*time.Hour))

	feed := assertParity(t, svc, alice, now)
	assert.Len(t, feed, 3)
}

func TestFeed_MessageWindow(t *testing.T) {
	w, svc := newFixture(t)
	run := w.addActivity(alice, "Run")
	w.addMessage(run, bob, ago(25*time.Hour))
	assert.Empty(t, assertParity(t, svc, alice, now))

	inside := w.addMessage(run, bob, ago(23*time.Hour))
	feed := assertParity(t, svc, alice, now)
	require.Len(t, feed, 1)
	assert.Equal(t, inside, feed[0].SourceID)

	// The same data evaluated later drops out of the window.
	assert.Empty(t, assertParity(t, svc, alice, now.Add(2*time.Hour)))
}

func TestFeed_AcceptedFriendshipWindow(t *testing.T) {
	w, svc := newFixture(t)
	old := ago(25 * time.Hour)
	recent := ago(time.Hour)
	w.addFriendRequest(alice, bob, domain.StatusAccepted, ago(30*time.Hour), &old)
	fresh := w.addFriendRequest(alice, carol, domain.StatusAccepted, ago(2*time.Hour), &recent)

	feed := assertParity(t, svc, alice, now)
	require.Len(t, feed, 1)
	assert.Equal(t, fresh, feed[0].SourceID)
	assert.Equal(t, domain.KindFriendRequestAccepted, feed[0].Kind)

	// The recipient of an accepted request is not notified of it.
	assert.Empty(t, assertParity(t, svc, carol, now))
}

func TestFeed_ReceivedRequestsHaveNoWindow(t *testing.T) {
	w, svc := newFixture(t)
	w.addFriendRequest(bob, alice, domain.StatusPending, ago(30*24*time.Hour), nil)
	w.addFriendRequest(carol, alice, domain.StatusRejected, ago(time.Hour), nil)

	feed := assertParity(t, svc, alice, now)
	require.Len(t, feed, 1)
	assert.Equal(t, bob, feed[0].ActorID)
}

func TestMarkRead_Idempotent(t *testing.T) {
	w, svc := newFixture(t)
	ctx := context.Background()
	act := w.addActivity(alice, "Yoga")
	p := w.addParticipation(act, bob, domain.StatusPending, ago(time.Hour))
	w.addParticipation(act, carol, domain.StatusPending, ago(2*time.Hour))

	require.NoError(t, svc.MarkRead(ctx, alice, domain.KindParticipationRequest, p, now))
	require.NoError(t, svc.MarkRead(ctx, alice, domain.KindParticipationRequest, p, now))
	assert.Len(t, w.marks, 1)

	feed := assertParity(t, svc, alice, now)
	require.Len(t, feed, 1)
	assert.Equal(t, carol, feed[0].ActorID)

	mark := w.marks[0]
	require.NotNil(t, mark.ActivityID)
	assert.Equal(t, act, *mark.ActivityID)
	assert.Nil(t, mark.FriendRequestID)
	assert.True(t, mark.ReadAt.Equal(now))
}

func TestMarkRead_ConcurrentCallsWriteOneMark(t *testing.T) {
	w, svc := newFixture(t)
	fr := w.addFriendRequest(bob, alice, domain.StatusPending, ago(time.Hour), nil)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.MarkRead(context.Background(), alice, domain.KindFriendRequestReceived, fr, now)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, w.marks, 1)
	require.NotNil(t, w.marks[0].FriendRequestID)
	assert.Equal(t, fr, *w.marks[0].FriendRequestID)
}

func TestMarkRead_InvalidKind(t *testing.T) {
	_, svc := newFixture(t)
	ctx := context.Background()

	err := svc.MarkRead(ctx, alice, domain.NotificationKind("bogus"), 1, now)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.IsRead(ctx, alice, domain.NotificationKind(""), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestMarkRead_MissingRow(t *testing.T) {
	w, svc := newFixture(t)
	ctx := context.Background()
	for _, kind := range domain.NotificationKinds {
		err := svc.MarkRead(ctx, alice, kind, 9999, now)
		assert.ErrorIs(t, err, domain.ErrNotFound, kind.String())
	}
	assert.Empty(t, w.marks)
}

func TestMarkRead_MessageWindowIsEvaluatedAtCallTime(t *testing.T) {
	w, svc := newFixture(t)
	ctx := context.Background()
	act := w.addActivity(alice, "Climbing")
	m1 := w.addMessage(act, bob, ago(3*time.Hour))
	m2 := w.addMessage(act, bob, ago(time.Hour))

	later := now.Add(22 * time.Hour)
	require.NoError(t, svc.MarkRead(ctx, alice, domain.KindNewMessage, m2, later))

	read, err := svc.IsRead(ctx, alice, domain.KindNewMessage, m2)
	require.NoError(t, err)
	assert.True(t, read)
	read, err = svc.IsRead(ctx, alice, domain.KindNewMessage, m1)
	require.NoError(t, err)
	assert.False(t, read, "m1 fell outside the window at call time")
}

func TestMarkRead_MessageOutsideWindowWritesNothing(t *testing.T) {
	w, svc := newFixture(t)
	act := w.addActivity(alice, "Cinema")
	m := w.addMessage(act, bob, ago(30*time.Hour))

	require.NoError(t, svc.MarkRead(context.Background(), alice, domain.KindNewMessage, m, now))
	assert.Empty(t, w.marks)
}

func TestMarkRead_PropagatesLedgerFailure(t *testing.T) {
	w, svc := newFixture(t)
	fr := w.addFriendRequest(bob, alice, domain.StatusPending, ago(time.Hour), nil)
	w.failing = "InsertIfAbsent"

	err := svc.MarkRead(context.Background(), alice, domain.KindFriendRequestReceived, fr, now)
	assert.ErrorIs(t, err, errBoom)

	// Retrying after the failure clears completes the acknowledgement.
	w.failing = ""
	require.NoError(t, svc.MarkRead(context.Background(), alice, domain.KindFriendRequestReceived, fr, now))
	assert.Empty(t, assertParity(t, svc, alice, now))
}

func TestEvaluate_AnySourceFailureFailsWholeFeed(t *testing.T) {
	methods := []string{
		"OwnedIDs",
		"AcceptedActivityIDs",
		"ListPendingIncoming",
		"ListAcceptedOutgoingSince",
		"ListPendingForActivities",
		"ListRecentInActivities",
		"ListAmong",
	}
	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			w, svc := newFixture(t)
			act := w.addActivity(alice, "Padel")
			w.addParticipation(act, bob, domain.StatusPending, ago(time.Hour))
			w.addFriendRequest(carol, alice, domain.StatusPending, ago(time.Hour), nil)
			w.failing = method

			feed, err := svc.Feed(context.Background(), alice, now)
			assert.ErrorIs(t, err, errBoom)
			assert.Nil(t, feed)

			n, err := svc.Count(context.Background(), alice, now)
			assert.ErrorIs(t, err, errBoom)
			assert.Zero(t, n)
		})
	}
}

func TestEvaluate_NormalizesNowToUTC(t *testing.T) {
	w, svc := newFixture(t)
	act := w.addActivity(alice, "Swim")
	w.addMessage(act, bob, ago(23*time.Hour))

	tz := time.FixedZone("UTC+5", 5*60*60)
	feed := assertParity(t, svc, alice, now.In(tz))
	assert.Len(t, feed, 1)
}

func TestFeed_LoadsOnlyMarksOfCurrentCandidates(t *testing.T) {
	w, svc := newFixture(t)
	act := w.addActivity(alice, "Bowling")
	stale := w.addMessage(act, bob, ago(40*time.Hour))
	w.marks = append(w.marks, models.ReadMark{UserID: alice, NotificationKind: domain.KindNewMessage, NotificationID: stale})
	p := w.addParticipation(act, carol, domain.StatusPending, ago(time.Hour))

	feed := assertParity(t, svc, alice, now)
	require.Len(t, feed, 1)
	assert.Equal(t, p, feed[0].SourceID)

	require.NotEmpty(t, w.ledgerQueries)
	for _, ids := range w.ledgerQueries {
		assert.Equal(t, []uint{p}, ids, "old read history is not loaded")
	}
}
