package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"socialexplore/internal/domain"
	"socialexplore/internal/models"
	"socialexplore/internal/repository"
)

var errBoom = errors.New("boom")

// world is an in-memory stand-in for the database shared by the fakes.
type world struct {
	mu         sync.Mutex
	users      map[uint]string
	activities []models.Activity
	parts      []models.Participation
	friends    []models.FriendRequest
	messages   []models.Message
	marks      []models.ReadMark
	nextID     uint

	// ledgerQueries records the ids passed to each ListAmong call.
	ledgerQueries [][]uint

	// failing names the fake method that returns errBoom.
	failing string
}

func newWorld() *world {
	return &world{users: make(map[uint]string), nextID: 100}
}

func (w *world) id() uint {
	w.nextID++
	return w.nextID
}

func (w *world) fail(method string) error {
	if w.failing == method {
		return errBoom
	}
	return nil
}

func (w *world) addUser(id uint, name string) {
	w.users[id] = name
}

func (w *world) addActivity(creator uint, title string) uint {
	a := models.Activity{ID: w.id(), CreatorID: creator, Title: title}
	w.activities = append(w.activities, a)
	return a.ID
}

func (w *world) addParticipation(activityID, userID uint, status string, at time.Time) uint {
	p := models.Participation{ID: w.id(), ActivityID: activityID, UserID: userID, Status: status, JoinedAt: at}
	w.parts = append(w.parts, p)
	return p.ID
}

func (w *world) addFriendRequest(from, to uint, status string, created time.Time, acceptedAt *time.Time) uint {
	fr := models.FriendRequest{ID: w.id(), FromUserID: from, ToUserID: to, Status: status, CreatedAt: created, AcceptedAt: acceptedAt}
	w.friends = append(w.friends, fr)
	return fr.ID
}

func (w *world) addMessage(activityID, sender uint, at time.Time) uint {
	m := models.Message{ID: w.id(), ActivityID: activityID, SenderID: sender, Text: "hi", CreatedAt: at}
	w.messages = append(w.messages, m)
	return m.ID
}

func (w *world) activityTitle(id uint) string {
	for _, a := range w.activities {
		if a.ID == id {
			return a.Title
		}
	}
	return ""
}

func (w *world) sources() NotificationSources {
	return NotificationSources{
		Activities:     fakeActivities{w},
		Participations: fakeParticipations{w},
		FriendRequests: fakeFriendRequests{w},
		Messages:       fakeMessages{w},
	}
}

type fakeActivities struct{ w *world }

func (f fakeActivities) OwnedIDs(_ context.Context, userID uint) ([]uint, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.fail("OwnedIDs"); err != nil {
		return nil, err
	}
	var ids []uint
	for _, a := range f.w.activities {
		if a.CreatorID == userID {
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

type fakeParticipations struct{ w *world }

func (f fakeParticipations) AcceptedActivityIDs(_ context.Context, userID uint) ([]uint, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.fail("AcceptedActivityIDs"); err != nil {
		return nil, err
	}
	var ids []uint
	for _, p := range f.w.parts {
		if p.UserID == userID && p.Status == domain.StatusAccepted {
			ids = append(ids, p.ActivityID)
		}
	}
	return ids, nil
}

func (f fakeParticipations) ListPendingForActivities(_ context.Context, activityIDs []uint) ([]repository.ParticipationRow, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.fail("ListPendingForActivities"); err != nil {
		return nil, err
	}
	var rows []repository.ParticipationRow
	for _, p := range f.w.parts {
		if p.Status != domain.StatusPending || !contains(activityIDs, p.ActivityID) {
			continue
		}
		rows = append(rows, repository.ParticipationRow{
			ID:            p.ID,
			ActivityID:    p.ActivityID,
			ActivityTitle: f.w.activityTitle(p.ActivityID),
			UserID:        p.UserID,
			UserName:      f.w.users[p.UserID],
			OccurredAt:    p.JoinedAt,
		})
	}
	return rows, nil
}

func (f fakeParticipations) GetByID(_ context.Context, id uint) (*models.Participation, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, p := range f.w.parts {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeFriendRequests struct{ w *world }

func (f fakeFriendRequests) ListPendingIncoming(_ context.Context, userID uint) ([]repository.FriendRequestRow, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.fail("ListPendingIncoming"); err != nil {
		return nil, err
	}
	var rows []repository.FriendRequestRow
	for _, fr := range f.w.friends {
		if fr.ToUserID == userID && fr.Status == domain.StatusPending {
			rows = append(rows, repository.FriendRequestRow{ID: fr.ID, UserID: fr.FromUserID, UserName: f.w.users[fr.FromUserID], OccurredAt: fr.CreatedAt})
		}
	}
	return rows, nil
}

func (f fakeFriendRequests) ListAcceptedOutgoingSince(_ context.Context, userID uint, since time.Time) ([]repository.FriendRequestRow, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.fail("ListAcceptedOutgoingSince"); err != nil {
		return nil, err
	}
	var rows []repository.FriendRequestRow
	for _, fr := range f.w.friends {
		if fr.FromUserID != userID || fr.Status != domain.StatusAccepted || fr.AcceptedAt == nil || fr.AcceptedAt.Before(since) {
			continue
		}
		rows = append(rows, repository.FriendRequestRow{ID: fr.ID, UserID: fr.ToUserID, UserName: f.w.users[fr.ToUserID], OccurredAt: *fr.AcceptedAt})
	}
	return rows, nil
}

func (f fakeFriendRequests) GetByID(_ context.Context, id uint) (*models.FriendRequest, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, fr := range f.w.friends {
		if fr.ID == id {
			return &fr, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeMessages struct{ w *world }

func (f fakeMessages) ListRecentInActivities(_ context.Context, activityIDs []uint, excludeUserID uint, since time.Time) ([]repository.MessageRow, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.fail("ListRecentInActivities"); err != nil {
		return nil, err
	}
	var rows []repository.MessageRow
	for _, m := range f.w.messages {
		if !contains(activityIDs, m.ActivityID) || m.SenderID == excludeUserID || m.CreatedAt.Before(since) {
			continue
		}
		rows = append(rows, repository.MessageRow{
			ID:            m.ID,
			ActivityID:    m.ActivityID,
			ActivityTitle: f.w.activityTitle(m.ActivityID),
			SenderID:      m.SenderID,
			SenderName:    f.w.users[m.SenderID],
			OccurredAt:    m.CreatedAt,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].OccurredAt.Equal(rows[j].OccurredAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].OccurredAt.After(rows[j].OccurredAt)
	})
	return rows, nil
}

func (f fakeMessages) IDsBySenderSince(_ context.Context, activityID, senderID uint, since time.Time) ([]uint, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.fail("IDsBySenderSince"); err != nil {
		return nil, err
	}
	var ids []uint
	for _, m := range f.w.messages {
		if m.ActivityID == activityID && m.SenderID == senderID && !m.CreatedAt.Before(since) {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (f fakeMessages) GetByID(_ context.Context, id uint) (*models.Message, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, m := range f.w.messages {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeLedger struct{ w *world }

func (f fakeLedger) ListAmong(_ context.Context, userID uint, ids []uint) ([]models.ReadMark, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.fail("ListAmong"); err != nil {
		return nil, err
	}
	f.w.ledgerQueries = append(f.w.ledgerQueries, append([]uint(nil), ids...))
	wanted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []models.ReadMark
	for _, m := range f.w.marks {
		if m.UserID == userID && wanted[m.NotificationID] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f fakeLedger) Exists(_ context.Context, userID uint, kind domain.NotificationKind, notificationID uint) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	return f.w.hasMark(userID, kind, notificationID), nil
}

func (f fakeLedger) InsertIfAbsent(_ context.Context, m *models.ReadMark) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.fail("InsertIfAbsent"); err != nil {
		return false, err
	}
	if f.w.hasMark(m.UserID, m.NotificationKind, m.NotificationID) {
		return false, nil
	}
	f.w.marks = append(f.w.marks, *m)
	return true, nil
}

func (w *world) hasMark(userID uint, kind domain.NotificationKind, id uint) bool {
	for _, m := range w.marks {
		if m.UserID == userID && m.NotificationKind == kind && m.NotificationID == id {
			return true
		}
	}
	return false
}

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
