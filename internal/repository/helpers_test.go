package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"socialexplore/internal/domain"
	"socialexplore/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	ctx = context.Background()
	now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
)

func ago(d time.Duration) time.Time { return now.Add(-d) }

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: fmt.Sprintf("%s@example.com", name), PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedActivity(t *testing.T, db *gorm.DB, creator *models.User, title string) *models.Activity {
	t.Helper()
	a := &models.Activity{CreatorID: creator.ID, Title: title, Category: "sport", StartTime: now.Add(48 * time.Hour), IsPublic: true}
	require.NoError(t, db.Create(a).Error)
	return a
}

func seedParticipation(t *testing.T, db *gorm.DB, a *models.Activity, u *models.User, status string, at time.Time) *models.Participation {
	t.Helper()
	p := &models.Participation{ActivityID: a.ID, UserID: u.ID, Status: status, JoinedAt: at}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedMessage(t *testing.T, db *gorm.DB, a *models.Activity, sender *models.User, at time.Time) *models.Message {
	t.Helper()
	m := &models.Message{ActivityID: a.ID, SenderID: sender.ID, Text: "hello", CreatedAt: at}
	require.NoError(t, db.Create(m).Error)
	return m
}

func seedFriendRequest(t *testing.T, db *gorm.DB, from, to *models.User, status string, acceptedAt *time.Time) *models.FriendRequest {
	t.Helper()
	fr := &models.FriendRequest{FromUserID: from.ID, ToUserID: to.ID, Status: status, AcceptedAt: acceptedAt, CreatedAt: ago(48 * time.Hour)}
	if status == domain.StatusAccepted && acceptedAt == nil {
		at := ago(time.Hour)
		fr.AcceptedAt = &at
	}
	require.NoError(t, db.Create(fr).Error)
	return fr
}

func countMarks(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.ReadMark{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}
