package repository

import (
	"context"
	"fmt"
	"time"

	"socialexplore/internal/domain"
	"socialexplore/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Look-back windows of the dashboard series.
const (
	MonthlyWindow    = 180 * 24 * time.Hour
	NewFriendsWindow = 90 * 24 * time.Hour
)

type CategoryCount struct {
	Name  string `json:"name"`
	Count int64  `gorm:"column:n" json:"count"`
}

// MonthlyCount is a bucket of a monthly series; Month is formatted YYYY-MM.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `gorm:"column:n" json:"count"`
}

type TopActivity struct {
	ID                uint   `json:"id"`
	Title             string `json:"title"`
	Category          string `json:"category"`
	ParticipantsCount int64  `json:"participants_count"`
}

type GeneralStats struct {
	TotalActivities       int64           `json:"total_activities"`
	TotalUsers            int64           `json:"total_users"`
	TotalParticipations   int64           `json:"total_participations"`
	Categories            []CategoryCount `json:"categories"`
	MonthlyActivities     []MonthlyCount  `json:"monthly_activities"`
	MonthlyParticipations []MonthlyCount  `json:"monthly_participations"`
}

type PersonalStats struct {
	CreatedActivities      int64           `json:"created_activities"`
	AcceptedParticipations int64           `json:"accepted_participations"`
	PendingParticipations  int64           `json:"pending_participations"`
	Categories             []CategoryCount `json:"categories"`
	MonthlyActivities      []MonthlyCount  `json:"monthly_activities"`
	MonthlyParticipations  []MonthlyCount  `json:"monthly_participations"`
	NewFriends             int64           `json:"new_friends_last_3_months"`
	TopActivities          []TopActivity   `json:"top_activities"`
}

// StatisticsRepository computes dashboard aggregates.
type StatisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// monthOf renders col as YYYY-MM in the connected dialect. sqlite stores
// times as text starting with the date.
func (r *StatisticsRepository) monthOf(col string) string {
	switch r.db.Dialector.Name() {
	case "mysql":
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m')", col)
	case "postgres":
		return fmt.Sprintf("to_char(%s, 'YYYY-MM')", col)
	default:
		return fmt.Sprintf("substr(%s, 1, 7)", col)
	}
}

// General returns platform-wide totals and the monthly series of the
// MonthlyWindow ending at now.
func (r *StatisticsRepository) General(ctx context.Context, now time.Time) (*GeneralStats, error) {
	since := now.UTC().Add(-MonthlyWindow)
	db := r.db.WithContext(ctx)
	var s GeneralStats
	var g errgroup.Group
	g.Go(func() error {
		return db.Model(&models.Activity{}).Count(&s.TotalActivities).Error
	})
	g.Go(func() error {
		return db.Model(&models.User{}).Count(&s.TotalUsers).Error
	})
	g.Go(func() error {
		return db.Model(&models.Participation{}).Where("status = ?", domain.StatusAccepted).Count(&s.TotalParticipations).Error
	})
	g.Go(func() (err error) {
		s.Categories, err = r.categories(db)
		return err
	})
	g.Go(func() (err error) {
		s.MonthlyActivities, err = r.monthlyActivities(db.Where("created_at >= ?", since))
		return err
	})
	g.Go(func() (err error) {
		s.MonthlyParticipations, err = r.monthlyParticipations(db.Where("joined_at >= ?", since))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, wrap("general statistics", err)
	}
	return &s, nil
}

// Personal returns the statistics of userID's own activities and
// participations.
func (r *StatisticsRepository) Personal(ctx context.Context, userID uint, now time.Time) (*PersonalStats, error) {
	now = now.UTC()
	since := now.Add(-MonthlyWindow)
	db := r.db.WithContext(ctx)
	var s PersonalStats
	var g errgroup.Group
	g.Go(func() error {
		return db.Model(&models.Activity{}).Where("creator_id = ?", userID).Count(&s.CreatedActivities).Error
	})
	g.Go(func() error {
		return db.Model(&models.Participation{}).
			Where("user_id = ? AND status = ?", userID, domain.StatusAccepted).
			Count(&s.AcceptedParticipations).Error
	})
	g.Go(func() error {
		return db.Model(&models.Participation{}).
			Where("user_id = ? AND status = ?", userID, domain.StatusPending).
			Count(&s.PendingParticipations).Error
	})
	g.Go(func() (err error) {
		s.Categories, err = r.categories(db.Where("creator_id = ?", userID))
		return err
	})
	g.Go(func() (err error) {
		s.MonthlyActivities, err = r.monthlyActivities(db.Where("creator_id = ? AND created_at >= ?", userID, since))
		return err
	})
	g.Go(func() (err error) {
		s.MonthlyParticipations, err = r.monthlyParticipations(db.Where("user_id = ? AND joined_at >= ?", userID, since))
		return err
	})
	g.Go(func() error {
		return db.Model(&models.FriendRequest{}).
			Where("(from_user_id = ? OR to_user_id = ?) AND status = ? AND accepted_at >= ?",
				userID, userID, domain.StatusAccepted, now.Add(-NewFriendsWindow)).
			Count(&s.NewFriends).Error
	})
	g.Go(func() error {
		return db.Table("activities a").
			Select("a.id, a.title, a.category, COUNT(p.id) AS participants_count").
			Joins("INNER JOIN participations p ON p.activity_id = a.id AND p.status = ?", domain.StatusAccepted).
			Where("a.creator_id = ?", userID).
			Group("a.id, a.title, a.category").
			Order("participants_count DESC, a.id ASC").
			Limit(5).
			Scan(&s.TopActivities).Error
	})
	if err := g.Wait(); err != nil {
		return nil, wrap("personal statistics", err)
	}
	return &s, nil
}

func (r *StatisticsRepository) categories(q *gorm.DB) ([]CategoryCount, error) {
	out := []CategoryCount{}
	err := q.Model(&models.Activity{}).
		Select("category AS name, COUNT(*) AS n").
		Group("category").
		Order("n DESC, name ASC").
		Scan(&out).Error
	return out, err
}

func (r *StatisticsRepository) monthlyActivities(q *gorm.DB) ([]MonthlyCount, error) {
	out := []MonthlyCount{}
	err := q.Model(&models.Activity{}).
		Select(r.monthOf("created_at") + " AS month, COUNT(*) AS n").
		Group("month").
		Order("month ASC").
		Scan(&out).Error
	return out, err
}

func (r *StatisticsRepository) monthlyParticipations(q *gorm.DB) ([]MonthlyCount, error) {
	out := []MonthlyCount{}
	err := q.Model(&models.Participation{}).
		Where("status = ?", domain.StatusAccepted).
		Select(r.monthOf("joined_at") + " AS month, COUNT(*) AS n").
		Group("month").
		Order("month ASC").
		Scan(&out).Error
	return out, err
}
