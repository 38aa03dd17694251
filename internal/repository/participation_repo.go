package repository

import (
	"context"
	"fmt"
	"time"

	"socialexplore/internal/domain"
	"socialexplore/internal/models"

	"gorm.io/gorm"
)

type ParticipationRepository struct {
	db *gorm.DB
}

func NewParticipationRepository(db *gorm.DB) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// ParticipationRow is a pending join request with display context.
type ParticipationRow struct {
	ID            uint
	ActivityID    uint
	ActivityTitle string
	UserID        uint
	UserName      string
	OccurredAt    time.Time
}

func (r *ParticipationRepository) Create(ctx context.Context, p *models.Participation) error {
	return wrap("create participation", r.db.WithContext(ctx).Create(p).Error)
}

func (r *ParticipationRepository) GetByID(ctx context.Context, id uint) (*models.Participation, error) {
	var p models.Participation
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, wrap(fmt.Sprintf("get participation %d", id), err)
	}
	return &p, nil
}

func (r *ParticipationRepository) GetByActivityAndUser(ctx context.Context, activityID, userID uint) (*models.Participation, error) {
	var p models.Participation
	err := r.db.WithContext(ctx).Where("activity_id = ? AND user_id = ?", activityID, userID).First(&p).Error
	if err != nil {
		return nil, wrap("get participation by activity and user", err)
	}
	return &p, nil
}

func (r *ParticipationRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Participation{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return wrap("update participation status", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update participation %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *ParticipationRepository) Delete(ctx context.Context, id uint) error {
	return wrap("delete participation", r.db.WithContext(ctx).Delete(&models.Participation{}, id).Error)
}

func (r *ParticipationRepository) ListByActivity(ctx context.Context, activityID uint) ([]models.Participation, error) {
	var list []models.Participation
	err := r.db.WithContext(ctx).Where("activity_id = ?", activityID).Order("joined_at ASC").Find(&list).Error
	return list, wrap("list participations by activity", err)
}

func (r *ParticipationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Participation, error) {
	var list []models.Participation
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("joined_at DESC").Find(&list).Error
	return list, wrap("list participations by user", err)
}

// AcceptedActivityIDs returns ids of activities where userID holds an
// accepted participation.
func (r *ParticipationRepository) AcceptedActivityIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Participation{}).
		Where("user_id = ? AND status = ?", userID, domain.StatusAccepted).
		Order("activity_id ASC").
		Pluck("activity_id", &ids).Error
	return ids, wrap("list participated activity ids", err)
}

// IsAcceptedMember reports whether userID holds an accepted participation in activityID.
func (r *ParticipationRepository) IsAcceptedMember(ctx context.Context, activityID, userID uint) (bool, error) {
	var c int64
	err := r.db.WithContext(ctx).Model(&models.Participation{}).
		Where("activity_id = ? AND user_id = ? AND status = ?", activityID, userID, domain.StatusAccepted).
		Count(&c).Error
	return c > 0, wrap("check participation", err)
}

// ListPendingForActivities returns pending participations on the given activities.
func (r *ParticipationRepository) ListPendingForActivities(ctx context.Context, activityIDs []uint) ([]ParticipationRow, error) {
	if len(activityIDs) == 0 {
		return nil, nil
	}
	var rows []ParticipationRow
	err := r.db.WithContext(ctx).Table("participations p").
		Select("p.id, p.activity_id, a.title AS activity_title, p.user_id, u.name AS user_name, p.joined_at AS occurred_at").
		Joins("INNER JOIN activities a ON a.id = p.activity_id").
		Joins("INNER JOIN users u ON u.id = p.user_id").
		Where("p.activity_id IN ? AND p.status = ?", activityIDs, domain.StatusPending).
		Order("p.joined_at DESC, p.id DESC").
		Scan(&rows).Error
	return rows, wrap("list pending participations", err)
}

func (r *ParticipationRepository) CountAccepted(ctx context.Context, activityID uint) (int64, error) {
	var c int64
	err := r.db.WithContext(ctx).Model(&models.Participation{}).
		Where("activity_id = ? AND status = ?", activityID, domain.StatusAccepted).
		Count(&c).Error
	return c, wrap("count accepted participations", err)
}
