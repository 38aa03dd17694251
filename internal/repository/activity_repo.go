package repository

import (
	"context"
	"fmt"

	"socialexplore/internal/domain"
	"socialexplore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	return wrap("create activity", r.db.WithContext(ctx).Create(a).Error)
}

func (r *ActivityRepository) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	var a models.Activity
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, wrap(fmt.Sprintf("get activity %d", id), err)
	}
	return &a, nil
}

func (r *ActivityRepository) ListByCreator(ctx context.Context, creatorID uint, limit, offset int) ([]models.Activity, error) {
	var list []models.Activity
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("start_time DESC").Limit(limit).Offset(offset).
		Find(&list).Error
	return list, wrap("list activities by creator", err)
}

// OwnedIDs returns ids of activities created by userID.
func (r *ActivityRepository) OwnedIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Activity{}).
		Where("creator_id = ?", userID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, wrap("list owned activity ids", err)
}

func (r *ActivityRepository) Update(ctx context.Context, a *models.Activity) error {
	return wrap(fmt.Sprintf("update activity %d", a.ID), r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error)
}

// Delete removes an activity with its participations, messages and every
// read mark that points into it. Rows are purged explicitly as well as
// through the foreign keys.
func (r *ActivityRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", id).Delete(&models.ReadMark{}).Error; err != nil {
			return wrap("purge activity read marks", err)
		}
		if err := tx.Where("activity_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return wrap("purge activity messages", err)
		}
		if err := tx.Where("activity_id = ?", id).Delete(&models.Participation{}).Error; err != nil {
			return wrap("purge activity participations", err)
		}
		res := tx.Delete(&models.Activity{}, id)
		if res.Error != nil {
			return wrap("delete activity", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete activity %d: %w", id, domain.ErrNotFound)
		}
		return nil
	})
}
