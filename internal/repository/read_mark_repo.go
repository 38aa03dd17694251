package repository

import (
	"context"

	"socialexplore/internal/domain"
	"socialexplore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReadMarkRepository is the read-state ledger.
type ReadMarkRepository struct {
	db *gorm.DB
}

func NewReadMarkRepository(db *gorm.DB) *ReadMarkRepository {
	return &ReadMarkRepository{db: db}
}

// ListAmong returns the (kind, id) pairs acknowledged by userID whose
// notification id is one of ids. Rows of other kinds sharing an id are
// returned too; callers match on the full key.
func (r *ReadMarkRepository) ListAmong(ctx context.Context, userID uint, ids []uint) ([]models.ReadMark, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []models.ReadMark
	err := r.db.WithContext(ctx).
		Select("notification_kind", "notification_id").
		Where("user_id = ? AND notification_id IN ?", userID, ids).
		Find(&list).Error
	return list, wrap("list read marks", err)
}

func (r *ReadMarkRepository) Exists(ctx context.Context, userID uint, kind domain.NotificationKind, notificationID uint) (bool, error) {
	var c int64
	err := r.db.WithContext(ctx).Model(&models.ReadMark{}).
		Where("user_id = ? AND notification_kind = ? AND notification_id = ?", userID, kind, notificationID).
		Count(&c).Error
	return c > 0, wrap("check read mark", err)
}

// InsertIfAbsent writes m unless a row with the same (user, kind,
// notification) already exists. The unique index arbitrates concurrent
// writers; inserted is false when the row was already there.
func (r *ReadMarkRepository) InsertIfAbsent(ctx context.Context, m *models.ReadMark) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "notification_kind"}, {Name: "notification_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(m)
	if res.Error != nil {
		return false, wrap("insert read mark", res.Error)
	}
	return res.RowsAffected > 0, nil
}
