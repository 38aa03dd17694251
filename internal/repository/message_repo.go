package repository

import (
	"context"
	"fmt"
	"time"

	"socialexplore/internal/models"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// MessageRow is a chat message with activity and sender context.
type MessageRow struct {
	ID            uint
	ActivityID    uint
	ActivityTitle string
	SenderID      uint
	SenderName    string
	OccurredAt    time.Time
}

func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	return wrap("create message", r.db.WithContext(ctx).Create(m).Error)
}

func (r *MessageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var m models.Message
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, wrap(fmt.Sprintf("get message %d", id), err)
	}
	return &m, nil
}

func (r *MessageRepository) ListByActivity(ctx context.Context, activityID uint, limit, offset int) ([]models.Message, error) {
	var list []models.Message
	err := r.db.WithContext(ctx).Where("activity_id = ?", activityID).
		Order("created_at ASC, id ASC").Limit(limit).Offset(offset).
		Find(&list).Error
	return list, wrap("list messages", err)
}

// ListRecentInActivities returns messages in activityIDs created at or after
// since whose sender is not excludeUserID, newest first.
func (r *MessageRepository) ListRecentInActivities(ctx context.Context, activityIDs []uint, excludeUserID uint, since time.Time) ([]MessageRow, error) {
	if len(activityIDs) == 0 {
		return nil, nil
	}
	var rows []MessageRow
	err := r.db.WithContext(ctx).Table("messages m").
		Select("m.id, m.activity_id, a.title AS activity_title, m.sender_id, u.name AS sender_name, m.created_at AS occurred_at").
		Joins("INNER JOIN activities a ON a.id = m.activity_id").
		Joins("INNER JOIN users u ON u.id = m.sender_id").
		Where("m.activity_id IN ? AND m.sender_id <> ? AND m.created_at >= ?", activityIDs, excludeUserID, since).
		Order("m.created_at DESC, m.id DESC").
		Scan(&rows).Error
	return rows, wrap("list recent messages", err)
}

// IDsBySenderSince returns ids of messages from senderID in activityID
// created at or after since.
func (r *MessageRepository) IDsBySenderSince(ctx context.Context, activityID, senderID uint, since time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("activity_id = ? AND sender_id = ? AND created_at >= ?", activityID, senderID, since).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, wrap("list message ids by sender", err)
}
