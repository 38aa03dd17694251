package repository

import (
	"context"
	"fmt"
	"time"

	"socialexplore/internal/domain"
	"socialexplore/internal/models"

	"gorm.io/gorm"
)

type FriendRequestRepository struct {
	db *gorm.DB
}

func NewFriendRequestRepository(db *gorm.DB) *FriendRequestRepository {
	return &FriendRequestRepository{db: db}
}

// FriendRequestRow is a friend request seen from one side, with the other
// user's identity.
type FriendRequestRow struct {
	ID         uint
	UserID     uint
	UserName   string
	OccurredAt time.Time
}

func (r *FriendRequestRepository) Create(ctx context.Context, fr *models.FriendRequest) error {
	return wrap("create friend request", r.db.WithContext(ctx).Create(fr).Error)
}

func (r *FriendRequestRepository) GetByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	if err := r.db.WithContext(ctx).First(&fr, id).Error; err != nil {
		return nil, wrap(fmt.Sprintf("get friend request %d", id), err)
	}
	return &fr, nil
}

// FindBetween returns any request between a and b in either direction.
func (r *FriendRequestRepository) FindBetween(ctx context.Context, a, b uint) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
		First(&fr).Error
	if err != nil {
		return nil, wrap("find friend request between users", err)
	}
	return &fr, nil
}

// Respond sets the status of a request; accepting stamps accepted_at.
func (r *FriendRequestRepository) Respond(ctx context.Context, fr *models.FriendRequest, status string, now time.Time) error {
	fr.Status = status
	if status == domain.StatusAccepted {
		fr.AcceptedAt = &now
	}
	return wrap("update friend request", r.db.WithContext(ctx).Save(fr).Error)
}

func (r *FriendRequestRepository) listWithUser(ctx context.Context, joinOn, timeCol string, where string, args ...any) ([]FriendRequestRow, error) {
	var rows []FriendRequestRow
	err := r.db.WithContext(ctx).Table("friend_requests fr").
		Select(fmt.Sprintf("fr.id, u.id AS user_id, u.name AS user_name, %s AS occurred_at", timeCol)).
		Joins(fmt.Sprintf("INNER JOIN users u ON u.id = %s", joinOn)).
		Where(where, args...).
		Order(fmt.Sprintf("%s DESC, fr.id DESC", timeCol)).
		Scan(&rows).Error
	return rows, err
}

// ListPendingIncoming returns pending requests addressed to userID, with the sender.
func (r *FriendRequestRepository) ListPendingIncoming(ctx context.Context, userID uint) ([]FriendRequestRow, error) {
	rows, err := r.listWithUser(ctx, "fr.from_user_id", "fr.created_at",
		"fr.to_user_id = ? AND fr.status = ?", userID, domain.StatusPending)
	return rows, wrap("list incoming friend requests", err)
}

// ListPendingOutgoing returns pending requests sent by userID, with the recipient.
func (r *FriendRequestRepository) ListPendingOutgoing(ctx context.Context, userID uint) ([]FriendRequestRow, error) {
	rows, err := r.listWithUser(ctx, "fr.to_user_id", "fr.created_at",
		"fr.from_user_id = ? AND fr.status = ?", userID, domain.StatusPending)
	return rows, wrap("list outgoing friend requests", err)
}

// ListAcceptedOutgoingSince returns requests sent by userID that were
// accepted at or after since, with the recipient.
func (r *FriendRequestRepository) ListAcceptedOutgoingSince(ctx context.Context, userID uint, since time.Time) ([]FriendRequestRow, error) {
	rows, err := r.listWithUser(ctx, "fr.to_user_id", "fr.accepted_at",
		"fr.from_user_id = ? AND fr.status = ? AND fr.accepted_at >= ?", userID, domain.StatusAccepted, since)
	return rows, wrap("list accepted friend requests", err)
}

// FriendIDs returns the ids of users with an accepted request to or from userID.
func (r *FriendRequestRepository) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var list []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("(from_user_id = ? OR to_user_id = ?) AND status = ?", userID, userID, domain.StatusAccepted).
		Find(&list).Error
	if err != nil {
		return nil, wrap("list friends", err)
	}
	ids := make([]uint, 0, len(list))
	for i := range list {
		ids = append(ids, list[i].Other(userID))
	}
	return ids, nil
}

// DeleteFriendship removes the accepted request between a and b together
// with every read mark that references it.
func (r *FriendRequestRepository) DeleteFriendship(ctx context.Context, a, b uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fr models.FriendRequest
		err := tx.Where("((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)) AND status = ?",
			a, b, b, a, domain.StatusAccepted).First(&fr).Error
		if err != nil {
			return wrap("find friendship", err)
		}
		return deleteFriendRequest(tx, fr.ID)
	})
}

// Delete removes a friend request and its read marks.
func (r *FriendRequestRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteFriendRequest(tx, id)
	})
}

// deleteFriendRequest purges read marks explicitly as well as through the
// foreign key, so drivers running without FK enforcement behave the same.
func deleteFriendRequest(tx *gorm.DB, id uint) error {
	if err := tx.Where("friend_request_id = ?", id).Delete(&models.ReadMark{}).Error; err != nil {
		return wrap("purge read marks", err)
	}
	res := tx.Delete(&models.FriendRequest{}, id)
	if res.Error != nil {
		return wrap("delete friend request", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete friend request %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
