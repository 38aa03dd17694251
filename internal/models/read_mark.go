package models

import (
	"time"

	"socialexplore/internal/domain"
)

// ReadMark records that a user acknowledged one notification. Rows are
// written once and never updated; the unique index makes repeated
// acknowledgements collapse into the first row.
type ReadMark struct {
	ID               uint                    `gorm:"primaryKey" json:"id"`
	UserID           uint                    `gorm:"not null;uniqueIndex:idx_read_marks_user_kind_notification,priority:1" json:"user_id"`
	NotificationKind domain.NotificationKind `gorm:"size:40;not null;uniqueIndex:idx_read_marks_user_kind_notification,priority:2" json:"notification_kind"`
	NotificationID   uint                    `gorm:"not null;uniqueIndex:idx_read_marks_user_kind_notification,priority:3" json:"notification_id"`
	ActivityID       *uint                   `gorm:"index" json:"activity_id"`
	FriendRequestID  *uint                   `gorm:"index" json:"friend_request_id"`
	ReadAt           time.Time               `gorm:"not null" json:"read_at"`

	User          User           `gorm:"foreignKey:UserID" json:"-"`
	Activity      *Activity      `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"-"`
	FriendRequest *FriendRequest `gorm:"foreignKey:FriendRequestID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ReadMark) TableName() string {
	return "read_marks"
}
