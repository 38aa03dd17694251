package models

import "time"

type FriendRequest struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	FromUserID uint       `gorm:"not null;index" json:"from_user_id"`
	ToUserID   uint       `gorm:"not null;index" json:"to_user_id"`
	Status     string     `gorm:"size:20;not null;index" json:"status"` // pending | accepted | rejected
	AcceptedAt *time.Time `gorm:"index" json:"accepted_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	FromUser User `gorm:"foreignKey:FromUserID" json:"-"`
	ToUser   User `gorm:"foreignKey:ToUserID" json:"-"`
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}

// Other returns the user on the far side of the request from userID.
func (r *FriendRequest) Other(userID uint) uint {
	if r.FromUserID == userID {
		return r.ToUserID
	}
	return r.FromUserID
}
