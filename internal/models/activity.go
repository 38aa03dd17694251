package models

import (
	"time"
)

type Activity struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatorID   uint       `gorm:"not null;index" json:"creator_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Category    string     `gorm:"size:64;not null;index" json:"category"` // sport, food, games, volunteer, ...
	StartTime   time.Time  `gorm:"not null" json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	MaxPeople   *int       `json:"max_people"`
	Latitude    float64    `gorm:"not null;index:idx_activities_lat_lng,priority:1" json:"latitude"`
	Longitude   float64    `gorm:"not null;index:idx_activities_lat_lng,priority:2" json:"longitude"`
	IsPublic    bool       `gorm:"not null;index" json:"is_public"`
	CreatedAt   time.Time  `json:"created_at"`

	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (Activity) TableName() string {
	return "activities"
}

type Participation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActivityID uint      `gorm:"not null;index;index:idx_participation_activity_user,unique" json:"activity_id"`
	UserID     uint      `gorm:"not null;index;index:idx_participation_activity_user,unique" json:"user_id"`
	Status     string    `gorm:"size:20;not null;index" json:"status"` // pending | accepted | rejected
	JoinedAt   time.Time `gorm:"autoCreateTime" json:"joined_at"`

	Activity Activity `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"-"`
	User     User     `gorm:"foreignKey:UserID" json:"-"`
}

func (Participation) TableName() string {
	return "participations"
}
