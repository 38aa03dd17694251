package models

import "time"

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Name         string   `gorm:"size:128;not null" json:"name"`
	Email        string   `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	Bio          string   `gorm:"type:text" json:"bio"`
	Interests    []string `gorm:"serializer:json;type:text" json:"interests"`
	// Home location is optional; users without one never show up in nearby search.
	HomeLatitude  *float64  `gorm:"index:idx_users_home,priority:1" json:"home_latitude"`
	HomeLongitude *float64  `gorm:"index:idx_users_home,priority:2" json:"home_longitude"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
