package models

import "time"

type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActivityID uint      `gorm:"not null;index:idx_messages_activity_sender_created,priority:1" json:"activity_id"`
	SenderID   uint      `gorm:"not null;index:idx_messages_activity_sender_created,priority:2" json:"sender_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `gorm:"index;index:idx_messages_activity_sender_created,priority:3" json:"created_at"`

	Activity Activity `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"-"`
	Sender   User     `gorm:"foreignKey:SenderID" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}
