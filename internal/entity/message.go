package entity

import "time"

// MessageMaxLength is counted in characters, not bytes.
const MessageMaxLength = 140

type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:140;not null" json:"text"`
	Timestamp time.Time `gorm:"not null;autoCreateTime;index" json:"timestamp"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user"`
}

func (m *Message) TableName() string {
	return "messages"
}
