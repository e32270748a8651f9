package notification

import (
	"time"
)

// NotificationLog records each outbound email attempt
type NotificationLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RegistrationID *uint     `gorm:"index" json:"registration_id,omitempty"`
	Recipient      string    `gorm:"type:varchar(255);not null" json:"recipient"`
	Subject        string    `gorm:"type:varchar(255)" json:"subject"`
	Status         string    `gorm:"size:20;not null;index" json:"status"` // sent/failed
	Error          string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName overrides table name for NotificationLog
func (NotificationLog) TableName() string {
	return "notification_logs"
}
