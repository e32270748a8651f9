package registration

import (
	"time"

	"gorm.io/datatypes"
)

// Registration status values
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending" // waitlisted
)

// Webhook delivery status values. The flag is monotonic: once a
// dispatch reports at-least-one success it moves to sent and never
// resets on a later failure.
const (
	WebhookStatusNotSent = "not_sent"
	WebhookStatusSent    = "sent"
)

// ============================
// 🔷 GORM Registration Model
type Registration struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	EventID         uint              `gorm:"not null;index" json:"event_id"`
	FormData        datatypes.JSONMap `gorm:"type:jsonb;not null" json:"form_data"`
	Status          string            `gorm:"size:20;not null;default:'confirmed';index" json:"status"`
	WebhookStatus   string            `gorm:"size:20;not null;default:'not_sent'" json:"webhook_status"`
	Attended        bool              `gorm:"default:false;index" json:"attended"`
	AttendanceNotes string            `gorm:"type:text" json:"attendance_notes"`
	CreatedAt       time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName overrides table name for Registration
func (Registration) TableName() string {
	return "registrations"
}

// ============================
// 🟡 Request DTOs
type PublicCreateRequest struct {
	EventID  uint                   `json:"event_id" binding:"required"`
	FormData map[string]interface{} `json:"form_data" binding:"required"`
}

type AttendanceRequest struct {
	Attended *bool  `json:"attended" binding:"required"`
	Notes    string `json:"notes"`
}

type ListFilter struct {
	EventID  *uint
	Status   string
	Attended *bool
	Search   string
	Page     int
	Limit    int
}
