package webhook

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Event types a subscription can listen to
const (
	EventRegistrationCreated = "registration.created"
	EventEventCreated        = "event.created"
	EventEventUpdated        = "event.updated"
	EventAttendanceUpdated   = "attendance.updated"
)

// SupportedEventTypes is the fixed enumeration of trigger categories
var SupportedEventTypes = []string{
	EventRegistrationCreated,
	EventEventCreated,
	EventEventUpdated,
	EventAttendanceUpdated,
}

// IsSupportedEventType reports whether t is a known trigger category
func IsSupportedEventType(t string) bool {
	for _, s := range SupportedEventTypes {
		if s == t {
			return true
		}
	}
	return false
}

// ============================
// 🔷 GORM Webhook Model
type Webhook struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	URL       string         `gorm:"type:text;not null" json:"url"`
	Secret    string         `gorm:"type:varchar(255)" json:"-"`
	Events    datatypes.JSON `gorm:"type:jsonb;not null" json:"events"`
	Active    bool           `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName overrides table name for Webhook
func (Webhook) TableName() string {
	return "webhooks"
}

// EventList decodes the subscribed event types
func (w *Webhook) EventList() []string {
	var events []string
	if len(w.Events) == 0 {
		return events
	}
	_ = json.Unmarshal(w.Events, &events)
	return events
}

// HasSecret reports whether deliveries to this webhook are signed
func (w *Webhook) HasSecret() bool {
	return w.Secret != ""
}

// WebhookDelivery is one delivery attempt, kept for diagnostics.
// There are no retries; each row is a single POST.
type WebhookDelivery struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	WebhookID  uint      `gorm:"not null;index" json:"webhook_id"`
	EventType  string    `gorm:"type:varchar(50);not null;index" json:"event_type"`
	StatusCode int       `json:"status_code"`
	Success    bool      `gorm:"index" json:"success"`
	Error      string    `gorm:"type:text" json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName overrides table name for WebhookDelivery
func (WebhookDelivery) TableName() string {
	return "webhook_deliveries"
}

// ============================
// 🟡 Request DTOs
type CreateWebhookRequest struct {
	Name   string   `json:"name" binding:"required"`
	URL    string   `json:"url" binding:"required,url"`
	Secret string   `json:"secret"`
	Events []string `json:"events" binding:"required,min=1"`
	Active *bool    `json:"active"`
}

// UpdateWebhookRequest is a partial update: only supplied fields change
type UpdateWebhookRequest struct {
	Name   *string   `json:"name"`
	URL    *string   `json:"url"`
	Secret *string   `json:"secret"`
	Events *[]string `json:"events"`
	Active *bool     `json:"active"`
}

type TriggerRequest struct {
	EventType string                 `json:"eventType" binding:"required"`
	EventID   *uint                  `json:"eventId"`
	Data      map[string]interface{} `json:"data"`
}

type TestRequest struct {
	WebhookID uint                   `json:"webhookId" binding:"required"`
	EventType string                 `json:"eventType" binding:"required"`
	Data      map[string]interface{} `json:"data"`
}

type TestEventRequest struct {
	EventID uint `json:"eventId" binding:"required"`
}
