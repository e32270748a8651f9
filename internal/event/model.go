package event

import (
	"time"

	"github.com/eventtrackpro/eventtrack-backend/internal/webhook"
)

// ============================
// 🔷 GORM Event Model
type Event struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	EventDate   time.Time  `gorm:"not null;index" json:"event_date"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Location    string     `gorm:"type:text" json:"location"`
	Capacity    int        `gorm:"not null" json:"capacity"`
	FormID      *uint      `gorm:"index" json:"form_id,omitempty"`
	CreatedBy   uint       `json:"created_by"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	RegistrationCount int `gorm:"-" json:"registration_count"`
}

// TableName overrides table name for Event
func (Event) TableName() string {
	return "events"
}

// Meta flattens the event into the payload metadata shape used for
// outbound webhook deliveries.
func (e *Event) Meta() webhook.EventMeta {
	return webhook.EventMeta{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.EventDate.Format("2006-01-02"),
		StartTime:   formatClock(e.StartTime),
		EndTime:     formatClock(e.EndTime),
		Location:    e.Location,
		Capacity:    e.Capacity,
	}
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

// RemainingSpots is capacity minus confirmed registrations, floored at 0
func (e *Event) RemainingSpots() int {
	remaining := e.Capacity - e.RegistrationCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ============================
// 🟡 Create Event Request
type CreateEventRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	EventDate   string `json:"event_date" binding:"required"` // 🛠 string format: "2006-01-02"
	StartTime   string `json:"start_time,omitempty"`          // 🛠 string format: "15:04"
	EndTime     string `json:"end_time,omitempty"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity" binding:"required"`
	FormID      *uint  `json:"form_id,omitempty"`
}

// ============================
// 🟠 Update Event Request
type UpdateEventRequest struct {
	ID          uint   `json:"-"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	EventDate   string `json:"event_date" binding:"required"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity" binding:"required"`
	FormID      *uint  `json:"form_id,omitempty"`
}

// EventStats summarizes registrations for the admin dashboard
type EventStats struct {
	EventID        uint `json:"event_id"`
	Capacity       int  `json:"capacity"`
	Confirmed      int  `json:"confirmed"`
	Pending        int  `json:"pending"`
	Attended       int  `json:"attended"`
	RemainingSpots int  `json:"remaining_spots"`
}
