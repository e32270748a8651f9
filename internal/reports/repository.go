package reports

import (
	"gorm.io/gorm"

	"github.com/eventtrackpro/eventtrack-backend/internal/event"
	"github.com/eventtrackpro/eventtrack-backend/internal/registration"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 📋 Registrations For Export
func (r *Repository) GetRegistrations(filter ReportFilter) ([]registration.Registration, error) {
	var regs []registration.Registration

	query := r.DB.Model(&registration.Registration{})
	if filter.EventID != nil {
		query = query.Where("event_id = ?", *filter.EventID)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}

	err := query.Order("created_at ASC").Find(&regs).Error
	return regs, err
}

// ===========================
// 🗓 Events Referenced By Registrations
func (r *Repository) GetEventsByIDs(ids []uint) (map[uint]event.Event, error) {
	events := make(map[uint]event.Event)
	if len(ids) == 0 {
		return events, nil
	}

	var rows []event.Event
	if err := r.DB.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, e := range rows {
		events[e.ID] = e
	}
	return events, nil
}

// ===========================
// 📊 Event Summary Rows
func (r *Repository) GetEventRows(filter ReportFilter) ([]EventReportRow, error) {
	var events []event.Event

	query := r.DB.Model(&event.Event{})
	if filter.EventID != nil {
		query = query.Where("id = ?", *filter.EventID)
	}
	if filter.FromDate != nil {
		query = query.Where("event_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("event_date <= ?", *filter.ToDate)
	}
	if err := query.Order("event_date ASC").Find(&events).Error; err != nil {
		return nil, err
	}

	rows := make([]EventReportRow, 0, len(events))
	for _, e := range events {
		var confirmed, pending, attended int64
		r.DB.Table("registrations").Where("event_id = ? AND status = ?", e.ID, registration.StatusConfirmed).Count(&confirmed)
		r.DB.Table("registrations").Where("event_id = ? AND status = ?", e.ID, registration.StatusPending).Count(&pending)
		r.DB.Table("registrations").Where("event_id = ? AND attended = TRUE", e.ID).Count(&attended)

		remaining := e.Capacity - int(confirmed)
		if remaining < 0 {
			remaining = 0
		}

		rows = append(rows, EventReportRow{
			ID:        e.ID,
			Title:     e.Title,
			EventDate: e.EventDate,
			Location:  e.Location,
			Capacity:  e.Capacity,
			Confirmed: int(confirmed),
			Pending:   int(pending),
			Attended:  int(attended),
			Remaining: remaining,
		})
	}

	return rows, nil
}
