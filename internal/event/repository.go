package event

import (
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🎯 Create Event
func (r *Repository) CreateEvent(e *Event) error {
	return r.DB.Create(e).Error
}

// ===========================
// 🔍 Get Event By ID with registration count
func (r *Repository) GetEventByID(id uint) (*Event, error) {
	var e Event
	if err := r.DB.First(&e, id).Error; err != nil {
		return nil, err
	}

	var count int64
	if err := r.DB.Table("registrations").
		Where("event_id = ? AND status = ?", id, "confirmed").
		Count(&count).Error; err != nil {
		return nil, err
	}

	e.RegistrationCount = int(count)
	return &e, nil
}

// ===========================
// 📄 List Events With Pagination & Search
func (r *Repository) ListEvents(limit, offset int, search string) ([]Event, int64, error) {
	var events []Event
	var total int64

	query := r.DB.Model(&Event{})
	if search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("event_date DESC").Limit(limit).Offset(offset).Find(&events).Error; err != nil {
		return nil, 0, err
	}

	// Attach confirmed registration counts
	for i := range events {
		var count int64
		r.DB.Table("registrations").
			Where("event_id = ? AND status = ?", events[i].ID, "confirmed").
			Count(&count)
		events[i].RegistrationCount = int(count)
	}

	return events, total, nil
}

// ===========================
// 📆 Get Upcoming Events
func (r *Repository) GetUpcomingEvents() ([]Event, error) {
	var events []Event
	err := r.DB.
		Where("event_date >= CURRENT_DATE").
		Order("event_date ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	for i := range events {
		var count int64
		r.DB.Table("registrations").
			Where("event_id = ? AND status = ?", events[i].ID, "confirmed").
			Count(&count)
		events[i].RegistrationCount = int(count)
	}

	return events, nil
}

// ===========================
// ✏️ Update Event
func (r *Repository) UpdateEvent(e *Event) error {
	return r.DB.Save(e).Error
}

// ===========================
// 🗑 Delete Event (hard delete)
func (r *Repository) DeleteEvent(id uint) error {
	return r.DB.Delete(&Event{}, id).Error
}

// ===========================
// 📊 Event Stats
func (r *Repository) GetEventStats(id uint) (*EventStats, error) {
	var e Event
	if err := r.DB.First(&e, id).Error; err != nil {
		return nil, err
	}

	stats := &EventStats{EventID: id, Capacity: e.Capacity}

	var confirmed, pending, attended int64
	if err := r.DB.Table("registrations").
		Where("event_id = ? AND status = ?", id, "confirmed").
		Count(&confirmed).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Table("registrations").
		Where("event_id = ? AND status = ?", id, "pending").
		Count(&pending).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Table("registrations").
		Where("event_id = ? AND attended = TRUE", id).
		Count(&attended).Error; err != nil {
		return nil, err
	}

	stats.Confirmed = int(confirmed)
	stats.Pending = int(pending)
	stats.Attended = int(attended)
	stats.RemainingSpots = e.Capacity - int(confirmed)
	if stats.RemainingSpots < 0 {
		stats.RemainingSpots = 0
	}

	return stats, nil
}
