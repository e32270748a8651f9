package registration

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEventFull is returned when a confirmed registration would exceed
// the event's capacity and the form has no waitlist enabled.
var ErrEventFull = errors.New("event is at full capacity")

type Repository interface {
	CreateWithCapacityCheck(reg *Registration, allowWaitlist bool) error
	GetByID(id uint) (*Registration, error)
	List(filter ListFilter) ([]Registration, int64, error)
	UpdateAttendance(id uint, attended bool, notes string) error
	MarkWebhookSent(id uint) error
	Delete(id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ===========================
// 🎟 Create With Capacity Check
//
// The event row is locked for the duration of the transaction so
// concurrent submissions cannot both pass the capacity check. When the
// event is full and the form allows a waitlist, the registration is
// admitted with status pending instead of being rejected.
func (r *repository) CreateWithCapacityCheck(reg *Registration, allowWaitlist bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var event struct {
			ID       uint
			Capacity int
		}
		if err := tx.Table("events").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id, capacity").
			Where("id = ?", reg.EventID).
			Take(&event).Error; err != nil {
			return err
		}

		var confirmed int64
		if err := tx.Model(&Registration{}).
			Where("event_id = ? AND status = ?", reg.EventID, StatusConfirmed).
			Count(&confirmed).Error; err != nil {
			return err
		}

		if int(confirmed) >= event.Capacity {
			if !allowWaitlist {
				return ErrEventFull
			}
			reg.Status = StatusPending
		}

		return tx.Create(reg).Error
	})
}

// ===========================
// 🔍 Get / List
func (r *repository) GetByID(id uint) (*Registration, error) {
	var reg Registration
	if err := r.db.First(&reg, id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *repository) List(filter ListFilter) ([]Registration, int64, error) {
	var regs []Registration
	var total int64

	query := r.db.Model(&Registration{})
	if filter.EventID != nil {
		query = query.Where("event_id = ?", *filter.EventID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Attended != nil {
		query = query.Where("attended = ?", *filter.Attended)
	}
	if filter.Search != "" {
		// Search across all submitted values in the jsonb map
		query = query.Where("form_data::text ILIKE ?", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&regs).Error
	return regs, total, err
}

// ===========================
// ✅ Attendance
func (r *repository) UpdateAttendance(id uint, attended bool, notes string) error {
	return r.db.Model(&Registration{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attended":         attended,
			"attendance_notes": notes,
		}).Error
}

// ===========================
// 📡 Webhook Status Tracker
func (r *repository) MarkWebhookSent(id uint) error {
	return r.db.Model(&Registration{}).
		Where("id = ?", id).
		Update("webhook_status", WebhookStatusSent).Error
}

// ===========================
// 🗑 Delete
func (r *repository) Delete(id uint) error {
	return r.db.Delete(&Registration{}, id).Error
}
