package webhook

import (
	"encoding/json"

	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🔔 Create Webhook
func (r *Repository) CreateWebhook(w *Webhook) error {
	return r.DB.Create(w).Error
}

// ===========================
// 🔍 Get Webhook By ID
func (r *Repository) GetWebhookByID(id uint) (*Webhook, error) {
	var w Webhook
	if err := r.DB.First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// ===========================
// 📄 List Webhooks
func (r *Repository) ListWebhooks() ([]Webhook, error) {
	var webhooks []Webhook
	err := r.DB.Order("created_at DESC").Find(&webhooks).Error
	return webhooks, err
}

// ===========================
// ✏️ Update Webhook
func (r *Repository) UpdateWebhook(w *Webhook) error {
	return r.DB.Save(w).Error
}

// ===========================
// 🗑 Delete Webhook
func (r *Repository) DeleteWebhook(id uint) error {
	return r.DB.Delete(&Webhook{}, id).Error
}

// ===========================
// 🎯 Find Active Subscribers
//
// Returns only webhooks where active = true and eventType is present in
// the subscribed-events set, using jsonb containment on the events column.
func (r *Repository) FindActiveSubscribers(eventType string) ([]Webhook, error) {
	member, err := json.Marshal([]string{eventType})
	if err != nil {
		return nil, err
	}

	var webhooks []Webhook
	err = r.DB.
		Where("active = ? AND events @> ?", true, string(member)).
		Find(&webhooks).Error
	return webhooks, err
}

// ===========================
// 🧾 Delivery Log
func (r *Repository) RecordDelivery(d *WebhookDelivery) error {
	return r.DB.Create(d).Error
}

func (r *Repository) ListDeliveries(webhookID uint, limit int) ([]WebhookDelivery, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var deliveries []WebhookDelivery
	err := r.DB.
		Where("webhook_id = ?", webhookID).
		Order("created_at DESC").
		Limit(limit).
		Find(&deliveries).Error
	return deliveries, err
}
