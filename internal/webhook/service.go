package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/eventtrackpro/eventtrack-backend/internal/auditlog"
	"github.com/eventtrackpro/eventtrack-backend/middleware"
)

var ErrWebhookNotFound = errors.New("webhook not found")

// TriggerResult is the aggregate outcome of one fan-out.
// AnySuccess is true iff at least one delivery succeeded; a fan-out
// with zero subscribers is not an error.
type TriggerResult struct {
	EventType  string           `json:"event_type"`
	Triggered  int              `json:"triggered"`
	AnySuccess bool             `json:"any_success"`
	Message    string           `json:"message"`
	Results    []DeliveryResult `json:"results"`
}

// Registry is the persistence surface the service drives; satisfied by
// *Repository and faked in tests.
type Registry interface {
	CreateWebhook(w *Webhook) error
	GetWebhookByID(id uint) (*Webhook, error)
	ListWebhooks() ([]Webhook, error)
	UpdateWebhook(w *Webhook) error
	DeleteWebhook(id uint) error
	FindActiveSubscribers(eventType string) ([]Webhook, error)
	RecordDelivery(d *WebhookDelivery) error
	ListDeliveries(webhookID uint, limit int) ([]WebhookDelivery, error)
}

// Service wraps the webhook registry and dispatch pipeline
type Service struct {
	Repo       Registry
	Dispatcher *Dispatcher
	AuditSvc   auditlog.Service
}

func NewService(repo Registry, dispatcher *Dispatcher, auditSvc auditlog.Service) *Service {
	return &Service{
		Repo:       repo,
		Dispatcher: dispatcher,
		AuditSvc:   auditSvc,
	}
}

// ===========================
// 🔔 Registry CRUD
func (s *Service) CreateWebhook(req *CreateWebhookRequest, accessContext middleware.AccessContext, ip string) (*Webhook, error) {
	if !accessContext.CanWrite() {
		return nil, errors.New("write access denied")
	}

	if err := validateEventTypes(req.Events); err != nil {
		return nil, err
	}

	eventsJSON, err := json.Marshal(req.Events)
	if err != nil {
		return nil, fmt.Errorf("failed to encode events: %w", err)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	wh := &Webhook{
		Name:   req.Name,
		URL:    req.URL,
		Secret: req.Secret,
		Events: eventsJSON,
		Active: active,
	}

	if err := s.Repo.CreateWebhook(wh); err != nil {
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "webhook", &wh.ID, "WEBHOOK_CREATED",
		map[string]interface{}{"name": wh.Name, "url": wh.URL, "events": req.Events}, ip, "success")

	return wh, nil
}

func (s *Service) ListWebhooks() ([]Webhook, error) {
	return s.Repo.ListWebhooks()
}

func (s *Service) GetWebhook(id uint) (*Webhook, error) {
	wh, err := s.Repo.GetWebhookByID(id)
	if err != nil {
		return nil, ErrWebhookNotFound
	}
	return wh, nil
}

// UpdateWebhook applies a partial update: only supplied fields change
func (s *Service) UpdateWebhook(id uint, req *UpdateWebhookRequest, accessContext middleware.AccessContext, ip string) (*Webhook, error) {
	if !accessContext.CanWrite() {
		return nil, errors.New("write access denied")
	}

	wh, err := s.Repo.GetWebhookByID(id)
	if err != nil {
		return nil, ErrWebhookNotFound
	}

	if req.Name != nil {
		wh.Name = *req.Name
	}
	if req.URL != nil {
		wh.URL = *req.URL
	}
	if req.Secret != nil {
		wh.Secret = *req.Secret
	}
	if req.Events != nil {
		if err := validateEventTypes(*req.Events); err != nil {
			return nil, err
		}
		eventsJSON, err := json.Marshal(*req.Events)
		if err != nil {
			return nil, fmt.Errorf("failed to encode events: %w", err)
		}
		wh.Events = eventsJSON
	}
	if req.Active != nil {
		wh.Active = *req.Active
	}

	if err := s.Repo.UpdateWebhook(wh); err != nil {
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "webhook", &wh.ID, "WEBHOOK_UPDATED",
		map[string]interface{}{"name": wh.Name, "events": wh.EventList()}, ip, "success")

	return wh, nil
}

func (s *Service) DeleteWebhook(id uint, accessContext middleware.AccessContext, ip string) error {
	if !accessContext.CanWrite() {
		return errors.New("write access denied")
	}

	if _, err := s.Repo.GetWebhookByID(id); err != nil {
		return ErrWebhookNotFound
	}

	if err := s.Repo.DeleteWebhook(id); err != nil {
		return err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "webhook", &id, "WEBHOOK_DELETED",
		nil, ip, "success")
	return nil
}

func (s *Service) ListDeliveries(webhookID uint, limit int) ([]WebhookDelivery, error) {
	if _, err := s.Repo.GetWebhookByID(webhookID); err != nil {
		return nil, ErrWebhookNotFound
	}
	return s.Repo.ListDeliveries(webhookID, limit)
}

func validateEventTypes(events []string) error {
	if len(events) == 0 {
		return errors.New("at least one event type is required")
	}
	for _, e := range events {
		if !IsSupportedEventType(e) {
			return fmt.Errorf("unsupported event type: %s", e)
		}
	}
	return nil
}

// ===========================
// 🚀 Trigger (registry-driven fan-out)
//
// Trigger resolves active subscribers for eventType and delivers the
// payload to each concurrently. Individual failures are logged and
// dropped; there is no retry or durable queue.
func (s *Service) Trigger(ctx context.Context, eventType string, payload map[string]interface{}) (*TriggerResult, error) {
	if !IsSupportedEventType(eventType) {
		return nil, fmt.Errorf("unsupported event type: %s", eventType)
	}

	subscribers, err := s.Repo.FindActiveSubscribers(eventType)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve subscribers: %w", err)
	}

	if len(subscribers) == 0 {
		return &TriggerResult{
			EventType: eventType,
			Message:   "No webhooks triggered",
			Results:   []DeliveryResult{},
		}, nil
	}

	results := s.Dispatcher.FanOut(ctx, subscribers, payload)

	anySuccess := false
	for _, r := range results {
		if r.Success {
			anySuccess = true
		} else {
			log.Printf("⚠️ Webhook delivery failed: webhook=%d (%s) event=%s err=%s", r.WebhookID, r.WebhookName, eventType, r.Error)
		}
		s.recordDelivery(eventType, r)
	}

	message := fmt.Sprintf("Triggered %d webhook(s)", len(results))
	return &TriggerResult{
		EventType:  eventType,
		Triggered:  len(results),
		AnySuccess: anySuccess,
		Message:    message,
		Results:    results,
	}, nil
}

// recordDelivery persists one delivery log row, best-effort
func (s *Service) recordDelivery(eventType string, r DeliveryResult) {
	entry := &WebhookDelivery{
		WebhookID:  r.WebhookID,
		EventType:  eventType,
		StatusCode: r.StatusCode,
		Success:    r.Success,
		Error:      r.Error,
		DurationMs: r.DurationMs,
	}
	if err := s.Repo.RecordDelivery(entry); err != nil {
		log.Printf("⚠️ Failed to record webhook delivery: %v", err)
	}
}

// ===========================
// 🧪 Manual Test
//
// TestWebhook delivers a payload to one named webhook only and returns
// the raw status and truncated response body for diagnostics.
func (s *Service) TestWebhook(ctx context.Context, req *TestRequest) (*TestResult, error) {
	if !IsSupportedEventType(req.EventType) {
		return nil, fmt.Errorf("unsupported event type: %s", req.EventType)
	}

	wh, err := s.Repo.GetWebhookByID(req.WebhookID)
	if err != nil {
		return nil, ErrWebhookNotFound
	}

	payload := req.Data
	if payload == nil {
		payload = map[string]interface{}{
			"test":       true,
			"event_type": req.EventType,
			"webhook":    wh.Name,
		}
	}

	result := s.Dispatcher.TestDeliver(ctx, wh, payload)
	s.recordDelivery(req.EventType, DeliveryResult{
		WebhookID:   wh.ID,
		WebhookName: wh.Name,
		URL:         wh.URL,
		StatusCode:  result.StatusCode,
		Success:     result.Success,
		Error:       result.Error,
	})

	return &result, nil
}
