package event

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/eventtrackpro/eventtrack-backend/internal/auditlog"
	"github.com/eventtrackpro/eventtrack-backend/internal/form"
	"github.com/eventtrackpro/eventtrack-backend/internal/webhook"
	"github.com/eventtrackpro/eventtrack-backend/middleware"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
)

// Service wraps business logic for events
type Service struct {
	Repo       *Repository
	FormRepo   *form.Repository
	WebhookSvc *webhook.Service
	AuditSvc   auditlog.Service
}

func NewService(r *Repository, formRepo *form.Repository, webhookSvc *webhook.Service, auditSvc auditlog.Service) *Service {
	return &Service{
		Repo:       r,
		FormRepo:   formRepo,
		WebhookSvc: webhookSvc,
		AuditSvc:   auditSvc,
	}
}

// ===========================
// 🎯 Create Event
func (s *Service) CreateEvent(req *CreateEventRequest, accessContext middleware.AccessContext, ip string) (*Event, error) {
	if !accessContext.CanWrite() {
		return nil, errors.New("write access denied")
	}

	if req.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, errors.New("invalid event_date format. Use YYYY-MM-DD")
	}

	startTime, err := parseClock(req.StartTime)
	if err != nil {
		return nil, errors.New("invalid start_time format. Use HH:MM in 24-hour format")
	}
	endTime, err := parseClock(req.EndTime)
	if err != nil {
		return nil, errors.New("invalid end_time format. Use HH:MM in 24-hour format")
	}

	if req.FormID != nil {
		if _, err := s.FormRepo.GetFormByID(*req.FormID); err != nil {
			return nil, fmt.Errorf("linked form %d not found", *req.FormID)
		}
	}

	e := &Event{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   eventDate,
		StartTime:   startTime,
		EndTime:     endTime,
		Location:    req.Location,
		Capacity:    req.Capacity,
		FormID:      req.FormID,
		CreatedBy:   accessContext.UserID,
	}

	if err := s.Repo.CreateEvent(e); err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "event", nil, "EVENT_CREATED",
			map[string]interface{}{"title": req.Title, "error": err.Error()}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "event", &e.ID, "EVENT_CREATED",
		map[string]interface{}{"title": e.Title, "capacity": e.Capacity}, ip, "success")

	// Best-effort fan-out; a delivery failure never fails the create
	s.dispatch(webhook.EventEventCreated, e)

	return e, nil
}

func parseClock(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return nil, err
	}
	normalized := time.Date(0, 1, 1, parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
	return &normalized, nil
}

// ===========================
// 🔍 Get / List
func (s *Service) GetEvent(id uint) (*Event, error) {
	e, err := s.Repo.GetEventByID(id)
	if err != nil {
		return nil, ErrEventNotFound
	}
	return e, nil
}

func (s *Service) ListEvents(page, limit int, search string) ([]Event, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	return s.Repo.ListEvents(limit, (page-1)*limit, search)
}

func (s *Service) GetUpcomingEvents() ([]Event, error) {
	return s.Repo.GetUpcomingEvents()
}

func (s *Service) GetEventStats(id uint) (*EventStats, error) {
	stats, err := s.Repo.GetEventStats(id)
	if err != nil {
		return nil, ErrEventNotFound
	}
	return stats, nil
}

// ===========================
// ✏️ Update Event
func (s *Service) UpdateEvent(req *UpdateEventRequest, accessContext middleware.AccessContext, ip string) (*Event, error) {
	if !accessContext.CanWrite() {
		return nil, errors.New("write access denied")
	}

	e, err := s.Repo.GetEventByID(req.ID)
	if err != nil {
		return nil, ErrEventNotFound
	}

	if req.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, errors.New("invalid event_date format. Use YYYY-MM-DD")
	}
	startTime, err := parseClock(req.StartTime)
	if err != nil {
		return nil, errors.New("invalid start_time format. Use HH:MM in 24-hour format")
	}
	endTime, err := parseClock(req.EndTime)
	if err != nil {
		return nil, errors.New("invalid end_time format. Use HH:MM in 24-hour format")
	}

	if req.FormID != nil {
		if _, err := s.FormRepo.GetFormByID(*req.FormID); err != nil {
			return nil, fmt.Errorf("linked form %d not found", *req.FormID)
		}
	}

	e.Title = req.Title
	e.Description = req.Description
	e.EventDate = eventDate
	e.StartTime = startTime
	e.EndTime = endTime
	e.Location = req.Location
	e.Capacity = req.Capacity
	e.FormID = req.FormID

	if err := s.Repo.UpdateEvent(e); err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "event", &e.ID, "EVENT_UPDATED",
			map[string]interface{}{"title": e.Title, "error": err.Error()}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "event", &e.ID, "EVENT_UPDATED",
		map[string]interface{}{"title": e.Title}, ip, "success")

	s.dispatch(webhook.EventEventUpdated, e)

	return e, nil
}

// ===========================
// 🗑 Delete Event
func (s *Service) DeleteEvent(id uint, accessContext middleware.AccessContext, ip string) error {
	if !accessContext.CanWrite() {
		return errors.New("write access denied")
	}

	if _, err := s.Repo.GetEventByID(id); err != nil {
		return ErrEventNotFound
	}

	if err := s.Repo.DeleteEvent(id); err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "event", &id, "EVENT_DELETED",
			map[string]interface{}{"error": err.Error()}, ip, "failure")
		return err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "event", &id, "EVENT_DELETED",
		nil, ip, "success")
	return nil
}

// ===========================
// 🚀 Webhook Integration

// dispatch fans the event payload out to subscribers, best-effort
func (s *Service) dispatch(eventType string, e *Event) {
	payload := webhook.BuildEventPayload(e.Meta())
	if _, err := s.WebhookSvc.Trigger(context.Background(), eventType, payload); err != nil {
		log.Printf("⚠️ Failed to trigger %s webhooks for event %d: %v", eventType, e.ID, err)
	}
}

// EventPayload builds the canonical event.created payload for a stored
// event. Satisfies the webhook handler's payload source.
func (s *Service) EventPayload(eventID uint) (map[string]interface{}, error) {
	e, err := s.Repo.GetEventByID(eventID)
	if err != nil {
		return nil, ErrEventNotFound
	}
	return webhook.BuildEventPayload(e.Meta()), nil
}
