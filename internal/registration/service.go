package registration

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/datatypes"

	"github.com/eventtrackpro/eventtrack-backend/internal/auditlog"
	"github.com/eventtrackpro/eventtrack-backend/internal/event"
	"github.com/eventtrackpro/eventtrack-backend/internal/form"
	"github.com/eventtrackpro/eventtrack-backend/internal/notification"
	"github.com/eventtrackpro/eventtrack-backend/internal/webhook"
	"github.com/eventtrackpro/eventtrack-backend/middleware"
)

var ErrRegistrationNotFound = errors.New("registration not found")

// ValidationFailedError carries field-level detail for a submission
// rejected before any side effect.
type ValidationFailedError struct {
	Errors []form.ValidationError
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Errors))
}

// WebhookTrigger fans a payload out to subscribers of an event type;
// satisfied by the webhook service.
type WebhookTrigger interface {
	Trigger(ctx context.Context, eventType string, payload map[string]interface{}) (*webhook.TriggerResult, error)
}

// EventSource and FormSource load the entities a submission references;
// satisfied by the event and form repositories.
type EventSource interface {
	GetEventByID(id uint) (*event.Event, error)
}

type FormSource interface {
	GetFormByID(id uint) (*form.Form, error)
}

// SubmissionValidator checks submitted data against the owning form's
// field list; satisfied by the form service.
type SubmissionValidator interface {
	ValidateSubmission(f *form.Form, data map[string]interface{}) []form.ValidationError
}

// ActivityPublisher streams registration activity to the optional
// Kafka topic; may be nil when streaming is disabled.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, eventType string, payload map[string]interface{})
}

// Service wraps business logic for registrations, including the
// webhook dispatch triggered by public submissions.
type Service struct {
	Repo       Repository
	Events     EventSource
	Forms      FormSource
	Validator  SubmissionValidator
	WebhookSvc WebhookTrigger
	NotifSvc   notification.Service
	AuditSvc   auditlog.Service
	Activity   ActivityPublisher
}

func NewService(repo Repository, events EventSource, forms FormSource, validator SubmissionValidator, webhookSvc WebhookTrigger, notifSvc notification.Service, auditSvc auditlog.Service, activity ActivityPublisher) *Service {
	return &Service{
		Repo:       repo,
		Events:     events,
		Forms:      forms,
		Validator:  validator,
		WebhookSvc: webhookSvc,
		NotifSvc:   notifSvc,
		AuditSvc:   auditSvc,
		Activity:   activity,
	}
}

// ===========================
// 🎟 Public Registration
//
// CreatePublic validates the submission, admits it under the event's
// capacity, then dispatches registration.created webhooks. Dispatch and
// the status-tracker update are best-effort and never fail the request
// once the registration row exists.
func (s *Service) CreatePublic(ctx context.Context, req *PublicCreateRequest, ip string) (*Registration, error) {
	ev, err := s.Events.GetEventByID(req.EventID)
	if err != nil {
		return nil, event.ErrEventNotFound
	}

	var f *form.Form
	allowWaitlist := false
	if ev.FormID != nil {
		f, err = s.Forms.GetFormByID(*ev.FormID)
		if err != nil {
			return nil, form.ErrFormNotFound
		}
		allowWaitlist = f.EnableWaitlist

		if verrs := s.Validator.ValidateSubmission(f, req.FormData); len(verrs) > 0 {
			return nil, &ValidationFailedError{Errors: verrs}
		}
	}

	reg := &Registration{
		EventID:       req.EventID,
		FormData:      datatypes.JSONMap(req.FormData),
		Status:        StatusConfirmed,
		WebhookStatus: WebhookStatusNotSent,
	}

	if err := s.Repo.CreateWithCapacityCheck(reg, allowWaitlist); err != nil {
		if errors.Is(err, ErrEventFull) {
			return nil, ErrEventFull
		}
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), nil, "registration", &reg.ID, "REGISTRATION_CREATED",
		map[string]interface{}{"event_id": reg.EventID, "status": reg.Status}, ip, "success")

	payload := s.buildPayload(reg, ev)
	s.dispatchAndTrack(ctx, reg, payload)

	if s.Activity != nil {
		s.Activity.PublishActivity(ctx, webhook.EventRegistrationCreated, payload)
	}

	s.sendConfirmation(reg, ev, f, payload)

	return reg, nil
}

// dispatchAndTrack fans out registration.created and, when at least one
// delivery succeeded, marks the registration's webhook_status as sent.
// The tracker update is a separate best-effort step; on failure the
// registration keeps a stale status until a manual re-trigger.
func (s *Service) dispatchAndTrack(ctx context.Context, reg *Registration, payload map[string]interface{}) {
	result, err := s.WebhookSvc.Trigger(ctx, webhook.EventRegistrationCreated, payload)
	if err != nil {
		log.Printf("⚠️ Webhook dispatch failed for registration %d: %v", reg.ID, err)
		return
	}
	if !result.AnySuccess {
		return
	}

	if err := s.Repo.MarkWebhookSent(reg.ID); err != nil {
		log.Printf("⚠️ Failed to mark registration %d webhook_status sent: %v", reg.ID, err)
		return
	}
	reg.WebhookStatus = WebhookStatusSent
}

// buildPayload flattens the registration for external consumers. Labels
// come from the form linked to the registration's event; a deleted
// event yields zero-value event fields.
func (s *Service) buildPayload(reg *Registration, ev *event.Event) map[string]interface{} {
	var meta webhook.EventMeta
	labels := webhook.LabelMap{}
	if ev != nil {
		meta = ev.Meta()
		if ev.FormID != nil {
			if f, err := s.Forms.GetFormByID(*ev.FormID); err == nil {
				if fields, err := f.FieldList(); err == nil {
					labels = webhook.BuildLabelMap(fields)
				}
			}
		}
	}

	return webhook.BuildRegistrationPayload(
		webhook.RegistrationMeta{
			ID:            reg.ID,
			Status:        reg.Status,
			WebhookStatus: reg.WebhookStatus,
			SubmittedAt:   reg.CreatedAt,
		},
		meta,
		map[string]interface{}(reg.FormData),
		labels,
	)
}

// sendConfirmation emails the registrant when the submission carried a
// recognizable email value. Best-effort.
func (s *Service) sendConfirmation(reg *Registration, ev *event.Event, f *form.Form, payload map[string]interface{}) {
	recipient, _ := payload["email"].(string)
	if recipient == "" {
		return
	}
	successMessage := ""
	if f != nil {
		successMessage = f.SuccessMessage
	}
	s.NotifSvc.SendRegistrationConfirmation(reg.ID, recipient, ev.Title, ev.EventDate.Format("2006-01-02"), successMessage)
}

// ===========================
// 🔍 Get / List
func (s *Service) GetRegistration(id uint) (*Registration, error) {
	reg, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, ErrRegistrationNotFound
	}
	return reg, nil
}

func (s *Service) ListRegistrations(filter ListFilter) ([]Registration, int64, error) {
	return s.Repo.List(filter)
}

// ===========================
// ✅ Attendance
//
// UpdateAttendance flips the attended flag and notes, then dispatches
// attendance.updated with the full registration payload plus the new
// attendance fields.
func (s *Service) UpdateAttendance(ctx context.Context, id uint, req *AttendanceRequest, accessContext middleware.AccessContext, ip string) (*Registration, error) {
	if !accessContext.CanWrite() {
		return nil, errors.New("write access denied")
	}

	reg, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, ErrRegistrationNotFound
	}

	if err := s.Repo.UpdateAttendance(id, *req.Attended, req.Notes); err != nil {
		return nil, err
	}
	reg.Attended = *req.Attended
	reg.AttendanceNotes = req.Notes

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "registration", &reg.ID, "ATTENDANCE_UPDATED",
		map[string]interface{}{"attended": reg.Attended}, ip, "success")

	ev, err := s.Events.GetEventByID(reg.EventID)
	if err != nil {
		ev = nil
	}
	payload := s.buildPayload(reg, ev)
	payload["attended"] = reg.Attended
	payload["attendance_notes"] = reg.AttendanceNotes

	if _, err := s.WebhookSvc.Trigger(ctx, webhook.EventAttendanceUpdated, payload); err != nil {
		log.Printf("⚠️ Failed to trigger attendance.updated for registration %d: %v", reg.ID, err)
	}

	return reg, nil
}

// ===========================
// 🔁 Manual Re-Trigger
//
// RetriggerWebhooks re-sends registration.created for an existing
// registration and re-applies the status tracker on success.
func (s *Service) RetriggerWebhooks(ctx context.Context, id uint, accessContext middleware.AccessContext, ip string) (*webhook.TriggerResult, error) {
	if !accessContext.CanWrite() {
		return nil, errors.New("write access denied")
	}

	reg, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, ErrRegistrationNotFound
	}

	ev, err := s.Events.GetEventByID(reg.EventID)
	if err != nil {
		ev = nil
	}
	payload := s.buildPayload(reg, ev)

	result, err := s.WebhookSvc.Trigger(ctx, webhook.EventRegistrationCreated, payload)
	if err != nil {
		return nil, err
	}

	if result.AnySuccess {
		if err := s.Repo.MarkWebhookSent(reg.ID); err != nil {
			log.Printf("⚠️ Failed to mark registration %d webhook_status sent: %v", reg.ID, err)
		}
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "registration", &reg.ID, "WEBHOOK_RETRIGGERED",
		map[string]interface{}{"any_success": result.AnySuccess}, ip, "success")

	return result, nil
}

// ===========================
// 🗑 Delete
func (s *Service) DeleteRegistration(id uint, accessContext middleware.AccessContext, ip string) error {
	if !accessContext.CanWrite() {
		return errors.New("write access denied")
	}

	if _, err := s.Repo.GetByID(id); err != nil {
		return ErrRegistrationNotFound
	}

	if err := s.Repo.Delete(id); err != nil {
		return err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "registration", &id, "REGISTRATION_DELETED",
		nil, ip, "success")
	return nil
}
