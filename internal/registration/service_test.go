package registration_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eventtrackpro/eventtrack-backend/internal/auditlog"
	"github.com/eventtrackpro/eventtrack-backend/internal/event"
	"github.com/eventtrackpro/eventtrack-backend/internal/form"
	"github.com/eventtrackpro/eventtrack-backend/internal/registration"
	"github.com/eventtrackpro/eventtrack-backend/internal/webhook"
	"github.com/eventtrackpro/eventtrack-backend/middleware"
)

// Mock implementations

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) CreateWithCapacityCheck(reg *registration.Registration, allowWaitlist bool) error {
	args := m.Called(reg, allowWaitlist)
	return args.Error(0)
}

func (m *MockRepo) GetByID(id uint) (*registration.Registration, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRepo) List(filter registration.ListFilter) ([]registration.Registration, int64, error) {
	args := m.Called(filter)
	return args.Get(0).([]registration.Registration), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepo) UpdateAttendance(id uint, attended bool, notes string) error {
	args := m.Called(id, attended, notes)
	return args.Error(0)
}

func (m *MockRepo) MarkWebhookSent(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) GetEventByID(id uint) (*event.Event, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

type MockForms struct {
	mock.Mock
}

func (m *MockForms) GetFormByID(id uint) (*form.Form, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*form.Form), args.Error(1)
}

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) ValidateSubmission(f *form.Form, data map[string]interface{}) []form.ValidationError {
	args := m.Called(f, data)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]form.ValidationError)
}

type MockTrigger struct {
	mock.Mock
}

func (m *MockTrigger) Trigger(ctx context.Context, eventType string, payload map[string]interface{}) (*webhook.TriggerResult, error) {
	args := m.Called(ctx, eventType, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhook.TriggerResult), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendRegistrationConfirmation(registrationID uint, recipient, eventTitle, eventDate, successMessage string) {
	m.Called(registrationID, recipient, eventTitle, eventDate, successMessage)
}

type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) LogAction(ctx context.Context, userID *uint, entityType string, entityID *uint, action string, details map[string]interface{}, ip string, status string) error {
	args := m.Called(ctx, userID, entityType, entityID, action, details, ip, status)
	return args.Error(0)
}

func (m *MockAudit) GetAuditLogs(ctx context.Context, filter auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(*auditlog.PaginatedAuditLogs), args.Error(1)
}

func (m *MockAudit) GetAuditLogByID(ctx context.Context, id uint) (*auditlog.AuditLogResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*auditlog.AuditLogResponse), args.Error(1)
}

// Helpers

type testEnv struct {
	repo      *MockRepo
	events    *MockEvents
	forms     *MockForms
	validator *MockValidator
	trigger   *MockTrigger
	notifier  *MockNotifier
	audit     *MockAudit
	svc       *registration.Service
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:      new(MockRepo),
		events:    new(MockEvents),
		forms:     new(MockForms),
		validator: new(MockValidator),
		trigger:   new(MockTrigger),
		notifier:  new(MockNotifier),
		audit:     new(MockAudit),
	}
	env.svc = registration.NewService(env.repo, env.events, env.forms, env.validator, env.trigger, env.notifier, env.audit, nil)
	env.audit.On("LogAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return env
}

func testEvent() *event.Event {
	return &event.Event{
		ID:        5,
		Title:     "Spring Gala",
		EventDate: time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC),
		Capacity:  100,
	}
}

func adminContext() middleware.AccessContext {
	return middleware.AccessContext{UserID: 1, RoleName: "admin", PermissionType: "full"}
}

// Tests

func TestCreatePublic_SuccessMarksWebhookSent(t *testing.T) {
	env := newTestEnv()

	env.events.On("GetEventByID", uint(5)).Return(testEvent(), nil)
	env.repo.On("CreateWithCapacityCheck", mock.Anything, false).
		Run(func(args mock.Arguments) {
			args.Get(0).(*registration.Registration).ID = 42
		}).Return(nil)
	env.trigger.On("Trigger", mock.Anything, webhook.EventRegistrationCreated, mock.Anything).
		Return(&webhook.TriggerResult{Triggered: 1, AnySuccess: true}, nil)
	env.repo.On("MarkWebhookSent", uint(42)).Return(nil)
	env.notifier.On("SendRegistrationConfirmation", uint(42), "ada@x.com", "Spring Gala", "2026-05-15", "").Return()

	reg, err := env.svc.CreatePublic(context.Background(), &registration.PublicCreateRequest{
		EventID:  5,
		FormData: map[string]interface{}{"email": "ada@x.com"},
	}, "1.2.3.4")

	require.NoError(t, err)
	assert.Equal(t, registration.WebhookStatusSent, reg.WebhookStatus)
	env.repo.AssertCalled(t, "MarkWebhookSent", uint(42))
	env.notifier.AssertExpectations(t)
}

func TestCreatePublic_FailedDispatchLeavesStatusNotSent(t *testing.T) {
	env := newTestEnv()

	env.events.On("GetEventByID", uint(5)).Return(testEvent(), nil)
	env.repo.On("CreateWithCapacityCheck", mock.Anything, false).
		Run(func(args mock.Arguments) {
			args.Get(0).(*registration.Registration).ID = 43
		}).Return(nil)
	env.trigger.On("Trigger", mock.Anything, webhook.EventRegistrationCreated, mock.Anything).
		Return(&webhook.TriggerResult{Triggered: 2, AnySuccess: false}, nil)

	reg, err := env.svc.CreatePublic(context.Background(), &registration.PublicCreateRequest{
		EventID:  5,
		FormData: map[string]interface{}{"field": "value"},
	}, "1.2.3.4")

	require.NoError(t, err)
	assert.Equal(t, registration.WebhookStatusNotSent, reg.WebhookStatus)
	env.repo.AssertNotCalled(t, "MarkWebhookSent", mock.Anything)
}

func TestCreatePublic_ValidationFailureHasNoSideEffects(t *testing.T) {
	env := newTestEnv()

	formID := uint(3)
	ev := testEvent()
	ev.FormID = &formID
	f := &form.Form{ID: formID, Title: "Signup"}

	env.events.On("GetEventByID", uint(5)).Return(ev, nil)
	env.forms.On("GetFormByID", formID).Return(f, nil)
	env.validator.On("ValidateSubmission", f, mock.Anything).
		Return([]form.ValidationError{{FieldID: "f1", Label: "Email", Message: "this field is required"}})

	_, err := env.svc.CreatePublic(context.Background(), &registration.PublicCreateRequest{
		EventID:  5,
		FormData: map[string]interface{}{},
	}, "1.2.3.4")

	var verr *registration.ValidationFailedError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 1)
	env.repo.AssertNotCalled(t, "CreateWithCapacityCheck", mock.Anything, mock.Anything)
	env.trigger.AssertNotCalled(t, "Trigger", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePublic_EventFull(t *testing.T) {
	env := newTestEnv()

	env.events.On("GetEventByID", uint(5)).Return(testEvent(), nil)
	env.repo.On("CreateWithCapacityCheck", mock.Anything, false).Return(registration.ErrEventFull)

	_, err := env.svc.CreatePublic(context.Background(), &registration.PublicCreateRequest{
		EventID:  5,
		FormData: map[string]interface{}{"field": "value"},
	}, "1.2.3.4")

	assert.ErrorIs(t, err, registration.ErrEventFull)
	env.trigger.AssertNotCalled(t, "Trigger", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePublic_WaitlistAllowedWhenFormEnablesIt(t *testing.T) {
	env := newTestEnv()

	formID := uint(3)
	ev := testEvent()
	ev.FormID = &formID
	f := &form.Form{ID: formID, EnableWaitlist: true}

	env.events.On("GetEventByID", uint(5)).Return(ev, nil)
	env.forms.On("GetFormByID", formID).Return(f, nil)
	env.validator.On("ValidateSubmission", f, mock.Anything).Return(nil)
	env.repo.On("CreateWithCapacityCheck", mock.Anything, true).
		Run(func(args mock.Arguments) {
			reg := args.Get(0).(*registration.Registration)
			reg.ID = 44
			reg.Status = registration.StatusPending
		}).Return(nil)
	env.trigger.On("Trigger", mock.Anything, webhook.EventRegistrationCreated, mock.Anything).
		Return(&webhook.TriggerResult{AnySuccess: false}, nil)

	reg, err := env.svc.CreatePublic(context.Background(), &registration.PublicCreateRequest{
		EventID:  5,
		FormData: map[string]interface{}{"field": "value"},
	}, "1.2.3.4")

	require.NoError(t, err)
	assert.Equal(t, registration.StatusPending, reg.Status)
}

func TestCreatePublic_UnknownEvent(t *testing.T) {
	env := newTestEnv()
	env.events.On("GetEventByID", uint(99)).Return(nil, errors.New("record not found"))

	_, err := env.svc.CreatePublic(context.Background(), &registration.PublicCreateRequest{
		EventID:  99,
		FormData: map[string]interface{}{},
	}, "1.2.3.4")

	assert.ErrorIs(t, err, event.ErrEventNotFound)
}

func TestUpdateAttendance_DispatchesAttendanceUpdated(t *testing.T) {
	env := newTestEnv()

	reg := &registration.Registration{ID: 42, EventID: 5, Status: registration.StatusConfirmed, WebhookStatus: registration.WebhookStatusSent}
	env.repo.On("GetByID", uint(42)).Return(reg, nil)
	env.repo.On("UpdateAttendance", uint(42), true, "arrived late").Return(nil)
	env.events.On("GetEventByID", uint(5)).Return(testEvent(), nil)

	var captured map[string]interface{}
	env.trigger.On("Trigger", mock.Anything, webhook.EventAttendanceUpdated, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(map[string]interface{})
		}).Return(&webhook.TriggerResult{AnySuccess: true}, nil)

	attended := true
	updated, err := env.svc.UpdateAttendance(context.Background(), 42, &registration.AttendanceRequest{
		Attended: &attended,
		Notes:    "arrived late",
	}, adminContext(), "1.2.3.4")

	require.NoError(t, err)
	assert.True(t, updated.Attended)
	assert.Equal(t, "arrived late", updated.AttendanceNotes)

	require.NotNil(t, captured)
	assert.Equal(t, true, captured["attended"])
	assert.Equal(t, "arrived late", captured["attendance_notes"])
	assert.Equal(t, "Spring Gala", captured["event_title"])
}

func TestUpdateAttendance_ReadOnlyUserDenied(t *testing.T) {
	env := newTestEnv()

	attended := true
	viewer := middleware.AccessContext{UserID: 2, RoleName: "viewer", PermissionType: "readonly"}
	_, err := env.svc.UpdateAttendance(context.Background(), 42, &registration.AttendanceRequest{Attended: &attended}, viewer, "1.2.3.4")

	assert.Error(t, err)
	env.repo.AssertNotCalled(t, "UpdateAttendance", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetriggerWebhooks_MarksSentOnSuccess(t *testing.T) {
	env := newTestEnv()

	reg := &registration.Registration{ID: 42, EventID: 5, Status: registration.StatusConfirmed, WebhookStatus: registration.WebhookStatusNotSent}
	env.repo.On("GetByID", uint(42)).Return(reg, nil)
	env.events.On("GetEventByID", uint(5)).Return(testEvent(), nil)
	env.trigger.On("Trigger", mock.Anything, webhook.EventRegistrationCreated, mock.Anything).
		Return(&webhook.TriggerResult{Triggered: 1, AnySuccess: true}, nil)
	env.repo.On("MarkWebhookSent", uint(42)).Return(nil)

	result, err := env.svc.RetriggerWebhooks(context.Background(), 42, adminContext(), "1.2.3.4")

	require.NoError(t, err)
	assert.True(t, result.AnySuccess)
	env.repo.AssertCalled(t, "MarkWebhookSent", uint(42))
}

func TestRetriggerWebhooks_NoSuccessKeepsStatus(t *testing.T) {
	env := newTestEnv()

	reg := &registration.Registration{ID: 42, EventID: 5, WebhookStatus: registration.WebhookStatusNotSent}
	env.repo.On("GetByID", uint(42)).Return(reg, nil)
	env.events.On("GetEventByID", uint(5)).Return(testEvent(), nil)
	env.trigger.On("Trigger", mock.Anything, webhook.EventRegistrationCreated, mock.Anything).
		Return(&webhook.TriggerResult{Triggered: 1, AnySuccess: false}, nil)

	result, err := env.svc.RetriggerWebhooks(context.Background(), 42, adminContext(), "1.2.3.4")

	require.NoError(t, err)
	assert.False(t, result.AnySuccess)
	env.repo.AssertNotCalled(t, "MarkWebhookSent", mock.Anything)
}
