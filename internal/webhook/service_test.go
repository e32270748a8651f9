package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/eventtrackpro/eventtrack-backend/internal/auditlog"
	"github.com/eventtrackpro/eventtrack-backend/internal/webhook"
	"github.com/eventtrackpro/eventtrack-backend/middleware"
)

// fakeRegistry keeps webhooks in memory and mirrors the repository
// contract for FindActiveSubscribers: active = true and the event type
// present in the subscribed set.
type fakeRegistry struct {
	webhooks   []webhook.Webhook
	deliveries []*webhook.WebhookDelivery
}

func (f *fakeRegistry) CreateWebhook(w *webhook.Webhook) error {
	w.ID = uint(len(f.webhooks) + 1)
	f.webhooks = append(f.webhooks, *w)
	return nil
}

func (f *fakeRegistry) GetWebhookByID(id uint) (*webhook.Webhook, error) {
	for i := range f.webhooks {
		if f.webhooks[i].ID == id {
			w := f.webhooks[i]
			return &w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRegistry) ListWebhooks() ([]webhook.Webhook, error) {
	return f.webhooks, nil
}

func (f *fakeRegistry) UpdateWebhook(w *webhook.Webhook) error {
	for i := range f.webhooks {
		if f.webhooks[i].ID == w.ID {
			f.webhooks[i] = *w
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRegistry) DeleteWebhook(id uint) error {
	for i := range f.webhooks {
		if f.webhooks[i].ID == id {
			f.webhooks = append(f.webhooks[:i], f.webhooks[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRegistry) FindActiveSubscribers(eventType string) ([]webhook.Webhook, error) {
	var out []webhook.Webhook
	for _, w := range f.webhooks {
		if !w.Active {
			continue
		}
		for _, e := range w.EventList() {
			if e == eventType {
				out = append(out, w)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRegistry) RecordDelivery(d *webhook.WebhookDelivery) error {
	f.deliveries = append(f.deliveries, d)
	return nil
}

func (f *fakeRegistry) ListDeliveries(webhookID uint, limit int) ([]webhook.WebhookDelivery, error) {
	var out []webhook.WebhookDelivery
	for _, d := range f.deliveries {
		if d.WebhookID == webhookID {
			out = append(out, *d)
		}
	}
	return out, nil
}

// capturingAudit records the last details map passed to LogAction.
type capturingAudit struct {
	lastAction  string
	lastDetails map[string]interface{}
}

func (a *capturingAudit) LogAction(ctx context.Context, userID *uint, entityType string, entityID *uint, action string, details map[string]interface{}, ip string, status string) error {
	a.lastAction = action
	a.lastDetails = details
	return nil
}

func (a *capturingAudit) GetAuditLogs(ctx context.Context, filter auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return &auditlog.PaginatedAuditLogs{}, nil
}

func (a *capturingAudit) GetAuditLogByID(ctx context.Context, id uint) (*auditlog.AuditLogResponse, error) {
	return nil, gorm.ErrRecordNotFound
}

func mustEvents(t *testing.T, types ...string) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(types)
	require.NoError(t, err)
	return datatypes.JSON(raw)
}

func newTriggerService(registry *fakeRegistry) *webhook.Service {
	return webhook.NewService(registry, webhook.NewDispatcher(2*time.Second), &capturingAudit{})
}

func adminContext() middleware.AccessContext {
	return middleware.AccessContext{UserID: 1, RoleName: middleware.RoleAdmin, PermissionType: "full"}
}

func TestTrigger_NoMatchingSubscribers(t *testing.T) {
	registry := &fakeRegistry{}
	svc := newTriggerService(registry)

	result, err := svc.Trigger(context.Background(), webhook.EventRegistrationCreated, map[string]interface{}{"a": "b"})

	require.NoError(t, err)
	assert.Equal(t, "No webhooks triggered", result.Message)
	assert.Zero(t, result.Triggered)
	assert.False(t, result.AnySuccess)
	assert.Empty(t, result.Results)
	assert.Empty(t, registry.deliveries)
}

func TestTrigger_SubscriberEventTypeFilter(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	registry := &fakeRegistry{webhooks: []webhook.Webhook{
		{ID: 1, Name: "events-only", URL: server.URL, Events: mustEvents(t, webhook.EventEventCreated), Active: true},
	}}
	svc := newTriggerService(registry)

	// the subscription only listens to event.created, so a
	// registration.created trigger must not reach it
	result, err := svc.Trigger(context.Background(), webhook.EventRegistrationCreated, map[string]interface{}{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, "No webhooks triggered", result.Message)
	assert.Zero(t, atomic.LoadInt32(&hits))

	result, err = svc.Trigger(context.Background(), webhook.EventEventCreated, map[string]interface{}{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Triggered)
	assert.True(t, result.AnySuccess)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestTrigger_InactiveSubscriberSkipped(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	registry := &fakeRegistry{webhooks: []webhook.Webhook{
		{ID: 1, Name: "disabled", URL: server.URL, Events: mustEvents(t, webhook.EventRegistrationCreated), Active: false},
	}}
	svc := newTriggerService(registry)

	result, err := svc.Trigger(context.Background(), webhook.EventRegistrationCreated, nil)
	require.NoError(t, err)
	assert.Equal(t, "No webhooks triggered", result.Message)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestTrigger_AtLeastOneSuccess(t *testing.T) {
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer okServer.Close()

	registry := &fakeRegistry{webhooks: []webhook.Webhook{
		{ID: 1, Name: "ok", URL: okServer.URL, Events: mustEvents(t, webhook.EventRegistrationCreated), Active: true},
		{ID: 2, Name: "unreachable", URL: "http://127.0.0.1:1", Events: mustEvents(t, webhook.EventRegistrationCreated), Active: true},
	}}
	svc := newTriggerService(registry)

	result, err := svc.Trigger(context.Background(), webhook.EventRegistrationCreated, map[string]interface{}{"x": 1})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Triggered)
	assert.True(t, result.AnySuccess)
	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)

	// every attempt lands in the delivery log, success or not
	require.Len(t, registry.deliveries, 2)
	for _, d := range registry.deliveries {
		assert.Equal(t, webhook.EventRegistrationCreated, d.EventType)
	}
}

func TestTrigger_AllFailuresReportNoSuccess(t *testing.T) {
	registry := &fakeRegistry{webhooks: []webhook.Webhook{
		{ID: 1, Name: "a", URL: "http://127.0.0.1:1", Events: mustEvents(t, webhook.EventRegistrationCreated), Active: true},
		{ID: 2, Name: "b", URL: "http://127.0.0.1:1", Events: mustEvents(t, webhook.EventRegistrationCreated), Active: true},
	}}
	svc := newTriggerService(registry)

	result, err := svc.Trigger(context.Background(), webhook.EventRegistrationCreated, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Triggered)
	assert.False(t, result.AnySuccess)
}

func TestTrigger_UnsupportedEventType(t *testing.T) {
	svc := newTriggerService(&fakeRegistry{})

	_, err := svc.Trigger(context.Background(), "registration.deleted", nil)

	assert.Error(t, err)
}

func TestUpdateWebhook_AuditsSubscribedEvents(t *testing.T) {
	registry := &fakeRegistry{webhooks: []webhook.Webhook{
		{ID: 1, Name: "zapier", URL: "https://hooks.example.com/1", Events: mustEvents(t, webhook.EventEventCreated), Active: true},
	}}
	audit := &capturingAudit{}
	svc := webhook.NewService(registry, webhook.NewDispatcher(time.Second), audit)

	events := []string{webhook.EventRegistrationCreated, webhook.EventAttendanceUpdated}
	updated, err := svc.UpdateWebhook(1, &webhook.UpdateWebhookRequest{Events: &events}, adminContext(), "10.0.0.1")

	require.NoError(t, err)
	assert.ElementsMatch(t, events, updated.EventList())
	assert.Equal(t, "WEBHOOK_UPDATED", audit.lastAction)
	assert.ElementsMatch(t, events, audit.lastDetails["events"])
}
