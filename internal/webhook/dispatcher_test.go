package webhook_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventtrackpro/eventtrack-backend/internal/webhook"
)

func TestFanOut_SignsDeliveriesWithSecret(t *testing.T) {
	var gotSignature string
	var gotBody []byte
	var gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get(webhook.SignatureHeader)
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := webhook.NewDispatcher(5 * time.Second)
	subscribers := []webhook.Webhook{
		{ID: 1, Name: "zapier", URL: server.URL, Secret: "s3cret"},
	}

	results := d.FanOut(context.Background(), subscribers, map[string]interface{}{"hello": "world"})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, http.StatusOK, results[0].StatusCode)
	assert.Equal(t, "application/json", gotContentType)

	// signature must be the HMAC-SHA256 of the exact body that was sent
	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(gotBody)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSignature)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, "world", decoded["hello"])
}

func TestFanOut_NoSignatureWithoutSecret(t *testing.T) {
	var hasSignature bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasSignature = r.Header[webhook.SignatureHeader]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := webhook.NewDispatcher(5 * time.Second)
	results := d.FanOut(context.Background(), []webhook.Webhook{
		{ID: 1, Name: "plain", URL: server.URL},
	}, map[string]interface{}{"a": "b"})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.False(t, hasSignature)
}

func TestFanOut_FailuresAreIsolated(t *testing.T) {
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer okServer.Close()

	failServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failServer.Close()

	d := webhook.NewDispatcher(5 * time.Second)
	subscribers := []webhook.Webhook{
		{ID: 1, Name: "ok", URL: okServer.URL},
		{ID: 2, Name: "broken", URL: failServer.URL},
		{ID: 3, Name: "unreachable", URL: "http://127.0.0.1:1"},
	}

	results := d.FanOut(context.Background(), subscribers, map[string]interface{}{"x": 1})

	require.Len(t, results, 3)

	// result order matches subscriber order
	assert.Equal(t, uint(1), results[0].WebhookID)
	assert.True(t, results[0].Success)

	assert.Equal(t, uint(2), results[1].WebhookID)
	assert.False(t, results[1].Success)
	assert.Equal(t, http.StatusInternalServerError, results[1].StatusCode)

	assert.Equal(t, uint(3), results[2].WebhookID)
	assert.False(t, results[2].Success)
	assert.NotEmpty(t, results[2].Error)
}

func TestTestDeliver_TruncatesResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, strings.Repeat("x", 5000))
	}))
	defer server.Close()

	d := webhook.NewDispatcher(5 * time.Second)
	result := d.TestDeliver(context.Background(), &webhook.Webhook{ID: 9, URL: server.URL}, map[string]interface{}{"ping": true})

	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Len(t, result.Body, 1000)
}

func TestTestDeliver_NetworkErrorSurfaced(t *testing.T) {
	d := webhook.NewDispatcher(1 * time.Second)
	result := d.TestDeliver(context.Background(), &webhook.Webhook{ID: 9, URL: "http://127.0.0.1:1"}, nil)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestSign_Deterministic(t *testing.T) {
	body := []byte(`{"a":"b"}`)
	first := webhook.Sign("secret", body)
	second := webhook.Sign("secret", body)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, webhook.Sign("other", body))
	assert.Len(t, first, 64) // hex-encoded sha256
}
