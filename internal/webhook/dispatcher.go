package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the request
// body, computed with the subscription's secret.
const SignatureHeader = "X-Webhook-Signature"

// maxTestResponseBody caps the response body echoed back from a manual
// test delivery.
const maxTestResponseBody = 1000

// DeliveryResult is the outcome of one outbound POST
type DeliveryResult struct {
	WebhookID   uint   `json:"webhook_id"`
	WebhookName string `json:"webhook_name"`
	URL         string `json:"url"`
	StatusCode  int    `json:"status_code"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	DurationMs  int64  `json:"duration_ms"`
}

// TestResult is the diagnostic outcome of a manual single-target test
type TestResult struct {
	WebhookID  uint   `json:"webhook_id"`
	StatusCode int    `json:"status_code"`
	Success    bool   `json:"success"`
	Body       string `json:"body"`
	Error      string `json:"error,omitempty"`
}

// Dispatcher delivers payloads to webhook subscribers. Each delivery is
// bounded by the configured timeout so a slow subscriber cannot stall
// the fan-out indefinitely.
type Dispatcher struct {
	client *http.Client
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Sign computes the hex-encoded HMAC-SHA256 of body using secret
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ===========================
// 🚀 Fan-Out Delivery
//
// FanOut posts the payload to every subscriber concurrently. Failures
// are isolated per subscriber; the call returns after all deliveries
// have settled. Result order matches the subscriber order.
func (d *Dispatcher) FanOut(ctx context.Context, subscribers []Webhook, payload map[string]interface{}) []DeliveryResult {
	body, err := json.Marshal(payload)
	if err != nil {
		results := make([]DeliveryResult, len(subscribers))
		for i, wh := range subscribers {
			results[i] = DeliveryResult{
				WebhookID:   wh.ID,
				WebhookName: wh.Name,
				URL:         wh.URL,
				Error:       fmt.Sprintf("failed to encode payload: %v", err),
			}
		}
		return results
	}

	results := make([]DeliveryResult, len(subscribers))
	var wg sync.WaitGroup
	for i := range subscribers {
		wg.Add(1)
		go func(idx int, wh Webhook) {
			defer wg.Done()
			results[idx] = d.deliver(ctx, &wh, body)
		}(i, subscribers[i])
	}
	wg.Wait()

	return results
}

// deliver issues a single signed POST and classifies the outcome.
// Any non-2xx status or transport error counts as a failure.
func (d *Dispatcher) deliver(ctx context.Context, wh *Webhook, body []byte) DeliveryResult {
	result := DeliveryResult{
		WebhookID:   wh.ID,
		WebhookName: wh.Name,
		URL:         wh.URL,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	if wh.HasSecret() {
		req.Header.Set(SignatureHeader, Sign(wh.Secret, body))
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	result.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	result.StatusCode = resp.StatusCode
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	if !result.Success {
		result.Error = fmt.Sprintf("received status %d", resp.StatusCode)
	}
	return result
}

// ===========================
// 🧪 Manual Test Delivery
//
// TestDeliver posts a payload to a single webhook, bypassing the
// registry fan-out, and surfaces the raw response for diagnostics.
func (d *Dispatcher) TestDeliver(ctx context.Context, wh *Webhook, payload map[string]interface{}) TestResult {
	result := TestResult{WebhookID: wh.ID}

	body, err := json.Marshal(payload)
	if err != nil {
		result.Error = fmt.Sprintf("failed to encode payload: %v", err)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	if wh.HasSecret() {
		req.Header.Set(SignatureHeader, Sign(wh.Secret, body))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxTestResponseBody+1))
	if len(respBody) > maxTestResponseBody {
		respBody = respBody[:maxTestResponseBody]
	}

	result.StatusCode = resp.StatusCode
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	result.Body = string(respBody)
	return result
}
