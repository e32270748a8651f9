package webhook

import (
	"fmt"
	"strings"
	"time"
)

// EventMeta carries the event descriptive fields that go into every
// outbound payload. A zero value is used when the event was deleted.
type EventMeta struct {
	ID          uint
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Location    string
	Capacity    int
}

// RegistrationMeta carries the registration fields included alongside
// the submitted form data.
type RegistrationMeta struct {
	ID            uint
	Status        string
	WebhookStatus string
	SubmittedAt   time.Time
}

// BuildRegistrationPayload flattens a registration and its event into a
// single-level key/value map for external no-code consumers.
//
// Every submitted form entry contributes two keys: a snake_case key
// derived from the resolved field label, and a "<fieldID>_raw" key so
// the value stays traceable when label resolution falls back to the id.
// Normalization never fails; malformed values are coerced to strings.
func BuildRegistrationPayload(reg RegistrationMeta, ev EventMeta, formData map[string]interface{}, labels LabelMap) map[string]interface{} {
	payload := map[string]interface{}{
		"event_title":         ev.Title,
		"event_description":   ev.Description,
		"event_date":          ev.Date,
		"event_start_time":    ev.StartTime,
		"event_end_time":      ev.EndTime,
		"event_location":      ev.Location,
		"event_capacity":      ev.Capacity,
		"registration_id":     reg.ID,
		"registration_status": reg.Status,
		"webhook_status":      reg.WebhookStatus,
		"submitted_at":        reg.SubmittedAt.Format(time.RFC3339),
	}

	resolved := make(map[string]string, len(formData))
	for fieldID, raw := range formData {
		value := coerceValue(raw)
		label := ResolveLabel(labels, fieldID)
		if key := SnakeCase(label); key != "" {
			payload[key] = value
			resolved[key] = value
		}
		payload[fieldID+"_raw"] = value
	}

	extractContactFields(payload, resolved)

	return payload
}

// BuildEventPayload produces the canonical event.created / event.updated
// payload from stored event data.
func BuildEventPayload(ev EventMeta) map[string]interface{} {
	return map[string]interface{}{
		"event_id":          ev.ID,
		"event_title":       ev.Title,
		"event_description": ev.Description,
		"event_date":        ev.Date,
		"event_start_time":  ev.StartTime,
		"event_end_time":    ev.EndTime,
		"event_location":    ev.Location,
		"event_capacity":    ev.Capacity,
	}
}

// extractContactFields scans the resolved submission keys for common
// name/email fields and promotes them to stable top-level keys. A bare
// "name" value without separate first/last fields is split on the first
// whitespace boundary.
func extractContactFields(payload map[string]interface{}, resolved map[string]string) {
	var firstName, lastName, email, fullName string

	for key, value := range resolved {
		if value == "" {
			continue
		}
		k := strings.ToLower(key)
		switch {
		case strings.Contains(k, "email"):
			if email == "" {
				email = value
			}
		case strings.Contains(k, "first") || strings.Contains(k, "fname"):
			if firstName == "" {
				firstName = value
			}
		case strings.Contains(k, "last") || strings.Contains(k, "lname"):
			if lastName == "" {
				lastName = value
			}
		case strings.Contains(k, "fullname") || strings.Contains(k, "name"):
			if fullName == "" {
				fullName = value
			}
		}
	}

	if firstName == "" && lastName == "" && fullName != "" {
		parts := strings.SplitN(strings.TrimSpace(fullName), " ", 2)
		firstName = parts[0]
		if len(parts) > 1 {
			lastName = strings.TrimSpace(parts[1])
		}
	}

	if firstName != "" {
		payload["first_name"] = firstName
	}
	if lastName != "" {
		payload["last_name"] = lastName
	}
	if email != "" {
		payload["email"] = email
	}
}

// coerceValue renders any submitted value as a string; arrays (checkbox
// selections) are joined with a comma.
func coerceValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, coerceValue(item))
		}
		return strings.Join(parts, ", ")
	case float64:
		// JSON numbers decode as float64; render integers without a
		// trailing .0
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
