package webhook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventtrackpro/eventtrack-backend/internal/form"
	"github.com/eventtrackpro/eventtrack-backend/internal/webhook"
)

func TestResolveLabel_DashedAndDashFreeFormsMatch(t *testing.T) {
	fields := []form.FormField{
		{ID: "a1b2c3d4-e5f6-7890-abcd-ef1234567890", Type: form.FieldTypeText, Label: "First Name"},
	}
	labels := webhook.BuildLabelMap(fields)

	dashed := "a1b2c3d4-e5f6-7890-abcd-ef1234567890"
	dashFree := "a1b2c3d4e5f67890abcdef1234567890"

	assert.Equal(t, "First Name", webhook.ResolveLabel(labels, dashed))
	assert.Equal(t, "First Name", webhook.ResolveLabel(labels, dashFree))
}

func TestResolveLabel_DashFreeStoredID(t *testing.T) {
	// Field ids may also be stored without dashes; a dashed key should
	// still resolve.
	fields := []form.FormField{
		{ID: "a1b2c3d4e5f67890abcdef1234567890", Type: form.FieldTypeText, Label: "Email"},
	}
	labels := webhook.BuildLabelMap(fields)

	assert.Equal(t, "Email", webhook.ResolveLabel(labels, "a1b2c3d4-e5f6-7890-abcd-ef1234567890"))
}

func TestResolveLabel_UnmatchedKeyReturnedUnchanged(t *testing.T) {
	labels := webhook.LabelMap{"known-id": "Known"}

	assert.Equal(t, "totally-unknown", webhook.ResolveLabel(labels, "totally-unknown"))
	assert.Equal(t, "", webhook.ResolveLabel(labels, ""))
}

func TestResolveLabel_NonUUIDKeysNotRewritten(t *testing.T) {
	labels := webhook.LabelMap{}

	// 32 chars but not hex: must come back untouched
	key := "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"
	assert.Equal(t, key, webhook.ResolveLabel(labels, key))

	// wrong length
	short := "a1b2c3d4"
	assert.Equal(t, short, webhook.ResolveLabel(labels, short))
}

func TestBuildLabelMap_EmptyLabelGetsPlaceholder(t *testing.T) {
	fields := []form.FormField{
		{ID: "f1", Type: form.FieldTypeText, Label: "Name"},
		{ID: "f2", Type: form.FieldTypeText, Label: ""},
		{ID: "f3", Type: form.FieldTypeText, Label: "   "},
	}
	labels := webhook.BuildLabelMap(fields)

	assert.Equal(t, "Name", labels["f1"])
	assert.Equal(t, "Question 2", labels["f2"])
	assert.Equal(t, "Question 3", labels["f3"])
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"First Name":        "first_name",
		"Email":             "email",
		"What's your name?": "whats_your_name",
		"T-Shirt Size":      "tshirt_size",
		"Question 3":        "question_3",
		"  trimmed  ":       "trimmed",
	}
	for in, want := range cases {
		assert.Equal(t, want, webhook.SnakeCase(in), "input %q", in)
	}
}
