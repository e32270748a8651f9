package form_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventtrackpro/eventtrack-backend/internal/form"
)

func formWithFields(t *testing.T, requireAll bool, fields []form.FormField) *form.Form {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	return &form.Form{
		ID:               1,
		Title:            "Signup",
		Fields:           raw,
		RequireAllFields: requireAll,
	}
}

func TestValidateSubmission_RequiredFieldMissing(t *testing.T) {
	svc := &form.Service{}
	f := formWithFields(t, false, []form.FormField{
		{ID: "f1", Type: form.FieldTypeText, Label: "Name", Required: true},
		{ID: "f2", Type: form.FieldTypeText, Label: "Nickname"},
	})

	errs := svc.ValidateSubmission(f, map[string]interface{}{})

	require.Len(t, errs, 1)
	assert.Equal(t, "f1", errs[0].FieldID)
	assert.Equal(t, "Name", errs[0].Label)
}

func TestValidateSubmission_RequireAllFieldsToggle(t *testing.T) {
	svc := &form.Service{}
	f := formWithFields(t, true, []form.FormField{
		{ID: "f1", Type: form.FieldTypeText, Label: "Name"},
		{ID: "f2", Type: form.FieldTypeText, Label: "Company"},
	})

	errs := svc.ValidateSubmission(f, map[string]interface{}{"f1": "Ada"})

	require.Len(t, errs, 1)
	assert.Equal(t, "f2", errs[0].FieldID)
}

func TestValidateSubmission_EmailAndDateFormats(t *testing.T) {
	svc := &form.Service{}
	f := formWithFields(t, false, []form.FormField{
		{ID: "e1", Type: form.FieldTypeEmail, Label: "Email"},
		{ID: "d1", Type: form.FieldTypeDate, Label: "Birthday"},
	})

	errs := svc.ValidateSubmission(f, map[string]interface{}{
		"e1": "not-an-email",
		"d1": "15/05/2026",
	})
	assert.Len(t, errs, 2)

	errs = svc.ValidateSubmission(f, map[string]interface{}{
		"e1": "ada@x.com",
		"d1": "2026-05-15",
	})
	assert.Empty(t, errs)
}

func TestValidateSubmission_OptionMembership(t *testing.T) {
	svc := &form.Service{}
	f := formWithFields(t, false, []form.FormField{
		{ID: "s1", Type: form.FieldTypeSelect, Label: "Size", Options: []string{"S", "M", "L"}},
		{ID: "c1", Type: form.FieldTypeCheckbox, Label: "Sessions", Options: []string{"AM", "PM"}},
	})

	errs := svc.ValidateSubmission(f, map[string]interface{}{
		"s1": "XL",
		"c1": []interface{}{"AM", "Evening"},
	})
	assert.Len(t, errs, 2)

	errs = svc.ValidateSubmission(f, map[string]interface{}{
		"s1": "M",
		"c1": []interface{}{"AM", "PM"},
	})
	assert.Empty(t, errs)
}

func TestValidateSubmission_UnknownKeysIgnored(t *testing.T) {
	svc := &form.Service{}
	f := formWithFields(t, false, []form.FormField{
		{ID: "f1", Type: form.FieldTypeText, Label: "Name"},
	})

	// stale keys from an older form revision must not reject the submission
	errs := svc.ValidateSubmission(f, map[string]interface{}{
		"f1":         "Ada",
		"deleted-id": "whatever",
	})
	assert.Empty(t, errs)
}
