package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eventtrackpro/eventtrack-backend/internal/auditlog"
	"github.com/eventtrackpro/eventtrack-backend/middleware"
)

var ErrFormNotFound = errors.New("form not found")

// Service wraps business logic for registration forms
type Service struct {
	Repo     *Repository
	AuditSvc auditlog.Service
}

func NewService(r *Repository, auditSvc auditlog.Service) *Service {
	return &Service{Repo: r, AuditSvc: auditSvc}
}

// ===========================
// 📝 Create Form
func (s *Service) CreateForm(req *CreateFormRequest, accessContext middleware.AccessContext, ip string) (*Form, error) {
	if !accessContext.CanWrite() {
		return nil, errors.New("write access denied")
	}

	fields, err := prepareFields(req.Fields)
	if err != nil {
		return nil, err
	}

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fields: %w", err)
	}

	f := &Form{
		Title:              req.Title,
		Description:        req.Description,
		Fields:             fieldsJSON,
		SuccessMessage:     req.SuccessMessage,
		ShowRemainingSpots: req.ShowRemainingSpots,
		EnableWaitlist:     req.EnableWaitlist,
		RequireAllFields:   req.RequireAllFields,
		ThemeColor:         req.ThemeColor,
		ButtonStyle:        req.ButtonStyle,
		CreatedBy:          accessContext.UserID,
	}

	if err := s.Repo.CreateForm(f); err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "form", nil, "FORM_CREATED",
			map[string]interface{}{"title": req.Title, "error": err.Error()}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "form", &f.ID, "FORM_CREATED",
		map[string]interface{}{"title": f.Title, "field_count": len(fields)}, ip, "success")

	return f, nil
}

// prepareFields validates the field list and mints ids for fields
// submitted without one.
func prepareFields(fields []FormField) ([]FormField, error) {
	if len(fields) == 0 {
		return nil, errors.New("form must contain at least one field")
	}

	for i := range fields {
		if fields[i].ID == "" {
			fields[i].ID = uuid.NewString()
		}

		switch fields[i].Type {
		case FieldTypeText, FieldTypeTextarea, FieldTypeEmail, FieldTypePhone,
			FieldTypeDate, FieldTypeEventSelect:
			// no options required
		case FieldTypeSelect, FieldTypeCheckbox, FieldTypeRadio:
			if len(fields[i].Options) == 0 {
				return nil, fmt.Errorf("field %q of type %s requires a non-empty option list", fields[i].Label, fields[i].Type)
			}
		default:
			return nil, fmt.Errorf("unsupported field type: %s", fields[i].Type)
		}
	}

	return fields, nil
}

// ===========================
// 🔍 Get / List
func (s *Service) GetForm(id uint) (*Form, error) {
	f, err := s.Repo.GetFormByID(id)
	if err != nil {
		return nil, ErrFormNotFound
	}
	return f, nil
}

func (s *Service) ListForms(page, limit int, search string) ([]Form, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	return s.Repo.ListForms(limit, (page-1)*limit, search)
}

// ===========================
// ✏️ Update Form
func (s *Service) UpdateForm(req *UpdateFormRequest, accessContext middleware.AccessContext, ip string) (*Form, error) {
	if !accessContext.CanWrite() {
		return nil, errors.New("write access denied")
	}

	f, err := s.Repo.GetFormByID(req.ID)
	if err != nil {
		return nil, ErrFormNotFound
	}

	fields, err := prepareFields(req.Fields)
	if err != nil {
		return nil, err
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fields: %w", err)
	}

	f.Title = req.Title
	f.Description = req.Description
	f.Fields = fieldsJSON
	f.SuccessMessage = req.SuccessMessage
	f.ThemeColor = req.ThemeColor
	f.ButtonStyle = req.ButtonStyle
	if req.ShowRemainingSpots != nil {
		f.ShowRemainingSpots = *req.ShowRemainingSpots
	}
	if req.EnableWaitlist != nil {
		f.EnableWaitlist = *req.EnableWaitlist
	}
	if req.RequireAllFields != nil {
		f.RequireAllFields = *req.RequireAllFields
	}

	if err := s.Repo.UpdateForm(f); err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "form", &f.ID, "FORM_UPDATED",
			map[string]interface{}{"title": f.Title, "error": err.Error()}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "form", &f.ID, "FORM_UPDATED",
		map[string]interface{}{"title": f.Title}, ip, "success")

	return f, nil
}

// ===========================
// 🗑 Delete Form
func (s *Service) DeleteForm(id uint, accessContext middleware.AccessContext, ip string) error {
	if !accessContext.CanWrite() {
		return errors.New("write access denied")
	}

	if _, err := s.Repo.GetFormByID(id); err != nil {
		return ErrFormNotFound
	}

	if err := s.Repo.DeleteForm(id); err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "form", &id, "FORM_DELETED",
			map[string]interface{}{"error": err.Error()}, ip, "failure")
		return err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, "form", &id, "FORM_DELETED",
		nil, ip, "success")
	return nil
}

// ===========================
// ✅ Submission Validation
//
// ValidateSubmission checks submitted key/value data against the form's
// field list. Keys are FormField ids; unknown keys are ignored rather
// than rejected so older links keep working after a form edit.
func (s *Service) ValidateSubmission(f *Form, data map[string]interface{}) []ValidationError {
	var errs []ValidationError

	fields, err := f.FieldList()
	if err != nil {
		errs = append(errs, ValidationError{Message: "form definition is corrupted"})
		return errs
	}

	for _, field := range fields {
		raw, present := data[field.ID]
		value := strings.TrimSpace(coerceString(raw))

		required := field.Required || f.RequireAllFields
		if required && (!present || value == "") {
			errs = append(errs, ValidationError{
				FieldID: field.ID,
				Label:   field.Label,
				Message: "this field is required",
			})
			continue
		}
		if !present || value == "" {
			continue
		}

		switch field.Type {
		case FieldTypeEmail:
			if _, err := mail.ParseAddress(value); err != nil {
				errs = append(errs, ValidationError{
					FieldID: field.ID,
					Label:   field.Label,
					Message: "invalid email address",
				})
			}
		case FieldTypeDate:
			if _, err := time.Parse("2006-01-02", value); err != nil {
				errs = append(errs, ValidationError{
					FieldID: field.ID,
					Label:   field.Label,
					Message: "invalid date format. Use YYYY-MM-DD",
				})
			}
		case FieldTypeSelect, FieldTypeRadio:
			if !containsOption(field.Options, value) {
				errs = append(errs, ValidationError{
					FieldID: field.ID,
					Label:   field.Label,
					Message: "value is not one of the allowed options",
				})
			}
		case FieldTypeCheckbox:
			for _, v := range coerceStringSlice(raw) {
				if !containsOption(field.Options, v) {
					errs = append(errs, ValidationError{
						FieldID: field.ID,
						Label:   field.Label,
						Message: fmt.Sprintf("option %q is not allowed", v),
					})
				}
			}
		}
	}

	return errs
}

func containsOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

// coerceString renders any submitted value as a string. Checkbox fields
// may submit arrays; those are joined for presence checks.
func coerceString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []interface{}:
		return strings.Join(coerceStringSlice(val), ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

func coerceStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		s := coerceString(v)
		if s == "" {
			return nil
		}
		return []string{s}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, coerceString(item))
	}
	return out
}
