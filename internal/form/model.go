package form

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ============================
// 🔷 GORM Form Model
type Form struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Title              string         `gorm:"type:varchar(255);not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	Fields             datatypes.JSON `gorm:"type:jsonb;not null" json:"fields"`
	SuccessMessage     string         `gorm:"type:text" json:"success_message"`
	ShowRemainingSpots bool           `gorm:"default:false" json:"show_remaining_spots"`
	EnableWaitlist     bool           `gorm:"default:false" json:"enable_waitlist"`
	RequireAllFields   bool           `gorm:"default:false" json:"require_all_fields"`
	ThemeColor         string         `gorm:"type:varchar(20)" json:"theme_color"`
	ButtonStyle        string         `gorm:"type:varchar(20)" json:"button_style"`
	CreatedBy          uint           `json:"created_by"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName overrides table name for Form
func (Form) TableName() string {
	return "forms"
}

// Supported field types
const (
	FieldTypeText        = "text"
	FieldTypeTextarea    = "textarea"
	FieldTypeEmail       = "email"
	FieldTypePhone       = "phone"
	FieldTypeSelect      = "select"
	FieldTypeCheckbox    = "checkbox"
	FieldTypeRadio       = "radio"
	FieldTypeDate        = "date"
	FieldTypeEventSelect = "event-select"
)

// FormField is one entry in a form's embedded field list. Fields are
// stored inside the Form's jsonb column, not as separate rows.
type FormField struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder,omitempty"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty"`
	Section     string   `json:"section,omitempty"`
	EventIDs    []uint   `json:"event_ids,omitempty"` // for event-select fields
}

// FieldList decodes the embedded jsonb field list
func (f *Form) FieldList() ([]FormField, error) {
	var fields []FormField
	if len(f.Fields) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(f.Fields, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// ============================
// 🟡 Create / Update Requests
type CreateFormRequest struct {
	Title              string      `json:"title" binding:"required"`
	Description        string      `json:"description"`
	Fields             []FormField `json:"fields" binding:"required"`
	SuccessMessage     string      `json:"success_message"`
	ShowRemainingSpots bool        `json:"show_remaining_spots"`
	EnableWaitlist     bool        `json:"enable_waitlist"`
	RequireAllFields   bool        `json:"require_all_fields"`
	ThemeColor         string      `json:"theme_color"`
	ButtonStyle        string      `json:"button_style"`
}

type UpdateFormRequest struct {
	ID                 uint        `json:"-"`
	Title              string      `json:"title" binding:"required"`
	Description        string      `json:"description"`
	Fields             []FormField `json:"fields" binding:"required"`
	SuccessMessage     string      `json:"success_message"`
	ShowRemainingSpots *bool       `json:"show_remaining_spots,omitempty"`
	EnableWaitlist     *bool       `json:"enable_waitlist,omitempty"`
	RequireAllFields   *bool       `json:"require_all_fields,omitempty"`
	ThemeColor         string      `json:"theme_color"`
	ButtonStyle        string      `json:"button_style"`
}

// ValidationError carries field-level detail for a rejected submission
type ValidationError struct {
	FieldID string `json:"field_id"`
	Label   string `json:"label"`
	Message string `json:"message"`
}
