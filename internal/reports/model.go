package reports

import (
	"time"
)

// Supported export formats
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// Supported report types
const (
	ReportTypeRegistrations = "registrations"
	ReportTypeAttendance    = "attendance"
	ReportTypeEvents        = "events"
)

// RegistrationReportRow is one exported registration with contact
// fields extracted from the submitted form data.
type RegistrationReportRow struct {
	ID            uint      `json:"id"`
	EventTitle    string    `json:"event_title"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	Status        string    `json:"status"`
	WebhookStatus string    `json:"webhook_status"`
	Attended      bool      `json:"attended"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// AttendanceReportRow extends the registration row with notes
type AttendanceReportRow struct {
	RegistrationReportRow
	AttendanceNotes string `json:"attendance_notes"`
}

// EventReportRow summarizes one event for export
type EventReportRow struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	EventDate time.Time `json:"event_date"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	Confirmed int       `json:"confirmed"`
	Pending   int       `json:"pending"`
	Attended  int       `json:"attended"`
	Remaining int       `json:"remaining"`
}

// ReportData is the union of rows an exporter can receive
type ReportData struct {
	Registrations []RegistrationReportRow
	Attendance    []AttendanceReportRow
	Events        []EventReportRow
}

// ReportFilter narrows exports to one event and/or a date window
type ReportFilter struct {
	EventID  *uint
	FromDate *time.Time
	ToDate   *time.Time
}
