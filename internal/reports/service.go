package reports

import (
	"fmt"

	"github.com/eventtrackpro/eventtrack-backend/internal/event"
	"github.com/eventtrackpro/eventtrack-backend/internal/form"
	"github.com/eventtrackpro/eventtrack-backend/internal/registration"
	"github.com/eventtrackpro/eventtrack-backend/internal/webhook"
)

// Service assembles report rows and hands them to the exporter. Contact
// columns are extracted from submission data with the same label
// resolution the webhook pipeline uses, so exports and outbound
// payloads agree on names and emails.
type Service struct {
	Repo     *Repository
	FormRepo *form.Repository
	Exporter ReportExporter
}

func NewService(repo *Repository, formRepo *form.Repository, exporter ReportExporter) *Service {
	return &Service{
		Repo:     repo,
		FormRepo: formRepo,
		Exporter: exporter,
	}
}

// Export builds the requested report and returns the file bytes,
// filename and content type.
func (s *Service) Export(reportType, format string, filter ReportFilter) ([]byte, string, string, error) {
	data := ReportData{}

	switch reportType {
	case ReportTypeRegistrations:
		rows, err := s.buildRegistrationRows(filter)
		if err != nil {
			return nil, "", "", err
		}
		data.Registrations = rows

	case ReportTypeAttendance:
		rows, err := s.buildAttendanceRows(filter)
		if err != nil {
			return nil, "", "", err
		}
		data.Attendance = rows

	case ReportTypeEvents:
		rows, err := s.Repo.GetEventRows(filter)
		if err != nil {
			return nil, "", "", err
		}
		data.Events = rows

	default:
		return nil, "", "", fmt.Errorf("unsupported report type: %s", reportType)
	}

	return s.Exporter.Export(reportType, format, data)
}

func (s *Service) buildRegistrationRows(filter ReportFilter) ([]RegistrationReportRow, error) {
	regs, events, err := s.loadRegistrationsWithEvents(filter)
	if err != nil {
		return nil, err
	}

	labelCache := make(map[uint]webhook.LabelMap)
	rows := make([]RegistrationReportRow, 0, len(regs))
	for _, reg := range regs {
		rows = append(rows, s.registrationRow(reg, events, labelCache))
	}
	return rows, nil
}

func (s *Service) buildAttendanceRows(filter ReportFilter) ([]AttendanceReportRow, error) {
	regs, events, err := s.loadRegistrationsWithEvents(filter)
	if err != nil {
		return nil, err
	}

	labelCache := make(map[uint]webhook.LabelMap)
	rows := make([]AttendanceReportRow, 0, len(regs))
	for _, reg := range regs {
		rows = append(rows, AttendanceReportRow{
			RegistrationReportRow: s.registrationRow(reg, events, labelCache),
			AttendanceNotes:       reg.AttendanceNotes,
		})
	}
	return rows, nil
}

func (s *Service) loadRegistrationsWithEvents(filter ReportFilter) ([]registration.Registration, map[uint]event.Event, error) {
	regs, err := s.Repo.GetRegistrations(filter)
	if err != nil {
		return nil, nil, err
	}

	eventIDs := make([]uint, 0, len(regs))
	seen := make(map[uint]bool)
	for _, reg := range regs {
		if !seen[reg.EventID] {
			seen[reg.EventID] = true
			eventIDs = append(eventIDs, reg.EventID)
		}
	}

	events, err := s.Repo.GetEventsByIDs(eventIDs)
	if err != nil {
		return nil, nil, err
	}
	return regs, events, nil
}

// registrationRow flattens one registration through the webhook payload
// normalizer and picks the extracted contact fields out of the result.
func (s *Service) registrationRow(reg registration.Registration, events map[uint]event.Event, labelCache map[uint]webhook.LabelMap) RegistrationReportRow {
	row := RegistrationReportRow{
		ID:            reg.ID,
		Status:        reg.Status,
		WebhookStatus: reg.WebhookStatus,
		Attended:      reg.Attended,
		SubmittedAt:   reg.CreatedAt,
	}

	var meta webhook.EventMeta
	labels := webhook.LabelMap{}
	if e, ok := events[reg.EventID]; ok {
		row.EventTitle = e.Title
		meta = e.Meta()
		if e.FormID != nil {
			labels = s.labelsFor(*e.FormID, labelCache)
		}
	}

	payload := webhook.BuildRegistrationPayload(
		webhook.RegistrationMeta{
			ID:            reg.ID,
			Status:        reg.Status,
			WebhookStatus: reg.WebhookStatus,
			SubmittedAt:   reg.CreatedAt,
		},
		meta,
		map[string]interface{}(reg.FormData),
		labels,
	)

	row.FirstName, _ = payload["first_name"].(string)
	row.LastName, _ = payload["last_name"].(string)
	row.Email, _ = payload["email"].(string)
	return row
}

func (s *Service) labelsFor(formID uint, cache map[uint]webhook.LabelMap) webhook.LabelMap {
	if labels, ok := cache[formID]; ok {
		return labels
	}

	labels := webhook.LabelMap{}
	if f, err := s.FormRepo.GetFormByID(formID); err == nil {
		if fields, err := f.FieldList(); err == nil {
			labels = webhook.BuildLabelMap(fields)
		}
	}
	cache[formID] = labels
	return labels
}
