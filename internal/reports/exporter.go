package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ReportExporter defines the interface for exporting reports in different formats
type ReportExporter interface {
	Export(reportType, format string, data ReportData) ([]byte, string, string, error)
}

type reportExporter struct{}

func NewReportExporter() ReportExporter {
	return &reportExporter{}
}

func (e *reportExporter) Export(reportType, format string, data ReportData) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch reportType {
	case ReportTypeRegistrations:
		return e.exportRegistrationsByFormat(format, timestamp, data.Registrations)
	case ReportTypeAttendance:
		return e.exportAttendanceByFormat(format, timestamp, data.Attendance)
	case ReportTypeEvents:
		return e.exportEventsByFormat(format, timestamp, data.Events)
	default:
		return nil, "", "", fmt.Errorf("unsupported report type: %s", reportType)
	}
}

//// ============================
/// REGISTRATION EXPORTS
//// ============================

func (e *reportExporter) exportRegistrationsByFormat(format, timestamp string, rows []RegistrationReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatCSV:
		data, err := e.exportRegistrationsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("registrations_report_%s.csv", timestamp), "text/csv", nil
	case FormatExcel:
		data, err := e.exportRegistrationsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("registrations_report_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatPDF:
		data, err := e.exportRegistrationsPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("registrations_report_%s.pdf", timestamp), "application/pdf", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported format for registrations: %s", format)
	}
}

var registrationHeaders = []string{"ID", "Event", "First Name", "Last Name", "Email", "Status", "Webhook Status", "Attended", "Submitted At"}

func registrationRecord(r RegistrationReportRow) []string {
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.EventTitle,
		r.FirstName,
		r.LastName,
		r.Email,
		r.Status,
		r.WebhookStatus,
		strconv.FormatBool(r.Attended),
		r.SubmittedAt.Format("2006-01-02 15:04:05"),
	}
}

func (e *reportExporter) exportRegistrationsCSV(rows []RegistrationReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(registrationHeaders); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := writer.Write(registrationRecord(r)); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportRegistrationsExcel(rows []RegistrationReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Registrations"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for i, h := range registrationHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, r := range rows {
		record := registrationRecord(r)
		for colIdx, value := range record {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportRegistrationsPDF(rows []RegistrationReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "") // Landscape for more columns
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Registrations Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	widths := []float64{15, 50, 30, 30, 55, 25, 30, 20, 40}
	for i, h := range registrationHeaders {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		record := registrationRecord(r)
		for i, value := range record {
			pdf.CellFormat(widths[i], 6, value, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//// ============================
/// ATTENDANCE EXPORTS
//// ============================

func (e *reportExporter) exportAttendanceByFormat(format, timestamp string, rows []AttendanceReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatCSV:
		data, err := e.exportAttendanceCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("attendance_report_%s.csv", timestamp), "text/csv", nil
	case FormatExcel:
		data, err := e.exportAttendanceExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("attendance_report_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatPDF:
		data, err := e.exportAttendancePDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("attendance_report_%s.pdf", timestamp), "application/pdf", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported format for attendance: %s", format)
	}
}

var attendanceHeaders = []string{"ID", "Event", "First Name", "Last Name", "Email", "Attended", "Notes", "Submitted At"}

func attendanceRecord(r AttendanceReportRow) []string {
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.EventTitle,
		r.FirstName,
		r.LastName,
		r.Email,
		strconv.FormatBool(r.Attended),
		r.AttendanceNotes,
		r.SubmittedAt.Format("2006-01-02 15:04:05"),
	}
}

func (e *reportExporter) exportAttendanceCSV(rows []AttendanceReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(attendanceHeaders); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := writer.Write(attendanceRecord(r)); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportAttendanceExcel(rows []AttendanceReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Attendance"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for i, h := range attendanceHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, r := range rows {
		record := attendanceRecord(r)
		for colIdx, value := range record {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportAttendancePDF(rows []AttendanceReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Attendance Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	widths := []float64{15, 55, 30, 30, 55, 20, 50, 40}
	for i, h := range attendanceHeaders {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		record := attendanceRecord(r)
		for i, value := range record {
			pdf.CellFormat(widths[i], 6, value, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//// ============================
/// EVENT EXPORTS
//// ============================

func (e *reportExporter) exportEventsByFormat(format, timestamp string, rows []EventReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatCSV:
		data, err := e.exportEventsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("events_report_%s.csv", timestamp), "text/csv", nil
	case FormatExcel:
		data, err := e.exportEventsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("events_report_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatPDF:
		data, err := e.exportEventsPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("events_report_%s.pdf", timestamp), "application/pdf", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported format for events: %s", format)
	}
}

var eventHeaders = []string{"ID", "Title", "Date", "Location", "Capacity", "Confirmed", "Pending", "Attended", "Remaining"}

func eventRecord(r EventReportRow) []string {
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.Title,
		r.EventDate.Format("2006-01-02"),
		r.Location,
		strconv.Itoa(r.Capacity),
		strconv.Itoa(r.Confirmed),
		strconv.Itoa(r.Pending),
		strconv.Itoa(r.Attended),
		strconv.Itoa(r.Remaining),
	}
}

func (e *reportExporter) exportEventsCSV(rows []EventReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(eventHeaders); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := writer.Write(eventRecord(r)); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportEventsExcel(rows []EventReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Events"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for i, h := range eventHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, r := range rows {
		record := eventRecord(r)
		for colIdx, value := range record {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportEventsPDF(rows []EventReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Events Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	widths := []float64{15, 70, 30, 60, 22, 25, 22, 22, 25}
	for i, h := range eventHeaders {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		record := eventRecord(r)
		for i, value := range record {
			pdf.CellFormat(widths[i], 6, value, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
