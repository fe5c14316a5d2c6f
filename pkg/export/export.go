// Package export renders lead sets as CSV or Excel downloads
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jordanlanch/leadboard/pkg/models"
	"github.com/jordanlanch/leadboard/pkg/phone"
	"github.com/xuri/excelize/v2"
)

// Supported formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const sheetName = "Leads"

var headers = []string{
	"ID", "First Name", "Last Name", "Email", "Phone", "Phone (E.164)",
	"Company", "City", "State", "Source", "Status", "Score", "Lead Value",
	"Qualified", "Created At", "Last Activity At",
}

// ParseFormat validates a requested format; empty means CSV
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("invalid format %q: must be csv or xlsx", s)
}

// ContentType returns the MIME type for format
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the attachment name for an export generated at t
func Filename(format string, t time.Time) string {
	return fmt.Sprintf("leads-%s.%s", t.UTC().Format("20060102-150405"), format)
}

// Writer renders leads; phones are normalised with the configured region
type Writer struct {
	phones *phone.Normalizer
}

// NewWriter creates an export writer
func NewWriter(phones *phone.Normalizer) *Writer {
	if phones == nil {
		phones = phone.NewNormalizer("")
	}
	return &Writer{phones: phones}
}

// Write renders leads to w in format
func (x *Writer) Write(w io.Writer, format string, leads []models.Lead) error {
	if format == FormatXLSX {
		return x.WriteXLSX(w, leads)
	}
	return x.WriteCSV(w, leads)
}

// WriteCSV writes a header row followed by one row per lead
func (x *Writer) WriteCSV(w io.Writer, leads []models.Lead) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, lead := range leads {
		if err := writer.Write(x.row(lead)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a single-sheet workbook
func (x *Writer) WriteXLSX(w io.Writer, leads []models.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, lead := range leads {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Phone, x.phones.E164(lead.Phone),
			lead.Company, lead.City, lead.State, lead.Source, lead.Status, lead.Score, lead.LeadValue,
			lead.IsQualified, formatTime(lead.CreatedAt), formatTime(lead.LastActivityAt),
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (x *Writer) row(lead models.Lead) []string {
	return []string{
		lead.ID,
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.Phone,
		x.phones.E164(lead.Phone),
		lead.Company,
		lead.City,
		lead.State,
		lead.Source,
		lead.Status,
		strconv.Itoa(lead.Score),
		strconv.FormatFloat(lead.LeadValue, 'f', 2, 64),
		strconv.FormatBool(lead.IsQualified),
		formatTime(lead.CreatedAt),
		formatTime(lead.LastActivityAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
