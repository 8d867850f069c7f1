package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// ExportFormat selects the serialisation of exported records.
type ExportFormat string

// Supported export formats.
const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// ParseExportFormat reads a format name, case-insensitively.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportCSV, ExportJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q (want csv or json)", domain.ErrInvalidInput, s)
	}
}

// csvHeader is the column order of CSV exports.
var csvHeader = []string{"ID", "Content", "Created On", "Modified On", "Source", "Session ID", "User ID", "Request ID"}

// ExportLogs writes records to w in the given format.
// CSV content cells hold text payloads verbatim and other payloads as
// compact JSON. JSON output is an indented array.
func ExportLogs(w io.Writer, records []domain.LogRecord, format ExportFormat) error {
	switch format {
	case ExportCSV:
		return exportCSV(w, records)
	case ExportJSON:
		if records == nil {
			records = []domain.LogRecord{}
		}
		return exportJSON(w, records)
	default:
		return fmt.Errorf("%w: unsupported export format %q", domain.ErrInvalidInput, format)
	}
}

// ExportInferenceTree writes tree to w as indented JSON.
func ExportInferenceTree(w io.Writer, tree *domain.InferenceTree) error {
	return exportJSON(w, tree)
}

// ExportFileName returns the default file name for an export made at now.
func ExportFileName(format ExportFormat, now time.Time) string {
	return fmt.Sprintf("agentops-logs-%d.%s", now.UnixMilli(), format)
}

func exportCSV(w io.Writer, records []domain.LogRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		content, err := csvContent(r.Content)
		if err != nil {
			return fmt.Errorf("encode content of %q: %w", r.ID, err)
		}
		row := []string{r.ID, content, r.CreatedOn, r.ModifiedOn, r.Source, r.SessionID, r.UserID, r.RequestID}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %q: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func csvContent(c domain.Content) (string, error) {
	switch c.Kind() {
	case domain.ContentText:
		text, _ := c.Text()
		return text, nil
	case domain.ContentNone:
		return "", nil
	default:
		b, err := json.Marshal(c)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func exportJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
