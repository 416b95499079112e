package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"csvdesk/internal/config"
	"csvdesk/internal/dataprocessing"
	"csvdesk/internal/infrastructure"
)

// Mailer is the slice of the mail transport this service needs.
type Mailer interface {
	Configured() bool
	Send(ctx context.Context, to, subject, body string) error
}

// CSVService orchestrates the table pipeline for one stored upload:
// loading, previewing, filtering, export encoding, deletion simulation
// and the emailed summary.
type CSVService struct {
	cfg     *config.Config
	mailer  Mailer
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// NewCSVService creates a new CSV service.
func NewCSVService(cfg *config.Config, mailer Mailer, metrics *infrastructure.Metrics, logger *slog.Logger) *CSVService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVService{cfg: cfg, mailer: mailer, metrics: metrics, logger: logger}
}

// columns returns the configured filter column names.
func (s *CSVService) columns() dataprocessing.Columns {
	return dataprocessing.Columns{
		Date:     s.cfg.Columns.Date,
		Category: s.cfg.Columns.Category,
	}
}

// Load reads the stored upload back into a table.
func (s *CSVService) Load(path string) (*dataprocessing.Table, error) {
	t, err := dataprocessing.Load(path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("table loaded",
		slog.String("path", path),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Headers())))
	return t, nil
}

// Preview returns the slice of the table the browser renders.
func (s *CSVService) Preview(t *dataprocessing.Table) *dataprocessing.Table {
	return t.Head(config.PreviewRows)
}

// Filter narrows the table by the given clauses using the configured
// column names. See dataprocessing.Filter for the result contract.
func (s *CSVService) Filter(t *dataprocessing.Table, spec dataprocessing.FilterSpec) *dataprocessing.FilterResult {
	result := dataprocessing.Filter(t, spec, s.columns())
	s.logger.Info("filter applied",
		slog.Int("input_rows", t.Len()),
		slog.Int("output_rows", result.Count()),
		slog.Int("warnings", len(result.Warnings)))
	return result
}

// ExportCSV encodes a table for download and names the attachment after
// the upload it came from.
func (s *CSVService) ExportCSV(t *dataprocessing.Table, sourceFilename string) ([]byte, string, error) {
	data, err := dataprocessing.Encode(t)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode table: %w", err)
	}
	return data, "filtered_" + sourceFilename, nil
}

// SimulateDelete returns the rows that would remain if the filtered rows
// were removed. The stored upload is never modified.
func (s *CSVService) SimulateDelete(original *dataprocessing.Table, filtered *dataprocessing.FilterResult) *dataprocessing.Table {
	return dataprocessing.Complement(original, filtered)
}

// SummaryBody renders the per-date record counts as the plain-text mail
// body. When the table cannot be summarized the body explains why instead
// of failing; the notification is still worth sending.
func (s *CSVService) SummaryBody(t *dataprocessing.Table, sourceFilename string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summary of records by date for %s\n\n", sourceFilename)

	report, err := dataprocessing.Summarize(t, s.cfg.Columns.Date)
	if err != nil {
		var missing *dataprocessing.MissingColumnError
		switch {
		case errors.As(err, &missing):
			fmt.Fprintf(&b, "Column %q was not found, so no summary could be produced.\n", missing.Column)
		default:
			fmt.Fprintf(&b, "No rows contained a readable %s value, so no summary could be produced.\n", s.cfg.Columns.Date)
		}
		return b.String()
	}

	b.WriteString(report.String())
	fmt.Fprintf(&b, "\nTotal records: %d\n", report.Total())
	if report.Excluded > 0 {
		fmt.Fprintf(&b, "%d row(s) had an unreadable %s value and were excluded.\n", report.Excluded, s.cfg.Columns.Date)
	}
	return b.String()
}

// EmailSummary sends the date-grouped summary of the table to the
// recipient. Delivery errors come back classified by the mail package.
func (s *CSVService) EmailSummary(ctx context.Context, recipient string, t *dataprocessing.Table, sourceFilename string) error {
	subject := fmt.Sprintf("Daily record summary for %s", sourceFilename)
	body := s.SummaryBody(t, sourceFilename)

	if err := s.mailer.Send(ctx, recipient, subject, body); err != nil {
		s.metrics.EmailsFailed.Inc()
		return err
	}
	s.metrics.EmailsSent.Inc()
	return nil
}
