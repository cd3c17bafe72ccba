package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/diewo77/go-workhours/i18n"
)

// utf8BOM lets spreadsheet applications detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Export is a rendered CSV artifact.
type Export struct {
	Filename string
	Body     []byte
}

// Exporter renders a month's preview as CSV.
type Exporter struct {
	aggregator *Aggregator
}

func NewExporter(aggregator *Aggregator) *Exporter {
	return &Exporter{aggregator: aggregator}
}

// ExportCSV renders month with headers in lang. A month without lines is ErrNothingToInvoice.
func (e *Exporter) ExportCSV(ctx context.Context, month, lang string) (*Export, error) {
	preview, err := e.aggregator.Preview(ctx, month)
	if err != nil {
		return nil, err
	}
	if len(preview.Lines) == 0 {
		return nil, opErr("export", preview.Month, ErrNothingToInvoice, nil)
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	header := []string{
		i18n.T(lang, "csv.management_no"),
		i18n.T(lang, "csv.work_content"),
		i18n.T(lang, "csv.actual_hours"),
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, line := range preview.Lines {
		if err := w.Write([]string{line.ManagementNo, line.MachineNo, line.ActualHours.String()}); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return &Export{
		Filename: fmt.Sprintf("invoice_%s.csv", preview.Month),
		Body:     buf.Bytes(),
	}, nil
}
