package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/wonseok/quarters/internal/estimates"
)

// Reserved CSV headers; every other column becomes a named value field.
const (
	csvEntityID      = "entity_id"
	csvKnowledgeTime = "knowledge_time"
	csvEventDate     = "event_date"
	csvFiscalYear    = "fiscal_year"
	csvFiscalQuarter = "fiscal_quarter"
)

// CSVSource reads the report log from a CSV file. Implements
// estimates.Source.
type CSVSource struct {
	path string
}

// NewCSVSource creates a CSV-backed report source.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Fetch parses the file into raw reports. Timestamps accept YYYY-MM-DD or
// RFC 3339.
func (s *CSVSource) Fetch(ctx context.Context) ([]estimates.RawReport, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open report csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read report csv: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("report csv %s is empty", s.path)
	}

	header := records[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, required := range []string{csvEntityID, csvKnowledgeTime, csvEventDate, csvFiscalYear, csvFiscalQuarter} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("report csv %s is missing column %s", s.path, required)
		}
	}

	var reports []estimates.RawReport
	for line, record := range records[1:] {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		report, err := parseCSVRecord(header, index, record)
		if err != nil {
			return nil, fmt.Errorf("report csv %s line %d: %w", s.path, line+2, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func parseCSVRecord(header []string, index map[string]int, record []string) (estimates.RawReport, error) {
	var report estimates.RawReport
	if len(record) != len(header) {
		return report, fmt.Errorf("expected %d fields, got %d", len(header), len(record))
	}

	report.EntityID = record[index[csvEntityID]]

	var err error
	if report.KnowledgeTime, err = parseTimestamp(record[index[csvKnowledgeTime]]); err != nil {
		return report, fmt.Errorf("knowledge_time: %w", err)
	}
	if report.EventDate, err = parseTimestamp(record[index[csvEventDate]]); err != nil {
		return report, fmt.Errorf("event_date: %w", err)
	}
	if report.FiscalYear, err = strconv.Atoi(record[index[csvFiscalYear]]); err != nil {
		return report, fmt.Errorf("fiscal_year: %w", err)
	}
	if report.FiscalQuarter, err = strconv.Atoi(record[index[csvFiscalQuarter]]); err != nil {
		return report, fmt.Errorf("fiscal_quarter: %w", err)
	}

	report.Values = make(map[string]float64)
	for i, name := range header {
		switch name {
		case csvEntityID, csvKnowledgeTime, csvEventDate, csvFiscalYear, csvFiscalQuarter:
			continue
		}
		if record[i] == "" {
			continue
		}
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return report, fmt.Errorf("%s: %w", name, err)
		}
		report.Values[name] = v
	}
	return report, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
