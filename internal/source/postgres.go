package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonseok/quarters/internal/estimates"
)

// ReportRepository is the PostgreSQL-backed report-log collaborator.
// ⭐ SSOT: 리포트 영속화는 이 저장소에서만
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new report repository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Fetch retrieves the full report log in knowledge-time order. Implements
// estimates.Source.
func (r *ReportRepository) Fetch(ctx context.Context) ([]estimates.RawReport, error) {
	query := `
		SELECT entity_id, knowledge_time, event_date, fiscal_year, fiscal_quarter, values
		FROM estimates.analyst_reports
		ORDER BY knowledge_time ASC, id ASC
	`
	return r.fetch(ctx, query)
}

// FetchRange retrieves reports whose knowledge time falls within [from, to].
func (r *ReportRepository) FetchRange(ctx context.Context, from, to time.Time) ([]estimates.RawReport, error) {
	query := `
		SELECT entity_id, knowledge_time, event_date, fiscal_year, fiscal_quarter, values
		FROM estimates.analyst_reports
		WHERE knowledge_time BETWEEN $1 AND $2
		ORDER BY knowledge_time ASC, id ASC
	`
	return r.fetch(ctx, query, from, to)
}

// FetchByEntity retrieves one entity's reports in knowledge-time order.
func (r *ReportRepository) FetchByEntity(ctx context.Context, entityID string) ([]estimates.RawReport, error) {
	query := `
		SELECT entity_id, knowledge_time, event_date, fiscal_year, fiscal_quarter, values
		FROM estimates.analyst_reports
		WHERE entity_id = $1
		ORDER BY knowledge_time ASC, id ASC
	`
	return r.fetch(ctx, query, entityID)
}

func (r *ReportRepository) fetch(ctx context.Context, query string, args ...interface{}) ([]estimates.RawReport, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []estimates.RawReport
	for rows.Next() {
		var (
			report estimates.RawReport
			values []byte
		)
		if err := rows.Scan(
			&report.EntityID, &report.KnowledgeTime, &report.EventDate,
			&report.FiscalYear, &report.FiscalQuarter, &values,
		); err != nil {
			return nil, err
		}
		if len(values) > 0 {
			if err := json.Unmarshal(values, &report.Values); err != nil {
				return nil, fmt.Errorf("decode values for %s: %w", report.EntityID, err)
			}
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// Save saves a single report revision.
func (r *ReportRepository) Save(ctx context.Context, report estimates.RawReport) error {
	values, err := json.Marshal(report.Values)
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}

	query := `
		INSERT INTO estimates.analyst_reports
			(entity_id, knowledge_time, event_date, fiscal_year, fiscal_quarter, values)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (entity_id, fiscal_year, fiscal_quarter, knowledge_time) DO UPDATE SET
			event_date = EXCLUDED.event_date,
			values = EXCLUDED.values
	`

	_, err = r.pool.Exec(ctx, query,
		report.EntityID, report.KnowledgeTime, report.EventDate,
		report.FiscalYear, report.FiscalQuarter, values,
	)
	return err
}

// SaveBatch saves multiple report revisions.
func (r *ReportRepository) SaveBatch(ctx context.Context, reports []estimates.RawReport) error {
	if len(reports) == 0 {
		return nil
	}

	for _, report := range reports {
		if err := r.Save(ctx, report); err != nil {
			return err
		}
	}
	return nil
}
