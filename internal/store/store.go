// Package store persists analysis results in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/solardesk/profit-forecast/internal/analysis"
	"github.com/solardesk/profit-forecast/internal/metrics"
	"github.com/solardesk/profit-forecast/pkg/constants"
	"github.com/solardesk/profit-forecast/pkg/financing"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no analysis is stored for a quotation.
var ErrNotFound = errors.New("analysis not found")

const schema = `
CREATE TABLE IF NOT EXISTS quotation_analyses (
    id               UUID PRIMARY KEY,
    quotation_id     TEXT NOT NULL,
    financing_type   TEXT NOT NULL,
    input            JSONB NOT NULL,
    initial_cost     DOUBLE PRECISION NOT NULL,
    payback_period   DOUBLE PRECISION NOT NULL,
    total_profit_20y DOUBLE PRECISION NOT NULL,
    total_revenue_20y DOUBLE PRECISION NOT NULL,
    total_expense_20y DOUBLE PRECISION NOT NULL,
    roi              DOUBLE PRECISION,
    yearly_data      JSONB NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS quotation_analyses_quotation_idx
    ON quotation_analyses (quotation_id, created_at DESC)`

const selectColumns = `id, quotation_id, financing_type, input, initial_cost, payback_period,
total_profit_20y, total_revenue_20y, total_expense_20y, roi, yearly_data, created_at`

// Record is a stored analysis.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	QuotationID string          `json:"quotationId"`
	Input       analysis.Input  `json:"input"`
	Result      analysis.Result `json:"result"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Repository stores analyses keyed by quotation id. The yearly data of each
// result is kept as an ordered JSONB array.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewRepository wraps a connection pool.
func NewRepository(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{pool: pool, logger: logger}
}

// Connect opens a pool for the given URL and verifies it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the analyses table when it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		q := strings.TrimSpace(stmt)
		if q == "" {
			continue
		}
		if _, err := r.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Save stores a result for a quotation and returns the new record.
func (r *Repository) Save(ctx context.Context, quotationID string, in analysis.Input, result analysis.Result) (Record, error) {
	row, err := newRow(quotationID, in, result)
	if err != nil {
		metrics.StoredAnalyses.WithLabelValues("save", "error").Inc()
		return Record{}, err
	}

	q := `
INSERT INTO quotation_analyses (id, quotation_id, financing_type, input, initial_cost, payback_period,
    total_profit_20y, total_revenue_20y, total_expense_20y, roi, yearly_data)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING created_at
`
	err = r.pool.QueryRow(ctx, q,
		row.id, row.quotationID, row.financingType, row.input, row.initialCost, row.paybackPeriod,
		row.totalProfit, row.totalRevenue, row.totalExpense, row.roi, row.yearlyData,
	).Scan(&row.createdAt)
	if err != nil {
		metrics.StoredAnalyses.WithLabelValues("save", "error").Inc()
		return Record{}, fmt.Errorf("failed to save analysis: %w", err)
	}
	metrics.StoredAnalyses.WithLabelValues("save", "success").Inc()

	r.logger.Debug("analysis saved",
		zap.String("op", "store.Save"),
		zap.String("quotationId", quotationID),
		zap.String("id", row.id.String()),
	)
	return row.record()
}

// Latest returns the most recently saved analysis of a quotation.
func (r *Repository) Latest(ctx context.Context, quotationID string) (Record, error) {
	q := `SELECT ` + selectColumns + ` FROM quotation_analyses WHERE quotation_id = $1 ORDER BY created_at DESC LIMIT 1`

	row, err := scanRow(r.pool.QueryRow(ctx, q, quotationID))
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.StoredAnalyses.WithLabelValues("latest", "not_found").Inc()
		return Record{}, ErrNotFound
	}
	if err != nil {
		metrics.StoredAnalyses.WithLabelValues("latest", "error").Inc()
		return Record{}, fmt.Errorf("failed to load analysis: %w", err)
	}
	metrics.StoredAnalyses.WithLabelValues("latest", "success").Inc()
	return row.record()
}

// List returns up to limit analyses of a quotation, newest first. A
// non-positive limit selects constants.DefaultListedAnalyses.
func (r *Repository) List(ctx context.Context, quotationID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = constants.DefaultListedAnalyses
	}
	q := `SELECT ` + selectColumns + ` FROM quotation_analyses WHERE quotation_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, q, quotationID, limit)
	if err != nil {
		metrics.StoredAnalyses.WithLabelValues("list", "error").Inc()
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		metrics.StoredAnalyses.WithLabelValues("list", "error").Inc()
		return nil, err
	}
	metrics.StoredAnalyses.WithLabelValues("list", "success").Inc()
	return records, nil
}

type analysisRow struct {
	id            uuid.UUID
	quotationID   string
	financingType string
	input         []byte
	initialCost   float64
	paybackPeriod float64
	totalProfit   float64
	totalRevenue  float64
	totalExpense  float64
	roi           *float64
	yearlyData    []byte
	createdAt     time.Time
}

func newRow(quotationID string, in analysis.Input, result analysis.Result) (analysisRow, error) {
	if strings.TrimSpace(quotationID) == "" {
		return analysisRow{}, errors.New("quotation id is required")
	}
	inputJSON, err := json.Marshal(in)
	if err != nil {
		return analysisRow{}, fmt.Errorf("failed to encode input: %w", err)
	}
	yearly := result.YearlyData
	if yearly == nil {
		yearly = []analysis.YearlyData{}
	}
	yearlyJSON, err := json.Marshal(yearly)
	if err != nil {
		return analysisRow{}, fmt.Errorf("failed to encode yearly data: %w", err)
	}

	row := analysisRow{
		id:            uuid.New(),
		quotationID:   quotationID,
		financingType: string(result.FinancingType),
		input:         inputJSON,
		initialCost:   result.InitialCost,
		paybackPeriod: result.PaybackPeriod,
		totalProfit:   result.TotalProfit20y,
		totalRevenue:  result.TotalRevenue20y,
		totalExpense:  result.TotalExpense20y,
		yearlyData:    yearlyJSON,
	}
	if result.ROIDefined {
		roi := result.ROI
		row.roi = &roi
	}
	return row, nil
}

func scanRow(s pgx.Row) (analysisRow, error) {
	var row analysisRow
	err := s.Scan(&row.id, &row.quotationID, &row.financingType, &row.input, &row.initialCost,
		&row.paybackPeriod, &row.totalProfit, &row.totalRevenue, &row.totalExpense, &row.roi,
		&row.yearlyData, &row.createdAt)
	return row, err
}

func (row analysisRow) record() (Record, error) {
	rec := Record{ID: row.id, QuotationID: row.quotationID, CreatedAt: row.createdAt}
	if err := json.Unmarshal(row.input, &rec.Input); err != nil {
		return Record{}, fmt.Errorf("failed to decode input: %w", err)
	}
	if err := json.Unmarshal(row.yearlyData, &rec.Result.YearlyData); err != nil {
		return Record{}, fmt.Errorf("failed to decode yearly data: %w", err)
	}

	rec.Result.FinancingType = financing.Type(row.financingType)
	rec.Result.InitialCost = row.initialCost
	rec.Result.PaybackPeriod = row.paybackPeriod
	rec.Result.TotalProfit20y = row.totalProfit
	rec.Result.TotalRevenue20y = row.totalRevenue
	rec.Result.TotalExpense20y = row.totalExpense
	if row.roi != nil {
		rec.Result.ROI = *row.roi
		rec.Result.ROIDefined = true
	}
	return rec, nil
}
