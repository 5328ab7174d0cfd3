package spider

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/stockspider/internal/domain/spider"
)

// schemaDDL spider.fetch_logs; results themselves are never stored
const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS spider;

	CREATE TABLE IF NOT EXISTS spider.fetch_logs (
		id            BIGSERIAL PRIMARY KEY,
		operation     TEXT        NOT NULL,
		code          TEXT        NOT NULL,
		source        TEXT        NOT NULL,
		status        TEXT        NOT NULL,
		strategy      TEXT,
		item_count    INTEGER     NOT NULL DEFAULT 0,
		error_message TEXT,
		started_at    TIMESTAMPTZ NOT NULL,
		finished_at   TIMESTAMPTZ,
		duration_ms   INTEGER,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_fetch_logs_code_started
		ON spider.fetch_logs (code, started_at DESC);
`

const selectColumns = `
	SELECT id, operation, code, source, status, strategy, item_count,
	       error_message, started_at, finished_at, duration_ms, created_at
	FROM spider.fetch_logs
`

// FetchLogRepository PostgreSQL 구현
type FetchLogRepository struct {
	db *pgxpool.Pool
}

// NewFetchLogRepository 생성자
func NewFetchLogRepository(db *pgxpool.Pool) *FetchLogRepository {
	return &FetchLogRepository{db: db}
}

// EnsureSchema creates the fetch log table when missing
func (r *FetchLogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure fetch log schema: %w", err)
	}
	return nil
}

// Create 로그 생성
func (r *FetchLogRepository) Create(ctx context.Context, log *spider.FetchLog) (*spider.FetchLog, error) {
	query := `
		INSERT INTO spider.fetch_logs (
			operation, code, source, status, strategy, item_count,
			error_message, started_at, finished_at, duration_ms
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		string(log.Operation),
		log.Code,
		log.Source,
		log.Status,
		log.Strategy,
		log.ItemCount,
		log.ErrorMessage,
		log.StartedAt,
		log.FinishedAt,
		log.DurationMs,
	).Scan(&log.ID, &log.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("create fetch log: %w", err)
	}

	return log, nil
}

// GetRecent 최근 로그 조회
func (r *FetchLogRepository) GetRecent(ctx context.Context, limit int) ([]*spider.FetchLog, error) {
	rows, err := r.db.Query(ctx, selectColumns+`
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent fetch logs: %w", err)
	}

	return collectFetchLogs(rows)
}

// GetByCode 종목별 로그 조회 [from, to)
func (r *FetchLogRepository) GetByCode(ctx context.Context, code string, from, to time.Time) ([]*spider.FetchLog, error) {
	rows, err := r.db.Query(ctx, selectColumns+`
		WHERE code = $1 AND started_at >= $2 AND started_at < $3
		ORDER BY started_at DESC
	`, code, from, to)
	if err != nil {
		return nil, fmt.Errorf("get fetch logs by code: %w", err)
	}

	return collectFetchLogs(rows)
}

func collectFetchLogs(rows pgx.Rows) ([]*spider.FetchLog, error) {
	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*spider.FetchLog, error) {
		var (
			log       spider.FetchLog
			operation string
		)
		err := row.Scan(
			&log.ID,
			&operation,
			&log.Code,
			&log.Source,
			&log.Status,
			&log.Strategy,
			&log.ItemCount,
			&log.ErrorMessage,
			&log.StartedAt,
			&log.FinishedAt,
			&log.DurationMs,
			&log.CreatedAt,
		)
		log.Operation = spider.Operation(operation)
		return &log, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan fetch log: %w", err)
	}
	return logs, nil
}
