package spider

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/stockspider/internal/domain/spider"
)

// ErrFetchLogDisabled no fetch log repository configured
var ErrFetchLogDisabled = errors.New("fetch log disabled")

// =============================================================================
// Recording
// =============================================================================

func (s *Service) recordSuccess(ctx context.Context, op spider.Operation, code spider.SecurityCode, source string, start time.Time, strategy string, items int) {
	s.record(ctx, op, code, source, start, spider.FetchStatusSuccess, strategy, items, nil)
}

func (s *Service) recordDegraded(ctx context.Context, op spider.Operation, code spider.SecurityCode, source string, start time.Time, strategy string, items int) {
	s.record(ctx, op, code, source, start, spider.FetchStatusDegraded, strategy, items, nil)
}

func (s *Service) recordDegradedErr(ctx context.Context, op spider.Operation, code spider.SecurityCode, source string, start time.Time, cause error) {
	s.record(ctx, op, code, source, start, spider.FetchStatusDegraded, "", 0, cause)
}

func (s *Service) recordFailure(ctx context.Context, op spider.Operation, code spider.SecurityCode, source string, start time.Time, cause error) {
	s.record(ctx, op, code, source, start, spider.FetchStatusFailed, "", 0, cause)
}

// record writes one fetch log row; repository errors are logged, never returned
func (s *Service) record(ctx context.Context, op spider.Operation, code spider.SecurityCode, source string, start time.Time, status, strategy string, items int, cause error) {
	if s.fetchLogRepo == nil {
		return
	}

	finished := s.now()
	duration := int(finished.Sub(start).Milliseconds())

	entry := &spider.FetchLog{
		Operation:  op,
		Code:       code.String(),
		Source:     source,
		Status:     status,
		ItemCount:  items,
		StartedAt:  start,
		FinishedAt: &finished,
		DurationMs: &duration,
	}
	if strategy != "" {
		entry.Strategy = &strategy
	}
	if cause != nil {
		msg := cause.Error()
		entry.ErrorMessage = &msg
	}

	if _, err := s.fetchLogRepo.Create(ctx, entry); err != nil {
		log.Warn().
			Err(err).
			Str("operation", string(op)).
			Str("code", code.String()).
			Msg("Failed to record fetch log")
	}
}

// =============================================================================
// Queries
// =============================================================================

// RecentFetchLogs 최근 수집 로그
func (s *Service) RecentFetchLogs(ctx context.Context, limit int) ([]*spider.FetchLog, error) {
	if s.fetchLogRepo == nil {
		return nil, ErrFetchLogDisabled
	}
	if limit <= 0 {
		limit = 50
	}
	return s.fetchLogRepo.GetRecent(ctx, limit)
}

// FetchLogsByCode 종목별 수집 로그
func (s *Service) FetchLogsByCode(ctx context.Context, code spider.SecurityCode, from, to time.Time) ([]*spider.FetchLog, error) {
	if s.fetchLogRepo == nil {
		return nil, ErrFetchLogDisabled
	}
	if err := code.Validate(); err != nil {
		return nil, err
	}
	return s.fetchLogRepo.GetByCode(ctx, code.String(), from, to)
}
