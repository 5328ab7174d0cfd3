package spider

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/stockspider/internal/domain/spider"
)

// Data sources recorded in the fetch log
const (
	SourceJQKA    = "jqka"
	SourceTushare = "tushare"
)

// Service 종목 데이터 수집 서비스
//
// Holds every collaborator explicitly; the company reference table is built on
// first use and shared by all later calls.
type Service struct {
	fetcher      spider.DocumentFetcher
	company      *CompanyReferenceCache
	fetchLogRepo spider.FetchLogRepository // nil disables the fetch log

	now func() time.Time
}

// NewService 서비스 생성
func NewService(
	fetcher spider.DocumentFetcher,
	reference spider.ReferenceTableAPI,
	fetchLogRepo spider.FetchLogRepository,
) *Service {
	return &Service{
		fetcher:      fetcher,
		company:      NewCompanyReferenceCache(reference),
		fetchLogRepo: fetchLogRepo,
		now:          time.Now,
	}
}

// =============================================================================
// Finance Report
// =============================================================================

// GetLatestFinanceReport 최근 재무 지표
//
// Returns one value per requested indicator in request order; an indicator
// missing from the report yields nil. Unknown indicators, fetch failures and a
// malformed report fail the call.
func (s *Service) GetLatestFinanceReport(ctx context.Context, code spider.SecurityCode, indicators []spider.Indicator) ([]*float64, error) {
	if err := code.Validate(); err != nil {
		return nil, err
	}

	labels, err := spider.TranslateIndicators(indicators)
	if err != nil {
		return nil, err
	}

	start := s.now()
	values, err := s.latestFinanceReport(ctx, code, labels)
	if err != nil {
		s.recordFailure(ctx, spider.OperationFinanceReport, code, SourceJQKA, start, err)
		return nil, err
	}

	found := 0
	for _, v := range values {
		if v != nil {
			found++
		}
	}
	s.recordSuccess(ctx, spider.OperationFinanceReport, code, SourceJQKA, start, "", found)

	log.Debug().
		Str("code", code.String()).
		Int("requested", len(indicators)).
		Int("found", found).
		Msg("Resolved finance report")

	return values, nil
}

func (s *Service) latestFinanceReport(ctx context.Context, code spider.SecurityCode, labels []string) ([]*float64, error) {
	data, err := s.fetcher.FetchFinanceReport(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("fetch finance report %s: %w", code, err)
	}

	table, err := spider.DecodeReportTable(data)
	if err != nil {
		return nil, fmt.Errorf("finance report %s: %w", code, err)
	}

	return table.LatestValues(labels), nil
}
