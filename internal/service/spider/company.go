package spider

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/wonny/stockspider/internal/domain/spider"
)

// reference table columns
const (
	fieldCode         = "ts_code"
	fieldIndustry     = "industry"
	fieldMainBusiness = "main_business"

	listStatusListed = "L"
)

// stock_company is exchange scoped
var companyExchanges = []string{"SSE", "SZSE"}

// CompanyReferenceCache 업종 + 주요사업 기준 테이블
//
// Built once on first use by inner-joining stock_basic with stock_company on
// ts_code. A successful build is never refreshed; a failed build is retried
// by the next caller.
type CompanyReferenceCache struct {
	api spider.ReferenceTableAPI

	mu     sync.RWMutex
	loaded bool
	rows   map[string]spider.CompanyReferenceRow

	// Singleflight to prevent concurrent builds
	sf     singleflight.Group
	builds int
}

// NewCompanyReferenceCache 캐시 생성
func NewCompanyReferenceCache(api spider.ReferenceTableAPI) *CompanyReferenceCache {
	return &CompanyReferenceCache{api: api}
}

// Lookup returns the merged row for code, building the table if needed
func (c *CompanyReferenceCache) Lookup(ctx context.Context, code string) (spider.CompanyReferenceRow, bool, error) {
	rows, err := c.table(ctx)
	if err != nil {
		return spider.CompanyReferenceRow{}, false, err
	}

	row, ok := rows[code]
	return row, ok, nil
}

// Len number of merged rows, zero before the first build
func (c *CompanyReferenceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// Builds number of completed merges
func (c *CompanyReferenceCache) Builds() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.builds
}

func (c *CompanyReferenceCache) table(ctx context.Context) (map[string]spider.CompanyReferenceRow, error) {
	c.mu.RLock()
	if c.loaded {
		rows := c.rows
		c.mu.RUnlock()
		return rows, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.sf.Do("build", func() (interface{}, error) {
		return c.build(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]spider.CompanyReferenceRow), nil
}

func (c *CompanyReferenceCache) build(ctx context.Context) (map[string]spider.CompanyReferenceRow, error) {
	// Double-check: a build may have finished while waiting
	c.mu.RLock()
	if c.loaded {
		rows := c.rows
		c.mu.RUnlock()
		return rows, nil
	}
	c.mu.RUnlock()

	if c.api == nil {
		return nil, fmt.Errorf("%w: no reference client", spider.ErrReferenceUnavailable)
	}

	industries, err := c.api.StockBasic(ctx, "", listStatusListed, fieldCode, fieldIndustry)
	if err != nil {
		return nil, fmt.Errorf("stock_basic: %w", err)
	}

	var businesses []spider.ReferenceRow
	for _, exchange := range companyExchanges {
		rows, err := c.api.StockCompany(ctx, exchange, fieldCode, fieldMainBusiness)
		if err != nil {
			return nil, fmt.Errorf("stock_company %s: %w", exchange, err)
		}
		businesses = append(businesses, rows...)
	}

	rows := mergeCompanyRows(industries, businesses)

	c.mu.Lock()
	c.rows = rows
	c.loaded = true
	c.builds++
	c.mu.Unlock()

	log.Info().
		Int("industries", len(industries)).
		Int("businesses", len(businesses)).
		Int("merged", len(rows)).
		Msg("Company reference table built")

	return rows, nil
}

// mergeCompanyRows inner join on ts_code; the first row of a duplicated code wins
func mergeCompanyRows(industries, businesses []spider.ReferenceRow) map[string]spider.CompanyReferenceRow {
	mainBusiness := make(map[string]string, len(businesses))
	for _, row := range businesses {
		code := row[fieldCode]
		if code == "" {
			continue
		}
		if _, dup := mainBusiness[code]; !dup {
			mainBusiness[code] = row[fieldMainBusiness]
		}
	}

	merged := make(map[string]spider.CompanyReferenceRow, len(industries))
	for _, row := range industries {
		code := row[fieldCode]
		business, ok := mainBusiness[code]
		if !ok {
			continue
		}
		if _, dup := merged[code]; dup {
			continue
		}
		merged[code] = spider.CompanyReferenceRow{
			Code:         code,
			Industry:     row[fieldIndustry],
			MainBusiness: business,
		}
	}
	return merged
}

// =============================================================================
// Service operation
// =============================================================================

// GetCompanyInfo 업종 / 주요사업 조회
//
// Names outside the company vocabulary are dropped, so callers must align values
// with the returned Names rather than their request. A code absent from the table
// yields nil values.
func (s *Service) GetCompanyInfo(ctx context.Context, code spider.SecurityCode, indicators []spider.Indicator) (*spider.CompanyInfo, error) {
	start := s.now()

	names := make([]spider.Indicator, 0, len(indicators))
	for _, name := range indicators {
		if spider.IsCompanyIndicator(name) {
			names = append(names, name)
		}
	}

	row, ok, err := s.company.Lookup(ctx, code.String())
	if err != nil {
		s.recordFailure(ctx, spider.OperationCompanyInfo, code, SourceTushare, start, err)
		return nil, err
	}

	info := &spider.CompanyInfo{
		Names:  names,
		Values: make([]*string, len(names)),
	}
	if ok {
		for i, name := range names {
			if v, known := row.Value(name); known {
				value := v
				info.Values[i] = &value
			}
		}
	}

	s.recordSuccess(ctx, spider.OperationCompanyInfo, code, SourceTushare, start, "", len(names))

	log.Debug().
		Str("code", code.String()).
		Bool("listed", ok).
		Int("fields", len(names)).
		Msg("Resolved company info")

	return info, nil
}
