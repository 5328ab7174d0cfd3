package spider

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/wonny/stockspider/internal/domain/spider"
	"github.com/wonny/stockspider/internal/pkg/docquery"
)

// GetLatestFundPositionsRatio 기관 보유 비율 합계 (占流通股比例 %) 및 기관 수
//
// Missing disclosure is a normal outcome: any failure after the code is
// validated, fetch failures included, yields a zero result. The cause is logged
// and recorded as a degraded fetch.
func (s *Service) GetLatestFundPositionsRatio(ctx context.Context, code spider.SecurityCode) (spider.FundPositions, error) {
	if err := code.Validate(); err != nil {
		return spider.FundPositions{}, err
	}

	start := s.now()
	positions, err := s.latestFundPositions(ctx, code)
	if err != nil {
		log.Debug().
			Err(err).
			Str("code", code.String()).
			Msg("No institutional positions, returning zero result")
		s.recordDegradedErr(ctx, spider.OperationFundPositions, code, SourceJQKA, start, err)
		return spider.FundPositions{}, nil
	}

	s.recordSuccess(ctx, spider.OperationFundPositions, code, SourceJQKA, start, "", positions.Institutions)

	log.Debug().
		Str("code", code.String()).
		Float64("ratio_sum", positions.RatioSum).
		Int("institutions", positions.Institutions).
		Msg("Resolved fund positions")

	return positions, nil
}

func (s *Service) latestFundPositions(ctx context.Context, code spider.SecurityCode) (spider.FundPositions, error) {
	page, err := s.fetcher.FetchPositions(ctx, code)
	if err != nil {
		return spider.FundPositions{}, fmt.Errorf("fetch positions %s: %w", code, err)
	}

	doc, err := parseDocument(page)
	if err != nil {
		return spider.FundPositions{}, err
	}

	return aggregatePositions(doc)
}

// aggregatePositions sums 占流通股比例 over every disclosed institution.
// An unparseable ratio counts the institution with a zero contribution.
func aggregatePositions(doc *goquery.Document) (spider.FundPositions, error) {
	rows := positionRowsQuery.EvalDocument(doc)
	if !rows.Found() {
		return spider.FundPositions{}, fmt.Errorf("%w: %s", spider.ErrSchemaNotFound, positionRowsQuery.Name)
	}

	sum := decimal.Zero
	count := 0
	var rowErr error

	rows.Each(func(i int, row docquery.Result) {
		if rowErr != nil {
			return
		}

		cells := row.Cells("td")
		if len(cells) <= positionRatioCol {
			rowErr = fmt.Errorf("%w: position row %d has %d cells", spider.ErrSchemaNotFound, i, len(cells))
			return
		}

		if ratio, ok := spider.ParseFloat(strings.TrimSuffix(cells[positionRatioCol], "%")); ok {
			sum = sum.Add(decimal.NewFromFloat(ratio))
		}
		count++
	})
	if rowErr != nil {
		return spider.FundPositions{}, rowErr
	}

	return spider.FundPositions{
		RatioSum:     sum.InexactFloat64(),
		Institutions: count,
	}, nil
}
