package spider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/wonny/stockspider/internal/domain/spider"
	"github.com/wonny/stockspider/internal/pkg/docquery"
)

// GetLatestRealFreeShares 실제 유통 A주 (亿股)
//
// The top-ten holders strategy subtracts holders without a cost basis from the
// free float. When the holder table or the 总股本 table is absent (new listings),
// the equity chart alone is used and nothing is treated as locked.
func (s *Service) GetLatestRealFreeShares(ctx context.Context, code spider.SecurityCode) (*spider.RealFreeShares, error) {
	if err := code.Validate(); err != nil {
		return nil, err
	}

	start := s.now()
	result, err := s.latestRealFreeShares(ctx, code)
	if err != nil {
		s.recordFailure(ctx, spider.OperationFreeShares, code, SourceJQKA, start, err)
		return nil, err
	}

	if result.Strategy == spider.StrategyEquityOnly {
		s.recordDegraded(ctx, spider.OperationFreeShares, code, SourceJQKA, start, string(result.Strategy), 1)
	} else {
		s.recordSuccess(ctx, spider.OperationFreeShares, code, SourceJQKA, start, string(result.Strategy), 1)
	}

	log.Debug().
		Str("code", code.String()).
		Float64("shares", result.Shares).
		Str("share_types", result.ShareTypes).
		Str("strategy", string(result.Strategy)).
		Msg("Resolved real free shares")

	return result, nil
}

func (s *Service) latestRealFreeShares(ctx context.Context, code spider.SecurityCode) (*spider.RealFreeShares, error) {
	holdersPage, err := s.fetcher.FetchHolders(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("fetch holders %s: %w", code, err)
	}

	equityPage, err := s.fetcher.FetchEquity(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("fetch equity %s: %w", code, err)
	}

	equity, err := parseDocument(equityPage)
	if err != nil {
		return nil, fmt.Errorf("equity %s: %w", code, err)
	}

	result, err := resolveTopHolders(holdersPage, equity)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, spider.ErrSchemaNotFound) && !errors.Is(err, spider.ErrParse) {
		return nil, err
	}

	log.Warn().
		Err(err).
		Str("code", code.String()).
		Msg("Top holders unavailable, falling back to equity structure")

	result, err = resolveEquityOnly(equity)
	if err != nil {
		return nil, fmt.Errorf("equity %s: %w", code, err)
	}
	return result, nil
}

// resolveTopHolders free float from 股本结构 minus locked top-ten holders
func resolveTopHolders(holdersPage string, equity *goquery.Document) (*spider.RealFreeShares, error) {
	holders, err := parseDocument(holdersPage)
	if err != nil {
		return nil, err
	}

	records, err := extractShareholders(holders)
	if err != nil {
		return nil, err
	}

	locked, shareTypes, err := spider.LockedHoldings(records)
	if err != nil {
		return nil, err
	}

	free, err := extractQuantity(equityFreeSharesQuery, equity)
	if err != nil {
		return nil, err
	}

	return &spider.RealFreeShares{
		Shares:       spider.RealFreeSharesInYi(free, locked),
		ShareTypes:   shareTypes,
		FreeShares:   free,
		LockedShares: locked,
		Strategy:     spider.StrategyTopHolders,
	}, nil
}

// resolveEquityOnly free float from the A股结构图 table, nothing locked
func resolveEquityOnly(equity *goquery.Document) (*spider.RealFreeShares, error) {
	free, err := extractQuantity(equityChartFreeSharesQuery, equity)
	if err != nil {
		return nil, err
	}

	return &spider.RealFreeShares{
		Shares:       spider.RealFreeSharesInYi(free, 0),
		ShareTypes:   spider.DefaultShareType,
		FreeShares:   free,
		LockedShares: 0,
		Strategy:     spider.StrategyEquityOnly,
	}, nil
}

// extractShareholders reads the top-ten free-float holders table
func extractShareholders(doc *goquery.Document) ([]spider.ShareholderRecord, error) {
	table := holderTableQuery.EvalDocument(doc)
	if !table.Found() {
		return nil, fmt.Errorf("%w: %s", spider.ErrSchemaNotFound, holderTableQuery.Name)
	}

	hasCost := holderCostColumnQuery.Eval(table).Found()
	typeCol := holderShareTypeCol
	if hasCost {
		typeCol = holderShareTypeColWithCost
	}

	rows := holderRowsQuery.Eval(table)
	if !rows.Found() {
		return nil, fmt.Errorf("%w: %s", spider.ErrSchemaNotFound, holderRowsQuery.Name)
	}

	var (
		records []spider.ShareholderRecord
		rowErr  error
	)
	rows.Each(func(i int, row docquery.Result) {
		if rowErr != nil {
			return
		}

		cells := row.Cells("td")
		if len(cells) <= typeCol {
			rowErr = fmt.Errorf("%w: holder row %d has %d cells", spider.ErrSchemaNotFound, i, len(cells))
			return
		}

		record := spider.ShareholderRecord{
			Quantity:  cells[holderQuantityCol],
			ShareType: cells[typeCol],
		}
		if hasCost {
			if cost, ok := spider.ParseFloat(cells[holderCostCol]); ok {
				record.Cost = &cost
			}
		}
		records = append(records, record)
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return records, nil
}

func extractQuantity(q docquery.Query, doc *goquery.Document) (float64, error) {
	res := q.EvalDocument(doc)
	if !res.Found() {
		return 0, fmt.Errorf("%w: %s", spider.ErrSchemaNotFound, q.Name)
	}
	return spider.ParseShareQuantity(res.Text())
}

func parseDocument(raw string) (*goquery.Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty document", spider.ErrSchemaNotFound)
	}

	doc, err := docquery.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", spider.ErrSchemaNotFound, err)
	}
	return doc, nil
}
