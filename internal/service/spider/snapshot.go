package spider

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/wonny/stockspider/internal/domain/spider"
)

// GetSnapshot runs every operation for one code in turn.
// A failing part leaves its error text in the snapshot and never hides the others.
func (s *Service) GetSnapshot(ctx context.Context, code spider.SecurityCode) (*spider.Snapshot, error) {
	if err := code.Validate(); err != nil {
		return nil, err
	}

	snap := &spider.Snapshot{
		Code:      code,
		FetchedAt: s.now(),
	}

	report, err := s.GetLatestFinanceReport(ctx, code, spider.ReportIndicators)
	if err != nil {
		snap.ReportError = err.Error()
	} else {
		snap.ReportNames = spider.ReportIndicators
		snap.Report = report
	}

	// always succeeds once the code is valid
	snap.Positions, _ = s.GetLatestFundPositionsRatio(ctx, code)

	freeShares, err := s.GetLatestRealFreeShares(ctx, code)
	if err != nil {
		snap.FreeSharesErr = err.Error()
	} else {
		snap.FreeShares = freeShares
	}

	company, err := s.GetCompanyInfo(ctx, code, spider.CompanyIndicators)
	if err != nil {
		snap.CompanyError = err.Error()
	} else {
		snap.Company = company
	}

	log.Info().
		Str("code", code.String()).
		Bool("report", snap.ReportError == "").
		Bool("free_shares", snap.FreeSharesErr == "").
		Bool("company", snap.CompanyError == "").
		Msg("Snapshot collected")

	return snap, nil
}
