package spider

import "fmt"

// reportAliases canonical indicator -> 10jqka report title
var reportAliases = map[Indicator]string{
	IndicatorRevenueYoY:       "营业总收入同比增长率",
	IndicatorNetProfitYoY:     "净利润同比增长率",
	IndicatorEPS:              "基本每股收益",
	IndicatorCashFlowPerShare: "每股经营现金流",
}

// ReportIndicators report-table vocabulary
var ReportIndicators = []Indicator{
	IndicatorRevenueYoY,
	IndicatorNetProfitYoY,
	IndicatorEPS,
	IndicatorCashFlowPerShare,
}

// ReportAlias returns the provider label for a canonical indicator
func ReportAlias(name Indicator) (string, bool) {
	alias, ok := reportAliases[name]
	return alias, ok
}

// TranslateIndicators maps every requested indicator to its provider label.
// A single unknown name fails the whole request so results stay aligned.
func TranslateIndicators(names []Indicator) ([]string, error) {
	labels := make([]string, 0, len(names))
	for _, name := range names {
		alias, ok := reportAliases[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, string(name))
		}
		labels = append(labels, alias)
	}
	return labels, nil
}
