package spider

import (
	"fmt"
	"time"
)

// =============================================================================
// Security Code
// =============================================================================

// exchangeSuffixLen length of the exchange suffix (".SZ", ".SH")
const exchangeSuffixLen = 3

// SecurityCode 종목 코드, e.g. "000001.SZ"
type SecurityCode string

// Validate checks the code carries a symbol in front of its exchange suffix
func (c SecurityCode) Validate() error {
	if len(c) <= exchangeSuffixLen {
		return fmt.Errorf("%w: %q", ErrInvalidSecurityCode, string(c))
	}
	return nil
}

// Symbol strips the exchange suffix ("000001.SZ" -> "000001")
func (c SecurityCode) Symbol() string {
	if len(c) <= exchangeSuffixLen {
		return ""
	}
	return string(c[:len(c)-exchangeSuffixLen])
}

func (c SecurityCode) String() string {
	return string(c)
}

// =============================================================================
// Indicators
// =============================================================================

// Indicator canonical indicator name
type Indicator string

// Report-table indicators
const (
	IndicatorRevenueYoY       Indicator = "营业收入YoY(%)"
	IndicatorNetProfitYoY     Indicator = "净利润YoY(%)"
	IndicatorEPS              Indicator = "每股收益(元)"
	IndicatorCashFlowPerShare Indicator = "每股现金流(元)"
)

// Company-reference indicators
const (
	IndicatorIndustry     Indicator = "所属行业"
	IndicatorMainBusiness Indicator = "主营业务"
)

// CompanyIndicators company-reference vocabulary in table column order
var CompanyIndicators = []Indicator{IndicatorIndustry, IndicatorMainBusiness}

// IsCompanyIndicator reports whether name belongs to the company-reference vocabulary
func IsCompanyIndicator(name Indicator) bool {
	for _, ind := range CompanyIndicators {
		if ind == name {
			return true
		}
	}
	return false
}

// =============================================================================
// Shareholder Structure
// =============================================================================

// ShareholderRecord one row of the top-ten free-float holders table
type ShareholderRecord struct {
	Quantity  string   `json:"quantity"`   // 持有数量, e.g. "450.76万股"
	Cost      *float64 `json:"cost"`       // 机构成本估算(元), nil when undisclosed
	ShareType string   `json:"share_type"` // 股份类型, e.g. "流通A股,流通H股"
}

// IsLocked a holder without a disclosed cost basis is treated as a strategic holder
func (r ShareholderRecord) IsLocked() bool {
	return r.Cost == nil
}

// FreeShareStrategy strategy that produced a RealFreeShares result
type FreeShareStrategy string

const (
	StrategyTopHolders FreeShareStrategy = "top_holders"
	StrategyEquityOnly FreeShareStrategy = "equity_only"
)

// DefaultShareType composition assumed when no locked holders are known
const DefaultShareType = "A股"

// RealFreeShares real free-floating A shares
//
// Shares is a lower bound when ShareTypes contains anything besides "A股":
// locked holdings of other share classes are subtracted from the A-share float.
type RealFreeShares struct {
	Shares       float64           `json:"shares"`        // 亿股
	ShareTypes   string            `json:"share_types"`   // e.g. "A股H股"
	FreeShares   float64           `json:"free_shares"`   // 流通A股, 万股
	LockedShares float64           `json:"locked_shares"` // 万股
	Strategy     FreeShareStrategy `json:"strategy"`
}

// =============================================================================
// Institutional Positions
// =============================================================================

// FundPositions 机构持股 summary
type FundPositions struct {
	RatioSum     float64 `json:"ratio_sum"`    // sum of 占流通股比例 (%)
	Institutions int     `json:"institutions"` // number of disclosed institutions
}

// =============================================================================
// Company Reference
// =============================================================================

// ReferenceRow one row returned by the reference table API, keyed by field name
type ReferenceRow map[string]string

// CompanyReferenceRow merged industry + main business row
type CompanyReferenceRow struct {
	Code         string `json:"code"`
	Industry     string `json:"industry"`
	MainBusiness string `json:"main_business"`
}

// Value returns the column for a company-reference indicator
func (r CompanyReferenceRow) Value(name Indicator) (string, bool) {
	switch name {
	case IndicatorIndustry:
		return r.Industry, true
	case IndicatorMainBusiness:
		return r.MainBusiness, true
	}
	return "", false
}

// CompanyInfo matched names with their values, aligned by position
type CompanyInfo struct {
	Names  []Indicator `json:"names"`
	Values []*string   `json:"values"`
}

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot every fact gathered for one security; a failed part leaves its error text
type Snapshot struct {
	Code          SecurityCode    `json:"code"`
	ReportNames   []Indicator     `json:"report_names,omitempty"`
	Report        []*float64      `json:"report,omitempty"`
	ReportError   string          `json:"report_error,omitempty"`
	Positions     FundPositions   `json:"positions"`
	FreeShares    *RealFreeShares `json:"free_shares,omitempty"`
	FreeSharesErr string          `json:"free_shares_error,omitempty"`
	Company       *CompanyInfo    `json:"company,omitempty"`
	CompanyError  string          `json:"company_error,omitempty"`
	FetchedAt     time.Time       `json:"fetched_at"`
}

// =============================================================================
// Fetch Log
// =============================================================================

// Operation public operation name recorded in the fetch log
type Operation string

const (
	OperationFinanceReport Operation = "finance_report"
	OperationFundPositions Operation = "fund_positions"
	OperationFreeShares    Operation = "free_shares"
	OperationCompanyInfo   Operation = "company_info"
)

// FetchLog 수집 실행 로그 (spider.fetch_logs)
type FetchLog struct {
	ID           int64      `json:"id" db:"id"`
	Operation    Operation  `json:"operation" db:"operation"`
	Code         string     `json:"code" db:"code"`
	Source       string     `json:"source" db:"source"` // jqka, tushare
	Status       string     `json:"status" db:"status"` // success, degraded, failed
	Strategy     *string    `json:"strategy" db:"strategy"`
	ItemCount    int        `json:"item_count" db:"item_count"`
	ErrorMessage *string    `json:"error_message" db:"error_message"`
	StartedAt    time.Time  `json:"started_at" db:"started_at"`
	FinishedAt   *time.Time `json:"finished_at" db:"finished_at"`
	DurationMs   *int       `json:"duration_ms" db:"duration_ms"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Fetch log statuses
const (
	FetchStatusSuccess  = "success"
	FetchStatusDegraded = "degraded"
	FetchStatusFailed   = "failed"
)
