package spider

import (
	"context"
	"time"
)

// =============================================================================
// External Client Interfaces
// =============================================================================

// DocumentFetcher 10jqka 문서 수집 클라이언트
// Every method returns UTF-8 text; network and HTTP failures wrap ErrFetch.
type DocumentFetcher interface {
	// 财务报表 flash JSON (main.txt)
	FetchFinanceReport(ctx context.Context, code SecurityCode) ([]byte, error)

	// 机构持股 page (position.html)
	FetchPositions(ctx context.Context, code SecurityCode) (string, error)

	// 股东研究 page (holder.html)
	FetchHolders(ctx context.Context, code SecurityCode) (string, error)

	// 股本结构 page (equity.html)
	FetchEquity(ctx context.Context, code SecurityCode) (string, error)
}

// ReferenceTableAPI 기준 데이터 API (TuShare Pro)
type ReferenceTableAPI interface {
	// 上市公司基本信息 (stock_basic)
	StockBasic(ctx context.Context, exchange, listStatus string, fields ...string) ([]ReferenceRow, error)

	// 上市公司基础信息 (stock_company)
	StockCompany(ctx context.Context, exchange string, fields ...string) ([]ReferenceRow, error)
}

// =============================================================================
// FetchLog Repository
// =============================================================================

// FetchLogRepository 수집 실행 로그 저장소 (spider.fetch_logs)
type FetchLogRepository interface {
	// Create 로그 생성
	Create(ctx context.Context, log *FetchLog) (*FetchLog, error)

	// Query 로그 조회
	GetRecent(ctx context.Context, limit int) ([]*FetchLog, error)
	GetByCode(ctx context.Context, code string, from, to time.Time) ([]*FetchLog, error)
}
