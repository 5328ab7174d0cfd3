package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wonny/stockspider/internal/api/response"
	"github.com/wonny/stockspider/internal/domain/spider"
)

// dateLayout from/to query format
const dateLayout = "2006-01-02"

// defaultLogWindow fetch-log range when from is omitted
const defaultLogWindow = 7 * 24 * time.Hour

// SpiderService operations exposed over HTTP
type SpiderService interface {
	GetLatestFinanceReport(ctx context.Context, code spider.SecurityCode, indicators []spider.Indicator) ([]*float64, error)
	GetLatestFundPositionsRatio(ctx context.Context, code spider.SecurityCode) (spider.FundPositions, error)
	GetLatestRealFreeShares(ctx context.Context, code spider.SecurityCode) (*spider.RealFreeShares, error)
	GetCompanyInfo(ctx context.Context, code spider.SecurityCode, indicators []spider.Indicator) (*spider.CompanyInfo, error)
	GetSnapshot(ctx context.Context, code spider.SecurityCode) (*spider.Snapshot, error)
	RecentFetchLogs(ctx context.Context, limit int) ([]*spider.FetchLog, error)
	FetchLogsByCode(ctx context.Context, code spider.SecurityCode, from, to time.Time) ([]*spider.FetchLog, error)
}

// SpiderHandler handles /api/v1/stocks requests
type SpiderHandler struct {
	svc SpiderService
	now func() time.Time
}

// NewSpiderHandler creates a new SpiderHandler
func NewSpiderHandler(svc SpiderService) *SpiderHandler {
	return &SpiderHandler{svc: svc, now: time.Now}
}

// ReportResponse indicator values aligned with names
type ReportResponse struct {
	Code   spider.SecurityCode `json:"code"`
	Names  []spider.Indicator  `json:"names"`
	Values []*float64          `json:"values"`
}

// PositionsResponse institutional holdings summary
type PositionsResponse struct {
	Code spider.SecurityCode `json:"code"`
	spider.FundPositions
}

// FreeSharesResponse real free float
type FreeSharesResponse struct {
	Code spider.SecurityCode `json:"code"`
	*spider.RealFreeShares
}

// CompanyResponse matched company-reference fields
type CompanyResponse struct {
	Code spider.SecurityCode `json:"code"`
	*spider.CompanyInfo
}

// GetReport handles GET /api/v1/stocks/:code/report?indicators=a,b
func (h *SpiderHandler) GetReport(c *gin.Context) {
	code := spider.SecurityCode(c.Param("code"))

	names := splitIndicators(c.Query("indicators"))
	if len(names) == 0 {
		names = append(names, spider.ReportIndicators...)
	}

	values, err := h.svc.GetLatestFinanceReport(c.Request.Context(), code, names)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, ReportResponse{Code: code, Names: names, Values: values})
}

// GetPositions handles GET /api/v1/stocks/:code/positions
func (h *SpiderHandler) GetPositions(c *gin.Context) {
	code := spider.SecurityCode(c.Param("code"))

	positions, err := h.svc.GetLatestFundPositionsRatio(c.Request.Context(), code)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, PositionsResponse{Code: code, FundPositions: positions})
}

// GetFreeShares handles GET /api/v1/stocks/:code/free-shares
func (h *SpiderHandler) GetFreeShares(c *gin.Context) {
	code := spider.SecurityCode(c.Param("code"))

	shares, err := h.svc.GetLatestRealFreeShares(c.Request.Context(), code)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, FreeSharesResponse{Code: code, RealFreeShares: shares})
}

// GetCompany handles GET /api/v1/stocks/:code/company?fields=a,b
func (h *SpiderHandler) GetCompany(c *gin.Context) {
	code := spider.SecurityCode(c.Param("code"))

	names := splitIndicators(c.Query("fields"))
	if len(names) == 0 {
		names = append(names, spider.CompanyIndicators...)
	}

	info, err := h.svc.GetCompanyInfo(c.Request.Context(), code, names)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, CompanyResponse{Code: code, CompanyInfo: info})
}

// GetSnapshot handles GET /api/v1/stocks/:code/snapshot
func (h *SpiderHandler) GetSnapshot(c *gin.Context) {
	snapshot, err := h.svc.GetSnapshot(c.Request.Context(), spider.SecurityCode(c.Param("code")))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, snapshot)
}

// ListFetchLogs handles GET /api/v1/fetch-logs?limit=50
func (h *SpiderHandler) ListFetchLogs(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			response.ErrorWithDetails(c, http.StatusBadRequest, response.ErrCodeInvalidParameter,
				"Invalid limit", "limit must be a positive integer")
			return
		}
		limit = l
	}

	logs, err := h.svc.RecentFetchLogs(c.Request.Context(), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessList(c, logs, len(logs))
}

// ListFetchLogsByCode handles GET /api/v1/stocks/:code/fetch-logs?from=2024-08-01&to=2024-08-31
//
// to is inclusive as a date; the window defaults to the last seven days.
func (h *SpiderHandler) ListFetchLogsByCode(c *gin.Context) {
	code := spider.SecurityCode(c.Param("code"))

	from, to, err := h.parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.ErrCodeInvalidParameter,
			"Invalid date range", err.Error())
		return
	}

	logs, err := h.svc.FetchLogsByCode(c.Request.Context(), code, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessList(c, logs, len(logs))
}

func (h *SpiderHandler) parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	to := h.now()
	if toStr != "" {
		day, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("to must be YYYY-MM-DD: %w", err)
		}
		to = day.AddDate(0, 0, 1)
	}

	from := to.Add(-defaultLogWindow)
	if fromStr != "" {
		day, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("from must be YYYY-MM-DD: %w", err)
		}
		from = day
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("from must be before to")
	}
	return from, to, nil
}

// splitIndicators parses a comma-separated list, dropping blanks
func splitIndicators(raw string) []spider.Indicator {
	var names []spider.Indicator
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, spider.Indicator(part))
		}
	}
	return names
}
