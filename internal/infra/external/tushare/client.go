package tushare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/wonny/stockspider/internal/domain/spider"
)

const (
	// DefaultBaseURL TuShare Pro HTTP endpoint
	DefaultBaseURL = "http://api.tushare.pro"

	// DefaultTimeout HTTP timeout
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit requests per second
	DefaultRateLimit = 2
)

// Exchanges accepted by stock_company
const (
	ExchangeSSE  = "SSE"
	ExchangeSZSE = "SZSE"
)

// Client TuShare Pro 클라이언트
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// WithRateLimit sets requests per second; zero or less disables throttling
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient 클라이언트 생성
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// =============================================================================
// API Types
// =============================================================================

// Request TuShare Pro request body
type Request struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

// Response TuShare Pro response body
type Response struct {
	Code int           `json:"code"`
	Msg  string        `json:"msg"`
	Data *ResponseData `json:"data"`
}

// ResponseData column names plus row values
type ResponseData struct {
	Fields []string        `json:"fields"`
	Items  [][]interface{} `json:"items"`
}

// APIError non-zero response code
type APIError struct {
	APIName string
	Code    int
	Msg     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tushare %s: code %d: %s", e.APIName, e.Code, e.Msg)
}

// Unwrap lets errors.Is(err, spider.ErrFetch) match
func (e *APIError) Unwrap() error {
	return spider.ErrFetch
}

// =============================================================================
// spider.ReferenceTableAPI
// =============================================================================

// StockBasic 股票列表 (stock_basic)
// exchange "" means every exchange; listStatus L/D/P.
func (c *Client) StockBasic(ctx context.Context, exchange, listStatus string, fields ...string) ([]spider.ReferenceRow, error) {
	params := map[string]string{
		"exchange":    exchange,
		"list_status": listStatus,
	}
	return c.Query(ctx, "stock_basic", params, fields...)
}

// StockCompany 上市公司基本信息 (stock_company)
func (c *Client) StockCompany(ctx context.Context, exchange string, fields ...string) ([]spider.ReferenceRow, error) {
	params := map[string]string{
		"exchange": exchange,
	}
	return c.Query(ctx, "stock_company", params, fields...)
}

// Query calls any TuShare Pro API and returns rows keyed by field name
func (c *Client) Query(ctx context.Context, apiName string, params map[string]string, fields ...string) ([]spider.ReferenceRow, error) {
	if c.token == "" {
		return nil, fmt.Errorf("%w: tushare token not configured", spider.ErrReferenceUnavailable)
	}

	resp, err := c.post(ctx, Request{
		APIName: apiName,
		Token:   c.token,
		Params:  params,
		Fields:  strings.Join(fields, ","),
	})
	if err != nil {
		return nil, err
	}

	if resp.Code != 0 {
		return nil, &APIError{APIName: apiName, Code: resp.Code, Msg: resp.Msg}
	}
	if resp.Data == nil {
		return nil, nil
	}

	rows := make([]spider.ReferenceRow, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		row := make(spider.ReferenceRow, len(resp.Data.Fields))
		for i, field := range resp.Data.Fields {
			if i < len(item) {
				row[field] = cellString(item[i])
			}
		}
		rows = append(rows, row)
	}

	log.Debug().
		Str("api", apiName).
		Interface("params", params).
		Int("rows", len(rows)).
		Msg("Fetched reference table from TuShare")

	return rows, nil
}

func (c *Client) post(ctx context.Context, body Request) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", spider.ErrFetch, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", spider.ErrFetch, err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %v", spider.ErrFetch, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("%w: tushare %s: unexpected status: %d: %s",
			spider.ErrFetch, body.APIName, httpResp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var resp Response
	dec := json.NewDecoder(httpResp.Body)
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", spider.ErrFetch, err)
	}

	return &resp, nil
}

func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(val)
	}
}
