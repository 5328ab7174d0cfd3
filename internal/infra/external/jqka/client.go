package jqka

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/time/rate"

	"github.com/wonny/stockspider/internal/domain/spider"
)

const (
	// DefaultBaseURL 同花顺 F10 basic site
	DefaultBaseURL = "http://basic.10jqka.com.cn"

	// DefaultTimeout HTTP timeout
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit requests per second
	DefaultRateLimit = 5

	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

var metaCharsetRe = regexp.MustCompile(`(?i)<meta[^>]+charset=["']?([a-z0-9_-]+)`)

// Client 10jqka 문서 수집 클라이언트
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
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
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: defaultUserAgent,
		limiter:   rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// =============================================================================
// URLs
// =============================================================================

// ReportURL flash finance report
func (c *Client) ReportURL(code spider.SecurityCode) string {
	return fmt.Sprintf("%s/%s/flash/main.txt", c.baseURL, code.Symbol())
}

// PositionsURL institutional positions page
func (c *Client) PositionsURL(code spider.SecurityCode) string {
	return fmt.Sprintf("%s/16/%s/position.html", c.baseURL, code.Symbol())
}

// HoldersURL shareholder research page
func (c *Client) HoldersURL(code spider.SecurityCode) string {
	return fmt.Sprintf("%s/16/%s/holder.html", c.baseURL, code.Symbol())
}

// EquityURL equity structure page
func (c *Client) EquityURL(code spider.SecurityCode) string {
	return fmt.Sprintf("%s/16/%s/equity.html", c.baseURL, code.Symbol())
}

// =============================================================================
// spider.DocumentFetcher
// =============================================================================

// FetchFinanceReport 财务报表 JSON
func (c *Client) FetchFinanceReport(ctx context.Context, code spider.SecurityCode) ([]byte, error) {
	return c.fetch(ctx, c.ReportURL(code))
}

// FetchPositions 机构持股 page
func (c *Client) FetchPositions(ctx context.Context, code spider.SecurityCode) (string, error) {
	body, err := c.fetch(ctx, c.PositionsURL(code))
	return string(body), err
}

// FetchHolders 股东研究 page
func (c *Client) FetchHolders(ctx context.Context, code spider.SecurityCode) (string, error) {
	body, err := c.fetch(ctx, c.HoldersURL(code))
	return string(body), err
}

// FetchEquity 股本结构 page
func (c *Client) FetchEquity(ctx context.Context, code spider.SecurityCode) (string, error) {
	body, err := c.fetch(ctx, c.EquityURL(code))
	return string(body), err
}

// fetch GET url and return the UTF-8 body
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", spider.ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", spider.ErrFetch, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %v", spider.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: unexpected status: %d", spider.ErrFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", spider.ErrFetch, err)
	}

	if isGBK(resp.Header.Get("Content-Type"), body) {
		decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(body)
		if err != nil {
			return nil, fmt.Errorf("%w: decode gbk: %v", spider.ErrFetch, err)
		}
		body = decoded
	}

	log.Debug().
		Str("url", url).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("Fetched document from 10jqka")

	return body, nil
}

// isGBK checks the Content-Type header first, then a <meta charset> in the head
func isGBK(contentType string, body []byte) bool {
	if cs := charsetOf(contentType); cs != "" {
		return isGBKName(cs)
	}

	head := body
	if len(head) > 2048 {
		head = head[:2048]
	}
	if m := metaCharsetRe.FindSubmatch(head); m != nil {
		return isGBKName(string(bytes.ToLower(m[1])))
	}
	return false
}

func charsetOf(contentType string) string {
	for _, part := range strings.Split(contentType, ";") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "charset") {
			return strings.ToLower(strings.Trim(kv[1], `"' `))
		}
	}
	return ""
}

func isGBKName(cs string) bool {
	switch strings.ToLower(cs) {
	case "gbk", "gb2312", "gb18030", "x-gbk":
		return true
	}
	return false
}
