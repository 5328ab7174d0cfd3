package jqka

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/wonny/stockspider/internal/domain/spider"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(WithBaseURL(server.URL), WithRateLimit(0))
}

func TestClient_URLs(t *testing.T) {
	c := NewClient(WithBaseURL("http://basic.10jqka.com.cn/"))
	code := spider.SecurityCode("600519.SH")

	assert.Equal(t, "http://basic.10jqka.com.cn/600519/flash/main.txt", c.ReportURL(code))
	assert.Equal(t, "http://basic.10jqka.com.cn/16/600519/position.html", c.PositionsURL(code))
	assert.Equal(t, "http://basic.10jqka.com.cn/16/600519/holder.html", c.HoldersURL(code))
	assert.Equal(t, "http://basic.10jqka.com.cn/16/600519/equity.html", c.EquityURL(code))
}

func TestClient_FetchFinanceReport(t *testing.T) {
	var gotPath, gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(`{"title":[],"report":[]}`))
	})

	body, err := c.FetchFinanceReport(context.Background(), "000001.SZ")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":[],"report":[]}`, string(body))
	assert.Equal(t, "/000001/flash/main.txt", gotPath)
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestClient_DecodesGBK(t *testing.T) {
	page := `<html><body><span>十大流通股东</span></body></html>`
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(page)
	require.NoError(t, err)

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"header charset", "text/html; charset=GBK", encoded},
		{"header gb2312", "text/html; charset=\"gb2312\"", encoded},
		{"meta charset", "text/html", `<meta charset="gbk">` + encoded},
		{"meta http-equiv", "text/html", `<meta http-equiv="Content-Type" content="text/html; charset=gb2312">` + encoded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := c.FetchHolders(context.Background(), "000001.SZ")
			require.NoError(t, err)
			assert.Contains(t, got, "十大流通股东")
		})
	}
}

func TestClient_UTF8Untouched(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<h2>机构持股明细</h2>`))
	})

	got, err := c.FetchPositions(context.Background(), "000001.SZ")
	require.NoError(t, err)
	assert.Equal(t, `<h2>机构持股明细</h2>`, got)
}

func TestClient_FetchErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		calls := 0
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.FetchEquity(context.Background(), "000001.SZ")
		require.Error(t, err)
		assert.ErrorIs(t, err, spider.ErrFetch)
		assert.Equal(t, 1, calls, "no retries")
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		c := NewClient(WithBaseURL(url), WithRateLimit(0))
		_, err := c.FetchEquity(context.Background(), "000001.SZ")
		assert.ErrorIs(t, err, spider.ErrFetch)
		assert.True(t, spider.IsExternalError(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.FetchHolders(ctx, "000001.SZ")
		assert.ErrorIs(t, err, spider.ErrFetch)
	})
}

func TestCharsetOf(t *testing.T) {
	assert.Equal(t, "gbk", charsetOf("text/html; charset=GBK"))
	assert.Equal(t, "utf-8", charsetOf("text/html;charset=utf-8"))
	assert.Equal(t, "", charsetOf("text/html"))
	assert.Equal(t, "", charsetOf(""))
}
