package tushare

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockspider/internal/domain/spider"
)

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(token, WithBaseURL(server.URL), WithRateLimit(0))
}

func TestClient_StockBasic(t *testing.T) {
	var got Request
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{
			"code": 0, "msg": "",
			"data": {
				"fields": ["ts_code", "industry", "list_date"],
				"items": [
					["000001.SZ", "银行", 19910403],
					["600519.SH", null, 20010827]
				]
			}
		}`))
	})

	rows, err := c.StockBasic(context.Background(), "", "L", "ts_code", "industry", "list_date")
	require.NoError(t, err)

	assert.Equal(t, "stock_basic", got.APIName)
	assert.Equal(t, "secret", got.Token)
	assert.Equal(t, "ts_code,industry,list_date", got.Fields)
	assert.Equal(t, map[string]string{"exchange": "", "list_status": "L"}, got.Params)

	require.Len(t, rows, 2)
	assert.Equal(t, spider.ReferenceRow{"ts_code": "000001.SZ", "industry": "银行", "list_date": "19910403"}, rows[0])
	assert.Equal(t, "", rows[1]["industry"])
}

func TestClient_StockCompany(t *testing.T) {
	var got Request
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"code":0,"msg":"","data":{"fields":["ts_code","main_business"],"items":[["600519.SH","茅台酒及系列酒的生产与销售"]]}}`))
	})

	rows, err := c.StockCompany(context.Background(), ExchangeSSE, "ts_code", "main_business")
	require.NoError(t, err)

	assert.Equal(t, "stock_company", got.APIName)
	assert.Equal(t, map[string]string{"exchange": "SSE"}, got.Params)
	require.Len(t, rows, 1)
	assert.Equal(t, "茅台酒及系列酒的生产与销售", rows[0]["main_business"])
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, "bad", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":40101,"msg":"token invalid","data":null}`))
	})

	_, err := c.StockBasic(context.Background(), "", "L", "ts_code")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 40101, apiErr.Code)
	assert.Equal(t, "token invalid", apiErr.Msg)
	assert.ErrorIs(t, err, spider.ErrFetch)
}

func TestClient_HTTPError(t *testing.T) {
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	})

	_, err := c.StockCompany(context.Background(), ExchangeSZSE, "ts_code")
	assert.ErrorIs(t, err, spider.ErrFetch)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_MissingToken(t *testing.T) {
	called := false
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.StockBasic(context.Background(), "", "L", "ts_code")
	assert.ErrorIs(t, err, spider.ErrReferenceUnavailable)
	assert.False(t, called)
}

func TestClient_EmptyData(t *testing.T) {
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"msg":""}`))
	})

	rows, err := c.StockBasic(context.Background(), "", "L", "ts_code")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
