package spider

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wonny/stockspider/internal/domain/spider"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

// =============================================================================
// DocumentFetcher fake
// =============================================================================

type fakeFetcher struct {
	mu sync.Mutex

	report    string
	holders   string
	equity    string
	positions string

	reportErr    error
	holdersErr   error
	equityErr    error
	positionsErr error

	calls map[string]int
}

func (f *fakeFetcher) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeFetcher) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeFetcher) FetchFinanceReport(ctx context.Context, code spider.SecurityCode) ([]byte, error) {
	f.hit("report")
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	return []byte(f.report), nil
}

func (f *fakeFetcher) FetchPositions(ctx context.Context, code spider.SecurityCode) (string, error) {
	f.hit("positions")
	return f.positions, f.positionsErr
}

func (f *fakeFetcher) FetchHolders(ctx context.Context, code spider.SecurityCode) (string, error) {
	f.hit("holders")
	return f.holders, f.holdersErr
}

func (f *fakeFetcher) FetchEquity(ctx context.Context, code spider.SecurityCode) (string, error) {
	f.hit("equity")
	return f.equity, f.equityErr
}

// =============================================================================
// ReferenceTableAPI fake
// =============================================================================

type fakeReference struct {
	mu sync.Mutex

	basic   []spider.ReferenceRow
	company map[string][]spider.ReferenceRow
	err     error
	delay   time.Duration

	basicCalls   int
	companyCalls int
}

func (f *fakeReference) StockBasic(ctx context.Context, exchange, listStatus string, fields ...string) ([]spider.ReferenceRow, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.basicCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.basic, nil
}

func (f *fakeReference) StockCompany(ctx context.Context, exchange string, fields ...string) ([]spider.ReferenceRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.companyCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.company[exchange], nil
}

func (f *fakeReference) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeReference) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.basicCalls, f.companyCalls
}

// =============================================================================
// FetchLogRepository fake
// =============================================================================

type memoryFetchLogRepo struct {
	mu   sync.Mutex
	logs []*spider.FetchLog
	err  error
}

func (r *memoryFetchLogRepo) Create(ctx context.Context, log *spider.FetchLog) (*spider.FetchLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	created := *log
	created.ID = int64(len(r.logs) + 1)
	created.CreatedAt = log.StartedAt
	r.logs = append(r.logs, &created)
	return &created, nil
}

func (r *memoryFetchLogRepo) GetRecent(ctx context.Context, limit int) ([]*spider.FetchLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*spider.FetchLog
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.logs[i])
	}
	return out, nil
}

func (r *memoryFetchLogRepo) GetByCode(ctx context.Context, code string, from, to time.Time) ([]*spider.FetchLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*spider.FetchLog
	for _, l := range r.logs {
		if l.Code == code && !l.StartedAt.Before(from) && l.StartedAt.Before(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memoryFetchLogRepo) entries() []*spider.FetchLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*spider.FetchLog(nil), r.logs...)
}

// =============================================================================
// Service
// =============================================================================

// newTestService wires fakes; ref and repo may be nil
func newTestService(f *fakeFetcher, ref *fakeReference, repo *memoryFetchLogRepo) *Service {
	var api spider.ReferenceTableAPI
	if ref != nil {
		api = ref
	}
	var logs spider.FetchLogRepository
	if repo != nil {
		logs = repo
	}

	svc := NewService(f, api, logs)
	fixed := time.Date(2024, 8, 30, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc
}
