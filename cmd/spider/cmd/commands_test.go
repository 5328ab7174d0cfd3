package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockspider/internal/domain/spider"
)

func TestToIndicators(t *testing.T) {
	assert.Equal(t, spider.ReportIndicators, toIndicators(nil, spider.ReportIndicators))
	assert.Equal(t,
		[]spider.Indicator{spider.IndicatorEPS},
		toIndicators([]string{"每股收益(元)"}, spider.ReportIndicators),
	)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer

	compactOut = true
	defer func() { compactOut = false }()

	require.NoError(t, writeJSON(&buf, spider.FundPositions{RatioSum: 2, Institutions: 3}))
	assert.Equal(t, "{\"ratio_sum\":2,\"institutions\":3}\n", buf.String())
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"report", "positions", "free-shares", "company", "snapshot"} {
		assert.True(t, names[want], want)
	}
}

func TestCommandArgs(t *testing.T) {
	rootCmd.SetArgs([]string{"positions"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	defer rootCmd.SetArgs(nil)

	assert.Error(t, rootCmd.Execute())
}
