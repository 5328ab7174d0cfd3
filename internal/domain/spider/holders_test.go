package spider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func costOf(v float64) *float64 { return &v }

func TestLockedHoldings(t *testing.T) {
	records := []ShareholderRecord{
		{Quantity: "9.62亿股", Cost: nil, ShareType: "流通A股"},
		{Quantity: "450.76万股", Cost: costOf(12.3), ShareType: "流通A股"},
		{Quantity: "1.02亿股", Cost: nil, ShareType: "流通A股,流通H股"},
		{Quantity: "100万股", Cost: nil, ShareType: "流通H股"},
	}

	locked, types, err := LockedHoldings(records)
	require.NoError(t, err)
	assert.InDelta(t, 96200.0+10200.0+100.0, locked, 1e-9)
	assert.Equal(t, "A股H股", types)
}

func TestLockedHoldings_NoLockedHolders(t *testing.T) {
	records := []ShareholderRecord{
		{Quantity: "450.76万股", Cost: costOf(8.1), ShareType: "流通A股"},
	}

	locked, types, err := LockedHoldings(records)
	require.NoError(t, err)
	assert.Equal(t, 0.0, locked)
	assert.Equal(t, "", types)
}

func TestLockedHoldings_BadQuantity(t *testing.T) {
	_, _, err := LockedHoldings([]ShareholderRecord{{Quantity: "--", ShareType: "流通A股"}})
	assert.ErrorIs(t, err, ErrParse)
}

func TestShareTypeSuffix(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"流通A股", "A股"},
		{" 流通B股 ", "B股"},
		{"限售流通A股", "流通A股"},
		{"A股", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ShareTypeSuffix(tt.tag))
		})
	}
}
