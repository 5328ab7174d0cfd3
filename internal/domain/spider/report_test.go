package spider

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeTable(t *testing.T, doc string) *ReportTable {
	t.Helper()
	table, err := DecodeReportTable([]byte(doc))
	require.NoError(t, err)
	return table
}

func TestReportTable_LatestValue(t *testing.T) {
	table := decodeTable(t, `{
		"title": ["header", ["净利润同比增长率", "%"]],
		"report": [[null], [12.5, 9.1]]
	}`)

	t.Run("most recent period", func(t *testing.T) {
		v := table.LatestValue("净利润同比增长率")
		require.NotNil(t, v)
		assert.Equal(t, 12.5, *v)
	})

	t.Run("absent label", func(t *testing.T) {
		assert.Nil(t, table.LatestValue("基本每股收益"))
	})

	t.Run("plain header never matches", func(t *testing.T) {
		assert.Equal(t, -1, table.Position("header"))
		assert.Nil(t, table.LatestValue("header"))
	})
}

func TestReportTable_FirstMatchWins(t *testing.T) {
	table := decodeTable(t, `{
		"title": [["基本每股收益", "元"], ["基本每股收益", "元"]],
		"report": [["0.8"], ["0.9"]]
	}`)

	assert.Equal(t, 0, table.Position("基本每股收益"))
	v := table.LatestValue("基本每股收益")
	require.NotNil(t, v)
	assert.Equal(t, 0.8, *v)
}

func TestReportTable_Coercion(t *testing.T) {
	table := decodeTable(t, `{
		"title": [["a", ""], ["b", ""], ["c", ""], ["d", ""], ["e", ""], ["f", ""]],
		"report": [["1.5"], ["--"], [false], [], "oops", [" -2,000.25 ", "1"]]
	}`)

	values := table.LatestValues([]string{"a", "b", "c", "d", "e", "f"})
	require.Len(t, values, 6)

	require.NotNil(t, values[0])
	assert.Equal(t, 1.5, *values[0])
	assert.Nil(t, values[1], "placeholder text")
	assert.Nil(t, values[2], "boolean")
	assert.Nil(t, values[3], "no periods")
	assert.Nil(t, values[4], "row is not a list")
	require.NotNil(t, values[5])
	assert.Equal(t, -2000.25, *values[5])
}

func TestReportTable_RowOutOfRange(t *testing.T) {
	table := decodeTable(t, `{
		"title": ["header", ["基本每股收益", "元"]],
		"report": [[null]]
	}`)

	assert.Equal(t, 1, table.Position("基本每股收益"))
	assert.Nil(t, table.LatestValue("基本每股收益"))
}

func TestReportTable_PositionOrderInvariant(t *testing.T) {
	type row struct {
		title  interface{}
		report []interface{}
	}
	rows := []row{
		{"按报告期", []interface{}{nil}},
		{[]interface{}{"基本每股收益", "元"}, []interface{}{"1.23", "1.10"}},
		{[]interface{}{"净利润同比增长率", "%"}, []interface{}{"12.5", "9.1"}},
		{[]interface{}{"营业总收入同比增长率", "%"}, []interface{}{"-3.4", "2.0"}},
		{[]interface{}{"每股经营现金流", "元"}, []interface{}{"0.56", "0.40"}},
	}

	build := func(order []int) *ReportTable {
		var titles, reports []interface{}
		for _, i := range order {
			titles = append(titles, rows[i].title)
			reports = append(reports, rows[i].report)
		}
		data, err := json.Marshal(map[string]interface{}{"title": titles, "report": reports})
		require.NoError(t, err)
		return decodeTable(t, string(data))
	}

	labels, err := TranslateIndicators(ReportIndicators)
	require.NoError(t, err)

	base := build([]int{0, 1, 2, 3, 4}).LatestValues(labels)
	for _, order := range [][]int{{4, 3, 2, 1, 0}, {2, 0, 4, 1, 3}, {1, 4, 0, 3, 2}} {
		assert.Equal(t, base, build(order).LatestValues(labels), "order %v", order)
	}

	require.NotNil(t, base[2])
	assert.Equal(t, 1.23, *base[2])
}

func TestDecodeReportTable_Malformed(t *testing.T) {
	for _, doc := range []string{`not json`, `{"title": []}`, `{"report": []}`, `[]`} {
		_, err := DecodeReportTable([]byte(doc))
		assert.True(t, errors.Is(err, ErrSchemaNotFound), "doc %s", doc)
	}
}
