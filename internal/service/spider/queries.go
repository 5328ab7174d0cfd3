package spider

import "github.com/wonny/stockspider/internal/pkg/docquery"

// =============================================================================
// 10jqka document queries
// =============================================================================
//
// Every extraction from a 10jqka page lives here. When the provider changes its
// markup, update the steps below; the resolvers only consume Found/NotFound.

// holder.html (股东研究)
var (
	// top-ten free-float holders table
	holderTableQuery = docquery.New("holder table",
		docquery.Find("span", "十大流通股东"), docquery.Up(3),
		docquery.Find("th", "机构或基金名称"), docquery.Up(3),
	)

	// presence shifts the share type column from 4 to 5
	holderCostColumnQuery = docquery.New("holder cost column",
		docquery.FindText("机构成本估算(元)"),
	)

	holderRowsQuery = docquery.New("holder rows",
		docquery.First("tbody"), docquery.All("tr"),
	)
)

// holder row <td> layout
const (
	holderQuantityCol          = 0 // 持有数量
	holderCostCol              = 3 // 机构成本估算(元)
	holderShareTypeCol         = 4 // 股份类型, without cost column
	holderShareTypeColWithCost = 5 // 股份类型, with cost column
)

// equity.html (股本结构)
var (
	// primary: 流通A股 row of the 总股本 table
	equityFreeSharesQuery = docquery.New("equity free shares",
		docquery.Find("span", "总股本"), docquery.Up(3),
		docquery.Find("span", "流通A股"), docquery.Up(2),
		docquery.First("td"),
	)

	// fallback for new listings: 流通A股 row under the A股结构图 heading
	equityChartFreeSharesQuery = docquery.New("equity chart free shares",
		docquery.Find("h2", "A股结构图"), docquery.Up(2),
		docquery.FindText("流通A股"), docquery.Up(1),
		docquery.First("td"),
	)
)

// position.html (机构持股)
var positionRowsQuery = docquery.New("position rows",
	docquery.Find("h2", "机构持股明细"), docquery.Up(2),
	docquery.Find("th", "占流通股比例"), docquery.Up(3),
	docquery.First("tbody"), docquery.All("tr"),
)

// position row <td> layout
const positionRatioCol = 3 // 占流通股比例, e.g. "1.25%"
