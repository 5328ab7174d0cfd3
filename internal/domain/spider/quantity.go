package spider

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const hundredMillionGlyph = "亿"

var (
	numeralRe = regexp.MustCompile(`\d*\.?\d+`)

	// 1亿 = 10000万
	wanPerYi = decimal.NewFromInt(10000)
)

// ParseShareQuantity 수량 문자열 파싱, 단위: 万股
//
//	"45.22万股" -> 45.22
//	"1.02亿股"  -> 10200
//	"234.44"    -> 234.44
func ParseShareQuantity(s string) (float64, error) {
	d, err := parseShareQuantity(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// parseShareQuantity keeps decimal precision for callers doing further arithmetic
func parseShareQuantity(s string) (decimal.Decimal, error) {
	numeral := numeralRe.FindString(s)
	if numeral == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrParse, s)
	}

	quantity, err := decimal.NewFromString(numeral)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrParse, s, err)
	}

	if strings.Contains(s, hundredMillionGlyph) {
		quantity = quantity.Mul(wanPerYi)
	}

	return quantity, nil
}

// RealFreeSharesInYi (free - locked) 万股 -> 亿股
func RealFreeSharesInYi(freeShares, lockedShares float64) float64 {
	free := decimal.NewFromFloat(freeShares)
	locked := decimal.NewFromFloat(lockedShares)
	return free.Sub(locked).Div(wanPerYi).InexactFloat64()
}

// ParseFloat best-effort numeric coercion; ok is false when s is not a number
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}
