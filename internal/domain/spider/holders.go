package spider

import (
	"strings"

	"github.com/shopspring/decimal"
)

// shareTypePrefixLen leading runes dropped from a share type tag ("流通A股" -> "A股")
const shareTypePrefixLen = 2

// LockedHoldings totals holders without a disclosed cost basis.
//
// Quantities are summed in 万股. Each locked holder's comma-separated share type
// tags contribute their suffix to the composition string in first-seen order,
// skipping any suffix already contained in it.
func LockedHoldings(records []ShareholderRecord) (float64, string, error) {
	locked := decimal.Zero
	var types strings.Builder

	for _, r := range records {
		if !r.IsLocked() {
			continue
		}

		quantity, err := parseShareQuantity(r.Quantity)
		if err != nil {
			return 0, "", err
		}
		locked = locked.Add(quantity)

		for _, tag := range strings.Split(r.ShareType, ",") {
			suffix := ShareTypeSuffix(tag)
			if suffix == "" || strings.Contains(types.String(), suffix) {
				continue
			}
			types.WriteString(suffix)
		}
	}

	return locked.InexactFloat64(), types.String(), nil
}

// ShareTypeSuffix informative part of a share type tag, e.g. "流通H股" -> "H股"
func ShareTypeSuffix(tag string) string {
	runes := []rune(strings.TrimSpace(tag))
	if len(runes) <= shareTypePrefixLen {
		return ""
	}
	return string(runes[shareTypePrefixLen:])
}
