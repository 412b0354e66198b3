package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCurrency coerces a cell value to a numeric amount. Numeric cells
// pass through; string cells are parsed after stripping currency symbols
// and group separators. Unparsable input yields 0, never an error.
func ParseCurrency(v any) float64 {
	switch amount := v.(type) {
	case float64:
		return amount
	case int:
		return float64(amount)
	case string:
		s := strings.TrimSpace(amount)
		s = strings.ReplaceAll(s, "$", "")
		s = strings.ReplaceAll(s, ",", "")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0
		}
		return d.InexactFloat64()
	default:
		return 0
	}
}
