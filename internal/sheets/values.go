package sheets

import (
	"fmt"
	"strconv"
	"strings"
)

// CellString coerces a cell value to a trimmed string. Nil cells become "".
func CellString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		if s {
			return "TRUE"
		}
		return "FALSE"
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// CellFloat coerces a cell value to a float64. Percent signs and group
// separators from display-formatted cells are stripped. Unparsable cells
// yield 0.
func CellFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		s := strings.TrimSpace(n)
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSuffix(s, "%")
		s = strings.TrimPrefix(s, "$")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		if strings.HasSuffix(strings.TrimSpace(n), "%") {
			return f / 100
		}
		return f
	default:
		return 0
	}
}

// CellBool coerces a cell value to a bool. Checkbox cells arrive as native
// bools; text cells match TRUE/YES/1 case-insensitively.
func CellBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToUpper(strings.TrimSpace(b)) {
		case "TRUE", "YES", "Y", "1":
			return true
		}
		return false
	case float64:
		return b != 0
	default:
		return false
	}
}
