package record

import (
	"strconv"
	"strings"
)

type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueDouble
	ValueString
	ValuePlaceholder
)

func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "INT"
	case ValueDouble:
		return "DOUBLE"
	case ValueString:
		return "STRING"
	case ValuePlaceholder:
		return "PLACE_HOLDER"
	default:
		return "NONE"
	}
}

// Value is a literal destined for a cell.
type Value struct {
	Kind   ValueKind
	Int    int64
	Double float64
	Str    string
}

func IntValue(v int64) Value      { return Value{Kind: ValueInt, Int: v} }
func DoubleValue(v float64) Value { return Value{Kind: ValueDouble, Double: v} }
func StringValue(v string) Value  { return Value{Kind: ValueString, Str: v} }

// Cell formats v as it is stored in a CSV cell.
func (v Value) Cell() string {
	switch v.Kind {
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueDouble:
		return strconv.FormatFloat(v.Double, 'f', 6, 64)
	case ValueString:
		return v.Str
	default:
		return ""
	}
}

// Matches compares v against a stored cell. Numbers compare numerically,
// strings byte for byte.
func (v Value) Matches(cell string) bool {
	switch v.Kind {
	case ValueInt:
		n, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
		if err == nil {
			return n == v.Int
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		return err == nil && f == float64(v.Int)
	case ValueDouble:
		f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		return err == nil && f == v.Double
	case ValueString:
		return cell == v.Str
	default:
		return false
	}
}
