package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// MetricValue is a tagged variant for heterogeneous health metrics: the
// external producer emits booleans, numbers, strings and lists side by side,
// and the tag preserves that type across the loader/aggregator/materializer
// boundary.
type MetricValue struct {
	Kind  ValueKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	List  []string
}

// Constructors for each variant.

// Null returns the null metric value.
func Null() MetricValue { return MetricValue{Kind: NullKind} }

// BoolValue wraps a boolean metric.
func BoolValue(v bool) MetricValue { return MetricValue{Kind: BoolKind, Bool: v} }

// IntValue wraps an integer metric.
func IntValue(v int64) MetricValue { return MetricValue{Kind: IntKind, Int: v} }

// FloatValue wraps a float metric.
func FloatValue(v float64) MetricValue { return MetricValue{Kind: FloatKind, Float: v} }

// StringValue wraps a string metric.
func StringValue(v string) MetricValue { return MetricValue{Kind: StringKind, Str: v} }

// ListValue wraps a list metric. Elements are stored as strings; scalar
// elements of other types are stringified on conversion.
func ListValue(v []string) MetricValue { return MetricValue{Kind: ListKind, List: v} }

// IsNull reports whether the value is the null variant.
func (v MetricValue) IsNull() bool { return v.Kind == NullKind || v.Kind == "" }

// ConvertValue maps a decoded YAML scalar or list into a MetricValue.
// Nested mappings must be squashed before conversion; passing one is an error.
func ConvertValue(raw any) (MetricValue, error) {
	switch val := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return BoolValue(val), nil
	case int:
		return IntValue(int64(val)), nil
	case int64:
		return IntValue(val), nil
	case float64:
		return FloatValue(val), nil
	case string:
		return StringValue(val), nil
	case []any:
		items := make([]string, len(val))
		for i, item := range val {
			switch elem := item.(type) {
			case string:
				items[i] = elem
			case bool, int, int64, float64:
				items[i] = fmt.Sprint(elem)
			default:
				return Null(), fmt.Errorf("unsupported list element of type %T", item)
			}
		}
		return ListValue(items), nil
	default:
		return Null(), fmt.Errorf("unsupported metric value of type %T", raw)
	}
}

// SQL returns the value in a form suitable for a database/sql argument.
// Lists are JSON-encoded, matching how the upstream producer serializes them.
func (v MetricValue) SQL() any {
	switch v.Kind {
	case BoolKind:
		if v.Bool {
			return int64(1)
		}
		return int64(0)
	case IntKind:
		return v.Int
	case FloatKind:
		return v.Float
	case StringKind:
		return v.Str
	case ListKind:
		encoded, err := json.Marshal(v.List)
		if err != nil {
			return "[]"
		}
		return string(encoded)
	default:
		return nil
	}
}

// Display renders the value for table output. Null renders as "-" so sparse
// columns stay readable.
func (v MetricValue) Display() string {
	switch v.Kind {
	case BoolKind:
		return strconv.FormatBool(v.Bool)
	case IntKind:
		return strconv.FormatInt(v.Int, 10)
	case FloatKind:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case StringKind:
		return v.Str
	case ListKind:
		encoded, err := json.Marshal(v.List)
		if err != nil {
			return "[]"
		}
		return string(encoded)
	default:
		return "-"
	}
}

// JSON returns the value for JSON encoding (API and json console output).
func (v MetricValue) JSON() any {
	switch v.Kind {
	case BoolKind:
		return v.Bool
	case IntKind:
		return v.Int
	case FloatKind:
		return v.Float
	case StringKind:
		return v.Str
	case ListKind:
		return v.List
	default:
		return nil
	}
}

// FromSQL reconstructs a MetricValue from a database/sql scan result.
// SQLite loses the bool/int distinction; readers treat INTEGER as int.
// Lists are stored as JSON text, so a string metric whose value happens to
// parse as a JSON string array reads back as a list. Renderers only use the
// Display/JSON projections, which stay equivalent either way.
func FromSQL(raw any) MetricValue {
	switch val := raw.(type) {
	case nil:
		return Null()
	case int64:
		return IntValue(val)
	case float64:
		return FloatValue(val)
	case bool:
		return BoolValue(val)
	case string:
		return fromSQLText(val)
	case []byte:
		return fromSQLText(string(val))
	default:
		return StringValue(fmt.Sprint(val))
	}
}

// fromSQLText recovers list values that were JSON-encoded on write.
func fromSQLText(s string) MetricValue {
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		var items []string
		if err := json.Unmarshal([]byte(s), &items); err == nil {
			return ListValue(items)
		}
	}
	return StringValue(s)
}

// MergeKind resolves the column kind when two rows disagree for the same
// key. Numeric kinds widen to float; anything else degrades to string.
func MergeKind(a, b ValueKind) ValueKind {
	if a == b {
		return a
	}
	if a == NullKind || a == "" {
		return b
	}
	if b == NullKind || b == "" {
		return a
	}
	numeric := func(k ValueKind) bool { return k == IntKind || k == FloatKind }
	if numeric(a) && numeric(b) {
		return FloatKind
	}
	return StringKind
}

// ColumnKinds infers the storage kind for every column from the rows that
// carry a non-null value for it.
func ColumnKinds(columns []string, rows []Row) map[string]ValueKind {
	kinds := make(map[string]ValueKind, len(columns))
	for _, col := range columns {
		kinds[col] = NullKind
	}
	for _, row := range rows {
		for _, col := range columns {
			v, ok := row.Metrics[col]
			if !ok || v.IsNull() {
				continue
			}
			kinds[col] = MergeKind(kinds[col], v.Kind)
		}
	}
	return kinds
}

// SortedKeys returns the map's keys in lexical order. Used wherever
// deterministic column order matters.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
