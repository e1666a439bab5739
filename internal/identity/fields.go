package identity

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// IsNA reports whether a string value is one of the missing-value markers
// that arrive from spreadsheets and API payloads.
func IsNA(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "nan", "nat", "null", "n/a", "<na>":
		return true
	}
	return false
}

// Scalar renders a field value as a string for identifier purposes.
// Lists yield their first usable element; nested or unknown values yield "".
func Scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		if IsNA(x) {
			return ""
		}
		return strings.TrimSpace(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		if x == math.Trunc(x) && math.Abs(x) < 1<<63 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []string:
		for _, s := range x {
			if s := Scalar(s); s != "" {
				return s
			}
		}
	case []any:
		for _, e := range x {
			if s := Scalar(e); s != "" {
				return s
			}
		}
	case fmt.Stringer:
		return Scalar(x.String())
	}
	return ""
}

// view is a case-insensitive, NA-dropped read-only view over raw fields.
type view struct {
	fields map[string]any
	keys   []string
}

func newView(fields map[string]any) view {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return view{fields: fields, keys: keys}
}

// get returns the first usable value for any of names. An exact key wins
// over a case-insensitive match; ties between case variants resolve in
// sorted key order so the result never depends on map iteration.
func (v view) get(names ...string) string {
	for _, name := range names {
		if s := Scalar(v.fields[name]); s != "" {
			return s
		}
		for _, k := range v.keys {
			if k != name && strings.EqualFold(k, name) {
				if s := Scalar(v.fields[k]); s != "" {
					return s
				}
			}
		}
	}
	return ""
}
