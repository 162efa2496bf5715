package cache

import (
	"fmt"
	"strings"
)

// Key builders. Two logically identical requests must always map to the same
// key, so every builder is a pure join of its inputs.

// BarsKey addresses one instrument's bar history over a date range.
func BarsKey(symbol, startDate, endDate string) string {
	return JoinKey("bars", symbol, startDate, endDate)
}

// MacroKey addresses one macro dataset by kind (cpi, fx, pmi, gdp).
func MacroKey(kind string) string {
	return JoinKey("macro", kind)
}

// DirectoryKey addresses the code-to-name symbol directory.
func DirectoryKey() string {
	return JoinKey("directory", "symbols")
}

// ConstituentsKey addresses an index's constituent list.
func ConstituentsKey(indexID string) string {
	return JoinKey("constituents", indexID)
}

// JoinKey builds a deterministic key from arbitrary parts.
func JoinKey(parts ...interface{}) string {
	ss := make([]string, 0, len(parts))
	for _, p := range parts {
		ss = append(ss, fmt.Sprintf("%v", p))
	}
	return strings.Join(ss, ":")
}
