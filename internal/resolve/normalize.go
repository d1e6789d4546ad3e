package resolve

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// NameDelimiter separates a registry station name from its trailing region,
// e.g. "Example Solar Farm - VIC".
const NameDelimiter = " - "

// NormalizeRegion strips the trailing market-region digit from a mapping
// table region code ("VIC1" -> "VIC", "NSW1" -> "NSW"). Codes shorter than
// two runes have no suffix to strip and are returned trimmed.
func NormalizeRegion(code string) string {
	code = strings.TrimSpace(code)
	if utf8.RuneCountInString(code) < 2 {
		return code
	}
	_, size := utf8.DecodeLastRuneInString(code)
	return strings.TrimSpace(code[:len(code)-size])
}

// Decompose splits a registry station name into its base name and region.
// The region is the last delimited segment; the base name is everything
// before it, rejoined with the same delimiter. A name without the delimiter
// is all base name and has no region.
func Decompose(name string) (base, region string) {
	parts := strings.Split(name, NameDelimiter)
	if len(parts) < 2 {
		return strings.TrimSpace(name), ""
	}
	region = strings.TrimSpace(parts[len(parts)-1])
	base = strings.TrimSpace(strings.Join(parts[:len(parts)-1], NameDelimiter))
	return base, region
}

// DecomposeValue is Decompose for cells that may not be strings.
func DecomposeValue(v any) (base, region string) {
	switch s := v.(type) {
	case nil:
		return "", ""
	case string:
		return Decompose(s)
	case fmt.Stringer:
		return Decompose(s.String())
	default:
		return Decompose(fmt.Sprint(v))
	}
}
