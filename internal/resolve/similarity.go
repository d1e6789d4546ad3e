package resolve

import (
	"sort"
	"strings"
	"unicode"

	"github.com/xrash/smetrics"
)

// TokenSortRatio scores two names on a 0-100 scale, ignoring word order.
// Both names are split on whitespace, the tokens sorted and rejoined with a
// single space, and the results compared by normalized InDel similarity:
//
//	100 * (1 - indel(a, b) / (len(a) + len(b)))
//
// Lengths and distance count characters, not bytes. InDel distance counts
// insertions and deletions only, which is edit distance with a substitution
// cost of 2.
func TokenSortRatio(a, b string) float64 {
	return indelRatio(sortTokens(a), sortTokens(b))
}

func indelRatio(a, b string) float64 {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return 100 * (1 - float64(indelDistance(ra, rb))/float64(total))
}

// indelDistance counts the character insertions and deletions turning a
// into b. smetrics compares bytes, so each distinct rune is first mapped to
// a single byte; edit distance only depends on equality, so the result is
// exact. Inputs with more than 256 distinct runes fall back to an LCS table.
func indelDistance(a, b []rune) int {
	codes := make(map[rune]byte)
	pack := func(rs []rune) ([]byte, bool) {
		out := make([]byte, len(rs))
		for i, r := range rs {
			c, ok := codes[r]
			if !ok {
				if len(codes) == 256 {
					return nil, false
				}
				c = byte(len(codes))
				codes[r] = c
			}
			out[i] = c
		}
		return out, true
	}

	pa, okA := pack(a)
	pb, okB := pack(b)
	if okA && okB {
		return smetrics.WagnerFischer(string(pa), string(pb), 1, 1, 2)
	}
	return len(a) + len(b) - 2*lcsLength(a, b)
}

func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Preprocess lower-cases s and replaces every character that is not a
// letter or digit with a space, then trims the result.
func Preprocess(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s))
}
