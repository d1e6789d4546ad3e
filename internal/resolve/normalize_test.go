package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRegion(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"vic", "VIC1", "VIC"},
		{"nsw", "NSW1", "NSW"},
		{"tas", "TAS1", "TAS"},
		{"padded", " QLD1 ", "QLD"},
		{"two chars", "S1", "S"},
		{"single char passes through", "X", "X"},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRegion(tt.code))
		})
	}
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantBase   string
		wantRegion string
	}{
		{"simple", "Example Solar Farm - VIC", "Example Solar Farm", "VIC"},
		{"multiple delimiters", "Hornsdale - Stage 2 - SA", "Hornsdale - Stage 2", "SA"},
		{"trims segments", "  Bungala One  -  SA ", "Bungala One", "SA"},
		{"no delimiter", "  Lonely Wind Farm ", "Lonely Wind Farm", ""},
		{"hyphen without spaces", "Mt-Mercer Wind Farm", "Mt-Mercer Wind Farm", ""},
		{"empty", "", "", ""},
		{"empty base", " - NSW", "", "NSW"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, region := Decompose(tt.in)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantRegion, region)
		})
	}
}

func TestDecompose_RejoinsPriorSegments(t *testing.T) {
	names := []string{
		"A - B - C - QLD",
		"Station - WA",
		"One - Two - NT",
	}
	for _, n := range names {
		base, region := Decompose(n)
		assert.Equal(t, n, base+NameDelimiter+region)
	}
}

type stationName string

func (s stationName) String() string { return string(s) }

func TestDecomposeValue(t *testing.T) {
	base, region := DecomposeValue(nil)
	assert.Empty(t, base)
	assert.Empty(t, region)

	base, region = DecomposeValue(12345)
	assert.Equal(t, "12345", base)
	assert.Empty(t, region)

	base, region = DecomposeValue(stationName("Wind Hill - VIC"))
	assert.Equal(t, "Wind Hill", base)
	assert.Equal(t, "VIC", region)

	base, region = DecomposeValue("Solar Park - QLD")
	assert.Equal(t, "Solar Park", base)
	assert.Equal(t, "QLD", region)
}
