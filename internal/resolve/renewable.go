package resolve

import "strings"

// renewableKeywords is the fixed fuel vocabulary treated as renewable. A fuel
// source is renewable when any keyword appears in it, ignoring case.
//
// "Grid" is in the source data's vocabulary and is kept as-is.
var renewableKeywords = [...]string{
	"Solar",
	"Wind",
	"Hydro",
	"Battery",
	"Biomass",
	"Geothermal",
	"Wave",
	"Tidal",
	"Renewable",
	"Water",
	"Bagasse",
	"Biogas - sludge",
	"Grid",
}

var lowerRenewableKeywords = func() []string {
	out := make([]string, len(renewableKeywords))
	for i, k := range renewableKeywords {
		out[i] = strings.ToLower(k)
	}
	return out
}()

// RenewableKeywords returns the renewable fuel keywords in match order.
func RenewableKeywords() []string {
	out := make([]string, len(renewableKeywords))
	copy(out, renewableKeywords[:])
	return out
}

// IsRenewable classifies a fuel source label. An empty label is treated as
// missing and is never renewable.
func IsRenewable(fuelSource string) bool {
	if strings.TrimSpace(fuelSource) == "" {
		return false
	}
	fs := strings.ToLower(fuelSource)
	for _, k := range lowerRenewableKeywords {
		if strings.Contains(fs, k) {
			return true
		}
	}
	return false
}
