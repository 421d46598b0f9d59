package referencedata

import "strings"

// NationalAreaCode is the area code for national wage estimates.
const NationalAreaCode = "0000000"

type Location struct {
	Key string
	// CostMultiplier scales salaries relative to the national median.
	CostMultiplier float64
	// AreaCode is the 7-digit metropolitan area code; empty when unmapped.
	AreaCode string
}

var locations = map[string]Location{
	"san francisco": {"san francisco", 1.45, "0041860"},
	"new york":      {"new york", 1.35, "0035620"},
	"seattle":       {"seattle", 1.25, "0042660"},
	"boston":        {"boston", 1.2, "0071650"},
	"los angeles":   {"los angeles", 1.2, "0031080"},
	"washington dc": {"washington dc", 1.2, "0047900"},
	"austin":        {"austin", 1.05, "0012420"},
	"chicago":       {"chicago", 1.05, "0016980"},
	"denver":        {"denver", 1.05, "0019740"},
	"atlanta":       {"atlanta", 0.98, "0012060"},
	"remote":        {"remote", 1.0, ""},
}

var locationAliases = map[string]string{
	"sf":             "san francisco",
	"bay area":       "san francisco",
	"nyc":            "new york",
	"new york city":  "new york",
	"manhattan":      "new york",
	"la":             "los angeles",
	"dc":             "washington dc",
	"washington":     "washington dc",
	"washington d.c": "washington dc",
}

// NormalizeLocation lowercases the location and drops any ", ST" suffix.
func NormalizeLocation(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(s, ","); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.Join(strings.Fields(s), " ")
	if canonical, ok := locationAliases[s]; ok {
		return canonical
	}
	return s
}

// LookupLocation returns the table row for a location.
func LookupLocation(location string) (Location, bool) {
	l, ok := locations[NormalizeLocation(location)]
	return l, ok
}

// LocationMultiplier returns the cost-of-living multiplier, 1.0 when unknown.
func LocationMultiplier(location string) float64 {
	if l, ok := LookupLocation(location); ok {
		return l.CostMultiplier
	}
	return 1.0
}

// AreaCode returns the metropolitan area code and true, or the national code
// and false when the location is not mapped.
func AreaCode(location string) (string, bool) {
	if l, ok := LookupLocation(location); ok && l.AreaCode != "" {
		return l.AreaCode, true
	}
	return NationalAreaCode, false
}
