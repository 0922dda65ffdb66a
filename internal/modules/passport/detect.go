package passport

import (
	"regexp"
	"strings"
)

// Detection is the issuing country read from passport text.
type Detection struct {
	Country    string  `json:"country"`
	Confidence float64 `json:"confidence"`
}

const (
	patternConfidence = 0.8
	keywordConfidence = 0.6
)

// countryNames maps the upper-case spellings printed on passports to dataset names,
// in the order the keyword scan tries them.
var countryNames = []struct{ printed, name string }{
	{"UNITED STATES OF AMERICA", "United States"},
	{"UNITED KINGDOM", "United Kingdom"},
	{"SOUTH KOREA", "South Korea"},
	{"NETHERLANDS", "Netherlands"},
	{"SINGAPORE", "Singapore"},
	{"AUSTRALIA", "Australia"},
	{"GERMANY", "Germany"},
	{"FRANCE", "France"},
	{"CANADA", "Canada"},
	{"INDIA", "India"},
	{"JAPAN", "Japan"},
	{"CHINA", "China"},
	{"ITALY", "Italy"},
	{"SPAIN", "Spain"},
	{"UAE", "UAE"},
}

var passportPatterns = []*regexp.Regexp{
	regexp.MustCompile(`REPUBLIC OF ([A-Z ]+)`),
	regexp.MustCompile(`UNITED STATES OF AMERICA`),
	regexp.MustCompile(`UNITED KINGDOM`),
	regexp.MustCompile(`PASSPORT\s+([A-Z ]+)`),
	regexp.MustCompile(`NATIONALITY\s+([A-Z ]+)`),
	regexp.MustCompile(`COUNTRY CODE\s+([A-Z]{3})`),
}

func lookupPrinted(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, c := range countryNames {
		if c.printed == s {
			return c.name, true
		}
	}
	return "", false
}

// DetectCountry finds the issuing country in OCR text. A labelled field match
// scores 0.8, a bare keyword 0.6.
func DetectCountry(text string) (Detection, bool) {
	upper := strings.ToUpper(text)

	for _, re := range passportPatterns {
		m := re.FindStringSubmatch(upper)
		if m == nil {
			continue
		}
		candidate := m[0]
		if len(m) > 1 {
			candidate = m[1]
		}
		if name, ok := lookupPrinted(candidate); ok {
			return Detection{Country: name, Confidence: patternConfidence}, true
		}
	}

	for _, c := range countryNames {
		if strings.Contains(upper, c.printed) {
			return Detection{Country: c.name, Confidence: keywordConfidence}, true
		}
	}
	return Detection{}, false
}
