package flights

import "strings"

// UnknownCountry is returned for airports outside the table.
const UnknownCountry = "Unknown"

// IATAToCountry maps the supported airport codes to country names.
var IATAToCountry = map[string]string{
	"DEL": "India", "BOM": "India", "BLR": "India", "MAA": "India",
	"BKK": "Thailand", "SIN": "Singapore", "KUL": "Malaysia",
	"DXB": "UAE", "DOH": "Qatar", "KTM": "Nepal", "CMB": "Sri Lanka",
	"NRT": "Japan", "ICN": "South Korea", "TPE": "Taiwan",
	"LHR": "United Kingdom", "CDG": "France", "FRA": "Germany",
	"FCO": "Italy", "MAD": "Spain", "AMS": "Netherlands",
	"ZUR": "Switzerland", "VIE": "Austria", "ARN": "Sweden",
	"CPH": "Denmark", "OSL": "Norway", "HEL": "Finland",
	"JFK": "United States", "LAX": "United States", "YYZ": "Canada",
	"SYD": "Australia", "MEL": "Australia", "AKL": "New Zealand",
}

// CountryFor returns the country of an airport code, or UnknownCountry.
func CountryFor(iata string) string {
	if c, ok := IATAToCountry[strings.ToUpper(strings.TrimSpace(iata))]; ok {
		return c
	}
	return UnknownCountry
}
