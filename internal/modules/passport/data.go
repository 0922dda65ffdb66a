package passport

import "strings"

// fallbackVisaFree is served when no dataset URL can be fetched.
var fallbackVisaFree = map[string][]string{
	"India": {
		"Bhutan", "Nepal", "Maldives", "Mauritius", "Seychelles", "Fiji",
		"Vanuatu", "Micronesia", "Samoa", "Cook Islands", "Niue", "Tuvalu",
		"Indonesia", "Thailand", "Malaysia", "Singapore", "Philippines",
		"Cambodia", "Laos", "Myanmar", "Sri Lanka", "Bangladesh",
		"South Korea", "Japan", "Qatar", "UAE", "Oman", "Kuwait",
		"Bahrain", "Jordan", "Iran", "Armenia", "Georgia", "Kazakhstan",
		"Kyrgyzstan", "Tajikistan", "Uzbekistan", "Mongolia", "Turkey",
		"Serbia", "Albania", "North Macedonia", "Bosnia and Herzegovina",
		"Montenegro", "Moldova", "Belarus", "Madagascar", "Comoros",
		"Cape Verde", "Guinea-Bissau", "Mozambique", "Zimbabwe", "Zambia",
		"Uganda", "Rwanda", "Burundi", "Tanzania", "Kenya", "Ethiopia",
		"Djibouti", "Somalia", "Sudan", "Egypt", "Morocco", "Tunisia",
		"Barbados", "Dominica", "Grenada", "Haiti", "Jamaica",
		"Saint Kitts and Nevis", "Saint Lucia", "Saint Vincent and the Grenadines",
		"Trinidad and Tobago", "El Salvador", "Honduras", "Nicaragua",
		"Bolivia", "Ecuador", "Suriname",
	},
	"United States": {
		"Canada", "Mexico", "United Kingdom", "Ireland", "France", "Germany",
		"Italy", "Spain", "Netherlands", "Belgium", "Luxembourg", "Austria",
		"Switzerland", "Portugal", "Greece", "Denmark", "Sweden", "Norway",
		"Finland", "Iceland", "Estonia", "Latvia", "Lithuania", "Poland",
		"Czech Republic", "Slovakia", "Hungary", "Slovenia", "Croatia",
		"Malta", "Cyprus", "Japan", "South Korea", "Singapore", "Australia",
		"New Zealand", "Chile", "Uruguay", "Argentina", "Brazil", "Israel",
		"Taiwan", "Hong Kong", "Macau", "Brunei", "Malaysia", "Thailand",
	},
	"Germany": {
		"European Union Countries", "United States", "Canada", "Australia",
		"New Zealand", "Japan", "South Korea", "Singapore", "Malaysia",
		"Thailand", "Philippines", "Indonesia", "Vietnam", "Cambodia",
		"Israel", "United Arab Emirates", "Qatar", "Kuwait", "Bahrain",
		"Chile", "Argentina", "Brazil", "Uruguay", "Paraguay", "Mexico",
		"Costa Rica", "Nicaragua", "Honduras", "El Salvador", "Guatemala",
		"Panama", "Colombia", "Ecuador", "Peru", "Bolivia", "Venezuela",
		"Guyana", "Suriname", "South Africa", "Botswana", "Namibia",
		"Mauritius", "Seychelles", "Morocco", "Tunisia", "Turkey",
		"Serbia", "Montenegro", "Albania", "North Macedonia", "Bosnia and Herzegovina",
	},
	"Singapore": {
		"Malaysia", "Thailand", "Indonesia", "Philippines", "Vietnam",
		"Cambodia", "Laos", "Myanmar", "Brunei", "Japan", "South Korea",
		"Hong Kong", "Macau", "Taiwan", "United States", "Canada",
		"United Kingdom", "Ireland", "European Union Countries",
		"Australia", "New Zealand", "Chile", "Argentina", "Brazil",
		"Uruguay", "Israel", "Turkey", "United Arab Emirates", "Qatar",
		"Kuwait", "Bahrain", "Oman", "Saudi Arabia", "Jordan",
	},
	"United Kingdom": {
		"European Union Countries", "United States", "Canada", "Australia",
		"New Zealand", "Japan", "South Korea", "Singapore", "Malaysia",
		"Thailand", "Philippines", "Indonesia", "Vietnam", "Hong Kong",
		"Macau", "Taiwan", "Israel", "United Arab Emirates", "Qatar",
		"Kuwait", "Bahrain", "Oman", "Chile", "Argentina", "Brazil",
		"Uruguay", "Mexico", "Costa Rica", "Panama", "Colombia",
		"Ecuador", "Peru", "Bolivia", "Venezuela", "Guyana", "Suriname",
	},
}

// Region groups destinations for the breakdown counts.
type Region struct {
	Name      string
	Countries []string
}

// Regions lists the regions in display order.
var Regions = []Region{
	{"Asia", []string{
		"Thailand", "Singapore", "Malaysia", "Indonesia", "Philippines",
		"Cambodia", "Laos", "Myanmar", "Vietnam", "Brunei", "Nepal", "Bhutan",
		"South Korea", "Japan", "Mongolia", "Kazakhstan", "Kyrgyzstan",
		"Tajikistan", "Uzbekistan",
	}},
	{"Europe", []string{
		"Germany", "France", "Italy", "Spain", "United Kingdom", "Ireland",
		"Netherlands", "Belgium", "Switzerland", "Austria", "Portugal",
		"Greece", "Denmark", "Sweden", "Norway", "Finland", "Iceland",
		"Poland", "Czech Republic", "Slovakia", "Hungary", "Slovenia",
		"Croatia", "Serbia", "Montenegro", "Albania", "North Macedonia",
		"Bosnia and Herzegovina", "Bulgaria", "Romania", "Moldova", "Belarus",
	}},
	{"Middle East", []string{
		"UAE", "Qatar", "Oman", "Kuwait", "Bahrain", "Saudi Arabia",
		"Jordan", "Turkey", "Armenia", "Georgia", "Iran", "Israel",
	}},
	{"Africa", []string{
		"Mauritius", "Seychelles", "Madagascar", "Comoros", "Cape Verde",
		"Guinea-Bissau", "Mozambique", "Zimbabwe", "Zambia", "Uganda",
		"Rwanda", "Burundi", "Tanzania", "Kenya", "Ethiopia", "Djibouti",
		"Somalia", "Sudan", "Egypt", "Morocco", "Tunisia", "South Africa",
		"Namibia", "Botswana",
	}},
	{"Americas", []string{
		"United States", "Canada", "Mexico", "Brazil", "Argentina",
		"Chile", "Uruguay", "Paraguay", "Colombia", "Ecuador", "Peru",
		"Bolivia", "Venezuela", "Guyana", "Suriname", "Jamaica", "Haiti",
		"Barbados", "Trinidad and Tobago", "Dominica", "Grenada",
		"Saint Lucia", "Saint Vincent and the Grenadines",
		"Saint Kitts and Nevis", "El Salvador", "Honduras", "Nicaragua",
	}},
	{"Oceania", []string{
		"Australia", "New Zealand", "Fiji", "Vanuatu", "Samoa", "Tonga",
		"Cook Islands", "Niue", "Tuvalu", "Micronesia", "Papua New Guinea",
	}},
}

// isoCodes maps display names to ISO 3166-1 alpha-2 codes for flag rendering.
var isoCodes = map[string]string{
	"Thailand": "TH", "Singapore": "SG", "Malaysia": "MY", "Indonesia": "ID",
	"Philippines": "PH", "Cambodia": "KH", "Laos": "LA", "Myanmar": "MM",
	"Vietnam": "VN", "Brunei": "BN", "Nepal": "NP", "Bhutan": "BT",
	"Maldives": "MV", "Sri Lanka": "LK", "Bangladesh": "BD", "India": "IN",
	"Japan": "JP", "South Korea": "KR", "China": "CN", "Taiwan": "TW",
	"Hong Kong": "HK", "Macau": "MO", "Mongolia": "MN", "Kazakhstan": "KZ",
	"Kyrgyzstan": "KG", "Tajikistan": "TJ", "Uzbekistan": "UZ",

	"UAE": "AE", "United Arab Emirates": "AE", "Qatar": "QA", "Oman": "OM",
	"Kuwait": "KW", "Bahrain": "BH", "Saudi Arabia": "SA", "Jordan": "JO",
	"Lebanon": "LB", "Syria": "SY", "Iraq": "IQ", "Iran": "IR", "Israel": "IL",
	"Turkey": "TR", "Cyprus": "CY", "Armenia": "AM", "Georgia": "GE",

	"United Kingdom": "GB", "Ireland": "IE", "France": "FR", "Germany": "DE",
	"Italy": "IT", "Spain": "ES", "Portugal": "PT", "Netherlands": "NL",
	"Belgium": "BE", "Luxembourg": "LU", "Switzerland": "CH", "Austria": "AT",
	"Denmark": "DK", "Sweden": "SE", "Norway": "NO", "Finland": "FI",
	"Iceland": "IS", "Greece": "GR", "Malta": "MT", "Poland": "PL",
	"Czech Republic": "CZ", "Slovakia": "SK", "Hungary": "HU",
	"Slovenia": "SI", "Croatia": "HR", "Bosnia and Herzegovina": "BA",
	"Serbia": "RS", "Montenegro": "ME", "Albania": "AL",
	"North Macedonia": "MK", "Bulgaria": "BG", "Romania": "RO",
	"Moldova": "MD", "Ukraine": "UA", "Belarus": "BY", "Russia": "RU",
	"Estonia": "EE", "Latvia": "LV", "Lithuania": "LT",

	"United States": "US", "Canada": "CA", "Mexico": "MX", "Guatemala": "GT",
	"Belize": "BZ", "El Salvador": "SV", "Honduras": "HN", "Nicaragua": "NI",
	"Costa Rica": "CR", "Panama": "PA", "Colombia": "CO", "Venezuela": "VE",
	"Guyana": "GY", "Suriname": "SR", "Brazil": "BR", "Ecuador": "EC",
	"Peru": "PE", "Bolivia": "BO", "Paraguay": "PY", "Uruguay": "UY",
	"Argentina": "AR", "Chile": "CL", "Cuba": "CU", "Jamaica": "JM",
	"Haiti": "HT", "Dominican Republic": "DO", "Trinidad and Tobago": "TT",
	"Barbados": "BB", "Saint Lucia": "LC", "Grenada": "GD",
	"Saint Vincent and the Grenadines": "VC",
	"Saint Kitts and Nevis": "KN", "Dominica": "DM",

	"Morocco": "MA", "Algeria": "DZ", "Tunisia": "TN", "Libya": "LY",
	"Egypt": "EG", "Sudan": "SD", "Ethiopia": "ET", "Kenya": "KE",
	"Uganda": "UG", "Tanzania": "TZ", "Rwanda": "RW", "Burundi": "BI",
	"Somalia": "SO", "Djibouti": "DJ", "Madagascar": "MG", "Mauritius": "MU",
	"Seychelles": "SC", "Comoros": "KM", "South Africa": "ZA",
	"Namibia": "NA", "Botswana": "BW", "Zimbabwe": "ZW", "Zambia": "ZM",
	"Mozambique": "MZ", "Malawi": "MW", "Angola": "AO", "Ghana": "GH",
	"Nigeria": "NG", "Senegal": "SN", "Cape Verde": "CV", "Guinea-Bissau": "GW",

	"Australia": "AU", "New Zealand": "NZ", "Fiji": "FJ",
	"Papua New Guinea": "PG", "Vanuatu": "VU", "Samoa": "WS",
	"Tonga": "TO", "Tuvalu": "TV", "Micronesia": "FM",
	"Cook Islands": "CK", "Niue": "NU",
}

// Flag returns the emoji flag for a country name, or "" when unknown.
func Flag(country string) string {
	code, ok := isoCodes[strings.TrimSpace(country)]
	if !ok || len(code) != 2 {
		return ""
	}
	var sb strings.Builder
	for _, c := range code {
		sb.WriteRune(0x1F1E6 + (c - 'A'))
	}
	return sb.String()
}
