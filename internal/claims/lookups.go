package claims

// Static reverse lookups from the human-readable values WSO2 emits to the
// internal codes the profile stores. Unmatched values pass through unchanged.

var countries = map[string]string{
	"Argentina":      "ARG",
	"Australia":      "AUS",
	"Austria":        "AUT",
	"Belgium":        "BEL",
	"Brazil":         "BRA",
	"Canada":         "CAN",
	"China":          "CHN",
	"Croatia":        "HRV",
	"Czech Republic": "CZE",
	"Denmark":        "DNK",
	"Finland":        "FIN",
	"France":         "FRA",
	"Germany":        "DEU",
	"Greece":         "GRC",
	"Hungary":        "HUN",
	"India":          "IND",
	"Ireland":        "IRL",
	"Italy":          "ITA",
	"Japan":          "JPN",
	"Mexico":         "MEX",
	"Netherlands":    "NLD",
	"Norway":         "NOR",
	"Poland":         "POL",
	"Portugal":       "PRT",
	"Romania":        "ROU",
	"Slovenia":       "SVN",
	"Spain":          "ESP",
	"Sweden":         "SWE",
	"Switzerland":    "CHE",
	"United Kingdom": "GBR",
	"United States":  "USA",
}

var languages = map[string]string{
	"Croatian":   "hrv",
	"Dutch":      "nld",
	"English":    "eng",
	"French":     "fra",
	"German":     "deu",
	"Greek":      "ell",
	"Italian":    "ita",
	"Polish":     "pol",
	"Portuguese": "por",
	"Romanian":   "ron",
	"Slovenian":  "slv",
	"Spanish":    "spa",
	"Swedish":    "swe",
}

var timezones = map[string]string{
	"Amsterdam": "Europe/Amsterdam",
	"Athens":    "Europe/Athens",
	"Berlin":    "Europe/Berlin",
	"Brussels":  "Europe/Brussels",
	"Bucharest": "Europe/Bucharest",
	"Budapest":  "Europe/Budapest",
	"Dublin":    "Europe/Dublin",
	"Lisbon":    "Europe/Lisbon",
	"Ljubljana": "Europe/Ljubljana",
	"London":    "Europe/London",
	"Madrid":    "Europe/Madrid",
	"New York":  "America/New_York",
	"Paris":     "Europe/Paris",
	"Prague":    "Europe/Prague",
	"Rome":      "Europe/Rome",
	"Stockholm": "Europe/Stockholm",
	"Vienna":    "Europe/Vienna",
	"Warsaw":    "Europe/Warsaw",
	"Zagreb":    "Europe/Zagreb",
	"Zurich":    "Europe/Zurich",
}

// CountryCode maps a country label to its internal code.
func CountryCode(label string) string {
	if code, ok := countries[label]; ok {
		return code
	}
	return label
}

// LanguageCode maps a language label to its internal code.
func LanguageCode(label string) string {
	if code, ok := languages[label]; ok {
		return code
	}
	return label
}

// TimezoneCode maps a timezone label to its internal identifier.
func TimezoneCode(label string) string {
	if code, ok := timezones[label]; ok {
		return code
	}
	return label
}
