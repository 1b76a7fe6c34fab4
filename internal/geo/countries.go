package geo

// staticCountryCodes maps lowercase country and major-city names to ISO
// 3166-1 alpha-2 codes. This is the resolver's last tier: it keeps
// resolution working when the external dataset is unreachable, so it must
// cover the common cases well.
var staticCountryCodes = map[string]string{
	// Countries
	"usa": "US", "united states": "US", "america": "US",
	"uk": "GB", "united kingdom": "GB", "england": "GB", "britain": "GB", "scotland": "GB", "wales": "GB",
	"canada":      "CA",
	"australia":   "AU",
	"new zealand": "NZ",
	"japan":       "JP",
	"china":       "CN",
	"south korea": "KR", "korea": "KR",
	"singapore":   "SG",
	"thailand":    "TH",
	"vietnam":     "VN",
	"indonesia":   "ID",
	"malaysia":    "MY",
	"philippines": "PH",
	"india":       "IN",
	"france":      "FR",
	"germany":     "DE",
	"italy":       "IT",
	"spain":       "ES",
	"portugal":    "PT",
	"netherlands": "NL", "holland": "NL",
	"belgium":     "BE",
	"switzerland": "CH",
	"austria":     "AT",
	"greece":      "GR",
	"turkey":      "TR",
	"egypt":       "EG",
	"south africa": "ZA",
	"morocco":     "MA",
	"brazil":      "BR",
	"argentina":   "AR",
	"chile":       "CL",
	"peru":        "PE",
	"mexico":      "MX",
	"colombia":    "CO",
	"costa rica":  "CR",
	"iceland":     "IS",
	"norway":      "NO",
	"sweden":      "SE",
	"denmark":     "DK",
	"finland":     "FI",
	"poland":      "PL",
	"czech republic": "CZ", "czechia": "CZ",
	"hungary":  "HU",
	"croatia":  "HR",
	"slovenia": "SI",
	"ireland":  "IE",
	"russia":   "RU",
	"uae": "AE", "united arab emirates": "AE",
	"israel":       "IL",
	"saudi arabia": "SA",
	"qatar":        "QA",
	"hong kong":    "HK",
	"taiwan":       "TW",
	"cambodia":     "KH",
	"laos":         "LA",
	"myanmar":      "MM", "burma": "MM",
	"nepal":      "NP",
	"sri lanka":  "LK",
	"bangladesh": "BD",
	"pakistan":   "PK",
	"maldives":   "MV",
	"kenya":      "KE",
	"nigeria":    "NG",

	// US cities
	"new york": "US", "los angeles": "US", "chicago": "US", "san francisco": "US",
	"seattle": "US", "boston": "US", "miami": "US", "las vegas": "US", "orlando": "US",
	"washington": "US", "washington dc": "US", "atlanta": "US", "houston": "US",
	"philadelphia": "US", "phoenix": "US", "san diego": "US", "denver": "US",

	// Japan cities
	"tokyo": "JP", "osaka": "JP", "kyoto": "JP", "hiroshima": "JP", "nagoya": "JP",
	"fukuoka": "JP", "sapporo": "JP", "yokohama": "JP", "kobe": "JP", "nara": "JP",

	// China cities
	"beijing": "CN", "shanghai": "CN", "guangzhou": "CN", "shenzhen": "CN",
	"chengdu": "CN", "xi'an": "CN", "xian": "CN", "hangzhou": "CN", "suzhou": "CN",

	// Europe cities
	"london": "GB", "paris": "FR", "berlin": "DE", "rome": "IT", "madrid": "ES",
	"barcelona": "ES", "amsterdam": "NL", "brussels": "BE", "vienna": "AT",
	"prague": "CZ", "budapest": "HU", "lisbon": "PT", "athens": "GR", "dublin": "IE",
	"edinburgh": "GB", "munich": "DE", "venice": "IT", "florence": "IT", "milan": "IT",
	"stockholm": "SE", "copenhagen": "DK", "oslo": "NO", "helsinki": "FI",
	"zurich": "CH", "geneva": "CH", "warsaw": "PL", "reykjavik": "IS", "ljubljana": "SI",

	// Southeast Asia cities
	"bangkok": "TH", "kuala lumpur": "MY", "jakarta": "ID",
	"bali": "ID", "manila": "PH", "hanoi": "VN", "ho chi minh": "VN", "saigon": "VN",
	"phnom penh": "KH", "siem reap": "KH", "vientiane": "LA", "yangon": "MM",
	"phuket": "TH", "chiang mai": "TH", "penang": "MY",

	// Middle East cities
	"dubai": "AE", "abu dhabi": "AE", "tel aviv": "IL", "jerusalem": "IL",
	"istanbul": "TR", "riyadh": "SA", "doha": "QA",

	// Oceania cities
	"sydney": "AU", "melbourne": "AU", "brisbane": "AU", "perth": "AU",
	"auckland": "NZ", "wellington": "NZ", "queenstown": "NZ",

	// South Asia cities
	"mumbai": "IN", "delhi": "IN", "bangalore": "IN", "kolkata": "IN",
	"kathmandu": "NP", "colombo": "LK", "dhaka": "BD", "karachi": "PK", "male": "MV",

	// Americas cities
	"toronto": "CA", "vancouver": "CA", "montreal": "CA",
	"mexico city": "MX", "cancun": "MX",
	"buenos aires": "AR", "rio de janeiro": "BR", "sao paulo": "BR",
	"lima": "PE", "santiago": "CL", "bogota": "CO", "san jose": "CR",

	// Africa cities
	"cairo": "EG", "cape town": "ZA", "johannesburg": "ZA", "marrakech": "MA",
	"casablanca": "MA", "nairobi": "KE", "lagos": "NG",
}
