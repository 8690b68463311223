package catalog

// Fixed rank lists the master list is rebuilt from on every render.
// Order within each list is preserved in the rebuilt store.
var (
	topLocations = []string{
		"Los Angeles Metro, CA",
		"San Diego Metro, CA",
		"San Jose Metro, CA",
		"San Francisco Bay, CA",
		"California (excl. LA, SD, SJ, SF)",
		"Greater Houston, TX",
		"San Antonio, TX Metro",
		"Dallas-Fort Worth Metroplex, TX",
		"Austin, TX Metro",
		"Texas (excl Houston, San Antonio, Dallas-Fort Worth, Austin)",
		"Miami-Fort Lauderdale Area, FL",
		"Greater Tampa Bay Area, FL",
		"Greater Orlando, FL",
		"Metro Jacksonville, FL",
		"Florida (excl. Miami, Fort Lauderdale, Tampa Bay, Orlando, Jacksonville)",
		"New York",
		"Pennsylvania",
		"Illinois",
		"Ohio",
		"Georgia",
		"North Carolina",
		"Washington",
		"Massachusetts",
		"New South Wales",
		"North Rhine-Westphalia",
		"Hesse",
		"Berlin",
		"Île-de-France",
		"South Holland",
		"North Holland",
		"North Brabant",
		"Belgium",
		"Sweden",
		"Austria",
		"Switzerland",
		"Denmark",
		"Finland",
		"Norway",
		"Ireland",
	}

	middleLocations = []string{
		"London",
		"Bristol",
		"Manchester",
		"Cambridge",
		"Birmingham",
		"Nottingham / Leeds / Newcastle",
		"Scotland",
		"Wales",
		"Northern Ireland",
		"New Jersey",
		"Virginia",
		"Michigan",
		"Arizona",
		"Tennessee",
		"Indiana",
		"Missouri",
		"Maryland",
		"Wisconsin",
		"Colorado",
		"Minnesota",
		"South Carolina",
		"Alabama",
		"Louisiana",
		"Kentucky",
		"Oregon",
		"Oklahoma",
		"Connecticut",
		"Utah",
		"Iowa",
		"Nevada",
		"Arkansas",
		"Mississippi",
		"Washington DC",
		"Queensland",
		"Victoria",
		"Bavaria",
		"Baden-Württemberg",
		"Lower Saxony / Rhineland-Palatinate / Saarland",
		"Schleswig-Holstein / Brandenburg / Saxony-Anhalt",
		"Thuringia / Hamburg / Mecklenburg-Vorpommern / Saarland",
		"Auvergne-Rhône-Alpes",
		"Hauts-de-France",
		"Utrecht",
		"Overijssel",
		"Limburg",
		"Luxembourg",
		"Greater Vancouver",
		"Greater Toronto",
		"Greater Ottawa",
	}

	lowLocations = []string{
		"Montreal",
		"Waterloo",
		"Nouvelle-Aquitaine",
		"Grand Est",
		"Provence-Alpes-Côte d'Azur",
		"Gelderland",
		"Friesland",
		"Groningen / Drenthe / Flevoland / Zeeland",
		"Spain",
		"Western Australia",
		"South Australia",
		"Tasmania",
		"Singapore",
		"United Arab Emirates",
		"New Zealand",
		"Cape Town",
		"Japan",
		"Israel",
		"South Korea",
		"Hong Kong",
		"Taiwan",
		"Kansas",
		"New Mexico",
		"Nebraska",
		"West Virginia",
		"Idaho",
		"Hawaii",
		"New Hampshire",
		"Maine",
		"Rhode Island",
		"Montana",
		"Delaware",
		"Alaska",
		"North Dakota",
		"South Dakota",
		"Vermont",
		"Wyoming",
		"Iceland",
	}
)
