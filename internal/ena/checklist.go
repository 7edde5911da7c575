// Package ena projects samples into the ENA ERC000053 checklist shape and
// builds the XML documents exchanged with the archival service.
package ena

import "regexp"

// ChecklistID is the ENA checklist every sample is submitted under.
const ChecklistID = "ERC000053"

// Check is one entry of the ENA checklist: a canonical attribute name, the
// manifest field findings are reported against, and the constraints the
// projected value must satisfy. Allowed values are compared
// case-insensitively.
type Check struct {
	Name      string
	Field     string
	Mandatory bool
	Pattern   *regexp.Regexp
	Allowed   []string
}

// ReportField returns the manifest field name findings should carry, which
// is the checklist name itself when no field mapping is declared.
func (c Check) ReportField() string {
	if c.Field != "" {
		return c.Field
	}
	return c.Name
}

var (
	collectionDateRe = regexp.MustCompile(`(^[0-9]{4}(-[0-9]{2}(-[0-9]{2}(T[0-9]{2}:[0-9]{2}(:[0-9]{2})?Z?([+-][0-9]{1,2})?)?)?)?(/[0-9]{4}(-[0-9]{2}(-[0-9]{2}(T[0-9]{2}:[0-9]{2}(:[0-9]{2})?Z?([+-][0-9]{1,2})?)?)?)?)?$)|(^not collected$)|(^not provided$)|(^restricted access$)`)
	latLongRe        = regexp.MustCompile(`(^[+-]?[0-9]+.?[0-9]{0,8}$)|(^not collected$)|(^not provided$)|(^restricted access$)`)
	depthRe          = regexp.MustCompile(`(0|((0\.)|([1-9][0-9]*\.?))[0-9]*)([Ee][+-]?[0-9]+)?`)
	elevationRe      = regexp.MustCompile(`[+-]?(0|((0\.)|([1-9][0-9]*\.?))[0-9]*)([Ee][+-]?[0-9]+)?`)
	originalDateRe   = regexp.MustCompile(`^[0-9]{4}(-[0-9]{2}(-[0-9]{2}(T[0-9]{2}:[0-9]{2}(:[0-9]{2})?Z?([+-][0-9]{1,2})?)?)?)?(/[0-9]{4}(-[0-9]{2}(-[0-9]{2}(T[0-9]{2}:[0-9]{2}(:[0-9]{2})?Z?([+-][0-9]{1,2})?)?)?)?)?$`)
	derivedFromRe    = regexp.MustCompile(`(^[ESD]R[SR]\d{6,}(,[ESD]R[SR]\d{6,})*$)|(^SAM[END][AG]?\d+(,SAM[END][AG]?\d+)*$)|(^EGA[NR]\d{11}(,EGA[NR]\d{11})*$)|(^[ESD]R[SR]\d{6,}-[ESD]R[SR]\d{6,}$)|(^SAM[END][AG]?\d+-SAM[END][AG]?\d+$)|(^EGA[NR]\d{11}-EGA[NR]\d{11}$)`)
	sameAsRe         = regexp.MustCompile(`(^[ESD]RS\d{6,}(,[ESD]RS\d{6,})*$)|(^SAM[END][AG]?\d+(,SAM[END][AG]?\d+)*$)|(^EGAN\d{11}(,EGAN\d{11})*$)`)
	symbiontOfRe     = regexp.MustCompile(`(^[ESD]RS\d{6,}$)|(^SAM[END][AG]?\d+$)|(^EGAN\d{11}$)`)
)

var lifestages = []string{
	"adult", "egg", "embryo", "gametophyte", "juvenile", "larva",
	"not applicable", "not collected", "not provided", "pupa",
	"spore-bearing structure", "sporophyte", "vegetative cell",
	"vegetative structure", "zygote",
}

var countriesAndSeas = []string{
	"Afghanistan", "Albania", "Algeria", "American Samoa", "Andorra",
	"Angola", "Anguilla", "Antarctica", "Antigua and Barbuda",
	"Arctic Ocean", "Argentina", "Armenia", "Aruba",
	"Ashmore and Cartier Islands", "Atlantic Ocean", "Australia", "Austria",
	"Azerbaijan", "Bahamas", "Bahrain", "Baker Island", "Baltic Sea",
	"Bangladesh", "Barbados", "Bassas da India", "Belarus", "Belgium",
	"Belize", "Benin", "Bermuda", "Bhutan", "Bolivia", "Borneo",
	"Bosnia and Herzegovina", "Botswana", "Bouvet Island", "Brazil",
	"British Virgin Islands", "Brunei", "Bulgaria", "Burkina Faso",
	"Burundi", "Cambodia", "Cameroon", "Canada", "Cape Verde",
	"Cayman Islands", "Central African Republic", "Chad", "Chile", "China",
	"Christmas Island", "Clipperton Island", "Cocos Islands", "Colombia",
	"Comoros", "Cook Islands", "Coral Sea Islands", "Costa Rica",
	"Cote d'Ivoire", "Croatia", "Cuba", "Curacao", "Cyprus",
	"Czech Republic", "Democratic Republic of the Congo", "Denmark",
	"Djibouti", "Dominica", "Dominican Republic", "East Timor", "Ecuador",
	"Egypt", "El Salvador", "Equatorial Guinea", "Eritrea", "Estonia",
	"Ethiopia", "Europa Island", "Falkland Islands (Islas Malvinas)",
	"Faroe Islands", "Fiji", "Finland", "France", "French Guiana",
	"French Polynesia", "French Southern and Antarctic Lands", "Gabon",
	"Gambia", "Gaza Strip", "Georgia", "Germany", "Ghana", "Gibraltar",
	"Glorioso Islands", "Greece", "Greenland", "Grenada", "Guadeloupe",
	"Guam", "Guatemala", "Guernsey", "Guinea", "Guinea-Bissau", "Guyana",
	"Haiti", "Heard Island and McDonald Islands", "Honduras", "Hong Kong",
	"Howland Island", "Hungary", "Iceland", "India", "Indian Ocean",
	"Indonesia", "Iran", "Iraq", "Ireland", "Isle of Man", "Israel",
	"Italy", "Jamaica", "Jan Mayen", "Japan", "Jarvis Island", "Jersey",
	"Johnston Atoll", "Jordan", "Juan de Nova Island", "Kazakhstan",
	"Kenya", "Kerguelen Archipelago", "Kingman Reef", "Kiribati", "Kosovo",
	"Kuwait", "Kyrgyzstan", "Laos", "Latvia", "Lebanon", "Lesotho",
	"Liberia", "Libya", "Liechtenstein", "Lithuania", "Luxembourg", "Macau",
	"Macedonia", "Madagascar", "Malawi", "Malaysia", "Maldives", "Mali",
	"Malta", "Marshall Islands", "Martinique", "Mauritania", "Mauritius",
	"Mayotte", "Mediterranean Sea", "Mexico", "Micronesia",
	"Midway Islands", "Moldova", "Monaco", "Mongolia", "Montenegro",
	"Montserrat", "Morocco", "Mozambique", "Myanmar", "Namibia", "Nauru",
	"Navassa Island", "Nepal", "Netherlands", "New Caledonia",
	"New Zealand", "Nicaragua", "Niger", "Nigeria", "Niue",
	"Norfolk Island", "North Korea", "North Sea", "Northern Mariana Islands",
	"Norway", "Oman", "Pacific Ocean", "Pakistan", "Palau", "Palmyra Atoll",
	"Panama", "Papua New Guinea", "Paracel Islands", "Paraguay", "Peru",
	"Philippines", "Pitcairn Islands", "Poland", "Portugal", "Puerto Rico",
	"Qatar", "Republic of the Congo", "Reunion", "Romania", "Ross Sea",
	"Russia", "Rwanda", "Saint Helena", "Saint Kitts and Nevis",
	"Saint Lucia", "Saint Pierre and Miquelon",
	"Saint Vincent and the Grenadines", "Samoa", "San Marino",
	"Sao Tome and Principe", "Saudi Arabia", "Senegal", "Serbia",
	"Seychelles", "Sierra Leone", "Singapore", "Sint Maarten", "Slovakia",
	"Slovenia", "Solomon Islands", "Somalia", "South Africa",
	"South Georgia and the South Sandwich Islands", "South Korea",
	"Southern Ocean", "Spain", "Spratly Islands", "Sri Lanka", "Sudan",
	"Suriname", "Svalbard", "Swaziland", "Sweden", "Switzerland", "Syria",
	"Taiwan", "Tajikistan", "Tanzania", "Tasman Sea", "Thailand", "Togo",
	"Tokelau", "Tonga", "Trinidad and Tobago", "Tromelin Island", "Tunisia",
	"Turkey", "Turkmenistan", "Turks and Caicos Islands", "Tuvalu", "USA",
	"Uganda", "Ukraine", "United Arab Emirates", "United Kingdom",
	"Uruguay", "Uzbekistan", "Vanuatu", "Venezuela", "Viet Nam",
	"Virgin Islands", "Wake Island", "Wallis and Futuna", "West Bank",
	"Western Sahara", "Yemen", "Zambia", "Zimbabwe", "not applicable",
	"not collected", "not provided", "restricted access",
}

var gals = []string{
	"Dalhousie University", "Earlham Institute", "Geomar Helmholtz Centre",
	"Marine Biological Association", "Natural History Museum",
	"Nova Southeastern University", "Portland State University",
	"Queen Mary University of London", "Royal Botanic Garden Edinburgh",
	"Royal Botanic Gardens Kew", "Sanger Institute",
	"Senckenberg Research Institute", "The Sainsbury Laboratory",
	"University of British Columbia", "University of California",
	"University of Cambridge", "University of Derby",
	"University of Edinburgh", "University of Oregon",
	"University of Oxford", "University of Rhode Island",
	"University of Vienna (Cephalopod)", "University of Vienna (Mollusc)",
}

var checklist = []Check{
	{Name: "organism part", Field: "ORGANISM_PART", Mandatory: true},
	{Name: "lifestage", Field: "LIFESTAGE", Mandatory: true, Allowed: lifestages},
	{Name: "project name", Mandatory: true},
	{Name: "collected by", Field: "COLLECTED_BY", Mandatory: true},
	{Name: "collection date", Field: "DATE_OF_COLLECTION", Mandatory: true, Pattern: collectionDateRe},
	{Name: "geographic location (country and/or sea)", Field: "COLLECTION_LOCATION", Mandatory: true, Allowed: countriesAndSeas},
	{Name: "geographic location (latitude)", Field: "DECIMAL_LATITUDE", Mandatory: true, Pattern: latLongRe},
	{Name: "geographic location (longitude)", Field: "DECIMAL_LONGITUDE", Mandatory: true, Pattern: latLongRe},
	{Name: "geographic location (region and locality)", Field: "COLLECTION_LOCATION", Mandatory: true},
	{Name: "identified_by", Field: "IDENTIFIED_BY", Mandatory: true},
	{Name: "geographic location (depth)", Field: "DEPTH", Pattern: depthRe},
	{Name: "geographic location (elevation)", Field: "ELEVATION", Pattern: elevationRe},
	{Name: "habitat", Field: "HABITAT", Mandatory: true},
	{Name: "identifier_affiliation", Field: "IDENTIFIER_AFFILIATION", Mandatory: true},
	{Name: "original collection date", Field: "ORIGINAL_COLLECTION_DATE", Pattern: originalDateRe},
	{Name: "original geographic location", Field: "ORIGINAL_GEOGRAPHIC_LOCATION"},
	{Name: "sample derived from", Pattern: derivedFromRe},
	{Name: "sample same as", Pattern: sameAsRe},
	{Name: "sample symbiont of", Pattern: symbiontOfRe},
	{Name: "sex", Field: "SEX", Mandatory: true},
	{Name: "relationship", Field: "RELATIONSHIP"},
	{Name: "symbiont", Field: "SYMBIONT", Allowed: []string{"N", "Y"}},
	{Name: "collecting institution", Field: "COLLECTOR_AFFILIATION", Mandatory: true},
	{Name: "GAL", Field: "GAL", Mandatory: true, Allowed: gals},
	{Name: "specimen_voucher", Field: "VOUCHER_ID", Mandatory: true},
	{Name: "specimen_id", Field: "SPECIMEN_ID", Mandatory: true},
	{Name: "GAL_sample_id", Field: "GAL_SAMPLE_ID", Mandatory: true},
	{Name: "culture_or_strain_id", Field: "CULTURE_OR_STRAIN_ID"},
}

// Checklist returns the ordered checklist entries. Callers must not mutate
// the returned slice.
func Checklist() []Check {
	return checklist
}
