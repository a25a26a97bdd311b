package aggregate

import (
	"sort"
	"strings"

	"github.com/brightwater-dev/leadboard/internal/models"
)

// UnknownLabel is the bucket for contacts whose location cannot be derived.
const UnknownLabel = "Unknown"

// ExtractAreaCode pulls a North American area code out of a phone number in
// any formatting. A 10-digit number yields its first three digits; an
// 11-digit number starting with the country code 1 yields digits two through
// four. Anything else yields "".
func ExtractAreaCode(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 10:
		return d[:3]
	case len(d) == 11 && d[0] == '1':
		return d[1:4]
	default:
		return ""
	}
}

// bestPhone prefers mobile, then primary, then work.
func bestPhone(c models.Contact) string {
	if c.MobilePhone != "" {
		return c.MobilePhone
	}
	if c.Phone != "" {
		return c.Phone
	}
	return c.WorkPhone
}

// ByLocation groups contacts by the city mapped from their phone's area code.
// Unmapped area codes and missing numbers fall into the UnknownLabel bucket.
func ByLocation(contacts []models.Contact) []models.LocationCount {
	counts := make(map[string]int)
	unknown := 0
	for _, c := range contacts {
		code := ExtractAreaCode(bestPhone(c))
		if city, ok := areaCodeToCity[code]; ok && code != "" {
			counts[city]++
		} else {
			unknown++
		}
	}

	out := make([]models.LocationCount, 0, len(counts)+1)
	for city, n := range counts {
		out = append(out, models.LocationCount{Location: city, Leads: n})
	}
	if unknown > 0 {
		out = append(out, models.LocationCount{Location: UnknownLabel, Leads: unknown})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Leads != out[j].Leads {
			return out[i].Leads > out[j].Leads
		}
		return out[i].Location < out[j].Location
	})
	return out
}

// ByZipCode groups contacts by the first five characters of their postal
// code, labeled with the city when one is known.
func ByZipCode(contacts []models.Contact) []models.ZipCodeCount {
	type zipInfo struct {
		count int
		city  string
	}
	zips := make(map[string]*zipInfo)
	unknown := 0
	for _, c := range contacts {
		zip := strings.TrimSpace(c.Postcode)
		if zip == "" {
			unknown++
			continue
		}
		if len(zip) > 5 {
			zip = zip[:5]
		}
		info, ok := zips[zip]
		if !ok {
			info = &zipInfo{}
			zips[zip] = info
		}
		info.count++
		if info.city == "" {
			info.city = c.City
		}
	}

	out := make([]models.ZipCodeCount, 0, len(zips)+1)
	for zip, info := range zips {
		label := zip
		if info.city != "" {
			label = zip + " " + info.city
		}
		out = append(out, models.ZipCodeCount{ZipCode: label, Leads: info.count})
	}
	if unknown > 0 {
		out = append(out, models.ZipCodeCount{ZipCode: UnknownLabel, Leads: unknown})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Leads != out[j].Leads {
			return out[i].Leads > out[j].Leads
		}
		return out[i].ZipCode < out[j].ZipCode
	})
	return out
}

// areaCodeToCity maps US and Canadian area codes to a city label for the
// geographic distribution chart.
var areaCodeToCity = map[string]string{
	// California
	"209": "Stockton, CA", "213": "Los Angeles, CA", "310": "West LA, CA", "323": "Los Angeles, CA",
	"408": "San Jose, CA", "415": "San Francisco, CA", "510": "Oakland, CA", "562": "Long Beach, CA",
	"619": "San Diego, CA", "626": "Pasadena, CA", "650": "San Mateo, CA", "657": "Anaheim, CA",
	"661": "Bakersfield, CA", "669": "San Jose, CA", "707": "Santa Rosa, CA", "714": "Orange County, CA",
	"747": "Los Angeles, CA", "760": "Carlsbad, CA", "805": "Santa Barbara, CA", "818": "San Fernando Valley, CA",
	"831": "Salinas, CA", "858": "San Diego, CA", "909": "San Bernardino, CA", "916": "Sacramento, CA",
	"925": "Concord, CA", "949": "Irvine, CA", "951": "Riverside, CA",

	// Florida
	"239": "Fort Myers, FL", "305": "Miami, FL", "321": "Orlando, FL", "352": "Gainesville, FL",
	"386": "Daytona Beach, FL", "407": "Orlando, FL", "561": "West Palm Beach, FL", "727": "St. Petersburg, FL",
	"754": "Fort Lauderdale, FL", "772": "Port St. Lucie, FL", "786": "Miami, FL", "813": "Tampa, FL",
	"850": "Tallahassee, FL", "863": "Lakeland, FL", "904": "Jacksonville, FL", "941": "Sarasota, FL",
	"954": "Fort Lauderdale, FL",

	// Texas
	"210": "San Antonio, TX", "214": "Dallas, TX", "254": "Waco, TX", "281": "Houston, TX",
	"325": "Abilene, TX", "361": "Corpus Christi, TX", "409": "Beaumont, TX", "430": "Tyler, TX",
	"432": "Midland, TX", "469": "Dallas, TX", "512": "Austin, TX", "682": "Fort Worth, TX",
	"713": "Houston, TX", "737": "Austin, TX", "806": "Lubbock, TX", "817": "Fort Worth, TX",
	"830": "New Braunfels, TX", "832": "Houston, TX", "903": "Tyler, TX", "915": "El Paso, TX",
	"936": "Conroe, TX", "940": "Wichita Falls, TX", "956": "Laredo, TX", "972": "Dallas, TX",
	"979": "Bryan, TX",

	// New York
	"212": "Manhattan, NY", "315": "Syracuse, NY", "347": "Brooklyn, NY", "516": "Long Island, NY",
	"518": "Albany, NY", "585": "Rochester, NY", "607": "Binghamton, NY", "631": "Long Island, NY",
	"646": "Manhattan, NY", "716": "Buffalo, NY", "718": "Brooklyn, NY", "845": "Poughkeepsie, NY",
	"914": "Westchester, NY", "917": "Manhattan, NY", "929": "Queens, NY",

	// Pennsylvania
	"215": "Philadelphia, PA", "267": "Philadelphia, PA", "272": "Scranton, PA", "412": "Pittsburgh, PA",
	"484": "Allentown, PA", "570": "Scranton, PA", "610": "Allentown, PA", "717": "Harrisburg, PA",
	"724": "Pittsburgh, PA", "814": "Erie, PA", "878": "Pittsburgh, PA",

	// Illinois
	"217": "Springfield, IL", "224": "Chicago, IL", "309": "Peoria, IL", "312": "Chicago, IL",
	"331": "Chicago, IL", "618": "Belleville, IL", "630": "Chicago, IL", "708": "Chicago, IL",
	"773": "Chicago, IL", "815": "Rockford, IL", "847": "Chicago, IL", "872": "Chicago, IL",

	// Ohio
	"216": "Cleveland, OH", "220": "Newark, OH", "234": "Akron, OH", "330": "Akron, OH",
	"380": "Columbus, OH", "419": "Toledo, OH", "440": "Cleveland, OH", "513": "Cincinnati, OH",
	"567": "Toledo, OH", "614": "Columbus, OH", "740": "Newark, OH", "937": "Dayton, OH",

	// Georgia
	"229": "Albany, GA", "404": "Atlanta, GA", "470": "Atlanta, GA", "478": "Macon, GA",
	"678": "Atlanta, GA", "706": "Augusta, GA", "762": "Augusta, GA", "770": "Atlanta, GA",
	"912": "Savannah, GA",

	// North Carolina
	"252": "Greenville, NC", "336": "Greensboro, NC", "704": "Charlotte, NC", "743": "Greensboro, NC",
	"828": "Asheville, NC", "910": "Fayetteville, NC", "919": "Raleigh, NC", "980": "Charlotte, NC",

	// Michigan
	"231": "Muskegon, MI", "248": "Detroit, MI", "269": "Kalamazoo, MI", "313": "Detroit, MI",
	"517": "Lansing, MI", "586": "Detroit, MI", "616": "Grand Rapids, MI", "734": "Ann Arbor, MI",
	"810": "Flint, MI", "906": "Marquette, MI", "947": "Troy, MI", "989": "Saginaw, MI",

	// New Jersey
	"201": "Jersey City, NJ", "551": "Jersey City, NJ", "609": "Atlantic City, NJ", "732": "New Brunswick, NJ",
	"848": "Toms River, NJ", "856": "Camden, NJ", "862": "Newark, NJ", "908": "Elizabeth, NJ",
	"973": "Newark, NJ",

	// Virginia
	"276": "Bristol, VA", "434": "Lynchburg, VA", "540": "Roanoke, VA", "571": "Arlington, VA",
	"703": "Arlington, VA", "757": "Virginia Beach, VA", "804": "Richmond, VA",

	// Washington
	"206": "Seattle, WA", "253": "Tacoma, WA", "360": "Olympia, WA", "425": "Bellevue, WA",
	"509": "Spokane, WA", "564": "Seattle, WA",

	// Massachusetts
	"339": "Boston, MA", "351": "Lowell, MA", "413": "Springfield, MA", "508": "Worcester, MA",
	"617": "Boston, MA", "774": "Worcester, MA", "781": "Boston, MA", "857": "Boston, MA",
	"978": "Lowell, MA",

	// Arizona
	"480": "Scottsdale, AZ", "520": "Tucson, AZ", "602": "Phoenix, AZ", "623": "Phoenix, AZ",
	"928": "Flagstaff, AZ",

	// Tennessee
	"423": "Chattanooga, TN", "615": "Nashville, TN", "629": "Nashville, TN", "731": "Jackson, TN",
	"865": "Knoxville, TN", "901": "Memphis, TN", "931": "Clarksville, TN",

	// Indiana
	"219": "Gary, IN", "260": "Fort Wayne, IN", "317": "Indianapolis, IN", "463": "Indianapolis, IN",
	"574": "South Bend, IN", "765": "Muncie, IN", "812": "Evansville, IN", "930": "Bloomington, IN",

	// Missouri
	"314": "St. Louis, MO", "417": "Springfield, MO", "573": "Columbia, MO", "636": "St. Louis, MO",
	"660": "Sedalia, MO", "816": "Kansas City, MO",

	// Maryland
	"240": "Frederick, MD", "301": "Bethesda, MD", "410": "Baltimore, MD", "443": "Baltimore, MD",
	"667": "Baltimore, MD",

	// Wisconsin
	"262": "Kenosha, WI", "414": "Milwaukee, WI", "534": "Eau Claire, WI", "608": "Madison, WI",
	"715": "Eau Claire, WI", "920": "Green Bay, WI",

	// Colorado
	"303": "Denver, CO", "719": "Colorado Springs, CO", "720": "Denver, CO", "970": "Fort Collins, CO",

	// Minnesota
	"218": "Duluth, MN", "320": "St. Cloud, MN", "507": "Rochester, MN", "612": "Minneapolis, MN",
	"651": "St. Paul, MN", "763": "Minneapolis, MN", "952": "Minneapolis, MN",

	// South Carolina
	"803": "Columbia, SC", "843": "Charleston, SC", "854": "Charleston, SC", "864": "Greenville, SC",

	// Alabama
	"205": "Birmingham, AL", "251": "Mobile, AL", "256": "Huntsville, AL", "334": "Montgomery, AL",
	"659": "Birmingham, AL", "938": "Huntsville, AL",

	// Louisiana
	"225": "Baton Rouge, LA", "318": "Shreveport, LA", "337": "Lafayette, LA", "504": "New Orleans, LA",
	"985": "New Orleans, LA",

	// Kentucky
	"270": "Bowling Green, KY", "364": "Bowling Green, KY", "502": "Louisville, KY", "606": "Ashland, KY",
	"859": "Lexington, KY",

	// Oregon
	"458": "Eugene, OR", "503": "Portland, OR", "541": "Eugene, OR", "971": "Portland, OR",

	// Oklahoma
	"405": "Oklahoma City, OK", "539": "Tulsa, OK", "580": "Lawton, OK", "918": "Tulsa, OK",

	// Connecticut
	"203": "New Haven, CT", "475": "Bridgeport, CT", "860": "Hartford, CT", "959": "Hartford, CT",

	// Iowa
	"319": "Cedar Rapids, IA", "515": "Des Moines, IA", "563": "Davenport, IA", "641": "Mason City, IA",
	"712": "Sioux City, IA",

	// Mississippi
	"228": "Gulfport, MS", "601": "Jackson, MS", "662": "Tupelo, MS", "769": "Jackson, MS",

	// Arkansas
	"479": "Fort Smith, AR", "501": "Little Rock, AR", "870": "Jonesboro, AR",

	// Kansas
	"316": "Wichita, KS", "620": "Dodge City, KS", "785": "Topeka, KS", "913": "Kansas City, KS",

	// Utah
	"385": "Salt Lake City, UT", "435": "St. George, UT", "801": "Salt Lake City, UT",

	// Nevada
	"702": "Las Vegas, NV", "725": "Las Vegas, NV", "775": "Reno, NV",

	// New Mexico
	"505": "Albuquerque, NM", "575": "Las Cruces, NM",

	// Nebraska
	"308": "Grand Island, NE", "402": "Omaha, NE", "531": "Omaha, NE",

	// West Virginia
	"304": "Charleston, WV", "681": "Huntington, WV",

	// Idaho
	"208": "Boise, ID", "986": "Boise, ID",

	// Remaining states and DC
	"808": "Honolulu, HI", "207": "Portland, ME", "603": "Manchester, NH",
	"401": "Providence, RI", "406": "Billings, MT", "302": "Wilmington, DE",
	"605": "Sioux Falls, SD", "701": "Fargo, ND", "907": "Anchorage, AK",
	"802": "Burlington, VT", "307": "Cheyenne, WY", "202": "Washington, DC",
}
