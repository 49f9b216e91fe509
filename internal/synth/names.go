package synth

import (
	"fmt"

	"github.com/lokeshchintha/nearfind/internal/geo"
)

// metroArea is a coarse bounding box around a known metro, carrying the
// locality names used for region-aware generation.
type metroArea struct {
	name       string
	minLat     float64
	maxLat     float64
	minLng     float64
	maxLng     float64
	localities []string
}

var metroAreas = []metroArea{
	{"New Delhi", 28.35, 28.90, 76.85, 77.45, []string{"Connaught Place", "Karol Bagh", "Saket", "Dwarka", "Lajpat Nagar", "Rohini"}},
	{"Mumbai", 18.85, 19.30, 72.75, 73.05, []string{"Bandra", "Andheri", "Colaba", "Dadar", "Powai", "Juhu"}},
	{"Bengaluru", 12.80, 13.15, 77.45, 77.80, []string{"Koramangala", "Indiranagar", "Jayanagar", "Whitefield", "Malleshwaram", "HSR Layout"}},
	{"Chennai", 12.90, 13.25, 80.10, 80.35, []string{"T. Nagar", "Adyar", "Anna Nagar", "Mylapore", "Velachery", "Nungambakkam"}},
	{"Kolkata", 22.45, 22.75, 88.25, 88.50, []string{"Park Street", "Salt Lake", "Ballygunge", "Howrah", "New Town", "Alipore"}},
	{"Hyderabad", 17.25, 17.60, 78.30, 78.65, []string{"Banjara Hills", "Gachibowli", "Secunderabad", "Jubilee Hills", "Kukatpally", "Madhapur"}},
}

// fallbackCities is the fixed city list used when no metro box matches; the
// pick is deterministic per location.
var fallbackCities = []string{
	"Jaipur", "Lucknow", "Pune", "Ahmedabad", "Chandigarh",
	"Indore", "Nagpur", "Kochi", "Bhopal", "Coimbatore",
}

// metroFor returns the metro containing the coordinate, if any.
func metroFor(c geo.Coordinate) (metroArea, bool) {
	for _, m := range metroAreas {
		if c.Lat >= m.minLat && c.Lat <= m.maxLat && c.Lng >= m.minLng && c.Lng <= m.maxLng {
			return m, true
		}
	}
	return metroArea{}, false
}

// nameTemplates renders business names per category; %s receives a city or
// locality prefix.
var nameTemplates = map[string][]string{
	"restaurant":  {"%s Spice Garden", "Royal %s Kitchen", "%s Tandoor House", "The %s Curry Leaf", "%s Family Restaurant", "Annapurna %s", "%s Biryani Corner", "Swad of %s"},
	"cafe":        {"%s Coffee House", "Cafe %s", "%s Chai Point", "The %s Brew", "%s Bakers & Beans", "Filter House %s", "%s Espresso Bar", "Corner Cup %s"},
	"hotel":       {"Hotel %s Grand", "%s Residency", "The %s Palace", "%s Inn & Suites", "%s Comfort Stay", "Hotel %s Heights", "%s Regency", "The %s Retreat"},
	"hospital":    {"%s City Hospital", "%s Medical Centre", "Lifeline %s", "%s Multispeciality Clinic", "%s Care Hospital", "Apex %s Hospital", "%s Health Institute", "%s Nursing Home"},
	"pharmacy":    {"%s Medicos", "%s Pharmacy", "Wellness Chemist %s", "%s Drug Store", "MediPlus %s", "%s Health Mart", "City Chemists %s", "%s Care Pharmacy"},
	"fuel":        {"%s Fuel Station", "%s Petroleum", "Highway Fuels %s", "%s Service Station", "City Fuels %s", "%s Energy Stop", "%s Filling Station", "Metro Fuels %s"},
	"bank":        {"%s Cooperative Bank", "Bank of %s", "%s National Bank", "%s Savings Bank", "United %s Bank", "%s Commercial Bank", "%s Peoples Bank", "First %s Bank"},
	"atm":         {"%s ATM", "Cash Point %s", "%s Bank ATM", "QuickCash %s", "%s 24x7 ATM", "Metro ATM %s", "%s Express ATM", "CityCash %s"},
	"supermarket": {"%s Supermart", "%s Bazaar", "Daily Needs %s", "%s Hypermarket", "FreshMart %s", "%s Grocery Store", "Smart Bazaar %s", "%s Provision Store"},
	"attraction":  {"%s Heritage Park", "%s Museum", "%s Gardens", "Old %s Fort", "%s Lake View", "%s Cultural Centre", "%s Memorial", "%s Exhibition Grounds"},
	"school":      {"%s Public School", "St. Mary's %s", "%s International School", "%s Academy", "%s Model School", "Central School %s", "%s Convent School", "%s High School"},
	"parking":     {"%s Parking Complex", "%s Multi-Level Parking", "City Parking %s", "%s Vehicle Park", "%s Parking Zone", "Metro Parking %s", "%s Smart Parking", "%s Paid Parking"},
}

// genericTemplates serves categories without a dedicated list.
var genericTemplates = []string{"%s Corner", "%s Centre", "%s Point", "%s Plaza", "%s Hub", "New %s Services", "%s Junction", "%s Square"}

// streetTemplates builds plausible local street names; %s receives a
// locality or city.
var streetTemplates = []string{
	"%s Main Road", "%s Market Road", "Station Road, %s", "%s Cross Street",
	"MG Road, %s", "Gandhi Marg, %s", "%s Ring Road", "Temple Street, %s",
}

// openingHours holds category-appropriate opening-hours candidates.
var openingHours = map[string][]string{
	"restaurant":  {"11:00 AM - 11:00 PM", "12:00 PM - 10:30 PM", "10:00 AM - 11:30 PM"},
	"cafe":        {"7:00 AM - 10:00 PM", "8:00 AM - 9:00 PM", "6:30 AM - 11:00 PM"},
	"hotel":       {"Open 24 hours"},
	"hospital":    {"Open 24 hours", "Emergency 24x7, OPD 9:00 AM - 5:00 PM"},
	"pharmacy":    {"8:00 AM - 10:00 PM", "Open 24 hours", "9:00 AM - 9:00 PM"},
	"fuel":        {"Open 24 hours", "5:00 AM - 11:00 PM"},
	"bank":        {"9:30 AM - 4:30 PM (Mon-Sat)", "10:00 AM - 4:00 PM (Mon-Fri)"},
	"atm":         {"Open 24 hours"},
	"supermarket": {"8:00 AM - 10:00 PM", "9:00 AM - 9:30 PM", "7:00 AM - 11:00 PM"},
	"attraction":  {"9:00 AM - 6:00 PM", "Sunrise to sunset", "10:00 AM - 5:00 PM (closed Mon)"},
	"school":      {"8:00 AM - 3:00 PM (Mon-Sat)"},
	"parking":     {"Open 24 hours", "6:00 AM - 12:00 AM"},
}

var genericHours = []string{"9:00 AM - 9:00 PM", "10:00 AM - 8:00 PM", "Open 24 hours"}

func pickName(p *prng, categoryKey, prefix string) string {
	templates, ok := nameTemplates[categoryKey]
	if !ok {
		templates = genericTemplates
	}
	return fmt.Sprintf(templates[p.intn(len(templates))], prefix)
}

func pickHours(p *prng, categoryKey string) string {
	candidates, ok := openingHours[categoryKey]
	if !ok {
		candidates = genericHours
	}
	return candidates[p.intn(len(candidates))]
}
