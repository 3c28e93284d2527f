package weather

import "strings"

const DefaultSuggestionLimit = 5

var commonCities = []string{
	"London", "New York", "Tokyo", "Paris", "Sydney", "Berlin", "Moscow", "Cairo", "Mumbai", "Beijing",
	"Los Angeles", "Chicago", "Houston", "Phoenix", "Philadelphia", "San Antonio", "San Diego", "Dallas",
	"Madrid", "Barcelona", "Rome", "Milan", "Naples", "Amsterdam", "Brussels", "Vienna", "Prague",
	"Warsaw", "Stockholm", "Copenhagen", "Oslo", "Helsinki", "Dublin", "Edinburgh", "Manchester",
	"Liverpool", "Glasgow", "Cardiff", "Toronto", "Vancouver", "Montreal", "Ottawa", "Calgary",
	"Mexico City", "Guadalajara", "Monterrey", "São Paulo", "Rio de Janeiro", "Buenos Aires",
	"Lima", "Bogotá", "Santiago", "Caracas", "Bangkok", "Singapore", "Manila", "Jakarta",
	"Kuala Lumpur", "Hong Kong", "Seoul", "Taipei", "Shanghai", "Guangzhou", "Shenzhen",
	"Delhi", "Bangalore", "Chennai", "Kolkata", "Hyderabad", "Pune", "Ahmedabad", "Jaipur",
	"Dubai", "Abu Dhabi", "Doha", "Kuwait City", "Riyadh", "Jeddah", "Tel Aviv", "Jerusalem",
	"Istanbul", "Ankara", "Athens", "Thessaloniki", "Sofia", "Bucharest", "Budapest", "Zagreb",
	"Ljubljana", "Bratislava", "Vilnius", "Riga", "Tallinn", "Minsk", "Kiev", "Lviv",
	"Casablanca", "Algiers", "Tunis", "Lagos", "Accra", "Nairobi", "Addis Ababa", "Cape Town",
	"Johannesburg", "Durban", "Perth", "Adelaide", "Brisbane", "Melbourne", "Auckland", "Wellington",
}

// Suggest returns up to limit well-known cities whose name contains input,
// case-insensitively. Inputs shorter than two characters yield nothing.
func Suggest(input string, limit int) []string {
	if len([]rune(input)) < 2 {
		return []string{}
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	term := strings.ToLower(input)
	out := make([]string, 0, limit)
	for _, city := range commonCities {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(city), term) {
			out = append(out, city)
		}
	}
	return out
}
