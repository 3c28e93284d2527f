package weather

// CodeInfo describes a WMO weather interpretation code.
type CodeInfo struct {
	Condition   Condition
	Description string
	Icon        string
}

var unknownCode = CodeInfo{Condition: ConditionUnknown, Description: "Unknown weather", Icon: "01d"}

// wmoCodes maps WMO weather interpretation codes (as used by Open-Meteo).
var wmoCodes = map[int]CodeInfo{
	0:  {ConditionClear, "Clear sky", "01d"},
	1:  {ConditionClear, "Mainly clear", "01d"},
	2:  {ConditionClouds, "Partly cloudy", "02d"},
	3:  {ConditionClouds, "Overcast", "03d"},
	45: {ConditionFog, "Fog", "50d"},
	48: {ConditionFog, "Depositing rime fog", "50d"},
	51: {ConditionDrizzle, "Light drizzle", "09d"},
	53: {ConditionDrizzle, "Moderate drizzle", "09d"},
	55: {ConditionDrizzle, "Dense drizzle", "09d"},
	56: {ConditionDrizzle, "Light freezing drizzle", "09d"},
	57: {ConditionDrizzle, "Dense freezing drizzle", "09d"},
	61: {ConditionRain, "Slight rain", "10d"},
	63: {ConditionRain, "Moderate rain", "10d"},
	65: {ConditionRain, "Heavy rain", "10d"},
	66: {ConditionRain, "Light freezing rain", "13d"},
	67: {ConditionRain, "Heavy freezing rain", "13d"},
	71: {ConditionSnow, "Slight snow fall", "13d"},
	73: {ConditionSnow, "Moderate snow fall", "13d"},
	75: {ConditionSnow, "Heavy snow fall", "13d"},
	77: {ConditionSnow, "Snow grains", "13d"},
	80: {ConditionRain, "Slight rain showers", "09d"},
	81: {ConditionRain, "Moderate rain showers", "09d"},
	82: {ConditionRain, "Violent rain showers", "09d"},
	85: {ConditionSnow, "Slight snow showers", "13d"},
	86: {ConditionSnow, "Heavy snow showers", "13d"},
	95: {ConditionThunderstorm, "Thunderstorm", "11d"},
	96: {ConditionThunderstorm, "Thunderstorm with slight hail", "11d"},
	99: {ConditionThunderstorm, "Thunderstorm with heavy hail", "11d"},
}

// DescribeCode maps a WMO code; codes outside the table are Unknown.
func DescribeCode(code int) CodeInfo {
	if info, ok := wmoCodes[code]; ok {
		return info
	}
	return unknownCode
}
