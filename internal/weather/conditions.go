package weather

// ConditionInfo describes how a WMO weather code is presented. Text is an
// i18n message key.
type ConditionInfo struct {
	Code      int
	Text      string
	Icon      string
	Glyph     string
	Condition Condition
	Theme     Theme
}

// DefaultConditionCode is the entry unknown codes fall back to.
const DefaultConditionCode = 0

// FallbackIcon is shown when a condition's icon asset cannot be used.
const FallbackIcon = "unknown.svg"

// conditionTable maps WMO weather interpretation codes as returned by
// Open-Meteo. https://open-meteo.com/en/docs#weathervariables
var conditionTable = map[int]ConditionInfo{
	0:  {0, "Clear sky", "clear-day.svg", "☀", ConditionClear, ThemeSunny},
	1:  {1, "Mainly clear", "mostly-clear-day.svg", "🌤", ConditionClear, ThemeSunny},
	2:  {2, "Partly cloudy", "partly-cloudy-day.svg", "⛅", ConditionCloudy, ThemeCloudy},
	3:  {3, "Overcast", "overcast.svg", "☁", ConditionCloudy, ThemeCloudy},
	45: {45, "Fog", "fog.svg", "🌫", ConditionFog, ThemeCloudy},
	48: {48, "Depositing rime fog", "fog.svg", "🌫", ConditionFog, ThemeCloudy},
	51: {51, "Light drizzle", "drizzle.svg", "🌦", ConditionRain, ThemeCloudy},
	53: {53, "Moderate drizzle", "drizzle.svg", "🌦", ConditionRain, ThemeCloudy},
	55: {55, "Dense drizzle", "drizzle.svg", "🌧", ConditionRain, ThemeCloudy},
	56: {56, "Light freezing drizzle", "sleet.svg", "🌧", ConditionRain, ThemeCloudy},
	57: {57, "Dense freezing drizzle", "sleet.svg", "🌧", ConditionRain, ThemeCloudy},
	61: {61, "Slight rain", "rain.svg", "🌦", ConditionRain, ThemeCloudy},
	63: {63, "Moderate rain", "rain.svg", "🌧", ConditionRain, ThemeCloudy},
	65: {65, "Heavy rain", "rain.svg", "🌧", ConditionRain, ThemeCloudy},
	66: {66, "Light freezing rain", "sleet.svg", "🌧", ConditionRain, ThemeCloudy},
	67: {67, "Heavy freezing rain", "sleet.svg", "🌧", ConditionRain, ThemeCloudy},
	71: {71, "Slight snow fall", "snow.svg", "🌨", ConditionSnow, ThemeCloudy},
	73: {73, "Moderate snow fall", "snow.svg", "🌨", ConditionSnow, ThemeCloudy},
	75: {75, "Heavy snow fall", "snow.svg", "❄", ConditionSnow, ThemeCloudy},
	77: {77, "Snow grains", "snow.svg", "❄", ConditionSnow, ThemeCloudy},
	80: {80, "Slight rain showers", "showers.svg", "🌦", ConditionRain, ThemeCloudy},
	81: {81, "Moderate rain showers", "showers.svg", "🌧", ConditionRain, ThemeCloudy},
	82: {82, "Violent rain showers", "showers.svg", "⛈", ConditionRain, ThemeCloudy},
	85: {85, "Slight snow showers", "snow-showers.svg", "🌨", ConditionSnow, ThemeCloudy},
	86: {86, "Heavy snow showers", "snow-showers.svg", "❄", ConditionSnow, ThemeCloudy},
	95: {95, "Thunderstorm", "thunderstorms.svg", "⛈", ConditionStorm, ThemeCloudy},
	96: {96, "Thunderstorm with slight hail", "thunderstorms-hail.svg", "⛈", ConditionStorm, ThemeCloudy},
	99: {99, "Thunderstorm with heavy hail", "thunderstorms-hail.svg", "⛈", ConditionStorm, ThemeCloudy},
}

// MapCondition looks up code. Unknown codes return the clear-sky entry.
func MapCondition(code int) ConditionInfo {
	if info, ok := conditionTable[code]; ok {
		return info
	}
	return conditionTable[DefaultConditionCode]
}

// ConditionCodes returns every code in the table, for iteration in tests and
// docs. Order is unspecified.
func ConditionCodes() []int {
	codes := make([]int, 0, len(conditionTable))
	for code := range conditionTable {
		codes = append(codes, code)
	}
	return codes
}
