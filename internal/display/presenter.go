package display

import (
	"strings"

	"golang.org/x/text/message"

	"github.com/i474232898/city-weather/internal/common"
	"github.com/i474232898/city-weather/internal/i18n"
	"github.com/i474232898/city-weather/internal/weather"
)

// maxPostalTitle is how many postal codes the detail title lists.
const maxPostalTitle = 3

// Card is a WeatherSnapshot formatted for display. Every field is final text.
type Card struct {
	Temperature string
	FeelsLike   string
	Condition   string
	Location    string
	Humidity    string
	Wind        string

	PostalText   string
	PostalTitle  string
	PostalHidden bool

	Icon  string
	Glyph string
	Theme weather.Theme
}

// Present formats s with p's locale.
func Present(s weather.WeatherSnapshot, p *message.Printer) Card {
	info := weather.MapCondition(s.ConditionCode)
	icon := info.Icon
	if common.IsBlank(icon) {
		icon = weather.FallbackIcon
	}

	text, title, hidden := FormatPostalCodes(s.PostalCodes, p)
	return Card{
		Temperature:  p.Sprintf("%d°C", s.TemperatureC),
		FeelsLike:    p.Sprintf("%d°C", s.FeelsLikeC),
		Condition:    s.ConditionText,
		Location:     FormatLocation(s.CityName, s.Country, p),
		Humidity:     p.Sprintf("%d%%", s.HumidityPct),
		Wind:         p.Sprintf("%.1f km/h", s.WindSpeedKmh),
		PostalText:   text,
		PostalTitle:  title,
		PostalHidden: hidden,
		Icon:         icon,
		Glyph:        info.Glyph,
		Theme:        info.Theme,
	}
}

// FormatLocation renders "City, Country", dropping the country when empty.
func FormatLocation(city, country string, p *message.Printer) string {
	if common.IsBlank(city) {
		city = p.Sprintf(i18n.MsgUnknownLocation)
	}
	if common.IsBlank(country) {
		return city
	}
	return city + ", " + country
}

// FormatPostalCodes shows the first code, with "+N more" when there are
// others. The title lists up to the first three. An empty list hides the
// field.
func FormatPostalCodes(codes []string, p *message.Printer) (text, title string, hidden bool) {
	if len(codes) == 0 {
		return "", "", true
	}

	n := min(len(codes), maxPostalTitle)
	title = strings.Join(codes[:n], ", ")
	if len(codes) == 1 {
		return codes[0], title, false
	}
	return p.Sprintf(i18n.MsgPostalMore, codes[0], len(codes)-1), title, false
}
