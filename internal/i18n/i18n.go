// Package i18n registers the English and German message catalogs and picks a
// printer for the configured language. Message keys are the English texts.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Supported lists the languages with a full catalog. The first entry is the
// fallback.
var Supported = []language.Tag{language.English, language.German}

// Message keys shared between packages.
const (
	MsgNoResults       = "No cities found"
	MsgCurrentlyShown  = "Currently showing: %s"
	MsgSearchHint      = "Search for a city..."
	MsgLoading         = "Loading..."
	MsgSubmit          = "Search"
	MsgBusy            = "Searching..."
	MsgFetchFailed     = "Weather data could not be loaded."
	MsgAnnounce        = "Weather for %s: %s, %d°C"
	MsgCacheCleared    = "Saved city cleared."
	MsgCacheClearFail  = "Saved city could not be cleared."
	MsgStorageDown     = "Storage unavailable, the city will not be remembered."
	MsgPostalMore      = "%s +%d more"
	MsgFeelsLike       = "Feels like %s"
	MsgHumidity        = "Humidity"
	MsgWind            = "Wind"
	MsgPostalCode      = "Postal code"
	MsgKeyHelp         = "enter select · ↑/↓ navigate · esc close · ctrl+x forget city · ctrl+c quit"
	MsgUnknownLocation = "Unknown location"
)

// ErrorCity and ErrorCondition are rendered in place of weather data when a
// fetch fails. They are deliberately the same in every language.
const (
	ErrorCity      = "Fehler / Error"
	ErrorCondition = "Keine Wetterdaten / No weather data"
)

var german = map[string]string{
	MsgNoResults:       "Keine Orte gefunden",
	MsgCurrentlyShown:  "Aktuell angezeigt: %s",
	MsgSearchHint:      "Stadt suchen...",
	MsgLoading:         "Wird geladen...",
	MsgSubmit:          "Suchen",
	MsgBusy:            "Suche läuft...",
	MsgFetchFailed:     "Wetterdaten konnten nicht geladen werden.",
	MsgAnnounce:        "Wetter für %s: %s, %d°C",
	MsgCacheCleared:    "Gespeicherte Stadt entfernt.",
	MsgCacheClearFail:  "Gespeicherte Stadt konnte nicht entfernt werden.",
	MsgStorageDown:     "Speicher nicht verfügbar, die Stadt wird nicht gemerkt.",
	MsgPostalMore:      "%s +%d weitere",
	MsgFeelsLike:       "Gefühlt %s",
	MsgHumidity:        "Luftfeuchtigkeit",
	MsgWind:            "Wind",
	MsgPostalCode:      "Postleitzahl",
	MsgKeyHelp:         "Enter auswählen · ↑/↓ navigieren · Esc schließen · Strg+X Stadt vergessen · Strg+C beenden",
	MsgUnknownLocation: "Unbekannter Ort",

	"Clear sky":                     "Klarer Himmel",
	"Mainly clear":                  "Überwiegend klar",
	"Partly cloudy":                 "Teilweise bewölkt",
	"Overcast":                      "Bedeckt",
	"Fog":                           "Nebel",
	"Depositing rime fog":           "Raureifnebel",
	"Light drizzle":                 "Leichter Nieselregen",
	"Moderate drizzle":              "Mäßiger Nieselregen",
	"Dense drizzle":                 "Starker Nieselregen",
	"Light freezing drizzle":        "Leichter gefrierender Nieselregen",
	"Dense freezing drizzle":        "Starker gefrierender Nieselregen",
	"Slight rain":                   "Leichter Regen",
	"Moderate rain":                 "Mäßiger Regen",
	"Heavy rain":                    "Starker Regen",
	"Light freezing rain":           "Leichter gefrierender Regen",
	"Heavy freezing rain":           "Starker gefrierender Regen",
	"Slight snow fall":              "Leichter Schneefall",
	"Moderate snow fall":            "Mäßiger Schneefall",
	"Heavy snow fall":               "Starker Schneefall",
	"Snow grains":                   "Schneegriesel",
	"Slight rain showers":           "Leichte Regenschauer",
	"Moderate rain showers":         "Mäßige Regenschauer",
	"Violent rain showers":          "Heftige Regenschauer",
	"Slight snow showers":           "Leichte Schneeschauer",
	"Heavy snow showers":            "Starke Schneeschauer",
	"Thunderstorm":                  "Gewitter",
	"Thunderstorm with slight hail": "Gewitter mit leichtem Hagel",
	"Thunderstorm with heavy hail":  "Gewitter mit starkem Hagel",
}

func init() {
	for key, text := range german {
		_ = message.SetString(language.German, key, text)
		_ = message.SetString(language.English, key, key)
	}
}

// Match resolves a user supplied language ("de", "de_DE.UTF-8", "en-GB")
// to one of the Supported tags. Anything unrecognized yields English.
func Match(lang string) language.Tag {
	lang = strings.TrimSpace(lang)
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	lang = strings.ReplaceAll(lang, "_", "-")
	if lang == "" {
		return Supported[0]
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return Supported[0]
	}
	base, _ := tag.Base()
	for _, s := range Supported {
		if sb, _ := s.Base(); sb == base {
			return s
		}
	}
	return Supported[0]
}

// NewPrinter returns a printer for lang, see Match.
func NewPrinter(lang string) *message.Printer {
	return message.NewPrinter(Match(lang))
}

// Code returns the two-letter code of the printer's language as sent to the
// geocoding endpoint.
func Code(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
