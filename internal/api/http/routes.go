package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/city-weather/internal/display"
	"github.com/i474232898/city-weather/internal/lastcity"
	"github.com/i474232898/city-weather/internal/weather"
)

var validate = validator.New()

// Deps are the components the routes serve.
type Deps struct {
	Service  *weather.Service
	LastCity *lastcity.Cache
	// MaxAge bounds how old a saved city may be. Zero means the cache default.
	MaxAge time.Duration
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		// Geocoding failures degrade to an empty list, never a 5xx.
		results := deps.Service.Search(c.UserContext(), c.Query("q"))
		return c.JSON(fiber.Map{"results": results})
	})

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		city, err := parseCityQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := deps.Service.FetchCurrent(c.UserContext(), city)
		if err != nil {
			var fe *weather.FetchError
			if errors.As(err, &fe) {
				return fiber.NewError(fiber.StatusBadGateway, fe.Message)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}

		card := display.Present(snapshot, deps.Service.Printer())
		return c.JSON(currentResponse{
			WeatherSnapshot: snapshot,
			Icon:            card.Icon,
			Theme:           card.Theme,
		})
	})

	v1.Get("/last-city", func(c *fiber.Ctx) error {
		rec, ok := deps.LastCity.Load(deps.MaxAge)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no saved city")
		}
		return c.JSON(rec)
	})

	v1.Put("/last-city", func(c *fiber.Ctx) error {
		var req saveCityRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		deps.LastCity.Save(req.City, req.DisplayText)
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/last-city", func(c *fiber.Ctx) error {
		if !deps.LastCity.Clear() {
			return fiber.NewError(fiber.StatusServiceUnavailable, "saved city could not be cleared")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// currentResponse is a snapshot plus the presentation hints a front-end
// needs to render it.
type currentResponse struct {
	weather.WeatherSnapshot
	Icon  string        `json:"icon"`
	Theme weather.Theme `json:"theme"`
}

// saveCityRequest is the body of PUT /last-city.
type saveCityRequest struct {
	City        weather.CityCandidate `json:"city"`
	DisplayText string                `json:"displayText"`
}

// parseCityQuery builds a candidate from lat, lon, name, country and a
// comma-separated postcodes parameter.
func parseCityQuery(c *fiber.Ctx) (weather.CityCandidate, error) {
	var city weather.CityCandidate

	lat, err := parseCoordinate(c.Query("lat"), "lat")
	if err != nil {
		return city, err
	}
	lon, err := parseCoordinate(c.Query("lon"), "lon")
	if err != nil {
		return city, err
	}

	city.Latitude = lat
	city.Longitude = lon
	city.DisplayName = strings.TrimSpace(c.Query("name"))
	city.Country = strings.TrimSpace(c.Query("country"))
	city.PostalCodes = splitList(c.Query("postcodes"))

	if err := validate.Struct(city); err != nil {
		return city, err
	}
	return city, nil
}

func parseCoordinate(s, name string) (float64, error) {
	if s == "" {
		return 0, errors.New(name + " query parameter is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("invalid " + name + "; use decimal degrees")
	}
	return v, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
