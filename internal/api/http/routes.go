package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-analytics/internal/common"
	"github.com/i474232898/weather-analytics/internal/logging"
	"github.com/i474232898/weather-analytics/internal/store"
	"github.com/i474232898/weather-analytics/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	cities := v1.Group("/cities")

	cities.Get("/validate", func(c *fiber.Ctx) error {
		return c.JSON(service.Validate(c.Query("name")))
	})

	cities.Get("/suggest", func(c *fiber.Ctx) error {
		req := suggestQuery{Query: c.Query("q"), Limit: c.QueryInt("limit", weather.DefaultSuggestionLimit)}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{
			"query":       req.Query,
			"suggestions": service.Suggest(req.Query, req.Limit),
		})
	})

	cities.Get("/search", func(c *fiber.Ctx) error {
		req := searchQuery{
			Query:       c.Query("q"),
			Suggestions: c.QueryBool("suggestions", true),
			Limit:       c.QueryInt("limit", 10),
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(service.Search(c.UserContext(), req.Query, req.Suggestions, req.Limit))
	})

	weatherGroup := v1.Group("/weather")

	weatherGroup.Get("/current", func(c *fiber.Ctx) error {
		if c.Query("lat") != "" || c.Query("lon") != "" {
			var req coordsQuery
			if err := req.bind(c); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			reading, err := service.CurrentWeatherAt(c.UserContext(), req.Lat, req.Lon)
			if err != nil {
				return toHTTPError(err)
			}
			return c.JSON(reading)
		}

		reading, err := service.CurrentWeather(c.UserContext(), c.Query("city"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(reading)
	})

	weatherGroup.Get("/forecast", func(c *fiber.Ctx) error {
		forecast, err := service.Forecast(c.UserContext(), c.Query("city"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(forecast)
	})

	weatherGroup.Get("/batch", func(c *fiber.Ctx) error {
		list := common.SplitList(c.Query("cities"))
		if len(list) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "cities query parameter is required")
		}
		return c.JSON(fiber.Map{
			"cities":  list,
			"results": service.FetchBatch(c.UserContext(), list),
		})
	})

	v1.Get("/analytics", func(c *fiber.Ctx) error {
		list := common.SplitList(c.Query("cities"))
		return c.JSON(service.Analytics(c.UserContext(), list))
	})

	v1.Get("/analytics/latest", func(c *fiber.Ctx) error {
		snap, err := service.LatestAnalytics(common.SplitList(c.Query("cities")))
		if err != nil {
			if isNoSnapshots(err) {
				return fiber.NewError(fiber.StatusNotFound, "no analytics recorded for requested cities")
			}
			return toHTTPError(err)
		}
		return c.JSON(snap)
	})

	v1.Get("/analytics/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshots, err := service.AnalyticsHistory(req.Cities, req.From, req.To)
		if err != nil {
			if isNoSnapshots(err) {
				return fiber.NewError(fiber.StatusNotFound, "no analytics history for requested range")
			}
			return toHTTPError(err)
		}

		return c.JSON(fiber.Map{
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})

	trends := func(c *fiber.Ctx) error {
		trend, err := service.Trends(c.UserContext(), c.Params("filter"), common.SplitList(c.Query("cities")))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(trend)
	}
	v1.Get("/trends", trends)
	v1.Get("/trends/:filter", trends)

	v1.Get("/location", func(c *fiber.Ctx) error {
		return c.JSON(service.UserLocation(c.UserContext()))
	})

	v1.Get("/status", func(c *fiber.Ctx) error {
		resp := fiber.Map{"configuration": service.Configuration()}
		if c.QueryBool("probe", false) {
			resp["connection"] = service.TestConnection(c.UserContext())
		}
		return c.JSON(resp)
	})
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logging.Error().Err(err).Str("path", c.Path()).Msg("http: request failed")
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// toHTTPError maps domain errors onto HTTP status codes.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, weather.ErrValidation), errors.Is(err, weather.ErrUnknownFilter):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, weather.ErrTransport):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, weather.ErrForecastUnsupported):
		return fiber.NewError(fiber.StatusNotImplemented, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func isNoSnapshots(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, weather.ErrNoReadings)
}

type suggestQuery struct {
	Query string `validate:"max=100"`
	Limit int    `validate:"gte=1,lte=50"`
}

type searchQuery struct {
	Query       string
	Suggestions bool
	Limit       int `validate:"gte=1,lte=50"`
}

type coordsQuery struct {
	Lat float64
	Lon float64
}

func (q *coordsQuery) bind(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return errors.New("lon must be a number")
	}
	q.Lat, q.Lon = lat, lon
	return nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Cities []string
	From   time.Time `validate:"required"`
	To     time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.Cities = common.SplitList(c.Query("cities"))

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
