package cli

import (
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-analytics/internal/common"
	"github.com/i474232898/weather-analytics/internal/weather"
)

// ServeFunc runs the HTTP server until the command context is cancelled.
type ServeFunc func(cmd *cobra.Command) error

func New(service *weather.Service, serve ServeFunc) (*cobra.Command, error) {
	root := &cobra.Command{
		Use:           "weather-analytics",
		Short:         "Weather analytics across a batch of cities",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and the periodic analytics refresh",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd)
			},
		},
		newTrendsCmd(service),
		newValidateCmd(service),
		newForecastCmd(service),
		newSuggestCmd(service),
	)

	return root, nil
}

func newTrendsCmd(service *weather.Service) *cobra.Command {
	var cities string

	cmd := &cobra.Command{
		Use:   "trends [filter]",
		Short: "Aggregate current weather and print one trend bucket",
		Long:  "Filters: " + filterNames() + ". Without a filter the whole overview is printed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}

			trend, err := service.Trends(cmd.Context(), filter, common.SplitList(cities))
			if err != nil {
				return err
			}

			cmd.Printf("%s\n", trend.Title)
			switch data := trend.Data.(type) {
			case []weather.Place:
				printPlaces(cmd, data)
			case weather.Aggregate:
				printAggregate(cmd, data)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cities, "cities", "", "comma-separated city list (defaults to the configured batch)")

	return cmd
}

func newValidateCmd(service *weather.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <name>",
		Short: "Check a city name without calling any API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := service.Validate(args[0])
			if !res.Valid {
				return res.Err()
			}
			cmd.Printf("VALID\t\t %q\n", res.Normalized)
			return nil
		},
	}
}

func newForecastCmd(service *weather.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "forecast <city>",
		Short: "Print the 3-hourly forecast for a city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forecast, err := service.Forecast(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cmd.Printf("LOCATION\t %s %s\n", forecast.City, forecast.Country)
			for _, e := range forecast.Entries {
				cmd.Printf("%s  %5.1f°C  %3.0f%%  %4.1f m/s  %s\n",
					time.Unix(e.Time, 0).UTC().Format("Jan 02 15:04"),
					e.Temperature,
					e.Humidity,
					e.WindSpeed,
					e.Description,
				)
			}
			return nil
		},
	}
}

func newSuggestCmd(service *weather.Service) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest <input>",
		Short: "Suggest well-known city names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range service.Suggest(args[0], limit) {
				cmd.Println(s)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", weather.DefaultSuggestionLimit, "maximum number of suggestions")

	return cmd
}

func printPlaces(cmd *cobra.Command, places []weather.Place) {
	if len(places) == 0 {
		cmd.Println("(none)")
		return
	}
	cmd.Printf("%-20s %6s %6s %6s  %s\n", "CITY", "TEMP", "HUM", "WIND", "CONDITION")
	for _, p := range places {
		cmd.Printf("%-20s %6.0f %6.0f %6.0f  %s\n", p.City, p.Temperature, p.Humidity, p.WindSpeed, p.Condition)
	}
}

func printAggregate(cmd *cobra.Command, agg weather.Aggregate) {
	cmd.Printf("CITIES\t\t %d/%d\n", agg.ValidCount, agg.CitiesCount)
	if !agg.HasData {
		cmd.Println("no successful readings")
		return
	}
	cmd.Printf("AVG TEMP\t %.1f°C\n", agg.AverageTemperature)
	cmd.Printf("AVG HUMIDITY\t %.0f%%\n", agg.AverageHumidity)
	cmd.Printf("AVG WIND\t %.1f m/s\n", agg.AverageWindSpeed)
	cmd.Printf("RANGE\t\t %.1f..%.1f°C\n", agg.TemperatureRange.Min, agg.TemperatureRange.Max)
	conds := make([]string, 0, len(agg.WeatherConditions))
	for cond := range agg.WeatherConditions {
		conds = append(conds, string(cond))
	}
	sort.Strings(conds)
	for _, cond := range conds {
		cmd.Printf("%-12s\t %d\n", cond, agg.WeatherConditions[weather.Condition(cond)])
	}
}

func filterNames() string {
	names := make([]string, len(weather.Filters))
	for i, f := range weather.Filters {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
