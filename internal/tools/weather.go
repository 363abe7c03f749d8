package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/skiff-ai/skiff/internal/log"
)

const (
	defaultGeocodeEndpoint  = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastEndpoint = "https://api.open-meteo.com/v1/forecast"
	forecastDays            = 5
)

// WeatherInput defines input for the get_weather tool.
type WeatherInput struct {
	Location string `json:"location" jsonschema:"The location (city, region or country) to get weather for."`
}

// WeatherConfig configures the weather tool.
type WeatherConfig struct {
	// GeocodeEndpoint resolves location names to coordinates.
	GeocodeEndpoint string

	// ForecastEndpoint serves current conditions and the daily forecast.
	ForecastEndpoint string

	Timeout time.Duration
}

type geoResult struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type geocodeResponse struct {
	Results []geoResult `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature   float64 `json:"temperature_2m"`
		Humidity      float64 `json:"relative_humidity_2m"`
		Precipitation float64 `json:"precipitation"`
		WeatherCode   int     `json:"weather_code"`
		WindSpeed     float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weather_code"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// NewWeatherTool creates the weather tool backed by the Open-Meteo public
// API (no key required): a geocoding call resolves the location name, a
// forecast call fetches current conditions plus a five-day outlook.
func NewWeatherTool(cfg WeatherConfig, logger log.Logger) (*Tool, error) {
	if cfg.GeocodeEndpoint == "" {
		cfg.GeocodeEndpoint = defaultGeocodeEndpoint
	}
	if cfg.ForecastEndpoint == "" {
		cfg.ForecastEndpoint = defaultForecastEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)

	handler := func(ctx context.Context, in WeatherInput) (string, error) {
		loc := strings.TrimSpace(in.Location)
		if loc == "" {
			return "", fmt.Errorf("location cannot be empty")
		}

		geo, err := geocode(ctx, client, cfg.GeocodeEndpoint, loc)
		if err != nil {
			return "", err
		}
		if geo == nil {
			return fmt.Sprintf("Could not find a location matching %q.", loc), nil
		}

		fc, err := forecast(ctx, client, cfg.ForecastEndpoint, geo.Latitude, geo.Longitude)
		if err != nil {
			return "", err
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Weather for %s, %s:\n", geo.Name, geo.Country)
		fmt.Fprintf(&sb, "  Temperature: %.1f°C\n", fc.Current.Temperature)
		fmt.Fprintf(&sb, "  Condition: %s\n", weatherCondition(fc.Current.WeatherCode))
		fmt.Fprintf(&sb, "  Humidity: %.0f%%\n", fc.Current.Humidity)
		fmt.Fprintf(&sb, "  Wind: %.0f km/h\n", fc.Current.WindSpeed)
		fmt.Fprintf(&sb, "  Precipitation: %.1f mm\n", fc.Current.Precipitation)

		if len(fc.Daily.Time) > 0 {
			sb.WriteString("\nForecast:\n")
			for i := range fc.Daily.Time {
				if i >= len(fc.Daily.TempMax) || i >= len(fc.Daily.TempMin) || i >= len(fc.Daily.WeatherCode) {
					break
				}
				day := dayLabel(fc.Daily.Time[i], i)
				fmt.Fprintf(&sb, "  %s: %.0f°C / %.0f°C, %s\n",
					day, fc.Daily.TempMax[i], fc.Daily.TempMin[i],
					weatherCondition(fc.Daily.WeatherCode[i]))
			}
		}

		logger.Debug("weather fetched", "location", loc, "resolved", geo.Name)
		return strings.TrimRight(sb.String(), "\n"), nil
	}

	return NewTool(
		"get_weather",
		"Get current weather conditions and a five-day forecast for a location.",
		handler,
		WithTimeout[WeatherInput](cfg.Timeout),
	)
}

func geocode(ctx context.Context, client *resty.Client, endpoint, location string) (*geoResult, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"name":  location,
			"count": "1",
		}).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", location, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("geocoding %q: status %d", location, resp.StatusCode())
	}

	var parsed geocodeResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("geocoding %q: decoding response: %w", location, err)
	}
	if len(parsed.Results) == 0 {
		return nil, nil
	}
	return &parsed.Results[0], nil
}

func forecast(ctx context.Context, client *resty.Client, endpoint string, lat, lon float64) (*forecastResponse, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":      fmt.Sprintf("%.4f", lat),
			"longitude":     fmt.Sprintf("%.4f", lon),
			"current":       "temperature_2m,relative_humidity_2m,precipitation,weather_code,wind_speed_10m",
			"daily":         "weather_code,temperature_2m_max,temperature_2m_min",
			"forecast_days": fmt.Sprint(forecastDays),
			"timezone":      "auto",
		}).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetching forecast: status %d", resp.StatusCode())
	}

	var parsed forecastResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("decoding forecast: %w", err)
	}
	return &parsed, nil
}

// dayLabel formats a forecast date; the first entry is always "Today".
func dayLabel(date string, idx int) string {
	if idx == 0 {
		return "Today"
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday")
}

// weatherCondition maps WMO weather interpretation codes to short text.
func weatherCondition(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code <= 2:
		return "Partly Cloudy"
	case code == 3:
		return "Overcast"
	case code <= 48:
		return "Foggy"
	case code <= 57:
		return "Drizzle"
	case code <= 67:
		return "Rainy"
	case code <= 77:
		return "Snowy"
	case code <= 82:
		return "Rain Showers"
	case code <= 86:
		return "Snow Showers"
	case code <= 99:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}
