package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiff-ai/skiff/internal/log"
)

func weatherFixture(t *testing.T) *Tool {
	t.Helper()

	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "Nowhereville" {
			_, _ = w.Write([]byte(`{"results":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"name":"Tokyo","country":"Japan","latitude":35.6895,"longitude":139.6917}]}`))
	}))
	t.Cleanup(geo.Close)

	fc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("latitude"))
		_, _ = w.Write([]byte(`{
			"current":{"temperature_2m":21.4,"relative_humidity_2m":63,"precipitation":0.2,"weather_code":2,"wind_speed_10m":12},
			"daily":{
				"time":["2026-08-31","2026-09-01","2026-09-02"],
				"weather_code":[2,61,0],
				"temperature_2m_max":[24,19,26],
				"temperature_2m_min":[17,14,18]
			}
		}`))
	}))
	t.Cleanup(fc.Close)

	tool, err := NewWeatherTool(WeatherConfig{
		GeocodeEndpoint:  geo.URL,
		ForecastEndpoint: fc.URL,
	}, log.NewNop())
	require.NoError(t, err)
	return tool
}

func TestWeatherTool(t *testing.T) {
	tool := weatherFixture(t)

	args, _ := json.Marshal(WeatherInput{Location: "Tokyo"})
	out, err := tool.run(context.Background(), args)
	require.NoError(t, err)

	assert.Contains(t, out, "Weather for Tokyo, Japan:")
	assert.Contains(t, out, "Temperature: 21.4°C")
	assert.Contains(t, out, "Condition: Partly Cloudy")
	assert.Contains(t, out, "Humidity: 63%")
	assert.Contains(t, out, "Wind: 12 km/h")
	assert.Contains(t, out, "Forecast:")
	assert.Contains(t, out, "Today: 24°C / 17°C, Partly Cloudy")
	assert.Contains(t, out, "Tuesday: 19°C / 14°C, Rainy")
	assert.Contains(t, out, "Wednesday: 26°C / 18°C, Clear")
}

func TestWeatherToolUnknownLocation(t *testing.T) {
	tool := weatherFixture(t)

	args, _ := json.Marshal(WeatherInput{Location: "Nowhereville"})
	out, err := tool.run(context.Background(), args)
	require.NoError(t, err)
	assert.Contains(t, out, "Could not find a location")
}

func TestWeatherToolMissingLocation(t *testing.T) {
	tool := weatherFixture(t)

	_, err := tool.run(context.Background(), json.RawMessage(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestWeatherCondition(t *testing.T) {
	assert.Equal(t, "Clear", weatherCondition(0))
	assert.Equal(t, "Partly Cloudy", weatherCondition(2))
	assert.Equal(t, "Overcast", weatherCondition(3))
	assert.Equal(t, "Rainy", weatherCondition(63))
	assert.Equal(t, "Snowy", weatherCondition(73))
	assert.Equal(t, "Thunderstorm", weatherCondition(95))
}
