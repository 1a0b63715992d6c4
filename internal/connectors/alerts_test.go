package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-travel-brief/internal/models"
)

func day(date string) models.DailyForecast {
	return models.DailyForecast{Date: date, WeatherCode: 1, TemperatureMax: 22, TemperatureMin: 12}
}

func TestDeriveAlerts_ThresholdsAreExclusive(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.DailyForecast)
		wantType models.AlertType
		wantSev  models.AlertSeverity
		wantNone bool
	}{
		{"rain at threshold", func(d *models.DailyForecast) { d.PrecipitationSum = 20.0 }, "", "", true},
		{"rain just above", func(d *models.DailyForecast) { d.PrecipitationSum = 20.1 }, models.AlertTypeHeavyRain, models.AlertSeverityModerate, false},
		{"rain at high tier", func(d *models.DailyForecast) { d.PrecipitationSum = 30.0 }, models.AlertTypeHeavyRain, models.AlertSeverityModerate, false},
		{"rain above high tier", func(d *models.DailyForecast) { d.PrecipitationSum = 30.5 }, models.AlertTypeHeavyRain, models.AlertSeverityHigh, false},
		{"rain critical", func(d *models.DailyForecast) { d.PrecipitationSum = 51 }, models.AlertTypeHeavyRain, models.AlertSeverityCritical, false},
		{"heat at threshold", func(d *models.DailyForecast) { d.TemperatureMax = 35 }, "", "", true},
		{"heat high", func(d *models.DailyForecast) { d.TemperatureMax = 38.5 }, models.AlertTypeExtremeHeat, models.AlertSeverityHigh, false},
		{"heat critical", func(d *models.DailyForecast) { d.TemperatureMax = 41 }, models.AlertTypeExtremeHeat, models.AlertSeverityCritical, false},
		{"wind moderate", func(d *models.DailyForecast) { d.WindSpeedMax = 55 }, models.AlertTypeHighWinds, models.AlertSeverityModerate, false},
		{"wind at critical threshold", func(d *models.DailyForecast) { d.WindSpeedMax = 80 }, models.AlertTypeHighWinds, models.AlertSeverityHigh, false},
		{"snow at threshold", func(d *models.DailyForecast) { d.SnowfallSum = 5 }, "", "", true},
		{"snow critical", func(d *models.DailyForecast) { d.SnowfallSum = 15.2 }, models.AlertTypeHeavySnow, models.AlertSeverityCritical, false},
		{"thunderstorm", func(d *models.DailyForecast) { d.WeatherCode = 95 }, models.AlertTypeSevereWeather, models.AlertSeverityHigh, false},
		{"heavy hail", func(d *models.DailyForecast) { d.WeatherCode = 99 }, models.AlertTypeSevereWeather, models.AlertSeverityCritical, false},
		{"moderate rain code", func(d *models.DailyForecast) { d.WeatherCode = 63 }, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := day("2026-07-01")
			tt.mutate(&d)

			got := DeriveAlerts([]models.DailyForecast{d})
			if tt.wantNone {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			require.Len(t, got[0].Alerts, 1)
			assert.Equal(t, "2026-07-01", got[0].Date)
			assert.Equal(t, tt.wantType, got[0].Alerts[0].Type)
			assert.Equal(t, tt.wantSev, got[0].Alerts[0].Severity)
		})
	}
}

func TestDeriveAlerts_GroupsByDayAndSkipsQuietDays(t *testing.T) {
	stormy := day("2026-07-02")
	stormy.PrecipitationSum = 60
	stormy.WindSpeedMax = 70
	stormy.WeatherCode = 96

	daily := []models.DailyForecast{day("2026-07-01"), stormy, day("2026-07-03")}
	got := DeriveAlerts(daily)

	require.Len(t, got, 1)
	assert.Equal(t, "2026-07-02", got[0].Date)
	require.Len(t, got[0].Alerts, 3)
	assert.Equal(t, models.AlertTypeHeavyRain, got[0].Alerts[0].Type)
	assert.Equal(t, models.AlertTypeHighWinds, got[0].Alerts[1].Type)
	assert.Equal(t, models.AlertSeverityHigh, got[0].Alerts[1].Severity)
	assert.Equal(t, models.AlertTypeSevereWeather, got[0].Alerts[2].Type)
	assert.Equal(t, models.AlertSeverityCritical, got[0].Alerts[2].Severity)
}

func TestDeriveAlerts_Idempotent(t *testing.T) {
	d := day("2026-07-01")
	d.TemperatureMax = 39
	d.SnowfallSum = 11
	daily := []models.DailyForecast{d}

	first := DeriveAlerts(daily)
	second := DeriveAlerts(daily)
	assert.Equal(t, first, second)
	assert.Equal(t, 39.0, daily[0].TemperatureMax, "input must not be modified")
}

func TestDeriveAlerts_Empty(t *testing.T) {
	assert.Nil(t, DeriveAlerts(nil))
}
