package connectors

import (
	"fmt"

	"github.com/mr1hm/go-travel-brief/internal/models"
)

type tier struct {
	threshold float64
	severity  models.AlertSeverity
}

// Tiers are ascending. A value must strictly exceed a threshold to reach it.
type alertRule struct {
	kind  models.AlertType
	unit  string
	value func(models.DailyForecast) float64
	tiers []tier
}

var alertRules = []alertRule{
	{
		kind:  models.AlertTypeHeavyRain,
		unit:  "mm",
		value: func(d models.DailyForecast) float64 { return d.PrecipitationSum },
		tiers: []tier{{20, models.AlertSeverityModerate}, {30, models.AlertSeverityHigh}, {50, models.AlertSeverityCritical}},
	},
	{
		kind:  models.AlertTypeExtremeHeat,
		unit:  "°C",
		value: func(d models.DailyForecast) float64 { return d.TemperatureMax },
		tiers: []tier{{35, models.AlertSeverityModerate}, {38, models.AlertSeverityHigh}, {40, models.AlertSeverityCritical}},
	},
	{
		kind:  models.AlertTypeHighWinds,
		unit:  "km/h",
		value: func(d models.DailyForecast) float64 { return d.WindSpeedMax },
		tiers: []tier{{50, models.AlertSeverityModerate}, {65, models.AlertSeverityHigh}, {80, models.AlertSeverityCritical}},
	},
	{
		kind:  models.AlertTypeHeavySnow,
		unit:  "cm",
		value: func(d models.DailyForecast) float64 { return d.SnowfallSum },
		tiers: []tier{{5, models.AlertSeverityModerate}, {10, models.AlertSeverityHigh}, {15, models.AlertSeverityCritical}},
	},
}

// WMO weather codes that raise a severe weather alert on their own.
var extremeCodes = map[int]struct {
	description string
	severity    models.AlertSeverity
}{
	65: {"heavy rain", models.AlertSeverityHigh},
	66: {"light freezing rain", models.AlertSeverityHigh},
	67: {"heavy freezing rain", models.AlertSeverityHigh},
	75: {"heavy snowfall", models.AlertSeverityHigh},
	82: {"violent rain showers", models.AlertSeverityHigh},
	86: {"heavy snow showers", models.AlertSeverityHigh},
	95: {"thunderstorm", models.AlertSeverityHigh},
	96: {"thunderstorm with hail", models.AlertSeverityCritical},
	99: {"thunderstorm with heavy hail", models.AlertSeverityCritical},
}

// DeriveAlerts evaluates each forecast day against the alert thresholds.
// Days without a breach are omitted. The result depends only on daily.
func DeriveAlerts(daily []models.DailyForecast) []models.DayAlerts {
	var out []models.DayAlerts
	for _, d := range daily {
		var alerts []models.WeatherAlert
		for _, rule := range alertRules {
			if a, ok := rule.evaluate(d); ok {
				alerts = append(alerts, a)
			}
		}
		if code, ok := extremeCodes[d.WeatherCode]; ok {
			alerts = append(alerts, models.WeatherAlert{
				Type:      models.AlertTypeSevereWeather,
				Severity:  code.severity,
				Value:     float64(d.WeatherCode),
				Threshold: float64(d.WeatherCode),
				Message:   fmt.Sprintf("Severe weather expected: %s", code.description),
			})
		}
		if len(alerts) > 0 {
			out = append(out, models.DayAlerts{Date: d.Date, Alerts: alerts})
		}
	}
	return out
}

func (r alertRule) evaluate(d models.DailyForecast) (models.WeatherAlert, bool) {
	v := r.value(d)
	var hit *tier
	for i := range r.tiers {
		if v > r.tiers[i].threshold {
			hit = &r.tiers[i]
		}
	}
	if hit == nil {
		return models.WeatherAlert{}, false
	}
	return models.WeatherAlert{
		Type:      r.kind,
		Severity:  hit.severity,
		Value:     v,
		Threshold: hit.threshold,
		Message:   fmt.Sprintf("%s: %.1f %s forecast (above %.0f %s)", r.kind, v, r.unit, hit.threshold, r.unit),
	}, true
}
