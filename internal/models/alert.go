package models

type AlertSeverity string

const (
	AlertSeverityModerate AlertSeverity = "MODERATE"
	AlertSeverityHigh     AlertSeverity = "HIGH"
	AlertSeverityCritical AlertSeverity = "CRITICAL"
)

type AlertType string

const (
	AlertTypeHeavyRain     AlertType = "Heavy Rain"
	AlertTypeExtremeHeat   AlertType = "Extreme Heat"
	AlertTypeHighWinds     AlertType = "High Winds"
	AlertTypeHeavySnow     AlertType = "Heavy Snow"
	AlertTypeSevereWeather AlertType = "Severe Weather"
)

// WeatherAlert is a single threshold breach on one forecast day.
type WeatherAlert struct {
	Type      AlertType     `json:"type"`
	Severity  AlertSeverity `json:"severity"`
	Value     float64       `json:"value"`
	Threshold float64       `json:"threshold"`
	Message   string        `json:"message"`
}

// DayAlerts groups the alerts raised for one forecast date (YYYY-MM-DD).
type DayAlerts struct {
	Date   string         `json:"date"`
	Alerts []WeatherAlert `json:"alerts"`
}
