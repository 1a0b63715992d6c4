package models

import "time"

type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

type CurrentConditions struct {
	Time                string  `json:"time"`
	Temperature         float64 `json:"temperature_c"`
	ApparentTemperature float64 `json:"apparent_temperature_c"`
	Humidity            float64 `json:"humidity_pct"`
	Precipitation       float64 `json:"precipitation_mm"`
	WindSpeed           float64 `json:"wind_speed_kmh"`
	WeatherCode         int     `json:"weather_code"`
}

// DayRollup summarises the next 24 hourly readings.
type DayRollup struct {
	MaxTemperature     float64 `json:"max_temperature_c"`
	MinTemperature     float64 `json:"min_temperature_c"`
	TotalPrecipitation float64 `json:"total_precipitation_mm"`
	AverageWindSpeed   float64 `json:"average_wind_speed_kmh"`
}

type DailyForecast struct {
	Date             string  `json:"date"`
	WeatherCode      int     `json:"weather_code"`
	TemperatureMax   float64 `json:"temperature_max_c"`
	TemperatureMin   float64 `json:"temperature_min_c"`
	PrecipitationSum float64 `json:"precipitation_sum_mm"`
	WindSpeedMax     float64 `json:"wind_speed_max_kmh"`
	SnowfallSum      float64 `json:"snowfall_sum_cm"`
}

type WeatherSnapshot struct {
	Location  Location          `json:"location"`
	Current   CurrentConditions `json:"current"`
	Last24h   DayRollup         `json:"next_24h"`
	Daily     []DailyForecast   `json:"daily"`
	Alerts    []DayAlerts       `json:"alerts"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// AirQuality holds current pollutant concentrations in μg/m³.
type AirQuality struct {
	Time            string   `json:"time"`
	PM10            *float64 `json:"pm10,omitempty"`
	PM25            *float64 `json:"pm2_5,omitempty"`
	CarbonMonoxide  *float64 `json:"carbon_monoxide,omitempty"`
	NitrogenDioxide *float64 `json:"nitrogen_dioxide,omitempty"`
	SulphurDioxide  *float64 `json:"sulphur_dioxide,omitempty"`
	Ozone           *float64 `json:"ozone,omitempty"`
	EuropeanAQI     *float64 `json:"european_aqi,omitempty"`
}

// WeatherReport is what the weather connector returns and caches.
type WeatherReport struct {
	Weather    WeatherSnapshot `json:"weather"`
	AirQuality *AirQuality     `json:"air_quality,omitempty"`
}
