package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mr1hm/go-travel-brief/internal/cache"
	"github.com/mr1hm/go-travel-brief/internal/metrics"
	"github.com/mr1hm/go-travel-brief/internal/models"
)

var ErrPlaceNotFound = errors.New("place not found")

// CityLocator resolves a place to coordinates from local reference data when
// geocoding fails.
type CityLocator interface {
	LocateCity(ctx context.Context, place string) (models.Location, bool)
}

type WeatherConfig struct {
	GeocodingURL  string
	ForecastURL   string
	AirQualityURL string
	Timeout       time.Duration
	CacheTTL      time.Duration
}

type WeatherClient struct {
	cfg     WeatherConfig
	client  *http.Client
	cache   cache.Cache
	locator CityLocator
	now     func() time.Time
}

func NewWeatherClient(cfg WeatherConfig, c cache.Cache, locator CityLocator) *WeatherClient {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return &WeatherClient{
		cfg:     cfg,
		client:  newHTTPClient(cfg.Timeout),
		cache:   c,
		locator: locator,
		now:     time.Now,
	}
}

type geocodingResponse struct {
	Results []geocodingResult `json:"results" validate:"dive"`
}

type geocodingResult struct {
	Name      string  `json:"name" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Country   string  `json:"country"`
	Admin1    string  `json:"admin1"`
}

type forecastResponse struct {
	Current forecastCurrent `json:"current"`
	Hourly  forecastHourly  `json:"hourly"`
	Daily   forecastDaily   `json:"daily"`
}

type forecastCurrent struct {
	Time                string  `json:"time" validate:"required"`
	Temperature         float64 `json:"temperature_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	Humidity            float64 `json:"relative_humidity_2m"`
	Precipitation       float64 `json:"precipitation"`
	WeatherCode         int     `json:"weather_code"`
	WindSpeed           float64 `json:"wind_speed_10m"`
}

type forecastHourly struct {
	Time          []string  `json:"time"`
	Temperature   []float64 `json:"temperature_2m"`
	Precipitation []float64 `json:"precipitation"`
	WindSpeed     []float64 `json:"wind_speed_10m"`
}

type forecastDaily struct {
	Time             []string  `json:"time" validate:"required,min=1"`
	WeatherCode      []int     `json:"weather_code"`
	TemperatureMax   []float64 `json:"temperature_2m_max"`
	TemperatureMin   []float64 `json:"temperature_2m_min"`
	PrecipitationSum []float64 `json:"precipitation_sum"`
	WindSpeedMax     []float64 `json:"wind_speed_10m_max"`
	SnowfallSum      []float64 `json:"snowfall_sum"`
}

type airQualityResponse struct {
	Current struct {
		Time            string   `json:"time" validate:"required"`
		PM10            *float64 `json:"pm10"`
		PM25            *float64 `json:"pm2_5"`
		CarbonMonoxide  *float64 `json:"carbon_monoxide"`
		NitrogenDioxide *float64 `json:"nitrogen_dioxide"`
		SulphurDioxide  *float64 `json:"sulphur_dioxide"`
		Ozone           *float64 `json:"ozone"`
		EuropeanAQI     *float64 `json:"european_aqi"`
	} `json:"current"`
}

// ForPlace geocodes place and returns its weather. For "City, Country" the
// city is geocoded and a result in the named country is preferred. Each call
// records a single weather cache lookup.
func (w *WeatherClient) ForPlace(ctx context.Context, place string) (*models.WeatherReport, error) {
	key := "weather:place:" + normalizeKey(place)
	if report, ok := w.cached(ctx, key); ok {
		metrics.CacheResult("weather", true)
		return report, nil
	}

	loc, err := w.geocode(ctx, place)
	if err != nil {
		slog.Debug("geocoding failed, trying reference data", "place", place, "error", err)
		fallback, ok := w.locate(ctx, place)
		if !ok {
			metrics.CacheResult("weather", false)
			return nil, fmt.Errorf("%w: %s", ErrPlaceNotFound, place)
		}
		loc = fallback
	}

	data, hit, err := w.fetchCoordinates(ctx, loc)
	metrics.CacheResult("weather", hit)
	if err != nil {
		return nil, err
	}
	w.cache.Set(ctx, key, data, w.cfg.CacheTTL)
	return decodeReport(data)
}

// ForCoordinates returns the weather at an exact coordinate pair.
func (w *WeatherClient) ForCoordinates(ctx context.Context, name string, lat, lng float64) (*models.WeatherReport, error) {
	data, hit, err := w.fetchCoordinates(ctx, models.Location{Name: name, Latitude: lat, Longitude: lng})
	metrics.CacheResult("weather", hit)
	if err != nil {
		return nil, err
	}
	return decodeReport(data)
}

// fetchCoordinates reports whether the coordinate cache already held the report.
func (w *WeatherClient) fetchCoordinates(ctx context.Context, loc models.Location) ([]byte, bool, error) {
	key := fmt.Sprintf("weather:coords:%.4f,%.4f", loc.Latitude, loc.Longitude)
	if data, ok := w.cache.Get(ctx, key); ok {
		return data, true, nil
	}

	start := time.Now()
	report, err := w.fetch(ctx, loc)
	metrics.ObserveConnector("weather", start, err)
	if err != nil {
		return nil, false, err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return nil, false, fmt.Errorf("error encoding weather report: %w", err)
	}
	w.cache.Set(ctx, key, data, w.cfg.CacheTTL)
	return data, false, nil
}

func (w *WeatherClient) cached(ctx context.Context, key string) (*models.WeatherReport, bool) {
	data, ok := w.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	report, err := decodeReport(data)
	if err != nil {
		slog.Warn("discarding unreadable weather cache entry", "key", key, "error", err)
		return nil, false
	}
	return report, true
}

func decodeReport(data []byte) (*models.WeatherReport, error) {
	var report models.WeatherReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("error decoding weather report: %w", err)
	}
	return &report, nil
}

func (w *WeatherClient) locate(ctx context.Context, place string) (models.Location, bool) {
	if w.locator == nil {
		return models.Location{}, false
	}
	return w.locator.LocateCity(ctx, place)
}

func (w *WeatherClient) geocode(ctx context.Context, place string) (models.Location, error) {
	city, country := splitPlace(place)
	if city == "" {
		return models.Location{}, ErrPlaceNotFound
	}

	q := url.Values{}
	q.Set("name", city)
	q.Set("count", "10")
	q.Set("language", "en")
	q.Set("format", "json")

	var data geocodingResponse
	if err := getJSON(ctx, w.client, w.cfg.GeocodingURL+"?"+q.Encode(), &data); err != nil {
		return models.Location{}, err
	}
	if len(data.Results) == 0 {
		return models.Location{}, ErrPlaceNotFound
	}

	best := data.Results[0]
	if country != "" {
		for _, r := range data.Results {
			if strings.EqualFold(r.Country, country) {
				best = r
				break
			}
		}
	}

	return models.Location{Name: best.Name, Latitude: best.Latitude, Longitude: best.Longitude}, nil
}

func (w *WeatherClient) fetch(ctx context.Context, loc models.Location) (*models.WeatherReport, error) {
	q := coordParams(loc)
	q.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,weather_code,wind_speed_10m")
	q.Set("hourly", "temperature_2m,precipitation,wind_speed_10m")
	q.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum,wind_speed_10m_max,snowfall_sum")
	q.Set("forecast_hours", "24")
	q.Set("forecast_days", "16")

	var data forecastResponse
	if err := getJSON(ctx, w.client, w.cfg.ForecastURL+"?"+q.Encode(), &data); err != nil {
		return nil, fmt.Errorf("error fetching forecast: %w", err)
	}

	daily := data.Daily.forecasts()
	snapshot := models.WeatherSnapshot{
		Location: loc,
		Current: models.CurrentConditions{
			Time:                data.Current.Time,
			Temperature:         data.Current.Temperature,
			ApparentTemperature: data.Current.ApparentTemperature,
			Humidity:            data.Current.Humidity,
			Precipitation:       data.Current.Precipitation,
			WindSpeed:           data.Current.WindSpeed,
			WeatherCode:         data.Current.WeatherCode,
		},
		Last24h:   data.Hourly.rollup(),
		Daily:     daily,
		Alerts:    DeriveAlerts(daily),
		FetchedAt: w.now().UTC(),
	}

	report := &models.WeatherReport{Weather: snapshot}

	aq, err := w.fetchAirQuality(ctx, loc)
	if err != nil {
		slog.Warn("air quality unavailable", "location", loc.Name, "error", err)
	} else {
		report.AirQuality = aq
	}

	return report, nil
}

func (w *WeatherClient) fetchAirQuality(ctx context.Context, loc models.Location) (*models.AirQuality, error) {
	if w.cfg.AirQualityURL == "" {
		return nil, errors.New("air quality endpoint not configured")
	}

	q := coordParams(loc)
	q.Set("current", "pm10,pm2_5,carbon_monoxide,nitrogen_dioxide,sulphur_dioxide,ozone,european_aqi")

	start := time.Now()
	var data airQualityResponse
	err := getJSON(ctx, w.client, w.cfg.AirQualityURL+"?"+q.Encode(), &data)
	metrics.ObserveConnector("air_quality", start, err)
	if err != nil {
		return nil, err
	}

	c := data.Current
	return &models.AirQuality{
		Time:            c.Time,
		PM10:            c.PM10,
		PM25:            c.PM25,
		CarbonMonoxide:  c.CarbonMonoxide,
		NitrogenDioxide: c.NitrogenDioxide,
		SulphurDioxide:  c.SulphurDioxide,
		Ozone:           c.Ozone,
		EuropeanAQI:     c.EuropeanAQI,
	}, nil
}

func coordParams(loc models.Location) url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	q.Set("timezone", "auto")
	return q
}

func (h forecastHourly) rollup() models.DayRollup {
	n := len(h.Temperature)
	if n == 0 {
		return models.DayRollup{}
	}

	r := models.DayRollup{
		MaxTemperature: h.Temperature[0],
		MinTemperature: h.Temperature[0],
	}
	for _, t := range h.Temperature[1:] {
		r.MaxTemperature = max(r.MaxTemperature, t)
		r.MinTemperature = min(r.MinTemperature, t)
	}
	for _, p := range h.Precipitation {
		r.TotalPrecipitation += p
	}
	if len(h.WindSpeed) > 0 {
		var sum float64
		for _, ws := range h.WindSpeed {
			sum += ws
		}
		r.AverageWindSpeed = sum / float64(len(h.WindSpeed))
	}
	return r
}

func (d forecastDaily) forecasts() []models.DailyForecast {
	out := make([]models.DailyForecast, 0, len(d.Time))
	for i, date := range d.Time {
		out = append(out, models.DailyForecast{
			Date:             date,
			WeatherCode:      at(d.WeatherCode, i),
			TemperatureMax:   at(d.TemperatureMax, i),
			TemperatureMin:   at(d.TemperatureMin, i),
			PrecipitationSum: at(d.PrecipitationSum, i),
			WindSpeedMax:     at(d.WindSpeedMax, i),
			SnowfallSum:      at(d.SnowfallSum, i),
		})
	}
	return out
}

func at[T any](s []T, i int) T {
	var zero T
	if i < len(s) {
		return s[i]
	}
	return zero
}
