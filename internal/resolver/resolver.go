package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mr1hm/go-travel-brief/internal/metrics"
	"github.com/mr1hm/go-travel-brief/internal/models"
	"github.com/mr1hm/go-travel-brief/internal/repository"
)

var ErrEmptyQuery = errors.New("empty destination query")

const (
	searchLimit = 5
	scanLimit   = 50
)

// CityIndex is the part of the reference store the resolver needs.
type CityIndex interface {
	FindCityInCountry(name, iso3 string) *models.CityRecord
	CityCountryISO3(name string) (string, bool)
}

type Resolver struct {
	repo   repository.CountryRepository
	cities CityIndex
}

func New(repo repository.CountryRepository, cities CityIndex) *Resolver {
	return &Resolver{repo: repo, cities: cities}
}

// Query is a parsed destination string.
type Query struct {
	Raw     string
	City    string
	Country string
	Comma   bool
}

// Parse splits "City, Country" on the first comma. A comma with an empty
// side is treated as a plain query on the other side.
func Parse(raw string) Query {
	raw = strings.TrimSpace(raw)
	q := Query{Raw: raw}

	city, country, found := strings.Cut(raw, ",")
	city = strings.TrimSpace(city)
	country = strings.TrimSpace(country)

	switch {
	case found && city != "" && country != "":
		q.City, q.Country, q.Comma = city, country, true
	case found && city != "":
		q.Country = city
	case found:
		q.Country = country
	default:
		q.Country = raw
	}
	return q
}

type strategy struct {
	name string
	find func(ctx context.Context) (*models.CountryRiskRecord, error)
}

// Resolve maps a free-text query to a country record and, for "City, Country"
// queries, the city's coordinates. It returns (nil, nil) when nothing matches.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*models.ResolvedDestination, error) {
	q := Parse(raw)
	if q.Raw == "" || q.Country == "" {
		return nil, ErrEmptyQuery
	}

	record, step := r.run(ctx, r.strategies(q))
	if record == nil {
		metrics.Resolutions.WithLabelValues("not_found").Inc()
		slog.Debug("destination not resolved", "query", q.Raw)
		return nil, nil
	}
	metrics.Resolutions.WithLabelValues(step).Inc()
	slog.Debug("destination resolved", "query", q.Raw, "strategy", step, "country", record.Country)

	dest := &models.ResolvedDestination{
		Query:       q.Raw,
		Mode:        models.ModeCountry,
		Country:     *record,
		DisplayName: record.Country,
	}
	if !q.Comma {
		return dest, nil
	}

	dest.Mode = models.ModeCityInCountry
	dest.CityPart = q.City
	dest.DisplayName = q.Raw
	if city := r.cities.FindCityInCountry(q.City, record.ISO3); city != nil {
		dest.City = cityMatch(city)
		dest.DisplayName = city.City
	}
	return dest, nil
}

// LocateCity finds reference coordinates for a place, using the same
// cascade as Resolve to pin down the country.
func (r *Resolver) LocateCity(ctx context.Context, place string) (models.Location, bool) {
	q := Parse(place)
	if q.Country == "" {
		return models.Location{}, false
	}

	var city *models.CityRecord
	if q.Comma {
		record, _ := r.run(ctx, r.strategies(q))
		if record == nil {
			return models.Location{}, false
		}
		city = r.cities.FindCityInCountry(q.City, record.ISO3)
	} else if iso3, ok := r.cities.CityCountryISO3(q.Country); ok {
		city = r.cities.FindCityInCountry(q.Country, iso3)
	}
	if city == nil {
		return models.Location{}, false
	}
	return models.Location{Name: city.City, Latitude: city.Latitude, Longitude: city.Longitude}, true
}

func (r *Resolver) run(ctx context.Context, steps []strategy) (*models.CountryRiskRecord, string) {
	for _, s := range steps {
		if ctx.Err() != nil {
			return nil, ""
		}
		record, err := s.find(ctx)
		if err != nil {
			slog.Warn("resolution step failed", "strategy", s.name, "error", err)
			continue
		}
		if record != nil {
			return record, s.name
		}
	}
	return nil, ""
}

func (r *Resolver) strategies(q Query) []strategy {
	if q.Comma {
		return []strategy{
			{"country_name", func(ctx context.Context) (*models.CountryRiskRecord, error) {
				return r.repo.GetByName(ctx, q.Country)
			}},
			{"city_country", r.byCityCountry(q.City)},
		}
	}

	name := q.Country
	return []strategy{
		{"country_name", func(ctx context.Context) (*models.CountryRiskRecord, error) {
			return r.repo.GetByName(ctx, name)
		}},
		{"exact", func(ctx context.Context) (*models.CountryRiskRecord, error) {
			return r.repo.GetExact(ctx, name)
		}},
		{"search", func(ctx context.Context) (*models.CountryRiskRecord, error) {
			results, err := r.repo.Search(ctx, name, searchLimit)
			if err != nil || len(results) == 0 {
				return nil, err
			}
			return &results[0], nil
		}},
		{"city_country", r.byCityCountry(name)},
		{"scan", func(ctx context.Context) (*models.CountryRiskRecord, error) {
			return r.scan(ctx, name)
		}},
	}
}

func (r *Resolver) byCityCountry(city string) func(context.Context) (*models.CountryRiskRecord, error) {
	return func(ctx context.Context) (*models.CountryRiskRecord, error) {
		iso3, ok := r.cities.CityCountryISO3(city)
		if !ok {
			return nil, nil
		}
		return r.repo.GetByISO3(ctx, iso3)
	}
}

// scan is the last resort: either string may contain the other.
func (r *Resolver) scan(ctx context.Context, name string) (*models.CountryRiskRecord, error) {
	records, err := r.repo.List(ctx, scanLimit)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(name)
	for i := range records {
		c := strings.ToLower(records[i].Country)
		if c == "" {
			continue
		}
		if strings.Contains(c, q) || strings.Contains(q, c) {
			return &records[i], nil
		}
	}
	return nil, nil
}

func cityMatch(c *models.CityRecord) *models.CityMatch {
	return &models.CityMatch{
		Name:       c.City,
		Latitude:   c.Latitude,
		Longitude:  c.Longitude,
		AdminName:  c.AdminName,
		Capital:    c.Capital,
		Population: c.Population,
	}
}
