package fusion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mr1hm/go-travel-brief/internal/connectors"
	"github.com/mr1hm/go-travel-brief/internal/models"
)

type Resolver interface {
	Resolve(ctx context.Context, query string) (*models.ResolvedDestination, error)
}

type Ranked interface {
	ListRanked(ctx context.Context) ([]models.CountryRiskRecord, error)
}

type Places interface {
	Capital(iso3 string) *models.CityRecord
	FindCountryArea(country string) *models.CountryArea
	FindSimilarSizeCountry(country string) (string, bool)
}

type Weather interface {
	ForPlace(ctx context.Context, place string) (*models.WeatherReport, error)
	ForCoordinates(ctx context.Context, name string, lat, lng float64) (*models.WeatherReport, error)
}

type Summaries interface {
	Summary(ctx context.Context, place string) (*string, error)
}

type News interface {
	ForPlace(ctx context.Context, place string) ([]models.Article, error)
}

type Narrator interface {
	Generate(ctx context.Context, in connectors.NarrativeInput) (string, error)
}

// Deps are the collaborators of a Service. Any connector may be nil, in
// which case its slot is always empty.
type Deps struct {
	Resolver  Resolver
	Ranked    Ranked
	Places    Places
	Weather   Weather
	Summaries Summaries
	News      News
	Narrator  Narrator
}

type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// Brief resolves query and fuses every enrichment source into one result.
// When compare is not blank it is fused concurrently into Comparison. Only
// an unusable query is an error; failed sources leave their slot nil.
func (s *Service) Brief(ctx context.Context, query, compare string) (*models.FusedResult, error) {
	if compare == "" {
		return s.fuse(ctx, query)
	}

	var primary, secondary *models.FusedResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		primary, err = s.fuse(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		secondary, err = s.fuse(gctx, compare)
		if err != nil {
			slog.Debug("comparison destination skipped", "compare", compare, "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	primary.Comparison = secondary
	return primary, nil
}

func (s *Service) fuse(ctx context.Context, query string) (*models.FusedResult, error) {
	dest, err := s.deps.Resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		return Placeholder(query), nil
	}

	result := &models.FusedResult{
		Query:       dest.Query,
		Destination: dest,
	}
	s.addArea(result, dest)

	var weather *models.WeatherReport
	var summary *string

	// The narrative needs weather and summary, nothing else.
	var facts errgroup.Group
	facts.Go(func() error {
		weather = s.weather(ctx, dest)
		return nil
	})
	facts.Go(func() error {
		summary = s.summary(ctx, dest)
		return nil
	})

	var g errgroup.Group
	g.Go(func() error {
		facts.Wait()
		result.Narrative = s.narrative(ctx, dest, weather, summary)
		return nil
	})
	g.Go(func() error {
		result.News = s.news(ctx, dest)
		return nil
	})
	g.Go(func() error {
		result.Peers = s.peers(ctx, dest)
		return nil
	})
	g.Wait()

	result.Summary = summary
	if weather != nil {
		result.Weather = &weather.Weather
		result.AirQuality = weather.AirQuality
	}
	return result, nil
}

// Placeholder is the flagged fallback for a destination that resolved to nothing.
func Placeholder(query string) *models.FusedResult {
	return &models.FusedResult{
		Query:     query,
		Synthetic: true,
		Notice:    fmt.Sprintf("No destination matching %q was found. Nothing below is real data; try a country name or \"City, Country\".", query),
	}
}

func (s *Service) addArea(result *models.FusedResult, dest *models.ResolvedDestination) {
	if s.deps.Places == nil {
		return
	}
	result.Area = s.deps.Places.FindCountryArea(dest.Country.Country)
	if name, ok := s.deps.Places.FindSimilarSizeCountry(dest.Country.Country); ok {
		result.SimilarSizeCountry = name
	}
}

func (s *Service) weather(ctx context.Context, dest *models.ResolvedDestination) *models.WeatherReport {
	if s.deps.Weather == nil {
		return nil
	}

	var report *models.WeatherReport
	var err error
	switch {
	case dest.City != nil:
		report, err = s.deps.Weather.ForCoordinates(ctx, dest.City.Name, dest.City.Latitude, dest.City.Longitude)
	case dest.IsCity():
		report, err = s.deps.Weather.ForPlace(ctx, dest.Query)
	default:
		if capital := s.capital(dest.Country.ISO3); capital != nil {
			report, err = s.deps.Weather.ForCoordinates(ctx, capital.City, capital.Latitude, capital.Longitude)
		} else {
			report, err = s.deps.Weather.ForPlace(ctx, dest.Country.Country)
		}
	}
	if err != nil {
		slog.Warn("weather unavailable", "destination", dest.DisplayName, "error", err)
		return nil
	}
	return report
}

func (s *Service) capital(iso3 string) *models.CityRecord {
	if s.deps.Places == nil {
		return nil
	}
	return s.deps.Places.Capital(iso3)
}

func (s *Service) summary(ctx context.Context, dest *models.ResolvedDestination) *string {
	if s.deps.Summaries == nil {
		return nil
	}
	place := dest.Country.Country
	if dest.IsCity() {
		place = dest.DisplayName
	}
	text, err := s.deps.Summaries.Summary(ctx, place)
	if err != nil {
		slog.Warn("summary unavailable", "destination", place, "error", err)
		return nil
	}
	return text
}

func (s *Service) news(ctx context.Context, dest *models.ResolvedDestination) []models.Article {
	if s.deps.News == nil {
		return nil
	}
	place := dest.Country.Country
	if dest.IsCity() {
		place = dest.CityPart
	}
	articles, err := s.deps.News.ForPlace(ctx, place)
	if err != nil {
		slog.Warn("news unavailable", "destination", place, "error", err)
		return nil
	}
	return articles
}

func (s *Service) peers(ctx context.Context, dest *models.ResolvedDestination) *models.PeerComparisonSet {
	if s.deps.Ranked == nil {
		return nil
	}
	all, err := s.deps.Ranked.ListRanked(ctx)
	if err != nil {
		slog.Warn("peer comparison unavailable", "country", dest.Country.Country, "error", err)
		return nil
	}
	return ComputePeers(dest.Country, all)
}

func (s *Service) narrative(ctx context.Context, dest *models.ResolvedDestination, weather *models.WeatherReport, summary *string) *string {
	if s.deps.Narrator == nil {
		return nil
	}

	in := connectors.NarrativeInput{
		Destination:  dest.DisplayName,
		CountryLevel: !dest.IsCity(),
		Country:      &dest.Country,
		Summary:      summary,
	}
	if weather != nil {
		in.Weather = &weather.Weather
	}

	text, err := s.deps.Narrator.Generate(ctx, in)
	if err != nil {
		var cfgErr *connectors.ConfigError
		if errors.As(err, &cfgErr) {
			slog.Warn("narrative unavailable: missing configuration", "destination", dest.DisplayName, "setting", cfgErr.Setting)
		} else {
			slog.Warn("narrative unavailable", "destination", dest.DisplayName, "error", err)
		}
		return nil
	}
	return &text
}
