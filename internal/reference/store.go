package reference

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mr1hm/go-travel-brief/internal/models"
)

// Similar-size countries must be within this fraction of the target area.
const sizeWindow = 0.20

type cityEntry struct {
	rec     models.CityRecord
	city    string
	ascii   string
	country string
}

// Store holds the static city and country-area tables. It is immutable after
// construction and safe for concurrent use.
type Store struct {
	cities []cityEntry
	areas  []models.CountryArea
	byISO3 map[string][]int
}

func New(cities []models.CityRecord, areas []models.CountryArea) *Store {
	s := &Store{
		cities: make([]cityEntry, 0, len(cities)),
		areas:  areas,
		byISO3: make(map[string][]int),
	}
	for _, c := range cities {
		s.byISO3[c.ISO3] = append(s.byISO3[c.ISO3], len(s.cities))
		s.cities = append(s.cities, cityEntry{
			rec:     c,
			city:    strings.ToLower(c.City),
			ascii:   strings.ToLower(c.CityASCII),
			country: strings.ToLower(c.Country),
		})
	}
	return s
}

// Open loads both tables from disk. A missing or unreadable file leaves that
// table empty and logs a warning.
func Open(citiesPath, areasPath string) *Store {
	var cities []models.CityRecord
	if err := loadFile(citiesPath, func(f *os.File) error {
		var err error
		cities, err = LoadCities(f)
		return err
	}); err != nil {
		slog.Warn("city reference data unavailable", "path", citiesPath, "error", err)
	}

	var areas []models.CountryArea
	if err := loadFile(areasPath, func(f *os.File) error {
		var err error
		areas, err = LoadAreas(f)
		return err
	}); err != nil {
		slog.Warn("country area data unavailable", "path", areasPath, "error", err)
	}

	slog.Info("reference data loaded", "cities", len(cities), "areas", len(areas))
	return New(cities, areas)
}

func loadFile(path string, load func(*os.File) error) error {
	if path == "" {
		return fmt.Errorf("no path configured")
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer f.Close()
	return load(f)
}

func (s *Store) CityCount() int {
	return len(s.cities)
}

// FindCity matches name against city names and country names. Exact city
// name matches come first, then substring matches, each ordered by population.
func (s *Store) FindCity(name string, limit int) []models.CityRecord {
	q := normalize(name)
	if q == "" || limit <= 0 {
		return nil
	}

	type hit struct {
		idx   int
		exact bool
	}
	var hits []hit
	for i, c := range s.cities {
		switch {
		case c.city == q || c.ascii == q:
			hits = append(hits, hit{i, true})
		case strings.Contains(c.city, q) || strings.Contains(c.ascii, q) || strings.Contains(c.country, q):
			hits = append(hits, hit{i, false})
		}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].exact != hits[b].exact {
			return hits[a].exact
		}
		return s.morePopulous(hits[a].idx, hits[b].idx)
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]models.CityRecord, len(hits))
	for i, h := range hits {
		out[i] = s.cities[h.idx].rec
	}
	return out
}

// FindCityInCountry returns the most populous city in iso3 whose localized or
// ASCII name equals name, or nil.
func (s *Store) FindCityInCountry(name, iso3 string) *models.CityRecord {
	q := normalize(name)
	if q == "" {
		return nil
	}
	best := -1
	for _, i := range s.byISO3[strings.ToUpper(strings.TrimSpace(iso3))] {
		c := s.cities[i]
		if c.city != q && c.ascii != q {
			continue
		}
		if best < 0 || s.morePopulous(i, best) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	rec := s.cities[best].rec
	return &rec
}

// CityCountryISO3 maps a city name to the ISO3 of its most populous namesake.
func (s *Store) CityCountryISO3(name string) (string, bool) {
	q := normalize(name)
	if q == "" {
		return "", false
	}
	best := -1
	for i, c := range s.cities {
		if c.city != q && c.ascii != q {
			continue
		}
		if best < 0 || s.morePopulous(i, best) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return s.cities[best].rec.ISO3, true
}

// Capital returns the primary capital of iso3, or nil.
func (s *Store) Capital(iso3 string) *models.CityRecord {
	best := -1
	for _, i := range s.byISO3[strings.ToUpper(strings.TrimSpace(iso3))] {
		if s.cities[i].rec.Capital != models.CapitalPrimary {
			continue
		}
		if best < 0 || s.morePopulous(i, best) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	rec := s.cities[best].rec
	return &rec
}

func (s *Store) Suggest(partial string, limit int) []models.Suggestion {
	cities := s.FindCity(partial, limit)
	out := make([]models.Suggestion, 0, len(cities))
	for _, c := range cities {
		out = append(out, models.Suggestion{
			Label:     c.City + ", " + c.Country,
			City:      c.City,
			Country:   c.Country,
			ISO3:      c.ISO3,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
			Capital:   c.Capital,
		})
	}
	return out
}

func (s *Store) FindCountryArea(country string) *models.CountryArea {
	q := normalize(country)
	if q == "" {
		return nil
	}
	for _, a := range s.areas {
		if strings.ToLower(a.Country) == q {
			area := a
			return &area
		}
	}
	return nil
}

// FindSimilarSizeCountry returns the country whose area is closest to the
// named country's, within a ±20% window. Ties go to the alphabetically first name.
func (s *Store) FindSimilarSizeCountry(country string) (string, bool) {
	target := s.FindCountryArea(country)
	if target == nil {
		return "", false
	}

	lo := target.AreaKm2 * (1 - sizeWindow)
	hi := target.AreaKm2 * (1 + sizeWindow)

	best := ""
	bestDiff := math.Inf(1)
	for _, a := range s.areas {
		if strings.EqualFold(a.Country, target.Country) {
			continue
		}
		if a.AreaKm2 < lo || a.AreaKm2 > hi {
			continue
		}
		diff := math.Abs(a.AreaKm2 - target.AreaKm2)
		if diff < bestDiff || (diff == bestDiff && a.Country < best) {
			best = a.Country
			bestDiff = diff
		}
	}
	return best, best != ""
}

func (s *Store) morePopulous(a, b int) bool {
	ra, rb := s.cities[a].rec, s.cities[b].rec
	if ra.Population != rb.Population {
		return ra.Population > rb.Population
	}
	return ra.ID < rb.ID
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
