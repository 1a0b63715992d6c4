package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/mr1hm/go-travel-brief/internal/models"
)

// LoadCities decodes a world cities CSV. Rows that fail to decode are dropped.
func LoadCities(r io.Reader) ([]models.CityRecord, error) {
	var out []models.CityRecord
	skipped, err := decodeRows(r, func(dec *csvutil.Decoder) error {
		var c models.CityRecord
		if err := dec.Decode(&c); err != nil {
			return err
		}
		c.City = strings.TrimSpace(c.City)
		c.CityASCII = strings.TrimSpace(c.CityASCII)
		c.ISO3 = strings.ToUpper(strings.TrimSpace(c.ISO3))
		if c.City == "" || c.ISO3 == "" {
			return errSkipRow
		}
		if c.CityASCII == "" {
			c.CityASCII = c.City
		}
		c.Capital = normalizeCapital(c.Capital)
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error decoding cities: %w", err)
	}
	if skipped > 0 {
		slog.Debug("dropped malformed city rows", "count", skipped)
	}
	return out, nil
}

// LoadAreas decodes the country area table. Rows without a positive area are dropped.
func LoadAreas(r io.Reader) ([]models.CountryArea, error) {
	var out []models.CountryArea
	skipped, err := decodeRows(r, func(dec *csvutil.Decoder) error {
		var a models.CountryArea
		if err := dec.Decode(&a); err != nil {
			return err
		}
		a.Country = strings.TrimSpace(a.Country)
		if a.Country == "" || a.AreaKm2 <= 0 {
			return errSkipRow
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error decoding country areas: %w", err)
	}
	if skipped > 0 {
		slog.Debug("dropped malformed area rows", "count", skipped)
	}
	return out, nil
}

// LoadCountryRisk decodes the country risk dataset export used to seed the
// risk database. Rows without a country name or a three letter ISO3 are dropped.
func LoadCountryRisk(r io.Reader) ([]models.CountryRiskRecord, error) {
	var out []models.CountryRiskRecord
	skipped, err := decodeRows(r, func(dec *csvutil.Decoder) error {
		var rec models.CountryRiskRecord
		if err := dec.Decode(&rec); err != nil {
			return err
		}
		rec.Country = strings.TrimSpace(rec.Country)
		rec.ISO3 = strings.ToUpper(strings.TrimSpace(rec.ISO3))
		if rec.Country == "" || len(rec.ISO3) != 3 {
			return errSkipRow
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error decoding country risk rows: %w", err)
	}
	if skipped > 0 {
		slog.Warn("dropped malformed country risk rows", "count", skipped)
	}
	return out, nil
}

var errSkipRow = errors.New("skip row")

// decodeRows reads the header then calls next once per row until EOF.
// Row-level failures are counted and skipped.
func decodeRows(r io.Reader, next func(*csvutil.Decoder) error) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, err
	}

	skipped := 0
	for {
		err := next(dec)
		if errors.Is(err, io.EOF) {
			return skipped, nil
		}
		if err == nil {
			continue
		}
		if !rowLevel(err) {
			return skipped, err
		}
		skipped++
	}
}

// rowLevel reports whether err only affects the current row.
func rowLevel(err error) bool {
	var parseErr *csv.ParseError
	var decodeErr *csvutil.DecodeError
	var typeErr *csvutil.UnmarshalTypeError
	return errors.Is(err, errSkipRow) ||
		errors.Is(err, csvutil.ErrFieldCount) ||
		errors.As(err, &parseErr) ||
		errors.As(err, &decodeErr) ||
		errors.As(err, &typeErr)
}

func normalizeCapital(c models.CapitalStatus) models.CapitalStatus {
	switch models.CapitalStatus(strings.ToLower(strings.TrimSpace(string(c)))) {
	case models.CapitalPrimary:
		return models.CapitalPrimary
	case models.CapitalAdmin:
		return models.CapitalAdmin
	default:
		return models.CapitalNone
	}
}
