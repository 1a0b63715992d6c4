package repository

import (
	"context"

	"github.com/mr1hm/go-travel-brief/internal/models"
)

// CountryRepository reads the country risk dataset.
//
// Lookups that find nothing return (nil, nil). A non-nil error means the
// dataset could not be queried at all.
type CountryRepository interface {
	// GetByName is a case-insensitive substring match. When several rows
	// match, an exact name wins, then the shortest name, then alphabetical order.
	GetByName(ctx context.Context, name string) (*models.CountryRiskRecord, error)
	GetExact(ctx context.Context, name string) (*models.CountryRiskRecord, error)
	GetByISO3(ctx context.Context, code string) (*models.CountryRiskRecord, error)
	// Search matches the query against country names and ISO3 codes, same ordering as GetByName.
	Search(ctx context.Context, query string, limit int) ([]models.CountryRiskRecord, error)
	// List returns the first limit records ordered by country name.
	List(ctx context.Context, limit int) ([]models.CountryRiskRecord, error)
	ListRanked(ctx context.Context) ([]models.CountryRiskRecord, error)
}
