package models

type ResolveMode string

const (
	ModeCountry       ResolveMode = "country"
	ModeCityInCountry ResolveMode = "city-in-country"
)

// CityMatch is the city part of a resolved "City, Country" query.
type CityMatch struct {
	Name       string        `json:"name"`
	Latitude   float64       `json:"lat"`
	Longitude  float64       `json:"lng"`
	AdminName  string        `json:"admin_name,omitempty"`
	Capital    CapitalStatus `json:"capital,omitempty"`
	Population float64       `json:"population,omitempty"`
}

type ResolvedDestination struct {
	Query       string            `json:"query"`
	Mode        ResolveMode       `json:"mode"`
	Country     CountryRiskRecord `json:"country"`
	City        *CityMatch        `json:"city,omitempty"`
	DisplayName string            `json:"display_name"`
	// CityPart is the raw city text of a comma query, kept even when no city matched.
	CityPart string `json:"-"`
}

// IsCity reports whether the query named a city, regardless of whether it was matched.
func (d *ResolvedDestination) IsCity() bool {
	return d.Mode == ModeCityInCountry
}

type PeerCountry struct {
	Country      string  `json:"country"`
	ISO3         string  `json:"iso3"`
	GlobalRank   int     `json:"global_rank,omitempty"`
	PeaceRank    int     `json:"peace_rank,omitempty"`
	InformIndex  float64 `json:"inform_index"`
	GDPPerCapita float64 `json:"gdp_per_capita,omitempty"`
}

func PeerFrom(r CountryRiskRecord) PeerCountry {
	return PeerCountry{
		Country:      r.Country,
		ISO3:         r.ISO3,
		GlobalRank:   r.GlobalRank,
		PeaceRank:    r.PeaceRank,
		InformIndex:  r.InformIndex,
		GDPPerCapita: r.GDPPerCapita,
	}
}

type PeerComparisonSet struct {
	SimilarInform   []PeerCountry `json:"similar_inform"`
	GlobalRankAbove *PeerCountry  `json:"global_rank_above,omitempty"`
	GlobalRankBelow *PeerCountry  `json:"global_rank_below,omitempty"`
	PeaceRankAbove  *PeerCountry  `json:"peace_rank_above,omitempty"`
	PeaceRankBelow  *PeerCountry  `json:"peace_rank_below,omitempty"`
	SimilarGDP      []PeerCountry `json:"similar_gdp,omitempty"`
}

// FusedResult is the single response of the resolve-and-fuse operation.
// Every enrichment slot is independently nil when its source failed.
type FusedResult struct {
	Query              string               `json:"query"`
	Destination        *ResolvedDestination `json:"destination,omitempty"`
	Synthetic          bool                 `json:"synthetic"`
	Notice             string               `json:"notice,omitempty"`
	Weather            *WeatherSnapshot     `json:"weather"`
	AirQuality         *AirQuality          `json:"air_quality"`
	Summary            *string              `json:"summary"`
	Narrative          *string              `json:"narrative"`
	News               []Article            `json:"news"`
	Peers              *PeerComparisonSet   `json:"peers"`
	Area               *CountryArea         `json:"area,omitempty"`
	SimilarSizeCountry string               `json:"similar_size_country,omitempty"`
	Comparison         *FusedResult         `json:"comparison,omitempty"`
}
