package models

type CapitalStatus string

const (
	CapitalPrimary CapitalStatus = "primary"
	CapitalAdmin   CapitalStatus = "admin"
	CapitalNone    CapitalStatus = ""
)

// CityRecord mirrors one row of the world cities list.
type CityRecord struct {
	ID         int64         `json:"id" csv:"id"`
	City       string        `json:"city" csv:"city"`
	CityASCII  string        `json:"city_ascii" csv:"city_ascii"`
	Latitude   float64       `json:"lat" csv:"lat"`
	Longitude  float64       `json:"lng" csv:"lng"`
	Country    string        `json:"country" csv:"country"`
	ISO2       string        `json:"iso2" csv:"iso2"`
	ISO3       string        `json:"iso3" csv:"iso3"`
	AdminName  string        `json:"admin_name" csv:"admin_name"`
	Capital    CapitalStatus `json:"capital" csv:"capital"`
	Population float64       `json:"population" csv:"population,omitempty"`
}

// Suggestion is an autocomplete entry derived from a CityRecord.
type Suggestion struct {
	Label     string        `json:"label"`
	City      string        `json:"city"`
	Country   string        `json:"country"`
	ISO3      string        `json:"iso3"`
	Latitude  float64       `json:"lat"`
	Longitude float64       `json:"lng"`
	Capital   CapitalStatus `json:"capital,omitempty"`
}
