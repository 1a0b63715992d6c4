package models

// CountryRiskRecord is one row of the country risk dataset.
type CountryRiskRecord struct {
	Country              string       `json:"country" csv:"country"`
	ISO3                 string       `json:"iso3" csv:"iso3"`
	PopulationMillions   float64      `json:"population_millions" csv:"population,omitempty"`
	GlobalRank           int          `json:"global_rank" csv:"global_rank,omitempty"`
	PeaceRank            int          `json:"peace_rank" csv:"peace_rank,omitempty"`
	ElectricityAccessPct float64      `json:"electricity_access_pct" csv:"electricity_access,omitempty"`
	InformIndex          float64      `json:"inform_index" csv:"inform_index,omitempty"`
	RiskClass            string       `json:"risk_class" csv:"risk_class"`
	Hazards              HazardScores `json:"hazards" csv:",inline"`
	LifeExpectancy       float64      `json:"life_expectancy" csv:"life_expectancy,omitempty"`
	GDPPerCapita         float64      `json:"gdp_per_capita" csv:"gdp_per_capita,omitempty"`
	HDI                  float64      `json:"hdi" csv:"hdi,omitempty"`
	FunFact              string       `json:"fun_fact" csv:"fun_fact"`
}

// HazardScores are 0-10, higher is riskier.
type HazardScores struct {
	Earthquake        float64 `json:"earthquake" csv:"earthquake,omitempty"`
	RiverFlood        float64 `json:"river_flood" csv:"river_flood,omitempty"`
	Tsunami           float64 `json:"tsunami" csv:"tsunami,omitempty"`
	TropicalStorm     float64 `json:"tropical_storm" csv:"tropical_storm,omitempty"`
	CoastalFlood      float64 `json:"coastal_flood" csv:"coastal_flood,omitempty"`
	Drought           float64 `json:"drought" csv:"drought,omitempty"`
	Epidemic          float64 `json:"epidemic" csv:"epidemic,omitempty"`
	ProjectedConflict float64 `json:"projected_conflict" csv:"projected_conflict,omitempty"`
	CurrentConflict   float64 `json:"current_conflict" csv:"current_conflict,omitempty"`
}

// Named returns the scores keyed by a human readable hazard name, in a fixed order.
func (h HazardScores) Named() []NamedHazard {
	return []NamedHazard{
		{"earthquake", h.Earthquake},
		{"river flood", h.RiverFlood},
		{"tsunami", h.Tsunami},
		{"tropical storm", h.TropicalStorm},
		{"coastal flood", h.CoastalFlood},
		{"drought", h.Drought},
		{"epidemic", h.Epidemic},
		{"projected conflict", h.ProjectedConflict},
		{"current conflict", h.CurrentConflict},
	}
}

type NamedHazard struct {
	Name  string
	Score float64
}

type CountryArea struct {
	Country     string  `json:"country" csv:"country"`
	AreaKm2     float64 `json:"area_km2" csv:"area_km2"`
	AreaSqMiles float64 `json:"area_sq_mi" csv:"area_sq_mi,omitempty"`
}
