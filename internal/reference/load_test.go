package reference

import (
	"strings"
	"testing"
)

const riskCSV = `country,iso3,population,global_rank,peace_rank,electricity_access,inform_index,risk_class,earthquake,river_flood,tsunami,tropical_storm,coastal_flood,drought,epidemic,projected_conflict,current_conflict,life_expectancy,gdp_per_capita,hdi,fun_fact
Germany,deu,83.2,160,20,100,2.1,Very Low,2.1,5.5,0.1,0.1,3.2,2.0,2.4,0,0,81.2,48000,0.942,Home to over 20000 castles
Japan,JPN,125.7,,12,100,1.9,Very Low,9.8,7.0,9.7,7.6,5.9,1.0,1.5,0,0,84.5,39000,0.925,
Nowhere,XX,1,1,1,1,1,Low,,,,,,,,,,,,,
Brokenland,BRK,n/a,5,5,5,5,Low,,,,,,,,,,,,,
`

func TestLoadCountryRisk(t *testing.T) {
	records, err := LoadCountryRisk(strings.NewReader(riskCSV))
	if err != nil {
		t.Fatalf("LoadCountryRisk failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	de := records[0]
	if de.ISO3 != "DEU" {
		t.Errorf("expected upper-cased ISO3, got %q", de.ISO3)
	}
	if de.GlobalRank != 160 || de.PeaceRank != 20 {
		t.Errorf("unexpected ranks %d/%d", de.GlobalRank, de.PeaceRank)
	}
	if de.Hazards.RiverFlood != 5.5 {
		t.Errorf("expected inline hazard scores, got river flood %f", de.Hazards.RiverFlood)
	}
	if de.FunFact == "" {
		t.Error("expected fun fact")
	}

	if records[1].GlobalRank != 0 {
		t.Errorf("expected missing global rank to decode as 0, got %d", records[1].GlobalRank)
	}
}
