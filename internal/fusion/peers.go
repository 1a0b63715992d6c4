package fusion

import (
	"math"
	"sort"
	"strings"

	"github.com/mr1hm/go-travel-brief/internal/models"
)

const similarCount = 3

// ComputePeers builds the comparison set for target from the full dataset.
// Records with a missing (zero) value never qualify for the set that uses it.
func ComputePeers(target models.CountryRiskRecord, all []models.CountryRiskRecord) *models.PeerComparisonSet {
	others := make([]models.CountryRiskRecord, 0, len(all))
	for _, r := range all {
		if sameCountry(r, target) {
			continue
		}
		others = append(others, r)
	}

	set := &models.PeerComparisonSet{
		SimilarGDP: closest(others, target, func(r models.CountryRiskRecord) float64 { return r.GDPPerCapita }),
	}
	MergeRanking(set, RankNeighbours(target, others))
	return set
}

// RankNeighbours computes the inform-index peers and the rank neighbours.
// Above is the nearest country ranked safer (lower rank), Below the nearest
// ranked riskier (higher rank).
func RankNeighbours(target models.CountryRiskRecord, others []models.CountryRiskRecord) *models.PeerComparisonSet {
	globalAbove, globalBelow := neighbours(others, target.GlobalRank, func(r models.CountryRiskRecord) int { return r.GlobalRank })
	peaceAbove, peaceBelow := neighbours(others, target.PeaceRank, func(r models.CountryRiskRecord) int { return r.PeaceRank })

	return &models.PeerComparisonSet{
		SimilarInform:   closest(others, target, func(r models.CountryRiskRecord) float64 { return r.InformIndex }),
		GlobalRankAbove: globalAbove,
		GlobalRankBelow: globalBelow,
		PeaceRankAbove:  peaceAbove,
		PeaceRankBelow:  peaceBelow,
	}
}

// MergeRanking copies the ranking slots of ranking into into. SimilarGDP is
// never touched.
func MergeRanking(into, ranking *models.PeerComparisonSet) {
	if into == nil || ranking == nil {
		return
	}
	into.SimilarInform = ranking.SimilarInform
	into.GlobalRankAbove = ranking.GlobalRankAbove
	into.GlobalRankBelow = ranking.GlobalRankBelow
	into.PeaceRankAbove = ranking.PeaceRankAbove
	into.PeaceRankBelow = ranking.PeaceRankBelow
}

func closest(others []models.CountryRiskRecord, target models.CountryRiskRecord, value func(models.CountryRiskRecord) float64) []models.PeerCountry {
	t := value(target)
	if t <= 0 {
		return nil
	}

	candidates := make([]models.CountryRiskRecord, 0, len(others))
	for _, r := range others {
		if value(r) > 0 {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return math.Abs(value(candidates[i])-t) < math.Abs(value(candidates[j])-t)
	})

	if len(candidates) > similarCount {
		candidates = candidates[:similarCount]
	}
	out := make([]models.PeerCountry, len(candidates))
	for i, r := range candidates {
		out[i] = models.PeerFrom(r)
	}
	return out
}

// neighbours returns the record with the largest rank below rank and the one
// with the smallest rank above it. The first record wins on equal ranks.
func neighbours(others []models.CountryRiskRecord, rank int, value func(models.CountryRiskRecord) int) (above, below *models.PeerCountry) {
	if rank <= 0 {
		return nil, nil
	}

	var lo, hi *models.CountryRiskRecord
	for i := range others {
		r := &others[i]
		v := value(*r)
		if v <= 0 {
			continue
		}
		if v < rank && (lo == nil || v > value(*lo)) {
			lo = r
		}
		if v > rank && (hi == nil || v < value(*hi)) {
			hi = r
		}
	}

	if lo != nil {
		p := models.PeerFrom(*lo)
		above = &p
	}
	if hi != nil {
		p := models.PeerFrom(*hi)
		below = &p
	}
	return above, below
}

func sameCountry(a, b models.CountryRiskRecord) bool {
	if a.ISO3 != "" && b.ISO3 != "" {
		return strings.EqualFold(a.ISO3, b.ISO3)
	}
	return strings.EqualFold(a.Country, b.Country)
}
