package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-travel-brief/internal/models"
)

func rec(name string, global, peace int, inform, gdp float64) models.CountryRiskRecord {
	return models.CountryRiskRecord{
		Country:      name,
		ISO3:         name[:3],
		GlobalRank:   global,
		PeaceRank:    peace,
		InformIndex:  inform,
		GDPPerCapita: gdp,
	}
}

func peerNames(peers []models.PeerCountry) []string {
	out := make([]string, len(peers))
	for i, p := range peers {
		out[i] = p.Country
	}
	return out
}

func dataset() []models.CountryRiskRecord {
	return []models.CountryRiskRecord{
		rec("Alpha", 10, 5, 6.0, 1000),
		rec("Bravo", 40, 0, 4.1, 9000),
		rec("Charlie", 0, 30, 3.9, 12000),
		rec("Delta", 55, 12, 4.0, 0),
		rec("Echo", 60, 25, 2.0, 11000),
		rec("Foxtrot", 80, 40, 4.2, 10500),
	}
}

func TestComputePeers_RankNeighbours(t *testing.T) {
	target := rec("Golf", 50, 20, 4.0, 10000)
	set := ComputePeers(target, append(dataset(), target))

	// Largest global rank below 50 and smallest above it.
	require.NotNil(t, set.GlobalRankAbove)
	require.NotNil(t, set.GlobalRankBelow)
	assert.Equal(t, "Bravo", set.GlobalRankAbove.Country)
	assert.Equal(t, 40, set.GlobalRankAbove.GlobalRank)
	assert.Equal(t, "Delta", set.GlobalRankBelow.Country)
	assert.Equal(t, 55, set.GlobalRankBelow.GlobalRank)

	require.NotNil(t, set.PeaceRankAbove)
	require.NotNil(t, set.PeaceRankBelow)
	assert.Equal(t, "Delta", set.PeaceRankAbove.Country)
	assert.Equal(t, "Echo", set.PeaceRankBelow.Country)
}

func TestComputePeers_RankProperty(t *testing.T) {
	all := dataset()
	for _, target := range all {
		set := ComputePeers(target, all)
		if target.GlobalRank == 0 {
			assert.Nil(t, set.GlobalRankAbove)
			assert.Nil(t, set.GlobalRankBelow)
			continue
		}

		var wantAbove, wantBelow int
		for _, r := range all {
			if r.GlobalRank <= 0 || r.Country == target.Country {
				continue
			}
			if r.GlobalRank < target.GlobalRank && r.GlobalRank > wantAbove {
				wantAbove = r.GlobalRank
			}
			if r.GlobalRank > target.GlobalRank && (wantBelow == 0 || r.GlobalRank < wantBelow) {
				wantBelow = r.GlobalRank
			}
		}

		if wantAbove == 0 {
			assert.Nil(t, set.GlobalRankAbove, target.Country)
		} else {
			require.NotNil(t, set.GlobalRankAbove, target.Country)
			assert.Equal(t, wantAbove, set.GlobalRankAbove.GlobalRank, target.Country)
		}
		if wantBelow == 0 {
			assert.Nil(t, set.GlobalRankBelow, target.Country)
		} else {
			require.NotNil(t, set.GlobalRankBelow, target.Country)
			assert.Equal(t, wantBelow, set.GlobalRankBelow.GlobalRank, target.Country)
		}
	}
}

func TestComputePeers_EmptyDirectionStaysEmpty(t *testing.T) {
	set := ComputePeers(rec("Alpha", 10, 5, 6.0, 1000), dataset())

	assert.Nil(t, set.GlobalRankAbove, "nothing is safer than rank 10")
	require.NotNil(t, set.GlobalRankBelow)
	assert.Equal(t, "Bravo", set.GlobalRankBelow.Country)
	assert.Nil(t, set.PeaceRankAbove)
}

func TestComputePeers_ZeroRankTargetHasNoNeighbours(t *testing.T) {
	set := ComputePeers(rec("Charlie", 0, 30, 3.9, 12000), dataset())
	assert.Nil(t, set.GlobalRankAbove)
	assert.Nil(t, set.GlobalRankBelow)
	assert.NotNil(t, set.PeaceRankAbove)
}

func TestComputePeers_SimilarInform(t *testing.T) {
	target := rec("Golf", 50, 20, 4.0, 10000)
	set := ComputePeers(target, append(dataset(), target))

	// Delta 0.0, then Bravo and Charlie both 0.1 away; Bravo comes first in input order.
	assert.Equal(t, []string{"Delta", "Bravo", "Charlie"}, peerNames(set.SimilarInform))
}

func TestComputePeers_SimilarGDP(t *testing.T) {
	target := rec("Golf", 50, 20, 4.0, 10000)
	set := ComputePeers(target, dataset())

	// Delta has no GDP and is never a candidate.
	assert.Equal(t, []string{"Foxtrot", "Bravo", "Echo"}, peerNames(set.SimilarGDP))
}

func TestComputePeers_SmallDataset(t *testing.T) {
	target := rec("Golf", 50, 20, 4.0, 10000)
	set := ComputePeers(target, []models.CountryRiskRecord{target, rec("Hotel", 51, 21, 4.5, 8000)})

	assert.Len(t, set.SimilarInform, 1)
	assert.Len(t, set.SimilarGDP, 1)
}

func TestMergeRanking_KeepsSimilarGDP(t *testing.T) {
	gdp := []models.PeerCountry{{Country: "Foxtrot"}}
	into := &models.PeerComparisonSet{SimilarGDP: gdp}
	above := models.PeerCountry{Country: "Bravo"}

	MergeRanking(into, &models.PeerComparisonSet{
		SimilarInform:   []models.PeerCountry{{Country: "Delta"}},
		GlobalRankAbove: &above,
		SimilarGDP:      []models.PeerCountry{{Country: "Overwritten"}},
	})

	assert.Equal(t, gdp, into.SimilarGDP)
	assert.Equal(t, "Bravo", into.GlobalRankAbove.Country)
	assert.Equal(t, []string{"Delta"}, peerNames(into.SimilarInform))

	MergeRanking(into, nil)
	assert.Equal(t, gdp, into.SimilarGDP)
}
