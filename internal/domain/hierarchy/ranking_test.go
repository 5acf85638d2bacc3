package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopEntitiesByThreshold_InclusiveBoundary(t *testing.T) {
	leads := []RawRecord{rec("Edge", "40", "X"), rec("Below", "49", "X")}
	interns := []RawRecord{rec("Edge", "60", "X"), rec("Below", "50", "X")}

	got, err := TopEntitiesByThreshold(interns, leads, AllRegions, 100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Entity{Name: "Edge", Region: "X", Total: 100, Band: BandHigh}, got[0])
}

func TestTopEntitiesByThreshold_GroupsByNameAndRegion(t *testing.T) {
	leads := []RawRecord{rec("Same", "30", "North")}
	interns := []RawRecord{rec("Same", "30", "South"), rec("Same", "25", "North")}

	got, err := TopEntitiesByThreshold(interns, leads, AllRegions, 0)
	require.NoError(t, err)
	assert.Equal(t, []Entity{
		{Name: "Same", Region: "North", Total: 55, Band: BandMedium},
		{Name: "Same", Region: "South", Total: 30, Band: BandLow},
	}, got)
}

func TestTopEntitiesByThreshold_RegionFilterAndStableTies(t *testing.T) {
	leads := []RawRecord{rec("B", "50", "K"), rec("A", "50", "K"), rec("C", "80", "T")}
	interns := []RawRecord{rec("D", "50", "K"), rec("E", "bad", "K")}

	got, err := TopEntitiesByThreshold(interns, leads, "K", 50)
	require.NoError(t, err)
	names := make([]string, len(got))
	for i, e := range got {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"B", "A", "D"}, names)
}

func TestTopEntitiesByThreshold_RoundTripAggregation(t *testing.T) {
	leads := []RawRecord{rec("A", "10", "K"), rec("B", "3", "K"), rec("A", "1", "K")}
	interns := []RawRecord{rec("A", "7", "K"), rec("C", "5", "T")}

	got, err := TopEntitiesByThreshold(interns, leads, "K", 0)
	require.NoError(t, err)

	var sum float64
	for _, e := range got {
		sum += e.Total
	}
	var raw float64
	for _, r := range append(append([]RawRecord{}, leads...), interns...) {
		if r.Region == "K" {
			raw += CoerceWeight(r.Registrations)
		}
	}
	assert.Equal(t, raw, sum)

	// Leaves of a built table agree with the ranking for the same region.
	res := mustBuild(t, input("i", interns...), input("l", leads...))
	var leafSum float64
	for _, n := range FilterByRegion(res.Table, "K").DataLeaves() {
		leafSum += n.Weight
	}
	assert.Equal(t, raw, leafSum)
}

func TestTopEntitiesByThreshold_InvalidThreshold(t *testing.T) {
	_, err := TopEntitiesByThreshold(nil, nil, AllRegions, -0.5)
	assert.Error(t, err)
}

func TestBandFor(t *testing.T) {
	assert.Equal(t, BandHigh, BandFor(100))
	assert.Equal(t, BandMedium, BandFor(99.9))
	assert.Equal(t, BandMedium, BandFor(50))
	assert.Equal(t, BandLow, BandFor(49))
	assert.Equal(t, []float64{50, 100}, ThresholdOptions())
}

//Personal.AI order the ending
