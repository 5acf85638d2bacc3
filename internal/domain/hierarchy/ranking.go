package hierarchy

import (
	"sort"
	"strings"
)

// Threshold presets offered to users.
const (
	ThresholdMedium  = 50
	ThresholdHigh    = 100
	DefaultThreshold = ThresholdHigh
)

// ThresholdOptions returns the preset minimum-registration choices.
func ThresholdOptions() []float64 { return []float64{ThresholdMedium, ThresholdHigh} }

// Band classifies an institution total for color coding.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// BandFor returns the band of total: at least 100 is high, at least 50 is
// medium, anything else low.
func BandFor(total float64) Band {
	switch {
	case total >= ThresholdHigh:
		return BandHigh
	case total >= ThresholdMedium:
		return BandMedium
	default:
		return BandLow
	}
}

// Entity is one institution total produced by TopEntitiesByThreshold.
type Entity struct {
	Name   string  `json:"name"`
	Region string  `json:"region"`
	Total  float64 `json:"total"`
	Band   Band    `json:"band"`
}

// TopEntitiesByThreshold merges both record sets by (institution, region),
// sums their coerced registrations and returns the groups whose total is at
// least min, largest first.  Leads are read before interns; groups with equal
// totals keep the order in which they first appeared.  An unfiltered region
// selector considers every region.
func TopEntitiesByThreshold(interns, leads []RawRecord, region string, min float64) ([]Entity, error) {
	if err := validateThreshold(min); err != nil {
		return nil, err
	}

	var groups []Entity
	pos := make(map[groupKey]int)
	add := func(records []RawRecord) {
		for _, rec := range records {
			name := strings.TrimSpace(rec.Institution)
			if name == "" {
				continue
			}
			reg := NormalizeRegion(rec.Region)
			if !IsAllRegions(region) && reg != region {
				continue
			}
			key := groupKey{name, reg}
			i, ok := pos[key]
			if !ok {
				i = len(groups)
				pos[key] = i
				groups = append(groups, Entity{Name: name, Region: reg})
			}
			groups[i].Total = AddWeights(groups[i].Total, CoerceWeight(rec.Registrations))
		}
	}
	add(leads)
	add(interns)

	out := make([]Entity, 0, len(groups))
	for _, g := range groups {
		if g.Total >= min {
			g.Band = BandFor(g.Total)
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out, nil
}

//Personal.AI order the ending
