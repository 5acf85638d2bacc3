package hierarchy

import "strings"

// RegionStats summarises the data leaves of one region, or of the whole
// table when the region selector is unfiltered.
type RegionStats struct {
	Region             string  `json:"region"`
	Institutions       int     `json:"institutions"`
	TotalRegistrations float64 `json:"total_registrations"`
	TechLeads          int     `json:"tech_leads"`
	AIInterns          int     `json:"ai_interns"`
}

// InstitutionStats summarises the leaves whose label contains a selected
// institution name.
type InstitutionStats struct {
	Institution        string  `json:"institution"`
	Region             string  `json:"region"`
	TotalRegistrations float64 `json:"total_registrations"`
	TechLeads          int     `json:"tech_leads"`
	AIInterns          int     `json:"ai_interns"`
	Matched            bool    `json:"matched"`
}

// LevelTotal is the registration sum of one category.
type LevelTotal struct {
	Level Category `json:"level"`
	Total float64  `json:"total"`
	Nodes int      `json:"nodes"`
}

// SummarizeRegion counts distinct institutions, registrations and leaves per
// role among the data leaves of region.
func SummarizeRegion(t Table, region string) RegionStats {
	stats := RegionStats{Region: RegionTitle(region)}
	names := make(map[string]struct{})
	for _, n := range t {
		if !n.IsDataLeaf() || (!IsAllRegions(region) && n.Region != region) {
			continue
		}
		names[n.Institution] = struct{}{}
		stats.TotalRegistrations = AddWeights(stats.TotalRegistrations, n.Weight)
		countRole(n, &stats.TechLeads, &stats.AIInterns)
	}
	stats.Institutions = len(names)
	return stats
}

// SummarizeInstitution aggregates the data leaves of region whose label
// contains name.  Matching is a plain substring test, so a selection also
// covers institutions whose names extend it.
func SummarizeInstitution(t Table, region, name string) InstitutionStats {
	stats := InstitutionStats{Institution: name, Region: RegionTitle(region)}
	if name == "" {
		return stats
	}
	for _, n := range t {
		if !n.IsDataLeaf() || (!IsAllRegions(region) && n.Region != region) {
			continue
		}
		if !strings.Contains(n.Label, name) {
			continue
		}
		stats.Matched = true
		stats.TotalRegistrations = AddWeights(stats.TotalRegistrations, n.Weight)
		countRole(n, &stats.TechLeads, &stats.AIInterns)
	}
	return stats
}

// LevelTotals sums weights per category over every node of t, synthetic
// nodes included.  Categories without nodes are omitted; the order follows
// Categories().
func LevelTotals(t Table) []LevelTotal {
	totals := make(map[Category]*LevelTotal)
	for _, n := range t {
		lt, ok := totals[n.Category]
		if !ok {
			lt = &LevelTotal{Level: n.Category}
			totals[n.Category] = lt
		}
		lt.Total = AddWeights(lt.Total, n.Weight)
		lt.Nodes++
	}
	out := make([]LevelTotal, 0, len(totals))
	for _, c := range Categories() {
		if lt, ok := totals[c]; ok {
			out = append(out, *lt)
		}
	}
	return out
}

// Preview returns up to limit data leaves of t in table order.
func Preview(t Table, limit int) Table {
	leaves := t.DataLeaves()
	if limit >= 0 && len(leaves) > limit {
		leaves = leaves[:limit]
	}
	return leaves
}

func countRole(n Node, leads, interns *int) {
	switch n.Category {
	case CategoryTechLead:
		*leads++
	case CategoryAIIntern:
		*interns++
	}
}

//Personal.AI order the ending
