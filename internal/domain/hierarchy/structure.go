package hierarchy

import (
	"math"

	"github.com/turtacn/CohortMap/pkg/errors"
)

// Default structural constants of the program hierarchy.
const (
	DefaultRootLabel        = "Program Lead"
	DefaultCohortOwnerLabel = "Cohort Owner 1"
	DefaultAICoachLabel     = "AI Coach 1"
	DefaultUnassignedLabel  = "Tech Lead (Unassigned)"

	DefaultRootWeight        = 1
	DefaultCohortOwnerWeight = 20
	DefaultAICoachWeight     = 200

	DefaultLeadSuffix   = " (Tech Lead)"
	DefaultInternSuffix = " (Intern)"
)

// Structure holds the fixed shape every hierarchy is built on: the synthetic
// aggregator chain, the unassigned catch-all and the label suffixes that keep
// lead and intern labels apart.
type Structure struct {
	RootLabel         string
	RootWeight        float64
	CohortOwnerLabel  string
	CohortOwnerWeight float64
	AICoachLabel      string
	AICoachWeight     float64
	UnassignedLabel   string
	LeadSuffix        string
	InternSuffix      string
}

// DefaultStructure returns the standard program shape.
func DefaultStructure() Structure {
	return Structure{
		RootLabel:         DefaultRootLabel,
		RootWeight:        DefaultRootWeight,
		CohortOwnerLabel:  DefaultCohortOwnerLabel,
		CohortOwnerWeight: DefaultCohortOwnerWeight,
		AICoachLabel:      DefaultAICoachLabel,
		AICoachWeight:     DefaultAICoachWeight,
		UnassignedLabel:   DefaultUnassignedLabel,
		LeadSuffix:        DefaultLeadSuffix,
		InternSuffix:      DefaultInternSuffix,
	}
}

// Validate rejects structures whose synthetic labels are blank or collide,
// whose suffixes are equal, or whose weights are not finite and non-negative.
func (s Structure) Validate() error {
	labels := []string{s.RootLabel, s.CohortOwnerLabel, s.AICoachLabel, s.UnassignedLabel}
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if l == "" {
			return errors.New(errors.CodeInvalidStructure, "synthetic labels must not be empty")
		}
		if seen[l] {
			return errors.New(errors.CodeInvalidStructure, "synthetic labels must be distinct").WithDetail(l)
		}
		seen[l] = true
	}
	if s.LeadSuffix == s.InternSuffix {
		return errors.New(errors.CodeInvalidStructure, "lead and intern suffixes must differ")
	}
	for _, w := range []float64{s.RootWeight, s.CohortOwnerWeight, s.AICoachWeight} {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return errors.New(errors.CodeInvalidStructure, "synthetic weights must be finite and non-negative")
		}
	}
	return nil
}

// LeadLabel returns the label of the lead node for an institution.
func (s Structure) LeadLabel(institution string) string { return institution + s.LeadSuffix }

// InternLabel returns the label of the intern node for an institution.
func (s Structure) InternLabel(institution string) string { return institution + s.InternSuffix }

// chain returns root, tier-2 and tier-1 in that order.
func (s Structure) chain() []Node {
	return []Node{
		{Label: s.RootLabel, Parent: "", Weight: s.RootWeight, Category: CategoryProgramLead, Region: RegionNA},
		{Label: s.CohortOwnerLabel, Parent: s.RootLabel, Weight: s.CohortOwnerWeight, Category: CategoryCohortOwner, Region: RegionNA},
		{Label: s.AICoachLabel, Parent: s.CohortOwnerLabel, Weight: s.AICoachWeight, Category: CategoryAICoach, Region: RegionNA},
	}
}

func (s Structure) unassigned() Node {
	return Node{Label: s.UnassignedLabel, Parent: s.AICoachLabel, Weight: 0, Category: CategoryTechLead, Region: RegionNA}
}

//Personal.AI order the ending
