// Package hierarchy builds the five-tier program hierarchy from the AI Intern
// and Tech Lead registration tables and derives filtered views from it.
//
// A hierarchy is a flat Table of Nodes linked by parent label.  Tables are
// produced fresh by Build and never mutated afterwards; every filter returns
// a new Table.
package hierarchy

import (
	"fmt"

	"github.com/turtacn/CohortMap/pkg/errors"
)

// Category is the closed set of tiers a node can belong to.  The zero value
// is not a valid category.
type Category uint8

const (
	// CategoryProgramLead is the root tier.
	CategoryProgramLead Category = iota + 1
	// CategoryCohortOwner is the upper synthetic aggregator (tier 2).
	CategoryCohortOwner
	// CategoryAICoach is the lower synthetic aggregator (tier 1).
	CategoryAICoach
	// CategoryTechLead is the lead leaf tier, including the unassigned catch-all.
	CategoryTechLead
	// CategoryAIIntern is the intern leaf tier.
	CategoryAIIntern
)

var categoryNames = map[Category]string{
	CategoryProgramLead: "Program Lead",
	CategoryCohortOwner: "Cohort Owner",
	CategoryAICoach:     "AI Coach",
	CategoryTechLead:    "Tech Lead",
	CategoryAIIntern:    "AI Intern",
}

// Categories lists every category from the root tier down.
func Categories() []Category {
	return []Category{
		CategoryProgramLead,
		CategoryCohortOwner,
		CategoryAICoach,
		CategoryTechLead,
		CategoryAIIntern,
	}
}

// String returns the display name used as the Level column and color key.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Valid reports whether c is one of the five known tiers.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// IsAggregator reports whether c is the root or one of the synthetic
// aggregator tiers.
func (c Category) IsAggregator() bool {
	return c == CategoryProgramLead || c == CategoryCohortOwner || c == CategoryAICoach
}

// IsLeaf reports whether c is one of the participant tiers.
func (c Category) IsLeaf() bool {
	return c == CategoryTechLead || c == CategoryAIIntern
}

// ParseCategory maps a display name back to its Category.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return 0, errors.New(errors.CodeValidation, "unknown category").WithDetail(s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, errors.New(errors.CodeValidation, "invalid category").WithDetail(c.String())
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

//Personal.AI order the ending
