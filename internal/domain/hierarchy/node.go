package hierarchy

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/CohortMap/pkg/errors"
)

// RegionNA marks nodes without a region: every synthetic node and every leaf
// whose source row had no State.
const RegionNA = "N/A"

// Region selectors that mean "no region filter".
const (
	AllRegions      = "All"
	AllRegionsLabel = "All States"
)

// IsAllRegions reports whether region selects the unfiltered view.  The empty
// string counts as unfiltered.
func IsAllRegions(region string) bool {
	return region == "" || region == AllRegions || region == AllRegionsLabel
}

// RegionTitle is the display form of a region selector.
func RegionTitle(region string) string {
	if IsAllRegions(region) {
		return AllRegionsLabel
	}
	return region
}

// Node is one entry of a hierarchy table.
type Node struct {
	Label    string   `json:"label"`
	Parent   string   `json:"parent"`
	Weight   float64  `json:"weight"`
	Category Category `json:"category"`
	Region   string   `json:"region"`

	// Institution is the source CollegeName for data leaves and empty for
	// synthetic nodes.
	Institution string `json:"institution,omitempty"`
}

// IsRoot reports whether n is the root.
func (n Node) IsRoot() bool { return n.Parent == "" }

// IsSynthetic reports whether n was generated rather than read from input.
func (n Node) IsSynthetic() bool { return n.Institution == "" }

// IsDataLeaf reports whether n is a lead or intern read from input.
func (n Node) IsDataLeaf() bool { return !n.IsSynthetic() && n.Category.IsLeaf() }

// IsUnassigned reports whether n is the catch-all lead for unmatched interns.
func (n Node) IsUnassigned() bool { return n.IsSynthetic() && n.Category == CategoryTechLead }

// CoerceWeight converts a raw registration cell to a weight.  Anything that is
// not a finite non-negative number becomes 0.
func CoerceWeight(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// AddWeights sums two weights, saturating at math.MaxFloat64 so a total never
// becomes infinite.
func AddWeights(a, b float64) float64 {
	sum := a + b
	if math.IsInf(sum, 1) {
		return math.MaxFloat64
	}
	return sum
}

// ─────────────────────────────────────────────────────────────────────────────
// Table
// ─────────────────────────────────────────────────────────────────────────────

// Table is an ordered hierarchy.  Order carries no meaning beyond making
// output deterministic.
type Table []Node

// Empty reports whether t has no nodes.
func (t Table) Empty() bool { return len(t) == 0 }

// Index maps each label to its position.  Later duplicates win.
func (t Table) Index() map[string]int {
	idx := make(map[string]int, len(t))
	for i, n := range t {
		idx[n.Label] = i
	}
	return idx
}

// Lookup returns the node with the given label.
func (t Table) Lookup(label string) (Node, bool) {
	for _, n := range t {
		if n.Label == label {
			return n, true
		}
	}
	return Node{}, false
}

// Root returns the first node without a parent.
func (t Table) Root() (Node, bool) {
	for _, n := range t {
		if n.IsRoot() {
			return n, true
		}
	}
	return Node{}, false
}

// DataLeaves returns the leads and interns read from input, in table order.
func (t Table) DataLeaves() Table {
	out := make(Table, 0, len(t))
	for _, n := range t {
		if n.IsDataLeaf() {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the direct children of label, in table order.
func (t Table) Children(label string) Table {
	var out Table
	for _, n := range t {
		if n.Parent == label && !n.IsRoot() {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a copy that shares no backing array with t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// Regions returns the sorted distinct regions of data leaves, excluding
// RegionNA and blanks.
func (t Table) Regions() []string {
	seen := make(map[string]struct{})
	for _, n := range t {
		if !n.IsDataLeaf() || n.Region == RegionNA || n.Region == "" {
			continue
		}
		seen[n.Region] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Validate checks the tree invariants: a single root, unique labels, parents
// that resolve, no cycles, known categories and finite non-negative weights.
// An empty table is valid; it is the no-data view.
func (t Table) Validate() error {
	if len(t) == 0 {
		return nil
	}

	labels := make(map[string]int, len(t))
	roots := 0
	for i, n := range t {
		if n.Label == "" {
			return invalidTree("node %d has an empty label", i)
		}
		if prev, dup := labels[n.Label]; dup {
			return invalidTree("label %q appears at %d and %d", n.Label, prev, i)
		}
		labels[n.Label] = i
		if n.IsRoot() {
			roots++
		}
		if !n.Category.Valid() {
			return invalidTree("node %q has invalid category %s", n.Label, n.Category)
		}
		if math.IsNaN(n.Weight) || math.IsInf(n.Weight, 0) || n.Weight < 0 {
			return invalidTree("node %q has invalid weight %v", n.Label, n.Weight)
		}
	}
	if roots != 1 {
		return invalidTree("expected exactly one root, found %d", roots)
	}

	for _, n := range t {
		if n.IsRoot() {
			continue
		}
		if _, ok := labels[n.Parent]; !ok {
			return invalidTree("node %q references missing parent %q", n.Label, n.Parent)
		}
	}

	// Every chain must reach the root within len(t) steps.
	for _, n := range t {
		cur := n
		for steps := 0; !cur.IsRoot(); steps++ {
			if steps > len(t) {
				return invalidTree("cycle through %q", n.Label)
			}
			cur = t[labels[cur.Parent]]
		}
	}
	return nil
}

func invalidTree(format string, args ...interface{}) error {
	return errors.Newf(errors.CodeInvalidTree, format, args...)
}

//Personal.AI order the ending
