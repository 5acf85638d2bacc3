package hierarchy

import (
	"math"

	"github.com/turtacn/CohortMap/pkg/errors"
)

// FilterByRegion returns the view of t restricted to one region.
//
// An unfiltered selector returns t itself.  Otherwise the aggregator chain is
// kept together with the data leaves of the region; the unassigned node is
// kept only while a retained intern still points at it.  Nodes whose parent
// did not survive are dropped until nothing changes, so an intern whose lead
// sits in another region disappears as well.  When no data leaf remains the
// result is empty.
func FilterByRegion(t Table, region string) Table {
	if IsAllRegions(region) {
		return t
	}
	return retain(t, func(n Node) bool { return n.Region == region })
}

// FilterByThreshold keeps the data leaves whose institution, summed over
// leads and interns of the same region, reaches min.  The structural rules of
// FilterByRegion apply to the result.
func FilterByThreshold(t Table, min float64) (Table, error) {
	if err := validateThreshold(min); err != nil {
		return nil, err
	}
	totals := make(map[groupKey]float64)
	for _, n := range t {
		if n.IsDataLeaf() {
			k := groupKey{n.Institution, n.Region}
			totals[k] = AddWeights(totals[k], n.Weight)
		}
	}
	return retain(t, func(n Node) bool {
		return totals[groupKey{n.Institution, n.Region}] >= min
	}), nil
}

// Focus returns the subtree rooted at label together with the chain of its
// ancestors.  An unknown label yields an empty table.
func Focus(t Table, label string) Table {
	idx := t.Index()
	if _, ok := idx[label]; !ok {
		return Table{}
	}

	keep := make(map[string]bool)
	for cur := label; cur != ""; {
		if keep[cur] {
			break
		}
		keep[cur] = true
		i, ok := idx[cur]
		if !ok {
			break
		}
		cur = t[i].Parent
	}

	children := make(map[string][]string)
	for _, n := range t {
		if !n.IsRoot() {
			children[n.Parent] = append(children[n.Parent], n.Label)
		}
	}
	queue := []string{label}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if !keep[c] {
				keep[c] = true
				queue = append(queue, c)
			}
		}
	}

	out := make(Table, 0, len(keep))
	for _, n := range t {
		if keep[n.Label] {
			out = append(out, n)
		}
	}
	return out
}

type groupKey struct {
	name   string
	region string
}

// retain keeps aggregators, the data leaves accepted by match and the
// unassigned node when a kept intern hangs on it, then cascades removal of
// nodes whose parent is gone.
func retain(t Table, match func(Node) bool) Table {
	keep := make([]bool, len(t))
	matched := 0
	for i, n := range t {
		switch {
		case n.Category.IsAggregator():
			keep[i] = true
		case n.IsDataLeaf() && match(n):
			keep[i] = true
			matched++
		}
	}
	if matched == 0 {
		return Table{}
	}

	for i, n := range t {
		if !n.IsUnassigned() {
			continue
		}
		for j, m := range t {
			if keep[j] && m.Category == CategoryAIIntern && m.Parent == n.Label {
				keep[i] = true
				break
			}
		}
	}

	present := make(map[string]bool, len(t))
	for i, n := range t {
		if keep[i] {
			present[n.Label] = true
		}
	}
	for changed := true; changed; {
		changed = false
		for i, n := range t {
			if keep[i] && !n.IsRoot() && !present[n.Parent] {
				keep[i] = false
				delete(present, n.Label)
				changed = true
			}
		}
	}

	out := make(Table, 0, len(t))
	leaves := 0
	for i, n := range t {
		if keep[i] {
			out = append(out, n)
			if n.IsDataLeaf() {
				leaves++
			}
		}
	}
	if leaves == 0 {
		return Table{}
	}
	return out
}

func validateThreshold(min float64) error {
	if math.IsNaN(min) || math.IsInf(min, 0) || min < 0 {
		return errors.Newf(errors.CodeInvalidThreshold, "threshold must be a finite non-negative number, got %v", min)
	}
	return nil
}

//Personal.AI order the ending
