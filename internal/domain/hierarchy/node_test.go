package hierarchy

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CohortMap/pkg/errors"
)

func TestCategory_TextRoundTrip(t *testing.T) {
	for _, c := range Categories() {
		text, err := c.MarshalText()
		require.NoError(t, err)

		var back Category
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, c, back)
	}
}

func TestCategory_RejectsUnknown(t *testing.T) {
	var c Category
	assert.Error(t, c.UnmarshalText([]byte("Tech lead")))
	assert.Error(t, json.Unmarshal([]byte(`"Mentor"`), &c))

	_, err := Category(0).MarshalText()
	assert.Error(t, err)
	assert.False(t, Category(9).Valid())
	assert.Equal(t, "Category(9)", Category(9).String())
}

func TestCategory_Tiers(t *testing.T) {
	assert.True(t, CategoryProgramLead.IsAggregator())
	assert.True(t, CategoryAICoach.IsAggregator())
	assert.False(t, CategoryTechLead.IsAggregator())
	assert.True(t, CategoryAIIntern.IsLeaf())
	assert.False(t, CategoryCohortOwner.IsLeaf())
}

func TestNode_Kinds(t *testing.T) {
	table := sampleTable(t)

	unassigned, _ := table.Lookup("Tech Lead (Unassigned)")
	assert.True(t, unassigned.IsUnassigned())
	assert.False(t, unassigned.IsDataLeaf())

	lead, _ := table.Lookup("Alpha (Tech Lead)")
	assert.True(t, lead.IsDataLeaf())
	assert.False(t, lead.IsUnassigned())

	root, ok := table.Root()
	require.True(t, ok)
	assert.Equal(t, "Program Lead", root.Label)
	assert.True(t, root.IsSynthetic())
}

func TestTable_Regions(t *testing.T) {
	assert.Equal(t, []string{"Goa", "Kerala", "Telangana"}, sampleTable(t).Regions())
	assert.Empty(t, Table{}.Regions())
}

func TestTable_Validate(t *testing.T) {
	base := func() Table {
		return Table{
			{Label: "R", Category: CategoryProgramLead, Region: RegionNA},
			{Label: "C", Parent: "R", Category: CategoryCohortOwner, Region: RegionNA},
			{Label: "L", Parent: "C", Weight: 3, Category: CategoryTechLead, Institution: "x"},
		}
	}
	require.NoError(t, base().Validate())
	require.NoError(t, Table{}.Validate())

	cases := map[string]func(Table) Table{
		"two roots":    func(t Table) Table { t[1].Parent = ""; return t },
		"no root":      func(t Table) Table { t[0].Parent = "L"; return t },
		"duplicate":    func(t Table) Table { t[2].Label = "C"; return t },
		"dangling":     func(t Table) Table { t[2].Parent = "missing"; return t },
		"negative":     func(t Table) Table { t[2].Weight = -1; return t },
		"nan":          func(t Table) Table { t[2].Weight = math.NaN(); return t },
		"bad category": func(t Table) Table { t[2].Category = 0; return t },
		"empty label":  func(t Table) Table { t[2].Label = ""; return t },
		"cycle": func(t Table) Table {
			return append(t, Node{Label: "X", Parent: "Y", Category: CategoryAICoach}, Node{Label: "Y", Parent: "X", Category: CategoryAICoach})
		},
	}
	for name, mutate := range cases {
		err := mutate(base()).Validate()
		assert.True(t, errors.IsCode(err, errors.CodeInvalidTree), name)
	}
}

func TestCoerceWeight(t *testing.T) {
	assert.Equal(t, 42.0, CoerceWeight("42"))
	assert.Equal(t, 1000.0, CoerceWeight("1e3"))
	assert.Equal(t, 0.0, CoerceWeight("1,234"))
	assert.Equal(t, 0.0, CoerceWeight("-inf"))
	assert.Equal(t, 0.0, CoerceWeight(""))
}

func TestRegionHelpers(t *testing.T) {
	assert.True(t, IsAllRegions(""))
	assert.True(t, IsAllRegions("All"))
	assert.True(t, IsAllRegions("All States"))
	assert.False(t, IsAllRegions("Kerala"))
	assert.Equal(t, "All States", RegionTitle("All"))
	assert.Equal(t, "Goa", RegionTitle("Goa"))
	assert.Equal(t, RegionNA, NormalizeRegion("   "))
	assert.Equal(t, "Goa", NormalizeRegion(" Goa "))
}

func TestAddWeights(t *testing.T) {
	assert.Equal(t, 3.5, AddWeights(1, 2.5))
	assert.Equal(t, math.MaxFloat64, AddWeights(math.MaxFloat64, math.MaxFloat64))
	assert.False(t, math.IsInf(AddWeights(1e308, 1e308), 0))
}

//Personal.AI order the ending
