package hierarchy

import (
	"strings"

	"github.com/turtacn/CohortMap/pkg/errors"
)

// DefaultEpsilon is the value zero weights are raised to for display so the
// renderer does not collapse their segments.
const DefaultEpsilon = 0.1

// HighlightKey is the color key of records matching the selected institution.
const HighlightKey = "Selected College"

// ChartTitle is the prefix of every chart title.
const ChartTitle = "AI Program Structure"

// Palette maps color keys (category names and HighlightKey) to hex colors.
type Palette map[string]string

// DefaultPalette returns the standard tier colors.
func DefaultPalette() Palette {
	return Palette{
		CategoryProgramLead.String(): "#D32F2F",
		CategoryCohortOwner.String(): "#F57C00",
		CategoryAICoach.String():     "#FBC02D",
		CategoryTechLead.String():    "#388E3C",
		CategoryAIIntern.String():    "#1976D2",
		HighlightKey:                 "#FF6B35",
	}
}

// ChartOptions selects how a table is projected for the renderer.
type ChartOptions struct {
	Region    string
	Highlight string
	Epsilon   float64
	Palette   Palette
}

// ChartRecord is one segment handed to the sunburst renderer.
type ChartRecord struct {
	Label       string  `json:"label"`
	Parent      string  `json:"parent"`
	Value       float64 `json:"value"`
	Level       string  `json:"level"`
	StateInfo   string  `json:"state_info"`
	ColorKey    string  `json:"color_key"`
	Color       string  `json:"color"`
	Highlighted bool    `json:"highlighted,omitempty"`
}

// ChartSpec is the complete renderer input.  When NoData is set, Records is
// empty, Code is HIER_003 and Message explains why.
type ChartSpec struct {
	Title   string        `json:"title"`
	NoData  bool          `json:"no_data"`
	Code    string        `json:"code,omitempty"`
	Message string        `json:"message,omitempty"`
	Records []ChartRecord `json:"records"`
	Palette Palette       `json:"palette"`
}

// Chart projects t into renderer records.  Zero weights are raised to the
// epsilon; the source table is left untouched.
func Chart(t Table, opts ChartOptions) ChartSpec {
	if opts.Epsilon <= 0 {
		opts.Epsilon = DefaultEpsilon
	}
	if opts.Palette == nil {
		opts.Palette = DefaultPalette()
	}

	region := RegionTitle(opts.Region)
	spec := ChartSpec{
		Title:   ChartTitle + " - " + region,
		Palette: opts.Palette,
		Records: []ChartRecord{},
	}
	if opts.Highlight != "" {
		spec.Title += " (Highlighting: " + opts.Highlight + ")"
	}
	if t.Empty() {
		spec.Title = ChartTitle + " - " + region
		spec.NoData = true
		spec.Code = string(errors.CodeNoDataForFilter)
		spec.Message = NoDataMessage(opts.Region)
		return spec
	}

	spec.Records = make([]ChartRecord, 0, len(t))
	for _, n := range t {
		rec := ChartRecord{
			Label:     n.Label,
			Parent:    n.Parent,
			Value:     n.Weight,
			Level:     n.Category.String(),
			StateInfo: n.Region,
			ColorKey:  n.Category.String(),
		}
		if rec.Value == 0 {
			rec.Value = opts.Epsilon
		}
		if opts.Highlight != "" && strings.Contains(n.Label, opts.Highlight) {
			rec.ColorKey = HighlightKey
			rec.Highlighted = true
		}
		rec.Color = opts.Palette[rec.ColorKey]
		spec.Records = append(spec.Records, rec)
	}
	return spec
}

// NoDataMessage is the placeholder text for an empty view.
func NoDataMessage(region string) string {
	return "No data available for " + RegionTitle(region)
}

//Personal.AI order the ending
