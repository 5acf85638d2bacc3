package hierarchy

import (
	"fmt"
	"strings"

	"github.com/turtacn/CohortMap/pkg/errors"
)

// Column names of the input tables.  They are matched exactly.
const (
	ColumnInstitution   = "CollegeName"
	ColumnRegistrations = "TotalRegistrations"
	ColumnRegion        = "State"
)

// RequiredColumns lists the columns every input table must carry.
var RequiredColumns = []string{ColumnInstitution, ColumnRegistrations}

// RawRecord is one input row as read from a table.  Registrations keeps the
// raw cell text; it is coerced when the hierarchy is built.
type RawRecord struct {
	Institution   string `json:"institution"`
	Registrations string `json:"registrations"`
	Region        string `json:"region"`
}

// Input is one parsed input table.
type Input struct {
	// Source names the table in error messages, usually the file name.
	Source  string      `json:"source"`
	Columns []string    `json:"columns"`
	Records []RawRecord `json:"records"`
}

// HasColumn reports whether the header contains name.
func (in Input) HasColumn(name string) bool {
	for _, c := range in.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the required columns absent from the header.
func (in Input) MissingColumns() []string {
	var missing []string
	for _, c := range RequiredColumns {
		if !in.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// ─────────────────────────────────────────────────────────────────────────────
// Duplicate handling
// ─────────────────────────────────────────────────────────────────────────────

// DuplicatePolicy decides what happens when an institution appears more than
// once in the same table.  Labels must stay unique, so every policy yields at
// most one node per institution and role.
type DuplicatePolicy int

const (
	// DuplicateSum merges duplicate rows and adds their registrations.
	DuplicateSum DuplicatePolicy = iota
	// DuplicateLastWins keeps the values of the last row.
	DuplicateLastWins
	// DuplicateFirstWins keeps the values of the first row.
	DuplicateFirstWins
	// DuplicateReject fails the build.
	DuplicateReject
)

var policyNames = map[DuplicatePolicy]string{
	DuplicateSum:       "sum",
	DuplicateLastWins:  "last",
	DuplicateFirstWins: "first",
	DuplicateReject:    "reject",
}

func (p DuplicatePolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p DuplicatePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *DuplicatePolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseDuplicatePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseDuplicatePolicy maps sum, last, first or reject to a policy.  The empty
// string selects DuplicateSum.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	if s == "" {
		return DuplicateSum, nil
	}
	for p, name := range policyNames {
		if strings.EqualFold(name, s) {
			return p, nil
		}
	}
	return DuplicateSum, errors.New(errors.CodeValidation, "unknown duplicate policy").WithDetail(s)
}

// ─────────────────────────────────────────────────────────────────────────────
// Builder
// ─────────────────────────────────────────────────────────────────────────────

// Report summarises what a build did with its inputs.
type Report struct {
	InternRows        int             `json:"intern_rows"`
	LeadRows          int             `json:"lead_rows"`
	InternNodes       int             `json:"intern_nodes"`
	LeadNodes         int             `json:"lead_nodes"`
	SkippedRows       int             `json:"skipped_rows"`
	Duplicates        []string        `json:"duplicates,omitempty"`
	UnassignedInterns int             `json:"unassigned_interns"`
	Policy            DuplicatePolicy `json:"policy"`
}

// Result is the output of a build.
type Result struct {
	Table  Table  `json:"table"`
	Report Report `json:"report"`
}

// Option configures a Builder.
type Option func(*Builder)

// WithStructure replaces the default structure.
func WithStructure(s Structure) Option {
	return func(b *Builder) { b.structure = s }
}

// WithDuplicatePolicy sets how duplicate institutions are handled.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(b *Builder) { b.policy = p }
}

// Builder turns the two input tables into a hierarchy.  A Builder holds no
// mutable state and is safe for concurrent use.
type Builder struct {
	structure Structure
	policy    DuplicatePolicy
}

// NewBuilder returns a Builder with the default structure and DuplicateSum.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{structure: DefaultStructure(), policy: DuplicateSum}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Structure returns the structure the builder uses.
func (b *Builder) Structure() Structure { return b.structure }

// Policy returns the duplicate policy the builder uses.
func (b *Builder) Policy() DuplicatePolicy { return b.policy }

// Build produces the full hierarchy: root, tier-2, tier-1, leads, interns and
// the unassigned node, in that order.  It fails with CodeMissingColumn when
// either input lacks CollegeName or TotalRegistrations.
func (b *Builder) Build(interns, leads Input) (*Result, error) {
	if err := b.structure.Validate(); err != nil {
		return nil, err
	}
	if err := checkColumns(interns, leads); err != nil {
		return nil, err
	}

	leadRows, leadSkipped, leadDups, err := collapse(leads, b.policy)
	if err != nil {
		return nil, err
	}
	internRows, internSkipped, internDups, err := collapse(interns, b.policy)
	if err != nil {
		return nil, err
	}

	s := b.structure
	table := make(Table, 0, len(leadRows)+len(internRows)+4)
	table = append(table, s.chain()...)

	leadByKey := make(map[groupKey]string, len(leadRows))
	leadByName := make(map[string]string, len(leadRows))
	for _, r := range leadRows {
		label := s.LeadLabel(r.display)
		leadByKey[groupKey{r.name, r.region}] = label
		if _, ok := leadByName[r.name]; !ok {
			leadByName[r.name] = label
		}
		table = append(table, Node{
			Label:       label,
			Parent:      s.AICoachLabel,
			Weight:      r.weight,
			Category:    CategoryTechLead,
			Region:      r.region,
			Institution: r.name,
		})
	}

	unassigned := 0
	for _, r := range internRows {
		parent, ok := leadByKey[groupKey{r.name, r.region}]
		if !ok {
			parent, ok = leadByName[r.name]
		}
		if !ok {
			parent = s.UnassignedLabel
			unassigned++
		}
		table = append(table, Node{
			Label:       s.InternLabel(r.display),
			Parent:      parent,
			Weight:      r.weight,
			Category:    CategoryAIIntern,
			Region:      r.region,
			Institution: r.name,
		})
	}

	table = append(table, s.unassigned())

	if err := table.Validate(); err != nil {
		return nil, err
	}

	return &Result{
		Table: table,
		Report: Report{
			InternRows:        len(interns.Records),
			LeadRows:          len(leads.Records),
			InternNodes:       len(internRows),
			LeadNodes:         len(leadRows),
			SkippedRows:       leadSkipped + internSkipped,
			Duplicates:        append(leadDups, internDups...),
			UnassignedInterns: unassigned,
			Policy:            b.policy,
		},
	}, nil
}

// Build builds with the default structure and duplicate policy.
func Build(interns, leads Input) (Table, error) {
	res, err := NewBuilder().Build(interns, leads)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

func checkColumns(inputs ...Input) error {
	var parts []string
	for _, in := range inputs {
		if missing := in.MissingColumns(); len(missing) > 0 {
			parts = append(parts, fmt.Sprintf("%s missing %s", sourceName(in), strings.Join(missing, ", ")))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return errors.New(errors.CodeMissingColumn, "required column missing").WithDetail(strings.Join(parts, "; "))
}

func sourceName(in Input) string {
	if in.Source == "" {
		return "input"
	}
	return in.Source
}

type row struct {
	name   string
	weight float64
	region string
	// display is name, qualified with the region when the name occurs in
	// more than one region of the table.
	display string
}

// collapse coerces the records of one table and applies the duplicate policy.
// Duplicates are rows sharing both institution and region; the same name in
// different regions stays separate.  Rows keep the position of the first
// occurrence of their (institution, region) pair.
func collapse(in Input, policy DuplicatePolicy) (rows []row, skipped int, dups []string, err error) {
	pos := make(map[groupKey]int, len(in.Records))
	regions := make(map[string]map[string]struct{})
	var dupKeys []groupKey
	reported := make(map[groupKey]bool)
	for _, rec := range in.Records {
		name := strings.TrimSpace(rec.Institution)
		if name == "" {
			skipped++
			continue
		}
		r := row{name: name, weight: CoerceWeight(rec.Registrations), region: NormalizeRegion(rec.Region)}
		key := groupKey{name, r.region}
		if regions[name] == nil {
			regions[name] = make(map[string]struct{})
		}
		regions[name][r.region] = struct{}{}

		i, seen := pos[key]
		if !seen {
			pos[key] = len(rows)
			rows = append(rows, r)
			continue
		}

		if !reported[key] {
			reported[key] = true
			dupKeys = append(dupKeys, key)
		}
		switch policy {
		case DuplicateReject:
			return nil, 0, nil, errors.New(errors.CodeDuplicateInstitution, "duplicate institution in input").
				WithDetail(sourceName(in) + ": " + qualify(name, r.region, len(regions[name]) > 1))
		case DuplicateFirstWins:
		case DuplicateLastWins:
			rows[i] = r
		default:
			rows[i].weight = AddWeights(rows[i].weight, r.weight)
		}
	}

	for i := range rows {
		rows[i].display = qualify(rows[i].name, rows[i].region, len(regions[rows[i].name]) > 1)
	}
	for _, k := range dupKeys {
		dups = append(dups, sourceName(in)+": "+qualify(k.name, k.region, len(regions[k.name]) > 1))
	}
	return rows, skipped, dups, nil
}

// qualify appends the region to name when the name alone is ambiguous.
func qualify(name, region string, ambiguous bool) string {
	if !ambiguous {
		return name
	}
	return name + " [" + region + "]"
}

// NormalizeRegion trims a State cell and maps blanks to RegionNA.
func NormalizeRegion(raw string) string {
	r := strings.TrimSpace(raw)
	if r == "" {
		return RegionNA
	}
	return r
}

//Personal.AI order the ending
