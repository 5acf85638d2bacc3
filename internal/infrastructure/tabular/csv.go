// Package tabular reads the registration CSV files into hierarchy inputs and
// writes hierarchy tables and rankings back out as CSV.
package tabular

import (
	"bytes"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/CohortMap/internal/domain/hierarchy"
	"github.com/turtacn/CohortMap/pkg/errors"
)

const utf8BOM = "\ufeff"

// Header of exported hierarchy tables.
var TableHeader = []string{"Label", "Parent", "TotalRegistrations", "Level", "StateInfo"}

// Header of region listings.
var RegionsHeader = []string{"State"}

// Header of exported rankings.
var RankingHeader = []string{"Rank", "College Name", "State", "Total Registrations"}

// Summary describes one parsed file for upload feedback.
type Summary struct {
	Source             string   `json:"source"`
	Rows               int      `json:"rows"`
	Columns            []string `json:"columns"`
	TotalRegistrations float64  `json:"total_registrations"`
	HasRegion          bool     `json:"has_region"`
}

// Summarize computes the upload summary of an input.
func Summarize(in hierarchy.Input) Summary {
	s := Summary{
		Source:    in.Source,
		Rows:      len(in.Records),
		Columns:   append([]string(nil), in.Columns...),
		HasRegion: in.HasColumn(hierarchy.ColumnRegion),
	}
	for _, r := range in.Records {
		s.TotalRegistrations += hierarchy.CoerceWeight(r.Registrations)
	}
	return s
}

// ReadInput parses CSV from r.  The header row is required; column names are
// matched exactly after removing a UTF-8 byte order mark.  Missing required
// columns are not reported here; the builder does that so both files are
// checked together.  Cell text is normalised to NFC so institution names
// typed with different Unicode compositions still match.
func ReadInput(r io.Reader, source string) (hierarchy.Input, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return hierarchy.Input{}, errors.UnparsableInput(source, err).WithDetail(source + ": no header row")
	}
	if err != nil {
		return hierarchy.Input{}, errors.UnparsableInput(source, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	if !validUTF8(header) {
		return hierarchy.Input{}, errors.UnparsableInput(source, nil).WithDetail(source + ": not UTF-8 text")
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = norm.NFC.String(h)
	}

	pos := func(name string) int {
		for i, c := range columns {
			if c == name {
				return i
			}
		}
		return -1
	}
	nameIdx := pos(hierarchy.ColumnInstitution)
	countIdx := pos(hierarchy.ColumnRegistrations)
	regionIdx := pos(hierarchy.ColumnRegion)

	in := hierarchy.Input{Source: source, Columns: columns}
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return hierarchy.Input{}, errors.UnparsableInput(source, err)
		}
		if blank(fields) {
			continue
		}
		if !validUTF8(fields) {
			return hierarchy.Input{}, errors.UnparsableInput(source, nil).WithDetail(source + ": not UTF-8 text")
		}
		in.Records = append(in.Records, hierarchy.RawRecord{
			Institution:   norm.NFC.String(cell(fields, nameIdx)),
			Registrations: cell(fields, countIdx),
			Region:        norm.NFC.String(cell(fields, regionIdx)),
		})
	}
	return in, nil
}

// ParseInput is ReadInput over an in-memory payload.
func ParseInput(data []byte, source string) (hierarchy.Input, error) {
	return ReadInput(bytes.NewReader(data), source)
}

func cell(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

func validUTF8(fields []string) bool {
	for _, f := range fields {
		if !utf8.ValidString(f) {
			return false
		}
	}
	return true
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ─────────────────────────────────────────────────────────────────────────────
// Writers
// ─────────────────────────────────────────────────────────────────────────────

// WriteTable writes t with the Label, Parent, TotalRegistrations, Level and
// StateInfo columns.  Weights are written as stored, without display nudging.
func WriteTable(w io.Writer, t hierarchy.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TableHeader); err != nil {
		return err
	}
	for _, n := range t {
		if err := cw.Write([]string{n.Label, n.Parent, FormatNumber(n.Weight), n.Category.String(), n.Region}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRegions writes one region per row under RegionsHeader.
func WriteRegions(w io.Writer, regions []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RegionsHeader); err != nil {
		return err
	}
	for _, r := range regions {
		if err := cw.Write([]string{r}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRanking writes entities with a 1-based rank column.
func WriteRanking(w io.Writer, entities []hierarchy.Entity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RankingHeader); err != nil {
		return err
	}
	for i, e := range entities {
		if err := cw.Write([]string{strconv.Itoa(i + 1), e.Name, e.Region, FormatNumber(e.Total)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SortByInstitution reads a CSV from r and writes it to w with data rows
// ordered by CollegeName ascending.  Rows with equal names keep their order.
// Other columns pass through untouched.
func SortByInstitution(r io.Reader, w io.Writer, source string) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return 0, errors.UnparsableInput(source, err)
	}
	if len(rows) == 0 {
		return 0, errors.UnparsableInput(source, io.EOF).WithDetail(source + ": no header row")
	}
	header := rows[0]
	idx := -1
	for i, h := range header {
		if strings.TrimPrefix(h, utf8BOM) == hierarchy.ColumnInstitution {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, errors.MissingColumn(source, hierarchy.ColumnInstitution)
	}
	data := rows[1:]
	sort.SliceStable(data, func(i, j int) bool { return cell(data[i], idx) < cell(data[j], idx) })

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return 0, err
	}
	return len(data), nil
}

// FormatNumber renders a weight without a trailing ".0" for whole numbers.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

//Personal.AI order the ending
