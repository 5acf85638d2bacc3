package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/CohortMap/internal/domain/hierarchy"
	"github.com/turtacn/CohortMap/internal/infrastructure/tabular"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// printJSON outputs data as indented JSON to stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// renderTable writes rows as a bordered ASCII table.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}

// PrintError writes a formatted error message to stderr, with guidance for
// application errors.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
	if code := errors.GetCode(err); code != errors.CodeUnknown {
		if hint := errors.GuidanceForCode(code); hint != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", hint)
		}
	}
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("OK:"), msg)
}

// colorBand colours s by the ranking band of total.
func colorBand(total float64, s string) string {
	switch hierarchy.BandFor(total) {
	case hierarchy.BandHigh:
		return color.GreenString(s)
	case hierarchy.BandMedium:
		return color.YellowString(s)
	default:
		return s
	}
}

func num(v float64) string { return tabular.FormatNumber(v) }

// tableRows projects hierarchy nodes for table output.
func tableRows(t hierarchy.Table) [][]string {
	rows := make([][]string, 0, len(t))
	for _, n := range t {
		weight := num(n.Weight)
		if n.Category.IsLeaf() {
			weight = colorBand(n.Weight, weight)
		}
		rows = append(rows, []string{n.Label, n.Parent, weight, n.Category.String(), n.Region})
	}
	return rows
}

var tableHeaders = []string{"Label", "Parent", "Weight", "Level", "Region"}

//Personal.AI order the ending
