package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/CohortMap/internal/application/orgchart"
	"github.com/turtacn/CohortMap/internal/infrastructure/tabular"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the hierarchy and summarise both input files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "also write the hierarchy CSV to this path")
	return cmd
}

func runBuild(cmd *cobra.Command, out string) error {
	run, err := openLocal(cmd)
	if err != nil {
		return err
	}
	defer run.close()

	if out != "" || run.cli.OutputFormat == OutputCSV {
		art, err := run.svc.ExportHierarchy(run.ctx, &orgchart.ExportInput{})
		if err != nil {
			return err
		}
		if out != "" {
			if err := os.WriteFile(out, art.Data, 0o644); err != nil {
				return errors.Wrap(err, errors.ErrCodeStorageError, "failed to write hierarchy csv").WithDetail(out)
			}
		}
		if run.cli.OutputFormat == OutputCSV {
			_, err := cmd.OutOrStdout().Write(art.Data)
			return err
		}
	}

	res := run.loaded
	if run.cli.OutputFormat == OutputJSON {
		return printJSON(cmd, res)
	}

	w := cmd.OutOrStdout()
	rows := make([][]string, 0, 2)
	for _, s := range []tabular.Summary{res.Interns, res.Leads} {
		rows = append(rows, []string{s.Source, strconv.Itoa(s.Rows), strings.Join(s.Columns, ", "), num(s.TotalRegistrations)})
	}
	renderTable(w, []string{"File", "Rows", "Columns", "Registrations"}, rows)

	r := res.Report
	fmt.Fprintf(w, "AI Interns: %d  Tech Leads: %d  Unassigned interns: %d  Skipped rows: %d\n",
		r.InternNodes, r.LeadNodes, r.UnassignedInterns, r.SkippedRows)
	if len(r.Duplicates) > 0 {
		fmt.Fprintf(w, "%s %s (policy %s)\n", color.YellowString("Duplicates:"), strings.Join(r.Duplicates, ", "), r.Policy)
	}
	fmt.Fprintf(w, "Regions: %s\n", strings.Join(res.Regions, ", "))
	if out != "" {
		PrintSuccess(cmd, "hierarchy written to "+out)
	}
	return nil
}

// NewViewCmd creates the view command.
func NewViewCmd() *cobra.Command {
	var (
		in        orgchart.ViewInput
		min       float64
		showChart bool
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the hierarchy filtered by region, threshold or institution",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min") {
				in.Min = &min
			}
			return runView(cmd, &in, showChart)
		},
	}
	cmd.Flags().StringVar(&in.Region, "region", "", "state to show (default: all states)")
	cmd.Flags().Float64Var(&min, "min", 0, "keep institutions with at least this many registrations")
	cmd.Flags().StringVar(&in.Focus, "focus", "", "institution whose branch to keep")
	cmd.Flags().StringVar(&in.Highlight, "highlight", "", "institution to highlight in the chart")
	cmd.Flags().BoolVar(&showChart, "chart", false, "print the chart spec as JSON instead of the table")
	return cmd
}

func runView(cmd *cobra.Command, in *orgchart.ViewInput, showChart bool) error {
	run, err := openLocal(cmd)
	if err != nil {
		return err
	}
	defer run.close()

	res, err := run.svc.View(run.ctx, in)
	if err != nil {
		return err
	}
	if showChart {
		return printJSON(cmd, res.Chart)
	}

	w := cmd.OutOrStdout()
	switch run.cli.OutputFormat {
	case OutputJSON:
		return printJSON(cmd, res)
	case OutputCSV:
		return tabular.WriteTable(w, res.Table)
	}
	if res.NoData {
		fmt.Fprintln(w, color.YellowString(res.Message))
		return nil
	}
	renderTable(w, tableHeaders, tableRows(res.Table))
	fmt.Fprintf(w, "%d nodes in %s\n", len(res.Table), res.Region)
	return nil
}

// NewRegionsCmd creates the regions command.
func NewRegionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the states present in the data",
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := openLocal(cmd)
			if err != nil {
				return err
			}
			defer run.close()

			regions, err := run.svc.Regions(run.ctx, "")
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch run.cli.OutputFormat {
			case OutputJSON:
				return printJSON(cmd, map[string][]string{"regions": regions})
			case OutputCSV:
				return tabular.WriteRegions(w, regions)
			}
			rows := make([][]string, 0, len(regions))
			for _, r := range regions {
				rows = append(rows, []string{r})
			}
			renderTable(w, []string{"State"}, rows)
			return nil
		},
	}
}

//Personal.AI order the ending
