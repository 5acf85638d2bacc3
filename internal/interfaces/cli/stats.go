package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/CohortMap/internal/application/orgchart"
	"github.com/turtacn/CohortMap/internal/infrastructure/tabular"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	var in orgchart.StatsInput
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise a state or one institution",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, &in)
		},
	}
	cmd.Flags().StringVar(&in.Region, "region", "", "state to summarise (default: all states)")
	cmd.Flags().StringVar(&in.Institution, "institution", "", "institution name (substring match)")
	return cmd
}

func runStats(cmd *cobra.Command, in *orgchart.StatsInput) error {
	run, err := openLocal(cmd)
	if err != nil {
		return err
	}
	defer run.close()

	res, err := run.svc.Statistics(run.ctx, in)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch run.cli.OutputFormat {
	case OutputJSON:
		return printJSON(cmd, res)
	case OutputCSV:
		return tabular.WriteTable(w, res.Preview)
	}

	rs := res.Region
	renderTable(w, []string{"State", "Institutions", "Registrations", "Tech Leads", "AI Interns"}, [][]string{{
		rs.Region, strconv.Itoa(rs.Institutions), num(rs.TotalRegistrations), strconv.Itoa(rs.TechLeads), strconv.Itoa(rs.AIInterns),
	}})

	if inst := res.Institution; inst != nil {
		if !inst.Matched {
			fmt.Fprintln(w, color.YellowString("No institution matching %q in %s", inst.Institution, inst.Region))
		} else {
			renderTable(w, []string{"Institution", "Registrations", "Tech Leads", "AI Interns"}, [][]string{{
				inst.Institution, num(inst.TotalRegistrations), strconv.Itoa(inst.TechLeads), strconv.Itoa(inst.AIInterns),
			}})
		}
	}

	levels := make([][]string, 0, len(res.Levels))
	for _, l := range res.Levels {
		levels = append(levels, []string{l.Level.String(), strconv.Itoa(l.Nodes), num(l.Total)})
	}
	renderTable(w, []string{"Level", "Nodes", "Registrations"}, levels)

	if len(res.Preview) > 0 {
		fmt.Fprintln(w, "Preview:")
		renderTable(w, tableHeaders, tableRows(res.Preview))
	}
	return nil
}

//Personal.AI order the ending
