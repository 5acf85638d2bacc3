package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/CohortMap/internal/application/orgchart"
	"github.com/turtacn/CohortMap/internal/infrastructure/tabular"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// NewTopCmd creates the top command.
func NewTopCmd() *cobra.Command {
	var (
		in     orgchart.TopInput
		min    float64
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank institutions by combined registrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min") {
				in.Min = &min
			}
			return runTop(cmd, &in, outDir)
		},
	}
	cmd.Flags().StringVar(&in.Region, "region", "", "state to rank (default: all states)")
	cmd.Flags().Float64Var(&min, "min", 0, "minimum combined registrations (default: configured threshold)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "also write the ranking CSV into this directory")
	return cmd
}

func runTop(cmd *cobra.Command, in *orgchart.TopInput, outDir string) error {
	run, err := openLocal(cmd)
	if err != nil {
		return err
	}
	defer run.close()

	res, err := run.svc.TopEntities(run.ctx, in)
	if err != nil {
		return err
	}

	if outDir != "" {
		art, err := run.svc.ExportTopEntities(run.ctx, &orgchart.ExportInput{Region: in.Region, Min: &res.Threshold})
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, art.Filename)
		if err := os.WriteFile(path, art.Data, 0o644); err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageError, "failed to write ranking csv").WithDetail(path)
		}
		defer PrintSuccess(cmd, "ranking written to "+path)
	}

	w := cmd.OutOrStdout()
	switch run.cli.OutputFormat {
	case OutputJSON:
		return printJSON(cmd, res)
	case OutputCSV:
		return tabular.WriteRanking(w, res.Entities)
	}

	if len(res.Entities) == 0 {
		fmt.Fprintf(w, "No institutions in %s with at least %s registrations\n", res.Region, num(res.Threshold))
		return nil
	}
	rows := make([][]string, 0, len(res.Entities))
	for i, e := range res.Entities {
		rows = append(rows, []string{strconv.Itoa(i + 1), e.Name, e.Region, colorBand(e.Total, num(e.Total)), string(e.Band)})
	}
	renderTable(w, []string{"Rank", "Institution", "State", "Registrations", "Band"}, rows)
	fmt.Fprintf(w, "%d institutions in %s with at least %s registrations\n", len(res.Entities), res.Region, num(res.Threshold))
	return nil
}

//Personal.AI order the ending
