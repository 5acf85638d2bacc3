package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/turtacn/CohortMap/internal/infrastructure/tabular"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// NewSortCmd creates the sort command.  It needs no loaded dataset.
func NewSortCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "sort <file.csv>",
		Short: "Sort a registration CSV by CollegeName",
		Long:  "Sort a registration CSV by CollegeName ascending.  The file is rewritten in\nplace unless --out names another path; \"-\" writes to stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd, args[0], out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output path (default: rewrite the input)")
	return cmd
}

func runSort(cmd *cobra.Command, in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeNotFound, "input file not found").WithDetail(in)
		}
		return errors.Wrap(err, errors.ErrCodeStorageError, "cannot open input").WithDetail(in)
	}
	var buf bytes.Buffer
	n, err := tabular.SortByInstitution(f, &buf, filepath.Base(in))
	f.Close()
	if err != nil {
		return err
	}

	if out == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if out == "" {
		out = in
	}
	// Write beside the target and rename so a failed write never truncates it.
	tmp, err := os.CreateTemp(filepath.Dir(out), ".cohortmap-sort-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "cannot create output").WithDetail(out)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeStorageError, "cannot write output").WithDetail(out)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "cannot write output").WithDetail(out)
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "cannot replace output").WithDetail(out)
	}
	PrintSuccess(cmd, fmt.Sprintf("sorted %d rows into %s", n, out))
	return nil
}

//Personal.AI order the ending
