package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CohortMap/internal/testutil"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errb bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errb.String(), err
}

// sourceFlags writes the fixture tables to a temp dir and returns the flags
// pointing at them.
func sourceFlags(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	interns := filepath.Join(dir, "AIInterns.csv")
	leads := filepath.Join(dir, "TechLeads.csv")
	require.NoError(t, os.WriteFile(interns, []byte(testutil.InternsCSV), 0o600))
	require.NoError(t, os.WriteFile(leads, []byte(testutil.LeadsCSV), 0o600))
	return []string{"--interns", interns, "--leads", leads, "--no-color"}
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "cohortmap", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"build", "view", "regions", "top", "stats", "sort", "serve"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}

	for _, flag := range []string{"config", "interns", "leads", "output", "verbose", "no-color", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag %q", flag)
	}
	assert.Equal(t, OutputTable, cmd.PersistentFlags().Lookup("output").DefValue)
}

func TestRoot_InvalidOutputFormat(t *testing.T) {
	_, _, err := execute(t, append(sourceFlags(t), "-o", "yaml", "regions")...)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestRoot_MissingSources(t *testing.T) {
	_, _, err := execute(t, "regions")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestRoot_MissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "regions")
	assert.Error(t, err)
}

func TestGetCLIContext_WithoutPreRun(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetContext(context.Background())
	_, err := GetCLIContext(cmd)
	assert.Error(t, err)
}

func TestPrintError_ShowsGuidance(t *testing.T) {
	cmd := NewRootCommand()
	var errb bytes.Buffer
	cmd.SetErr(&errb)

	PrintError(cmd, errors.MissingColumn("TechLeads.csv", "State"))
	assert.Contains(t, errb.String(), "Error:")
	assert.Contains(t, errb.String(), errors.GuidanceForCode(errors.CodeMissingColumn))
}

//Personal.AI order the ending
