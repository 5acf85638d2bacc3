// Package filesource loads the default dataset from two CSV files on disk
// and reloads it when either file changes.
package filesource

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/CohortMap/internal/application/orgchart"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// Source reads the intern and lead tables from fixed paths.
type Source struct {
	InternsPath string
	LeadsPath   string
}

var _ orgchart.Source = (*Source)(nil)

func New(internsPath, leadsPath string) *Source {
	return &Source{InternsPath: internsPath, LeadsPath: leadsPath}
}

// Load reads both files.  Each upload is named after its file's base name.
func (s *Source) Load(ctx context.Context) (interns, leads orgchart.Upload, err error) {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		interns, err = readUpload(s.InternsPath)
		return err
	})
	g.Go(func() error {
		var err error
		leads, err = readUpload(s.LeadsPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return orgchart.Upload{}, orgchart.Upload{}, err
	}
	return interns, leads, nil
}

// Paths returns the absolute paths of both files.
func (s *Source) Paths() ([]string, error) {
	out := make([]string, 0, 2)
	for _, p := range []string{s.InternsPath, s.LeadsPath} {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid source path "+p)
		}
		out = append(out, abs)
	}
	return out, nil
}

func readUpload(path string) (orgchart.Upload, error) {
	if path == "" {
		return orgchart.Upload{}, errors.New(errors.ErrCodeValidation, "source path is empty")
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return orgchart.Upload{}, errors.Wrap(err, errors.ErrCodeNotFound, "source file not found: "+path)
	}
	if err != nil {
		return orgchart.Upload{}, errors.Wrap(err, errors.ErrCodeStorageError, "failed to read "+path)
	}
	return orgchart.Upload{Name: filepath.Base(path), Data: data}, nil
}

//Personal.AI order the ending
