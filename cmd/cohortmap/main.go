// Command cohortmap is the CohortMap CLI.
package main

import (
	"os"

	"github.com/turtacn/CohortMap/internal/interfaces/cli"
)

func main() {
	// Execute prints the error itself.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
