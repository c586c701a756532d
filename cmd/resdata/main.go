// Package main is the entry point for the resdata CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/resdata/cmd/resdata/commands"
	"github.com/thoreinstein/resdata/internal/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := commands.Execute()
	if err == nil {
		return errors.ExitSuccess
	}

	var exitErr *errors.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return errors.ExitUser
	}

	// A nil Err means the command already reported (doctor, quiet mode).
	if exitErr.Err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
		if exitErr.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", exitErr.Suggestion)
		}
	}
	return exitErr.Code
}
