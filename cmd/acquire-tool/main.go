package main

import (
	"errors"
	"fmt"
	"os"

	"acquire-tool/internal/app"
	"acquire-tool/internal/logging"
)

// main is the entry point for the acquire-tool application.
func main() {
	runner := app.NewAppRunner()

	err := runner.Run(os.Args[1:])
	if err != nil {
		// Usage-class errors get the help text printed before the error log.
		printUsage := errors.Is(err, app.ErrUsage) || errors.Is(err, app.ErrConfigNotFound) || errors.Is(err, app.ErrUnknownDataset)
		if printUsage {
			fmt.Fprintln(os.Stderr, "")
			runner.Usage(os.Stderr)
		}

		// Ensure the failure is visible even if the configured level filters errors.
		if logging.GetLevel() < logging.Error {
			logging.SetLevel(logging.Error)
		}
		logging.Logf(logging.Error, "Application execution failed: %v", err)

		os.Exit(1)
	}

	logging.Logf(logging.Info, "Acquisition completed successfully.")
}
