package main

import (
	"context"                    // Root context for every command
	"ledger_system/internal/cli" // Command tree
	"os"                         // Exit status

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main entry point for the ledger CLI
func main() {
	logrus.SetOutput(os.Stderr)                                     // Keep stdout for command output
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true}) // Same format as the server

	if err := cli.Execute(context.Background(), cli.DefaultOpener); err != nil {
		os.Exit(1) // Cobra has already printed the error
	}
}
