package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes are stable so CI pipelines can gate on them.
const (
	ExitSuccess      = 0
	ExitFindings     = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "tribunal",
	Short: "Forensic code audit tribunal",
	Long:  "Tribunal audits a repository against a rubric: probes collect forensic evidence, three reviewer personas deliberate, and a deterministic rule pipeline resolves their opinions into bounded scores.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(rubricCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print tribunal version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "tribunal version %s\n", version)
	},
}
