package cli

import (
	"fmt"
	"os"

	"github.com/dshills/tribunal/internal/rubric"
	"github.com/spf13/cobra"
)

var rubricCmd = &cobra.Command{
	Use:   "rubric",
	Short: "Inspect and validate audit rubrics",
}

var rubricShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective rubric as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		rub, err := rubric.Load(flagRubric)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}
		data, err := rub.Marshal()
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, string(data))
		return nil
	},
}

var rubricValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a rubric file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rub, err := rubric.Load(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}
		fmt.Fprintf(os.Stdout, "OK: %d dimensions, tie-breaker %q\n",
			len(rub.Dimensions), rub.TieBreakerID())
		return nil
	},
}

func init() {
	rubricCmd.AddCommand(rubricShowCmd)
	rubricCmd.AddCommand(rubricValidateCmd)
	rubricShowCmd.Flags().StringVar(&flagRubric, "rubric", "", "Rubric file path (default: built-in)")
}
