package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(outputCmd)
}

var outputCmd = &cobra.Command{
	Use:   "output [segment...]",
	Short: "Print the path to an output file under output_root",
	Long: `Print the absolute path formed by joining the segments onto output_root,
creating the parent directory of that path if it does not exist.

The last segment is treated as a file name and is not created. Without
segments, output_root itself is created and printed.`,
	Example: `  # Creates <output_root>/run1 and prints <output_root>/run1/summary.csv
  resdata output run1 summary.csv

  # Write straight to it
  python analyse.py > "$(resdata output run1 summary.csv)"

  See Also: resdata data`,
	RunE: runOutput,
}

func runOutput(cmd *cobra.Command, args []string) error {
	r, err := newResolver(cmd)
	if err != nil {
		return err
	}
	p, err := r.OutputPath(args...)
	if err != nil {
		return exitError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), p)
	return nil
}
