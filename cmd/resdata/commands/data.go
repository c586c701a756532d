package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dataCmd)
}

var dataCmd = &cobra.Command{
	Use:   "data [segment...]",
	Short: "Print the path to an input file under data_root",
	Long: `Print the absolute path formed by joining the segments onto data_root.

Nothing is created or checked beyond data_root itself, so the file
does not need to exist. Without segments, data_root is printed.`,
	Example: `  # Path to an input file
  resdata data survey 2024 responses.csv

  # Use it in a script
  head "$(resdata data survey 2024 responses.csv)"

  See Also: resdata output, resdata pick`,
	RunE: runData,
}

func runData(cmd *cobra.Command, args []string) error {
	r, err := newResolver(cmd)
	if err != nil {
		return err
	}
	p, err := r.DataPath(args...)
	if err != nil {
		return exitError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), p)
	return nil
}
