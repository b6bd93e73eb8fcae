package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/errors"
	mio "github.com/matzehuels/masonry/pkg/io"
)

// sampleCommand creates the sample command for generating placeholder items.
func (c *CLI) sampleCommand() *cobra.Command {
	var (
		n      int
		start  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write deterministic placeholder items",
		Long: `Write deterministic placeholder items as an items file.

Heights vary between 120 and 420 pixels; every third item has an aspect
ratio instead and scales with the column width. The same flags always
produce the same items.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateNonNegative("count", float64(n)); err != nil {
				return err
			}
			if err := errors.ValidateNonNegative("start", float64(start)); err != nil {
				return err
			}
			if output != stdinPath {
				if err := validateOutput(output); err != nil {
					return err
				}
			}
			items := mio.Sample(start, n)
			if output == "" || output == stdinPath {
				return mio.WriteJSON(items, cmd.OutOrStdout())
			}
			if err := mio.ExportJSON(items, output); err != nil {
				return err
			}
			printSuccess("Wrote %d items", len(items))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", 50, "number of items")
	cmd.Flags().IntVar(&start, "start", 0, "index of the first item")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}
