package cmd

import (
	"fmt"
	"os"

	"github.com/calaveras/discinstall/internal/mojopatch"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive.mojopatch>",
	Short: "List the contents of a mojopatch archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer f.Close()

		a, err := mojopatch.Open(f)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}

		info("%s", args[0])
		info("  product:  %s (%s)", a.Product, a.Identifier)
		info("  version:  %s → %s", a.Version, a.NewVersion)
		info("")
		for _, rec := range a.Records() {
			if rec.Op == mojopatch.OpDone {
				continue
			}
			info("  %s", rec)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
