package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var locateSize int64

var locateCmd = &cobra.Command{
	Use:   "locate <name>",
	Short: "Show which source would supply a logical file",
	Long: `Enumerates every candidate source for a logical file name across the
configured volumes, in the priority order the installer uses, and reports
which one would win. Useful for checking that the right disc is mounted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		it := newResolver().Candidates(name, locateSize, "")

		var winner string
		n := 0
		for {
			c, ok := it.Next()
			if !ok {
				break
			}
			n++
			rc, err := c.Open()
			if err != nil {
				info("  ✗ %s — %s", c, err)
				continue
			}
			size, err := io.Copy(io.Discard, rc)
			rc.Close()
			if err != nil {
				info("  ✗ %s — %s", c, err)
				continue
			}
			if winner == "" {
				winner = c.String()
				info("  ✓ %s (%d bytes) ← selected", c, size)
			} else {
				info("  · %s (%d bytes)", c, size)
			}
		}

		if n == 0 {
			return fmt.Errorf("no candidate sources for '%s' on the configured volumes", name)
		}
		if winner == "" {
			return fmt.Errorf("all %d candidates for '%s' failed to open", n, name)
		}
		return nil
	},
}

func init() {
	locateCmd.Flags().Int64Var(&locateSize, "size", -1, "expected byte size (filters plain-file candidates)")
	rootCmd.AddCommand(locateCmd)
}
