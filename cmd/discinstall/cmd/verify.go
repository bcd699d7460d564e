package cmd

import (
	"fmt"

	"github.com/calaveras/discinstall/internal/engine"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the installed tree against the manifest",
	Long: `Verifies every manifest entry against the target directory without
writing anything. Exit 0 if all entries verify; exit non-zero otherwise.
With --enforce-checksum, declared md5 digests must match as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}

		v := &engine.Verifier{Target: targetDir, EnforceChecksum: enforceChecksum}
		results := v.Verify(m)

		var failed int
		for _, res := range results {
			if res.Success {
				detail("✓ %-40s  %s", res.Path, res.Message)
			} else {
				failed++
				info("  ✗ %-40s  %s", res.Path, res.Message)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d entries failed verification", failed, len(results))
		}
		info("All %d entries verified.", len(results))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
