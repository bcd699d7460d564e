package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/calaveras/discinstall/internal/engine"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Verify and install every manifest entry",
	Long: `Walks the manifest in order. Entries already present and matching are
reported verified; missing files are copied from the best available source,
with an operator prompt and retry loop when no mounted volume can supply
them. Press Ctrl-C during a media wait to skip an optional file; anywhere
else an interrupt aborts the installation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}

		// Forward Ctrl-C to the engine. A buffered channel keeps a single
		// interrupt pending for the next state boundary or wait.
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt)
		defer signal.Stop(sigs)

		interrupts := make(chan struct{}, 1)
		go func() {
			for range sigs {
				select {
				case interrupts <- struct{}{}:
				default:
				}
			}
		}()

		inst := &engine.Installer{
			Resolver:        newResolver(),
			Target:          targetDir,
			Prompter:        consolePrompter{},
			Interrupt:       interrupts,
			RetryWait:       retryWait,
			EnforceChecksum: enforceChecksum,
			Progress: func(res engine.Result) {
				info("  ✓ %-40s  %s", res.Path, res.Message)
			},
			Detail: detail,
		}

		info("Installing '%s' into %s", m.Name, targetDir)
		results, err := inst.Run(cmd.Context(), m)
		if err != nil {
			errorf("installation aborted: %s", err)
			return err
		}

		var installed, verified, skipped int
		for _, res := range results {
			switch {
			case res.Message == "skipped":
				skipped++
			case strings.HasPrefix(res.Message, "installed"):
				installed++
			default:
				verified++
			}
		}
		info("\n%d installed, %d verified, %d skipped.", installed, verified, skipped)
		return nil
	},
}

// consolePrompter prints media requests for the operator.
type consolePrompter struct{}

func (consolePrompter) RequestMedia(req engine.MediaRequest) {
	label := req.Label
	if label == "" {
		label = "the installation media"
	}
	fmt.Printf("\nPlease insert %s.\n", label)
	fmt.Printf("  looking for: %s (%s", req.Path, formatSize(req.Size))
	if req.MD5 != "" {
		fmt.Printf(", md5 %s", req.MD5)
	}
	fmt.Println(")")
	if req.Optional {
		fmt.Println("  press Ctrl-C to skip this file")
	}
}

func init() {
	rootCmd.AddCommand(installCmd)
}
