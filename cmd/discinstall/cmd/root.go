package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	manifestPath    string
	targetDir       string
	volumes         []string
	enforceChecksum bool
	retryWait       time.Duration
	verbose         bool
	quiet           bool
)

var rootCmd = &cobra.Command{
	Use:   "discinstall",
	Short: "Install a multi-volume distribution from removable media",
	Long: `discinstall installs a large multi-volume software distribution onto a
target directory. Each file in the manifest is resolved from the mounted
volumes (plain copies, UZ2 block-compressed siblings, or entries embedded
in legacy mojopatch archives), verified if already present, and retried with
an operator media-swap prompt when no source is currently available.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("discinstall %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "manifest.yaml", "path to manifest catalogue")
	rootCmd.PersistentFlags().StringVar(&targetDir, "target", ".", "installation target directory")
	rootCmd.PersistentFlags().StringArrayVar(&volumes, "volume", []string{"/media/*", "/mnt/*"}, "glob pattern matching mounted volume roots (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&enforceChecksum, "enforce-checksum", false, "make declared md5 digests gate verification and copies")
	rootCmd.PersistentFlags().DurationVar(&retryWait, "retry-wait", time.Second, "pause between media retries")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
