// Package cmd wires the rojobs CLI: archive discovery into job
// definitions, and job definitions into batch manifests.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amymcvey/gnss-ro-data/internal/config"
	"github.com/amymcvey/gnss-ro-data/internal/observability"
)

// versionInfo is populated by the build via SetVersionInfo.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata for the version command.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var (
	cfg     *config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rojobs",
	Short: "Discover RO archive inputs and split them into batch jobs",
	Long: `rojobs crawls the contributing GNSS radio-occultation archives
(UCAR, ROM SAF, JPL, EUMETSAT), normalizes what it finds into job
definitions, and splits those into fixed-size batch manifests for the
reformatting pipeline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		_, err = observability.Configure(level)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rojobs %s (commit %s, built %s)\n",
				versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)
		},
	})
}

// Execute runs the CLI with the given context.
func Execute(ctx context.Context) error {
	defer observability.Sync()
	return rootCmd.ExecuteContext(ctx)
}
