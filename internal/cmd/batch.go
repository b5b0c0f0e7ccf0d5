package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amymcvey/gnss-ro-data/internal/observability"
	"github.com/amymcvey/gnss-ro-data/pkg/archive"
	"github.com/amymcvey/gnss-ro-data/pkg/jobs"
)

var batchCmd = &cobra.Command{
	Use:   "batch <definitions-file>",
	Short: "Split a job-definition document into batch manifests",
	Long: `Reload a previously written job-definition document (JSON or
YAML) and split the files its jobs name into fixed-size batch manifests.

The default output template places manifests under the definitions
bucket, named after the first job's center, mission, and file type.

Example:
  rojobs batch ucar-cosmic1-level1b.json --jobsperfile 2000
  rojobs batch definitions.json --template 's3://my-bucket/batches/job.%06d.json'`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

var (
	batchTemplate    string
	batchJobsPerFile int
	batchLiveupdate  bool
)

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchTemplate, "template", "", "Output template with a %06d index verb (default under the definitions bucket)")
	batchCmd.Flags().IntVar(&batchJobsPerFile, "jobsperfile", 0, "Files per batch manifest (default from config)")
	batchCmd.Flags().BoolVar(&batchLiveupdate, "liveupdate", false, "Suffix the derived template for liveupdate batches")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := observability.CLILogger

	set, err := jobs.LoadDefinitions(args[0])
	if err != nil {
		return err
	}
	logger.Debug("loaded job definitions",
		zap.String("path", args[0]),
		zap.Int("jobs", len(set.Jobs)))

	client := archive.NewClient(
		archive.WithS3Options(archive.S3Options{Region: cfg.Region}),
		archive.WithLogger(logger),
	)
	defer func() { _ = client.Close() }()

	template := batchTemplate
	if template == "" {
		if set.Empty() {
			return fmt.Errorf("definitions %s hold no jobs to derive a template from", args[0])
		}
		suffix := ""
		if batchLiveupdate {
			suffix = "_liveupdate"
		}
		first := set.Jobs[0]
		template = fmt.Sprintf("s3://%s/batchprocess-jobs/%s-%s-%s.%%06d%s.json",
			cfg.DefinitionsBucket, first.ProcessingCenter, first.Mission, first.FileType, suffix)
	}

	return splitBatches(ctx, client, set, template, batchJobsPerFile)
}
