package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amymcvey/gnss-ro-data/internal/observability"
	"github.com/amymcvey/gnss-ro-data/pkg/archive"
	"github.com/amymcvey/gnss-ro-data/pkg/batch"
	"github.com/amymcvey/gnss-ro-data/pkg/builder"
	"github.com/amymcvey/gnss-ro-data/pkg/iterate"
	"github.com/amymcvey/gnss-ro-data/pkg/jobs"
	"github.com/amymcvey/gnss-ro-data/pkg/registry"
)

var definejobsCmd = &cobra.Command{
	Use:   "definejobs <center> <mission> [file-type ...]",
	Short: "Crawl one center's archive into job definitions and batches",
	Long: `Crawl one processing center's archive for a mission, write the
resulting job-definition document, and split the discovered files into
batch manifests.

File types default to everything the center contributes. Without
--daterange the sweep covers the mission's full archive year range.

Example:
  rojobs definejobs ucar cosmic1 level1b --daterange 2009-01-01:2009-12-31
  rojobs definejobs ucar spire --liveupdate --daterange 2023-06-01:2023-06-07
  rojobs definejobs romsaf metop level2b --nonnominal`,
	Args: cobra.MinimumNArgs(2),
	RunE: runDefinejobs,
}

var (
	definejobsDateRange   string
	definejobsLiveupdate  bool
	definejobsNonNominal  bool
	definejobsJobsPerFile int
	definejobsPrefixes    map[string]string
	definejobsOutput      string
	definejobsNoBatch     bool
	definejobsRateLimit   float64
)

func init() {
	rootCmd.AddCommand(definejobsCmd)

	definejobsCmd.Flags().StringVar(&definejobsDateRange, "daterange", "", "Inclusive date range as YYYY-MM-DD:YYYY-MM-DD (default: the mission's archive year range)")
	definejobsCmd.Flags().BoolVar(&definejobsLiveupdate, "liveupdate", false, "Crawl the near-real-time feed instead of the archival buckets")
	definejobsCmd.Flags().BoolVar(&definejobsNonNominal, "nonnominal", false, "Also scan ROM SAF non-nominal directories")
	definejobsCmd.Flags().IntVar(&definejobsJobsPerFile, "jobsperfile", 0, "Files per batch manifest (default from config)")
	definejobsCmd.Flags().StringToStringVar(&definejobsPrefixes, "prefix", nil, "Root prefix override per center, e.g. ucar=/mnt/archive/ucar")
	definejobsCmd.Flags().StringVar(&definejobsOutput, "output", "", "Job-definition document destination (default under the definitions bucket)")
	definejobsCmd.Flags().BoolVar(&definejobsNoBatch, "no-batch", false, "Write the job definitions without splitting batches")
	definejobsCmd.Flags().Float64Var(&definejobsRateLimit, "rate", 0, "Max listing calls per second (0 = unlimited)")
}

func runDefinejobs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := observability.CLILogger

	center := registry.Center(args[0])
	mission := args[1]
	fileTypes, err := requestedFileTypes(center, args[2:])
	if err != nil {
		return err
	}

	client := archive.NewClient(
		archive.WithS3Options(archive.S3Options{Region: cfg.Region}),
		archive.WithLogger(logger),
	)
	defer func() { _ = client.Close() }()

	b, err := builder.New(client,
		builder.WithLogger(logger),
		builder.WithRateLimit(definejobsRateLimit),
	)
	if err != nil {
		return err
	}

	from, to, err := sweepRange(ctx, b, center, mission)
	if err != nil {
		return err
	}

	set, err := b.Build(ctx, builder.Params{
		From:            from,
		To:              to,
		Missions:        []string{mission},
		Centers:         []registry.Center{center},
		FileTypes:       fileTypes,
		Liveupdate:      definejobsLiveupdate,
		NonNominal:      definejobsNonNominal,
		PrefixOverrides: prefixOverrides(),
	})
	if err != nil {
		return err
	}
	if set.Empty() {
		logger.Warn("no jobs found, nothing written",
			zap.String("center", center.String()),
			zap.String("mission", mission))
		return nil
	}

	dest := definejobsOutput
	if dest == "" {
		dest = defaultDefinitionsDest(center, mission, fileTypes)
	}
	if err := client.WriteJSON(ctx, dest, set); err != nil {
		return fmt.Errorf("writing job definitions: %w", err)
	}
	logger.Info("wrote job definitions",
		zap.String("dest", dest),
		zap.Int("jobs", len(set.Jobs)))

	if definejobsNoBatch {
		return nil
	}
	return splitBatches(ctx, client, set, defaultBatchTemplate(center, mission, fileTypes), definejobsJobsPerFile)
}

// requestedFileTypes parses trailing file-type args, defaulting to the
// center's full contribution.
func requestedFileTypes(center registry.Center, args []string) ([]registry.FileType, error) {
	if len(args) == 0 {
		return registry.CenterFileTypes(center)
	}
	var types []registry.FileType
	for _, a := range args {
		if !registry.ValidFileType(a) {
			return nil, fmt.Errorf("unknown file type %q (expected one of %v)", a, registry.FileTypes())
		}
		types = append(types, registry.FileType(a))
	}
	return types, nil
}

// sweepRange parses --daterange, or derives the mission's archive year
// range when the flag is absent.
func sweepRange(ctx context.Context, b *builder.Builder, center registry.Center, mission string) (jobs.Date, jobs.Date, error) {
	if definejobsDateRange != "" {
		parts := strings.SplitN(definejobsDateRange, ":", 2)
		if len(parts) != 2 {
			return jobs.Date{}, jobs.Date{}, fmt.Errorf("bad --daterange %q: expected YYYY-MM-DD:YYYY-MM-DD", definejobsDateRange)
		}
		from, err := jobs.ParseDate(parts[0])
		if err != nil {
			return jobs.Date{}, jobs.Date{}, err
		}
		to, err := jobs.ParseDate(parts[1])
		if err != nil {
			return jobs.Date{}, jobs.Date{}, err
		}
		return from, to, nil
	}

	first, last, err := b.MissionYearRange(ctx, center, mission, definejobsLiveupdate)
	if err != nil {
		return jobs.Date{}, jobs.Date{}, fmt.Errorf("deriving date range: %w", err)
	}
	return jobs.NewDate(first, 1, 1), jobs.NewDate(last, 12, 31), nil
}

func prefixOverrides() map[registry.Center]string {
	if len(definejobsPrefixes) == 0 {
		return nil
	}
	overrides := make(map[registry.Center]string, len(definejobsPrefixes))
	for name, root := range definejobsPrefixes {
		overrides[registry.Center(name)] = root
	}
	return overrides
}

func defaultDefinitionsDest(center registry.Center, mission string, types []registry.FileType) string {
	return fmt.Sprintf("s3://%s/define-jobs/%s-%s-%s%s.json",
		cfg.DefinitionsBucket, center, mission, typesLabel(types), liveupdateSuffix())
}

func defaultBatchTemplate(center registry.Center, mission string, types []registry.FileType) string {
	return fmt.Sprintf("s3://%s/batchprocess-jobs/%s-%s-%s.%%06d%s.json",
		cfg.DefinitionsBucket, center, mission, typesLabel(types), liveupdateSuffix())
}

func typesLabel(types []registry.FileType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, "-")
}

func liveupdateSuffix() string {
	if definejobsLiveupdate {
		return "_liveupdate"
	}
	return ""
}

// splitBatches expands a definition set and writes its batch manifests.
func splitBatches(ctx context.Context, client *archive.Client, set *jobs.DefinitionSet, template string, jobsPerFile int) error {
	logger := observability.CLILogger

	it, err := iterate.New(ctx, client, set, iterate.WithLogger(logger))
	if err != nil {
		return err
	}

	if jobsPerFile <= 0 {
		jobsPerFile = cfg.JobsPerFile
	}
	s, err := batch.New(client, batch.Config{
		Template:  template,
		BatchSize: jobsPerFile,
	}, batch.WithLogger(logger))
	if err != nil {
		return err
	}

	n, err := s.Run(ctx, it)
	if err != nil {
		return err
	}
	logger.Info("wrote batch manifests",
		zap.String("template", template),
		zap.Int("manifests", n))
	return nil
}
