package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/station-linker/internal/config"
	"github.com/sells-group/station-linker/internal/dataset"
	"github.com/sells-group/station-linker/internal/fetcher"
	"github.com/sells-group/station-linker/internal/report"
	"github.com/sells-group/station-linker/internal/resolve"
)

var (
	linkGeneration   string
	linkMapping      string
	linkRegistry     string
	linkOutput       string
	linkFormat       string
	linkReport       string
	linkThreshold    int
	linkConcurrency  int
	linkDropUnmapped bool
	linkPreprocess   bool
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link generation output to accreditation registry records",
	Long: `Reads the three input tables, keeps renewable units, fuzzy matches each
unit's station to the registry within its region, and writes one row per unit.

Sources may be local paths or http(s) URLs; .xlsx sources are read from the
first sheet.

Examples:
  station-linker link --generation gen.csv --mapping duid.csv --registry cer.csv --output linked.csv

  # JSON output with a YAML run report
  station-linker link --generation gen.csv --mapping duid.csv --registry cer.xlsx \
    --format json --output linked.json --report report.yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyLinkFlags(cmd, cfg)
		return runLink(cmd.Context(), cfg, dataset.Sources{
			Generation: linkGeneration,
			Mapping:    linkMapping,
			Registry:   linkRegistry,
		}, linkOutput, linkReport)
	},
}

// applyLinkFlags copies explicitly set flags over the loaded config.
func applyLinkFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		c.Link.Threshold = linkThreshold
	}
	if flags.Changed("concurrency") {
		c.Link.Concurrency = linkConcurrency
	}
	if flags.Changed("drop-unmapped") {
		c.Link.DropUnmapped = linkDropUnmapped
	}
	if flags.Changed("preprocess") {
		c.Link.Preprocess = linkPreprocess
	}
	if flags.Changed("format") {
		c.Output.Format = linkFormat
	}
}

func runLink(ctx context.Context, c *config.Config, src dataset.Sources, output, reportPath string) error {
	if err := c.Validate("link"); err != nil {
		return err
	}

	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))
	log.Info("link: starting",
		zap.String("generation", src.Generation),
		zap.String("mapping", src.Mapping),
		zap.String("registry", src.Registry),
		zap.Int("threshold", c.Link.Threshold),
		zap.Int("concurrency", c.Link.Concurrency),
	)

	loader := dataset.NewLoader(fetcher.NewOpener(newHTTPFetcher(c)), fetcher.TableOptions{
		Delimiter: config.Delimiter(c.Input.Delimiter, ','),
		Encodings: c.Input.Encodings,
		Sheet:     c.Input.Sheet,
	})

	tables, err := loader.Load(ctx, src)
	if err != nil {
		return eris.Wrap(err, "link: load inputs")
	}

	linker := resolve.NewLinker(
		resolve.WithLinkThreshold(c.Link.Threshold),
		resolve.WithNamePreprocess(c.Link.Preprocess),
		resolve.WithConcurrency(c.Link.Concurrency),
		resolve.WithDropUnmapped(c.Link.DropUnmapped),
		resolve.WithProgress(c.Link.ProgressEvery, func(done, total int) {
			log.Info("link: progress", zap.Int("done", done), zap.Int("total", total))
		}),
	)

	res, err := linker.Link(ctx, tables.Generation, tables.Mapping, tables.Registry)
	if err != nil {
		return eris.Wrap(err, "link: run")
	}

	if err := dataset.WriteFile(output, c.Output.Format, res.Records); err != nil {
		return eris.Wrap(err, "link: write output")
	}

	rep := report.New(runID, report.Inputs{
		Generation: src.Generation,
		Mapping:    src.Mapping,
		Registry:   src.Registry,
	}, res, c.Link.SampleSize)
	rep.Output = output
	rep.Log(log)

	if reportPath != "" {
		if err := rep.Save(reportPath); err != nil {
			return eris.Wrap(err, "link: save report")
		}
		log.Info("link: report written", zap.String("path", reportPath))
	}

	log.Info("link: complete",
		zap.String("output", output),
		zap.String("format", c.Output.Format),
		zap.Int("rows", len(res.Records)),
	)
	return nil
}

// newHTTPFetcher builds the remote source fetcher from the http config section.
func newHTTPFetcher(c *config.Config) *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:   c.HTTP.UserAgent,
		Timeout:     time.Duration(c.HTTP.TimeoutSecs) * time.Second,
		MaxRetries:  c.HTTP.MaxRetries,
		RatePerHost: rate.Limit(c.HTTP.RatePerHost),
	})
}

func init() {
	linkCmd.Flags().StringVar(&linkGeneration, "generation", "", "generation output table: path or URL (required)")
	linkCmd.Flags().StringVar(&linkMapping, "mapping", "", "unit-to-station mapping table: path or URL (required)")
	linkCmd.Flags().StringVar(&linkRegistry, "registry", "", "accreditation registry table: path or URL (required)")
	linkCmd.Flags().StringVar(&linkOutput, "output", "-", "output file, - for stdout")
	linkCmd.Flags().StringVar(&linkFormat, "format", "csv", "output format: csv, json or xlsx (default from config)")
	linkCmd.Flags().StringVar(&linkReport, "report", "", "write a YAML run report to this path")
	linkCmd.Flags().IntVar(&linkThreshold, "threshold", resolve.DefaultThreshold, "minimum match score 0-100 (default from config)")
	linkCmd.Flags().IntVar(&linkConcurrency, "concurrency", 1, "rows matched in parallel (default from config)")
	linkCmd.Flags().BoolVar(&linkDropUnmapped, "drop-unmapped", false, "drop units missing from the mapping table")
	linkCmd.Flags().BoolVar(&linkPreprocess, "preprocess", false, "fold case and punctuation before scoring")
	_ = linkCmd.MarkFlagRequired("generation")
	_ = linkCmd.MarkFlagRequired("mapping")
	_ = linkCmd.MarkFlagRequired("registry")
	rootCmd.AddCommand(linkCmd)
}
