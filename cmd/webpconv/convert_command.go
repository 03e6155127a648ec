package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"webpconv/internal/batch"
	"webpconv/internal/config"
	"webpconv/internal/encoder"
	"webpconv/internal/history"
	"webpconv/internal/logging"
	"webpconv/internal/preflight"
)

type convertOptions struct {
	quality        int
	method         int
	lossless       int
	multithreading bool
	workers        int
	ignoreCase     bool
	jsonOutput     bool
	noProgress     bool
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <directory>",
		Short: "Convert images in directory to webp",
		Long: "Convert every jpg, jpeg and png image below <directory> to <image>.webp.\n" +
			"Images whose webp is newer are skipped. A webp bigger than its source,\n" +
			"or empty, is deleted again.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			if err := opts.apply(cmd, &cfg); err != nil {
				return err
			}
			return runConvert(cmd, ctx, &cfg, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.quality, "quality", "Q", 0, "Compression factor between 0 and 100")
	flags.IntVarP(&opts.method, "method", "M", 0, "Compression method between 0 (fast) and 6 (slowest)")
	flags.IntVarP(&opts.lossless, "lossless", "Z", 0, "Lossless compression level between 0 and 9")
	flags.BoolVarP(&opts.multithreading, "multithreading", "m", false, "Use multi-threading in cwebp")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Number of images converted in parallel")
	flags.BoolVar(&opts.ignoreCase, "ignore-case", false, "Match image extensions case-insensitively")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print the report as JSON")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "Never show the progress bar")
	return cmd
}

// apply overlays explicitly set flags onto cfg.
func (o *convertOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("quality") {
		cfg.Encoder.Quality = intPtr(o.quality)
	}
	if flags.Changed("method") {
		cfg.Encoder.Method = intPtr(o.method)
	}
	if flags.Changed("lossless") {
		cfg.Encoder.Lossless = intPtr(o.lossless)
	}
	if flags.Changed("multithreading") {
		cfg.Encoder.Multithreading = o.multithreading
	}
	if flags.Changed("workers") {
		cfg.Batch.Workers = o.workers
	}
	if flags.Changed("ignore-case") {
		cfg.Batch.CaseInsensitiveExtensions = o.ignoreCase
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func runConvert(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, dirArg string, opts *convertOptions) error {
	if err := preflight.CheckEncoder(cfg.Encoder.Binary); err != nil {
		return err
	}

	root, err := resolveRoot(dirArg)
	if err != nil {
		return err
	}

	logger, err := ctx.logger(cmd, cfg)
	if err != nil {
		return err
	}

	enc := encoder.New(cfg.Encoder.Binary,
		encoder.WithTimeout(time.Duration(cfg.Encoder.TimeoutSeconds)*time.Second),
		encoder.WithLogger(logger),
	)

	showBar := !opts.noProgress && !opts.jsonOutput && !ctx.isVerbose() && shouldColorize(cmd.ErrOrStderr())
	observers := batch.MultiObserver{batch.NewLogObserver(logger, showBar)}
	if showBar {
		observers = append(observers, newProgressObserver(cmd.ErrOrStderr()))
	}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			logHistoryUnavailable(logger, err)
		} else {
			defer store.Close()
			observers = append(observers, history.NewObserver(store, logger))
		}
	}

	orc := batch.New(enc,
		batch.WithObserver(observers),
		batch.WithLogger(logger),
		batch.WithLockDir(cfg.LockDir()),
	)

	report, runErr := orc.Run(cmd.Context(), batch.RequestFromConfig(cfg, root))
	if runErr != nil && report.BatchID == "" {
		return runErr
	}

	if opts.jsonOutput {
		if err := writeJSON(cmd, newReportView(report)); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), renderReport(report, newPrinter()))
	}
	return runErr
}

func logHistoryUnavailable(logger *slog.Logger, err error) {
	logging.WarnWithContext(logger, "batch history unavailable", "history_open_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check [history] path or set enabled = false"),
		logging.String(logging.FieldImpact, "this batch is not recorded"),
	)
}

func intPtr(v int) *int { return &v }
