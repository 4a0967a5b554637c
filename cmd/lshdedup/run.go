package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/hupe1980/lshdedup"
	"github.com/hupe1980/lshdedup/codec"
	"github.com/hupe1980/lshdedup/lsh"
	"github.com/hupe1980/lshdedup/metrics/prom"
	"github.com/hupe1980/lshdedup/report"
	"github.com/hupe1980/lshdedup/source"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run INPUT OUTPUT",
		Short: "Deduplicate a corpus and write the grouped report",
		Long: `Deduplicate a corpus and write one row per record with its group:

  doc_id,text,dupe_id,group_size

The report format follows the OUTPUT extension (.csv, .json, .db); a .zst or
.lz4 suffix compresses it. Locations may be local paths, s3://bucket/key or
minio://host:port/bucket/key.

Examples:
  # The batch defaults: 128 permutations, 16 bands, threshold 0.40
  lshdedup run texts.csv groups.csv

  # Text in the "body" column, stricter threshold, union-find clustering
  lshdedup run --column body --threshold 0.7 --strategy union-find in.csv out.json

  # Keep the index for later queries
  lshdedup run --snapshot index.lshx s3://corpora/news.csv.zst s3://reports/news.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyPipelineFlags(cmd, &a.cfg)
			applyRunFlags(cmd, &a.cfg)
			snapshot, _ := cmd.Flags().GetString("snapshot")
			return a.run(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], snapshot)
		},
	}

	addHashFlags(cmd, a.cfg)
	addInputFlags(cmd, a.cfg)
	fs := cmd.Flags()
	fs.Float64("threshold", a.cfg.Threshold, "Minimum estimated similarity of a duplicate")
	fs.Bool("no-threshold", a.cfg.NoThreshold, "Group every band collision")
	fs.String("strategy", a.cfg.Strategy, "Clustering strategy (merge, union-find)")
	fs.String("output-format", a.cfg.Output.Format, "Report format (auto, csv, json, sqlite)")
	fs.String("codec", a.cfg.Output.Codec, "JSON codec (go-json, json)")
	fs.String("table", a.cfg.Output.Table, "SQLite report table (default dedup)")
	fs.String("snapshot", "", "Also write the index snapshot to this location")
	fs.String("compression", a.cfg.Snapshot.Compression, "Snapshot compression (none, lz4, zstd)")
	fs.String("pushgateway", a.cfg.Pushgateway.URL, "Push run metrics to this Prometheus Pushgateway")
	return cmd
}

func applyRunFlags(cmd *cobra.Command, cfg *Config) {
	fs := cmd.Flags()
	if fs.Changed("threshold") {
		cfg.Threshold, _ = fs.GetFloat64("threshold")
	}
	if fs.Changed("no-threshold") {
		cfg.NoThreshold, _ = fs.GetBool("no-threshold")
	}
	if fs.Changed("strategy") {
		cfg.Strategy, _ = fs.GetString("strategy")
	}
	if fs.Changed("output-format") {
		cfg.Output.Format, _ = fs.GetString("output-format")
	}
	if fs.Changed("codec") {
		cfg.Output.Codec, _ = fs.GetString("codec")
	}
	if fs.Changed("table") {
		cfg.Output.Table, _ = fs.GetString("table")
	}
	if fs.Changed("compression") {
		cfg.Snapshot.Compression, _ = fs.GetString("compression")
	}
	if fs.Changed("pushgateway") {
		cfg.Pushgateway.URL, _ = fs.GetString("pushgateway")
	}
}

func (c Config) sourceOptions(logger *lshdedup.Logger) ([]source.Option, error) {
	f, err := source.ParseFormat(c.Input.Format)
	if err != nil {
		return nil, err
	}
	opts := []source.Option{
		source.WithFormat(f),
		source.WithColumn(c.Input.Column),
		source.WithField(c.Input.Field),
		source.WithQuery(c.Input.Query),
		source.WithLogger(logger.Logger),
	}
	if c.Input.NoHeader {
		opts = append(opts, source.WithoutHeader())
	}
	return opts, nil
}

func (c Config) reportOptions(logger *lshdedup.Logger) ([]report.Option, error) {
	f, err := report.ParseFormat(c.Output.Format)
	if err != nil {
		return nil, err
	}
	opts := []report.Option{
		report.WithFormat(f),
		report.WithTable(c.Output.Table),
		report.WithLogger(logger.Logger),
	}
	if c.Output.Codec != "" {
		cd, ok := codec.ByName(c.Output.Codec)
		if !ok {
			return nil, fmt.Errorf("unknown codec %q (want one of %v)", c.Output.Codec, codec.Names())
		}
		opts = append(opts, report.WithCodec(cd))
	}
	if c.Output.NoHeader {
		opts = append(opts, report.WithoutHeader())
	}
	return opts, nil
}

func (a *app) readRecords(ctx context.Context, input string) ([]string, error) {
	store, name, err := a.open(ctx, input)
	if err != nil {
		return nil, err
	}
	opts, err := a.cfg.sourceOptions(a.logger)
	if err != nil {
		return nil, err
	}
	return source.Open(ctx, store, name, opts...)
}

func (a *app) run(ctx context.Context, out io.Writer, input, output, snapshot string) error {
	dedupOpts, err := a.cfg.options()
	if err != nil {
		return err
	}
	reportOpts, err := a.cfg.reportOptions(a.logger)
	if err != nil {
		return err
	}

	texts, err := a.readRecords(ctx, input)
	if err != nil {
		return err
	}

	collector := prom.New(prom.WithConstLabels(prometheus.Labels{"input": input}))
	logger := a.logger.WithRun(input)
	dedupOpts = append(dedupOpts,
		lshdedup.WithLogger(logger),
		lshdedup.WithMetricsCollector(collector),
	)

	res, err := lshdedup.Deduplicate(ctx, texts, dedupOpts...)
	if err != nil {
		return err
	}

	outStore, outName, err := a.open(ctx, output)
	if err != nil {
		return err
	}
	if err := report.Save(ctx, outStore, outName, texts, res.Groups(), reportOpts...); err != nil {
		return err
	}

	if snapshot != "" {
		if err := a.writeSnapshot(ctx, res.Index(), snapshot); err != nil {
			return err
		}
	}

	printSummary(out, report.Summarize(len(texts), res.Groups()), res.Timings())

	if url := a.cfg.Pushgateway.URL; url != "" {
		if err := collector.Push(ctx, url, a.cfg.Pushgateway.Job); err != nil {
			logger.WarnContext(ctx, "metrics push failed", "url", url, "error", err)
		}
	}
	return nil
}

func (a *app) writeSnapshot(ctx context.Context, idx *lsh.Index, target string) error {
	c, err := lsh.ParseCompression(a.cfg.Snapshot.Compression)
	if err != nil {
		return err
	}
	store, name, err := a.open(ctx, target)
	if err != nil {
		return err
	}

	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	n, err := idx.WriteSnapshot(w, c)
	if err != nil {
		return errors.Join(fmt.Errorf("snapshot %s: %w", target, err), w.Abort())
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("snapshot %s: %w", target, err)
	}

	a.logger.InfoContext(ctx, "snapshot written", "location", target, "bytes", n, "compression", c.String())
	return nil
}

func printSummary(out io.Writer, s report.Summary, t lshdedup.Timings) {
	green := color.New(color.FgGreen).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(out, "%s Dedupe completed in %.4f secs\n", green("✓"), t.Total().Seconds())
	fmt.Fprintf(out, "%s\t%d\n", bold("Total:"), s.Total)
	fmt.Fprintf(out, "%s\t%d\n", bold("Unique:"), s.Unique)
	fmt.Fprintf(out, "%s\t%d\n", bold("Diff:"), s.Diff)
	fmt.Fprintf(out, "  build %s, query %s, cluster %s\n",
		t.Build.Round(time.Microsecond), t.Query.Round(time.Microsecond), t.Cluster.Round(time.Microsecond))
}
