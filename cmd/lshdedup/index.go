package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/hupe1980/lshdedup/codec"
	"github.com/hupe1980/lshdedup/lsh"
	"github.com/hupe1980/lshdedup/minhash"
	"github.com/spf13/cobra"
)

func newIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build, inspect and query index snapshots",
	}
	cmd.AddCommand(newIndexBuildCmd(a), newIndexInspectCmd(a), newIndexQueryCmd(a))
	return cmd
}

func newIndexBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build INPUT SNAPSHOT",
		Short: "Build the LSH index of a corpus and write a snapshot",
		Long: `Build the LSH index of a corpus and write a snapshot.

The snapshot stores the signatures and banding parameters, not the shingler:
query it with the same --shingler, --k and --normalize flags.

Examples:
  lshdedup index build texts.csv texts.lshx
  lshdedup index build --compression lz4 --num-perm 256 --num-bands 32 in.jsonl s3://idx/in.lshx`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyPipelineFlags(cmd, &a.cfg)
			if cmd.Flags().Changed("compression") {
				a.cfg.Snapshot.Compression, _ = cmd.Flags().GetString("compression")
			}
			return a.buildIndex(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
		},
	}
	addHashFlags(cmd, a.cfg)
	addInputFlags(cmd, a.cfg)
	cmd.Flags().String("compression", a.cfg.Snapshot.Compression, "Snapshot compression (none, lz4, zstd)")
	return cmd
}

func (a *app) buildOptions() ([]lsh.Option, error) {
	sh, err := a.cfg.shingler()
	if err != nil {
		return nil, err
	}
	limit, err := parseBytes(a.cfg.MemoryLimit)
	if err != nil {
		return nil, fmt.Errorf("memory_limit: %w", err)
	}
	return []lsh.Option{
		lsh.WithShingler(sh),
		lsh.WithWorkers(a.cfg.Workers),
		lsh.WithMemoryLimit(limit),
		lsh.WithLogger(a.logger.Logger),
	}, nil
}

func (a *app) buildIndex(ctx context.Context, out io.Writer, input, target string) error {
	opts, err := a.buildOptions()
	if err != nil {
		return err
	}
	texts, err := a.readRecords(ctx, input)
	if err != nil {
		return err
	}

	start := time.Now()
	idx, err := lsh.Build(ctx, texts, a.cfg.lshConfig(), opts...)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := a.writeSnapshot(ctx, idx, target); err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s Indexed %d records in %.4f secs\n", green("✓"), idx.Len(), elapsed.Seconds())
	return nil
}

func (a *app) loadIndex(ctx context.Context, location string) (idx *lsh.Index, err error) {
	opts, err := a.buildOptions()
	if err != nil {
		return nil, err
	}
	store, name, err := a.open(ctx, location)
	if err != nil {
		return nil, err
	}
	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, rc.Close()) }()

	idx, err = lsh.ReadIndex(ctx, rc, opts...)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", location, err)
	}
	return idx, nil
}

func newIndexInspectCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect SNAPSHOT",
		Short: "Print the parameters and bucket statistics of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.loadIndex(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printStats(cmd.OutOrStdout(), idx.Config(), idx.Stats(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

type statsDoc struct {
	NumPerm          int    `json:"num_perm"`
	NumBands         int    `json:"num_bands"`
	Rows             int    `json:"rows"`
	Seed             uint64 `json:"seed"`
	Records          int    `json:"records"`
	Buckets          int    `json:"buckets"`
	LargestBucket    int    `json:"largest_bucket"`
	SingletonBuckets int    `json:"singleton_buckets"`
}

func printStats(out io.Writer, cfg lsh.Config, s lsh.Stats, asJSON bool) error {
	doc := statsDoc{
		NumPerm:          cfg.NumPerm,
		NumBands:         cfg.NumBands,
		Rows:             cfg.Rows(),
		Seed:             cfg.Seed,
		Records:          s.Records,
		Buckets:          s.Buckets,
		LargestBucket:    s.LargestBucket,
		SingletonBuckets: s.SingletonBuckets,
	}
	if asJSON {
		data, err := codec.Default.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d\n", cyan("records"), doc.Records)
	fmt.Fprintf(tw, "%s\t%d\n", cyan("num_perm"), doc.NumPerm)
	fmt.Fprintf(tw, "%s\t%d (%d rows)\n", cyan("num_bands"), doc.NumBands, doc.Rows)
	fmt.Fprintf(tw, "%s\t%d\n", cyan("seed"), doc.Seed)
	fmt.Fprintf(tw, "%s\t%d\n", cyan("buckets"), doc.Buckets)
	fmt.Fprintf(tw, "%s\t%d\n", cyan("largest_bucket"), doc.LargestBucket)
	fmt.Fprintf(tw, "%s\t%d\n", cyan("singleton_buckets"), doc.SingletonBuckets)
	return tw.Flush()
}

func newIndexQueryCmd(a *app) *cobra.Command {
	var (
		threshold float64
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "query SNAPSHOT TEXT...",
		Short: "List indexed records similar to each TEXT",
		Long: `List indexed records that share a band with each TEXT, most similar first.

Examples:
  lshdedup index query texts.lshx "the cat sat on the mat"
  lshdedup index query --threshold 0.8 --limit 5 texts.lshx "breaking news"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyPipelineFlags(cmd, &a.cfg)
			idx, err := a.loadIndex(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return queryIndex(cmd.OutOrStdout(), idx, args[1:], threshold, limit)
		},
	}
	addHashFlags(cmd, a.cfg)
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum estimated similarity")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum matches per text (0 = all)")
	return cmd
}

type match struct {
	id  uint32
	sim float64
}

// sortMatches orders by similarity descending, then id.
func sortMatches(ms []match) {
	slices.SortFunc(ms, func(a, b match) int {
		if c := cmp.Compare(b.sim, a.sim); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
}

func queryIndex(out io.Writer, idx *lsh.Index, texts []string, threshold float64, limit int) error {
	yellow := color.New(color.FgYellow).SprintFunc()

	for i, text := range texts {
		sig := idx.Sign(text)
		ids, err := idx.Query(sig, lsh.WithThreshold(threshold))
		if err != nil {
			return err
		}

		matches := make([]match, 0, ids.GetCardinality())
		it := ids.Iterator()
		for it.HasNext() {
			id := it.Next()
			other, err := idx.Signature(id)
			if err != nil {
				return err
			}
			matches = append(matches, match{id: id, sim: minhash.Similarity(sig, other)})
		}
		sortMatches(matches)
		if limit > 0 && len(matches) > limit {
			matches = matches[:limit]
		}

		if len(texts) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s %q\n", yellow("#"), text)
		}
		for _, m := range matches {
			fmt.Fprintf(out, "%d\t%.2f\n", m.id, m.sim)
		}
	}
	return nil
}
