package main

import (
	"github.com/spf13/cobra"
)

// addHashFlags registers the flags shared by commands that sign texts.
func addHashFlags(cmd *cobra.Command, cfg Config) {
	fs := cmd.Flags()
	fs.Int("num-perm", cfg.NumPerm, "Signature length")
	fs.Int("num-bands", cfg.NumBands, "Number of LSH bands (must divide --num-perm)")
	fs.Uint64("seed", cfg.Seed, "Seed of the MinHash permutations")
	fs.String("shingler", cfg.Shingler.Kind, "Tokenizer (words, word-ngrams, char-ngrams)")
	fs.Int("k", cfg.Shingler.K, "n-gram size for word-ngrams and char-ngrams")
	fs.Bool("normalize", cfg.Shingler.Normalize, "Lowercase and strip accents before shingling")
	fs.Int("workers", cfg.Workers, "Worker pool size (0 = GOMAXPROCS)")
	fs.String("memory-limit", cfg.MemoryLimit, "Memory limit for signatures, e.g. 512MiB (empty = unlimited)")
}

// addInputFlags registers the flags of commands that read a corpus.
func addInputFlags(cmd *cobra.Command, cfg Config) {
	fs := cmd.Flags()
	fs.String("format", cfg.Input.Format, "Input format (auto, csv, lines, jsonl, sqlite)")
	fs.String("column", cfg.Input.Column, "CSV text column: header name or zero-based index (default 1)")
	fs.String("field", cfg.Input.Field, "JSONL text field (default text)")
	fs.String("query", cfg.Input.Query, "SQLite query; the first column is the text")
	fs.Bool("no-header", cfg.Input.NoHeader, "CSV input has no header row")
}

// applyPipelineFlags copies explicitly set hash and input flags into cfg.
func applyPipelineFlags(cmd *cobra.Command, cfg *Config) {
	fs := cmd.Flags()
	if fs.Changed("num-perm") {
		cfg.NumPerm, _ = fs.GetInt("num-perm")
	}
	if fs.Changed("num-bands") {
		cfg.NumBands, _ = fs.GetInt("num-bands")
	}
	if fs.Changed("seed") {
		cfg.Seed, _ = fs.GetUint64("seed")
	}
	if fs.Changed("shingler") {
		cfg.Shingler.Kind, _ = fs.GetString("shingler")
	}
	if fs.Changed("k") {
		cfg.Shingler.K, _ = fs.GetInt("k")
	}
	if fs.Changed("normalize") {
		cfg.Shingler.Normalize, _ = fs.GetBool("normalize")
	}
	if fs.Changed("workers") {
		cfg.Workers, _ = fs.GetInt("workers")
	}
	if fs.Changed("memory-limit") {
		cfg.MemoryLimit, _ = fs.GetString("memory-limit")
	}
	if fs.Changed("format") {
		cfg.Input.Format, _ = fs.GetString("format")
	}
	if fs.Changed("column") {
		cfg.Input.Column, _ = fs.GetString("column")
	}
	if fs.Changed("field") {
		cfg.Input.Field, _ = fs.GetString("field")
	}
	if fs.Changed("query") {
		cfg.Input.Query, _ = fs.GetString("query")
	}
	if fs.Changed("no-header") {
		cfg.Input.NoHeader, _ = fs.GetBool("no-header")
	}
}
