package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/lshdedup"
	"github.com/hupe1980/lshdedup/dedup"
	"github.com/hupe1980/lshdedup/lsh"
	"github.com/hupe1980/lshdedup/shingle"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration file. Command-line flags override it.
type Config struct {
	NumPerm     int            `yaml:"num_perm"`
	NumBands    int            `yaml:"num_bands"`
	Seed        uint64         `yaml:"seed"`
	Threshold   float64        `yaml:"threshold"`
	NoThreshold bool           `yaml:"no_threshold"`
	Strategy    string         `yaml:"strategy"`
	Shingler    ShinglerConfig `yaml:"shingler"`
	Workers     int            `yaml:"workers"`
	MemoryLimit string         `yaml:"memory_limit"` // e.g. "512MiB", "2GB"

	Input       InputConfig    `yaml:"input"`
	Output      OutputConfig   `yaml:"output"`
	Snapshot    SnapshotConfig `yaml:"snapshot"`
	Log         LogConfig      `yaml:"log"`
	S3          S3Config       `yaml:"s3"`
	MinIO       MinIOConfig    `yaml:"minio"`
	Pushgateway PushConfig     `yaml:"pushgateway"`
}

// ShinglerConfig selects the tokenizer.
type ShinglerConfig struct {
	Kind      string `yaml:"kind"` // words, word-ngrams, char-ngrams
	K         int    `yaml:"k"`
	Normalize bool   `yaml:"normalize"`
}

// InputConfig configures the record source.
type InputConfig struct {
	Format   string `yaml:"format"`
	Column   string `yaml:"column"`
	Field    string `yaml:"field"`
	Query    string `yaml:"query"`
	NoHeader bool   `yaml:"no_header"`
}

// OutputConfig configures the report.
type OutputConfig struct {
	Format   string `yaml:"format"`
	Codec    string `yaml:"codec"`
	Table    string `yaml:"table"`
	NoHeader bool   `yaml:"no_header"`
}

// SnapshotConfig configures index snapshots.
type SnapshotConfig struct {
	Compression string `yaml:"compression"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `yaml:"format"` // text or json
	Level  string `yaml:"level"`
}

// S3Config configures s3:// locations.
type S3Config struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// MinIOConfig configures minio:// locations.
type MinIOConfig struct {
	Insecure bool `yaml:"insecure"`
}

// PushConfig configures the Prometheus Pushgateway. An empty URL disables pushing.
type PushConfig struct {
	URL string `yaml:"url"`
	Job string `yaml:"job"`
}

// DefaultConfig mirrors the batch job: 128 permutations, 16 bands, threshold 0.40.
func DefaultConfig() Config {
	cfg := lsh.DefaultConfig()
	return Config{
		NumPerm:   cfg.NumPerm,
		NumBands:  cfg.NumBands,
		Threshold: lshdedup.DefaultThreshold,
		Strategy:  dedup.StrategyMerge.String(),
		Shingler:  ShinglerConfig{Kind: "words", K: 3},
		Snapshot:  SnapshotConfig{Compression: "zstd"},
		Log:       LogConfig{Format: "text", Level: "info"},
		Pushgateway: PushConfig{
			Job: "lshdedup",
		},
	}
}

// LoadConfig reads path over the defaults. Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing YAML: %w", err)
	}
	return cfg, nil
}

func (c Config) shingler() (shingle.Shingler, error) {
	return shingle.ByName(c.Shingler.Kind, c.Shingler.K, c.Shingler.Normalize)
}

func (c Config) lshConfig() lsh.Config {
	return lsh.Config{NumPerm: c.NumPerm, NumBands: c.NumBands, Seed: c.Seed}
}

// options translates the configuration into deduplicator options.
func (c Config) options() ([]lshdedup.Option, error) {
	sh, err := c.shingler()
	if err != nil {
		return nil, err
	}
	strategy, err := dedup.ParseStrategy(c.Strategy)
	if err != nil {
		return nil, err
	}
	limit, err := parseBytes(c.MemoryLimit)
	if err != nil {
		return nil, fmt.Errorf("memory_limit: %w", err)
	}

	opts := []lshdedup.Option{
		lshdedup.WithConfig(c.lshConfig()),
		lshdedup.WithStrategy(strategy),
		lshdedup.WithShingler(sh),
		lshdedup.WithWorkers(c.Workers),
		lshdedup.WithMemoryLimit(limit),
	}
	if c.NoThreshold {
		opts = append(opts, lshdedup.WithoutThreshold())
	} else {
		opts = append(opts, lshdedup.WithThreshold(c.Threshold))
	}
	return opts, nil
}

// parseBytes parses sizes like "512MiB" or "2GB". Empty means unlimited.
func parseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("invalid size %q: exceeds %d bytes", s, int64(math.MaxInt64))
	}
	return int64(n), nil
}
