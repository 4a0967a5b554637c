package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 128, cfg.NumPerm)
	assert.Equal(t, 16, cfg.NumBands)
	assert.Equal(t, 0.40, cfg.Threshold)

	opts, err := cfg.options()
	require.NoError(t, err)
	assert.NotEmpty(t, opts)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("Overrides", func(t *testing.T) {
		p := filepath.Join(dir, "a.yaml")
		require.NoError(t, os.WriteFile(p, []byte("threshold: 0.8\nshingler:\n  kind: char-ngrams\n  k: 5\n"), 0o644))

		cfg, err := LoadConfig(p)
		require.NoError(t, err)
		assert.Equal(t, 0.8, cfg.Threshold)
		assert.Equal(t, "char-ngrams", cfg.Shingler.Kind)
		assert.Equal(t, 5, cfg.Shingler.K)
		assert.Equal(t, 128, cfg.NumPerm, "defaults kept")
	})

	t.Run("Empty", func(t *testing.T) {
		p := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(p, nil, 0o644))

		cfg, err := LoadConfig(p)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		p := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(p, []byte("num_perms: 64\n"), 0o644))

		_, err := LoadConfig(p)
		assert.ErrorContains(t, err, "parsing YAML")
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "nope.yaml"))
		assert.ErrorContains(t, err, "reading config file")
	})
}

func TestConfig_Options(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shingler.Kind = "sentences"
	_, err := cfg.options()
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Strategy = "nope"
	_, err = cfg.options()
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.NoThreshold = true
	cfg.MemoryLimit = "1GiB"
	_, err = cfg.options()
	assert.NoError(t, err)
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"1024", 1024},
		{"8B", 8},
		{"512MiB", 512 << 20},
		{"2 GB", 2e9},
		{"1.5KiB", 1536},
		{"3kb", 3000},
	}
	for _, tt := range tests {
		got, err := parseBytes(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, in := range []string{"lots", "-1MiB", "MiB", "inf", "1e30GB", "10000000000000GiB", "9EiB"} {
		_, err := parseBytes(in)
		assert.Error(t, err, in)
	}

	// sizes up to MaxInt64 are accepted
	got, err := parseBytes("7EiB")
	require.NoError(t, err)
	assert.Equal(t, int64(7)<<60, got)
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw  string
		want location
	}{
		{"texts.csv", location{Scheme: "file", Dir: ".", Name: "texts.csv"}},
		{"/data/in/texts.csv", location{Scheme: "file", Dir: "/data/in", Name: "texts.csv"}},
		{"file:///data/texts.csv", location{Scheme: "file", Dir: "/data", Name: "texts.csv"}},
		{"s3://corpora/news/2024.csv.zst", location{Scheme: "s3", Bucket: "corpora", Name: "news/2024.csv.zst"}},
		{"minio://localhost:9000/corpora/news.csv", location{Scheme: "minio", Host: "localhost:9000", Bucket: "corpora", Name: "news.csv"}},
	}
	for _, tt := range tests {
		got, err := parseLocation(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	for _, raw := range []string{"s3://bucket", "s3:///key", "minio://host/bucket", "gs://b/k"} {
		_, err := parseLocation(raw)
		assert.Error(t, err, raw)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	l, err := newLogger(&buf, LogConfig{Format: "json", Level: "warn"})
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = newLogger(&buf, LogConfig{Format: "xml", Level: "info"})
	assert.Error(t, err)
	_, err = newLogger(&buf, LogConfig{Format: "text", Level: "loud"})
	assert.Error(t, err)
}
