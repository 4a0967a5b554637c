package lsh

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/hupe1980/lshdedup/shingle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	records := corpus(50)
	cfg := Config{NumPerm: 32, NumBands: 8, Seed: 12345}

	idx, err := Build(context.Background(), records, cfg)
	require.NoError(t, err)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			n, err := idx.WriteSnapshot(&buf, c)
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), n)

			restored, err := ReadIndex(context.Background(), &buf)
			require.NoError(t, err)

			assert.Equal(t, cfg, restored.Config())
			assert.Equal(t, idx.Signatures(), restored.Signatures())
			assert.Equal(t, idx.Stats(), restored.Stats())

			for id := uint32(0); id < uint32(idx.Len()); id++ {
				want, err := idx.QueryRecord(id)
				require.NoError(t, err)
				got, err := restored.QueryRecord(id)
				require.NoError(t, err)
				assert.True(t, want.Equals(got))
			}

			// QueryText uses the restored hasher
			want, err := idx.QueryText(records[7])
			require.NoError(t, err)
			got, err := restored.QueryText(records[7])
			require.NoError(t, err)
			assert.True(t, want.Equals(got))
		})
	}
}

func TestSnapshot_Empty(t *testing.T) {
	idx, err := Build(context.Background(), nil, Config{NumPerm: 8, NumBands: 4})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = idx.WriteSnapshot(&buf, CompressionZSTD)
	require.NoError(t, err)
	assert.Equal(t, snapshotHeaderSize+4, buf.Len())

	restored, err := ReadIndex(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, restored.Len())
}

func TestSnapshot_WithShingler(t *testing.T) {
	s, err := shingle.CharNGrams(3)
	require.NoError(t, err)

	records := []string{"abcdefgh", "abcdefgx", "zzzzzzzz"}
	idx, err := Build(context.Background(), records, Config{NumPerm: 16, NumBands: 8}, WithShingler(s))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = idx.WriteSnapshot(&buf, CompressionNone)
	require.NoError(t, err)

	restored, err := ReadIndex(context.Background(), &buf, WithShingler(s))
	require.NoError(t, err)

	want, err := idx.QueryText("abcdefgh")
	require.NoError(t, err)
	got, err := restored.QueryText("abcdefgh")
	require.NoError(t, err)
	assert.True(t, want.Equals(got))
}

func TestReadIndex_Corrupt(t *testing.T) {
	idx, err := Build(context.Background(), corpus(10), Config{NumPerm: 8, NumBands: 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = idx.WriteSnapshot(&buf, CompressionNone)
	require.NoError(t, err)
	good := buf.Bytes()

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"truncated header", func(b []byte) []byte { return b[:10] }},
		{"bad magic", func(b []byte) []byte { b[0] = 'X'; return b }},
		{"bad version", func(b []byte) []byte { b[4] = 9; return b }},
		{"invalid config", func(b []byte) []byte { b[12] = 3; return b }},
		{"flipped payload", func(b []byte) []byte { b[snapshotHeaderSize+12] ^= 0xff; return b }},
		{"missing trailer", func(b []byte) []byte { return b[:len(b)-4] }},
		{"truncated block", func(b []byte) []byte { return b[:snapshotHeaderSize+20] }},
		{"oversized block", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[snapshotHeaderSize:], 1<<31)
			return b
		}},
		{"huge count", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[24:], 1<<31)
			return b
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(bytes.Clone(good))
			_, err := ReadIndex(context.Background(), bytes.NewReader(data))
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}
}

func TestParseCompression(t *testing.T) {
	c, err := ParseCompression("zstd")
	require.NoError(t, err)
	assert.Equal(t, CompressionZSTD, c)

	_, err = ParseCompression("brotli")
	assert.Error(t, err)
}
