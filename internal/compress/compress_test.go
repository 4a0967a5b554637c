package compress

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compressible() []byte {
	return []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 200))
}

func TestBlock_RoundTrip(t *testing.T) {
	for _, typ := range []Type{None, LZ4, ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			data := compressible()

			block, err := Compress(data, typ)
			require.NoError(t, err)
			if typ != None {
				assert.Less(t, len(block), len(data))
			}

			out, err := Decompress(block, typ)
			require.NoError(t, err)
			assert.Equal(t, data, out)
		})
	}
}

func TestBlock_IncompressibleStoredRaw(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}

	block, err := Compress(data, ZSTD)
	require.NoError(t, err)
	assert.Len(t, block, headerSize+len(data))

	out, err := Decompress(block, ZSTD)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestBlock_Empty(t *testing.T) {
	block, err := Compress(nil, LZ4)
	require.NoError(t, err)

	out, err := Decompress(block, LZ4)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBlock_Corrupt(t *testing.T) {
	_, err := Decompress([]byte{1, 2, 3}, LZ4)
	assert.ErrorIs(t, err, ErrCorrupt)

	block, err := Compress(compressible(), ZSTD)
	require.NoError(t, err)

	_, err = Decompress(block[:len(block)-4], ZSTD)
	assert.ErrorIs(t, err, ErrCorrupt)

	// A compressed block cannot be decoded as uncompressed.
	_, err = Decompress(block, None)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestStream_RoundTrip(t *testing.T) {
	for _, typ := range []Type{None, LZ4, ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(&buf, typ)
			require.NoError(t, err)

			_, err = w.Write(compressible())
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := NewReader(&buf, typ)
			require.NoError(t, err)
			defer r.Close()

			out, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, compressible(), out)
		})
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"", None, false},
		{"none", None, false},
		{"LZ4", LZ4, false},
		{"zstd", ZSTD, false},
		{"zst", ZSTD, false},
		{"gzip", None, true},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFromExt(t *testing.T) {
	assert.Equal(t, ZSTD, FromExt("corpus.csv.zst"))
	assert.Equal(t, LZ4, FromExt("corpus.txt.LZ4"))
	assert.Equal(t, None, FromExt("corpus.csv"))
	assert.Equal(t, "corpus.csv", TrimExt("corpus.csv.zst"))
	assert.Equal(t, "corpus.csv", TrimExt("corpus.csv"))
	assert.Equal(t, "compress.Type(9)", Type(9).String())
}

func TestRawSize(t *testing.T) {
	data := compressible()
	block, err := Compress(data, ZSTD)
	require.NoError(t, err)

	n, err := RawSize(block)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)

	_, err = RawSize(block[:3])
	assert.ErrorIs(t, err, ErrCorrupt)
}
