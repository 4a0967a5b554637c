package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]BlobStore {
	return map[string]BlobStore{
		"local":  NewLocalStore(t.TempDir()),
		"memory": NewMemoryStore(),
	}
}

func TestBlobStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Open(ctx, "missing.csv")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, "in/corpus.csv", []byte("doc_id,text\n0,hello\n")))

			w, err := s.Create(ctx, "out/groups.csv")
			require.NoError(t, err)
			_, err = io.WriteString(w, "doc_id,text,dupe_id,group_size\n")
			require.NoError(t, err)
			require.NoError(t, w.Sync())

			ok, err := Exists(ctx, s, "out/groups.csv")
			require.NoError(t, err)
			assert.False(t, ok, "visible before Close")

			require.NoError(t, w.Close())

			data, err := ReadAll(ctx, s, "out/groups.csv")
			require.NoError(t, err)
			assert.Equal(t, "doc_id,text,dupe_id,group_size\n", string(data))

			names, err := s.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"in/corpus.csv", "out/groups.csv"}, names)

			names, err = s.List(ctx, "in/")
			require.NoError(t, err)
			assert.Equal(t, []string{"in/corpus.csv"}, names)

			require.NoError(t, s.Delete(ctx, "in/corpus.csv"))
			require.NoError(t, s.Delete(ctx, "in/corpus.csv"))
			ok, err = Exists(ctx, s, "in/corpus.csv")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestBlobStore_EmptyBlob(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, "empty", nil))
			data, err := ReadAll(ctx, s, "empty")
			require.NoError(t, err)
			assert.Empty(t, data)
		})
	}
}

func TestMemoryStore_PutCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, s.Put(ctx, "x", data))
	data[0] = 'z'

	got, err := ReadAll(ctx, s, "x")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	s := NewLocalStore(filepath.Join(t.TempDir(), "does-not-exist"))
	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_NoTempFilesLeft(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root)
	require.NoError(t, s.Put(context.Background(), "a.bin", []byte{1, 2, 3}))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.bin", entries[0].Name())
}

func TestLocalStore_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewLocalStore(t.TempDir())
	_, err := s.Open(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Create(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBlobStore_Abort(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			w, err := s.Create(ctx, "partial.csv")
			require.NoError(t, err)
			_, err = io.WriteString(w, "doc_id,text")
			require.NoError(t, err)
			require.NoError(t, w.Abort())

			ok, err := Exists(ctx, s, "partial.csv")
			require.NoError(t, err)
			assert.False(t, ok)

			names, err := s.List(ctx, "")
			require.NoError(t, err)
			assert.Empty(t, names)
		})
	}
}
