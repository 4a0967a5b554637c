package lsh

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/lshdedup/internal/compress"
	"github.com/hupe1980/lshdedup/internal/conv"
	"github.com/hupe1980/lshdedup/internal/hash"
	"github.com/hupe1980/lshdedup/minhash"
)

// Compression selects how snapshot bodies are compressed.
type Compression = compress.Type

const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZSTD = compress.ZSTD
)

// ParseCompression resolves "none", "lz4" or "zstd".
func ParseCompression(name string) (Compression, error) {
	return compress.ParseType(name)
}

// ErrCorruptSnapshot is returned when a snapshot cannot be decoded.
var ErrCorruptSnapshot = errors.New("lsh: corrupt snapshot")

const (
	snapshotMagic   = "LSHX"
	snapshotVersion = 1

	// magic, version u16, compression u8, reserved u8, numPerm u32,
	// numBands u32, seed u64, count u32
	snapshotHeaderSize = 4 + 2 + 1 + 1 + 4 + 4 + 8 + 4

	// Signatures are written in blocks of about this many uncompressed bytes.
	snapshotBlockBytes = 16 << 20
)

// WriteSnapshot writes the configuration and all signatures to w.
//
// Layout (little-endian):
//
//	header   [28]byte
//	blocks   repeated [len u32][compressed block]
//	trailer  CRC32C of the uncompressed signature bytes (u32)
func (idx *Index) WriteSnapshot(w io.Writer, c Compression) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	var hdr [snapshotHeaderSize]byte
	copy(hdr[0:4], snapshotMagic)
	binary.LittleEndian.PutUint16(hdr[4:], snapshotVersion)
	hdr[6] = byte(c)
	binary.LittleEndian.PutUint32(hdr[8:], uint32(idx.cfg.NumPerm))
	binary.LittleEndian.PutUint32(hdr[12:], uint32(idx.cfg.NumBands))
	binary.LittleEndian.PutUint64(hdr[16:], idx.cfg.Seed)
	binary.LittleEndian.PutUint32(hdr[24:], uint32(len(idx.sigs)))
	if _, err := bw.Write(hdr[:]); err != nil {
		return cw.n, err
	}

	perBlock := max(snapshotBlockBytes/(idx.cfg.NumPerm*8), 1)
	buf := make([]byte, 0, perBlock*idx.cfg.NumPerm*8)
	var crc uint32

	for lo := 0; lo < len(idx.sigs); lo += perBlock {
		buf = buf[:0]
		for _, sig := range idx.sigs[lo:min(lo+perBlock, len(idx.sigs))] {
			for _, v := range sig {
				buf = binary.LittleEndian.AppendUint64(buf, v)
			}
		}
		crc = hash.UpdateCRC32C(crc, buf)

		block, err := compress.Compress(buf, c)
		if err != nil {
			return cw.n, err
		}
		n, err := conv.IntToUint32(len(block))
		if err != nil {
			return cw.n, err
		}
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], n)
		if _, err := bw.Write(lenBuf[:]); err != nil {
			return cw.n, err
		}
		if _, err := bw.Write(block); err != nil {
			return cw.n, err
		}
	}

	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], crc)
	if _, err := bw.Write(trailer[:]); err != nil {
		return cw.n, err
	}
	err := bw.Flush()
	return cw.n, err
}

// ReadIndex restores an index written by WriteSnapshot. The shingler is not
// part of a snapshot; pass WithShingler when the index is queried by text.
func ReadIndex(ctx context.Context, r io.Reader, opts ...Option) (*Index, error) {
	br := bufio.NewReader(r)

	var hdr [snapshotHeaderSize]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrCorruptSnapshot, err)
	}
	if string(hdr[0:4]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorruptSnapshot, hdr[0:4])
	}
	if v := binary.LittleEndian.Uint16(hdr[4:]); v != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, v)
	}

	c := Compression(hdr[6])
	numPerm, err1 := conv.Uint32ToInt(binary.LittleEndian.Uint32(hdr[8:]))
	numBands, err2 := conv.Uint32ToInt(binary.LittleEndian.Uint32(hdr[12:]))
	count, err3 := conv.Uint32ToInt(binary.LittleEndian.Uint32(hdr[24:]))
	if err := errors.Join(err1, err2, err3); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	cfg := Config{
		NumPerm:  numPerm,
		NumBands: numBands,
		Seed:     binary.LittleEndian.Uint64(hdr[16:]),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	width := cfg.NumPerm * 8
	// an incompressible block is stored raw behind a small header
	maxBlock := max(snapshotBlockBytes, width) + 64

	// count is untrusted until the blocks are read
	sigs := make([]minhash.Signature, 0, min(count, 1<<16))
	var crc uint32
	for len(sigs) < count {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var lenBuf [4]byte
		if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
			return nil, fmt.Errorf("%w: reading block length: %w", ErrCorruptSnapshot, err)
		}
		n := binary.LittleEndian.Uint32(lenBuf[:])
		if int64(n) > int64(maxBlock) {
			return nil, fmt.Errorf("%w: block length %d exceeds %d", ErrCorruptSnapshot, n, maxBlock)
		}
		block := make([]byte, n)
		if _, err := io.ReadFull(br, block); err != nil {
			return nil, fmt.Errorf("%w: reading block: %w", ErrCorruptSnapshot, err)
		}

		size, err := compress.RawSize(block)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
		}
		if size > maxBlock {
			return nil, fmt.Errorf("%w: block header claims %d bytes", ErrCorruptSnapshot, size)
		}
		raw, err := compress.Decompress(block, c)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
		}
		if len(raw) == 0 || len(raw)%width != 0 || len(sigs)+len(raw)/width > count {
			return nil, fmt.Errorf("%w: block of %d bytes does not hold whole signatures", ErrCorruptSnapshot, len(raw))
		}
		crc = hash.UpdateCRC32C(crc, raw)

		for off := 0; off < len(raw); off += width {
			sig := make(minhash.Signature, cfg.NumPerm)
			for i := range sig {
				sig[i] = binary.LittleEndian.Uint64(raw[off+i*8:])
			}
			sigs = append(sigs, sig)
		}
	}

	var trailer [4]byte
	if _, err := io.ReadFull(br, trailer[:]); err != nil {
		return nil, fmt.Errorf("%w: reading checksum: %w", ErrCorruptSnapshot, err)
	}
	if want := binary.LittleEndian.Uint32(trailer[:]); want != crc {
		return nil, fmt.Errorf("%w: checksum mismatch (stored %08x, computed %08x)", ErrCorruptSnapshot, want, crc)
	}

	return FromSignatures(ctx, sigs, cfg, opts...)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
