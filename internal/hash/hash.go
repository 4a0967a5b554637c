package hash

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// UpdateCRC32C extends a running CRC32C with data.
func UpdateCRC32C(crc uint32, data []byte) uint32 {
	return crc32.Update(crc, crc32cTable, data)
}

// String returns the xxhash64 of s.
func String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Band hashes a run of signature values. Values are fed little-endian so the
// result does not depend on the host byte order.
func Band(values []uint64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// Seeded derives a deterministic 64-bit value from a seed, an index and a tag.
// The tag distinguishes independent streams for the same (seed, index).
func Seeded(seed uint64, index int, tag byte) uint64 {
	var buf [17]byte
	binary.LittleEndian.PutUint64(buf[0:], seed)
	binary.LittleEndian.PutUint64(buf[8:], uint64(index))
	buf[16] = tag
	return xxhash.Sum64(buf[:])
}
