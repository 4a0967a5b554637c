// Package mmap maps files read-only into memory.
//
// Corpora and snapshots are read front to back, so LocalStore maps them and
// advises the kernel of sequential access:
//
//	m, err := mmap.Open("corpus.csv")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	r := io.NewSectionReader(m, 0, int64(m.Size()))
//
// Unix uses mmap(2) and madvise(2); Windows uses MapViewOfFile and ignores
// access hints.
package mmap
