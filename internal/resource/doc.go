// Package resource governs the memory and parallelism of a deduplication run.
//
// The Controller provides two limits:
//
//   - Memory: reservations against a hard byte budget (non-blocking, fail-fast)
//   - Workers: the size of the worker pool used by parallel stages
//
// # Memory Management
//
// Signature matrices dominate the memory of a run (records × permutations × 8
// bytes). Builders reserve that amount before any signature work so an
// oversized corpus fails immediately instead of late in the run:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(n * numPerm * 8); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(n * numPerm * 8)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully: memory calls become no-ops
// and Workers reports the default pool size.
package resource
