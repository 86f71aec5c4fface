// Package iofacade isolates every OS-specific call the scanner needs —
// mmap, madvise, fadvise, mlock, munmap — behind a small interface, so
// internal/scanner never imports golang.org/x/sys/unix directly.
package iofacade

import "os"

// Advice mirrors the POSIX madvise/fadvise hints the scanner issues before
// mapping each window: sequential access, imminent use.
type Advice int

const (
	AdviceSequential Advice = iota
	AdviceWillNeed
	AdviceNoReuse
)

// Mapper maps byte ranges of an open file and advises the kernel about
// upcoming access patterns. The implementations hold no mutable state
// beyond the page size, so the coordinator shares one Mapper across all
// worker goroutines.
type Mapper interface {
	// Map returns a read-private mapping of [offset, offset+length) of f.
	// offset must be a multiple of PageSize().
	Map(f *os.File, offset int64, length int) ([]byte, error)

	// Advise issues non-fatal hints about how b (a slice returned by Map)
	// will be accessed. Failures are never fatal; callers log and continue.
	Advise(b []byte, hints ...Advice) error

	// Fadvise issues the file-level analog of Advise, scoped to
	// [offset, offset+length) of f.
	Fadvise(f *os.File, offset int64, length int64, hints ...Advice) error

	// Lock attempts to pin b in physical memory. Best-effort: failures are
	// logged by the caller and never abort the scan.
	Lock(b []byte) error

	// Unlock releases a prior Lock. Best-effort.
	Unlock(b []byte) error

	// Unmap releases a mapping returned by Map.
	Unmap(b []byte) error

	// PageSize returns the system page size used to align partitions and
	// scan windows.
	PageSize() int64
}
