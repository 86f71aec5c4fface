//go:build linux

package iofacade

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// unixMapper implements Mapper with golang.org/x/sys/unix, grounded on
// other_examples/luhtfiimanal-go-cache-archive__shard.go (unix.Mmap-backed
// shard storage) and other_examples/marmos91-dittofs__mmap_shared.go (the
// unix/windows split this file follows).
type unixMapper struct {
	pageSize int64
}

// NewMapper returns the platform Mapper.
func NewMapper() Mapper {
	return &unixMapper{pageSize: int64(os.Getpagesize())}
}

func (m *unixMapper) PageSize() int64 { return m.pageSize }

func (m *unixMapper) Map(f *os.File, offset int64, length int) ([]byte, error) {
	if length == 0 {
		return nil, fmt.Errorf("iofacade: zero-length map")
	}
	b, err := unix.Mmap(int(f.Fd()), offset, length, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return b, nil
}

func (m *unixMapper) Advise(b []byte, hints ...Advice) error {
	if len(b) == 0 {
		return nil
	}
	var flags int
	for _, h := range hints {
		switch h {
		case AdviceSequential:
			flags |= unix.MADV_SEQUENTIAL
		case AdviceWillNeed:
			flags |= unix.MADV_WILLNEED
		case AdviceNoReuse:
			// MADV_DONTNEED is the closest unix.Madvise analog to
			// POSIX_FADV_NOREUSE for an in-memory mapping; applied only
			// via Fadvise on the file descriptor in practice.
		}
	}
	if flags == 0 {
		return nil
	}
	return unix.Madvise(b, flags)
}

func (m *unixMapper) Fadvise(f *os.File, offset, length int64, hints ...Advice) error {
	var firstErr error
	for _, h := range hints {
		var advice int
		switch h {
		case AdviceSequential:
			advice = unix.FADV_SEQUENTIAL
		case AdviceWillNeed:
			advice = unix.FADV_WILLNEED
		case AdviceNoReuse:
			advice = unix.FADV_NOREUSE
		default:
			continue
		}
		if err := unix.Fadvise(int(f.Fd()), offset, length, advice); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *unixMapper) Lock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Mlock(b)
}

func (m *unixMapper) Unlock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munlock(b)
}

func (m *unixMapper) Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munmap(b)
}
