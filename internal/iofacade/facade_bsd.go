//go:build darwin || freebsd || netbsd || openbsd

package iofacade

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// bsdMapper covers the BSD family, where posix_fadvise has no syscall
// binding in golang.org/x/sys/unix; Fadvise is a documented best-effort
// no-op there, since advisory failures must never be fatal.
type bsdMapper struct {
	pageSize int64
}

// NewMapper returns the platform Mapper.
func NewMapper() Mapper {
	return &bsdMapper{pageSize: int64(os.Getpagesize())}
}

func (m *bsdMapper) PageSize() int64 { return m.pageSize }

func (m *bsdMapper) Map(f *os.File, offset int64, length int) ([]byte, error) {
	if length == 0 {
		return nil, fmt.Errorf("iofacade: zero-length map")
	}
	b, err := unix.Mmap(int(f.Fd()), offset, length, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return b, nil
}

func (m *bsdMapper) Advise(b []byte, hints ...Advice) error {
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
		}
	}
	if flags == 0 {
		return nil
	}
	return unix.Madvise(b, flags)
}

func (m *bsdMapper) Fadvise(f *os.File, offset, length int64, hints ...Advice) error {
	return nil
}

func (m *bsdMapper) Lock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Mlock(b)
}

func (m *bsdMapper) Unlock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munlock(b)
}

func (m *bsdMapper) Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munmap(b)
}
