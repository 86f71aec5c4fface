//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package iofacade

import "os"

// otherMapper is the portable fallback for platforms without an mmap
// syscall binding in golang.org/x/sys/unix (notably Windows). It copies the
// requested range into a plain heap buffer instead of mapping it: correct,
// but without the zero-copy and kernel-advisory benefits of the unix
// path.
type otherMapper struct {
	pageSize int64
}

// NewMapper returns the platform Mapper.
func NewMapper() Mapper {
	return &otherMapper{pageSize: 4096}
}

func (m *otherMapper) PageSize() int64 { return m.pageSize }

func (m *otherMapper) Map(f *os.File, offset int64, length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := f.ReadAt(b, offset); err != nil {
		return nil, err
	}
	return b, nil
}

func (m *otherMapper) Advise(b []byte, hints ...Advice) error             { return nil }
func (m *otherMapper) Fadvise(f *os.File, offset, length int64, hints ...Advice) error { return nil }
func (m *otherMapper) Lock(b []byte) error                                { return nil }
func (m *otherMapper) Unlock(b []byte) error                              { return nil }
func (m *otherMapper) Unmap(b []byte) error                               { return nil }
