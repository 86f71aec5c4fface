package selector

import (
	"fmt"
	"io"
)

// Writer enforces the byte and record budgets: before writing, the exact
// number of bytes the record would add is computed, and if it
// would exceed the byte budget, writing stops with no partial record ever
// reaching the underlying writer. The record counter only advances after a
// full record is written.
type Writer struct {
	w              io.Writer
	byteLimit      int64 // 0 means unlimited
	maxRecords     int   // 0 means unlimited
	bytesWritten   int64
	recordsWritten int
	warn           Warner
}

// Warner receives non-fatal diagnostics (short writes).
type Warner interface {
	Warnf(format string, args ...any)
}

type nopWarner struct{}

func (nopWarner) Warnf(string, ...any) {}

// NewWriter wraps w with the given budgets. A zero byteLimit or maxRecords
// means that budget is unbounded.
func NewWriter(w io.Writer, byteLimit int64, maxRecords int, warn Warner) *Writer {
	if warn == nil {
		warn = nopWarner{}
	}
	return &Writer{w: w, byteLimit: byteLimit, maxRecords: maxRecords, warn: warn}
}

// TryWrite attempts to write parts as one atomic record. It returns
// done=true when the budget forbids writing this record at all (the caller
// must stop scanning); err is non-nil only for a genuine I/O failure.
func (wr *Writer) TryWrite(parts ...[]byte) (done bool, err error) {
	if wr.maxRecords > 0 && wr.recordsWritten >= wr.maxRecords {
		return true, nil
	}

	var total int64
	for _, p := range parts {
		total += int64(len(p))
	}
	if wr.byteLimit > 0 && wr.bytesWritten+total > wr.byteLimit {
		return true, nil
	}

	var written int64
	for _, p := range parts {
		n, err := wr.w.Write(p)
		written += int64(n)
		if err != nil {
			wr.bytesWritten += written
			return false, fmt.Errorf("selector: write: %w", err)
		}
		if n != len(p) {
			wr.warn.Warnf("short write: wrote %d of %d bytes", n, len(p))
		}
	}
	wr.bytesWritten += written
	wr.recordsWritten++
	return false, nil
}

// BytesWritten returns the cumulative number of bytes actually written.
func (wr *Writer) BytesWritten() int64 { return wr.bytesWritten }

// RecordsWritten returns the number of complete records written.
func (wr *Writer) RecordsWritten() int { return wr.recordsWritten }
