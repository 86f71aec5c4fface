// Package partition computes the record-aligned, page-aligned byte ranges
// that the coordinator hands out to workers. It is the Go analog of
// mpifilterfasta_v3_2.c's computePartitionOffsets/setOffsQueryFile,
// reworked from MPI-rank bookkeeping into a single pass that returns a plan
// for however many workers actually fit the file.
package partition

import (
	"errors"
	"fmt"
)

// Range is one worker's partition: a page-aligned page_offset, the skew
// from that page boundary to the first record-start byte, and the number
// of meaningful bytes after page_offset+skew.
type Range struct {
	PageOffset int64
	Skew       int64
	Length     int64
}

// End returns the partition's half-open end offset, page_offset+skew+length.
func (r Range) End() int64 { return r.PageOffset + r.Skew + r.Length }

// PageSource reads raw bytes from the underlying file, used only for the
// Partitioner's backward record-boundary scan. The coordinator's
// implementation reads the query file with ReadAt.
type PageSource interface {
	// ReadRange returns the bytes in [offset, offset+length) of the input
	// file. length never extends past the file's end; callers clamp it.
	ReadRange(offset, length int64) ([]byte, error)
}

// isRecordStart reports whether b[i] begins a FASTA record: b[i] is the
// record marker and either i==0 or the preceding byte is a newline. At
// i==0 the preceding byte is not inspected.
func isRecordStart(b []byte, i int, marker byte) bool {
	if b[i] != marker {
		return false
	}
	if i == 0 {
		return true
	}
	return b[i-1] == '\n'
}

// findRecordStartBackward scans src's bytes in [lo, hi) backward from hi,
// returning the absolute offset of the rightmost record-start byte in that
// region. A marker at offset 0 counts as a record start without a preceding
// newline, since there is no byte -1 to inspect.
func findRecordStartBackward(src PageSource, lo, hi int64, marker byte, pageSize int64) (int64, bool, error) {
	if lo == 0 {
		// Offset 0 is a record start only if it holds the marker; the scan
		// below checks it last, so markers closer to hi are found first.
	}
	for end := hi; end > lo; end -= pageSize {
		start := end - pageSize
		if start < lo {
			start = lo
		}
		// Read one extra leading byte (when available) so a '>' at start
		// can be tested against its predecessor without a prior page.
		readFrom := start
		if readFrom > 0 {
			readFrom--
		}
		b, err := src.ReadRange(readFrom, end-readFrom)
		if err != nil {
			return 0, false, err
		}
		// b[0] corresponds to readFrom; real window begins at start.
		winOff := start - readFrom
		for i := len(b) - 1; i >= int(winOff); i-- {
			abs := readFrom + int64(i)
			if abs == 0 {
				if b[i] == marker {
					return 0, true, nil
				}
				continue
			}
			if b[i] == marker && b[i-1] == '\n' {
				return abs, true, nil
			}
		}
	}
	return 0, false, nil
}

// Plan computes the partition plan for a file of size fileSize, requesting
// workers partitions, with page size pageSize and FASTA record marker
// marker ('>'). It returns the plan and the possibly-shrunk worker count.
func Plan(fileSize int64, workers int, pageSize int64, marker byte, src PageSource) ([]Range, int, error) {
	if fileSize < 1 {
		return nil, 0, errors.New("partition: file size must be positive")
	}
	if workers < 1 {
		return nil, 0, errors.New("partition: worker count must be positive")
	}
	if pageSize < 1 {
		return nil, 0, errors.New("partition: page size must be positive")
	}

	n := workers
	for {
		if n == 1 {
			return []Range{{PageOffset: 0, Skew: 0, Length: fileSize}}, 1, nil
		}

		q := nominalPartitionSize(fileSize, n, pageSize)
		if q == 0 {
			n--
			continue
		}

		plan, ok, err := buildPlan(fileSize, n, pageSize, q, marker, src)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			n--
			continue
		}
		return plan, n, nil
	}
}

func nominalPartitionSize(fileSize int64, n int, pageSize int64) int64 {
	perWorker := ceilDiv(fileSize, int64(n))
	return floorDiv(perWorker, pageSize) * pageSize
}

func ceilDiv(a, b int64) int64 { return (a + b - 1) / b }
func floorDiv(a, b int64) int64 { return a / b }

// buildPlan runs the single forward pass of step 3 for a fixed n and Q. It
// returns ok=false when a partition's backward scan collapses to a
// zero-length partition, signaling the caller to shrink n and retry.
func buildPlan(fileSize int64, n int, pageSize, q int64, marker byte, src PageSource) ([]Range, bool, error) {
	plan := make([]Range, 0, n)
	var pageOffset, skew int64

	for i := 0; i < n; i++ {
		if i == 0 {
			pageOffset, skew = 0, 0
		} else {
			prev := plan[i-1]
			prevEnd := prev.End()
			pageOffset = floorDiv(prevEnd, pageSize) * pageSize
			skew = prevEnd - pageOffset
		}

		var length int64
		if i == n-1 {
			length = fileSize - (pageOffset + skew)
		} else {
			lo := pageOffset
			hi := pageOffset + q
			if hi > fileSize {
				hi = fileSize
			}
			end, found, err := findRecordStartBackward(src, lo, hi, marker, pageSize)
			if err != nil {
				return nil, false, err
			}
			if !found {
				return nil, false, fmt.Errorf("partition: no record start found within %d bytes of partition %d (malformed FASTA)", q, i)
			}
			length = end - (pageOffset + skew)
			if length <= 0 {
				return nil, false, nil
			}
		}

		plan = append(plan, Range{PageOffset: pageOffset, Skew: skew, Length: length})
	}

	var sum int64
	for _, r := range plan {
		sum += r.Length
	}
	if sum != fileSize {
		return nil, false, nil
	}
	return plan, true, nil
}
