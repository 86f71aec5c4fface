// Package scanner walks one worker's partition in page-aligned scan
// windows and emits FASTA records, reassembling records that straddle
// two windows via a carry buffer. It is the Go re-expression of
// mpifilterfasta_v3_2.c's adjustMapBegin/adjustMapEnd pair, rewritten as
// explicit (slice, position) bookkeeping instead of raw pointer
// arithmetic.
package scanner

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"filterfasta/internal/iofacade"
	"filterfasta/internal/partition"
)

// ErrEmptySequence reports a record whose body carries no sequence bytes
// (a header immediately followed by nothing, or by newlines only),
// mirroring getSequence's *seqSz == 0LL check in the original C source.
var ErrEmptySequence = errors.New("scanner: empty sequence")

// Record is one parsed FASTA record: Header excludes the trailing '\n' but
// includes the leading marker byte; Body is the raw sequence bytes,
// including any internal newlines, up to (exclusive) the next record or
// the partition's end.
type Record struct {
	Header []byte
	Body   []byte
}

// SeqLen is the logical sequence length: body bytes minus embedded '\n'.
func (r Record) SeqLen() int {
	return len(r.Body) - bytes.Count(r.Body, []byte{'\n'})
}

// Warner receives best-effort diagnostics (advisory failures); satisfied by
// *xlog.Logger.
type Warner interface {
	Warnf(format string, args ...any)
}

type nopWarner struct{}

func (nopWarner) Warnf(string, ...any) {}

// Options configures one partition scan.
type Options struct {
	// WindowSize is the maximum number of meaningful bytes scanned per
	// mapped window (default 256 MiB).
	WindowSize int64
	Marker     byte
	Warn       Warner
}

const DefaultWindowSize = 256 << 20

// Scan walks rng within f using mapper, calling visit for each parsed
// record in file order. visit must not retain slices from Record past its
// call, since the backing window is unmapped once the window's records
// have all been visited.
func Scan(f *os.File, mapper iofacade.Mapper, rng partition.Range, opts Options, visit func(Record) error) error {
	if opts.WindowSize <= 0 {
		opts.WindowSize = DefaultWindowSize
	}
	warn := opts.Warn
	if warn == nil {
		warn = nopWarner{}
	}
	marker := opts.Marker
	if marker == 0 {
		marker = '>'
	}
	pageSize := mapper.PageSize()

	partEnd := rng.End()
	logicalPos := rng.PageOffset + rng.Skew
	if logicalPos >= partEnd {
		return nil
	}

	var carry []byte
	first := true

	for logicalPos < partEnd {
		mapOffset := (logicalPos / pageSize) * pageSize
		windowEnd := logicalPos + opts.WindowSize
		if windowEnd > partEnd {
			windowEnd = partEnd
		}
		isLast := windowEnd >= partEnd
		mapLen := windowEnd - mapOffset

		mapped, err := mapper.Map(f, mapOffset, int(mapLen))
		if err != nil {
			return fmt.Errorf("scanner: mmap: %w", err)
		}

		if err := mapper.Advise(mapped, iofacade.AdviceSequential, iofacade.AdviceWillNeed); err != nil {
			warn.Warnf("madvise failed: %v", err)
		}
		if err := mapper.Fadvise(f, mapOffset, mapLen, iofacade.AdviceSequential, iofacade.AdviceWillNeed, iofacade.AdviceNoReuse); err != nil {
			warn.Warnf("fadvise failed: %v", err)
		}
		if err := mapper.Lock(mapped); err != nil {
			warn.Warnf("mlock failed: %v", err)
		}

		win := mapped[logicalPos-mapOffset:]

		if err := processWindow(win, marker, isLast, first, &carry, visit); err != nil {
			_ = mapper.Unlock(mapped)
			_ = mapper.Unmap(mapped)
			return err
		}

		if err := mapper.Unlock(mapped); err != nil {
			warn.Warnf("munlock failed: %v", err)
		}
		if err := mapper.Unmap(mapped); err != nil {
			return fmt.Errorf("scanner: munmap: %w", err)
		}

		logicalPos = windowEnd
		first = false
	}

	if len(carry) != 0 {
		return fmt.Errorf("scanner: %d carried bytes left unconsumed at end of partition (malformed FASTA)", len(carry))
	}
	return nil
}

// processWindow runs begin-adjust (reassembling any straddling record held
// in *carry) followed by the forward scan over the rest of win.
func processWindow(win []byte, marker byte, isLast, first bool, carry *[]byte, visit func(Record) error) error {
	cursor := 0

	if !first {
		p := findLineStartMarker(win, marker, *carry)
		if p == -1 {
			if isLast {
				rec, err := parseOne(append(*carry, win...), marker)
				if err != nil {
					return err
				}
				*carry = nil
				return emit(visit, rec)
			}
			*carry = append(*carry, win...)
			return nil
		}
		recData := append(append([]byte{}, *carry...), win[:p]...)
		rec, err := parseOne(recData, marker)
		if err != nil {
			return err
		}
		*carry = nil
		if err := emit(visit, rec); err != nil {
			return err
		}
		cursor = p
	}

	for cursor < len(win) {
		mstart := cursor
		if win[mstart] != marker {
			return fmt.Errorf("scanner: expected record marker at offset %d within window", mstart)
		}
		nl := bytes.IndexByte(win[mstart:], '\n')
		if nl == -1 {
			if isLast {
				return fmt.Errorf("scanner: header with no terminating newline at end of partition (malformed FASTA)")
			}
			*carry = append([]byte{}, win[mstart:]...)
			return nil
		}
		headerEnd := mstart + nl
		bodyStart := headerEnd + 1

		q := nextMarker(win, bodyStart, marker)
		if q == -1 {
			if isLast {
				rec := Record{Header: win[mstart:headerEnd], Body: win[bodyStart:]}
				return emit(visit, rec)
			}
			*carry = append([]byte{}, win[mstart:]...)
			return nil
		}
		rec := Record{Header: win[mstart:headerEnd], Body: win[bodyStart:q]}
		if err := emit(visit, rec); err != nil {
			return err
		}
		cursor = q
	}
	return nil
}

// findLineStartMarker returns the earliest index i in win such that win[i]
// is marker and the byte immediately preceding it (in carry, if i==0, else
// within win) is '\n'. carry is always non-empty when this is called,
// since only the first window of a partition starts with no carry.
func findLineStartMarker(win []byte, marker byte, carry []byte) int {
	for i := 0; i < len(win); i++ {
		if win[i] != marker {
			continue
		}
		if i == 0 {
			if len(carry) > 0 && carry[len(carry)-1] == '\n' {
				return i
			}
			continue
		}
		if win[i-1] == '\n' {
			return i
		}
	}
	return -1
}

// nextMarker returns the earliest index i >= from in win such that win[i]
// is marker and win[i-1] == '\n'. from is always > 0 for our callers.
func nextMarker(win []byte, from int, marker byte) int {
	for i := from; i < len(win); i++ {
		if win[i] == marker && win[i-1] == '\n' {
			return i
		}
	}
	return -1
}

// emit rejects a zero-length sequence before handing rec to visit.
func emit(visit func(Record) error, rec Record) error {
	if rec.SeqLen() == 0 {
		return fmt.Errorf("%w: header %q", ErrEmptySequence, rec.Header)
	}
	return visit(rec)
}

func parseOne(data []byte, marker byte) (Record, error) {
	if len(data) == 0 || data[0] != marker {
		return Record{}, fmt.Errorf("scanner: reassembled record does not start with marker")
	}
	nl := bytes.IndexByte(data, '\n')
	if nl == -1 {
		return Record{}, fmt.Errorf("scanner: reassembled header with no terminating newline (malformed FASTA)")
	}
	return Record{Header: data[:nl], Body: data[nl+1:]}, nil
}
