package selector

import "fmt"

// AnnotKind selects one of the four annotation policies for what gets
// written per accepted record.
type AnnotKind int

const (
	AnnotAll AnnotKind = iota
	AnnotNone
	AnnotFirstNWithBody
	AnnotFirstNWithoutBody
)

// AnnotMode is a validated annotation policy. N is meaningful only for the
// FirstN variants, and must be >= 1 there.
type AnnotMode struct {
	Kind AnnotKind
	N    int
}

// Validate rejects any decoded mode outside the four cases defined above,
// as a configuration error.
func (m AnnotMode) Validate() error {
	switch m.Kind {
	case AnnotAll, AnnotNone:
		return nil
	case AnnotFirstNWithBody, AnnotFirstNWithoutBody:
		if m.N < 1 {
			return fmt.Errorf("selector: annotation mode requires N >= 1, got %d", m.N)
		}
		return nil
	default:
		return fmt.Errorf("selector: unknown annotation mode %d", m.Kind)
	}
}

// delimiterPositions returns the offsets of every field delimiter ('|' or
// SOH) in header, skipping the leading marker byte at header[0].
func delimiterPositions(header []byte) []int {
	var pos []int
	for i := 1; i < len(header); i++ {
		if header[i] == '|' || header[i] == soh {
			pos = append(pos, i)
		}
	}
	return pos
}

// trimToNFields truncates header at the delimiter ending its N-th field.
// If header has fewer than N fields, the full header is returned
// unchanged.
func trimToNFields(header []byte, n int) []byte {
	delims := delimiterPositions(header)
	if n > len(delims) {
		return header
	}
	return header[:delims[n-1]]
}

// Render produces the bytes to write for one accepted record under mode,
// given its (possibly rewritten) header and raw body.
func Render(mode AnnotMode, header, body []byte) [][]byte {
	switch mode.Kind {
	case AnnotAll:
		return [][]byte{header, []byte("\n"), body}
	case AnnotNone:
		return [][]byte{body}
	case AnnotFirstNWithBody:
		trimmed := trimToNFields(header, mode.N)
		return [][]byte{trimmed, []byte("\n"), body}
	case AnnotFirstNWithoutBody:
		trimmed := trimToNFields(header, mode.N)
		if len(trimmed) > 0 && trimmed[0] == '>' {
			trimmed = trimmed[1:]
		}
		return [][]byte{trimmed, []byte("\n")}
	default:
		return nil
	}
}
