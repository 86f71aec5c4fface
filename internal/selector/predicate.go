package selector

import "filterfasta/internal/hitindex"

// soh is the SOH delimiter (0x01) FASTA headers use to concatenate
// alternative identifiers onto one record.
const soh = 0x01

// FilterPredicate accepts a record whose sequence length matches any
// exact length or falls within any configured inclusive range. With
// nothing configured, every record is accepted.
type FilterPredicate struct {
	Lengths []int
	Ranges  [][2]int
}

// Accept reports whether seqlen satisfies the predicate.
func (p FilterPredicate) Accept(seqlen int) bool {
	if len(p.Lengths) == 0 && len(p.Ranges) == 0 {
		return true
	}
	for _, l := range p.Lengths {
		if seqlen == l {
			return true
		}
	}
	for _, r := range p.Ranges {
		if seqlen >= r[0] && seqlen <= r[1] {
			return true
		}
	}
	return false
}

// idSeg is one candidate identifier within a header: the bytes
// header[Start:End].
type idSeg struct {
	Start, End int
}

// headerIDCandidates returns the header's identifier list: the primary ID
// (bytes after the leading marker up to the next field delimiter or end
// of header) plus every ID that begins immediately after an SOH
// delimiter within the header. Fields separated only by '|' within one
// SOH segment are not themselves separate candidate IDs.
func headerIDCandidates(header []byte) []idSeg {
	var segs []idSeg
	pos := 1 // skip the leading '>'
	for pos <= len(header) {
		end := pos
		for end < len(header) && header[end] != '|' && header[end] != soh {
			end++
		}
		segs = append(segs, idSeg{Start: pos, End: end})

		next := -1
		for i := end; i < len(header); i++ {
			if header[i] == soh {
				next = i
				break
			}
		}
		if next == -1 {
			break
		}
		pos = next + 1
	}
	return segs
}

// LookupPredicate accepts a record if any of its candidate identifiers
// matches an indexed hit ID.
type LookupPredicate struct {
	Index *hitindex.Index
}

// Match reports whether header matches the hit index, returning the
// effective header to use for annotation rendering. When the match is on
// an alternative (SOH-delimited) identifier, the header is rewritten so
// that identifier becomes the leading one: the SOH before it is
// overwritten with the marker byte and the header start pointer advances
// to it.
func (p LookupPredicate) Match(header []byte) (effective []byte, ok bool) {
	for j, s := range headerIDCandidates(header) {
		_, at, matched := p.Index.Match(header[s.Start:s.End])
		if !matched {
			continue
		}
		p.Index.MarkSeen(at)
		if j == 0 {
			return header, true
		}
		rewritten := append([]byte{}, header...)
		rewritten[s.Start-1] = '>'
		return rewritten[s.Start-1:], true
	}
	return nil, false
}
