// Package selector decides, for each parsed record, whether to emit it
// (filter or lookup predicate), renders it under the configured
// annotation policy, and enforces per-worker byte/record budgets with no
// partial-record writes.
package selector

import "filterfasta/internal/scanner"

// Mode selects which predicate is active. Exactly one is active per run;
// configuring both is a configuration error, rejected earlier by
// internal/cli.
type Mode int

const (
	ModeFilter Mode = iota
	ModeLookup
)

// Selector evaluates one predicate and writes accepted records through a
// budget-enforcing Writer.
type Selector struct {
	Mode      Mode
	Filter    FilterPredicate
	Lookup    LookupPredicate
	AnnotMode AnnotMode
	Writer    *Writer
}

// Process evaluates rec and, if accepted, renders and writes it. done
// reports that the writer's budget forbids writing any further record;
// the caller must stop scanning.
func (s *Selector) Process(rec scanner.Record) (accepted, done bool, err error) {
	header := rec.Header

	switch s.Mode {
	case ModeFilter:
		if !s.Filter.Accept(rec.SeqLen()) {
			return false, false, nil
		}
	case ModeLookup:
		eff, ok := s.Lookup.Match(rec.Header)
		if !ok {
			return false, false, nil
		}
		header = eff
	}

	parts := Render(s.AnnotMode, header, rec.Body)
	done, err = s.Writer.TryWrite(parts...)
	if err != nil {
		return false, false, err
	}
	if done {
		return false, true, nil
	}
	return true, false, nil
}
