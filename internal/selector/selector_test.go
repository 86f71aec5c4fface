package selector

import (
	"bytes"
	"strings"
	"testing"

	"filterfasta/internal/hitindex"
	"filterfasta/internal/scanner"
)

func rec(header, body string) scanner.Record {
	return scanner.Record{Header: []byte(header), Body: []byte(body)}
}

func TestFilterPredicateAcceptAllWhenUnconfigured(t *testing.T) {
	p := FilterPredicate{}
	if !p.Accept(0) || !p.Accept(12345) {
		t.Fatalf("unconfigured predicate must accept everything")
	}
}

func TestFilterPredicateExactAndRange(t *testing.T) {
	p := FilterPredicate{Lengths: []int{4}, Ranges: [][2]int{{10, 20}}}
	if !p.Accept(4) {
		t.Fatalf("expected exact length 4 to be accepted")
	}
	if !p.Accept(15) {
		t.Fatalf("expected 15 in [10,20] to be accepted")
	}
	if p.Accept(5) {
		t.Fatalf("expected 5 to be rejected")
	}
}

func TestSelectorFilterAllAnnotations(t *testing.T) {
	var buf bytes.Buffer
	s := &Selector{
		Mode:      ModeFilter,
		AnnotMode: AnnotMode{Kind: AnnotAll},
		Writer:    NewWriter(&buf, 0, 0, nil),
	}
	r := rec(">r1|alpha", "ACGT\n")
	accepted, done, err := s.Process(r)
	if err != nil || done || !accepted {
		t.Fatalf("Process = (%v,%v,%v)", accepted, done, err)
	}
	if buf.String() != ">r1|alpha\nACGT\n" {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestSelectorFirstOneWithBody(t *testing.T) {
	var buf bytes.Buffer
	s := &Selector{
		Mode:      ModeFilter,
		AnnotMode: AnnotMode{Kind: AnnotFirstNWithBody, N: 1},
		Writer:    NewWriter(&buf, 0, 0, nil),
	}
	_, _, err := s.Process(rec(">a|x", "BODY\n"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if buf.String() != ">a\nBODY\n" {
		t.Fatalf("output = %q, want %q", buf.String(), ">a\nBODY\n")
	}
}

func TestSelectorFirstOneWithoutBody(t *testing.T) {
	var buf bytes.Buffer
	s := &Selector{
		Mode:      ModeFilter,
		AnnotMode: AnnotMode{Kind: AnnotFirstNWithoutBody, N: 1},
		Writer:    NewWriter(&buf, 0, 0, nil),
	}
	_, _, err := s.Process(rec(">a|x|y", "BODY\n"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if buf.String() != "a\n" {
		t.Fatalf("output = %q, want %q", buf.String(), "a\n")
	}
}

func TestSelectorNoneAnnotation(t *testing.T) {
	var buf bytes.Buffer
	s := &Selector{
		Mode:      ModeFilter,
		AnnotMode: AnnotMode{Kind: AnnotNone},
		Writer:    NewWriter(&buf, 0, 0, nil),
	}
	_, _, err := s.Process(rec(">a|x", "BODY\n"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if buf.String() != "BODY\n" {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestSelectorByteBudgetStopsWithoutPartialWrite(t *testing.T) {
	var buf bytes.Buffer
	s := &Selector{
		Mode:      ModeFilter,
		AnnotMode: AnnotMode{Kind: AnnotAll},
		Writer:    NewWriter(&buf, 6, 0, nil), // only room for the first record
	}
	accepted, done, err := s.Process(rec(">a", "AA\n")) // ">a" + "\n" + "AA\n" = 6 bytes
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !accepted || done {
		t.Fatalf("first record should fit: accepted=%v done=%v", accepted, done)
	}
	before := buf.String()

	accepted, done, err = s.Process(rec(">b", "BB\n"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if accepted || !done {
		t.Fatalf("second record should be refused by the budget: accepted=%v done=%v", accepted, done)
	}
	if buf.String() != before {
		t.Fatalf("budget rejection must not write partial bytes: got %q after %q", buf.String(), before)
	}
}

func TestSelectorRecordBudget(t *testing.T) {
	var buf bytes.Buffer
	s := &Selector{
		Mode:      ModeFilter,
		AnnotMode: AnnotMode{Kind: AnnotNone},
		Writer:    NewWriter(&buf, 0, 1, nil),
	}
	_, done, _ := s.Process(rec(">a", "A\n"))
	if done {
		t.Fatalf("first record should be accepted")
	}
	_, done, _ = s.Process(rec(">b", "B\n"))
	if !done {
		t.Fatalf("second record should hit the record budget")
	}
}

func TestSelectorLookupMatchesPrimaryID(t *testing.T) {
	idx, err := hitindex.Build(strings.NewReader("h1\n"), hitindex.KindPlainList, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var buf bytes.Buffer
	s := &Selector{
		Mode:      ModeLookup,
		Lookup:    LookupPredicate{Index: idx},
		AnnotMode: AnnotMode{Kind: AnnotAll},
		Writer:    NewWriter(&buf, 0, 0, nil),
	}
	accepted, _, err := s.Process(rec(">h1|desc", "ACGT\n"))
	if err != nil || !accepted {
		t.Fatalf("Process = (%v, %v)", accepted, err)
	}
	if idx.SeenCounts()[0] != 1 {
		t.Fatalf("seen count = %d, want 1", idx.SeenCounts()[0])
	}
}

func TestSelectorLookupRewritesAlternateID(t *testing.T) {
	idx, err := hitindex.Build(strings.NewReader("h2\n"), hitindex.KindPlainList, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var buf bytes.Buffer
	s := &Selector{
		Mode:      ModeLookup,
		Lookup:    LookupPredicate{Index: idx},
		AnnotMode: AnnotMode{Kind: AnnotFirstNWithBody, N: 1},
		Writer:    NewWriter(&buf, 0, 0, nil),
	}
	header := ">z|foo\x01h2|bar"
	accepted, _, err := s.Process(rec(header, "ACGT\n"))
	if err != nil || !accepted {
		t.Fatalf("Process = (%v, %v)", accepted, err)
	}
	if buf.String() != ">h2\nACGT\n" {
		t.Fatalf("output = %q, want %q", buf.String(), ">h2\nACGT\n")
	}
}

func TestSelectorLookupNoMatchRejects(t *testing.T) {
	idx, err := hitindex.Build(strings.NewReader("h9\n"), hitindex.KindPlainList, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var buf bytes.Buffer
	s := &Selector{
		Mode:      ModeLookup,
		Lookup:    LookupPredicate{Index: idx},
		AnnotMode: AnnotMode{Kind: AnnotAll},
		Writer:    NewWriter(&buf, 0, 0, nil),
	}
	accepted, _, err := s.Process(rec(">h1|desc", "ACGT\n"))
	if err != nil || accepted {
		t.Fatalf("Process = (%v, %v), want not accepted", accepted, err)
	}
}

func TestAnnotModeValidate(t *testing.T) {
	cases := []struct {
		mode AnnotMode
		ok   bool
	}{
		{AnnotMode{Kind: AnnotAll}, true},
		{AnnotMode{Kind: AnnotNone}, true},
		{AnnotMode{Kind: AnnotFirstNWithBody, N: 1}, true},
		{AnnotMode{Kind: AnnotFirstNWithBody, N: 0}, false},
		{AnnotMode{Kind: AnnotFirstNWithoutBody, N: -3}, false},
		{AnnotMode{Kind: 99}, false},
	}
	for _, c := range cases {
		err := c.mode.Validate()
		if (err == nil) != c.ok {
			t.Errorf("Validate(%+v) error=%v, want ok=%v", c.mode, err, c.ok)
		}
	}
}
