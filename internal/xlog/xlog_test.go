package xlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestWarnfAlwaysEmitsRegardlessOfLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, false)
	l.Warnf("advisory failed: %s", "madvise")
	if !strings.Contains(buf.String(), "advisory failed: madvise") {
		t.Fatalf("output = %q, want warning text", buf.String())
	}
}

func TestVerbosefGatedByVerboseFlag(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, false)
	l.Verbosef("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("output = %q, want nothing without -v", buf.String())
	}

	buf.Reset()
	l = New(&buf, true, false)
	l.Verbosef("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("output = %q, want verbose line", buf.String())
	}
}

func TestTraceImpliesVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, true)
	if !l.Verbose() || !l.Trace() {
		t.Fatalf("trace=true must imply verbose=true")
	}
	l.Tracef("trace line")
	if !strings.Contains(buf.String(), "trace line") {
		t.Fatalf("output = %q, want trace line", buf.String())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Warnf("x")
	l.Verbosef("y")
	l.Tracef("z")
	if l.Verbose() || l.Trace() {
		t.Fatalf("nil logger must report verbose=false trace=false")
	}
}
