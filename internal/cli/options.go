// Package cli parses and validates filterfasta's command-line options:
// the one external collaborator every concrete binary needs, kept
// separate from the core scanning/selection packages.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"filterfasta/internal/selector"
)

// Mode selects which of the two mutually exclusive run modes is active.
type Mode string

const (
	ModeFilter          Mode = "filter"
	ModeLookupBLASTTable Mode = "lookup-blast-table"
	ModeLookupIDList     Mode = "lookup-id-list"
)

const maxLengthsOrRanges = 5

// Options holds every validated command-line option.
type Options struct {
	QueryFile  string
	OutputFile string
	MaxRecords int

	Lengths []int
	Ranges  [][2]int

	AnnotMode selector.AnnotMode
	ByteLimit int64

	Mode       Mode
	BLASTTable string
	IDList     string

	Workers    int
	WindowSize int64

	Combine bool

	Verbose bool
	Trace   bool

	Help    bool
	Version bool
}

type intSlice []int

func (s *intSlice) String() string { return fmt.Sprint(*s) }
func (s *intSlice) Set(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid length %q: %w", v, err)
	}
	*s = append(*s, n)
	return nil
}

type rangeSlice [][2]int

func (s *rangeSlice) String() string { return fmt.Sprint(*s) }
func (s *rangeSlice) Set(v string) error {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid range %q, want lo:hi", v)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("invalid range %q: %w", v, err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("invalid range %q: %w", v, err)
	}
	if lo > hi {
		return fmt.Errorf("invalid range %q: lo must be <= hi", v)
	}
	*s = append(*s, [2]int{lo, hi})
	return nil
}

// NewFlagSet returns a configured FlagSet with filterfasta's usage text.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `%s: extract a filtered subset of records from a FASTA file

Usage of %s:
`, name, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returning a validated Options.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var mode string
	var annot string
	var byteLimit string
	var lengths intSlice
	var ranges rangeSlice

	fs.StringVar(&opt.QueryFile, "query", "", "input FASTA file [required]")
	fs.StringVar(&opt.OutputFile, "output", "filter.out", "output FASTA file [filter.out]")
	fs.IntVar(&opt.MaxRecords, "max-records", 0, "upper bound on records to extract (0 = unlimited) [0]")

	fs.Var(&lengths, "length", "exact sequence length to accept (repeatable, max 5)")
	fs.Var(&ranges, "range", "inclusive lo:hi sequence length range to accept (repeatable, max 5)")

	fs.StringVar(&annot, "annot", "all", "annotation policy: all | none | first<N> | firstbare<N> [all]")
	fs.StringVar(&byteLimit, "byte-limit", "", "upper bound on per-worker bytes written; accepts KB/MB/GB suffixes")

	fs.StringVar(&mode, "mode", "filter", "filter | lookup-blast-table | lookup-id-list [filter]")
	fs.StringVar(&opt.BLASTTable, "blast-table", "", "BLAST tabular results file (mode=lookup-blast-table)")
	fs.StringVar(&opt.IDList, "id-list", "", "plain ID-per-line file (mode=lookup-id-list)")

	fs.IntVar(&opt.Workers, "workers", 1, "number of worker partitions [1]")
	fs.Int64Var(&opt.WindowSize, "window-size", 0, "scan window size in bytes (0 = default 256MiB) [0]")
	fs.BoolVar(&opt.Combine, "combine", false, "concatenate per-worker outputs into one file [false]")

	fs.BoolVar(&opt.Verbose, "v", false, "verbose diagnostics [false]")
	fs.BoolVar(&opt.Trace, "z", false, "trace-level timing diagnostics (implies -v) [false]")
	fs.BoolVar(&opt.Help, "h", false, "show this help message [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if opt.Help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	opt.Lengths = dedupInts(lengths)
	opt.Ranges = dedupRanges(ranges)
	opt.Mode = Mode(mode)

	var err error
	opt.AnnotMode, err = parseAnnotMode(annot)
	if err != nil {
		return opt, err
	}
	opt.ByteLimit, err = parseByteLimit(byteLimit)
	if err != nil {
		return opt, err
	}

	if err := opt.Validate(); err != nil {
		return opt, err
	}
	return opt, nil
}

func parseAnnotMode(s string) (selector.AnnotMode, error) {
	switch {
	case s == "all" || s == "":
		return selector.AnnotMode{Kind: selector.AnnotAll}, nil
	case s == "none":
		return selector.AnnotMode{Kind: selector.AnnotNone}, nil
	case strings.HasPrefix(s, "firstbare"):
		n, err := strconv.Atoi(s[len("firstbare"):])
		if err != nil {
			return selector.AnnotMode{}, fmt.Errorf("invalid --annot %q: %w", s, err)
		}
		return selector.AnnotMode{Kind: selector.AnnotFirstNWithoutBody, N: n}, nil
	case strings.HasPrefix(s, "first"):
		n, err := strconv.Atoi(s[len("first"):])
		if err != nil {
			return selector.AnnotMode{}, fmt.Errorf("invalid --annot %q: %w", s, err)
		}
		return selector.AnnotMode{Kind: selector.AnnotFirstNWithBody, N: n}, nil
	default:
		return selector.AnnotMode{}, fmt.Errorf("invalid --annot %q", s)
	}
}

// parseByteLimit accepts a bare byte count or a count suffixed with KB, MB,
// or GB (powers of 1024).
func parseByteLimit(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "GB"):
		mult = 1 << 30
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		mult = 1 << 20
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		mult = 1 << 10
		s = strings.TrimSuffix(s, "KB")
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid --byte-limit: %w", err)
	}
	if n < 0 {
		return 0, errors.New("--byte-limit must be >= 0")
	}
	return n * mult, nil
}

// Validate checks for invalid option combinations.
func (o Options) Validate() error {
	if o.QueryFile == "" {
		return errors.New("--query is required")
	}
	if o.QueryFile == o.OutputFile {
		return errors.New("--query must differ from --output")
	}
	if len(o.Lengths) > maxLengthsOrRanges {
		return fmt.Errorf("at most %d --length values are accepted", maxLengthsOrRanges)
	}
	if len(o.Ranges) > maxLengthsOrRanges {
		return fmt.Errorf("at most %d --range values are accepted", maxLengthsOrRanges)
	}

	switch o.Mode {
	case ModeFilter:
		if o.BLASTTable != "" || o.IDList != "" {
			return errors.New("--blast-table/--id-list require mode=lookup-blast-table or lookup-id-list")
		}
	case ModeLookupBLASTTable:
		if o.BLASTTable == "" {
			return errors.New("mode=lookup-blast-table requires --blast-table")
		}
		if o.IDList != "" {
			return errors.New("mode=lookup-blast-table cannot also set --id-list")
		}
		if o.QueryFile == o.BLASTTable {
			return errors.New("--query must differ from --blast-table")
		}
		if len(o.Lengths) != 0 || len(o.Ranges) != 0 {
			return errors.New("lookup mode and filter lengths/ranges are mutually exclusive")
		}
	case ModeLookupIDList:
		if o.IDList == "" {
			return errors.New("mode=lookup-id-list requires --id-list")
		}
		if o.BLASTTable != "" {
			return errors.New("mode=lookup-id-list cannot also set --blast-table")
		}
		if o.QueryFile == o.IDList {
			return errors.New("--query must differ from --id-list")
		}
		if len(o.Lengths) != 0 || len(o.Ranges) != 0 {
			return errors.New("lookup mode and filter lengths/ranges are mutually exclusive")
		}
	default:
		return fmt.Errorf("invalid --mode %q", o.Mode)
	}

	if err := o.AnnotMode.Validate(); err != nil {
		return err
	}
	if o.Workers < 1 {
		return errors.New("--workers must be >= 1")
	}
	if o.WindowSize < 0 {
		return errors.New("--window-size must be >= 0")
	}
	if o.MaxRecords < 0 {
		return errors.New("--max-records must be >= 0")
	}
	return nil
}

func dedupInts(in []int) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func dedupRanges(in [][2]int) [][2]int {
	seen := map[[2]int]bool{}
	out := make([][2]int, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
