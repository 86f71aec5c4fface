// Command filterfasta-hitstat loads a hit list (BLAST tabular results or
// a plain ID list) and reports the resulting index's statistics, without
// scanning any FASTA input. Useful for sanity-checking a hit list before
// committing to a multi-gigabyte filterfasta run.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"filterfasta/internal/hitindex"
	"filterfasta/internal/runctl"
	"filterfasta/internal/xlog"
)

type options struct {
	blastTable string
	idList     string
	verbose    bool
	trace      bool
	help       bool
}

func parseArgs(fs *flag.FlagSet, argv []string) (options, error) {
	var opt options
	fs.StringVar(&opt.blastTable, "blast-table", "", "BLAST tabular results file")
	fs.StringVar(&opt.idList, "id-list", "", "plain ID-per-line file")
	fs.BoolVar(&opt.verbose, "v", false, "verbose diagnostics")
	fs.BoolVar(&opt.trace, "z", false, "trace-level diagnostics (implies -v)")
	fs.BoolVar(&opt.help, "h", false, "show this help message")
	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if opt.help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.blastTable == "" && opt.idList == "" {
		return opt, fmt.Errorf("one of --blast-table or --id-list is required")
	}
	if opt.blastTable != "" && opt.idList != "" {
		return opt, fmt.Errorf("--blast-table and --id-list are mutually exclusive")
	}
	return opt, nil
}

func main() {
	os.Exit(runctl.Run(os.Args[1:], os.Stderr, run))
}

func run(ctx context.Context, argv []string) error {
	fs := flag.NewFlagSet("filterfasta-hitstat", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "filterfasta-hitstat: inspect a hit list without scanning any FASTA input")
		fs.PrintDefaults()
	}
	opt, err := parseArgs(fs, argv)
	if err != nil {
		if err == flag.ErrHelp {
			return err
		}
		return runctl.NewConfigError(err)
	}

	log := xlog.New(os.Stderr, opt.verbose, opt.trace)

	var path string
	var kind hitindex.Kind
	if opt.blastTable != "" {
		path, kind = opt.blastTable, hitindex.KindBLASTTable
	} else {
		path, kind = opt.idList, hitindex.KindPlainList
	}

	f, err := os.Open(path)
	if err != nil {
		return runctl.NewConfigError(fmt.Errorf("open %q: %w", path, err))
	}
	defer f.Close()

	return report(os.Stdout, f, kind, log)
}

func report(w io.Writer, r io.Reader, kind hitindex.Kind, log *xlog.Logger) error {
	idx, err := hitindex.Build(r, kind, log)
	if err != nil {
		return fmt.Errorf("build hit index: %w", err)
	}

	fmt.Fprintf(w, "hit entries:      %d\n", idx.Len())
	fmt.Fprintf(w, "duplicates elided: %d\n", idx.Duplicates())
	if kind == hitindex.KindBLASTTable {
		fmt.Fprintf(w, "distinct queries:  %d\n", idx.DistinctQueries())
	}
	log.Verbosef("first few IDs: %v", firstN(idx.IDs(), 5))
	return nil
}

func firstN(ids []string, n int) []string {
	if len(ids) <= n {
		return ids
	}
	return ids[:n]
}
