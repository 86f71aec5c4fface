// Command filterfasta extracts a filtered subset of records from a FASTA
// file by exact/ranged sequence length or by hit-list lookup, writing
// well-formed FASTA to one or more output files.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"filterfasta/internal/cli"
	"filterfasta/internal/coordinator"
	"filterfasta/internal/hitindex"
	"filterfasta/internal/runctl"
	"filterfasta/internal/selector"
	"filterfasta/internal/xlog"
)

func main() {
	os.Exit(runctl.Run(os.Args[1:], os.Stderr, run))
}

func run(ctx context.Context, argv []string) error {
	start := time.Now()
	opt, err := cli.ParseArgs(cli.NewFlagSet("filterfasta"), argv)
	if err != nil {
		return runctl.NewConfigError(err)
	}
	if opt.Version {
		fmt.Println("filterfasta (unversioned development build)")
		return nil
	}

	log := xlog.New(os.Stderr, opt.Verbose, opt.Trace)

	cfg := coordinator.Config{
		QueryFile:  opt.QueryFile,
		OutputFile: opt.OutputFile,
		AnnotMode:  opt.AnnotMode,
		ByteLimit:  opt.ByteLimit,
		MaxRecords: opt.MaxRecords,
		Workers:    opt.Workers,
		WindowSize: opt.WindowSize,
		Combine:    opt.Combine,
		Warn:       log,
	}

	switch opt.Mode {
	case cli.ModeFilter:
		cfg.Mode = selector.ModeFilter
		cfg.Filter = selector.FilterPredicate{Lengths: opt.Lengths, Ranges: opt.Ranges}
	case cli.ModeLookupBLASTTable, cli.ModeLookupIDList:
		cfg.Mode = selector.ModeLookup
		path := opt.BLASTTable
		kind := hitindex.KindBLASTTable
		if opt.Mode == cli.ModeLookupIDList {
			path = opt.IDList
			kind = hitindex.KindPlainList
		}
		f, err := os.Open(path)
		if err != nil {
			return runctl.NewConfigError(fmt.Errorf("open hit source %q: %w", path, err))
		}
		defer f.Close()
		cfg.Hit = &coordinator.HitSource{Kind: kind, Reader: f}
	}

	res, err := coordinator.Run(ctx, cfg)
	if err != nil {
		return err
	}

	log.Verbosef("workers requested=%d used=%d", res.WorkersRequested, res.WorkersUsed)
	var records int
	var bytesWritten int64
	for _, w := range res.Workers {
		records += w.RecordsWritten
		bytesWritten += w.BytesWritten
	}
	log.Verbosef("records written=%d bytes written=%d", records, bytesWritten)
	if len(res.NotFound) > 0 {
		log.Verbosef("%d hit ID(s) not found, see %s.notFound", len(res.NotFound), opt.OutputFile)
	}
	log.Verbosef("elapsed %s", time.Since(start))
	return nil
}
