// Package coordinator owns worker-pool sizing, partition-plan
// distribution, and the pre-/post-scan bookkeeping a run needs: shrinking
// the pool when the file is too small, reducing the hit index's
// seen-counts across workers, emitting the not-found report, and
// optionally concatenating per-worker outputs.
//
// Each "worker" here is a goroutine rather than an MPI rank (the
// original tool's distributed-process model): one goroutine per partition,
// each storing its WorkerResult in a rank-indexed slice, joined with a
// WaitGroup.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"filterfasta/internal/hitindex"
	"filterfasta/internal/iofacade"
	"filterfasta/internal/partition"
	"filterfasta/internal/scanner"
	"filterfasta/internal/selector"
)

// Warner receives best-effort diagnostics; satisfied by *xlog.Logger.
type Warner interface {
	Warnf(format string, args ...any)
	Verbosef(format string, args ...any)
	Tracef(format string, args ...any)
}

type nopWarner struct{}

func (nopWarner) Warnf(string, ...any)   {}
func (nopWarner) Verbosef(string, ...any) {}
func (nopWarner) Tracef(string, ...any)   {}

// HitSource configures lookup mode's hit-list build.
type HitSource struct {
	Kind   hitindex.Kind
	Reader io.Reader
}

// Config is the coordinator's fully-resolved run configuration. It is
// deliberately independent of internal/cli's Options so that option
// parsing can evolve without this package importing it (cmd/filterfasta
// does the translation).
type Config struct {
	QueryFile  string
	OutputFile string

	Mode   selector.Mode
	Filter selector.FilterPredicate
	Hit    *HitSource // non-nil iff Mode == selector.ModeLookup

	AnnotMode  selector.AnnotMode
	ByteLimit  int64
	MaxRecords int

	Workers    int
	WindowSize int64
	Combine    bool

	Warn Warner
}

// WorkerResult is one worker's scan outcome.
type WorkerResult struct {
	Rank           int
	Path           string
	BytesWritten   int64
	RecordsWritten int
	SeenCounts     []int // nil unless lookup mode
	Err            error
}

// Result is the coordinator's aggregate outcome.
type Result struct {
	WorkersRequested int
	WorkersUsed      int
	Workers          []WorkerResult
	NotFound         []string
	CombinedPath     string
}

type fileSource struct{ f *os.File }

func (s fileSource) ReadRange(offset, length int64) ([]byte, error) {
	b := make([]byte, length)
	n, err := s.f.ReadAt(b, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return b[:n], nil
}

// errStopWorker signals that a worker's selector budget forbade writing
// any further record; it is not a failure.
var errStopWorker = errors.New("coordinator: worker budget reached")

// Run executes the full pre-scan/scan/post-scan pipeline.
func Run(ctx context.Context, cfg Config) (Result, error) {
	warn := cfg.Warn
	if warn == nil {
		warn = nopWarner{}
	}

	info, err := os.Stat(cfg.QueryFile)
	if err != nil {
		return Result{}, fmt.Errorf("coordinator: stat query file: %w", err)
	}
	if info.Size() == 0 {
		return Result{}, fmt.Errorf("coordinator: empty input file %q", cfg.QueryFile)
	}

	planFile, err := os.Open(cfg.QueryFile)
	if err != nil {
		return Result{}, fmt.Errorf("coordinator: open query file: %w", err)
	}
	defer planFile.Close()

	mapper := iofacade.NewMapper()
	partitionStart := time.Now()
	plan, nPrime, err := partition.Plan(info.Size(), cfg.Workers, mapper.PageSize(), '>', fileSource{planFile})
	if err != nil {
		return Result{}, fmt.Errorf("coordinator: partition: %w", err)
	}
	warn.Tracef("partition phase: %d range(s) in %s", len(plan), time.Since(partitionStart))
	if nPrime != cfg.Workers {
		warn.Verbosef("worker count shrunk from %d to %d (file too small to give every worker a partition)", cfg.Workers, nPrime)
	}

	var hitIdx *hitindex.Index
	if cfg.Hit != nil {
		hitIdx, err = hitindex.Build(cfg.Hit.Reader, cfg.Hit.Kind, warn)
		if err != nil {
			return Result{}, fmt.Errorf("coordinator: build hit index: %w", err)
		}
		warn.Verbosef("hit index: %d entries, %d duplicates elided", hitIdx.Len(), hitIdx.Duplicates())
	}

	scanStart := time.Now()
	results := runWorkers(ctx, cfg, plan, mapper, hitIdx, warn)
	warn.Tracef("scan phase: %d worker(s) in %s", len(results), time.Since(scanStart))

	res := Result{WorkersRequested: cfg.Workers, WorkersUsed: nPrime, Workers: results}

	var firstErr error
	for _, r := range results {
		if r.Err != nil && firstErr == nil {
			firstErr = r.Err
		}
	}

	if hitIdx != nil {
		perWorker := make([][]int, 0, len(results))
		for _, r := range results {
			if r.SeenCounts != nil {
				perWorker = append(perWorker, r.SeenCounts)
			}
		}
		totals := hitindex.Reduce(perWorker)
		notFound := hitindex.NotFound(hitIdx.IDs(), totals)
		res.NotFound = notFound
		if err := writeNotFound(cfg.OutputFile, notFound); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, r := range results {
		removeIfEmpty(r.Path)
	}

	if cfg.Combine && nPrime > 1 && firstErr == nil {
		combineStart := time.Now()
		combined, err := combineOutputs(cfg.OutputFile, results)
		if err != nil {
			firstErr = err
		} else {
			res.CombinedPath = combined
			warn.Tracef("combine phase: %d file(s) in %s", len(results), time.Since(combineStart))
		}
	}

	return res, firstErr
}

func runWorkers(ctx context.Context, cfg Config, plan []partition.Range, mapper iofacade.Mapper, hitIdx *hitindex.Index, warn Warner) []WorkerResult {
	n := len(plan)
	results := make([]WorkerResult, n)
	var wg sync.WaitGroup
	wg.Add(n)

	for rank := 0; rank < n; rank++ {
		rank := rank
		go func() {
			defer wg.Done()
			if ctx.Err() != nil {
				results[rank] = WorkerResult{Rank: rank, Err: ctx.Err()}
				return
			}
			results[rank] = runWorker(cfg, rank, n, plan[rank], mapper, hitIdx, warn)
		}()
	}
	wg.Wait()
	return results
}

func runWorker(cfg Config, rank, total int, rng partition.Range, mapper iofacade.Mapper, hitIdx *hitindex.Index, warn Warner) WorkerResult {
	path := workerOutputPath(cfg.OutputFile, rank, total)
	res := WorkerResult{Rank: rank, Path: path}

	f, err := os.Open(cfg.QueryFile)
	if err != nil {
		res.Err = fmt.Errorf("worker %d: open query file: %w", rank, err)
		return res
	}
	defer f.Close()

	out, err := os.Create(path)
	if err != nil {
		res.Err = fmt.Errorf("worker %d: create output file: %w", rank, err)
		return res
	}
	defer out.Close()

	sel := &selector.Selector{
		Mode:      cfg.Mode,
		Filter:    cfg.Filter,
		AnnotMode: cfg.AnnotMode,
		Writer:    selector.NewWriter(out, cfg.ByteLimit, cfg.MaxRecords, warn),
	}
	if hitIdx != nil {
		sel.Lookup = selector.LookupPredicate{Index: hitIdx.Clone()}
	}

	scanOpts := scanner.Options{WindowSize: cfg.WindowSize, Marker: '>', Warn: warn}
	err = scanner.Scan(f, mapper, rng, scanOpts, func(rec scanner.Record) error {
		_, done, err := sel.Process(rec)
		if err != nil {
			return err
		}
		if done {
			return errStopWorker
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWorker) {
		res.Err = fmt.Errorf("worker %d: %w", rank, err)
	}

	res.BytesWritten = sel.Writer.BytesWritten()
	res.RecordsWritten = sel.Writer.RecordsWritten()
	if hitIdx != nil {
		res.SeenCounts = sel.Lookup.Index.SeenCounts()
	}
	return res
}

// workerOutputPath appends the worker's rank to outputFile when there is
// more than one worker: "<output><rank>".
func workerOutputPath(outputFile string, rank, total int) string {
	if total <= 1 {
		return outputFile
	}
	return outputFile + strconv.Itoa(rank)
}

func removeIfEmpty(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Size() == 0 {
		_ = os.Remove(path)
	}
}

func writeNotFound(outputFile string, ids []string) error {
	path := outputFile + ".notFound"
	if len(ids) == 0 {
		_ = os.Remove(path)
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("coordinator: create not-found report: %w", err)
	}
	defer f.Close()
	for _, id := range ids {
		if _, err := fmt.Fprintln(f, id); err != nil {
			return fmt.Errorf("coordinator: write not-found report: %w", err)
		}
	}
	return nil
}

// combineOutputs concatenates each worker's intermediate file into
// outputFile in ascending rank order, preserving record order, then
// removes the consumed per-rank files. Pre-truncates the combined file
// and appends each rank's bytes in order.
func combineOutputs(outputFile string, results []WorkerResult) (string, error) {
	combined, err := os.Create(outputFile)
	if err != nil {
		return "", fmt.Errorf("coordinator: create combined output: %w", err)
	}
	defer combined.Close()

	var total int64
	for _, r := range results {
		total += r.BytesWritten
	}
	if err := combined.Truncate(total); err != nil {
		return "", fmt.Errorf("coordinator: pre-size combined output: %w", err)
	}

	for _, r := range results {
		if r.Path == outputFile {
			continue
		}
		if err := appendFile(combined, r.Path); err != nil {
			return "", err
		}
	}
	for _, r := range results {
		if r.Path != outputFile {
			_ = os.Remove(r.Path)
		}
	}
	return outputFile, nil
}

func appendFile(dst *os.File, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // removed as empty during teardown
		}
		return fmt.Errorf("coordinator: open %s for combining: %w", srcPath, err)
	}
	defer src.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("coordinator: append %s: %w", srcPath, err)
	}
	return nil
}
