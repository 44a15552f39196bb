// Package driver coordinates batch diagnosis of scenario files: it loads
// files, parses scenarios, runs the synthesizer over every declared
// mismatch, and collects per-file diagnostic bags. Files are processed in
// parallel; output order stays deterministic because results are slotted by
// input index.
package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"remedy/internal/diag"
	"remedy/internal/scenario"
	"remedy/internal/source"
	"remedy/internal/synth"
)

// Stage tracks where a file is in the pipeline, for progress reporting.
type Stage uint8

const (
	StageQueued Stage = iota
	StageLoad
	StageDiagnose
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageLoad:
		return "loading"
	case StageDiagnose:
		return "diagnosing"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is one progress notification.
type Event struct {
	Path        string
	Stage       Stage
	Diagnostics int
	Err         error
}

// Options configures a batch run.
type Options struct {
	// Jobs caps parallel workers; 0 means one per CPU.
	Jobs int
	// MaxDiagnostics caps each file's bag.
	MaxDiagnostics int
	// Cache, when non-nil, short-circuits files whose content digest was
	// diagnosed before.
	Cache *DiskCache
}

// FileResult is the outcome for one scenario file.
type FileResult struct {
	Path      string
	FileID    source.FileID
	Title     string
	Requests  int
	Bag       *diag.Bag
	FromCache bool
	Err       error
}

// DiagnoseAll processes the given scenario paths. Loading is sequential
// (the file set is not safe for concurrent growth); parsing and diagnosis
// run in parallel. The returned slice is ordered like paths.
func DiagnoseAll(ctx context.Context, fs *source.FileSet, paths []string, opts Options, metrics *Metrics, observe func(Event)) ([]FileResult, error) {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}
	results := make([]FileResult, len(paths))
	for i, p := range paths {
		emit(observe, Event{Path: p, Stage: StageLoad})
		id, err := fs.Load(p)
		results[i] = FileResult{Path: p, FileID: id, Err: err}
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i := range results {
		res := &results[i]
		if res.Err != nil {
			if metrics != nil {
				metrics.failures.Add(1)
			}
			emit(observe, Event{Path: res.Path, Stage: StageFailed, Err: res.Err})
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			emit(observe, Event{Path: res.Path, Stage: StageDiagnose})
			diagnoseOne(fs, res, opts, metrics)
			if res.Err != nil {
				if metrics != nil {
					metrics.failures.Add(1)
				}
				emit(observe, Event{Path: res.Path, Stage: StageFailed, Err: res.Err})
				return nil
			}
			emit(observe, Event{Path: res.Path, Stage: StageDone, Diagnostics: res.Bag.Len()})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func diagnoseOne(fs *source.FileSet, res *FileResult, opts Options, metrics *Metrics) {
	file := fs.Get(res.FileID)

	if opts.Cache != nil {
		if bag, title, ok := opts.Cache.Load(file.Hash, res.FileID); ok {
			res.Bag = bag
			res.Title = title
			res.FromCache = true
			if metrics != nil {
				metrics.cacheHits.Add(1)
			}
			return
		}
		if metrics != nil {
			metrics.cacheMisses.Add(1)
		}
	}

	sc, err := scenario.Parse(fs, res.FileID)
	if err != nil {
		res.Err = err
		return
	}
	res.Title = sc.Title
	res.Requests = len(sc.Requests)

	bag := diag.NewBag(opts.MaxDiagnostics)
	syn := synth.New(sc.In, sc.Strs, sc.Oracle)
	for _, req := range sc.Requests {
		d := syn.Diagnose(req.Expected, req.Actual, req.Expr)
		if metrics != nil {
			metrics.requests.Add(1)
			metrics.candidates.Add(int64(len(d.Candidates)))
		}
		bag.Add(syn.Prepare(d, req.Expr.At))
	}
	bag.Sort()
	res.Bag = bag

	if opts.Cache != nil {
		// Cache write failures are non-fatal; next run just recomputes.
		_ = opts.Cache.Store(file.Hash, sc.Title, bag)
	}
}

func emit(observe func(Event), ev Event) {
	if observe != nil {
		observe(ev)
	}
}
