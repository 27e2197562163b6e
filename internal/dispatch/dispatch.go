// Package dispatch runs planned extraction jobs through a bounded worker
// pool and collects exactly one Result per job, in chapter order.
package dispatch

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/chaptersplit/internal/failure"
	"github.com/backmassage/chaptersplit/internal/planner"
)

// Extractor performs the extraction for one job.
type Extractor interface {
	// Available reports whether extraction can run at all.
	Available() error
	// Extract blocks until job's destination is written or the attempt
	// fails. It is called at most once per job.
	Extract(ctx context.Context, job planner.Job) error
}

// Logger is the subset of logging.Logger the dispatcher uses.
type Logger interface {
	Success(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Result is the outcome of one job. A nil Err means success.
type Result struct {
	Job     planner.Job
	Err     error
	Elapsed time.Duration
}

// Succeeded reports whether the job produced its destination.
func (r Result) Succeeded() bool { return r.Err == nil }

// Option adjusts a Dispatcher.
type Option func(*Dispatcher)

// WithJobTimeout bounds each extraction. Zero means no limit.
func WithJobTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.timeout = d }
}

// Dispatcher executes one plan. Build a new one per run.
type Dispatcher struct {
	limit   int
	timeout time.Duration
	ex      Extractor
	log     Logger
	now     func() time.Time
}

// New returns a dispatcher running at most limit jobs at once. A limit
// below 1 falls back to runtime.NumCPU().
func New(limit int, ex Extractor, log Logger, opts ...Option) *Dispatcher {
	if limit < 1 {
		limit = runtime.NumCPU()
	}
	d := &Dispatcher{limit: limit, ex: ex, log: log, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Limit returns the concurrency bound.
func (d *Dispatcher) Limit() int { return d.limit }

// Run executes jobs and returns their results indexed by position in jobs.
// It fails only when the extractor is unavailable, in which case no job is
// started. Individual failures never stop sibling jobs. When ctx is
// cancelled, running extractions are interrupted and jobs not yet started
// are recorded as failed without being attempted.
func (d *Dispatcher) Run(ctx context.Context, jobs []planner.Job) ([]Result, error) {
	if err := d.ex.Available(); err != nil {
		if !errors.Is(err, failure.ErrEnvironment) {
			err = failure.Mark(err, failure.ErrEnvironment, "extractor unavailable")
		}
		return nil, err
	}

	results := make([]Result, len(jobs))
	var finished atomic.Int64

	var g errgroup.Group
	g.SetLimit(d.limit)
	for i, job := range jobs {
		i, job := i, job
		if ctx.Err() != nil {
			results[i] = d.skip(ctx, job)
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = d.skip(ctx, job)
				return nil
			}
			results[i] = d.runOne(ctx, job)
			d.report(results[i], finished.Add(1), len(jobs))
			return nil
		})
	}
	// Workers record failures in results and return nil, so Wait only
	// reports an error if that contract is broken.
	return results, g.Wait()
}

func (d *Dispatcher) runOne(ctx context.Context, job planner.Job) Result {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	d.log.Debug("start %s -> %s", job, job.DestinationPath)
	start := d.now()
	err := d.ex.Extract(ctx, job)
	elapsed := d.now().Sub(start)

	if err != nil && !errors.Is(err, failure.ErrExtraction) {
		err = failure.Mark(err, failure.ErrExtraction, "extract %s", job)
	}
	return Result{Job: job, Err: err, Elapsed: elapsed}
}

func (d *Dispatcher) skip(ctx context.Context, job planner.Job) Result {
	return Result{
		Job: job,
		Err: failure.Mark(context.Cause(ctx), failure.ErrExtraction, "%s not started", job),
	}
}

func (d *Dispatcher) report(r Result, done int64, total int) {
	if r.Succeeded() {
		d.log.Success("[%d/%d] %s -> %s (%s)", done, total, r.Job, r.Job.DestinationPath, r.Elapsed.Round(time.Millisecond))
		return
	}
	d.log.Error("[%d/%d] %s failed: %v", done, total, r.Job, r.Err)
}
