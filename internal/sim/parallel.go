package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/rdsim/internal/grayscott"
)

// Job is one independent engine run inside a batch.
type Job struct {
	Name string
	// Engine must carry its own Rand; sources are not shared across jobs.
	Engine grayscott.Config
	Run    Config
	// Metrics builds a fresh metric set for the job. May be nil.
	Metrics func() []Metric
	// Setup runs on the new engine before stepping. May be nil.
	Setup func(e *grayscott.Engine) error
}

type JobResult struct {
	Job    Job
	Result *Result
	// Final is a copy of V after the run.
	Final *grayscott.Field
}

// RunBatch runs jobs concurrently with at most limit engines in flight.
// limit <= 0 uses GOMAXPROCS. The first error cancels the remaining jobs.
// Results keep the order of jobs.
func RunBatch(ctx context.Context, jobs []Job, limit int) ([]JobResult, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]JobResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, job := range jobs {
		g.Go(func() error {
			eng, err := grayscott.New(job.Engine)
			if err != nil {
				return err
			}
			if job.Setup != nil {
				if err := job.Setup(eng); err != nil {
					return err
				}
			}

			s := New(eng)
			if job.Metrics != nil {
				for _, m := range job.Metrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, job.Run)
			if err != nil {
				return err
			}
			final, _ := eng.Snapshot(grayscott.V)
			results[i] = JobResult{Job: job, Result: res, Final: final}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
