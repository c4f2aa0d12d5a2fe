// Package batch runs response exports for several surveys in parallel.
package batch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/surveyarr/qualtrics"
	"github.com/s0up4200/surveyarr/table"
)

const (
	DefaultConcurrency = 4
	MaxConcurrency     = 20
)

// Exporter runs one complete response export
type Exporter interface {
	ExportResponses(ctx context.Context, req qualtrics.ExportRequest) (*table.Table, error)
}

// Job is one survey to export
type Job struct {
	Request qualtrics.ExportRequest
	// Label identifies the job in results and logs; defaults to the survey id
	Label string
}

func (j Job) label() string {
	if j.Label != "" {
		return j.Label
	}
	return j.Request.SurveyID
}

// Result is the outcome of one job, in the same position as its Job
type Result struct {
	Label string
	Rows  *table.Table
	Err   error
}

// JobError contains information about a failed export
type JobError struct {
	Label string
	Err   error
}

// Error implements the error interface
func (e JobError) Error() string {
	return fmt.Sprintf("export %s failed: %v", e.Label, e.Err)
}

// Unwrap returns the underlying export error
func (e JobError) Unwrap() error {
	return e.Err
}

// Summary collects the results of ExportAll
type Summary struct {
	Results []Result
}

// Failed returns the failed jobs in job order
func (s Summary) Failed() []JobError {
	var failed []JobError
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, JobError{Label: r.Label, Err: r.Err})
		}
	}
	return failed
}

// Succeeded returns the number of jobs that produced rows
func (s Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// ExportAll runs every job with at most limit exports in flight. A failing
// job does not cancel the others; cancelling ctx stops jobs that have not
// started and interrupts running ones.
func ExportAll(ctx context.Context, exporter Exporter, jobs []Job, limit int, logger zerolog.Logger) Summary {
	summary := Summary{Results: make([]Result, len(jobs))}
	if len(jobs) == 0 {
		return summary
	}

	if limit <= 0 {
		limit = DefaultConcurrency
	}
	limit = min(limit, MaxConcurrency)

	var g errgroup.Group
	g.SetLimit(limit)

	for i, job := range jobs {
		label := job.label()
		g.Go(func() error {
			var (
				rows *table.Table
				err  error
			)
			if err = ctx.Err(); err == nil {
				logger.Debug().Str("survey", job.Request.SurveyID).Msg("Starting export")
				rows, err = exporter.ExportResponses(ctx, job.Request)
			}
			if err != nil {
				logger.Warn().Err(err).Str("survey", job.Request.SurveyID).Msg("Export failed")
			}

			// each goroutine owns slot i
			summary.Results[i] = Result{Label: label, Rows: rows, Err: err}

			// Don't stop on individual errors
			return nil
		})
	}

	_ = g.Wait()

	return summary
}
