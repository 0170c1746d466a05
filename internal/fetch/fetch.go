// Package fetch acquires module sources for a build.
package fetch

import (
	"context"
	"errors"
	"os"
)

// Placeholder is the source URL recorded for modules that declare none.
// Downstream tooling resolves it into a real source.
const Placeholder = "Fake"

// Job describes one module source to acquire.
type Job struct {
	Module   string
	URL      string
	DestPath string
}

// IsPlaceholder reports whether the job has no real source URL.
func (j Job) IsPlaceholder() bool {
	return j.URL == Placeholder
}

// Result represents the outcome of a fetch job.
type Result struct {
	Job     Job
	Present bool // DestPath already existed and was left untouched
	Error   error
}

// Fetcher acquires module sources.
type Fetcher interface {
	Fetch(ctx context.Context, jobs []Job) []Result
}

// PlaceholderFetcher records what would be cloned without cloning. Existing
// destinations are reported as present.
type PlaceholderFetcher struct{}

// NewPlaceholderFetcher creates a fetcher that performs no network access.
func NewPlaceholderFetcher() *PlaceholderFetcher {
	return &PlaceholderFetcher{}
}

// Fetch checks each job's destination in order and stops early if ctx is done.
func (f *PlaceholderFetcher) Fetch(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Job: job, Error: err})
			continue
		}
		results = append(results, f.fetchOne(job))
	}
	return results
}

func (f *PlaceholderFetcher) fetchOne(job Job) Result {
	_, err := os.Stat(job.DestPath)
	switch {
	case err == nil:
		return Result{Job: job, Present: true}
	case errors.Is(err, os.ErrNotExist):
		return Result{Job: job}
	default:
		return Result{Job: job, Error: err}
	}
}
