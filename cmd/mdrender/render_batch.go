package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch rendering.
var (
	ErrNoInput      = errors.New("no input specified")
	ErrReadMarkdown = errors.New("failed to read markdown file")
	ErrWriteHTML    = errors.New("failed to write HTML file")
)

// Renderer is the part of mdrender.Renderer the CLI needs.
type Renderer interface {
	Render(text string) string
}

// RenderResult holds the outcome of a single file.
type RenderResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// renderBatch renders files concurrently with a bounded number of workers.
// Results are returned in input order.
func renderBatch(ctx context.Context, r Renderer, workers int, files []FileToRender, doc *documentWriter) []RenderResult {
	if len(files) == 0 {
		return nil
	}

	results := make([]RenderResult, len(files))
	jobs := make(chan int, len(files))
	var wg sync.WaitGroup

	for w := 0; w < resolvePoolSize(workers, len(files)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results[idx] = RenderResult{InputPath: files[idx].InputPath, Err: err}
					continue
				}
				results[idx] = renderFile(r, files[idx], doc)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderFile renders a single file and returns the result.
func renderFile(r Renderer, f FileToRender, doc *documentWriter) RenderResult {
	start := time.Now()
	result := RenderResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	fail := func(err error) RenderResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrReadMarkdown, err))
	}

	out := r.Render(string(content))
	if doc != nil {
		out, err = doc.Wrap(string(content), f.InputPath, out)
		if err != nil {
			return fail(err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: creating output directory: %v", ErrWriteHTML, err))
	}
	// #nosec G306 -- HTML files are meant to be readable
	if err := os.WriteFile(f.OutputPath, []byte(out), filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWriteHTML, err))
	}

	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed files.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed files.
func countResults(results []RenderResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults reports each file and returns the summary.
func printResults(results []RenderResult, quiet, verbose bool, env *Environment) ResultSummary {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}
		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}
	return summary
}
