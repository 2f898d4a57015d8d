package site

import (
	"fmt"
	"time"
)

// WriteError reports an output-tree filesystem failure. Write failures are
// fatal: the build stops writing and the result is marked unsuccessful.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Result is the aggregate outcome of one build. Per-item errors accumulate
// in Errors without flipping Success; only configuration failures, fatal
// write failures, or a build where items existed but none rendered are
// unsuccessful.
type Result struct {
	Posts    int
	Pages    int
	Drafts   int
	Rendered int
	Errors   []error
	Output   string
	Success  bool
	Duration time.Duration
}

// Summary is the one-line report the CLI and watch loop print after a build.
func (r *Result) Summary() string {
	status := "ok"
	if !r.Success {
		status = "failed"
	}
	return fmt.Sprintf("build %s: %d rendered (%d posts, %d pages), %d drafts skipped, %d errors in %s",
		status, r.Rendered, r.Posts, r.Pages, r.Drafts, len(r.Errors), r.Duration.Round(time.Millisecond))
}
