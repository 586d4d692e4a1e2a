package orchestrator

import (
	"errors"

	"github.com/vk/packforge/internal/variant"
)

// ErrTestFailed marks a variant whose build succeeded but whose tests did
// not pass.
var ErrTestFailed = errors.New("tests failed")

// Status is the terminal state of one variant's build.
type Status string

const (
	// StatusBuilt means this variant's build executed and packaged here.
	StatusBuilt Status = "built"
	// StatusCached means an identical rendered recipe was already built in
	// this invocation and its package was reused.
	StatusCached Status = "cached"
	// StatusFailed means rendering, building, relocation, testing or
	// packaging failed.
	StatusFailed Status = "failed"
	// StatusCancelled means the invocation was cancelled before or during
	// this variant's build.
	StatusCancelled Status = "cancelled"
)

// TestStatus is the outcome of one test spec.
type TestStatus string

const (
	TestPassed  TestStatus = "passed"
	TestFailed  TestStatus = "failed"
	TestSkipped TestStatus = "skipped"
)

// TestResult records one executed (or skipped) test spec.
type TestResult struct {
	Kind   string
	Status TestStatus
	Detail string
}

// Result is the outcome of one variant.
type Result struct {
	Variant     variant.Variant
	Hash        string
	Status      Status
	ArchivePath string
	Tests       []TestResult
	Err         error
	// Output holds the combined build script output, kept for diagnosis on
	// failure.
	Output string
}

// Report aggregates per-variant results in matrix order.
type Report struct {
	Results []Result
}

// Counts returns how many variants ended in each status.
func (r *Report) Counts() map[Status]int {
	counts := map[Status]int{}
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// Failed reports whether any variant failed or was cancelled.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Status == StatusFailed || res.Status == StatusCancelled {
			return true
		}
	}
	return false
}
