package buildenv

import "fmt"

// ScriptError reports a failed script run together with the combined output
// the process produced before exiting.
type ScriptError struct {
	Dir    string
	Output string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script failed in %s: %v", e.Dir, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// ChecksumMismatchError reports a fetched source whose digest does not match
// the recipe's declaration.
type ChecksumMismatchError struct {
	URL      string
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.URL, e.Expected, e.Actual)
}
