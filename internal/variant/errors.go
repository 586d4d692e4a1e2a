package variant

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfig indicates a malformed or unsatisfiable variant configuration.
var ErrConfig = errors.New("variant config error")

// ZipKeysLengthMismatchError reports a zip-key group whose member candidate
// lists do not all have the same length.
type ZipKeysLengthMismatchError struct {
	Group   []string
	Lengths []int
}

func (e *ZipKeysLengthMismatchError) Error() string {
	return fmt.Sprintf("zip_keys group [%s] has mismatched candidate list lengths %v",
		strings.Join(e.Group, ", "), e.Lengths)
}

// PinConflictError reports a recipe that already pins a package explicitly
// in a way that contradicts the derived pin_run_as_build constraint.
type PinConflictError struct {
	Package  string
	Explicit string
	Derived  string
}

func (e *PinConflictError) Error() string {
	return fmt.Sprintf("pin conflict for %q: recipe pins %q but pin_run_as_build derives %q",
		e.Package, e.Explicit, e.Derived)
}
