package variant

import (
	"fmt"
	"strconv"
	"strings"
)

// Pin derives a runtime version constraint from a build-time chosen value.
// MaxPin and MinPin are precision patterns like "x.x": the number of `x`
// segments names how many version segments to keep.
type Pin struct {
	MinPin string
	MaxPin string
}

// Apply derives the constraint for the chosen variant value. With only
// MaxPin set, the result is the value truncated to the pattern's precision
// ("1.82.0" under "x.x" pins to "1.82"). With MinPin also set, the result is
// a half-open range lower-bounded at MinPin precision and upper-bounded by
// bumping the last kept MaxPin segment.
func (p Pin) Apply(value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%w: cannot pin an empty version", ErrConfig)
	}
	upper := value
	if p.MaxPin != "" {
		upper = truncateVersion(value, p.MaxPin)
	}
	if p.MinPin == "" {
		return upper, nil
	}
	lower := truncateVersion(value, p.MinPin)
	bumped, err := bumpVersion(upper)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(">=%s,<%s", lower, bumped), nil
}

// truncateVersion keeps as many leading version segments as the pattern has
// `x` segments. A pattern longer than the version keeps the whole version.
func truncateVersion(value, pattern string) string {
	keep := len(strings.Split(pattern, "."))
	segments := strings.Split(value, ".")
	if keep >= len(segments) {
		return value
	}
	return strings.Join(segments[:keep], ".")
}

// bumpVersion increments the last numeric segment of a version, so "1.82"
// becomes "1.83" and "1" becomes "2".
func bumpVersion(value string) (string, error) {
	segments := strings.Split(value, ".")
	last := len(segments) - 1
	n, err := strconv.Atoi(segments[last])
	if err != nil {
		return "", fmt.Errorf("%w: cannot derive upper bound from non-numeric version segment %q in %q", ErrConfig, segments[last], value)
	}
	segments[last] = strconv.Itoa(n + 1)
	return strings.Join(segments, "."), nil
}
