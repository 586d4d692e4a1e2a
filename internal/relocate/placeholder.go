package relocate

import (
	"fmt"
	"strings"
)

// placeholderBase is the leading portion of every placeholder path. The
// repeated filler keeps the sentinel recognizable in hexdumps.
const (
	placeholderBase   = "/opt/packforge/placehold"
	placeholderFiller = "_placehold"
	prefixFiller      = "_build_env"
)

// DefaultPrefixLength is the reserved placeholder length when the caller
// does not choose one. 255 bytes accommodates every common install prefix
// while staying under single-component filesystem limits.
const DefaultPrefixLength = 255

// PrefixLengthOverflowError reports a real prefix longer than the reserved
// placeholder length. It is a systemic misconfiguration: the whole
// invocation must stop before any build script runs.
type PrefixLengthOverflowError struct {
	Prefix string
	Limit  int
}

func (e *PrefixLengthOverflowError) Error() string {
	return fmt.Sprintf("build prefix %q is %d bytes, exceeding the reserved placeholder length %d",
		e.Prefix, len(e.Prefix), e.Limit)
}

// Placeholder returns the sentinel path of exactly length bytes.
func Placeholder(length int) (string, error) {
	if length < len(placeholderBase) {
		return "", fmt.Errorf("placeholder length %d is shorter than the base path (%d bytes)", length, len(placeholderBase))
	}
	var b strings.Builder
	b.Grow(length + len(placeholderFiller))
	b.WriteString(placeholderBase)
	for b.Len() < length {
		b.WriteString(placeholderFiller)
	}
	return b.String()[:length], nil
}

// PadPrefix extends a build root with filler path segments to exactly
// length bytes. Building under the padded path is what makes binary
// relocation possible: occurrences of the build prefix then have the same
// byte length as the placeholder. A root that is already longer than length
// fails with PrefixLengthOverflowError.
func PadPrefix(root string, length int) (string, error) {
	if len(root) > length {
		return "", &PrefixLengthOverflowError{Prefix: root, Limit: length}
	}
	pad := length - len(root)
	if pad == 0 {
		return root, nil
	}
	var b strings.Builder
	b.Grow(length)
	b.WriteString(root)
	if pad == 1 {
		b.WriteString("_")
		return b.String(), nil
	}
	b.WriteString("/")
	for b.Len() < length {
		b.WriteString(prefixFiller)
	}
	return b.String()[:length], nil
}
