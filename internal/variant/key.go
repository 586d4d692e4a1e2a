package variant

import "strings"

// NormalizeKey returns the canonical form of a variant key: `-` and `.`
// become `_`, so `c-compiler`, `c_compiler` and `c.compiler` name the same
// axis. Package names normalize the same way.
func NormalizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '.':
			return '_'
		}
		return r
	}, key)
}
