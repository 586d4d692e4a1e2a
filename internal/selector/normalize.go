package selector

import "strings"

// Normalize rewrites recipe expression syntax into HCL syntax: the word
// operators `and` and `or` become `&&` and `||`, `not` becomes a
// parenthesized `!(...)`, and single-quoted string literals become
// double-quoted. Content inside string literals is left untouched.
//
// `not` binds looser than comparison but tighter than `and`/`or`, so its
// operand extends to the next `and`/`or` at the same nesting depth or to the
// end of the enclosing group: `not a == b and c` means `!(a == b) && c`.
func Normalize(expr string) string {
	var out strings.Builder
	out.Grow(len(expr))

	depth := 0
	var negations []int // nesting depths with an open `!(` rewrite

	closeNegations := func() {
		for len(negations) > 0 && negations[len(negations)-1] == depth {
			out.WriteByte(')')
			negations = negations[:len(negations)-1]
		}
	}

	runes := []rune(expr)
	for i := 0; i < len(runes); {
		switch r := runes[i]; {
		case r == '"':
			i = copyQuoted(&out, runes, i)
		case r == '\'':
			i = copySingleQuoted(&out, runes, i)
		case r == '(':
			out.WriteRune(r)
			depth++
			i++
		case r == ')':
			closeNegations()
			out.WriteRune(r)
			depth--
			i++
		case isIdentStart(r):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			word := string(runes[start:i])
			switch word {
			case "and":
				closeNegations()
				out.WriteString("&&")
			case "or":
				closeNegations()
				out.WriteString("||")
			case "not":
				out.WriteString("!(")
				negations = append(negations, depth)
				for i < len(runes) && runes[i] == ' ' {
					i++
				}
			default:
				out.WriteString(word)
			}
		default:
			out.WriteRune(r)
			i++
		}
	}
	for range negations {
		out.WriteByte(')')
	}
	return out.String()
}

// copyQuoted copies a double-quoted literal verbatim, honoring backslash
// escapes. Returns the index just past the closing quote.
func copyQuoted(out *strings.Builder, runes []rune, i int) int {
	out.WriteRune(runes[i])
	i++
	for i < len(runes) {
		out.WriteRune(runes[i])
		if runes[i] == '\\' && i+1 < len(runes) {
			i++
			out.WriteRune(runes[i])
		} else if runes[i] == '"' {
			return i + 1
		}
		i++
	}
	return i
}

// copySingleQuoted converts a single-quoted literal to a double-quoted one,
// escaping any embedded double quotes. Returns the index just past the
// closing quote.
func copySingleQuoted(out *strings.Builder, runes []rune, i int) int {
	out.WriteRune('"')
	i++
	for i < len(runes) && runes[i] != '\'' {
		if runes[i] == '"' || runes[i] == '\\' {
			out.WriteRune('\\')
		}
		out.WriteRune(runes[i])
		i++
	}
	out.WriteRune('"')
	if i < len(runes) {
		i++ // closing quote
	}
	return i
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}
