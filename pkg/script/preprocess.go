package script

import "strings"

// preprocessSource rewrites edit-script source into forms zygomys reads.
// Source is split into words at whitespace, brackets, quotes and comments,
// and each word is rewritten on its own:
//
//	:radius     -> "__kw_radius"   keyword marker consumed by parseArgs
//	hit-point   -> hit_point       hyphenated names; zygomys reads - as minus
//	;; note     -> // note         line comments
//
// Words that do not start with a letter pass through, so -2, 1e-3 and the
// bare - operator are untouched. Double-quoted strings are copied verbatim.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	for i := 0; i < len(source); {
		switch c := source[i]; {
		case c == '"':
			j := stringEnd(source, i)
			out.WriteString(source[i:j])
			i = j
		case c == ';':
			j := i
			for j < len(source) && source[j] == ';' {
				j++
			}
			end := strings.IndexByte(source[j:], '\n')
			if end < 0 {
				end = len(source)
			} else {
				end += j
			}
			out.WriteString("//")
			out.WriteString(source[j:end])
			i = end
		case isDelim(c):
			out.WriteByte(c)
			i++
		default:
			j := i
			for j < len(source) && !isDelim(source[j]) {
				j++
			}
			out.WriteString(rewriteWord(source[i:j]))
			i = j
		}
	}
	return out.String()
}

// rewriteWord applies the keyword and hyphen rules to one word.
func rewriteWord(w string) string {
	switch {
	case len(w) > 1 && w[0] == ':' && isLetter(w[1]):
		return `"` + kwPrefix + w[1:] + `"`
	case isLetter(w[0]) && strings.IndexByte(w, '-') >= 0:
		return strings.ReplaceAll(w, "-", "_")
	}
	return w
}

// stringEnd returns the index just past the string literal opening at i, or
// len(s) if it is unterminated.
func stringEnd(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(s)
}

func isDelim(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '[', ']', '{', '}', '"', ';', '\'':
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
