// ABOUTME: TEXT value escaping for calendar exchange documents
// ABOUTME: Escapes and unescapes backslash, comma and newline
package calexport

import "strings"

// EscapeText prepares s for a property value. Backslashes are doubled before any
// other escape sequence is introduced so that they are never escaped twice.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, ",", `\,`)
	return s
}

// UnescapeText reverses EscapeText. It also accepts `\N` and `\;` as written by
// other calendar applications; unknown escapes are kept verbatim.
func UnescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}

		i++
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n', 'N':
			b.WriteByte('\n')
		case ',':
			b.WriteByte(',')
		case ';':
			b.WriteByte(';')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// propertyText escapes s for a property line. Carriage returns would break
// the CRLF framing, so CRLF and lone CR are folded to newlines first.
func propertyText(s string) string {
	if strings.Contains(s, "\r") {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	}
	return EscapeText(s)
}
