package ffmpegargs

import "strings"

// EscapeFilterArg quotes a string for use inside an ffmpeg filter argument.
//
// Backslashes are escaped first (anything later would double-escape them),
// then the filter metacharacters = : , ; and finally single quotes, which
// cannot be escaped inside a quoted run and instead close the run, emit an
// escaped quote, and reopen it. The result is wrapped in single quotes.
func EscapeFilterArg(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '=', ':', ',', ';':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\'':
			b.WriteString(`'\''`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// UnescapeFilterArg reverses EscapeFilterArg: quote characters delimit runs
// and contribute nothing themselves, and a backslash always escapes the
// following byte.
func UnescapeFilterArg(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			// Run delimiter only.
		case c == '\\' && i+1 < len(s):
			b.WriteByte(s[i+1])
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
