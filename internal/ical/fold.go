package ical

import "strings"

// foldLine line-folds a single unfolded "NAME:value" (or "NAME;PARAM=...:value")
// content line at 75 octets per RFC 5545 §3.1: any line longer than 75
// octets is split before the 76th octet, and continuation lines start with
// a single space. We fold on byte boundaries, matching the octet-counting
// rule; the emitter never splits inside a multi-byte UTF-8 rune because we
// additionally back off to the start of the rune when a split would land
// inside one.
func foldLine(line string) string {
	const limit = 75
	if len(line) <= limit {
		return line + "\r\n"
	}

	var b strings.Builder
	rest := line
	first := true
	for len(rest) > 0 {
		width := limit
		if !first {
			width = limit - 1 // account for the leading continuation space
		}
		if len(rest) <= width {
			if !first {
				b.WriteByte(' ')
			}
			b.WriteString(rest)
			b.WriteString("\r\n")
			break
		}
		cut := width
		for cut > 0 && isUTF8Continuation(rest[cut]) {
			cut--
		}
		if !first {
			b.WriteByte(' ')
		}
		b.WriteString(rest[:cut])
		b.WriteString("\r\n")
		rest = rest[cut:]
		first = false
	}
	return b.String()
}

func isUTF8Continuation(c byte) bool {
	return c&0xC0 == 0x80
}

// escapeText escapes backslash, comma, semicolon, and newlines in a TEXT
// value per RFC 5545 §3.3.11.
func escapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case ';':
			b.WriteString(`\;`)
		case ',':
			b.WriteString(`\,`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			// dropped: ICS TEXT newlines are represented as \n only
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// unescapeText reverses escapeText. Used only by extractCustomProperties,
// which reads custom X-* property values from the raw unfolded lines rather
// than through go-ical's decoder, so they still carry their escapes.
func unescapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
			case ';':
				b.WriteByte(';')
			case ',':
				b.WriteByte(',')
			case 'n', 'N':
				b.WriteByte('\n')
			default:
				b.WriteByte(s[i+1])
			}
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
