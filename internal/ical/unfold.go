package ical

import "strings"

// unfoldLines reverses RFC 5545 §3.1 line folding: a CRLF (or bare LF)
// followed by a single space or tab is a continuation of the previous
// line. Used only to recover the original, in-order list of property
// lines for preserving custom X-* property order, something go-ical's
// map-keyed Props cannot give us (see codec.go).
func unfoldLines(data []byte) []string {
	raw := strings.ReplaceAll(string(data), "\r\n", "\n")
	physical := strings.Split(raw, "\n")

	var logical []string
	for _, line := range physical {
		if len(logical) > 0 && len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			logical[len(logical)-1] += line[1:]
			continue
		}
		if line == "" {
			continue
		}
		logical = append(logical, line)
	}
	return logical
}

// splitProp splits an unfolded content line into its name (with any
// parameters stripped) and raw value, e.g. "X-FOO;BAR=1:hello" -> "X-FOO",
// "hello".
func splitProp(line string) (name, value string, ok bool) {
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", "", false
	}
	head := line[:colon]
	value = line[colon+1:]
	if semi := strings.IndexByte(head, ';'); semi >= 0 {
		head = head[:semi]
	}
	return strings.ToUpper(head), value, true
}
