package csvtext

import (
	"bytes"
	"strings"
)

// Line is one physical line of source text.
type Line struct {
	Number int
	Text   string
}

// Blank reports whether the line carries no data.
func (l Line) Blank() bool {
	return strings.TrimSpace(l.Text) == ""
}

// SplitLines splits buf on '\n', dropping a trailing '\r' from each line.
// firstLine is the physical number of the first line in buf. A final
// fragment without a newline is returned as a line; an empty final
// fragment is not.
func SplitLines(buf []byte, firstLine int) []Line {
	var lines []Line
	n := firstLine
	for len(buf) > 0 {
		i := bytes.IndexByte(buf, '\n')
		var raw []byte
		if i < 0 {
			raw, buf = buf, nil
		} else {
			raw, buf = buf[:i], buf[i+1:]
		}
		lines = append(lines, Line{Number: n, Text: string(bytes.TrimSuffix(raw, []byte{'\r'}))})
		n++
	}
	return lines
}

// LastLineBoundary returns the length of the longest prefix of buf that ends
// on a line boundary, or -1 when buf holds no newline.
func LastLineBoundary(buf []byte) int {
	i := bytes.LastIndexByte(buf, '\n')
	if i < 0 {
		return -1
	}
	return i + 1
}

// HeaderLine returns the first line of buf and the byte offset just past it.
// ok is false when buf holds no complete line and atEOF is false.
func HeaderLine(buf []byte, atEOF bool) (header string, end int, ok bool) {
	i := bytes.IndexByte(buf, '\n')
	if i < 0 {
		if !atEOF {
			return "", 0, false
		}
		return strings.TrimSuffix(string(buf), "\r"), len(buf), true
	}
	return strings.TrimSuffix(string(buf[:i]), "\r"), i + 1, true
}
