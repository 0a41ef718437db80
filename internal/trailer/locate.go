package trailer

import "strings"

// Locate returns the index start such that lines[start:] is the contiguous
// trailer block at the end of the message and lines[:start] is passed
// through verbatim. Lines are scanned from the end upward:
//
//  1. A whitespace-only line, before any non-blank line has been seen, is
//     skipped; once at least one candidate trailer line has been seen, a
//     whitespace-only line terminates the block and its index+1 is
//     returned.
//  2. A line containing ':' is a candidate trailer line; scanning continues.
//  3. Any other non-blank line means there is no trailer block: len(lines)
//     is returned.
//  4. If the scan exhausts every line, the whole message is trailers (0) if
//     at least one candidate was seen, otherwise there is no trailer block
//     (len(lines)).
func Locate(lines []string) int {
	empty := true
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		switch {
		case strings.TrimSpace(line) == "":
			if empty {
				continue
			}
			return i + 1
		case strings.Contains(line, ":"):
			empty = false
		default:
			return len(lines)
		}
	}
	if empty {
		return len(lines)
	}
	return 0
}
