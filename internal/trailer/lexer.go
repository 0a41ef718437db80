package trailer

import "strings"

// Parse splits s at its first '=' or ':' into a (token, value) pair, ASCII-
// trimming both sides. If neither delimiter is present, the whole string
// becomes the token and value is empty.
func Parse(s string) (token, value string) {
	idx := strings.IndexAny(s, "=:")
	if idx < 0 {
		return asciiTrim(s), ""
	}
	return asciiTrim(s[:idx]), asciiTrim(s[idx+1:])
}

func asciiTrim(s string) string {
	return strings.Trim(s, " \t\r\n\v\f")
}
