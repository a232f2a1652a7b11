package utils

import (
	"regexp"
	"strings"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeFileName turns arbitrary user text (company names) into something usable as a file name
func SafeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_.")
	if name == "" {
		return "untitled"
	}
	return name
}

// Truncate shortens s to at most n runes, appending "..." when cut
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
