// Package sanitize cleans text that CI runners copy from build logs, such
// as failure reasons, before it is shown in a terminal or returned over MCP.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// MaxReasonLength bounds a cleaned failure reason, in bytes.
const MaxReasonLength = 4096

// Buildkite timestamp markers: \x1b_bk;t=...\x07
var buildkiteTimestamp = regexp.MustCompile(`\x1b_bk;t=[0-9]+\x07`)

// StripANSI removes ANSI escape codes and Buildkite timestamp markers.
func StripANSI(s string) string {
	s = buildkiteTimestamp.ReplaceAllString(s, "")
	return ansi.Strip(s)
}

// Clean strips escape codes, normalizes line endings and trims surrounding
// whitespace.
func Clean(s string) string {
	s = StripANSI(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// Reason cleans a failure reason and truncates it to MaxReasonLength
// without splitting a UTF-8 sequence.
func Reason(s string) string {
	s = Clean(s)
	if len(s) <= MaxReasonLength {
		return s
	}
	cut := MaxReasonLength
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
