package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ============================================================================
// LABEL UTILITIES — display-only text shaping
// ============================================================================

// WrapLabel breaks s into lines of at most width runes on word boundaries.
// Words longer than width stay whole. width <= 0 disables wrapping.
func WrapLabel(s string, width int, lineBreak string) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if lineBreak == "" {
		lineBreak = "\n"
	}

	var lines []string
	var cur strings.Builder
	curLen := 0
	for _, word := range strings.Fields(s) {
		wl := utf8.RuneCountInString(word)
		if curLen > 0 && curLen+1+wl > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += wl
	}
	if curLen > 0 {
		lines = append(lines, cur.String())
	}
	return strings.Join(lines, lineBreak)
}

// TruncateLabel shortens s to max runes, ending with "…". max <= 0 disables.
func TruncateLabel(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:max-1]), " ") + "…"
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}
